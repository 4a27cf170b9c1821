package util

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToAtomicUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals int32
		want     string
	}{
		{"20000.123456", 6, "20000123456"},
		{"1", 9, "1000000000"},
		{"0.0000015", 6, "2"},
		{"0.0000014", 6, "1"},
		{"12.5", 0, "13"},
		{"0", 6, "0"},
	}
	for _, c := range cases {
		got := ToAtomicUnits(decimal.RequireFromString(c.in), c.decimals)
		assert.Equal(t, c.want, got.String(), "input %s at %d decimals", c.in, c.decimals)
	}
}

func TestFromAtomicUnits(t *testing.T) {
	got := FromAtomicUnits(big.NewInt(20000123456), 6)
	assert.True(t, got.Equal(decimal.RequireFromString("20000.123456")), got.String())
}
