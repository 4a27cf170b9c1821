package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecordToModel(t *testing.T) {
	rec := OrderRecord{
		ID:           "42",
		BaseAsset:    "btc",
		QuoteAsset:   "usdc",
		Price:        decimal.NewNullDecimal(decimal.RequireFromString("20000.5")),
		ReversePrice: decimal.NullDecimal{},
		Amount:       decimal.RequireFromString("0.1"),
		Total:        decimal.RequireFromString("2000.05"),
	}

	o := rec.ToModel()
	assert.Equal(t, "42", o.ID)
	assert.EqualValues(t, "btc", o.BaseAsset)
	assert.EqualValues(t, "usdc", o.QuoteAsset)
	assert.Equal(t, "20000.5", o.Price.String())
	assert.False(t, o.ReversePrice.Known())
	assert.Equal(t, "2000.05", o.Total.String())
}
