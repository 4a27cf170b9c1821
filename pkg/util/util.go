package util

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToAtomicUnits scales a decimal to the integer smallest-unit representation
// of an asset with the given number of decimals, rounding half away from zero.
func ToAtomicUnits(value decimal.Decimal, decimals int32) *big.Int {
	return value.Shift(decimals).Round(0).BigInt()
}

// FromAtomicUnits is the inverse of ToAtomicUnits.
func FromAtomicUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, -decimals)
}
