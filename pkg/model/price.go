package model

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Price is either a known decimal value or unknown, for orders whose price
// cannot currently be computed (e.g. zero remaining liquidity).
// The zero value is an unknown price.
type Price struct {
	value decimal.Decimal
	known bool
}

func KnownPrice(value decimal.Decimal) Price {
	return Price{value: value, known: true}
}

func UnknownPrice() Price {
	return Price{}
}

// ParsePrice parses a decimal string. An empty string yields an unknown price.
func ParsePrice(s string) (Price, error) {
	if s == "" {
		return UnknownPrice(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return KnownPrice(d), nil
}

// MustPrice is ParsePrice that panics, for tests and fixtures.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Known() bool {
	return p.known
}

func (p Price) Decimal() (decimal.Decimal, bool) {
	return p.value, p.known
}

// CompareKnown orders known prices ascending and puts unknown prices after
// every known price. Two unknown prices compare equal.
func (p Price) CompareKnown(other Price) int {
	switch {
	case !p.known && !other.known:
		return 0
	case !p.known:
		return 1
	case !other.known:
		return -1
	}
	return p.value.Cmp(other.value)
}

func (p Price) String() string {
	if !p.known {
		return "-"
	}
	return p.value.String()
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.known {
		return []byte("null"), nil
	}
	return p.value.MarshalJSON()
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = UnknownPrice()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*p = KnownPrice(d)
	return nil
}

// PriceFromNullDecimal maps a nullable NUMERIC column onto a price.
func PriceFromNullDecimal(nd decimal.NullDecimal) Price {
	if !nd.Valid {
		return UnknownPrice()
	}
	return KnownPrice(nd.Decimal)
}
