package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type AssetID string

// Order is an open order as supplied by the order store. Quantities are
// computed upstream and are never recomputed here.
type Order struct {
	ID           string          `json:"id"`
	BaseAsset    AssetID         `json:"baseAsset"`
	QuoteAsset   AssetID         `json:"quoteAsset"`
	Price        Price           `json:"price"`        // quote per base
	ReversePrice Price           `json:"reversePrice"` // base per quote
	Amount       decimal.Decimal `json:"amount"`
	Total        decimal.Decimal `json:"total"`
	AmountLeft   decimal.Decimal `json:"amountLeft"`
	TotalLeft    decimal.Decimal `json:"totalLeft"`
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s/%s price=%s reverse=%s", o.ID, o.BaseAsset, o.QuoteAsset, o.Price, o.ReversePrice)
}

type Side uint8

const (
	BID Side = iota
	ASK
)

func (s Side) String() string {
	if s == ASK {
		return "ask"
	}
	return "bid"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSide accepts bid/buy and ask/sell.
func ParseSide(s string) (Side, error) {
	switch s {
	case "bid", "buy", "BID", "BUY":
		return BID, nil
	case "ask", "sell", "ASK", "SELL":
		return ASK, nil
	}
	return BID, fmt.Errorf("unknown side %q", s)
}
