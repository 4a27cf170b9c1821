package model

import "fmt"

type Asset struct {
	ID       AssetID `json:"id" yaml:"id"`
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Decimals int32   `json:"decimals" yaml:"decimals"`
}

// Pair is a trading pair. Base is the designated base asset (assetId0):
// orders whose base asset equals it belong to the bid ladder.
type Pair struct {
	Base  Asset `json:"base"`
	Quote Asset `json:"quote"`
}

// Matches reports whether the order's two assets equal the pair's two assets
// in either assignment.
func (p Pair) Matches(o Order) bool {
	return (o.BaseAsset == p.Base.ID && o.QuoteAsset == p.Quote.ID) ||
		(o.BaseAsset == p.Quote.ID && o.QuoteAsset == p.Base.ID)
}

// SideOf assumes Matches(o) already holds.
func (p Pair) SideOf(o Order) Side {
	if o.BaseAsset == p.Base.ID {
		return BID
	}
	return ASK
}

// Topic is the websocket topic for the pair, e.g. BTC-USDC.
func (p Pair) Topic() string {
	return fmt.Sprintf("%s-%s", p.Base.Symbol, p.Quote.Symbol)
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Base.Symbol, p.Quote.Symbol)
}
