package model

import "github.com/shopspring/decimal"

type RowKind uint8

const (
	REAL_ROW RowKind = iota
	PLACEHOLDER_ROW
)

func (k RowKind) MarshalText() ([]byte, error) {
	if k == PLACEHOLDER_ROW {
		return []byte("placeholder"), nil
	}
	return []byte("real"), nil
}

const PlaceholderGlyph = "-"

// DisplayRow is one rendered ladder row. Placeholder rows carry no order.
type DisplayRow struct {
	Kind    RowKind `json:"kind"`
	Side    Side    `json:"side"`
	OrderID string  `json:"orderId,omitempty"`
	Price   string  `json:"price"`
	Amount  string  `json:"amount"`
	Total   string  `json:"total"`

	Order *Order `json:"-"`
}

func (r DisplayRow) IsPlaceholder() bool {
	return r.Kind == PLACEHOLDER_ROW
}

// DepthLevel aggregates the orders of one side sharing a display price.
type DepthLevel struct {
	Price      Price           `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Total      decimal.Decimal `json:"total"`
	OrderCount int             `json:"orderCount"`
}

// Spread between the best bid and best ask. The decimal fields are null
// whenever Available is false.
type Spread struct {
	Available bool                `json:"available"`
	BestBid   decimal.NullDecimal `json:"bestBid"`
	BestAsk   decimal.NullDecimal `json:"bestAsk"`
	Percent   decimal.NullDecimal `json:"percent"`
	Mid       decimal.NullDecimal `json:"mid"`
}

// LadderView is a full rebuild of the order book for one pair.
type LadderView struct {
	Pair      string       `json:"pair"`
	Filter    string       `json:"filter"`
	Mode      string       `json:"mode"`
	Precision int32        `json:"precision"`
	Bids      []DisplayRow `json:"bids"`
	Asks      []DisplayRow `json:"asks"`

	// Spread is nil when the view has no spread row (expanded mode).
	Spread      *Spread `json:"spread,omitempty"`
	SpreadLabel string  `json:"spreadLabel,omitempty"`
	PriceLabel  string  `json:"priceLabel,omitempty"`

	// Loading is set while the order store has not completed its first load;
	// no rows are rendered and SkeletonRows tells the client how many to draw.
	Loading      bool `json:"loading"`
	SkeletonRows int  `json:"skeletonRows,omitempty"`
}
