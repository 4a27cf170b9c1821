package model

import (
	"github.com/karen-369/spark/pkg/model"
	"github.com/shopspring/decimal"
)

type Direction int8

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Edge is where placeholder rows go, relative to the real rows of a side.
type Edge uint8

const (
	Leading Edge = iota
	Trailing
)

// SideDescriptor holds everything that differs between the bid and ask
// ladders, so building and rendering are written once for both.
type SideDescriptor struct {
	Side            model.Side
	Direction       Direction
	PlaceholderEdge Edge

	// Key is the price the side is ordered and displayed by.
	Key func(o model.Order) model.Price
	// Columns returns the amount and total columns shown for the side.
	Columns func(o model.Order) (amount, total decimal.Decimal)
}

// BidSide descending by Price, placeholders above the real rows
var BidSide = SideDescriptor{
	Side:            model.BID,
	Direction:       Descending,
	PlaceholderEdge: Leading,
	Key:             func(o model.Order) model.Price { return o.Price },
	Columns: func(o model.Order) (decimal.Decimal, decimal.Decimal) {
		return o.Amount, o.Total
	},
}

// AskSide ascending by ReversePrice, placeholders below the real rows
var AskSide = SideDescriptor{
	Side:            model.ASK,
	Direction:       Ascending,
	PlaceholderEdge: Trailing,
	Key:             func(o model.Order) model.Price { return o.ReversePrice },
	Columns: func(o model.Order) (decimal.Decimal, decimal.Decimal) {
		return o.TotalLeft, o.AmountLeft
	},
}

func For(side model.Side) SideDescriptor {
	if side == model.ASK {
		return AskSide
	}
	return BidSide
}

// ComparePrices orders known prices in the side's direction. Unknown prices
// sort after every known price whatever the direction.
func (d SideDescriptor) ComparePrices(a, b model.Price) int {
	if a.Known() && b.Known() {
		va, _ := a.Decimal()
		vb, _ := b.Decimal()
		return int(d.Direction) * va.Cmp(vb)
	}
	return a.CompareKnown(b)
}

// LadderEntry is one order in a ladder tree. Seq is the order's position in
// the input snapshot and breaks ties between equal prices.
type LadderEntry struct {
	Order model.Order
	Key   model.Price
	Seq   int
}

func (d SideDescriptor) NewEntry(o model.Order, seq int) LadderEntry {
	return LadderEntry{Order: o, Key: d.Key(o), Seq: seq}
}

// Less is a strict total order over entries, usable as a btree comparator.
func (d SideDescriptor) Less(a, b LadderEntry) bool {
	if c := d.ComparePrices(a.Key, b.Key); c != 0 {
		return c < 0
	}
	return a.Seq < b.Seq
}
