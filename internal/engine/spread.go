package engine

import (
	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeSpread derives the spread from built ladders. The best price of a
// side is the first known price in its ladder.
//
// Pass full ladders, not rendered ones: a compact view keeps the tail of the
// bid ladder, so its best bid may not be on screen.
func ComputeSpread(bids, asks []model.Order) model.Spread {
	bid, okBid := bestPrice(bids, ladderModel.BidSide)
	ask, okAsk := bestPrice(asks, ladderModel.AskSide)
	if !okBid || !okAsk || ask.IsZero() {
		return model.Spread{}
	}

	return model.Spread{
		Available: true,
		BestBid:   decimal.NewNullDecimal(bid),
		BestAsk:   decimal.NewNullDecimal(ask),
		Percent:   decimal.NewNullDecimal(ask.Sub(bid).Div(ask).Mul(hundred)),
		Mid:       decimal.NewNullDecimal(ask.Add(bid).Div(decimal.NewFromInt(2))),
	}
}

func bestPrice(ladder []model.Order, side ladderModel.SideDescriptor) (decimal.Decimal, bool) {
	for _, o := range ladder {
		if d, ok := side.Key(o).Decimal(); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// SpreadLabel renders the spread percentage with two fraction digits, or the
// placeholder glyph when it is unavailable.
func SpreadLabel(s model.Spread) string {
	if !s.Available {
		return model.PlaceholderGlyph
	}
	return FormatDecimal(s.Percent.Decimal, 2) + " %"
}

// PriceLabel renders the mid price at the view precision.
func PriceLabel(s model.Spread, precision int32) string {
	if !s.Available {
		return model.PlaceholderGlyph
	}
	return FormatDecimal(s.Mid.Decimal, precision)
}
