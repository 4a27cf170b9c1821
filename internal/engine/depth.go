package engine

import (
	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
)

// Aggregate groups a built ladder into price levels at the display
// precision, keeping ladder order. Orders with an unknown price form a
// single trailing level.
func Aggregate(ladder []model.Order, side ladderModel.SideDescriptor, precision int32) []model.DepthLevel {
	precision = max(precision, 0)
	levels := make([]model.DepthLevel, 0)

	for _, o := range ladder {
		price := side.Key(o)
		if d, ok := price.Decimal(); ok {
			price = model.KnownPrice(d.Round(precision))
		}
		amount, total := side.Columns(o)

		if n := len(levels); n > 0 && levels[n-1].Price.CompareKnown(price) == 0 {
			last := &levels[n-1]
			last.Amount = last.Amount.Add(amount)
			last.Total = last.Total.Add(total)
			last.OrderCount++
			continue
		}
		levels = append(levels, model.DepthLevel{
			Price:      price,
			Amount:     amount,
			Total:      total,
			OrderCount: 1,
		})
	}
	return levels
}
