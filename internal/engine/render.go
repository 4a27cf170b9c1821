package engine

import (
	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
	"github.com/shopspring/decimal"
)

type RenderOptions struct {
	Rows      int
	Precision int32
	// Pad fills the side up to Rows with placeholder rows.
	Pad bool
}

// Render turns a built ladder into display rows without reordering it.
// At most Rows real rows are kept (the trailing ones). With Pad set the
// result has exactly Rows rows, placeholders at the side's outer edge.
func Render(ladder []model.Order, side ladderModel.SideDescriptor, opts RenderOptions) []model.DisplayRow {
	ladder = tail(ladder, opts.Rows)

	missing := 0
	if opts.Pad && opts.Rows > len(ladder) {
		missing = opts.Rows - len(ladder)
	}

	rows := make([]model.DisplayRow, 0, len(ladder)+missing)
	if side.PlaceholderEdge == ladderModel.Leading {
		rows = appendPlaceholders(rows, side.Side, missing)
	}
	for i := range ladder {
		rows = append(rows, realRow(&ladder[i], side, opts.Precision))
	}
	if side.PlaceholderEdge == ladderModel.Trailing {
		rows = appendPlaceholders(rows, side.Side, missing)
	}
	return rows
}

func realRow(o *model.Order, side ladderModel.SideDescriptor, precision int32) model.DisplayRow {
	amount, total := side.Columns(*o)
	return model.DisplayRow{
		Kind:    model.REAL_ROW,
		Side:    side.Side,
		OrderID: o.ID,
		Price:   FormatPrice(side.Key(*o), precision),
		Amount:  amount.String(),
		Total:   total.String(),
		Order:   o,
	}
}

func appendPlaceholders(rows []model.DisplayRow, side model.Side, n int) []model.DisplayRow {
	for range n {
		rows = append(rows, model.DisplayRow{
			Kind:   model.PLACEHOLDER_ROW,
			Side:   side,
			Price:  model.PlaceholderGlyph,
			Amount: model.PlaceholderGlyph,
			Total:  model.PlaceholderGlyph,
		})
	}
	return rows
}

// FormatPrice renders a price with exactly precision fraction digits,
// rounding half away from zero. Unknown prices render as the placeholder glyph.
func FormatPrice(p model.Price, precision int32) string {
	d, ok := p.Decimal()
	if !ok {
		return model.PlaceholderGlyph
	}
	return FormatDecimal(d, precision)
}

func FormatDecimal(d decimal.Decimal, precision int32) string {
	return d.StringFixed(max(precision, 0))
}
