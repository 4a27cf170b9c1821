package engine

import (
	"errors"
	"math/big"

	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
	"github.com/karen-369/spark/pkg/util"
)

var ErrRowNotSelectable = errors.New("row is not selectable")

// OrderEntry receives prices picked from the ladder, in atomic units of the
// quote asset.
type OrderEntry interface {
	SetBuyPrice(units *big.Int, confirmed bool)
	SetSellPrice(units *big.Int, confirmed bool)
}

// SelectRow pushes the row's price into both sides of the order entry with
// confirmed set. Placeholder rows and rows without a known price leave the
// entry untouched and return ErrRowNotSelectable.
func SelectRow(row model.DisplayRow, quote model.Asset, entry OrderEntry) (*big.Int, error) {
	if row.IsPlaceholder() || row.Order == nil {
		return nil, ErrRowNotSelectable
	}
	price, ok := ladderModel.For(row.Side).Key(*row.Order).Decimal()
	if !ok {
		return nil, ErrRowNotSelectable
	}

	units := util.ToAtomicUnits(price, quote.Decimals)
	entry.SetBuyPrice(new(big.Int).Set(units), true)
	entry.SetSellPrice(new(big.Int).Set(units), true)
	return units, nil
}

// FindRow looks up the real row rendering the given order.
func FindRow(view model.LadderView, orderID string) (model.DisplayRow, bool) {
	for _, rows := range [][]model.DisplayRow{view.Bids, view.Asks} {
		for _, r := range rows {
			if !r.IsPlaceholder() && r.OrderID == orderID {
				return r, true
			}
		}
	}
	return model.DisplayRow{}, false
}
