package engine

import (
	"github.com/google/btree"
	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
)

const btreeDegree = 32

// Build selects the orders of one side of the pair and returns them sorted:
// bids by Price descending, asks by ReversePrice ascending, unknown prices
// last, equal prices in snapshot order. Orders of other pairs are dropped.
// When limit > 0 only the trailing limit orders are kept.
func Build(orders []model.Order, pair model.Pair, side model.Side, limit int) []model.Order {
	desc := ladderModel.For(side)
	tree := btree.NewG(btreeDegree, desc.Less)

	for i, o := range orders {
		if !pair.Matches(o) || pair.SideOf(o) != side {
			continue
		}
		tree.ReplaceOrInsert(desc.NewEntry(o, i))
	}

	ladder := make([]model.Order, 0, tree.Len())
	tree.Ascend(func(e ladderModel.LadderEntry) bool {
		ladder = append(ladder, e.Order)
		return true
	})
	return tail(ladder, limit)
}

func tail[T any](s []T, limit int) []T {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
