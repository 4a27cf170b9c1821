package engine

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Setup & Helpers --------------------------------------------------------

var (
	usdc = model.Asset{ID: "usdc", Symbol: "USDC", Decimals: 6}
	btc  = model.Asset{ID: "btc", Symbol: "BTC", Decimals: 8}
	eth  = model.Asset{ID: "eth", Symbol: "ETH", Decimals: 9}

	btcUsdc = model.Pair{Base: btc, Quote: usdc}
	ethUsdc = model.Pair{Base: eth, Quote: usdc}
	btcEth  = model.Pair{Base: btc, Quote: eth}
)

// bid creates an order selling base for quote on btcUsdc with the given price.
// An empty price is unknown.
func bid(id, price string) model.Order {
	return model.Order{
		ID:         id,
		BaseAsset:  btc.ID,
		QuoteAsset: usdc.ID,
		Price:      model.MustPrice(price),
		Amount:     decimal.NewFromInt(1),
		Total:      decimal.NewFromInt(2),
	}
}

func ask(id, reversePrice string) model.Order {
	return model.Order{
		ID:           id,
		BaseAsset:    usdc.ID,
		QuoteAsset:   btc.ID,
		ReversePrice: model.MustPrice(reversePrice),
		AmountLeft:   decimal.NewFromInt(3),
		TotalLeft:    decimal.NewFromInt(4),
	}
}

func ids(orders []model.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func bids(n int) []model.Order {
	out := make([]model.Order, n)
	for i := range n {
		out[i] = bid(fmt.Sprintf("b%d", i), fmt.Sprintf("%d", 100+i))
	}
	return out
}

type recordingEntry struct {
	buy, sell                   *big.Int
	buyConfirmed, sellConfirmed bool
	calls                       int
}

func (r *recordingEntry) SetBuyPrice(units *big.Int, confirmed bool) {
	r.buy, r.buyConfirmed = units, confirmed
	r.calls++
}

func (r *recordingEntry) SetSellPrice(units *big.Int, confirmed bool) {
	r.sell, r.sellConfirmed = units, confirmed
	r.calls++
}

// --- Builder ----------------------------------------------------------------

func TestBuildFiltersByPair(t *testing.T) {
	orders := []model.Order{
		bid("btc-usdc-bid", "10"),
		ask("btc-usdc-ask", "0.1"),
		{ID: "eth-usdc", BaseAsset: eth.ID, QuoteAsset: usdc.ID, Price: model.MustPrice("5")},
		{ID: "usdc-eth", BaseAsset: usdc.ID, QuoteAsset: eth.ID, ReversePrice: model.MustPrice("5")},
		{ID: "btc-eth", BaseAsset: btc.ID, QuoteAsset: eth.ID, Price: model.MustPrice("7")},
	}

	assert.Equal(t, []string{"btc-usdc-bid"}, ids(Build(orders, btcUsdc, model.BID, 0)))
	assert.Equal(t, []string{"btc-usdc-ask"}, ids(Build(orders, btcUsdc, model.ASK, 0)))
	assert.Equal(t, []string{"eth-usdc"}, ids(Build(orders, ethUsdc, model.BID, 0)))
	assert.Equal(t, []string{"usdc-eth"}, ids(Build(orders, ethUsdc, model.ASK, 0)))
	assert.Equal(t, []string{"btc-eth"}, ids(Build(orders, btcEth, model.BID, 0)))
	assert.Empty(t, Build(orders, btcEth, model.ASK, 0))
}

func TestBuildUnknownPricesLast(t *testing.T) {
	orders := []model.Order{
		bid("five", "5"),
		bid("null-a", ""),
		bid("three", "3"),
		bid("null-b", ""),
		bid("eight", "8"),
	}
	assert.Equal(t,
		[]string{"eight", "five", "three", "null-a", "null-b"},
		ids(Build(orders, btcUsdc, model.BID, 0)))

	asks := []model.Order{
		ask("five", "5"),
		ask("null-a", ""),
		ask("three", "3"),
		ask("null-b", ""),
		ask("eight", "8"),
	}
	assert.Equal(t,
		[]string{"three", "five", "eight", "null-a", "null-b"},
		ids(Build(asks, btcUsdc, model.ASK, 0)))
}

func TestBuildEqualPricesKeepInputOrder(t *testing.T) {
	orders := []model.Order{bid("a", "2"), bid("b", "2.0"), bid("c", "3"), bid("d", "2.00")}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(Build(orders, btcUsdc, model.BID, 0)))
}

func TestBuildMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n <= 100; n++ {
		var orders []model.Order
		for i := range n {
			price := ""
			if rng.Intn(5) > 0 {
				price = decimal.New(rng.Int63n(100000), -int32(rng.Intn(4))).String()
			}
			if rng.Intn(2) == 0 {
				orders = append(orders, bid(fmt.Sprintf("b%d", i), price))
			} else {
				orders = append(orders, ask(fmt.Sprintf("a%d", i), price))
			}
		}

		bidLadder := Build(orders, btcUsdc, model.BID, 0)
		for i := 1; i < len(bidLadder); i++ {
			prev, cur := bidLadder[i-1].Price, bidLadder[i].Price
			if !cur.Known() {
				continue
			}
			require.True(t, prev.Known(), "n=%d: known price after unknown at %d", n, i)
			p, _ := prev.Decimal()
			c, _ := cur.Decimal()
			require.True(t, p.GreaterThanOrEqual(c), "n=%d: bids not descending at %d", n, i)
		}

		askLadder := Build(orders, btcUsdc, model.ASK, 0)
		for i := 1; i < len(askLadder); i++ {
			prev, cur := askLadder[i-1].ReversePrice, askLadder[i].ReversePrice
			if !cur.Known() {
				continue
			}
			require.True(t, prev.Known(), "n=%d: known price after unknown at %d", n, i)
			p, _ := prev.Decimal()
			c, _ := cur.Decimal()
			require.True(t, p.LessThanOrEqual(c), "n=%d: asks not ascending at %d", n, i)
		}

		assert.Equal(t, len(orders), len(bidLadder)+len(askLadder))
	}
}

func TestBuildTruncationKeepsTail(t *testing.T) {
	orders := bids(30)
	full := Build(orders, btcUsdc, model.BID, 0)
	require.Len(t, full, 30)

	truncated := Build(orders, btcUsdc, model.BID, 12)
	assert.Equal(t, ids(full[18:]), ids(truncated))
	assert.Equal(t, "b11", truncated[0].ID)
	assert.Equal(t, "b0", truncated[11].ID)

	assert.Len(t, Build(orders, btcUsdc, model.BID, -1), 30)
	assert.Len(t, Build(orders, btcUsdc, model.BID, 50), 30)
}

// --- Renderer ---------------------------------------------------------------

func TestRenderRowCount(t *testing.T) {
	rows := DefaultRowCounts()
	for _, n := range []int{0, 1, 5, 12, 13, 30} {
		ladder := Build(bids(n), btcUsdc, model.BID, 0)

		compact := Render(ladder, ladderModel.BidSide, RenderOptions{Rows: rows.Compact, Precision: 2, Pad: true})
		assert.Len(t, compact, 12, "compact, %d orders", n)

		expanded := Render(ladder, ladderModel.BidSide, RenderOptions{Rows: rows.Expanded, Precision: 2})
		assert.Len(t, expanded, min(n, 25), "expanded, %d orders", n)
		for _, r := range expanded {
			assert.False(t, r.IsPlaceholder())
		}
	}
}

func TestRenderPlaceholderEdges(t *testing.T) {
	opts := RenderOptions{Rows: 4, Precision: 2, Pad: true}

	bidRows := Render([]model.Order{bid("b", "1")}, ladderModel.BidSide, opts)
	require.Len(t, bidRows, 4)
	for _, r := range bidRows[:3] {
		assert.True(t, r.IsPlaceholder())
		assert.Equal(t, model.PlaceholderGlyph, r.Price)
		assert.Equal(t, model.PlaceholderGlyph, r.Amount)
		assert.Equal(t, model.PlaceholderGlyph, r.Total)
		assert.Nil(t, r.Order)
	}
	assert.Equal(t, "b", bidRows[3].OrderID)

	askRows := Render([]model.Order{ask("a", "1")}, ladderModel.AskSide, opts)
	require.Len(t, askRows, 4)
	assert.Equal(t, "a", askRows[0].OrderID)
	for _, r := range askRows[1:] {
		assert.True(t, r.IsPlaceholder())
	}
}

func TestRenderColumns(t *testing.T) {
	o := model.Order{
		ID:           "x",
		Price:        model.MustPrice("20000.125"),
		ReversePrice: model.MustPrice("0.00005"),
		Amount:       decimal.RequireFromString("1.5"),
		Total:        decimal.RequireFromString("30000.1875"),
		AmountLeft:   decimal.RequireFromString("0.5"),
		TotalLeft:    decimal.RequireFromString("10000"),
	}

	b := Render([]model.Order{o}, ladderModel.BidSide, RenderOptions{Rows: 1, Precision: 2})
	require.Len(t, b, 1)
	assert.Equal(t, "20000.13", b[0].Price)
	assert.Equal(t, "1.5", b[0].Amount)
	assert.Equal(t, "30000.1875", b[0].Total)

	a := Render([]model.Order{o}, ladderModel.AskSide, RenderOptions{Rows: 1, Precision: 6})
	require.Len(t, a, 1)
	assert.Equal(t, "0.000050", a[0].Price)
	assert.Equal(t, "10000", a[0].Amount)
	assert.Equal(t, "0.5", a[0].Total)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.00", FormatPrice(model.MustPrice("1"), 2))
	assert.Equal(t, "2.35", FormatPrice(model.MustPrice("2.345"), 2))
	assert.Equal(t, "-2.35", FormatPrice(model.MustPrice("-2.345"), 2))
	assert.Equal(t, "3", FormatPrice(model.MustPrice("2.5"), -1))
	assert.Equal(t, model.PlaceholderGlyph, FormatPrice(model.UnknownPrice(), 2))
}

// --- Spread -----------------------------------------------------------------

func TestSpread(t *testing.T) {
	spread := ComputeSpread(
		[]model.Order{bid("n", ""), bid("b1", "96.5"), bid("b2", "90")},
		[]model.Order{ask("a1", "100"), ask("a2", "101")},
	)
	require.True(t, spread.Available)
	assert.Equal(t, "96.5", spread.BestBid.Decimal.String())
	assert.Equal(t, "100", spread.BestAsk.Decimal.String())
	assert.Equal(t, "3.5", spread.Percent.Decimal.String())
	assert.Equal(t, "98.25", spread.Mid.Decimal.String())
	assert.Equal(t, "3.50 %", SpreadLabel(spread))
	assert.Equal(t, "98.25", PriceLabel(spread, 2))
}

func TestSpreadUnavailable(t *testing.T) {
	cases := map[string]struct {
		bids, asks []model.Order
	}{
		"empty bids":         {nil, []model.Order{ask("a", "100")}},
		"empty asks":         {[]model.Order{bid("b", "99")}, nil},
		"only unknown bids":  {[]model.Order{bid("b", "")}, []model.Order{ask("a", "100")}},
		"zero best ask":      {[]model.Order{bid("b", "99")}, []model.Order{ask("a", "0")}},
		"both sides missing": {nil, nil},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			spread := ComputeSpread(c.bids, c.asks)
			assert.False(t, spread.Available)
			assert.False(t, spread.Percent.Valid)
			assert.Equal(t, model.PlaceholderGlyph, SpreadLabel(spread))
		})
	}
}

// --- Row selection ----------------------------------------------------------

func TestSelectRowBid(t *testing.T) {
	rows := Render([]model.Order{bid("b", "20000.123456")}, ladderModel.BidSide, RenderOptions{Rows: 12, Precision: 2, Pad: true})
	entry := &recordingEntry{}

	units, err := SelectRow(rows[11], usdc, entry)
	require.NoError(t, err)
	assert.Equal(t, "20000123456", units.String())
	assert.Equal(t, "20000123456", entry.buy.String())
	assert.Equal(t, "20000123456", entry.sell.String())
	assert.True(t, entry.buyConfirmed)
	assert.True(t, entry.sellConfirmed)
	assert.Equal(t, 2, entry.calls)
}

func TestSelectRowAskUsesReversePrice(t *testing.T) {
	o := ask("a", "0.0000505")
	o.Price = model.MustPrice("19801.98")
	rows := Render([]model.Order{o}, ladderModel.AskSide, RenderOptions{Rows: 1})
	entry := &recordingEntry{}

	_, err := SelectRow(rows[0], usdc, entry)
	require.NoError(t, err)
	assert.Equal(t, "51", entry.buy.String())
	assert.Equal(t, "51", entry.sell.String())
}

func TestSelectRowNotSelectable(t *testing.T) {
	rows := Render([]model.Order{bid("n", "")}, ladderModel.BidSide, RenderOptions{Rows: 2, Pad: true})
	entry := &recordingEntry{}

	_, err := SelectRow(rows[0], usdc, entry)
	assert.ErrorIs(t, err, ErrRowNotSelectable)
	_, err = SelectRow(rows[1], usdc, entry)
	assert.ErrorIs(t, err, ErrRowNotSelectable)
	assert.Zero(t, entry.calls)
}

// --- View -------------------------------------------------------------------

func TestRebuildCompact(t *testing.T) {
	e := New(DefaultRowCounts())
	snapshot := append(bids(3), ask("a1", "105"), ask("a2", ""), bid("other", "1"))
	snapshot[5].QuoteAsset = eth.ID

	view := e.Rebuild(snapshot, Params{Pair: btcUsdc, Filter: FilterBoth, Precision: 2})
	assert.Equal(t, "compact", view.Mode)
	assert.Equal(t, "BTC/USDC", view.Pair)
	assert.Len(t, view.Bids, 12)
	assert.Len(t, view.Asks, 12)
	assert.Equal(t, "102.00", view.Bids[9].Price)
	assert.Equal(t, "105.00", view.Asks[0].Price)
	assert.Equal(t, model.PlaceholderGlyph, view.Asks[1].Price)
	assert.False(t, view.Asks[1].IsPlaceholder())

	require.NotNil(t, view.Spread)
	assert.True(t, view.Spread.Available)
	assert.Equal(t, "2.86 %", view.SpreadLabel)
	assert.Equal(t, "103.50", view.PriceLabel)
}

func TestRebuildExpanded(t *testing.T) {
	e := New(DefaultRowCounts())
	snapshot := append(bids(30), ask("a", "1"))

	view := e.Rebuild(snapshot, Params{Pair: btcUsdc, Filter: FilterBidsOnly, Precision: 4})
	assert.Equal(t, "expanded", view.Mode)
	assert.Len(t, view.Bids, 25)
	assert.Empty(t, view.Asks)
	assert.Nil(t, view.Spread)
	assert.Empty(t, view.SpreadLabel)

	view = e.Rebuild(snapshot, Params{Pair: btcUsdc, Filter: FilterAsksOnly, Precision: 4})
	assert.Empty(t, view.Bids)
	require.Len(t, view.Asks, 1)
	assert.Equal(t, "1.0000", view.Asks[0].Price)
}

func TestRebuildSpreadUsesWholeLadder(t *testing.T) {
	e := New(DefaultRowCounts())
	snapshot := append(bids(30), ask("a", "200"))

	view := e.Rebuild(snapshot, Params{Pair: btcUsdc, Filter: FilterBoth, Precision: 2})
	require.True(t, view.Spread.Available)
	assert.Equal(t, "129", view.Spread.BestBid.Decimal.String())
}

func TestLoading(t *testing.T) {
	view := New(DefaultRowCounts()).Loading(Params{Pair: btcUsdc})
	assert.True(t, view.Loading)
	assert.Equal(t, 13, view.SkeletonRows)
	assert.Empty(t, view.Bids)
	assert.Empty(t, view.Asks)
	assert.Nil(t, view.Spread)
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterBoth, "both": FilterBoth, "1": FilterBidsOnly, "asks": FilterAsksOnly, "SELL": FilterAsksOnly} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilter("sideways")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	assert.Equal(t, ModeCompact, FilterBoth.Mode())
	assert.Equal(t, ModeExpanded, FilterBidsOnly.Mode())
	assert.Equal(t, ModeExpanded, FilterAsksOnly.Mode())
}

func TestParsePrecision(t *testing.T) {
	p, err := ParsePrecision("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrecision, p)

	p, err = ParsePrecision("5")
	require.NoError(t, err)
	assert.Equal(t, int32(5), p)

	for _, bad := range []string{"3", "-1", "abc"} {
		_, err = ParsePrecision(bad)
		assert.ErrorIs(t, err, ErrInvalidPrecision, bad)
	}
}

// --- Depth ------------------------------------------------------------------

func TestAggregate(t *testing.T) {
	ladder := Build([]model.Order{
		bid("a", "10.004"),
		bid("b", "10.001"),
		bid("c", "9.5"),
		bid("n1", ""),
		bid("n2", ""),
	}, btcUsdc, model.BID, 0)

	levels := Aggregate(ladder, ladderModel.BidSide, 2)
	require.Len(t, levels, 3)
	assert.Equal(t, "10", levels[0].Price.String())
	assert.Equal(t, 2, levels[0].OrderCount)
	assert.Equal(t, "2", levels[0].Amount.String())
	assert.Equal(t, "4", levels[0].Total.String())
	assert.Equal(t, "9.5", levels[1].Price.String())
	assert.False(t, levels[2].Price.Known())
	assert.Equal(t, 2, levels[2].OrderCount)
}
