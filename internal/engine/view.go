package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/pkg/model"
)

var (
	ErrInvalidFilter    = errors.New("invalid order filter")
	ErrInvalidPrecision = errors.New("invalid decimal precision")
)

// Filter is the ladder selection chosen by the user.
type Filter uint8

const (
	FilterBoth Filter = iota
	FilterBidsOnly
	FilterAsksOnly
)

func (f Filter) String() string {
	switch f {
	case FilterBidsOnly:
		return "bids"
	case FilterAsksOnly:
		return "asks"
	}
	return "both"
}

// ParseFilter accepts the names returned by String and the numeric
// indexes 0, 1 and 2. An empty string is FilterBoth.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "0":
		return FilterBoth, nil
	case "bids", "bid", "buy", "1":
		return FilterBidsOnly, nil
	case "asks", "ask", "sell", "2":
		return FilterAsksOnly, nil
	}
	return FilterBoth, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

type Mode uint8

const (
	ModeCompact Mode = iota
	ModeExpanded
)

func (m Mode) String() string {
	if m == ModeExpanded {
		return "expanded"
	}
	return "compact"
}

func (f Filter) Mode() Mode {
	if f == FilterBoth {
		return ModeCompact
	}
	return ModeExpanded
}

func (f Filter) ShowsBids() bool { return f != FilterAsksOnly }
func (f Filter) ShowsAsks() bool { return f != FilterBidsOnly }

// RowCounts are the visible row counts per view mode.
type RowCounts struct {
	Compact int
	// CompactWithSpreadRow is the skeleton row count drawn while loading.
	CompactWithSpreadRow int
	Expanded             int
}

func DefaultRowCounts() RowCounts {
	return RowCounts{Compact: 12, CompactWithSpreadRow: 13, Expanded: 25}
}

func (r RowCounts) For(m Mode) int {
	if m == ModeExpanded {
		return r.Expanded
	}
	return r.Compact
}

var PrecisionOptions = []int32{2, 4, 5, 6}

const DefaultPrecision int32 = 2

// ParsePrecision validates a precision against PrecisionOptions. An empty
// string is DefaultPrecision.
func ParsePrecision(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPrecision, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || !slices.Contains(PrecisionOptions, int32(n)) {
		return 0, fmt.Errorf("%w: %q, expected one of %v", ErrInvalidPrecision, s, PrecisionOptions)
	}
	return int32(n), nil
}

type Params struct {
	Pair      model.Pair
	Filter    Filter
	Precision int32
}

// Engine rebuilds ladder views. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	rows RowCounts
}

func New(rows RowCounts) *Engine {
	return &Engine{rows: rows}
}

func (e *Engine) RowCounts() RowCounts {
	return e.rows
}

// Rebuild renders the whole view for a snapshot from scratch.
func (e *Engine) Rebuild(snapshot []model.Order, params Params) model.LadderView {
	mode := params.Filter.Mode()
	view := e.header(params)
	opts := RenderOptions{
		Rows:      e.rows.For(mode),
		Precision: params.Precision,
		Pad:       mode == ModeCompact,
	}

	var bids, asks []model.Order
	if params.Filter.ShowsBids() {
		bids = Build(snapshot, params.Pair, model.BID, 0)
		view.Bids = Render(bids, ladderModel.BidSide, opts)
	}
	if params.Filter.ShowsAsks() {
		asks = Build(snapshot, params.Pair, model.ASK, 0)
		view.Asks = Render(asks, ladderModel.AskSide, opts)
	}

	if mode == ModeCompact {
		spread := ComputeSpread(bids, asks)
		view.Spread = &spread
		view.SpreadLabel = SpreadLabel(spread)
		view.PriceLabel = PriceLabel(spread, params.Precision)
	}
	return view
}

// Loading is the view shown before the order store has loaded.
func (e *Engine) Loading(params Params) model.LadderView {
	view := e.header(params)
	view.Loading = true
	view.SkeletonRows = e.rows.CompactWithSpreadRow
	return view
}

func (e *Engine) header(params Params) model.LadderView {
	return model.LadderView{
		Pair:      params.Pair.String(),
		Filter:    params.Filter.String(),
		Mode:      params.Filter.Mode().String(),
		Precision: params.Precision,
		Bids:      []model.DisplayRow{},
		Asks:      []model.DisplayRow{},
	}
}
