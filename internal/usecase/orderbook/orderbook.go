package orderbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karen-369/spark/internal/engine"
	ladderModel "github.com/karen-369/spark/internal/engine/model"
	"github.com/karen-369/spark/internal/infra/metrics"
	assetRepository "github.com/karen-369/spark/internal/repository/asset"
	"github.com/karen-369/spark/internal/store"
	"github.com/karen-369/spark/internal/usecase/entry"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
)

var (
	ErrOrderNotFound = errors.New("order not found in ladder")
	ErrBookLoading   = errors.New("order book is still loading")
)

type OrderBookUseCase interface {
	GetLadder(ctx context.Context, base, quote string, filter engine.Filter, precision int32) (model.LadderView, error)
	GetDepth(ctx context.Context, base, quote string, side model.Side, precision int32, limit int) ([]model.DepthLevel, error)
	// SelectOrder selects the row of orderID in the view the wallet is
	// looking at and returns the updated order entry draft.
	SelectOrder(ctx context.Context, wallet, base, quote, orderID string, filter engine.Filter, precision int32) (entry.Draft, error)

	RegisterLadderHandler(handler LadderHandler)
	// Watch rebuilds the compact view of every configured pair on each store
	// change and hands it to the registered handler, until ctx is done.
	Watch(ctx context.Context) error
	Pairs() []model.Pair
}

type LadderHandler func(pair model.Pair, view model.LadderView)

type OrderBookUseCaseOpts struct {
	Engine           *engine.Engine
	Store            *store.Store
	AssetRepo        assetRepository.AssetRepository
	EntryUseCase     entry.EntryUseCase
	Pairs            []model.Pair
	// DefaultPrecision is the precision of the views pushed by Watch. It
	// must be one of engine.PrecisionOptions.
	DefaultPrecision int32
	Logger           zerolog.Logger
}

type orderBookUseCaseImpl struct {
	engine    *engine.Engine
	store     *store.Store
	assetRepo assetRepository.AssetRepository
	entryUc   entry.EntryUseCase
	pairs     []model.Pair
	precision int32
	logger    zerolog.Logger

	ladderHandler LadderHandler
}

func NewOrderBookUseCase(opts OrderBookUseCaseOpts) OrderBookUseCase {
	return &orderBookUseCaseImpl{
		engine:    opts.Engine,
		store:     opts.Store,
		assetRepo: opts.AssetRepo,
		entryUc:   opts.EntryUseCase,
		pairs:     opts.Pairs,
		precision: opts.DefaultPrecision,
		logger:    opts.Logger.With().Str("component", "orderbook").Logger(),
	}
}

func (ou *orderBookUseCaseImpl) RegisterLadderHandler(handler LadderHandler) {
	ou.ladderHandler = handler
}

func (ou *orderBookUseCaseImpl) Pairs() []model.Pair {
	return ou.pairs
}

func (ou *orderBookUseCaseImpl) GetLadder(ctx context.Context, base, quote string, filter engine.Filter, precision int32) (model.LadderView, error) {
	pair, err := ou.assetRepo.ResolvePair(base, quote)
	if err != nil {
		return model.LadderView{}, err
	}
	params := engine.Params{Pair: pair, Filter: filter, Precision: precision}

	snapshot, initialized := ou.store.Snapshot()
	if !initialized {
		return ou.engine.Loading(params), nil
	}
	return ou.rebuild(snapshot, params, "request"), nil
}

func (ou *orderBookUseCaseImpl) GetDepth(ctx context.Context, base, quote string, side model.Side, precision int32, limit int) ([]model.DepthLevel, error) {
	pair, err := ou.assetRepo.ResolvePair(base, quote)
	if err != nil {
		return nil, err
	}
	snapshot, initialized := ou.store.Snapshot()
	if !initialized {
		return nil, ErrBookLoading
	}
	ladder := engine.Build(snapshot, pair, side, limit)
	return engine.Aggregate(ladder, ladderModel.For(side), precision), nil
}

func (ou *orderBookUseCaseImpl) SelectOrder(ctx context.Context, wallet, base, quote, orderID string, filter engine.Filter, precision int32) (entry.Draft, error) {
	pair, err := ou.assetRepo.ResolvePair(base, quote)
	if err != nil {
		return entry.Draft{}, err
	}
	snapshot, initialized := ou.store.Snapshot()
	if !initialized {
		return entry.Draft{}, ErrBookLoading
	}

	view := ou.engine.Rebuild(snapshot, engine.Params{Pair: pair, Filter: filter, Precision: precision})
	row, ok := engine.FindRow(view, orderID)
	if !ok {
		return entry.Draft{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	units, err := engine.SelectRow(row, pair.Quote, ou.entryUc.For(wallet, pair.Quote))
	if err != nil {
		return entry.Draft{}, fmt.Errorf("order %s: %w", orderID, err)
	}

	metrics.LadderRowsSelectedTotal.WithLabelValues(row.Side.String()).Inc()
	ou.logger.Debug().
		Str("wallet", wallet).
		Str("pair", pair.String()).
		Str("order", orderID).
		Str("units", units.String()).
		Msg("row selected")
	return ou.entryUc.GetDraft(ctx, wallet), nil
}

func (ou *orderBookUseCaseImpl) Watch(ctx context.Context) error {
	changes, cancel := ou.store.Subscribe()
	defer cancel()

	ou.publishAll("start")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			ou.publishAll("store")
		}
	}
}

func (ou *orderBookUseCaseImpl) publishAll(trigger string) {
	if ou.ladderHandler == nil {
		return
	}
	snapshot, initialized := ou.store.Snapshot()
	for _, pair := range ou.pairs {
		params := engine.Params{Pair: pair, Filter: engine.FilterBoth, Precision: ou.precision}
		if !initialized {
			ou.ladderHandler(pair, ou.engine.Loading(params))
			continue
		}
		ou.ladderHandler(pair, ou.rebuild(snapshot, params, trigger))
	}
}

func (ou *orderBookUseCaseImpl) rebuild(snapshot []model.Order, params engine.Params, trigger string) model.LadderView {
	start := time.Now()
	view := ou.engine.Rebuild(snapshot, params)
	metrics.LadderRebuildSeconds.Observe(time.Since(start).Seconds())
	metrics.LadderRebuildsTotal.WithLabelValues(params.Pair.String(), trigger).Inc()
	if view.Spread != nil && view.Spread.Available {
		metrics.SpreadPercent.WithLabelValues(params.Pair.String()).Set(view.Spread.Percent.Decimal.InexactFloat64())
	}
	return view
}
