package store

import (
	"context"
	"time"

	"github.com/karen-369/spark/internal/infra/metrics"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

// Source lists every open order, e.g. the postgres order repository.
type Source interface {
	ListActiveOrders(ctx context.Context) ([]model.Order, error)
}

// Refresher polls a Source and replaces the store contents on every tick.
type Refresher struct {
	store    *Store
	source   Source
	interval time.Duration
	logger   zerolog.Logger
	t        *tomb.Tomb
}

func NewRefresher(store *Store, source Source, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		store:    store,
		source:   source,
		interval: interval,
		logger:   logger.With().Str("component", "refresher").Logger(),
	}
}

// Start loads once and then refreshes in the background until ctx is done
// or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	t, ctx := tomb.WithContext(ctx)
	r.t = t
	t.Go(func() error {
		return r.loop(ctx)
	})
}

func (r *Refresher) Stop() error {
	if r.t == nil {
		return nil
	}
	r.t.Kill(nil)
	return r.t.Wait()
}

func (r *Refresher) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return nil
		case <-ticker.C:
			r.refreshLogged(ctx)
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		metrics.StoreRefreshErrorsTotal.Inc()
		r.logger.Error().Err(err).Msg("refreshing open orders")
	}
}

// Refresh lists the source once and replaces the store contents. The store
// is left untouched on error.
func (r *Refresher) Refresh(ctx context.Context) error {
	orders, err := r.source.ListActiveOrders(ctx)
	if err != nil {
		return err
	}
	r.store.Replace(orders)
	metrics.StoreOrders.Set(float64(len(orders)))
	return nil
}
