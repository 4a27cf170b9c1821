package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/karen-369/spark/internal/config"
	"github.com/karen-369/spark/internal/engine"
	"github.com/karen-369/spark/internal/feed"
	infraLog "github.com/karen-369/spark/internal/infra/log"
	"github.com/karen-369/spark/internal/infra/metrics"
	assetRepository "github.com/karen-369/spark/internal/repository/asset"
	orderRepository "github.com/karen-369/spark/internal/repository/order"
	"github.com/karen-369/spark/internal/router"
	"github.com/karen-369/spark/internal/router/middleware"
	"github.com/karen-369/spark/internal/store"
	"github.com/karen-369/spark/internal/usecase/entry"
	"github.com/karen-369/spark/internal/usecase/orderbook"
	"github.com/karen-369/spark/internal/websocket"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("loading config")
	}
	logger := infraLog.NewLogger(cfg)
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is not set")
	}
	registry := metrics.Init(logger)

	assetRepo, err := loadAssets(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading asset registry")
	}
	pairs, err := assetRepository.ParsePairs(assetRepo, cfg.Book.Pairs)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolving pairs")
	}

	orderStore := store.New()
	stopSource, err := startOrderSource(rootCtx, cfg, orderStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Orders.Source).Msg("starting order source")
	}

	hub := websocket.NewHub(logger)
	go hub.Run(rootCtx)

	entryUseCase := entry.NewEntryUseCase()
	orderBookUseCase := orderbook.NewOrderBookUseCase(orderbook.OrderBookUseCaseOpts{
		Engine: engine.New(engine.RowCounts{
			Compact:              cfg.Book.RowsCompact,
			CompactWithSpreadRow: cfg.Book.RowsCompactWithSpread,
			Expanded:             cfg.Book.RowsExpanded,
		}),
		Store:            orderStore,
		AssetRepo:        assetRepo,
		EntryUseCase:     entryUseCase,
		Pairs:            pairs,
		DefaultPrecision: cfg.Book.DefaultDecimals,
		Logger:           logger,
	})
	orderBookUseCase.RegisterLadderHandler(func(pair model.Pair, view model.LadderView) {
		hub.PublishLadder(pair.Topic(), view)
	})
	go func() {
		if err := orderBookUseCase.Watch(rootCtx); err != nil {
			logger.Error().Err(err).Msg("ladder watch stopped")
		}
	}()

	serveMux := http.NewServeMux()
	router.BindRouter(router.BindRouterOpts{
		ServerRouter:     serveMux,
		OrderBookUseCase: orderBookUseCase,
		EntryUseCase:     entryUseCase,
		TokenMaker:       middleware.NewJWTMaker(cfg.Auth.JWTSecret),
		Hub:              hub,
		Registry:         registry,
		Logger:           logger,
	})
	logger.Info().Int("pairs", len(pairs)).Msg("finished binding router")

	server := http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router.Cors(serveMux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutdown signal received")

	// in-flight requests get up to 10s
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown failed; forcing close")
		_ = server.Close()
	}
	if err := stopSource(); err != nil {
		logger.Warn().Err(err).Msg("stopping order source")
	}

	logger.Info().Msg("server stopped")
}

func loadAssets(cfg config.Config) (assetRepository.AssetRepository, error) {
	if cfg.Book.AssetsFile != "" {
		return assetRepository.LoadFile(cfg.Book.AssetsFile)
	}
	return assetRepository.NewAssetRepository(assetRepository.DefaultAssets)
}

// startOrderSource wires the configured source into the store and returns
// a function that stops it.
func startOrderSource(ctx context.Context, cfg config.Config, orderStore *store.Store, logger zerolog.Logger) (func() error, error) {
	switch cfg.Orders.Source {
	case config.SourcePostgres:
		db, err := sqlx.Connect("postgres", cfg.DSN())
		if err != nil {
			return nil, err
		}
		refresher := store.NewRefresher(orderStore, orderRepository.NewOrderRepository(db), cfg.Orders.RefreshInterval, logger)
		refresher.Start(ctx)
		return func() error {
			err := refresher.Stop()
			return errors.Join(err, db.Close())
		}, nil

	case config.SourceFeed:
		client := feed.NewClient(cfg.Orders.FeedURL, orderStore, logger)
		done := make(chan error, 1)
		go func() { done <- client.Run(ctx) }()
		return func() error { return <-done }, nil
	}

	// no upstream: an empty, loaded book
	logger.Warn().Msg("no order source configured")
	orderStore.Replace(nil)
	return func() error { return nil }, nil
}
