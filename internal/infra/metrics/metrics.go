package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	LadderRebuildsTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ladder_rebuilds_total", Help: "Ladder view rebuilds by pair and trigger"}, []string{"pair", "trigger"})
	LadderRebuildSeconds    = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ladder_rebuild_seconds", Help: "Ladder rebuild latency", Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14)})
	LadderRowsSelectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ladder_rows_selected_total", Help: "Rows selected into the order entry by side"}, []string{"side"})
	SpreadPercent           = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "spread_percent", Help: "Last computed spread percentage by pair"}, []string{"pair"})

	StoreOrders             = prometheus.NewGauge(prometheus.GaugeOpts{Name: "store_orders", Help: "Open orders held by the order store"})
	StoreRefreshErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "store_refresh_errors_total", Help: "Failed order source refreshes"})
	FeedReconnectsTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_reconnects_total", Help: "Upstream order feed reconnects"})
	FeedBadEventsTotal      = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_bad_events_total", Help: "Feed events that failed to decode"})
	FeedSkippedOrdersTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_skipped_orders_total", Help: "Snapshot orders dropped for a missing or repeated id"})

	WSClients           = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ws_clients", Help: "Connected websocket clients"})
	WSPublishDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "ws_publish_drops_total", Help: "Websocket messages dropped on full buffers"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		LadderRebuildsTotal, LadderRebuildSeconds, LadderRowsSelectedTotal, SpreadPercent,
		StoreOrders, StoreRefreshErrorsTotal, FeedReconnectsTotal, FeedBadEventsTotal, FeedSkippedOrdersTotal,
		WSClients, WSPublishDropsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
