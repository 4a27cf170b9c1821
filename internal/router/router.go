package router

import (
	"net/http"
	"time"

	"github.com/karen-369/spark/internal/infra/metrics"
	"github.com/karen-369/spark/internal/router/middleware"
	"github.com/karen-369/spark/internal/usecase/entry"
	"github.com/karen-369/spark/internal/usecase/orderbook"
	"github.com/karen-369/spark/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	n      int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.n += n
	return n, err
}

func logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("bytes", sw.n).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}

// Cors wraps the whole mux: http.ListenAndServe(":8080", Cors(mux))
func Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			reqHdrs := r.Header.Get("Access-Control-Request-Headers")
			if reqHdrs == "" {
				reqHdrs = "Content-Type, Authorization"
			}
			w.Header().Set("Access-Control-Allow-Headers", reqHdrs)

			reqMethod := r.Header.Get("Access-Control-Request-Method")
			if reqMethod == "" {
				reqMethod = "GET, POST, DELETE, OPTIONS"
			}
			w.Header().Set("Access-Control-Allow-Methods", reqMethod)
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		// preflight never hits the route table
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bindOrderBook(serverRouter *http.ServeMux, usecase orderbook.OrderBookUseCase, tokenMaker *middleware.JWTMaker, logger zerolog.Logger) {
	authmiddleware := middleware.AuthMiddleware(tokenMaker)
	logmiddleware := logging(logger)
	obRouter := NewOrderBookRouter(usecase)
	serverRouter.Handle("GET /api/v1/pairs", logmiddleware(authmiddleware(http.HandlerFunc(obRouter.ListPairs))))
	serverRouter.Handle("GET /api/v1/orderbook/{base}/{quote}", logmiddleware(authmiddleware(http.HandlerFunc(obRouter.GetLadder))))
	serverRouter.Handle("GET /api/v1/orderbook/{base}/{quote}/depth", logmiddleware(authmiddleware(http.HandlerFunc(obRouter.GetDepth))))
	serverRouter.Handle("POST /api/v1/orderbook/{base}/{quote}/select", logmiddleware(authmiddleware(http.HandlerFunc(obRouter.SelectOrder))))
}

func bindEntry(serverRouter *http.ServeMux, usecase entry.EntryUseCase, tokenMaker *middleware.JWTMaker, logger zerolog.Logger) {
	authmiddleware := middleware.AuthMiddleware(tokenMaker)
	logmiddleware := logging(logger)
	entryRouter := NewEntryRouter(usecase)
	serverRouter.Handle("GET /api/v1/order-entry", logmiddleware(authmiddleware(http.HandlerFunc(entryRouter.GetDraft))))
	serverRouter.Handle("DELETE /api/v1/order-entry", logmiddleware(authmiddleware(http.HandlerFunc(entryRouter.ResetDraft))))
}

func bindWS(serverRouter *http.ServeMux, hub *websocket.Hub, tokenMaker *middleware.JWTMaker) {
	authmiddleware := middleware.AuthMiddleware(tokenMaker)
	serverRouter.Handle("GET /ws", authmiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := requireWallet(w, r)
		if !ok {
			return
		}
		websocket.ServeWS(hub, wallet, w, r)
	})))
}

type BindRouterOpts struct {
	ServerRouter     *http.ServeMux
	OrderBookUseCase orderbook.OrderBookUseCase
	EntryUseCase     entry.EntryUseCase
	TokenMaker       *middleware.JWTMaker
	Hub              *websocket.Hub
	Registry         *prometheus.Registry
	Logger           zerolog.Logger
}

func BindRouter(opts BindRouterOpts) {
	bindOrderBook(opts.ServerRouter, opts.OrderBookUseCase, opts.TokenMaker, opts.Logger)
	bindEntry(opts.ServerRouter, opts.EntryUseCase, opts.TokenMaker, opts.Logger)
	if opts.Hub != nil {
		bindWS(opts.ServerRouter, opts.Hub, opts.TokenMaker)
	}
	if opts.Registry != nil {
		opts.ServerRouter.Handle("GET /metrics", metrics.Handler(opts.Registry))
	}

	//healthcheck
	opts.ServerRouter.Handle("GET /healthz", logging(opts.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": 200,
			"health": "healthy",
		})
	})))
}
