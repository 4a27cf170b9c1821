package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/karen-369/spark/internal/engine"
	"github.com/karen-369/spark/internal/usecase/entry"
	"github.com/karen-369/spark/internal/usecase/orderbook"
	"github.com/karen-369/spark/pkg/model"
)

type OrderBookRouter interface {
	GetLadder(w http.ResponseWriter, r *http.Request)
	GetDepth(w http.ResponseWriter, r *http.Request)
	SelectOrder(w http.ResponseWriter, r *http.Request)
	ListPairs(w http.ResponseWriter, r *http.Request)
}

type orderBookRouterImpl struct {
	usecase orderbook.OrderBookUseCase
}

func NewOrderBookRouter(usecase orderbook.OrderBookUseCase) OrderBookRouter {
	return &orderBookRouterImpl{usecase: usecase}
}

// GET /api/v1/orderbook/{base}/{quote}?filter=both&decimals=2
func (or *orderBookRouterImpl) GetLadder(w http.ResponseWriter, r *http.Request) {
	filter, precision, err := viewParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := or.usecase.GetLadder(r.Context(), r.PathValue("base"), r.PathValue("quote"), filter, precision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/v1/orderbook/{base}/{quote}/depth?side=bid&decimals=2&limit=50
func (or *orderBookRouterImpl) GetDepth(w http.ResponseWriter, r *http.Request) {
	type DepthResponse struct {
		Pair   string             `json:"pair"`
		Side   model.Side         `json:"side"`
		Levels []model.DepthLevel `json:"levels"`
	}
	q := r.URL.Query()
	side, err := model.ParseSide(q.Get("side"))
	if err != nil {
		writeStatusError(w, http.StatusBadRequest, err)
		return
	}
	precision, err := engine.ParsePrecision(q.Get("decimals"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeStatusError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
	}

	base, quote := r.PathValue("base"), r.PathValue("quote")
	levels, err := or.usecase.GetDepth(r.Context(), base, quote, side, precision, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DepthResponse{Pair: base + "/" + quote, Side: side, Levels: levels})
}

// POST /api/v1/orderbook/{base}/{quote}/select?filter=both&decimals=2
func (or *orderBookRouterImpl) SelectOrder(w http.ResponseWriter, r *http.Request) {
	type SelectOrderRequest struct {
		OrderID string `json:"orderId"`
	}
	type SelectOrderResponse struct {
		Status string      `json:"status"` // "selected"
		Draft  entry.Draft `json:"draft"`
	}
	wallet, ok := requireWallet(w, r)
	if !ok {
		return
	}
	filter, precision, err := viewParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := decodeBody[SelectOrderRequest](w, r)
	if err != nil {
		writeStatusError(w, http.StatusBadRequest, err)
		return
	}
	if req.OrderID == "" {
		writeStatusError(w, http.StatusBadRequest, errors.New("orderId is required"))
		return
	}

	draft, err := or.usecase.SelectOrder(r.Context(), wallet, r.PathValue("base"), r.PathValue("quote"), req.OrderID, filter, precision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectOrderResponse{Status: "selected", Draft: draft})
}

// GET /api/v1/pairs
func (or *orderBookRouterImpl) ListPairs(w http.ResponseWriter, r *http.Request) {
	type PairResponse struct {
		Pair  string      `json:"pair"`
		Topic string      `json:"topic"`
		Base  model.Asset `json:"base"`
		Quote model.Asset `json:"quote"`
	}
	pairs := or.usecase.Pairs()
	out := make([]PairResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, PairResponse{Pair: p.String(), Topic: p.Topic(), Base: p.Base, Quote: p.Quote})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pairs":            out,
		"filters":          []string{engine.FilterBoth.String(), engine.FilterBidsOnly.String(), engine.FilterAsksOnly.String()},
		"precisionOptions": engine.PrecisionOptions,
	})
}

func viewParams(r *http.Request) (engine.Filter, int32, error) {
	q := r.URL.Query()
	filter, err := engine.ParseFilter(q.Get("filter"))
	if err != nil {
		return 0, 0, err
	}
	precision, err := engine.ParsePrecision(q.Get("decimals"))
	if err != nil {
		return 0, 0, err
	}
	return filter, precision, nil
}
