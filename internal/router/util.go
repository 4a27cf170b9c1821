package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/karen-369/spark/internal/engine"
	assetRepository "github.com/karen-369/spark/internal/repository/asset"
	"github.com/karen-369/spark/internal/router/middleware"
	"github.com/karen-369/spark/internal/usecase/orderbook"
)

// request bodies are small commands such as {"orderId": "..."}
const maxBodyBytes = 4 << 10

var (
	ErrEmptyBody     = errors.New("empty body")
	ErrTrailingData  = errors.New("multiple JSON values in body")
	errMissingWallet = errors.New("missing wallet session")
)

// ErrorResponse is the JSON body of every non-2xx answer. Action tells the
// client what to do next, e.g. connect_wallet.
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
}

// decodeBody decodes exactly one JSON value of type T from the request body.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, ErrEmptyBody
		}
		return req, fmt.Errorf("decode %T: %w", req, err)
	}
	if dec.More() {
		return req, ErrTrailingData
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status errorStatus maps err to.
func writeError(w http.ResponseWriter, err error) {
	writeStatusError(w, errorStatus(err), err)
}

func writeStatusError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Status:  status,
		Message: err.Error(),
	}
	if status == http.StatusUnauthorized {
		resp.Action = middleware.ActionConnectWallet
	}
	writeJSON(w, status, resp)
}

// requireWallet returns the wallet of the session the auth middleware put
// on the request, answering 401 when there is none.
func requireWallet(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, errMissingWallet)
		return "", false
	}
	return claims.Wallet, true
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, assetRepository.ErrUnknownAsset),
		errors.Is(err, orderbook.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidFilter),
		errors.Is(err, engine.ErrInvalidPrecision),
		errors.Is(err, ErrEmptyBody),
		errors.Is(err, ErrTrailingData):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrRowNotSelectable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orderbook.ErrBookLoading):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
