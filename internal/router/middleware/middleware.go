package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ActionConnectWallet tells the client to show its connect-wallet prompt.
const ActionConnectWallet = "connect_wallet"

type AuthKey struct{}

// AuthMiddleware rejects requests without a valid wallet session. Rejected
// requests never reach next.
func AuthMiddleware(tokenMaker *JWTMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifyClaimsFromAuthHeader(r, tokenMaker)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			// pass the payload/claims down the context
			ctx := context.WithValue(r.Context(), AuthKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*WalletClaims, bool) {
	claims, ok := ctx.Value(AuthKey{}).(*WalletClaims)
	return claims, ok && claims != nil
}

func verifyClaimsFromAuthHeader(r *http.Request, tokenMaker *JWTMaker) (*WalletClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		// browsers cannot set headers on websocket upgrades
		if token := r.URL.Query().Get("access_token"); token != "" {
			authHeader = "Bearer " + token
		}
	}
	if authHeader == "" {
		return nil, errors.New("authorization header is missing")
	}

	fields := strings.Fields(authHeader)
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, errors.New("invalid authorization header")
	}

	claims, err := tokenMaker.VerifyToken(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(struct {
		Error   string `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message,omitempty"`
		Action  string `json:"action"`
	}{
		Error:   http.StatusText(http.StatusUnauthorized),
		Status:  http.StatusUnauthorized,
		Message: fmt.Sprintf("connect wallet to see orders: %v", err),
		Action:  ActionConnectWallet,
	})
}
