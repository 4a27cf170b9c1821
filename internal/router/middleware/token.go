package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTMaker struct {
	secretKey string
}

func NewJWTMaker(secretKey string) *JWTMaker {
	return &JWTMaker{secretKey: secretKey}
}

func (maker *JWTMaker) CreateToken(wallet string, duration time.Duration) (string, *WalletClaims, error) {
	if wallet == "" {
		return "", nil, errors.New("wallet address is required")
	}
	claims, err := NewWalletClaims(wallet, duration)
	if err != nil {
		return "", nil, err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(maker.secretKey))
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}
	return signed, claims, nil
}

func (maker *JWTMaker) VerifyToken(tokenStr string) (*WalletClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &WalletClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(maker.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %w", err)
	}
	claims, ok := token.Claims.(*WalletClaims)
	if !ok || claims.Wallet == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
