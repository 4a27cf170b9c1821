package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/karen-369/spark/internal/config"
	"github.com/karen-369/spark/internal/router/middleware"
	"github.com/rs/zerolog"
)

// mints a wallet session token for local development:
//
//	go run ./cmd/token -wallet 0xabc -ttl 1h
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	wallet := flag.String("wallet", "", "wallet address the session belongs to")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is not set")
	}
	if *ttl <= 0 {
		*ttl = cfg.Auth.TokenTTL
	}

	token, claims, err := middleware.NewJWTMaker(cfg.Auth.JWTSecret).CreateToken(*wallet, *ttl)
	if err != nil {
		logger.Fatal().Err(err).Msg("creating token")
	}
	logger.Info().
		Str("wallet", claims.Wallet).
		Str("token_id", claims.ID).
		Time("expires_at", claims.ExpiresAt.Time).
		Msg("token created")
	fmt.Println(token)
}
