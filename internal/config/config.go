package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/karen-369/spark/internal/engine"
)

const (
	SourcePostgres = "postgres"
	SourceFeed     = "feed"
	SourceNone     = "none"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	Logging struct {
		Level  string
		Pretty bool
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	DB struct {
		User     string
		Password string
		Host     string
		Port     string
		Name     string
	}
	Orders struct {
		Source          string
		FeedURL         string
		RefreshInterval time.Duration
	}
	Book struct {
		AssetsFile            string
		Pairs                 []string
		RowsCompact           int
		RowsCompactWithSpread int
		RowsExpanded          int
		DefaultDecimals       int32
	}
}

// DSN is the lib/pq connection string for the DB section.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name,
	)
}

func defaultConfig() Config {
	var c Config
	c.HTTP.Addr = ":8080"
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Auth.TokenTTL = 24 * time.Hour
	c.DB.Host = "localhost"
	c.DB.Port = "5432"
	c.Orders.Source = SourceNone
	c.Orders.RefreshInterval = 2 * time.Second
	c.Book.Pairs = []string{"BTC/USDC", "ETH/USDC"}
	c.Book.RowsCompact = 12
	c.Book.RowsCompactWithSpread = 13
	c.Book.RowsExpanded = 25
	c.Book.DefaultDecimals = 2
	return c
}

// Load reads .env when present, then lets the environment override the
// defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	c := defaultConfig()
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}

	c.DB.User = os.Getenv("DB_USER")
	c.DB.Password = os.Getenv("DB_PASSWORD")
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DB.Port = v
	}
	c.DB.Name = os.Getenv("DB_NAME")

	if v := os.Getenv("ORDER_SOURCE"); v != "" {
		switch v {
		case SourcePostgres, SourceFeed, SourceNone:
			c.Orders.Source = v
		default:
			return Config{}, fmt.Errorf("ORDER_SOURCE: unknown source %q", v)
		}
	}
	c.Orders.FeedURL = os.Getenv("FEED_URL")
	if c.Orders.Source == SourceFeed && c.Orders.FeedURL == "" {
		return Config{}, fmt.Errorf("FEED_URL is required when ORDER_SOURCE=%s", SourceFeed)
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("REFRESH_INTERVAL: invalid duration %q", v)
		}
		c.Orders.RefreshInterval = d
	}

	c.Book.AssetsFile = os.Getenv("ASSETS_FILE")
	if v := os.Getenv("PAIRS"); v != "" {
		c.Book.Pairs = splitCSV(v)
	}
	for key, dst := range map[string]*int{
		"ROWS_COMPACT":             &c.Book.RowsCompact,
		"ROWS_COMPACT_WITH_SPREAD": &c.Book.RowsCompactWithSpread,
		"ROWS_EXPANDED":            &c.Book.RowsExpanded,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return Config{}, fmt.Errorf("%s: expected a positive integer, got %q", key, v)
			}
			*dst = n
		}
	}
	if v := os.Getenv("DEFAULT_DECIMALS"); v != "" {
		n, err := engine.ParsePrecision(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEFAULT_DECIMALS: %w", err)
		}
		c.Book.DefaultDecimals = n
	}
	return c, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
