// Package config provides client configuration loaded from environment
// variables, with an optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8090/api"
	defaultRPS     = 5.0
	defaultTimeout = 15 * time.Second
)

type Config struct {
	// BaseURL is the exchange service's API root.
	BaseURL string

	// StateDir holds the persisted session cookie and cached username.
	StateDir string

	// RequestsPerSecond caps outbound request rate.
	RequestsPerSecond float64

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string

	// BaseURLDefaulted is true when EXCHANGE_API_URL was unset and the
	// localhost fallback is in use. Callers should warn: the fallback will
	// almost certainly fail outside development.
	BaseURLDefaulted bool
}

func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:           os.Getenv("EXCHANGE_API_URL"),
		StateDir:          os.Getenv("EXCHANGE_STATE_DIR"),
		RequestsPerSecond: defaultRPS,
		RequestTimeout:    defaultTimeout,
		LogLevel:          getEnv("EXCHANGE_LOG_LEVEL", "info"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
		cfg.BaseURLDefaulted = true
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".exchange-client")
	}

	if v := os.Getenv("EXCHANGE_RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("invalid EXCHANGE_RATE_LIMIT_RPS %q", v)
		}
		cfg.RequestsPerSecond = rps
	}

	if v := os.Getenv("EXCHANGE_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid EXCHANGE_REQUEST_TIMEOUT %q", v)
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
