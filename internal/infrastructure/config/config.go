package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	HTTPPort         string        `env:"HTTP_PORT"          envDefault:"8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT"  envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT"   envDefault:"15s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Engine limits
	MaxBatchSize  int `env:"MAX_BATCH_SIZE"  envDefault:"8189"`
	MaxQueryLimit int `env:"MAX_QUERY_LIMIT" envDefault:"8189"`

	// Journal (optional - leave empty to run memory-only)
	DatabaseURL            string        `env:"DATABASE_URL"              envDefault:""`
	DatabaseMaxConns       int           `env:"DATABASE_MAX_CONNS"        envDefault:"10"`
	DatabaseMinConns       int           `env:"DATABASE_MIN_CONNS"        envDefault:"2"`
	MigrationsPath         string        `env:"MIGRATIONS_PATH"           envDefault:"file://internal/infrastructure/postgres/migrations"`
	JournalRetryMaxElapsed time.Duration `env:"JOURNAL_RETRY_MAX_ELAPSED" envDefault:"2s"`

	// Redis (optional - leave empty to disable Idempotency-Key support)
	RedisURL       string        `env:"REDIS_URL"       envDefault:""`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Rate limiting (0 disables)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxBatchSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_SIZE must be positive, got %d", c.MaxBatchSize))
	}
	if c.MaxQueryLimit < 1 {
		errs = append(errs, fmt.Errorf("MAX_QUERY_LIMIT must be positive, got %d", c.MaxQueryLimit))
	}
	if c.DatabaseMinConns > c.DatabaseMaxConns {
		errs = append(errs, fmt.Errorf("DATABASE_MIN_CONNS (%d) exceeds DATABASE_MAX_CONNS (%d)", c.DatabaseMinConns, c.DatabaseMaxConns))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is on, got %d", c.RateLimitBurst))
	}

	return errors.Join(errs...)
}

// JournalEnabled reports whether a Postgres journal is configured.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// IdempotencyEnabled reports whether a Redis idempotency store is configured.
func (c *Config) IdempotencyEnabled() bool {
	return c.RedisURL != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}
