package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/ledgerd/internal/adapter/http"
	"github.com/iho/ledgerd/internal/adapter/http/handler"
	"github.com/iho/ledgerd/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/ledgerd/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgerd/internal/adapter/repository/redis"
	"github.com/iho/ledgerd/internal/engine"
	"github.com/iho/ledgerd/internal/infrastructure/config"
	"github.com/iho/ledgerd/internal/infrastructure/idgen"
	"github.com/iho/ledgerd/internal/infrastructure/logger"
	"github.com/iho/ledgerd/internal/infrastructure/metrics"
	"github.com/iho/ledgerd/internal/infrastructure/postgres"
	"github.com/iho/ledgerd/internal/infrastructure/redis"
	"github.com/iho/ledgerd/internal/usecase"
)

const limiterIdle = 10 * time.Minute

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Fatal().Err(err).Msg("server failed")
	}
}

// app is the wired server with everything that must be closed on exit.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	server := newHTTPServer(cfg, a.handler)

	if a.rateLimiter != nil {
		go sweepLimiters(ctx, a.rateLimiter, limiterIdle, logger)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newApp wires the engine and its optional journal, idempotency store and
// rate limiter behind the HTTP router.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	checks := map[string]handler.Checker{}
	engineOpts := []engine.Option{engine.WithLimits(cfg.MaxBatchSize, cfg.MaxQueryLimit)}

	var journal *postgresRepo.JournalRepository
	if cfg.JournalEnabled() {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to postgres")

		retrier := postgresRepo.NewRetrier(cfg.JournalRetryMaxElapsed, logger)
		journal = postgresRepo.NewJournalRepository(pool, retrier)
		engineOpts = append(engineOpts, engine.WithJournal(usecase.NewMeteredJournal(journal, m, logger)))
		checks["postgres"] = postgres.Checker(pool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, ledger state is memory-only")
	}

	ledgerUC := usecase.NewLedgerUseCase(engine.New(engineOpts...), idgen.NewULIDGenerator(), m, logger)

	if journal != nil {
		if err := ledgerUC.Recover(ctx, journal); err != nil {
			a.close()
			return nil, err
		}
	}

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(ledgerUC),
		TransferHandler: handler.NewTransferHandler(ledgerUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		IdempotencyTTL:  cfg.IdempotencyTTL,
		Metrics:         m,
		Gatherer:        reg,
		Logger:          logger,
	}

	if cfg.IdempotencyEnabled() {
		client, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(client)
		checks["redis"] = redis.Checker(client)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = a.rateLimiter
	}

	routerCfg.HealthHandler = handler.NewHealthHandler(checks)
	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// sweepLimiters drops idle per-IP limiters until ctx is done.
func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, maxIdle time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(maxIdle); n > 0 {
				logger.Debug().Int("removed", n).Msg("rate limiters swept")
			}
		}
	}
}
