package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/branch-digest/internal/config"
	"github.com/noah-isme/branch-digest/internal/history"
	"github.com/noah-isme/branch-digest/internal/lock"
	"github.com/noah-isme/branch-digest/internal/resilience"
)

// Dependencies holds the long-lived resources shared by the API server and the tools.
type Dependencies struct {
	Redis   *redis.Client
	Backend history.Backend
	Store   *history.Store

	closers []func() error
}

// Options tweak how Build instruments shared clients.
type Options struct {
	TraceRedis   bool
	MetricsRedis bool
}

// Build connects the configured history backend, the optional Redis client and the
// optional append lock. A Redis backend is guarded by a circuit breaker.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.RedisURL != "" {
		client, err := newRedis(ctx, cfg.RedisURL, logger, opts)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
		deps.closers = append(deps.closers, client.Close)
	}

	backend, err := deps.openBackend(ctx, cfg)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Backend = backend

	storeBackend := backend
	if _, remote := backend.(history.RedisBackend); remote {
		breaker := resilience.NewBreaker("history-redis", 5, 0.5, 15*time.Second).WithLogger(logger)
		storeBackend = history.NewGuardedBackend(backend, breaker)
	}
	deps.Store = &history.Store{
		Backend: storeBackend,
		Key:     cfg.HistoryKey,
		LockTTL: cfg.HistoryLockTTL,
		Logger:  logger.With().Str("component", "history").Str("backend", cfg.HistoryBackend).Logger(),
	}
	if cfg.HistoryLockEnabled && deps.Redis != nil {
		deps.Store.Locker = lock.Locker{R: deps.Redis}
	}
	return deps, nil
}

func (d *Dependencies) openBackend(ctx context.Context, cfg *config.Config) (history.Backend, error) {
	switch cfg.HistoryBackend {
	case config.BackendMemory:
		return history.NewMemoryBackend(), nil
	case config.BackendFile:
		return history.NewFileBackend(cfg.HistoryFileDir)
	case config.BackendRedis:
		if d.Redis == nil {
			return nil, errors.New("redis history backend requires REDIS_URL")
		}
		return history.RedisBackend{R: d.Redis, Prefix: "digest:"}, nil
	case config.BackendSQLite:
		backend, err := history.OpenSQLite(ctx, cfg.HistorySQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, backend.Close)
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported history backend %q", cfg.HistoryBackend)
	}
}

func newRedis(ctx context.Context, url string, logger zerolog.Logger, opts Options) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if opts.TraceRedis {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if opts.MetricsRedis {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Close releases every resource Build opened, in reverse order.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
