package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/store"
)

// Resources are the external connections the process holds.
type Resources struct {
	Backend store.Backend
	// Cache is set whenever REDIS_URL is configured, regardless of backend.
	Cache *redis.Client
	DB    *pgxpool.Pool
}

// Open connects what cfg asks for and picks the store backend.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Resources, error) {
	res := &Resources{}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.StoreBackend == config.BackendRedis {
				return nil, err
			}
			logger.Warn("redis unavailable, idempotency and rate limiting disabled", slog.Any("error", err))
		} else {
			res.Cache = cache
		}
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		res.Backend = store.NewRedisBackend(res.Cache)
	case config.BackendPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.DB = pool
		backend, err := store.NewPostgresBackend(ctx, pool)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.Backend = backend
	case config.BackendMemory:
		res.Backend = store.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("store backend ready", slog.String("backend", cfg.StoreBackend))
	return res, nil
}

// Ping checks every held connection.
func (r *Resources) Ping(ctx context.Context) error {
	if r.Cache != nil {
		if err := r.Cache.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if r.DB != nil {
		if err := r.DB.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// Close releases every connection.
func (r *Resources) Close() {
	if r.Cache != nil {
		r.Cache.Close()
	}
	if r.DB != nil {
		r.DB.Close()
	}
}
