package cache

import (
	"context"

	"github.com/fpm2805/ayuda-penco/internal/domain/shared"
	"github.com/fpm2805/ayuda-penco/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns the Redis store when Redis is enabled and
// reachable, and the in-memory store otherwise. Falling back keeps delivery
// entry working while Redis is down; the fallback is logged.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0)
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(0)
	}

	logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
	return store
}
