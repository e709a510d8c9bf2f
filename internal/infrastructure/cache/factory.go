package cache

import (
	"context"
	"time"

	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends groups the Redis-backed coordination primitives. Client is nil
// when Redis was unreachable and the in-process fallbacks are in use.
type Backends struct {
	Client      *redis.Client
	Idempotency shared.IdempotencyStore
	Locker      shared.Locker
}

// Connect dials Redis and builds the stores on it. Outside production an
// unreachable Redis degrades to in-memory implementations with a warning.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		logger.Warn("Redis unavailable, using in-process idempotency store and locks",
			zap.Error(err))
		return &Backends{
			Idempotency: NewInMemoryIdempotencyStore(5 * time.Minute),
			Locker:      NewLocalLocker(),
		}, nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	return &Backends{
		Client:      client,
		Idempotency: NewRedisIdempotencyStore(client, ""),
		Locker:      NewRedisLocker(client),
	}, nil
}

// Close releases the Redis client and the fallback janitor
func (b *Backends) Close() error {
	_ = b.Idempotency.Close()
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}
