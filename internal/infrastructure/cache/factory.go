package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

// newRedisClient connects to Redis and checks the connection
func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Factory builds the idempotency store and account mapping cache.
// Both share one Redis client when Redis is configured and reachable;
// otherwise in-memory implementations are returned.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// redisClient returns the shared client, connecting on first use.
// A nil client with nil error means Redis is not configured.
func (f *Factory) redisClient() (*redis.Client, error) {
	if !f.redisConfig.Enabled() {
		return nil, nil
	}
	if f.client != nil {
		return f.client, nil
	}
	client, err := newRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Idempotency keys will not be shared between instances.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return nil, nil
	}
	f.client = client
	return client, nil
}

// CreateIdempotencyStore returns a Redis store when Redis is available, else an in-memory one
func (f *Factory) CreateIdempotencyStore() (shared.IdempotencyStore, error) {
	client, err := f.redisClient()
	if err != nil {
		return nil, err
	}
	if client == nil {
		f.logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}
	f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// CreateMappingCache returns a Redis cache when Redis is available, else an in-memory one
func (f *Factory) CreateMappingCache() (MappingCache, error) {
	client, err := f.redisClient()
	if err != nil {
		return nil, err
	}
	if client == nil {
		return NewInMemoryMappingCache(), nil
	}
	return NewRedisMappingCacheWithClient(client, WithMappingCacheLogger(f.logger)), nil
}

// Close closes the shared Redis client, if one was opened
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}
