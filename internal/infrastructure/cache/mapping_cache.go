package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MappingCache stores account mappings by tenant.
// Get returns nil, nil on a miss.
type MappingCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*settlement.AccountMapping, error)
	Set(ctx context.Context, mapping settlement.AccountMapping, ttl time.Duration) error
	Delete(ctx context.Context, tenantID uuid.UUID) error
	Close() error
}

const defaultMappingKeyPrefix = "settlement:account_mapping:"

// mappingPayload is the JSON form of a cached mapping
type mappingPayload struct {
	TenantID           uuid.UUID `json:"tenant_id"`
	AccountsReceivable uuid.UUID `json:"accounts_receivable_id"`
	SalesRevenue       uuid.UUID `json:"sales_revenue_id"`
	Cash               uuid.UUID `json:"cash_id"`
}

// RedisMappingCache implements MappingCache using Redis
type RedisMappingCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	logger     *zap.Logger
}

// RedisMappingCacheOption is a functional option for configuring the cache
type RedisMappingCacheOption func(*RedisMappingCache)

// WithMappingKeyPrefix sets the Redis key prefix
func WithMappingKeyPrefix(prefix string) RedisMappingCacheOption {
	return func(c *RedisMappingCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithMappingCacheLogger sets the logger for the cache
func WithMappingCacheLogger(logger *zap.Logger) RedisMappingCacheOption {
	return func(c *RedisMappingCache) {
		c.logger = logger
	}
}

// NewRedisMappingCache creates a mapping cache with its own Redis client
func NewRedisMappingCache(cfg config.RedisConfig, opts ...RedisMappingCacheOption) (*RedisMappingCache, error) {
	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	c := NewRedisMappingCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisMappingCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisMappingCacheWithClient(client *redis.Client, opts ...RedisMappingCacheOption) *RedisMappingCache {
	c := &RedisMappingCache{
		client:    client,
		keyPrefix: defaultMappingKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisMappingCache) key(tenantID uuid.UUID) string {
	return c.keyPrefix + tenantID.String()
}

// Get retrieves a tenant's mapping from Redis
func (c *RedisMappingCache) Get(ctx context.Context, tenantID uuid.UUID) (*settlement.AccountMapping, error) {
	key := c.key(tenantID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account mapping from cache: %w", err)
	}

	var payload mappingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("Dropping corrupted account mapping cache entry",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal account mapping: %w", err)
	}

	return &settlement.AccountMapping{
		TenantID:           payload.TenantID,
		AccountsReceivable: payload.AccountsReceivable,
		SalesRevenue:       payload.SalesRevenue,
		Cash:               payload.Cash,
	}, nil
}

// Set stores a tenant's mapping with a TTL
func (c *RedisMappingCache) Set(ctx context.Context, mapping settlement.AccountMapping, ttl time.Duration) error {
	data, err := json.Marshal(mappingPayload{
		TenantID:           mapping.TenantID,
		AccountsReceivable: mapping.AccountsReceivable,
		SalesRevenue:       mapping.SalesRevenue,
		Cash:               mapping.Cash,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal account mapping: %w", err)
	}
	if err := c.client.Set(ctx, c.key(mapping.TenantID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set account mapping in cache: %w", err)
	}
	return nil
}

// Delete removes a tenant's mapping
func (c *RedisMappingCache) Delete(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to delete account mapping from cache: %w", err)
	}
	return nil
}

// Close closes the Redis client if the cache created it
func (c *RedisMappingCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ MappingCache = (*RedisMappingCache)(nil)
