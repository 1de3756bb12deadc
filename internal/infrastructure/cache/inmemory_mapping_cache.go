package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
)

const defaultCleanupInterval = 30 * time.Second

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryMappingCache implements MappingCache in process memory.
// It is used when no Redis server is configured.
type InMemoryMappingCache struct {
	entries   sync.Map // map[uuid.UUID]*cacheEntry[settlement.AccountMapping]
	stopCh    chan struct{}
	closeOnce sync.Once

	hits   int64
	misses int64
}

// NewInMemoryMappingCache creates a new in-memory mapping cache and starts its cleanup loop
func NewInMemoryMappingCache() *InMemoryMappingCache {
	c := &InMemoryMappingCache{stopCh: make(chan struct{})}
	go c.cleanupLoop(defaultCleanupInterval)
	return c
}

// Get returns the cached mapping, or nil if absent or expired
func (c *InMemoryMappingCache) Get(_ context.Context, tenantID uuid.UUID) (*settlement.AccountMapping, error) {
	v, ok := c.entries.Load(tenantID)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	e := v.(*cacheEntry[settlement.AccountMapping])
	if e.isExpired() {
		c.entries.Delete(tenantID)
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.hits, 1)
	mapping := e.value
	return &mapping, nil
}

// Set stores a mapping with a TTL
func (c *InMemoryMappingCache) Set(_ context.Context, mapping settlement.AccountMapping, ttl time.Duration) error {
	c.entries.Store(mapping.TenantID, &cacheEntry[settlement.AccountMapping]{
		value:     mapping,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a tenant's mapping
func (c *InMemoryMappingCache) Delete(_ context.Context, tenantID uuid.UUID) error {
	c.entries.Delete(tenantID)
	return nil
}

// Close stops the cleanup loop. Safe to call multiple times.
func (c *InMemoryMappingCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

// GetStats returns cache hit and miss counts
func (c *InMemoryMappingCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func (c *InMemoryMappingCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryMappingCache) cleanup() {
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[settlement.AccountMapping]).isExpired() {
			c.entries.Delete(key)
		}
		return true
	})
}

var _ MappingCache = (*InMemoryMappingCache)(nil)
