package cache

import (
	"context"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAccountCacheTTL is how long a tenant's account mapping is cached
const DefaultAccountCacheTTL = 5 * time.Minute

// CachedAccountDirectory is a read-through cache in front of an AccountDirectory.
// Cache errors are logged and the underlying directory is used instead.
type CachedAccountDirectory struct {
	next   settlement.AccountDirectory
	cache  MappingCache
	ttl    time.Duration
	logger *zap.Logger
}

// CachedAccountDirectoryOption configures a CachedAccountDirectory
type CachedAccountDirectoryOption func(*CachedAccountDirectory)

// WithDirectoryTTL sets how long mappings are cached
func WithDirectoryTTL(ttl time.Duration) CachedAccountDirectoryOption {
	return func(d *CachedAccountDirectory) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithDirectoryLogger sets the logger
func WithDirectoryLogger(logger *zap.Logger) CachedAccountDirectoryOption {
	return func(d *CachedAccountDirectory) {
		d.logger = logger
	}
}

// NewCachedAccountDirectory wraps next with cache
func NewCachedAccountDirectory(next settlement.AccountDirectory, cache MappingCache, opts ...CachedAccountDirectoryOption) *CachedAccountDirectory {
	d := &CachedAccountDirectory{
		next:   next,
		cache:  cache,
		ttl:    DefaultAccountCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup returns the tenant's mapping from cache, loading it on a miss.
// Lookup errors from the underlying directory are never cached.
func (d *CachedAccountDirectory) Lookup(ctx context.Context, tenantID uuid.UUID) (settlement.AccountMapping, error) {
	cached, err := d.cache.Get(ctx, tenantID)
	if err != nil {
		d.logger.Warn("Account mapping cache unavailable, reading from store",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	if cached != nil {
		return *cached, nil
	}

	mapping, err := d.next.Lookup(ctx, tenantID)
	if err != nil {
		return settlement.AccountMapping{}, err
	}
	mapping.TenantID = tenantID

	if err := d.cache.Set(ctx, mapping, d.ttl); err != nil {
		d.logger.Warn("Failed to cache account mapping",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return mapping, nil
}

// Invalidate drops a tenant's cached mapping, e.g. after its accounts are reseeded
func (d *CachedAccountDirectory) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return d.cache.Delete(ctx, tenantID)
}

var _ settlement.AccountDirectory = (*CachedAccountDirectory)(nil)
