package shared

import (
	"context"
	"time"
)

// IdempotencyStore records request keys that have already been served
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key has been recorded and has not expired
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a served request key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
