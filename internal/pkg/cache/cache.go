package cache

import (
	"context"
	"time"
)

// Cache is a small TTL cache for query results. Implementations must be
// safe for concurrent use. Callers own serialization; values are raw bytes.
//
// The cache is advisory: a miss or an error never blocks the caller from
// hitting the store, and writers must never trust cached state for
// correctness decisions (the purchase transaction always goes to Postgres).
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero ttl uses the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Reset drops everything. Mainly for tests.
	Reset(ctx context.Context) error
}
