package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already processed, such as
// payment webhook event IDs
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so a failed operation can be retried
	Forget(ctx context.Context, key string) error

	Close() error
}
