package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers submission keys so a retried request is not
// recorded twice.
type IdempotencyStore interface {
	// MarkProcessed marks key as processed for ttl.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Forget removes a key so a failed submission can be retried with it.
	Forget(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
