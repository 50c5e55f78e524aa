package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks in-flight submission keys so that concurrent
// duplicates of the same logical request can be detected and suppressed.
type IdempotencyStore interface {
	// Acquire claims a key with a TTL. Returns true if the key was newly
	// claimed, false if an identical submission is already in flight.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a key before its TTL expires, allowing the same
	// submission to be retried (e.g. after a failed payment).
	Release(ctx context.Context, key string) error

	// IsHeld reports whether a key is currently claimed
	IsHeld(ctx context.Context, key string) (bool, error)

	// Close releases store resources
	Close() error
}
