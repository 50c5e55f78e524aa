package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/damneddesigns/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisDedupStore implements shared.IdempotencyStore on Redis. It is the
// store used in deployments with more than one server process, where the
// duplicate-submission window must be shared.
type RedisDedupStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDedupStore creates a dedup store on an existing Redis client
func NewRedisDedupStore(client *redis.Client, keyPrefix string) *RedisDedupStore {
	if keyPrefix == "" {
		keyPrefix = "order:dedup:"
	}
	return &RedisDedupStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims a key with SETNX and a TTL in one atomic operation.
// Returns true if the key was newly claimed.
func (s *RedisDedupStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dedup key: %w", err)
	}
	return ok, nil
}

// Release frees a key before its TTL expires
func (s *RedisDedupStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release dedup key: %w", err)
	}
	return nil
}

// IsHeld reports whether a key is currently claimed
func (s *RedisDedupStore) IsHeld(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return exists > 0, nil
}

// Close is a no-op; the underlying client is owned by the caller
func (s *RedisDedupStore) Close() error {
	return nil
}

var _ shared.IdempotencyStore = (*RedisDedupStore)(nil)
