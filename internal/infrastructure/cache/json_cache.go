package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not present in the cache
var ErrCacheMiss = errors.New("cache: key not found")

// JSONCache stores JSON-serialized values in Redis with a TTL. It backs the
// sitemap cache and other read-mostly payloads.
type JSONCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewJSONCache creates a JSONCache on an existing Redis client
func NewJSONCache(client *redis.Client, keyPrefix string) *JSONCache {
	if keyPrefix == "" {
		keyPrefix = "cache:"
	}
	return &JSONCache{client: client, keyPrefix: keyPrefix}
}

// Set serializes value as JSON and stores it under key with a TTL
func (c *JSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set key: %w", err)
	}
	return nil
}

// Get loads and deserializes the value stored under key into dest.
// Returns ErrCacheMiss when the key is absent or expired.
func (c *JSONCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache: failed to get key: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: failed to unmarshal value: %w", err)
	}
	return nil
}

// SetString stores a raw string under key with a TTL
func (c *JSONCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set key: %w", err)
	}
	return nil
}

// GetString loads a raw string stored under key
func (c *JSONCache) GetString(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache: failed to get key: %w", err)
	}
	return value, nil
}

// Delete removes a key from the cache
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete key: %w", err)
	}
	return nil
}
