package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result reports the outcome of a rate limit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// SlidingWindowLimiter is a Redis-backed sliding-window rate limiter.
// Each key maps to a sorted set whose members are individual requests,
// scored by their arrival time in milliseconds. A check is one pipeline of
// four commands: drop entries older than the window, count what remains,
// record this request, and bound the key's lifetime.
//
// The limiter fails open: if Redis is unavailable the request is allowed
// and the error is reported for logging.
type SlidingWindowLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
	logger    *zap.Logger
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per window
func NewSlidingWindowLimiter(client *redis.Client, keyPrefix string, limit int, window time.Duration, logger *zap.Logger) *SlidingWindowLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlidingWindowLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		logger:    logger,
	}
}

// Limit returns the configured maximum requests per window
func (l *SlidingWindowLimiter) Limit() int {
	return l.limit
}

// Allow records a request for key and reports whether it is within the limit
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) Result {
	redisKey := l.keyPrefix + key
	now := time.Now()
	windowStart := now.Add(-l.window)
	member := requestMember(now)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: member,
	})
	pipe.Expire(ctx, redisKey, l.window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open: never block customers on a cache outage
		l.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit}
	}

	// countCmd holds the window population before this request was added
	count := int(countCmd.Val())
	if count >= l.limit {
		// Over the limit: remove the member we just added so a rejected
		// request does not consume quota against later attempts.
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			l.logger.Warn("failed to remove over-limit request member",
				zap.String("key", key), zap.Error(err))
		}
		return Result{Allowed: false, Limit: l.limit, Remaining: 0}
	}

	remaining := l.limit - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Limit: l.limit, Remaining: remaining}
}

// requestMember builds a unique member for one request so that concurrent
// requests in the same millisecond remain distinct set entries
func requestMember(now time.Time) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s", now.UnixNano(), hex.EncodeToString(buf))
}
