package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*miniredis.Miniredis, *SlidingWindowLimiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSlidingWindowLimiter(client, "", limit, window, zap.NewNop())
}

func TestAllowUpToLimit(t *testing.T) {
	_, limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := limiter.Allow(ctx, "1.2.3.4")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result := limiter.Allow(ctx, "1.2.3.4")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRejectedRequestDoesNotConsumeQuota(t *testing.T) {
	mr, limiter := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	limiter.Allow(ctx, "1.2.3.4")
	limiter.Allow(ctx, "1.2.3.4")

	// several rejected attempts must not extend the block once the
	// original requests age out
	for i := 0; i < 5; i++ {
		result := limiter.Allow(ctx, "1.2.3.4")
		assert.False(t, result.Allowed)
	}

	// only the two allowed requests occupy the window
	members, err := mr.ZMembers("ratelimit:1.2.3.4")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestWindowSlides(t *testing.T) {
	mr, limiter := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "1.2.3.4").Allowed)
	require.True(t, limiter.Allow(ctx, "1.2.3.4").Allowed)
	require.False(t, limiter.Allow(ctx, "1.2.3.4").Allowed)

	// advance past the window; old entries fall out of the set
	mr.FastForward(61 * time.Second)

	result := limiter.Allow(ctx, "1.2.3.4")
	assert.True(t, result.Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	_, limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "1.2.3.4").Allowed)
	require.False(t, limiter.Allow(ctx, "1.2.3.4").Allowed)

	assert.True(t, limiter.Allow(ctx, "5.6.7.8").Allowed)
}

func TestFailsOpenWhenRedisDown(t *testing.T) {
	mr, limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "1.2.3.4").Allowed)

	mr.Close()

	// Redis gone: every request is allowed rather than blocking checkout
	result := limiter.Allow(ctx, "1.2.3.4")
	assert.True(t, result.Allowed)
	assert.Equal(t, limiter.Limit(), result.Remaining)
}
