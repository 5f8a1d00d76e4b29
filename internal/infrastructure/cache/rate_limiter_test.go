package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/cache"
	"github.com/reyadahealth/doh-compliance-engine/internal/testutil"
)

func newTestRateLimiter(t *testing.T) cache.RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisRateLimiter(client, zaptest.NewLogger(t))
}

func TestRedisRateLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := newTestRateLimiter(t)
	ctx := testutil.TestContext(t)

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "client-a", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within limit", i+1)
	}

	allowed, err := limiter.Allow(ctx, "client-a", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "sixth request exceeds limit")
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newTestRateLimiter(t)
	ctx := testutil.TestContext(t)

	allowed, err := limiter.Allow(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "another client keeps its own window")
}
