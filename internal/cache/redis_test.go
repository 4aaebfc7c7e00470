package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestCache_JSONRoundTripAndMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got map[string]int
	err := c.GetJSON(ctx, "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetJSON(ctx, ProductKey("42"), map[string]int{"a": 1}, time.Minute))
	require.NoError(t, c.GetJSON(ctx, ProductKey("42"), &got))
	assert.Equal(t, 1, got["a"])

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.GetJSON(ctx, ProductKey("42"), &got), ErrCacheMiss)
}

func TestCache_RateLimitCounter(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	n, err := c.GetRateLimit(ctx, "rl:test")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err = c.IncrementRateLimit(ctx, "rl:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	mr.FastForward(time.Minute + time.Second)
	n, err = c.GetRateLimit(ctx, "rl:test")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_Blacklist(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	revoked, err := c.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Hour))
	revoked, err = c.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(time.Hour + time.Second)
	revoked, err = c.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// un token déjà expiré n'est pas stocké
	require.NoError(t, c.BlacklistToken(ctx, "jti-2", 0))
	assert.False(t, mr.Exists("blacklist:jti-2"))
}
