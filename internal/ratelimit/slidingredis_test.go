package ratelimit_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/branch-digest/internal/ratelimit"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr, client := newClient(t)
	limiter := ratelimit.Limiter{Client: client, Prefix: "test:"}
	ctx := context.Background()
	window := 2 * time.Second

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "key", window, 2)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		require.Equal(t, 2-(i+1), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "key", window, 2)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)

	other, err := limiter.Allow(ctx, "other", window, 2)
	require.NoError(t, err)
	require.True(t, other.Allowed)

	mr.FastForward(window)

	d, err = limiter.Allow(ctx, "key", window, 2)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestLimiterWithoutClientAllows(t *testing.T) {
	d, err := ratelimit.Limiter{}.Allow(context.Background(), "key", time.Second, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}
