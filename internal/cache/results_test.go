package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/rupamthxt/vectraproj/internal/config"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := NewClient(config.RedisConfig{URL: "redis://" + server.Addr()})
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	require.NoError(t, Ping(context.Background(), client))
	return NewResultCache(client, ttl), server
}

func TestResultCacheRoundTrip(t *testing.T) {
	c, server := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.True(t, c.Enabled())

	_, ok := c.Get(ctx, "abc")
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "abc", []byte(`[{"id":"a","x":1,"y":2}]`)))
	data, ok := c.Get(ctx, "abc")
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"a","x":1,"y":2}]`, string(data))

	require.True(t, server.Exists("proj:abc"))
	require.Equal(t, time.Minute, server.TTL("proj:abc"))
}

func TestResultCacheExpires(t *testing.T) {
	c, server := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("[]")))
	server.FastForward(2 * time.Second)

	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestNilResultCacheIsNoop(t *testing.T) {
	var c *ResultCache
	ctx := context.Background()
	require.False(t, c.Enabled())
	require.False(t, NewResultCache(nil, 0).Enabled())

	require.NoError(t, c.Set(ctx, "k", []byte("[]")))
	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestResultCacheIgnoresEmptyValues(t *testing.T) {
	c, server := newTestCache(t, time.Minute)
	require.NoError(t, c.Set(context.Background(), "empty", nil))
	require.False(t, server.Exists("proj:empty"))
}
