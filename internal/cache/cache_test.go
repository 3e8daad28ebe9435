package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"failfeed/internal/config"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c := NewMemoryCache(&config.CacheConfig{
		MaxKeys:         100,
		CleanupInterval: time.Minute,
	}, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))

	got, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok, "expired entries are invisible even before cleanup runs")
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, c, "key", payload{Name: "badge", Count: 3}, time.Minute))

	var got payload
	require.True(t, GetJSON(ctx, c, "key", &got))
	assert.Equal(t, payload{Name: "badge", Count: 3}, got)

	assert.False(t, GetJSON(ctx, c, "missing", &got))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(&config.CacheConfig{Provider: "memcached"}, zap.NewNop())
	assert.Error(t, err)
}
