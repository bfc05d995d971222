package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestCache creates an in-memory cache with the schema applied.
func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	key := "search:flixview:matrix:1"
	value := []byte(`{"results": [{"title": "The Matrix"}]}`)

	err := c.Set(ctx, key, value, time.Hour)
	require.NoError(t, err)

	got, ok := c.Get(ctx, key)
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	c := openTestCache(t)

	got, ok := c.Get(context.Background(), "nonexistent-key")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "expiring-key", []byte("stale"), -time.Minute)
	require.NoError(t, err)

	_, ok := c.Get(ctx, "expiring-key")
	assert.False(t, ok, "expired value must not be returned")
}

func TestCache_Set_Overwrites(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("old"), time.Hour))
	require.NoError(t, c.Set(ctx, "key", []byte("new"), time.Hour))

	got, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestCache_Delete(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Hour))
	require.NoError(t, c.Delete(ctx, "key"))

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	assert.NoError(t, c.Delete(ctx, "key"))
}

func TestCache_Prune(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fresh", []byte("a"), time.Hour))
	require.NoError(t, c.Set(ctx, "stale1", []byte("b"), -time.Minute))
	require.NoError(t, c.Set(ctx, "stale2", []byte("c"), -time.Minute))

	removed, err := c.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
}
