package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "catalog:shops", []Shop{{ID: "s1", Name: "Bun Cha 36"}}))

	var shops []Shop
	hit, err := cache.GetJSON(ctx, "catalog:shops", &shops)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, shops, 1)
	assert.Equal(t, "Bun Cha 36", shops[0].Name)
}

func TestCacheMiss(t *testing.T) {
	cache := newCache(t)

	var shops []Shop
	hit, err := cache.GetJSON(context.Background(), "catalog:shops", &shops)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheInvalidate(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, menuKey("s1"), []Item{{ID: "i1"}}))
	cache.Invalidate(ctx, menuKey("s1"))

	var items []Item
	hit, err := cache.GetJSON(ctx, menuKey("s1"), &items)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", "v"))
	hit, err := cache.GetJSON(ctx, "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}
