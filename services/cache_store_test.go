package services

import (
	"context"
	"testing"
	"time"

	"dailyread/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, gcTime time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, gcTime), mr
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	_, ok, err := store.Get(ctx, "blogs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "blogs", &models.CacheEntry{Data: []byte(`[]`), Status: models.StatusSuccess, UpdatedAt: time.Now()}))

	entry, ok, err := store.Get(ctx, "blogs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, entry.Status)
	assert.False(t, entry.Invalidated)
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	found, err := store.Invalidate(ctx, "blogs")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "blogs", &models.CacheEntry{Data: []byte(`[]`), UpdatedAt: time.Now()}))
	found, err = store.Invalidate(ctx, "blogs")
	require.NoError(t, err)
	assert.True(t, found)

	entry, ok, _ := store.Get(ctx, "blogs")
	require.True(t, ok)
	assert.True(t, entry.Invalidated)
	assert.True(t, entry.HasData())
}

func TestMemoryStoreGC(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "blog:1", &models.CacheEntry{Data: []byte(`{}`), UpdatedAt: now}))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err := store.Get(ctx, "blog:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_, ok, err := store.Get(ctx, "blogs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "blogs", &models.CacheEntry{Data: []byte(`[{"id":1}]`), Status: models.StatusSuccess, UpdatedAt: time.Now()}))
	assert.True(t, mr.Exists("dailyread:query:blogs"))
	assert.Equal(t, time.Minute, mr.TTL("dailyread:query:blogs"))

	entry, ok, err := store.Get(ctx, "blogs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(entry.Data))
}

func TestRedisStoreInvalidateKeepsTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "blogs", &models.CacheEntry{Data: []byte(`[]`), UpdatedAt: time.Now()}))
	mr.FastForward(20 * time.Second)

	found, err := store.Invalidate(ctx, "blogs")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 40*time.Second, mr.TTL("dailyread:query:blogs"))

	entry, ok, err := store.Get(ctx, "blogs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.Invalidated)
}

func TestRedisStoreExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "blog:2", &models.CacheEntry{Data: []byte(`{}`), UpdatedAt: time.Now()}))
	mr.FastForward(61 * time.Second)

	_, ok, err := store.Get(ctx, "blog:2")
	require.NoError(t, err)
	assert.False(t, ok)
}
