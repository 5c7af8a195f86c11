package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewCache(client, "identity:"), s
}

func TestCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acc-1", []byte(`{"user_id":"u1"}`), time.Minute))

	value, err := cache.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"user_id":"u1"}`), value)
}

func TestCache_GetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, s := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acc-1", []byte("v"), time.Minute))

	s.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "acc-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acc-1", []byte("v"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "acc-1"))

	_, err := cache.Get(ctx, "acc-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_PrefixIsolation(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	a := NewCache(client, "a:")
	b := NewCache(client, "b:")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "k", []byte("va"), time.Minute))

	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
