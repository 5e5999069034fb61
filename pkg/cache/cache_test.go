package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Symbol string    `json:"symbol"`
	Prices []float64 `json:"prices"`
}

func TestMemoryCacheRoundTripsTypedValues(t *testing.T) {
	c := NewMemoryCache(WithMemoryCleanup(0))
	defer c.Close()
	ctx := context.Background()

	in := payload{Symbol: "GP", Prices: []float64{1.5, 2.25}}
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))

	var out payload
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, in, out)

	// mutating the decoded value does not touch the stored copy
	out.Prices[0] = 99
	var again payload
	require.NoError(t, c.Get(ctx, "k", &again))
	assert.Equal(t, 1.5, again.Prices[0])
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	c := NewMemoryCache(WithMemoryCleanup(0))
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var out payload
	assert.True(t, errors.Is(c.Get(ctx, "absent", &out), ErrCacheMiss))

	require.NoError(t, c.Set(ctx, "k", payload{Symbol: "A"}, time.Second))
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryCleanup(0))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))

	var v int
	require.NoError(t, c.Get(ctx, "a", &v)) // a is now most recent
	require.NoError(t, c.Set(ctx, "c", 3, time.Minute))

	assert.ErrorIs(t, c.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, c.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
	require.NoError(t, c.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)
}

func TestMemoryCacheSweep(t *testing.T) {
	c := NewMemoryCache(WithMemoryCleanup(0))
	defer c.Close()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "short", 1, time.Second))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))

	now = now.Add(time.Minute)
	c.sweep()
	assert.Equal(t, 1, c.Len())
}

func TestLayeredCachePromotesFromRemote(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(remote, WithLayeredL1TTL(time.Minute))
	defer lc.Close()

	require.NoError(t, remote.Set(ctx, "k", payload{Symbol: "R"}, time.Hour))

	var out payload
	require.NoError(t, lc.Get(ctx, "k", &out))
	assert.Equal(t, "R", out.Symbol)

	require.NoError(t, remote.Delete(ctx, "k"))
	var cached payload
	require.NoError(t, lc.Get(ctx, "k", &cached), "served from L1")
	assert.Equal(t, "R", cached.Symbol)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &cached), ErrCacheMiss)
}

func TestRedisCacheIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	c, err := NewRedisCache(WithRedisAddr(addr), WithRedisPrefix("stockcast-test"))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Symbol: "X"}, time.Minute))
	var out payload
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, "X", out.Symbol)
	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "forecast:GP:3", Key("forecast", "GP", 3))
	assert.Equal(t, "forecast", Key("forecast"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223", Digest([]byte("abc")))
}
