package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type indexKey string

func TestInMemoryCacheManager_SetAndGet(t *testing.T) {
	cache := NewInMemoryCacheManager[indexKey, map[string]int]("snapshot-index", DefaultExpiration, DefaultCleanupInterval)
	index := map[string]int{`{"id":"1"}`: 0, `{"id":"2"}`: 1}

	cache.Set(context.Background(), "g/c@1", index, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "g/c@1")
	require.True(t, ok)
	require.Equal(t, index, got)
	require.Equal(t, 1, cache.Count())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_WrongTypeIsMiss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("key", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "key")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", 1, DefaultExpiration)
	cache.Set(ctx, "b", 2, DefaultExpiration)
	cache.Set(ctx, "c", 3, DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a", "missing"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 2, cache.Count())

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.Count())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "short", 1, 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(context.Background(), "short")
	require.False(t, ok)
}

func TestReadThroughCache_LoadsOnceUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	calls := 0
	rt := NewReadThroughCache[string, int, []string](
		NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval),
		func(_ context.Context, input []string) (int, error) {
			calls++
			return len(input), nil
		},
		DefaultExpiration,
	)

	v, err := rt.Get(ctx, "k", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 2, v)

	v, err = rt.Get(ctx, "k", []string{"ignored"})
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.Equal(t, 1, calls)

	rt.Invalidate(ctx, "k")
	v, err = rt.Get(ctx, "k", []string{"x"})
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	fail := true
	rt := NewReadThroughCache[string, int, int](
		NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval),
		func(_ context.Context, input int) (int, error) {
			if fail {
				return 0, errors.New("boom")
			}
			return input, nil
		},
		DefaultExpiration,
	)

	_, err := rt.Get(ctx, "k", 7)
	require.Error(t, err)

	fail = false
	v, err := rt.Get(ctx, "k", 7)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
