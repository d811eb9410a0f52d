package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPrefixedCache_Memory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[item]("test-")

	require.NoError(t, c.Set(ctx, "a", item{Name: "a", Count: 1}))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, item{Name: "a", Count: 1}, got)

	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.NotFound{}))
}

func TestPrefixedCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemory[item]("test-")

	require.NoError(t, c.Set(ctx, "short", item{Name: "short"}, store.WithExpiration(50*time.Millisecond)))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")
		return errors.Is(err, store.NotFound{})
	}, time.Second, 10*time.Millisecond)
}

func TestPrefixedCache_PrefixesKeys(t *testing.T) {
	ctx := context.Background()
	shared, _ := newMemoryCache()
	first := NewPrefixedCache[item](shared, "first-")
	second := NewPrefixedCache[item](shared, "second-")

	require.NoError(t, first.Set(ctx, "key", item{Name: "first"}))

	_, err := second.Get(ctx, "key")
	assert.Error(t, err)

	raw, err := shared.Get(ctx, "first-key")
	require.NoError(t, err)
	assert.IsType(t, []byte{}, raw)
}

func TestPrefixedCache_StringValues(t *testing.T) {
	ctx := context.Background()
	shared, _ := newMemoryCache()
	c := NewPrefixedCache[item](shared, "p-")

	// redis hands values back as strings
	require.NoError(t, shared.Set(ctx, "p-key", `{"name":"from-redis","count":3}`))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, item{Name: "from-redis", Count: 3}, got)
}

func TestPrefixedCache_UnexpectedType(t *testing.T) {
	ctx := context.Background()
	shared, _ := newMemoryCache()
	c := NewPrefixedCache[item](shared, "p-")

	require.NoError(t, shared.Set(ctx, "p-key", 42))

	_, err := c.Get(ctx, "key")
	assert.ErrorContains(t, err, "unexpected cache value type")
}

func TestPrefixedCache_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := NewRedis[item](mr.Addr(), "test-")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", item{Name: "a", Count: 1}, store.WithExpiration(time.Minute)))
	assert.True(t, mr.Exists("test-a"))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, item{Name: "a", Count: 1}, got)

	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.True(t, errors.Is(err, store.NotFound{}))
}

func TestPrefixedCache_Replace(t *testing.T) {
	mr := miniredis.RunT(t)
	redisCache, err := NewRedis[item](mr.Addr(), "test-")
	require.NoError(t, err)

	backends := map[string]*PrefixedCache[item]{
		"memory": NewMemory[item]("test-"),
		"redis":  redisCache,
	}
	for name, c := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := c.Replace(ctx, "missing", item{Name: "new"}, time.Minute)
			assert.True(t, errors.Is(err, store.NotFound{}))
			_, err = c.Get(ctx, "missing")
			assert.True(t, errors.Is(err, store.NotFound{}), "replace must not create the key")

			require.NoError(t, c.Set(ctx, "present", item{Name: "old"}, store.WithExpiration(time.Minute)))
			require.NoError(t, c.Replace(ctx, "present", item{Name: "new", Count: 2}, time.Minute))
			got, err := c.Get(ctx, "present")
			require.NoError(t, err)
			assert.Equal(t, item{Name: "new", Count: 2}, got)

			require.NoError(t, c.Delete(ctx, "present"))
			err = c.Replace(ctx, "present", item{Name: "again"}, time.Minute)
			assert.True(t, errors.Is(err, store.NotFound{}))
			_, err = c.Get(ctx, "present")
			assert.True(t, errors.Is(err, store.NotFound{}))
		})
	}
}

func TestPrefixedCache_ReplaceUnsupported(t *testing.T) {
	shared, _ := newMemoryCache()
	c := NewPrefixedCache[item](shared, "p-")

	assert.ErrorIs(t, c.Replace(context.Background(), "key", item{}, time.Minute), ErrReplaceUnsupported)
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{name: "plain address", url: "localhost:6379", wantAddr: "localhost:6379"},
		{name: "redis url", url: "redis://redis:6380/2", wantAddr: "redis:6380", wantDB: 2},
		{name: "invalid db", url: "redis://redis:6380/abc", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}
