package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const gocacheCleanupInterval = 10 * time.Minute

// ErrReplaceUnsupported is returned by Replace on caches built without a backend client.
var ErrReplaceUnsupported = errors.New("cache does not support replace")

// replaceFunc writes key only if it is present, as one backend operation.
// It reports whether the key was written.
type replaceFunc func(ctx context.Context, key string, data []byte, ttl time.Duration) (bool, error)

// PrefixedCache wraps a cache.Cache, adds a prefix to all keys and stores values as JSON.
type PrefixedCache[T any] struct {
	cache   *cache.Cache[any]
	prefix  string
	replace replaceFunc
}

// NewPrefixedCache creates a new prefixed cache wrapper.
func NewPrefixedCache[T any](c *cache.Cache[any], prefix string) *PrefixedCache[T] {
	return &PrefixedCache[T]{
		cache:  c,
		prefix: prefix,
	}
}

// NewMemory creates a prefixed cache backed by an in-process go-cache.
func NewMemory[T any](prefix string) *PrefixedCache[T] {
	c, replace := newMemoryCache()
	p := NewPrefixedCache[T](c, prefix)
	p.replace = replace
	return p
}

// NewRedis creates a prefixed cache backed by redis.
// redisURL may be a redis:// URL or a plain host:port address.
func NewRedis[T any](redisURL, prefix string) (*PrefixedCache[T], error) {
	c, replace, err := newRedisCache(redisURL)
	if err != nil {
		return nil, err
	}
	p := NewPrefixedCache[T](c, prefix)
	p.replace = replace
	return p, nil
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get retrieves a value from the cache with the prefixed key.
// A missing key returns an error matching store.NotFound.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, error) {
	var result T
	data, err := p.cache.Get(ctx, p.key(key))
	if err != nil {
		return result, err
	}

	// go-cache hands back what was stored, redis always returns a string.
	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return result, fmt.Errorf("unexpected cache value type %T", data)
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Set stores a value in the cache with the prefixed key.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T, options ...store.Option) error {
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, p.key(key), data, options...)
}

// Replace overwrites a value only while its key is still present. A missing
// key returns an error matching store.NotFound and nothing is written.
func (p *PrefixedCache[T]) Replace(ctx context.Context, key any, object T, ttl time.Duration) error {
	if p.replace == nil {
		return ErrReplaceUnsupported
	}
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	ok, err := p.replace(ctx, p.key(key), data, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return store.NotFound{}
	}
	return nil
}

// Delete removes a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Delete(ctx context.Context, key any) error {
	return p.cache.Delete(ctx, p.key(key))
}

// Clear removes all values from the cache.
func (p *PrefixedCache[T]) Clear(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// GetType returns the cache type.
func (p *PrefixedCache[T]) GetType() string {
	return p.cache.GetType()
}

// GetStats returns the cache statistics.
func (p *PrefixedCache[T]) GetStats() *codec.Stats {
	return p.cache.GetCodec().GetStats()
}

func newMemoryCache() (*cache.Cache[any], replaceFunc) {
	// items carry their own TTL, the janitor only reclaims memory
	gocacheClient := gocache.New(gocache.NoExpiration, gocacheCleanupInterval)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	replace := func(_ context.Context, key string, data []byte, ttl time.Duration) (bool, error) {
		return gocacheClient.Replace(key, data, ttl) == nil, nil
	}
	return cache.New[any](gocacheStore), replace
}

func newRedisCache(redisURL string) (*cache.Cache[any], replaceFunc, error) {
	opts, err := redisOptions(redisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	redisStore := redis_store.NewRedis(client)
	replace := func(ctx context.Context, key string, data []byte, ttl time.Duration) (bool, error) {
		return client.SetXX(ctx, key, data, ttl).Result()
	}
	return cache.New[any](redisStore), replace, nil
}

func redisOptions(redisURL string) (*redis.Options, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		return opts, nil
	}
	if redisURL == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	return &redis.Options{Addr: redisURL}, nil
}
