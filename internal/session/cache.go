package session

import (
	"context"
	"errors"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	"github.com/jon4hz/keepsake/internal/cache"
)

const cachePrefix = "session-"

var _ Store = (*CacheStore)(nil)

// CacheStore keeps sessions in a gocache backend. Records expire through the cache TTL.
type CacheStore struct {
	cache *cache.PrefixedCache[Record]
	now   func() time.Time
}

// NewMemoryStore creates a session store that lives in process memory.
func NewMemoryStore() *CacheStore {
	return &CacheStore{
		cache: cache.NewMemory[Record](cachePrefix),
		now:   time.Now,
	}
}

// NewRedisStore creates a session store backed by redis.
func NewRedisStore(redisURL string) (*CacheStore, error) {
	c, err := cache.NewRedis[Record](redisURL, cachePrefix)
	if err != nil {
		return nil, err
	}
	return &CacheStore{
		cache: c,
		now:   time.Now,
	}, nil
}

func (s *CacheStore) Create(ctx context.Context, rec *Record) error {
	return s.put(ctx, rec)
}

func (s *CacheStore) Get(ctx context.Context, token string) (*Record, error) {
	rec, err := s.cache.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.NotFound{}) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Touch rewrites a record only while it is still stored, so a refresh racing
// a Delete never brings the session back.
func (s *CacheStore) Touch(ctx context.Context, rec *Record) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, rec.Token)
	}
	err := s.cache.Replace(ctx, rec.Token, *rec, ttl)
	if errors.Is(err, store.NotFound{}) {
		return ErrNotFound
	}
	return err
}

func (s *CacheStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, token)
}

// Prune is a no-op, the cache drops expired records on its own.
func (s *CacheStore) Prune(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *CacheStore) put(ctx context.Context, rec *Record) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, rec.Token)
	}
	return s.cache.Set(ctx, rec.Token, *rec, store.WithExpiration(ttl))
}
