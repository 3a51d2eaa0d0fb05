package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const memoryCacheSize = 1024

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a size-bounded in-process cache. Entries expire after the
// shorter of the per-key ttl and the cache-wide ttl.
type MemoryCache struct {
	lru    *expirable.LRU[string, memoryEntry]
	logger zerolog.Logger
}

func NewMemoryCache(size int, ttl time.Duration, logger zerolog.Logger) *MemoryCache {
	logger.Info().Int("size", size).Dur("ttl", ttl).Msg("in-memory cache initialized")
	return &MemoryCache{
		lru:    expirable.NewLRU[string, memoryEntry](size, nil, ttl),
		logger: logger,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
