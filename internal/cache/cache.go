package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pat-tracker/internal/config"
	"pat-tracker/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Cache stores serialized aggregates for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ErrCacheMiss is returned when a key is not found in the cache
var ErrCacheMiss = errors.New("cache miss")

// New picks Redis when an address is configured and the in-process LRU
// otherwise.
func New(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Cache, error) {
	var (
		c   Cache
		err error
	)
	if cfg.Redis.Enabled() {
		c, err = NewRedisCache(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		c = NewMemoryCache(memoryCacheSize, cfg.CacheTTL, logger)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

// GetOrLoad returns the cached value under key, or calls load and caches
// its result. Cache faults never fail the call; they only cost a reload.
func GetOrLoad[T any](ctx context.Context, c Cache, logger zerolog.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	namespace, _, _ := strings.Cut(key, ":")

	if raw, err := c.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.RecordCache(namespace, "hit")
			return v, nil
		}
		logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		metrics.RecordCache(namespace, "error")
		logger.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
	} else {
		metrics.RecordCache(namespace, "miss")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
	}
	return v, nil
}

var Module = fx.Provide(New)
