package cache

import (
	"context"
	"errors"
	"time"

	"pat-tracker/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

func NewRedisCache(cfg config.RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("address", cfg.Address).Msg("failed to connect to redis")
		client.Close()
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("prefix", cfg.Prefix).
		Int("db", cfg.DB).
		Msg("redis cache initialized")

	return &RedisCache{client: client, prefix: cfg.Prefix, logger: logger}, nil
}

func (c *RedisCache) formatKey(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	formattedKey := c.formatKey(key)

	start := time.Now()
	result, err := c.client.Get(ctx, formattedKey).Bytes()
	duration := time.Since(start)

	if errors.Is(err, redis.Nil) {
		c.logger.Debug().Str("key", formattedKey).Dur("duration", duration).Msg("cache miss")
		return nil, ErrCacheMiss
	}
	if err != nil {
		c.logger.Error().Err(err).Str("key", formattedKey).Dur("duration", duration).Msg("error getting value from redis")
		return nil, err
	}

	c.logger.Debug().
		Str("key", formattedKey).
		Int("size", len(result)).
		Dur("duration", duration).
		Msg("cache hit")
	return result, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	formattedKey := c.formatKey(key)
	if err := c.client.Set(ctx, formattedKey, value, ttl).Err(); err != nil {
		c.logger.Error().
			Err(err).
			Str("key", formattedKey).
			Int("size", len(value)).
			Dur("ttl", ttl).
			Msg("error setting value in redis")
		return err
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.formatKey(key)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
