package service

import (
	"errors"
	"strings"
	"time"

	"pat-tracker/internal/config"
	"pat-tracker/internal/repository"
)

// ErrPlayerNotFound is returned when a player has no matches in the
// requested range.
var ErrPlayerNotFound = errors.New("player not found")

// optional swallows repository.ErrNotFound for lookups whose absence is a
// valid answer.
func optional(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func cacheKey(namespace string, parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}

// cacheTTL returns CACHE_TTL when it is set and the per-namespace default
// otherwise.
func cacheTTL(cfg *config.Config, fallback time.Duration) time.Duration {
	if cfg.CacheTTL > 0 {
		return cfg.CacheTTL
	}
	return fallback
}
