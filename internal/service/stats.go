package service

import (
	"context"
	"time"

	"pat-tracker/internal/cache"
	"pat-tracker/internal/config"
	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

type StatsService struct {
	feed    *repository.FeedRepository
	cache   cache.Cache
	ttl     time.Duration
	seasons *season.Table
	logger  zerolog.Logger
}

func NewStatsService(feed *repository.FeedRepository, c cache.Cache, cfg *config.Config, logger zerolog.Logger) *StatsService {
	return &StatsService{
		feed:    feed,
		cache:   c,
		ttl:     cacheTTL(cfg, constants.StatsCacheTTL),
		seasons: cfg.Seasons,
		logger:  logger,
	}
}

func (s *StatsService) Global(ctx context.Context) (domain.GlobalStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	st, err := cache.GetOrLoad(ctx, s.cache, s.logger, cacheKey("stats", "global"), s.ttl, s.feed.GlobalStats)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load global stats")
		return domain.GlobalStats{}, err
	}
	return st, nil
}

func (s *StatsService) Seasons() []season.Season {
	return s.seasons.All()
}
