package service

import (
	"context"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

type MatchService struct {
	feed   *repository.FeedRepository
	logger zerolog.Logger
}

func NewMatchService(feed *repository.FeedRepository, logger zerolog.Logger) *MatchService {
	return &MatchService{feed: feed, logger: logger}
}

// History returns one page of the player's matches, oldest first. Pages are
// 1-based; anything below 1 is treated as the first page.
func (s *MatchService) History(ctx context.Context, steamID string, f season.DateFilter, page int) (domain.MatchHistoryPage, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	page = max(page, 1)
	size := constants.MatchHistoryPageSize

	entries, total, err := s.feed.MatchHistory(ctx, steamID, f, size, (page-1)*size)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Int("page", page).Msg("failed to load match history")
		return domain.MatchHistoryPage{}, err
	}

	if entries == nil {
		entries = []domain.MatchHistoryEntry{}
	}
	return domain.MatchHistoryPage{
		Matches:    entries,
		Total:      total,
		Page:       page,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// Recent returns the newest matches across all players. limit is clamped to
// [1, RecentMatchesMax]; zero selects the default.
func (s *MatchService) Recent(ctx context.Context, limit int) ([]domain.RecentMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.RecentMatchesDefault
	}
	limit = min(limit, constants.RecentMatchesMax)

	matches, err := s.feed.RecentMatches(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to load recent matches")
		return nil, err
	}
	return matches, nil
}
