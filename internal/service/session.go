package service

import (
	"context"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/metrics"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"
	"pat-tracker/internal/session"

	"github.com/rs/zerolog"
)

type SessionService struct {
	feed   *repository.FeedRepository
	logger zerolog.Logger
}

func NewSessionService(feed *repository.FeedRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{feed: feed, logger: logger}
}

// Sessions segments the player's matches inside f into play sessions.
func (s *SessionService) Sessions(ctx context.Context, steamID string, f season.DateFilter) ([]domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	records, err := s.feed.PlayerMatches(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load matches for sessions")
		return nil, err
	}

	sessions := session.Segment(records)
	metrics.SessionsSegmented.Observe(float64(len(sessions)))

	s.logger.Debug().
		Str("steam_id", steamID).
		Int("matches", len(records)).
		Int("sessions", len(sessions)).
		Msg("matches segmented")
	return sessions, nil
}

func (s *SessionService) Summary(ctx context.Context, steamID string, f season.DateFilter) (domain.SessionSummary, error) {
	sessions, err := s.Sessions(ctx, steamID, f)
	if err != nil {
		return domain.SessionSummary{}, err
	}
	return session.Summarize(sessions), nil
}
