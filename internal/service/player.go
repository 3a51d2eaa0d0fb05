package service

import (
	"context"
	"errors"
	"fmt"

	"pat-tracker/internal/config"
	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"
	"pat-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type PlayerService struct {
	feed     *repository.FeedRepository
	profiles *repository.ProfileRepository
	bans     *repository.BansRepository
	seasons  *season.Table
	logger   zerolog.Logger
}

func NewPlayerService(
	feed *repository.FeedRepository,
	profiles *repository.ProfileRepository,
	bans *repository.BansRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *PlayerService {
	return &PlayerService{feed: feed, profiles: profiles, bans: bans, seasons: cfg.Seasons, logger: logger}
}

// Summary merges the player's aggregate row with the chronological edges of
// their rows and the optional Steam profile and bans.
func (s *PlayerService) Summary(ctx context.Context, steamID string, f season.DateFilter) (*domain.PlayerSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var (
		st          domain.PlayerStats
		first, last domain.MatchRecord
		profile     *domain.PlayerProfile
		bans        *domain.PlayerBans
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st, err = s.feed.PlayerStats(gCtx, steamID, f)
		return err
	})
	g.Go(func() error {
		var err error
		first, err = s.feed.FirstMatch(gCtx, steamID, f)
		return optional(err)
	})
	g.Go(func() error {
		var err error
		last, err = s.feed.LastMatch(gCtx, steamID, f)
		return optional(err)
	})
	g.Go(func() error {
		var err error
		profile, err = s.profiles.Get(gCtx, steamID)
		return optional(err)
	})
	g.Go(func() error {
		var err error
		bans, err = s.bans.Get(gCtx, steamID)
		return optional(err)
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load player summary")
		return nil, fmt.Errorf("failed to load player summary: %w", err)
	}

	if st.Matches == 0 {
		return nil, ErrPlayerNotFound
	}

	return &domain.PlayerSummary{
		SteamID:     steamID,
		PlayerName:  st.PlayerName,
		Matches:     st.Matches,
		Wins:        st.Wins,
		Losses:      st.Losses,
		WinRate:     stats.WinRate(st.Wins, st.Matches),
		KDR:         stats.KDR(st.TotalKills, st.TotalDeaths),
		TotalKills:  st.TotalKills,
		TotalDeaths: st.TotalDeaths,
		AvgDamage:   st.AvgDamage,
		PeakElo:     st.PeakElo,
		CurrentElo:  last.Elo,
		NetElo:      last.Elo - first.Elo,
		FirstDate:   st.FirstDate,
		LastDate:    st.LastDate,
		Profile:     profile,
		Bans:        bans,
	}, nil
}

// Seasons lists the configured seasons that overlap the player's activity.
func (s *PlayerService) Seasons(ctx context.Context, steamID string) ([]season.Season, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	minDate, maxDate, err := s.feed.DateRange(ctx, steamID)
	if errors.Is(err, repository.ErrNotFound) {
		return []season.Season{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load player date range")
		return nil, err
	}
	return s.seasons.Overlapping(minDate, maxDate), nil
}

func (s *PlayerService) EloHistory(ctx context.Context, steamID string, f season.DateFilter) ([]domain.EloPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	points, err := s.feed.EloHistory(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load elo history")
		return nil, err
	}
	return points, nil
}

// Daily returns per-date rollups with win rate (one decimal) and KDR (two
// decimals) filled in.
func (s *PlayerService) Daily(ctx context.Context, steamID string, f season.DateFilter) ([]domain.DailyStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	days, err := s.feed.Daily(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load daily stats")
		return nil, err
	}
	for i := range days {
		d := &days[i]
		d.WinRate = stats.RoundTo(stats.WinRate(d.Wins, d.Matches), 1)
		d.KDR = stats.RoundTo(stats.KDR(d.TotalKills, d.TotalDeaths), 2)
	}
	return days, nil
}

func (s *PlayerService) DamageDistribution(ctx context.Context, steamID string, f season.DateFilter) ([]domain.DamageBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	buckets, err := s.feed.DamageDistribution(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load damage distribution")
		return nil, err
	}
	return buckets, nil
}

func (s *PlayerService) TimeOfDay(ctx context.Context, steamID string, f season.DateFilter) ([]domain.TimeBlockStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	blocks, err := s.feed.TimeOfDay(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load time of day stats")
		return nil, err
	}
	return blocks, nil
}
