package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pat-tracker/internal/api"
	"pat-tracker/internal/config"
	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/metrics"
	"pat-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SteamAPI is the slice of the Steam Web API the profile sync needs.
type SteamAPI interface {
	GetPlayerSummaries(ctx context.Context, steamIDs []string) (*api.PlayerSummariesResponse, error)
	GetPlayerBans(ctx context.Context, steamIDs []string) (*api.PlayerBansResponse, error)
}

type SyncReport struct {
	RunID    string
	Players  int
	Batches  int
	Failed   int
	Profiles int
	Bans     int
	Missing  int
}

type ProfileSyncService struct {
	feed       *repository.FeedRepository
	profiles   *repository.ProfileRepository
	steam      SteamAPI
	staleAfter time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewProfileSyncService(
	feed *repository.FeedRepository,
	profiles *repository.ProfileRepository,
	steam SteamAPI,
	cfg *config.Config,
	logger zerolog.Logger,
) *ProfileSyncService {
	staleAfter := cfg.Steam.StaleAfter
	if staleAfter <= 0 {
		staleAfter = constants.ProfileStaleAfter
	}
	return &ProfileSyncService{
		feed:       feed,
		profiles:   profiles,
		steam:      steam,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Run refreshes the Steam profile and bans of every feed player whose profile
// is missing or stale. A batch that fails is logged and skipped; its players
// stay stale and are picked up again by the next run. Ids Steam does not
// return are recorded and wait out the stale window like a fresh profile.
func (s *ProfileSyncService) Run(ctx context.Context) (SyncReport, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return SyncReport{}, fmt.Errorf("failed to generate run id: %w", err)
	}
	report := SyncReport{RunID: runID}
	logger := s.logger.With().Str("run_id", runID).Logger()

	ids, err := s.feed.SteamIDsNeedingSync(ctx, s.now().Add(-s.staleAfter), constants.ProfileSyncMaxPlayers)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list players needing sync")
		return report, err
	}
	report.Players = len(ids)
	logger.Info().Int("players", len(ids)).Dur("stale_after", s.staleAfter).Msg("profile sync started")

	for i := 0; i < len(ids); i += constants.SteamIDBatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch := ids[i:min(i+constants.SteamIDBatchSize, len(ids))]
		report.Batches++

		profiles, bans, missing, err := s.syncBatch(ctx, runID, batch)
		if err != nil {
			report.Failed++
			metrics.ProfileSyncBatchesTotal.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Int("batch", report.Batches).Int("size", len(batch)).Msg("profile batch failed, skipping")
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			continue
		}
		report.Profiles += profiles
		report.Bans += bans
		report.Missing += missing
		metrics.ProfileSyncBatchesTotal.WithLabelValues("ok").Inc()
	}

	logger.Info().
		Int("players", report.Players).
		Int("batches", report.Batches).
		Int("failed", report.Failed).
		Int("profiles", report.Profiles).
		Int("bans", report.Bans).
		Int("missing", report.Missing).
		Msg("profile sync finished")
	return report, nil
}

// syncBatch returns how many profiles and bans were written and how many ids
// Steam had no profile for.
func (s *ProfileSyncService) syncBatch(ctx context.Context, runID string, batch []string) (int, int, int, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	var (
		summaries *api.PlayerSummariesResponse
		bansResp  *api.PlayerBansResponse
	)
	g, gCtx := errgroup.WithContext(apiCtx)
	g.Go(func() error {
		var err error
		summaries, err = s.steam.GetPlayerSummaries(gCtx, batch)
		return err
	})
	g.Go(func() error {
		var err error
		bansResp, err = s.steam.GetPlayerBans(gCtx, batch)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to fetch steam data: %w", err)
	}

	now := s.now().UTC()
	profiles := make([]domain.PlayerProfile, 0, len(summaries.Response.Players))
	returned := make(map[string]bool, len(summaries.Response.Players))
	for _, p := range summaries.Response.Players {
		profiles = append(profiles, toProfile(p, runID, now))
		returned[p.SteamID] = true
	}
	var missing []string
	for _, id := range batch {
		if !returned[id] {
			missing = append(missing, id)
		}
	}
	bans := make([]domain.PlayerBans, 0, len(bansResp.Players))
	for _, b := range bansResp.Players {
		bans = append(bans, toBans(b, now))
	}

	if err := s.profiles.UpsertBatch(ctx, profiles, bans); err != nil {
		return 0, 0, 0, err
	}
	if err := s.profiles.RecordMisses(ctx, missing, now); err != nil {
		return 0, 0, 0, err
	}
	return len(profiles), len(bans), len(missing), nil
}

func toProfile(p api.SteamPlayer, runID string, now time.Time) domain.PlayerProfile {
	profile := domain.PlayerProfile{
		SteamID:     p.SteamID,
		PersonaName: p.PersonaName,
		AvatarURL:   nonEmpty(p.AvatarFull),
		ProfileURL:  nonEmpty(p.ProfileURL),
		CountryCode: nonEmpty(p.LocCountryCode),
		SyncID:      runID,
		UpdatedAt:   now,
	}
	if profile.AvatarURL == nil {
		profile.AvatarURL = nonEmpty(p.Avatar)
	}
	if p.TimeCreated > 0 {
		created := time.Unix(p.TimeCreated, 0).UTC()
		profile.AccountCreated = &created
	}
	return profile
}

func toBans(b api.SteamBans, now time.Time) domain.PlayerBans {
	economy := b.EconomyBan
	if economy == "" {
		economy = "none"
	}
	return domain.PlayerBans{
		SteamID:          b.SteamID,
		VACBanned:        b.VACBanned,
		NumberOfVACBans:  b.NumberOfVACBans,
		NumberOfGameBans: b.NumberOfGameBans,
		DaysSinceLastBan: b.DaysSinceLastBan,
		CommunityBanned:  b.CommunityBanned,
		EconomyBan:       economy,
		UpdatedAt:        now,
	}
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
