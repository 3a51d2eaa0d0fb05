package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pat-tracker/internal/cache"
	"pat-tracker/internal/config"
	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"
	"pat-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService struct {
	boards *repository.LeaderboardRepository
	feed   *repository.FeedRepository
	bans   *repository.BansRepository
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewLeaderboardService(
	boards *repository.LeaderboardRepository,
	feed *repository.FeedRepository,
	bans *repository.BansRepository,
	c cache.Cache,
	cfg *config.Config,
	logger zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		boards: boards,
		feed:   feed,
		bans:   bans,
		cache:  c,
		ttl:    cacheTTL(cfg, constants.LeaderboardCacheTTL),
		logger: logger,
	}
}

// Global returns one page of the all-time leaderboard of the given type.
// Pages are 1-based.
func (s *LeaderboardService) Global(ctx context.Context, typ string, page int) ([]domain.LeaderboardRow, error) {
	if !repository.ValidLeaderboard(typ) {
		return nil, fmt.Errorf("unknown leaderboard type %q", typ)
	}
	page = max(page, 1)

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cacheKey("leaderboard", typ, strconv.Itoa(page))
	rows, err := cache.GetOrLoad(ctx, s.cache, s.logger, key, s.ttl, func(ctx context.Context) ([]domain.LeaderboardRow, error) {
		size := constants.LeaderboardPageSize
		return s.boards.Global(ctx, typ, size, (page-1)*size)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("type", typ).Int("page", page).Msg("failed to load leaderboard")
		return nil, err
	}
	return rows, nil
}

// PlayerContext returns the top win-rate and peak-elo players inside f so a
// player page can show where it stands.
func (s *LeaderboardService) PlayerContext(ctx context.Context, steamID string, f season.DateFilter) (domain.PlayerLeaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cacheKey("player-leaderboard", f.CacheKey())
	board, err := cache.GetOrLoad(ctx, s.cache, s.logger, key, s.ttl, func(ctx context.Context) (domain.PlayerLeaderboard, error) {
		return s.loadPlayerContext(ctx, f)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load player leaderboard")
		return domain.PlayerLeaderboard{}, err
	}
	board.CurrentPlayer = steamID
	return board, nil
}

func (s *LeaderboardService) loadPlayerContext(ctx context.Context, f season.DateFilter) (domain.PlayerLeaderboard, error) {
	var byWinRate, byElo []domain.PlayerAggregate

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byWinRate, err = s.boards.TopPlayers(gCtx, f, constants.WinRateMinMatches, domain.LeaderboardWinRate, constants.PlayerLeaderboardFetch)
		return err
	})
	g.Go(func() error {
		var err error
		byElo, err = s.boards.TopPlayers(gCtx, f, constants.WinRateMinMatches, domain.LeaderboardElo, constants.PlayerLeaderboardFetch)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.PlayerLeaderboard{}, err
	}

	seen := make(map[string]struct{}, len(byWinRate)+len(byElo))
	ids := make([]string, 0, len(byWinRate)+len(byElo))
	for _, p := range append(append([]domain.PlayerAggregate{}, byWinRate...), byElo...) {
		if _, ok := seen[p.SteamID]; !ok {
			seen[p.SteamID] = struct{}{}
			ids = append(ids, p.SteamID)
		}
	}
	bans, err := s.bans.ForPlayers(ctx, ids)
	if err != nil {
		return domain.PlayerLeaderboard{}, err
	}

	return domain.PlayerLeaderboard{
		ByWinRate: rankPlayers(byWinRate, bans),
		ByElo:     rankPlayers(byElo, bans),
	}, nil
}

func rankPlayers(players []domain.PlayerAggregate, bans map[string]domain.LeaderboardBans) []domain.RankedPlayer {
	players = players[:min(len(players), constants.PlayerLeaderboardSize)]
	out := make([]domain.RankedPlayer, 0, len(players))
	for _, p := range players {
		r := domain.RankedPlayer{
			SteamID:    p.SteamID,
			PlayerName: p.PlayerName,
			Matches:    p.Matches,
			Wins:       p.Wins,
			Losses:     p.Losses,
			WinRate:    stats.WinRate(p.Wins, p.Matches),
			KDR:        stats.KDR(p.TotalKills, p.TotalDeaths),
			PeakElo:    p.PeakElo,
			CurrentElo: p.CurrentElo,
			AvgDamage:  p.AvgDamage,
		}
		if b, ok := bans[p.SteamID]; ok {
			r.Bans = &b
		}
		out = append(out, r)
	}
	return out
}

// Rankings places the player among everyone qualified inside f. A player
// below a board's match minimum gets a nil rank on that board.
func (s *LeaderboardService) Rankings(ctx context.Context, steamID string, f season.DateFilter) (domain.Rankings, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	key := cacheKey("rankings", steamID, f.CacheKey())
	rankings, err := cache.GetOrLoad(ctx, s.cache, s.logger, key, s.ttl, func(ctx context.Context) (domain.Rankings, error) {
		return s.loadRankings(ctx, steamID, f)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load rankings")
		return domain.Rankings{}, err
	}
	return rankings, nil
}

func (s *LeaderboardService) loadRankings(ctx context.Context, steamID string, f season.DateFilter) (domain.Rankings, error) {
	st, err := s.feed.PlayerStats(ctx, steamID, f)
	if err != nil {
		return domain.Rankings{}, err
	}
	if st.Matches < 1 {
		return domain.Rankings{}, nil
	}

	var peakAbove, peakTotal, wrAbove, wrTotal int
	ratio := float64(st.Wins) / float64(st.Matches)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		peakAbove, err = s.boards.CountAbovePeakElo(gCtx, f, constants.PeakEloMinMatches, st.PeakElo)
		return err
	})
	g.Go(func() error {
		var err error
		peakTotal, err = s.boards.CountQualified(gCtx, f, constants.PeakEloMinMatches)
		return err
	})
	g.Go(func() error {
		var err error
		wrAbove, err = s.boards.CountAboveWinRate(gCtx, f, constants.WinRateMinMatches, ratio)
		return err
	})
	g.Go(func() error {
		var err error
		wrTotal, err = s.boards.CountQualified(gCtx, f, constants.WinRateMinMatches)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Rankings{}, err
	}

	return domain.Rankings{
		PeakElo: rank(st.Matches >= constants.PeakEloMinMatches, peakAbove, peakTotal),
		WinRate: rank(st.Matches >= constants.WinRateMinMatches, wrAbove, wrTotal),
	}, nil
}

func rank(qualified bool, above, total int) domain.Rank {
	r := domain.Rank{Total: total}
	if !qualified {
		return r
	}
	pos := above + 1
	pct := stats.Percentile(pos, total)
	r.Rank, r.Percentile = &pos, &pct
	return r
}
