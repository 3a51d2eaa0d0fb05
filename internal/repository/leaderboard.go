package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

type LeaderboardRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLeaderboardRepository(sqlDB *sql.DB, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{db: sqlDB, logger: logger}
}

type boardSpec struct {
	minMatches int
	orderBy    string
}

var boards = map[string]boardSpec{
	domain.LeaderboardWinRate: {constants.WinRateMinMatches, "win_rate DESC, matches DESC"},
	domain.LeaderboardElo:     {constants.PeakEloMinMatches, "peak_elo DESC"},
	domain.LeaderboardActive:  {0, "matches DESC"},
	domain.LeaderboardKDR:     {constants.KDRMinMatches, "kdr DESC"},
}

func ValidLeaderboard(typ string) bool {
	_, ok := boards[typ]
	return ok
}

// Global returns one page of the all-time leaderboard of the given type.
// Only the columns the type ranks by are set on each row.
func (r *LeaderboardRepository) Global(ctx context.Context, typ string, limit, offset int) ([]domain.LeaderboardRow, error) {
	spec, ok := boards[typ]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard type %q", typ)
	}

	query := `
		SELECT f.steam_id,
		       MAX(f.player_name),
		       COUNT(DISTINCT f.match_id) AS matches,
		       SUM(CASE WHEN f.side = 'winner' THEN 1 ELSE 0 END) AS wins,
		       ROUND(SUM(CASE WHEN f.side = 'winner' THEN 1 ELSE 0 END) * 100.0 / COUNT(DISTINCT f.match_id), 1) AS win_rate,
		       SUM(f.kills) AS total_kills,
		       SUM(f.deaths) AS total_deaths,
		       COALESCE(ROUND(CAST(SUM(f.kills) AS REAL) / NULLIF(SUM(f.deaths), 0), 2), SUM(f.kills)) AS kdr,
		       MAX(f.elo) AS peak_elo,
		       MAX(b.vac_banned),
		       MAX(b.number_of_game_bans)
		FROM pat_ranked_feed f
		LEFT JOIN player_bans b ON b.steam_id = f.steam_id
		GROUP BY f.steam_id
		HAVING COUNT(DISTINCT f.match_id) >= ?
		ORDER BY ` + spec.orderBy + `, f.steam_id ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, spec.minMatches, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s leaderboard: %w", typ, err)
	}
	defer rows.Close()

	out := []domain.LeaderboardRow{}
	for rows.Next() {
		var (
			row                      domain.LeaderboardRow
			wins, kills, deaths, elo int
			winRate, kdr             float64
			vac, gameBans            sql.NullInt64
		)
		if err := rows.Scan(&row.SteamID, &row.PlayerName, &row.Matches, &wins, &winRate,
			&kills, &deaths, &kdr, &elo, &vac, &gameBans); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		switch typ {
		case domain.LeaderboardWinRate:
			row.Wins, row.WinRate = &wins, &winRate
		case domain.LeaderboardElo:
			row.PeakElo = &elo
		case domain.LeaderboardActive:
			row.Wins, row.WinRate = &wins, &winRate
		case domain.LeaderboardKDR:
			row.TotalKills, row.TotalDeaths, row.KDR = &kills, &deaths, &kdr
		}
		row.VACBanned = nullInt(vac)
		row.NumberOfGameBans = nullInt(gameBans)
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopPlayers aggregates every player with at least minMatches rows inside f
// and returns the best limit of them, ordered by win ratio or, for
// domain.LeaderboardElo, by peak.
func (r *LeaderboardRepository) TopPlayers(ctx context.Context, f season.DateFilter, minMatches int, order string, limit int) ([]domain.PlayerAggregate, error) {
	orderBy := "CAST(SUM(CASE WHEN f.side = 'winner' THEN 1 ELSE 0 END) AS REAL) / COUNT(DISTINCT f.match_id) DESC"
	if order == domain.LeaderboardElo {
		orderBy = "peak_elo DESC"
	}

	current, args := appendDateFilter(`
		SELECT l.elo FROM pat_ranked_feed l WHERE l.steam_id = f.steam_id`, nil, "l.date", f)
	current += " ORDER BY l.date DESC, l.time_utc DESC, l.id DESC LIMIT 1"

	query, args := appendDateFilter(`
		SELECT f.steam_id,
		       MAX(f.player_name),
		       COUNT(DISTINCT f.match_id) AS matches,
		       SUM(CASE WHEN f.side = 'winner' THEN 1 ELSE 0 END) AS wins,
		       SUM(CASE WHEN f.side = 'loser' THEN 1 ELSE 0 END),
		       SUM(f.kills),
		       SUM(f.deaths),
		       COALESCE(ROUND(AVG(f.damage), 0), 0),
		       MAX(f.elo) AS peak_elo,
		       (`+current+`)
		FROM pat_ranked_feed f WHERE 1=1`, args, "f.date", f)
	query += " GROUP BY f.steam_id HAVING matches >= ? ORDER BY " + orderBy + ", f.steam_id ASC LIMIT ?"
	args = append(args, minMatches, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top players: %w", err)
	}
	defer rows.Close()

	out := []domain.PlayerAggregate{}
	for rows.Next() {
		var p domain.PlayerAggregate
		if err := rows.Scan(&p.SteamID, &p.PlayerName, &p.Matches, &p.Wins, &p.Losses,
			&p.TotalKills, &p.TotalDeaths, &p.AvgDamage, &p.PeakElo, &p.CurrentElo); err != nil {
			return nil, fmt.Errorf("failed to scan player aggregate: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountQualified counts players with at least minMatches rows inside f.
func (r *LeaderboardRepository) CountQualified(ctx context.Context, f season.DateFilter, minMatches int) (int, error) {
	return r.countPlayers(ctx, f, "matches >= ?", minMatches)
}

// CountAbovePeakElo counts qualified players whose peak inside f beats peak.
func (r *LeaderboardRepository) CountAbovePeakElo(ctx context.Context, f season.DateFilter, minMatches, peak int) (int, error) {
	return r.countPlayers(ctx, f, "matches >= ? AND peak_elo > ?", minMatches, peak)
}

// CountAboveWinRate counts qualified players whose win ratio inside f beats
// ratio, a fraction in [0, 1].
func (r *LeaderboardRepository) CountAboveWinRate(ctx context.Context, f season.DateFilter, minMatches int, ratio float64) (int, error) {
	return r.countPlayers(ctx, f, "matches >= ? AND wr > ?", minMatches, ratio)
}

func (r *LeaderboardRepository) countPlayers(ctx context.Context, f season.DateFilter, having string, havingArgs ...any) (int, error) {
	inner, args := appendDateFilter(`
		SELECT steam_id,
		       COUNT(DISTINCT match_id) AS matches,
		       MAX(elo) AS peak_elo,
		       CAST(SUM(CASE WHEN side = 'winner' THEN 1 ELSE 0 END) AS REAL) / COUNT(DISTINCT match_id) AS wr
		FROM pat_ranked_feed WHERE 1=1`, nil, "date", f)
	query := "SELECT COUNT(*) FROM (" + inner + " GROUP BY steam_id HAVING " + having + ")"

	var n int
	if err := r.db.QueryRowContext(ctx, query, append(args, havingArgs...)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}
