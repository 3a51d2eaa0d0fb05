package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pat-tracker/internal/domain"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

// FeedRepository reads the append-only pat_ranked_feed table. It never writes.
type FeedRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFeedRepository(sqlDB *sql.DB, logger zerolog.Logger) *FeedRepository {
	return &FeedRepository{db: sqlDB, logger: logger}
}

// PlayerMatches returns the player's records ordered by (date, time_utc).
func (r *FeedRepository) PlayerMatches(ctx context.Context, steamID string, f season.DateFilter) ([]domain.MatchRecord, error) {
	query, args := appendDateFilter(`
		SELECT match_id, steam_id, player_name, date, time_utc, side, elo, elo_change,
		       kills, deaths, damage, rounds_won, rounds_total
		FROM pat_ranked_feed WHERE steam_id = ?`, []any{steamID}, "date", f)
	query += " ORDER BY date ASC, time_utc ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player matches: %w", err)
	}
	defer rows.Close()

	records := []domain.MatchRecord{}
	for rows.Next() {
		var (
			m      domain.MatchRecord
			tod    sql.NullString
			damage sql.NullInt64
		)
		if err := rows.Scan(&m.MatchID, &m.SteamID, &m.PlayerName, &m.Date, &tod, &m.Side,
			&m.Elo, &m.EloChange, &m.Kills, &m.Deaths, &damage, &m.RoundsWon, &m.RoundsTotal); err != nil {
			return nil, fmt.Errorf("failed to scan match record: %w", err)
		}
		m.TimeOfDay = tod.String
		m.Damage = nullInt(damage)
		records = append(records, m)
	}
	return records, rows.Err()
}

// PlayerStats aggregates the player's rows. A player without rows in range
// comes back with Matches == 0.
func (r *FeedRepository) PlayerStats(ctx context.Context, steamID string, f season.DateFilter) (domain.PlayerStats, error) {
	query, args := appendDateFilter(`
		SELECT COUNT(DISTINCT match_id),
		       COALESCE(SUM(CASE WHEN side = 'winner' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN side = 'loser' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(kills), 0),
		       COALESCE(SUM(deaths), 0),
		       COALESCE(ROUND(AVG(damage), 0), 0),
		       COALESCE(MIN(date), ''),
		       COALESCE(MAX(date), ''),
		       COALESCE(MAX(elo), 0),
		       COALESCE(MAX(player_name), '')
		FROM pat_ranked_feed WHERE steam_id = ?`, []any{steamID}, "date", f)

	var s domain.PlayerStats
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.Matches, &s.Wins, &s.Losses, &s.TotalKills, &s.TotalDeaths,
		&s.AvgDamage, &s.FirstDate, &s.LastDate, &s.PeakElo, &s.PlayerName,
	)
	if err != nil {
		return domain.PlayerStats{}, fmt.Errorf("failed to query player stats: %w", err)
	}
	return s, nil
}

// FirstMatch and LastMatch return the chronological edges of the player's
// rows in range, or ErrNotFound.
func (r *FeedRepository) FirstMatch(ctx context.Context, steamID string, f season.DateFilter) (domain.MatchRecord, error) {
	return r.edgeMatch(ctx, steamID, f, "ASC")
}

func (r *FeedRepository) LastMatch(ctx context.Context, steamID string, f season.DateFilter) (domain.MatchRecord, error) {
	return r.edgeMatch(ctx, steamID, f, "DESC")
}

func (r *FeedRepository) edgeMatch(ctx context.Context, steamID string, f season.DateFilter, dir string) (domain.MatchRecord, error) {
	query, args := appendDateFilter(`
		SELECT match_id, player_name, date, time_utc, side, elo, elo_change
		FROM pat_ranked_feed WHERE steam_id = ?`, []any{steamID}, "date", f)
	query += fmt.Sprintf(" ORDER BY date %[1]s, time_utc %[1]s, id %[1]s LIMIT 1", dir)

	var (
		m   domain.MatchRecord
		tod sql.NullString
	)
	m.SteamID = steamID
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.MatchID, &m.PlayerName, &m.Date, &tod, &m.Side, &m.Elo, &m.EloChange,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MatchRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.MatchRecord{}, fmt.Errorf("failed to query edge match: %w", err)
	}
	m.TimeOfDay = tod.String
	return m, nil
}

func (r *FeedRepository) EloHistory(ctx context.Context, steamID string, f season.DateFilter) ([]domain.EloPoint, error) {
	query, args := appendDateFilter(`
		SELECT date, time_utc, elo, side, match_id, elo_change
		FROM pat_ranked_feed WHERE steam_id = ?`, []any{steamID}, "date", f)
	query += " ORDER BY date ASC, time_utc ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query elo history: %w", err)
	}
	defer rows.Close()

	points := []domain.EloPoint{}
	for rows.Next() {
		var (
			p   domain.EloPoint
			tod sql.NullString
		)
		if err := rows.Scan(&p.Date, &tod, &p.Elo, &p.Side, &p.MatchID, &p.EloChange); err != nil {
			return nil, fmt.Errorf("failed to scan elo point: %w", err)
		}
		p.TimeUTC = nullString(tod)
		points = append(points, p)
	}
	return points, rows.Err()
}

// Daily rolls the player's rows up per date, newest first. Derived rates are
// left to the caller.
func (r *FeedRepository) Daily(ctx context.Context, steamID string, f season.DateFilter) ([]domain.DailyStat, error) {
	query, args := appendDateFilter(`
		SELECT date,
		       COUNT(*),
		       SUM(CASE WHEN side = 'winner' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN side = 'loser' THEN 1 ELSE 0 END),
		       SUM(kills),
		       SUM(deaths),
		       COALESCE(ROUND(AVG(damage), 0), 0),
		       MIN(elo),
		       MAX(elo),
		       SUM(elo_change)
		FROM pat_ranked_feed WHERE steam_id = ?`, []any{steamID}, "date", f)
	query += " GROUP BY date ORDER BY date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	days := []domain.DailyStat{}
	for rows.Next() {
		var d domain.DailyStat
		if err := rows.Scan(&d.Date, &d.Matches, &d.Wins, &d.Losses, &d.TotalKills, &d.TotalDeaths,
			&d.AvgDamage, &d.MinElo, &d.MaxElo, &d.EloChange); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *FeedRepository) DamageDistribution(ctx context.Context, steamID string, f season.DateFilter) ([]domain.DamageBucket, error) {
	query, args := appendDateFilter(`
		SELECT CASE
		         WHEN damage < 100 THEN '0-99'
		         WHEN damage < 200 THEN '100-199'
		         WHEN damage < 300 THEN '200-299'
		         WHEN damage < 400 THEN '300-399'
		         WHEN damage < 500 THEN '400-499'
		         WHEN damage < 600 THEN '500-599'
		         WHEN damage < 700 THEN '600-699'
		         ELSE '700+'
		       END AS damage_range,
		       COUNT(*)
		FROM pat_ranked_feed WHERE steam_id = ? AND damage IS NOT NULL`, []any{steamID}, "date", f)
	query += " GROUP BY damage_range ORDER BY MIN(damage)"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query damage distribution: %w", err)
	}
	defer rows.Close()

	buckets := []domain.DamageBucket{}
	for rows.Next() {
		var b domain.DamageBucket
		if err := rows.Scan(&b.DamageRange, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan damage bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TimeOfDay buckets the player's rows into four-hour CST blocks keyed on the
// UTC hour. Rows outside the tracked blocks are dropped.
func (r *FeedRepository) TimeOfDay(ctx context.Context, steamID string, f season.DateFilter) ([]domain.TimeBlockStat, error) {
	inner, args := appendDateFilter(`
		SELECT CAST(SUBSTR(time_utc, 1, 2) AS INTEGER) AS hour, side, kills, deaths
		FROM pat_ranked_feed WHERE steam_id = ? AND time_utc IS NOT NULL AND time_utc != ''`,
		[]any{steamID}, "date", f)

	query := `
		SELECT CASE
		         WHEN hour >= 0 AND hour < 4 THEN '6-10 PM CST'
		         WHEN hour >= 4 AND hour < 8 THEN '10 PM-2 AM CST'
		         WHEN hour >= 8 AND hour < 12 THEN '2-6 AM CST'
		         WHEN hour >= 16 AND hour < 20 THEN '10 AM-2 PM CST'
		         ELSE 'Other'
		       END AS time_block,
		       COUNT(*),
		       SUM(CASE WHEN side = 'winner' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN side = 'loser' THEN 1 ELSE 0 END),
		       SUM(kills),
		       SUM(deaths)
		FROM (` + inner + `)
		GROUP BY time_block
		HAVING time_block != 'Other'
		ORDER BY MIN(hour)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time of day: %w", err)
	}
	defer rows.Close()

	blocks := []domain.TimeBlockStat{}
	for rows.Next() {
		var b domain.TimeBlockStat
		if err := rows.Scan(&b.TimeBlock, &b.Matches, &b.Wins, &b.Losses, &b.TotalKills, &b.TotalDeaths); err != nil {
			return nil, fmt.Errorf("failed to scan time block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Opponents aggregates the player's head-to-head record per opponent, most
// frequent first.
func (r *FeedRepository) Opponents(ctx context.Context, steamID string, f season.DateFilter) ([]domain.OpponentStat, error) {
	query, args := appendDateFilter(`
		SELECT opp.steam_id,
		       MAX(opp.player_name),
		       COUNT(*) AS times_faced,
		       SUM(CASE WHEN me.side = 'winner' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN me.side = 'loser' THEN 1 ELSE 0 END),
		       MAX(opp.elo),
		       SUM(opp.kills),
		       SUM(opp.deaths),
		       MAX(b.vac_banned),
		       MAX(b.number_of_vac_bans),
		       MAX(b.number_of_game_bans),
		       MAX(b.days_since_last_ban)
		FROM pat_ranked_feed me
		JOIN pat_ranked_feed opp ON opp.match_id = me.match_id AND opp.side != me.side
		LEFT JOIN player_bans b ON b.steam_id = opp.steam_id
		WHERE me.steam_id = ? AND opp.steam_id != me.steam_id`, []any{steamID}, "me.date", f)
	query += " GROUP BY opp.steam_id ORDER BY times_faced DESC, opp.steam_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query opponents: %w", err)
	}
	defer rows.Close()

	opponents := []domain.OpponentStat{}
	for rows.Next() {
		var (
			o                        domain.OpponentStat
			vac, vacCount, game, day sql.NullInt64
		)
		if err := rows.Scan(&o.SteamID, &o.PlayerName, &o.TimesFaced, &o.Wins, &o.Losses,
			&o.OppPeakElo, &o.OppKills, &o.OppDeaths, &vac, &vacCount, &game, &day); err != nil {
			return nil, fmt.Errorf("failed to scan opponent: %w", err)
		}
		o.Bans = banSummary(vac, vacCount, game, day)
		opponents = append(opponents, o)
	}
	return opponents, rows.Err()
}

// Disconnects returns the player's matches whose rounds fall short of the
// scheduled total, newest first.
func (r *FeedRepository) Disconnects(ctx context.Context, steamID string, f season.DateFilter) ([]domain.DisconnectRow, error) {
	query, args := appendDateFilter(`
		SELECT me.match_id, me.date, me.side, me.rounds_won, me.rounds_total, me.elo,
		       opp.player_name, opp.steam_id, opp.elo, opp.rounds_won,
		       b.vac_banned, b.number_of_vac_bans, b.number_of_game_bans, b.days_since_last_ban
		FROM pat_ranked_feed me
		JOIN pat_ranked_feed opp ON opp.match_id = me.match_id AND opp.side != me.side
		LEFT JOIN player_bans b ON b.steam_id = opp.steam_id
		WHERE me.steam_id = ? AND (me.rounds_won + opp.rounds_won) < me.rounds_total`,
		[]any{steamID}, "me.date", f)
	query += " ORDER BY me.date DESC, me.time_utc DESC, me.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query disconnects: %w", err)
	}
	defer rows.Close()

	out := []domain.DisconnectRow{}
	for rows.Next() {
		var (
			d                        domain.DisconnectRow
			vac, vacCount, game, day sql.NullInt64
		)
		if err := rows.Scan(&d.MatchID, &d.Date, &d.MySide, &d.MyRounds, &d.RoundsTotal, &d.MyElo,
			&d.OppName, &d.OppSteamID, &d.OppElo, &d.OppRounds,
			&vac, &vacCount, &game, &day); err != nil {
			return nil, fmt.Errorf("failed to scan disconnect: %w", err)
		}
		d.OppBans = banSummary(vac, vacCount, game, day)
		out = append(out, d)
	}
	return out, rows.Err()
}

// MatchHistory returns one page of the player's matches joined with the
// opponent's row, oldest first, and the total row count.
func (r *FeedRepository) MatchHistory(ctx context.Context, steamID string, f season.DateFilter, limit, offset int) ([]domain.MatchHistoryEntry, int, error) {
	from := `
		FROM pat_ranked_feed me
		JOIN pat_ranked_feed opp ON opp.match_id = me.match_id AND opp.steam_id != me.steam_id
		WHERE me.steam_id = ?`
	where, args := appendDateFilter(from, []any{steamID}, "me.date", f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count match history: %w", err)
	}

	query := `
		SELECT me.match_id, me.date, me.time_utc, me.side, me.rounds_won, me.rounds_total,
		       me.kills, me.deaths, me.elo, me.elo_change, me.damage,
		       opp.player_name, opp.steam_id, opp.elo, opp.kills, opp.deaths, opp.rounds_won` +
		where + " ORDER BY me.date ASC, me.time_utc ASC, me.id ASC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	entries := []domain.MatchHistoryEntry{}
	for rows.Next() {
		var (
			e      domain.MatchHistoryEntry
			tod    sql.NullString
			damage sql.NullInt64
		)
		if err := rows.Scan(&e.MatchID, &e.Date, &tod, &e.Side, &e.RoundsWon, &e.RoundsTotal,
			&e.Kills, &e.Deaths, &e.Elo, &e.EloChange, &damage,
			&e.OppName, &e.OppSteamID, &e.OppElo, &e.OppKills, &e.OppDeaths, &e.OppRounds); err != nil {
			return nil, 0, fmt.Errorf("failed to scan match history entry: %w", err)
		}
		e.TimeUTC = nullString(tod)
		e.Damage = nullInt(damage)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *FeedRepository) RecentMatches(ctx context.Context, limit int) ([]domain.RecentMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.match_id, w.date, w.time_utc, w.match_type,
		       w.player_name, w.steam_id, w.elo, w.elo_change, w.kills, w.deaths, w.damage, w.rounds_won,
		       l.player_name, l.steam_id, l.elo, l.elo_change, l.kills, l.deaths, l.damage, l.rounds_won
		FROM pat_ranked_feed w
		JOIN pat_ranked_feed l ON l.match_id = w.match_id AND l.steam_id != w.steam_id
		WHERE w.side = 'winner' AND l.side = 'loser'
		ORDER BY w.date DESC, w.time_utc DESC, w.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches: %w", err)
	}
	defer rows.Close()

	matches := []domain.RecentMatch{}
	for rows.Next() {
		var (
			m                domain.RecentMatch
			tod, typ         sql.NullString
			wDamage, lDamage sql.NullInt64
		)
		if err := rows.Scan(&m.MatchID, &m.Date, &tod, &typ,
			&m.WinnerName, &m.WinnerID, &m.WinnerElo, &m.WinnerEloChange, &m.WinnerKills, &m.WinnerDeaths, &wDamage, &m.WinnerRounds,
			&m.LoserName, &m.LoserID, &m.LoserElo, &m.LoserEloChange, &m.LoserKills, &m.LoserDeaths, &lDamage, &m.LoserRounds); err != nil {
			return nil, fmt.Errorf("failed to scan recent match: %w", err)
		}
		m.TimeUTC = nullString(tod)
		m.MatchType = nullString(typ)
		m.WinnerDamage = nullInt(wDamage)
		m.LoserDamage = nullInt(lDamage)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// DateRange returns the first and last date the player appears on, or
// ErrNotFound.
func (r *FeedRepository) DateRange(ctx context.Context, steamID string) (string, string, error) {
	var minDate, maxDate sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MIN(date), MAX(date) FROM pat_ranked_feed WHERE steam_id = ?`, steamID,
	).Scan(&minDate, &maxDate)
	if err != nil {
		return "", "", fmt.Errorf("failed to query date range: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return "", "", ErrNotFound
	}
	return minDate.String, maxDate.String, nil
}

func (r *FeedRepository) GlobalStats(ctx context.Context) (domain.GlobalStats, error) {
	var (
		s                domain.GlobalStats
		minDate, maxDate sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT steam_id), COUNT(DISTINCT match_id), MIN(date), MAX(date)
		FROM pat_ranked_feed`,
	).Scan(&s.TotalPlayers, &s.TotalMatches, &minDate, &maxDate)
	if err != nil {
		return domain.GlobalStats{}, fmt.Errorf("failed to query global stats: %w", err)
	}
	s.MinDate = nullString(minDate)
	s.MaxDate = nullString(maxDate)
	return s, nil
}

// SearchByID finds the exact steam id in the feed.
func (r *FeedRepository) SearchByID(ctx context.Context, steamID string, limit int) ([]domain.SearchResult, error) {
	return r.search(ctx, `
		SELECT f.steam_id, MAX(f.player_name), COUNT(DISTINCT f.match_id) AS matches, MAX(p.avatar_url)
		FROM pat_ranked_feed f
		LEFT JOIN player_profiles p ON p.steam_id = f.steam_id
		WHERE f.steam_id = ?
		GROUP BY f.steam_id
		LIMIT ?`, steamID, limit)
}

// SearchByName matches feed player names, most active first.
func (r *FeedRepository) SearchByName(ctx context.Context, q string, limit int) ([]domain.SearchResult, error) {
	return r.search(ctx, `
		SELECT f.steam_id, MAX(f.player_name), COUNT(DISTINCT f.match_id) AS matches, MAX(p.avatar_url)
		FROM pat_ranked_feed f
		LEFT JOIN player_profiles p ON p.steam_id = f.steam_id
		WHERE f.player_name LIKE ?
		GROUP BY f.steam_id
		ORDER BY matches DESC, f.steam_id ASC
		LIMIT ?`, "%"+q+"%", limit)
}

func (r *FeedRepository) search(ctx context.Context, query string, args ...any) ([]domain.SearchResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search feed: %w", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var (
			s      domain.SearchResult
			avatar sql.NullString
		)
		if err := rows.Scan(&s.SteamID, &s.PlayerName, &s.Matches, &avatar); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		s.AvatarURL = nullString(avatar)
		results = append(results, s)
	}
	return results, rows.Err()
}

// MatchCounts returns the distinct match count per steam id; ids without
// rows are absent from the map.
func (r *FeedRepository) MatchCounts(ctx context.Context, steamIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(steamIDs))
	if len(steamIDs) == 0 {
		return counts, nil
	}
	query := `
		SELECT steam_id, COUNT(DISTINCT match_id)
		FROM pat_ranked_feed
		WHERE steam_id IN (` + placeholders(len(steamIDs)) + `)
		GROUP BY steam_id`

	rows, err := r.db.QueryContext(ctx, query, stringArgs(steamIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan match count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// SteamIDsNeedingSync lists feed players whose profile is missing or was
// last refreshed before staleBefore. Ids Steam did not return are held back
// the same way. Players never attempted come first, then the longest untouched.
func (r *FeedRepository) SteamIDsNeedingSync(ctx context.Context, staleBefore time.Time, limit int) ([]string, error) {
	stale := staleBefore.UTC()
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.steam_id
		FROM (SELECT DISTINCT steam_id FROM pat_ranked_feed) f
		LEFT JOIN player_profiles p ON p.steam_id = f.steam_id
		LEFT JOIN profile_sync_misses m ON m.steam_id = f.steam_id
		WHERE COALESCE(p.updated_at, '') < ? AND COALESCE(m.last_attempt_at, '') < ?
		ORDER BY MAX(COALESCE(p.updated_at, ''), COALESCE(m.last_attempt_at, '')), f.steam_id
		LIMIT ?`, stale, stale, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale steam ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan steam id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
