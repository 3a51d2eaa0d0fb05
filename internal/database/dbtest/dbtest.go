// Package dbtest opens throwaway migrated databases and seeds them for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"pat-tracker/internal/database"

	"github.com/rs/zerolog"
)

func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "pat.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Side is one participant of a seeded match.
type Side struct {
	SteamID   string
	Name      string
	Elo       int
	EloChange int
	Kills     int
	Deaths    int
	Damage    *int
	Rounds    int
}

type Match struct {
	ID          string
	Date        string
	Time        string
	Type        string
	RoundsTotal int
	Winner      Side
	Loser       Side
}

// InsertMatch writes both rows of a match.
func InsertMatch(t *testing.T, db *sql.DB, m Match) {
	t.Helper()
	if m.RoundsTotal == 0 {
		m.RoundsTotal = 7
	}
	for _, row := range []struct {
		side string
		s    Side
	}{{"winner", m.Winner}, {"loser", m.Loser}} {
		var tod, typ any
		if m.Time != "" {
			tod = m.Time
		}
		if m.Type != "" {
			typ = m.Type
		}
		_, err := db.Exec(`
			INSERT INTO pat_ranked_feed
				(match_id, date, time_utc, match_type, player_name, steam_id, side,
				 elo, elo_change, kills, deaths, damage, rounds_won, rounds_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Date, tod, typ, row.s.Name, row.s.SteamID, row.side,
			row.s.Elo, row.s.EloChange, row.s.Kills, row.s.Deaths, row.s.Damage,
			row.s.Rounds, m.RoundsTotal,
		)
		if err != nil {
			t.Fatalf("insert match %s: %v", m.ID, err)
		}
	}
}

func InsertProfile(t *testing.T, db *sql.DB, steamID, persona string, avatar *string, updatedAt time.Time) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO player_profiles (steam_id, persona_name, avatar_url, updated_at)
		VALUES (?, ?, ?, ?)`, steamID, persona, avatar, updatedAt.UTC())
	if err != nil {
		t.Fatalf("insert profile %s: %v", steamID, err)
	}
}

func InsertBans(t *testing.T, db *sql.DB, steamID string, vac bool, vacCount, gameBans, days int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO player_bans (steam_id, vac_banned, number_of_vac_bans, number_of_game_bans, days_since_last_ban)
		VALUES (?, ?, ?, ?, ?)`, steamID, vac, vacCount, gameBans, days)
	if err != nil {
		t.Fatalf("insert bans %s: %v", steamID, err)
	}
}

func Int(v int) *int { return &v }

func Str(v string) *string { return &v }
