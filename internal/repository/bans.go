package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pat-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type BansRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBansRepository(sqlDB *sql.DB, logger zerolog.Logger) *BansRepository {
	return &BansRepository{db: sqlDB, logger: logger}
}

const bansColumns = `steam_id, vac_banned, number_of_vac_bans, number_of_game_bans,
	days_since_last_ban, community_banned, economy_ban, updated_at`

func scanBans(scan func(dest ...any) error) (domain.PlayerBans, error) {
	var b domain.PlayerBans
	err := scan(&b.SteamID, &b.VACBanned, &b.NumberOfVACBans, &b.NumberOfGameBans,
		&b.DaysSinceLastBan, &b.CommunityBanned, &b.EconomyBan, &b.UpdatedAt)
	return b, err
}

func (r *BansRepository) Get(ctx context.Context, steamID string) (*domain.PlayerBans, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bansColumns+` FROM player_bans WHERE steam_id = ?`, steamID)
	b, err := scanBans(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bans: %w", err)
	}
	return &b, nil
}

// ForPlayers returns the leaderboard ban view keyed by steam id. Players
// without a bans row are absent.
func (r *BansRepository) ForPlayers(ctx context.Context, steamIDs []string) (map[string]domain.LeaderboardBans, error) {
	out := make(map[string]domain.LeaderboardBans, len(steamIDs))
	if len(steamIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT steam_id, vac_banned, number_of_game_bans, days_since_last_ban
		FROM player_bans
		WHERE steam_id IN (`+placeholders(len(steamIDs))+`)`, stringArgs(steamIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			b  domain.LeaderboardBans
		)
		if err := rows.Scan(&id, &b.VACBanned, &b.NumberOfGameBans, &b.DaysSinceLastBan); err != nil {
			return nil, fmt.Errorf("failed to scan bans: %w", err)
		}
		out[id] = b
	}
	return out, rows.Err()
}

func upsertBans(ctx context.Context, tx *sql.Tx, b domain.PlayerBans) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_bans
			(steam_id, vac_banned, number_of_vac_bans, number_of_game_bans,
			 days_since_last_ban, community_banned, economy_ban, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (steam_id) DO UPDATE SET
			vac_banned = excluded.vac_banned,
			number_of_vac_bans = excluded.number_of_vac_bans,
			number_of_game_bans = excluded.number_of_game_bans,
			days_since_last_ban = excluded.days_since_last_ban,
			community_banned = excluded.community_banned,
			economy_ban = excluded.economy_ban,
			updated_at = excluded.updated_at`,
		b.SteamID, b.VACBanned, b.NumberOfVACBans, b.NumberOfGameBans,
		b.DaysSinceLastBan, b.CommunityBanned, b.EconomyBan, b.UpdatedAt.UTC(),
	)
	return err
}
