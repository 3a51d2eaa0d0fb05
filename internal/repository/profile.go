package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type ProfileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{db: sqlDB, logger: logger}
}

const profileColumns = `steam_id, persona_name, avatar_url, profile_url, country_code,
	account_created, COALESCE(sync_id, ''), updated_at`

func scanProfile(scan func(dest ...any) error) (domain.PlayerProfile, error) {
	var (
		p                           domain.PlayerProfile
		avatar, profileURL, country sql.NullString
		created                     sql.NullTime
	)
	if err := scan(&p.SteamID, &p.PersonaName, &avatar, &profileURL, &country,
		&created, &p.SyncID, &p.UpdatedAt); err != nil {
		return domain.PlayerProfile{}, err
	}
	p.AvatarURL = nullString(avatar)
	p.ProfileURL = nullString(profileURL)
	p.CountryCode = nullString(country)
	if created.Valid {
		t := created.Time
		p.AccountCreated = &t
	}
	return p, nil
}

func (r *ProfileRepository) Get(ctx context.Context, steamID string) (*domain.PlayerProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM player_profiles WHERE steam_id = ?`, steamID)
	p, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// SearchPersona matches persona names containing q.
func (r *ProfileRepository) SearchPersona(ctx context.Context, q string, limit int) ([]domain.PlayerProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM player_profiles
		WHERE persona_name LIKE ?
		LIMIT ?`, "%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.PlayerProfile{}
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func upsertProfile(ctx context.Context, tx *sql.Tx, p domain.PlayerProfile) error {
	var created any
	if p.AccountCreated != nil {
		created = p.AccountCreated.UTC()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_profiles
			(steam_id, persona_name, avatar_url, profile_url, country_code, account_created, sync_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (steam_id) DO UPDATE SET
			persona_name = excluded.persona_name,
			avatar_url = excluded.avatar_url,
			profile_url = excluded.profile_url,
			country_code = excluded.country_code,
			account_created = excluded.account_created,
			sync_id = excluded.sync_id,
			updated_at = excluded.updated_at`,
		p.SteamID, p.PersonaName, p.AvatarURL, p.ProfileURL, p.CountryCode, created, p.SyncID, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM profile_sync_misses WHERE steam_id = ?`, p.SteamID)
	return err
}

// UpsertBatch writes profiles and bans in one transaction so a batch is
// either fully synced or not at all.
func (r *ProfileRepository) UpsertBatch(ctx context.Context, profiles []domain.PlayerProfile, bans []domain.PlayerBans) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(profiles); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(profiles))
		for _, p := range profiles[i:end] {
			if err := upsertProfile(ctx, tx, p); err != nil {
				return fmt.Errorf("failed to upsert profile %s: %w", p.SteamID, err)
			}
		}
	}
	for _, b := range bans {
		if err := upsertBans(ctx, tx, b); err != nil {
			return fmt.Errorf("failed to upsert bans %s: %w", b.SteamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile batch: %w", err)
	}

	r.logger.Debug().
		Int("profiles", len(profiles)).
		Int("bans", len(bans)).
		Msg("profile batch upserted")
	return nil
}

// RecordMisses notes ids Steam returned no profile for, so the next runs
// back off from them for the stale window instead of retrying them first.
func (r *ProfileRepository) RecordMisses(ctx context.Context, steamIDs []string, at time.Time) error {
	if len(steamIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range steamIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile_sync_misses (steam_id, attempts, last_attempt_at)
			VALUES (?, 1, ?)
			ON CONFLICT (steam_id) DO UPDATE SET
				attempts = attempts + 1,
				last_attempt_at = excluded.last_attempt_at`,
			id, at.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to record sync miss %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync misses: %w", err)
	}
	r.logger.Debug().Int("misses", len(steamIDs)).Msg("profile sync misses recorded")
	return nil
}
