package main

import (
	"context"
	"database/sql"

	"pat-tracker/internal/api"
	"pat-tracker/internal/constants"
	fxmodules "pat-tracker/internal/fx"
	"pat-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// profilesync refreshes stale Steam profiles and bans once and exits. It is
// meant to be run from cron next to the feed import.
func main() {
	fx.New(
		fxmodules.CoreModule,
		fx.Invoke(runSync),
	).Run()
}

func runSync(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	steam *api.SteamClient,
	sync *service.ProfileSyncService,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				defer func() {
					if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
						logger.Error().Err(err).Msg("shutdown failed")
					}
				}()

				if !steam.Configured() {
					logger.Error().Msg("STEAM_API_KEY is not set, nothing to do")
					code = 1
					return
				}

				ctx, cancel := context.WithTimeout(context.Background(), constants.ProfileSyncTimeout)
				defer cancel()

				report, err := sync.Run(ctx)
				if err != nil {
					logger.Error().Err(err).Str("run_id", report.RunID).Msg("profile sync aborted")
					code = 1
					return
				}
				if report.Batches > 0 && report.Failed == report.Batches {
					code = 1
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}
