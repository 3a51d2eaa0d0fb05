package fx

import (
	"pat-tracker/internal/api"
	"pat-tracker/internal/cache"
	"pat-tracker/internal/config"
	"pat-tracker/internal/database"
	"pat-tracker/internal/logger"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/server"
	"pat-tracker/internal/service"

	"go.uber.org/fx"
)

// CoreModule is everything below the HTTP layer; both binaries share it.
var CoreModule = fx.Options(
	logger.Module,
	config.Module,
	database.Module,
	cache.Module,
	// repos
	fx.Provide(repository.NewFeedRepository),
	fx.Provide(repository.NewProfileRepository),
	fx.Provide(repository.NewBansRepository),
	fx.Provide(repository.NewLeaderboardRepository),
	// api client
	fx.Provide(fx.Annotate(
		api.NewSteamClient,
		fx.As(fx.Self()),
		fx.As(new(service.SteamAPI)),
	)),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSessionService),
	fx.Provide(service.NewOpponentService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewSearchService),
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewProfileSyncService),
)

var Module = fx.Options(
	CoreModule,
	// server
	fx.Provide(server.NewHandler),
	fx.Provide(server.NewRouter),
)
