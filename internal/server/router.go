package server

import (
	"net/http"

	"pat-tracker/internal/config"
	"pat-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func NewRouter(h *Handler, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)
	r.Use(middleware.Metrics)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Get("/stats", h.Stats)
		r.Get("/seasons", h.Seasons)
		r.Get("/search", h.Search)
		r.Get("/recent-matches", h.RecentMatches)
		r.Get("/leaderboards", h.Leaderboards)

		r.Route("/player/{steamId}", func(r chi.Router) {
			r.Use(steamIDParam)

			r.Get("/", h.PlayerSummary)
			r.Get("/sessions", h.PlayerSessions)
			r.Get("/sessions/summary", h.PlayerSessionSummary)
			r.Get("/elo-history", h.PlayerEloHistory)
			r.Get("/daily", h.PlayerDaily)
			r.Get("/damage-dist", h.PlayerDamageDistribution)
			r.Get("/time-of-day", h.PlayerTimeOfDay)
			r.Get("/opponents", h.PlayerOpponents)
			r.Get("/opponents/insights", h.PlayerOpponentInsights)
			r.Get("/disconnects", h.PlayerDisconnects)
			r.Get("/matches", h.PlayerMatches)
			r.Get("/rankings", h.PlayerRankings)
			r.Get("/leaderboard", h.PlayerLeaderboard)
			r.Get("/seasons", h.PlayerSeasons)
		})
	})

	return r
}
