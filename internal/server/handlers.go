package server

import (
	"database/sql"
	"net/http"

	"pat-tracker/internal/config"
	"pat-tracker/internal/constants"
	"pat-tracker/internal/database"
	"pat-tracker/internal/season"
	"pat-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	db           *sql.DB
	seasons      *season.Table
	players      *service.PlayerService
	sessions     *service.SessionService
	opponents    *service.OpponentService
	matches      *service.MatchService
	leaderboards *service.LeaderboardService
	search       *service.SearchService
	stats        *service.StatsService
	logger       zerolog.Logger
}

func NewHandler(
	db *sql.DB,
	cfg *config.Config,
	players *service.PlayerService,
	sessions *service.SessionService,
	opponents *service.OpponentService,
	matches *service.MatchService,
	leaderboards *service.LeaderboardService,
	search *service.SearchService,
	stats *service.StatsService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		db:           db,
		seasons:      cfg.Seasons,
		players:      players,
		sessions:     sessions,
		opponents:    opponents,
		matches:      matches,
		leaderboards: leaderboards,
		search:       search,
		stats:        stats,
		logger:       logger,
	}
}

// list responses are always arrays on the wire
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func steamID(r *http.Request) string {
	return chi.URLParam(r, "steamId")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := database.Ping(r.Context(), h.db); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Global(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Seasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(h.stats.Seasons()))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(results))
}

func (h *Handler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", "min=1", constants.RecentMatchesDefault)
	matches, err := h.matches.Recent(r.Context(), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(matches))
}

func (h *Handler) Leaderboards(w http.ResponseWriter, r *http.Request) {
	q, err := parseLeaderboardQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid leaderboard type")
		return
	}
	rows, err := h.leaderboards.Global(r.Context(), q.Type, q.Page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rows))
}

func (h *Handler) PlayerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.players.Summary(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) PlayerSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.Sessions(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sessions))
}

func (h *Handler) PlayerSessionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sessions.Summary(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) PlayerEloHistory(w http.ResponseWriter, r *http.Request) {
	points, err := h.players.EloHistory(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(points))
}

func (h *Handler) PlayerDaily(w http.ResponseWriter, r *http.Request) {
	days, err := h.players.Daily(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(days))
}

func (h *Handler) PlayerDamageDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.players.DamageDistribution(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(buckets))
}

func (h *Handler) PlayerTimeOfDay(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.players.TimeOfDay(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(blocks))
}

func (h *Handler) PlayerOpponents(w http.ResponseWriter, r *http.Request) {
	opponents, err := h.opponents.Opponents(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(opponents))
}

func (h *Handler) PlayerOpponentInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.opponents.Insights(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *Handler) PlayerDisconnects(w http.ResponseWriter, r *http.Request) {
	report, err := h.opponents.Disconnects(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) PlayerMatches(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", "min=1", 1)
	history, err := h.matches.History(r.Context(), steamID(r), h.dateFilter(r), page)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) PlayerRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.leaderboards.Rankings(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

func (h *Handler) PlayerLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboards.PlayerContext(r.Context(), steamID(r), h.dateFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) PlayerSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.players.Seasons(r.Context(), steamID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(seasons))
}
