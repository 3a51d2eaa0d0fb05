package server

import (
	"net/http"
	"strconv"
	"sync"

	"pat-tracker/internal/season"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// dateRange is only applied when both bounds are present and well formed.
type dateRange struct {
	From string `validate:"required,datetime=2006-01-02"`
	To   string `validate:"required,datetime=2006-01-02"`
}

type leaderboardQuery struct {
	Type string `validate:"oneof=winrate elo active kdr"`
	Page int    `validate:"min=1"`
}

// dateFilter reads season/from/to. Each part is checked on its own: a
// malformed or half-given range is dropped and the season, if any, still
// applies. Beyond a printable-ASCII check, season ids are left to the table.
func (h *Handler) dateFilter(r *http.Request) season.DateFilter {
	query := r.URL.Query()
	log := zerolog.Ctx(r.Context())

	id := query.Get("season")
	if err := getValidator().Var(id, "omitempty,printascii,max=64"); err != nil {
		log.Debug().Err(err).Msg("ignoring malformed season")
		id = ""
	}

	rng := dateRange{From: query.Get("from"), To: query.Get("to")}
	if rng.From != "" || rng.To != "" {
		if err := getValidator().Struct(rng); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed date range")
			rng = dateRange{}
		}
	}
	return h.seasons.Resolve(id, rng.From, rng.To)
}

// intParam returns the named query parameter when it parses and satisfies
// rule, otherwise fallback.
func intParam(r *http.Request, name, rule string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || getValidator().Var(n, rule) != nil {
		return fallback
	}
	return n
}

func parseLeaderboardQuery(r *http.Request) (leaderboardQuery, error) {
	q := leaderboardQuery{
		Type: r.URL.Query().Get("type"),
		Page: intParam(r, "page", "min=1", 1),
	}
	if q.Type == "" {
		q.Type = "winrate"
	}
	return q, getValidator().Struct(q)
}

// steamIDParam rejects player routes whose id is not a plain number.
func steamIDParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "steamId")
		if err := getValidator().Var(id, "required,number,max=20"); err != nil {
			writeError(w, http.StatusBadRequest, "invalid steam id")
			return
		}
		next.ServeHTTP(w, r)
	})
}
