package server

import (
	"errors"
	"net/http"

	"pat-tracker/internal/service"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps a service error onto the response: a missing player is a 404,
// anything else is logged with the request id and surfaced as a 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrPlayerNotFound) {
		writeError(w, http.StatusNotFound, "Player not found")
		return
	}
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
