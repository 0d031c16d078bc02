// internal/httpserver/routes_history.go
//
// Read-only routes over the round ledger:
//   - GET /api/history?limit=N → newest rounds first (default 20, max 100)
//   - GET /api/stats           → per-mode played/won/lost counters
//
// Answers only appear for resolved rounds; the ledger never stores them earlier.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/internal/store"
)

const maxHistory = 100

// mountHistory registers the ledger routes.
func (s *Server) mountHistory(r chi.Router) {
	r.Get("/api/history", s.handleHistory)
	r.Get("/api/stats", s.handleStats)
}

// historyRes is returned by /api/history.
type historyRes struct {
	Rounds []store.RoundRecord `json:"rounds"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeJSON(w, http.StatusOK, historyRes{Rounds: []store.RoundRecord{}})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistory)
	}
	rows, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("ledger recent")
		writeError(w, http.StatusInternalServerError, "server_error", "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, historyRes{Rounds: rows})
}

// statsRes is returned by /api/stats.
type statsRes struct {
	Modes []store.ModeStats `json:"modes"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeJSON(w, http.StatusOK, statsRes{Modes: []store.ModeStats{}})
		return
	}
	st, err := s.ledger.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("ledger stats")
		writeError(w, http.StatusInternalServerError, "server_error", "could not load stats")
		return
	}
	writeJSON(w, http.StatusOK, statsRes{Modes: st})
}
