// internal/httpserver/server.go
//
// HTTP server wiring for the guessing game backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts, JSON, CORS, request log).
//   - Public endpoints: "/", "/health", "/api/mensaje".
//   - Game endpoints: GET|POST /api/start, POST /api/guess, GET /api/state.
//   - Ledger endpoints: mounted from routes_history.go.
//
// Notes:
//   - Every game error is recovered here and mapped to a {code, message} JSON body;
//     none of them is fatal to the process.
//   - Ledger writes are best effort: failures are logged and never change the response.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/internal/game"
	"github.com/beltranomeara/guessgame/internal/store"
)

// Options tunes the router.
type Options struct {
	ClientOrigin   string        // CORS origin; defaults to http://localhost:5173
	HandlerTimeout time.Duration // per-request bound; defaults to 15s
}

// Server bundles router, game holder and round ledger.
type Server struct {
	r      *chi.Mux
	game   *game.Holder
	ledger store.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(h *game.Holder, ledger store.Store, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 15 * time.Second
	}
	s := &Server{r: chi.NewRouter(), game: h, ledger: ledger}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                      // one zerolog line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.HandlerTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // single-origin CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"guessgame","endpoints":["/health","/api/start","POST /api/guess","/api/state","/api/history","/api/stats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/api/mensaje", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"texto": "Backend connected. Ready to play."})
	})

	// --- game ---
	s.r.Get("/api/start", s.handleStart)
	s.r.Post("/api/start", s.handleStart)
	s.r.Post("/api/guess", s.handleGuess)
	s.r.Get("/api/state", s.handleState)

	// --- ledger ---
	s.mountHistory(s.r)

	// JSON 404/405 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "not_found", "path": r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin and answers preflight requests.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("reqId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------ helpers ------------------------------------

// errorRes is the error envelope; verdict/gameActive let the frontend render guess errors uniformly.
type errorRes struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Verdict    game.Verdict `json:"verdict,omitempty"`
	GameActive *bool        `json:"gameActive,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, errorRes{Code: errCode, Message: msg})
}

// ------------------------------ GAME ---------------------------------------

// startReq/Res payloads for /api/start.
type startReq struct {
	Mode string `json:"mode"` // "numeric" | "pokemon" | "" (last active)
}
type startRes struct {
	Message    string    `json:"message"`
	Clue       game.Clue `json:"clue"`
	GameActive bool      `json:"gameActive"`
	RoundID    string    `json:"roundId"`
	Mode       game.Mode `json:"mode"`
}

// handleStart begins a new round. Mode comes from ?mode= or a JSON body.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
			return
		}
	}
	if q := r.URL.Query().Get("mode"); q != "" {
		req.Mode = q
	}

	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", "unknown mode "+req.Mode+" (want numeric|pokemon)")
		return
	}

	snap, err := s.game.Start(r.Context(), mode)
	switch {
	case errors.Is(err, game.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "unknown_mode", err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("mode", string(mode)).Msg("start game")
		writeError(w, http.StatusBadGateway, "start_failed", "Could not start the game.")
		return
	}

	s.record(r, snap.RoundID)

	writeJSON(w, http.StatusOK, startRes{
		Message:    startMessage(snap.Mode),
		Clue:       *snap.Clue,
		GameActive: true,
		RoundID:    snap.RoundID,
		Mode:       snap.Mode,
	})
}

func startMessage(m game.Mode) string {
	if m == game.ModeNumeric {
		return "New game started. Guess a number between 1 and 100."
	}
	return "New game started. Guess the Pokémon from the clues."
}

// guessReq is the payload for POST /api/guess.
// Value may be a JSON string or number; nombrePokemon is accepted for older clients.
type guessReq struct {
	Value         json.RawMessage `json:"value"`
	NombrePokemon string          `json:"nombrePokemon"`
}

// raw returns the guess as text regardless of its JSON type.
func (g guessReq) raw() string {
	if len(g.Value) > 0 && string(g.Value) != "null" {
		var s string
		if err := json.Unmarshal(g.Value, &s); err == nil {
			return s
		}
		return string(g.Value)
	}
	return g.NombrePokemon
}

type guessRes struct {
	Message    string       `json:"message"`
	Verdict    game.Verdict `json:"verdict"`
	Correct    bool         `json:"correct"`
	Revealed   any          `json:"revealed,omitempty"`
	Status     game.Status  `json:"status"`
	Guesses    int          `json:"guesses"`
	RoundID    string       `json:"roundId,omitempty"`
	GameActive bool         `json:"gameActive"`
}

// handleGuess evaluates a guess against the current round.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	res, err := s.game.Guess(req.raw())
	if err != nil {
		code, status := guessErrorCode(err)
		active := res.Status == game.StatusActive
		writeJSON(w, status, errorRes{Code: code, Message: res.Message, Verdict: res.Verdict, GameActive: &active})
		return
	}

	s.record(r, res.RoundID)

	writeJSON(w, http.StatusOK, guessRes{
		Message:    res.Message,
		Verdict:    res.Verdict,
		Correct:    res.Correct(),
		Revealed:   res.Revealed,
		Status:     res.Status,
		Guesses:    res.Guesses,
		RoundID:    res.RoundID,
		GameActive: res.Status == game.StatusActive,
	})
}

// guessErrorCode maps engine errors to an error code and HTTP status.
func guessErrorCode(err error) (string, int) {
	switch {
	case errors.Is(err, game.ErrNoActiveSession):
		return "no_active_game", http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidInput):
		return "invalid_input", http.StatusBadRequest
	case errors.Is(err, game.ErrRoundOver):
		return "round_over", http.StatusConflict
	}
	return "internal", http.StatusInternalServerError
}

// handleState returns the current round snapshot (no secret while active).
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Snapshot())
}

// record copies the current round into the ledger, unless another caller
// has already replaced it.
func (s *Server) record(r *http.Request, roundID string) {
	if s.ledger == nil {
		return
	}
	cur, ok := s.game.Current()
	if !ok || cur.ID != roundID {
		return
	}
	if err := s.ledger.Save(r.Context(), store.FromRound(cur)); err != nil {
		log.Warn().Err(err).Str("round", roundID).Msg("ledger save")
	}
}
