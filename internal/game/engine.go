// internal/game/engine.go
//
// Core game engine for the single process-wide round.
// Responsibilities:
//   - Start rounds: draw a number locally or fetch a Pokémon through an injected Fetcher.
//   - Validate and evaluate guesses against the tagged secret.
//   - Track state transitions: not_started → active → won/lost.
//
// Notes:
//   - The Holder is the only owner of the round; Start and Guess commit under its mutex,
//     so concurrent callers see last-write-wins rather than a mixture of rounds.
//   - The upstream fetch runs before anything is committed. A failed fetch leaves the
//     previous round untouched.
package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/internal/draw"
)

// Fetcher obtains a random Pokémon from an external data provider.
type Fetcher interface {
	FetchRandom(ctx context.Context) (Pokemon, error)
}

// Drawer returns a uniformly distributed integer in [1, n].
type Drawer interface {
	Draw(n int) int
}

// Options configures a Holder. Zero values fall back to sensible defaults.
type Options struct {
	DefaultMode Mode   // used when Start is called without a mode and nothing was played yet
	Policy      Policy // wrong-guess behavior in pokemon mode
	Drawer      Drawer // secret number source
	Now         func() time.Time
	NewID       func() string
}

// Holder owns the current round.
type Holder struct {
	mu       sync.Mutex
	fetch    Fetcher
	drawer   Drawer
	policy   Policy
	defMode  Mode
	lastMode Mode
	round    *Round
	now      func() time.Time
	newID    func() string
}

// NewHolder constructs a Holder with no active round.
func NewHolder(f Fetcher, opts Options) *Holder {
	h := &Holder{
		fetch:   f,
		drawer:  opts.Drawer,
		policy:  opts.Policy,
		defMode: opts.DefaultMode,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if h.drawer == nil {
		h.drawer = draw.Random{}
	}
	if h.policy == "" {
		h.policy = PolicySingle
	}
	if h.defMode == "" {
		h.defMode = ModePokemon
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newID == nil {
		h.newID = uuid.NewString
	}
	return h
}

// Policy reports the configured pokemon wrong-guess policy.
func (h *Holder) Policy() Policy { return h.policy }

// Mode reports the mode a mode-less Start would use.
func (h *Holder) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modeLocked("")
}

func (h *Holder) modeLocked(m Mode) Mode {
	switch {
	case m != "":
		return m
	case h.lastMode != "":
		return h.lastMode
	}
	return h.defMode
}

// Start begins a new round in mode m (empty → last active mode) and returns its snapshot,
// whose Clue is never identifying. Any previous round is discarded.
func (h *Holder) Start(ctx context.Context, m Mode) (Snapshot, error) {
	h.mu.Lock()
	m = h.modeLocked(m)
	h.mu.Unlock()

	secret, err := h.newSecret(ctx, m)
	if err != nil {
		return Snapshot{}, err
	}
	return h.StartWith(secret), nil
}

// StartWith begins a new round with a known secret.
func (h *Holder) StartWith(s Secret) Snapshot {
	r := &Round{
		ID:        h.newID(),
		Secret:    s,
		Status:    StatusActive,
		StartedAt: h.now().UTC(),
	}

	h.mu.Lock()
	h.round = r
	h.lastMode = s.Mode()
	snap := r.snapshot()
	h.mu.Unlock()

	log.Debug().Str("round", r.ID).Str("mode", string(s.Mode())).Str("secret", answerOf(s)).Msg("new secret")
	return snap
}

// newSecret obtains the secret for mode m without touching the current round.
func (h *Holder) newSecret(ctx context.Context, m Mode) (Secret, error) {
	switch m {
	case ModeNumeric:
		return NumberSecret{N: h.drawer.Draw(NumericMax)}, nil
	case ModePokemon:
		if h.fetch == nil {
			return nil, fmt.Errorf("%w: no pokemon provider configured", ErrUpstream)
		}
		p, err := h.fetch.FetchRandom(ctx)
		if err != nil {
			if errors.Is(err, ErrUpstream) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		p.Name = normalizeName(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("%w: pokemon %d has no name", ErrUpstream, p.ID)
		}
		return PokemonSecret{Pokemon: p}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
}

// Guess evaluates raw against the current round and applies the state transition.
// Invalid inputs return a Result with VerdictInvalid together with one of
// ErrNoActiveSession, ErrRoundOver or ErrInvalidInput, and do not count as guesses.
func (h *Holder) Guess(raw string) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.round
	if r == nil {
		return Result{
			Verdict: VerdictInvalid,
			Message: "No active game. Start a new game first.",
			Status:  StatusNotStarted,
		}, ErrNoActiveSession
	}
	if r.Status.Resolved() {
		return Result{
			Verdict: VerdictInvalid,
			RoundID: r.ID,
			Message: "This round is over. Start a new game.",
			Status:  r.Status,
			Guesses: r.Guesses,
		}, ErrRoundOver
	}

	res, err := evaluate(r.Secret, raw, h.policy)
	res.RoundID = r.ID
	if err != nil {
		res.Status, res.Guesses = r.Status, r.Guesses
		return res, err
	}

	r.Guesses++
	switch {
	case res.Verdict == VerdictCorrect:
		r.Status = StatusWon
	case res.Verdict == VerdictIncorrect && h.policy == PolicySingle:
		r.Status = StatusLost
	}
	if r.Status.Resolved() {
		r.FinishedAt = h.now().UTC()
	}
	res.Status, res.Guesses = r.Status, r.Guesses
	return res, nil
}

// Snapshot returns a read-only view of the current round.
func (h *Holder) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.round == nil {
		return Snapshot{Status: StatusNotStarted}
	}
	return h.round.snapshot()
}

// Current returns a copy of the current round including its secret, or false if none.
// Meant for server-side bookkeeping only.
func (h *Holder) Current() (Round, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.round == nil {
		return Round{}, false
	}
	return *h.round, true
}

func (r *Round) snapshot() Snapshot {
	c := ClueFor(r.Secret)
	s := Snapshot{
		RoundID:   r.ID,
		Mode:      r.Secret.Mode(),
		Status:    r.Status,
		Guesses:   r.Guesses,
		Clue:      &c,
		StartedAt: r.StartedAt,
	}
	if r.Status.Resolved() {
		s.Revealed = disclose(r.Secret)
	}
	return s
}

// evaluate compares raw against s. It has no side effects.
func evaluate(s Secret, raw string, p Policy) (Result, error) {
	switch s := s.(type) {
	case NumberSecret:
		return evaluateNumber(s.N, raw)
	case PokemonSecret:
		return evaluatePokemon(s.Pokemon, raw, p)
	}
	return Result{Verdict: VerdictInvalid, Message: "No active game. Start a new game first."}, ErrNoActiveSession
}

func evaluateNumber(secret int, raw string) (Result, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Result{Verdict: VerdictInvalid, Message: "Enter a valid integer."}, ErrInvalidInput
	}
	switch {
	case n == secret:
		return Result{
			Verdict:  VerdictCorrect,
			Message:  fmt.Sprintf("Correct! The secret number was %d.", secret),
			Revealed: secret,
		}, nil
	case n < secret:
		return Result{Verdict: VerdictTooLow, Message: "Too low: the secret is greater."}, nil
	default:
		return Result{Verdict: VerdictTooHigh, Message: "Too high: the secret is lesser."}, nil
	}
}

func evaluatePokemon(secret Pokemon, raw string, p Policy) (Result, error) {
	guess := normalizeName(raw)
	if guess == "" {
		return Result{Verdict: VerdictInvalid, Message: "Enter a Pokémon name."}, ErrInvalidInput
	}
	if guess == secret.Name {
		return Result{
			Verdict:  VerdictCorrect,
			Message:  fmt.Sprintf("Correct! It's %s.", secret.Name),
			Revealed: secret,
		}, nil
	}
	if p == PolicySingle {
		return Result{
			Verdict:  VerdictIncorrect,
			Message:  fmt.Sprintf("Incorrect. The Pokémon was %s.", secret.Name),
			Revealed: secret,
		}, nil
	}
	return Result{Verdict: VerdictIncorrect, Message: "Incorrect. Try again."}, nil
}

// ClueFor projects a secret onto its non-identifying attributes.
func ClueFor(s Secret) Clue {
	switch s := s.(type) {
	case NumberSecret:
		return Clue{Mode: ModeNumeric, Min: 1, Max: NumericMax}
	case PokemonSecret:
		p := s.Pokemon
		return Clue{
			Mode:   ModePokemon,
			ID:     p.ID,
			Types:  p.Types,
			Color:  p.Color,
			Height: p.Height,
			Weight: p.Weight,
			Moves:  p.Moves,
		}
	}
	return Clue{}
}

// disclose returns the value revealed on terminal verdicts.
func disclose(s Secret) any {
	switch s := s.(type) {
	case NumberSecret:
		return s.N
	case PokemonSecret:
		return s.Pokemon
	}
	return nil
}

// answerOf renders the secret as a plain answer string (number or name).
func answerOf(s Secret) string {
	switch s := s.(type) {
	case NumberSecret:
		return strconv.Itoa(s.N)
	case PokemonSecret:
		return s.Pokemon.Name
	}
	return ""
}

// Answer renders the round's secret as a plain string.
func (r Round) Answer() string { return answerOf(r.Secret) }

// normalizeName lowercases and trims a Pokémon name for comparison.
func normalizeName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
