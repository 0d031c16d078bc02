// internal/game/types.go
//
// Core type definitions for the guessing game.
// Defines:
//   - Mode: which game is being played (numeric / pokemon).
//   - Secret: tagged variant over the two kinds of hidden answer.
//   - Verdict, Status: outcome of a guess and lifecycle of a round.
//   - Clue, Result, Snapshot: read-only projections handed to callers.

package game

import (
	"errors"
	"time"
)

// Mode selects the game variant.
type Mode string

const (
	ModeNumeric Mode = "numeric"
	ModePokemon Mode = "pokemon"
)

// ParseMode validates a mode tag. An empty string returns ("", nil) so callers
// can fall back to the last active mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return "", nil
	case ModeNumeric, ModePokemon:
		return Mode(s), nil
	}
	return "", ErrUnknownMode
}

// Policy decides what an incorrect Pokémon guess does to the round.
type Policy string

const (
	// PolicySingle reveals the answer on the first wrong guess and ends the round.
	PolicySingle Policy = "single"
	// PolicyMulti keeps the answer hidden and allows retries until correct.
	PolicyMulti Policy = "multi"
)

// Verdict is the classified outcome of comparing a guess to the secret.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictTooHigh   Verdict = "too_high"
	VerdictTooLow    Verdict = "too_low"
	VerdictInvalid   Verdict = "invalid"
	VerdictIncorrect Verdict = "incorrect"
)

// Status is the lifecycle state of the current round.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Resolved reports whether the round can no longer accept guesses.
func (s Status) Resolved() bool { return s == StatusWon || s == StatusLost }

const (
	NumericMax   = 100 // secret numbers are drawn from [1, NumericMax]
	PokemonMaxID = 898 // Pokémon ids are drawn from [1, PokemonMaxID]
	SampleMoves  = 4   // number of moves exposed as clues
)

var (
	ErrNoActiveSession = errors.New("no active game")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRoundOver       = errors.New("round already finished")
	ErrUnknownMode     = errors.New("unknown mode")
	ErrUpstream        = errors.New("upstream fetch failed")
)

// Pokemon is the full secret for pokemon mode.
type Pokemon struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Height   float64  `json:"height"` // meters
	Weight   float64  `json:"weight"` // kilograms
	Color    string   `json:"color"`
	Moves    []string `json:"moves"`
	ImageURL string   `json:"imageUrl"`
}

// Secret is the hidden answer of a round. Only NumberSecret and PokemonSecret implement it.
type Secret interface {
	Mode() Mode
	isSecret()
}

// NumberSecret is the answer of a numeric round.
type NumberSecret struct{ N int }

// PokemonSecret is the answer of a pokemon round.
type PokemonSecret struct{ Pokemon Pokemon }

func (NumberSecret) Mode() Mode  { return ModeNumeric }
func (PokemonSecret) Mode() Mode { return ModePokemon }
func (NumberSecret) isSecret()   {}
func (PokemonSecret) isSecret()  {}

// Clue is the non-identifying projection of a secret.
// Numeric rounds only carry the range bound.
type Clue struct {
	Mode   Mode     `json:"mode"`
	Min    int      `json:"min,omitempty"`
	Max    int      `json:"max,omitempty"`
	ID     int      `json:"id,omitempty"`
	Types  []string `json:"types,omitempty"`
	Color  string   `json:"color,omitempty"`
	Height float64  `json:"height,omitempty"`
	Weight float64  `json:"weight,omitempty"`
	Moves  []string `json:"moves,omitempty"`
}

// Result is what a guess produces. Revealed is nil unless the verdict discloses the answer;
// it then holds an int (numeric) or a Pokemon.
type Result struct {
	RoundID  string  `json:"roundId,omitempty"`
	Verdict  Verdict `json:"verdict"`
	Message  string  `json:"message"`
	Revealed any     `json:"revealed,omitempty"`
	Status   Status  `json:"status"`
	Guesses  int     `json:"guesses"`
}

// Correct is a convenience for the transport layer.
func (r Result) Correct() bool { return r.Verdict == VerdictCorrect }

// Round holds the state of a single round. Replaced wholesale by Holder.Start.
type Round struct {
	ID         string
	Secret     Secret
	Status     Status
	Guesses    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Snapshot is a read-only view of the current round that never exposes an unresolved secret.
type Snapshot struct {
	RoundID   string    `json:"roundId,omitempty"`
	Mode      Mode      `json:"mode,omitempty"`
	Status    Status    `json:"status"`
	Guesses   int       `json:"guesses"`
	Clue      *Clue     `json:"clue,omitempty"`
	Revealed  any       `json:"revealed,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}
