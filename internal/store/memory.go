// internal/store/memory.go
//
// Round ledger: records every started round and its outcome for history and stats.
// The ledger is write-only from the engine's point of view; nothing read from it is
// ever used to restore the active round.
//
// This file holds the Store interface and the in-memory implementation:
//   - Records keyed by round ID, insertion order kept for Recent().
//   - Concurrency-safe via RWMutex.
//   - Lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/beltranomeara/guessgame/internal/game"
)

var ErrNotFound = errors.New("not found")

// RoundRecord is one ledger row. Answer stays empty until the round is resolved.
type RoundRecord struct {
	ID         string      `json:"id"`
	Mode       game.Mode   `json:"mode"`
	Status     game.Status `json:"status"`
	Guesses    int         `json:"guesses"`
	Answer     string      `json:"answer,omitempty"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

// ModeStats aggregates rounds for one mode.
type ModeStats struct {
	Mode   game.Mode `json:"mode"`
	Played int       `json:"played"`
	Won    int       `json:"won"`
	Lost   int       `json:"lost"`
}

// Store defines the ledger interface.
// Implementations: memory (this file) and SQLite (sqlite.go).
type Store interface {
	// Save inserts or updates a round record.
	Save(ctx context.Context, r RoundRecord) error

	// Get retrieves a round by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (RoundRecord, error)

	// Recent lists the newest rounds first, at most limit (default 20).
	Recent(ctx context.Context, limit int) ([]RoundRecord, error)

	// Stats returns per-mode counters ordered by mode.
	Stats(ctx context.Context) ([]ModeStats, error)
}

// FromRound builds a ledger record from an engine round.
// The answer is only copied once the round is resolved.
func FromRound(r game.Round) RoundRecord {
	rec := RoundRecord{
		ID:        r.ID,
		Mode:      r.Secret.Mode(),
		Status:    r.Status,
		Guesses:   r.Guesses,
		StartedAt: r.StartedAt,
	}
	if r.Status.Resolved() {
		rec.Answer = r.Answer()
		if !r.FinishedAt.IsZero() {
			t := r.FinishedAt
			rec.FinishedAt = &t
		}
	}
	return rec
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex           // guards rounds and order
	rounds map[string]RoundRecord // keyed by RoundRecord.ID
	order  []string               // insertion order
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]RoundRecord)}
}

func (m *memory) Save(ctx context.Context, r RoundRecord) error {
	if r.ID == "" {
		return errors.New("store: empty round id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.rounds[r.ID] = r
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (RoundRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[id]; ok {
		return r, nil
	}
	return RoundRecord{}, ErrNotFound
}

func (m *memory) Recent(ctx context.Context, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RoundRecord, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.rounds[m.order[i]])
	}
	return out, nil
}

func (m *memory) Stats(ctx context.Context) ([]ModeStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMode := map[game.Mode]*ModeStats{}
	for _, r := range m.rounds {
		s, ok := byMode[r.Mode]
		if !ok {
			s = &ModeStats{Mode: r.Mode}
			byMode[r.Mode] = s
		}
		s.Played++
		switch r.Status {
		case game.StatusWon:
			s.Won++
		case game.StatusLost:
			s.Lost++
		}
	}

	out := make([]ModeStats, 0, len(byMode))
	for _, s := range byMode {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out, nil
}
