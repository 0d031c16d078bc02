package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beltranomeara/guessgame/assets"
	"github.com/beltranomeara/guessgame/internal/game"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db, assets.Migrations()))
	return NewSQLStore(db)
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLStore(t)) })
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestStore_SaveGetUpdate(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec := RoundRecord{ID: "r1", Mode: game.ModeNumeric, Status: game.StatusActive, StartedAt: t0}
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, game.StatusActive, got.Status)
		assert.Empty(t, got.Answer)
		assert.Nil(t, got.FinishedAt)
		assert.True(t, t0.Equal(got.StartedAt))

		fin := t0.Add(time.Minute)
		rec.Status, rec.Guesses, rec.Answer, rec.FinishedAt = game.StatusWon, 3, "42", &fin
		require.NoError(t, s.Save(ctx, rec))

		got, err = s.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, game.StatusWon, got.Status)
		assert.Equal(t, 3, got.Guesses)
		assert.Equal(t, "42", got.Answer)
		require.NotNil(t, got.FinishedAt)
		assert.True(t, fin.Equal(*got.FinishedAt))

		recent, err := s.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1, "update must not duplicate the row")
	})
}

func TestStore_GetMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_RejectsEmptyID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		require.Error(t, s.Save(context.Background(), RoundRecord{Mode: game.ModeNumeric}))
	})
}

func TestStore_RecentNewestFirst(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i, id := range []string{"a", "b", "c"} {
			require.NoError(t, s.Save(ctx, RoundRecord{
				ID: id, Mode: game.ModeNumeric, Status: game.StatusActive,
				StartedAt: t0.Add(time.Duration(i) * time.Second),
			}))
		}
		got, err := s.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	})
}

func TestStore_Stats(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rows := []RoundRecord{
			{ID: "1", Mode: game.ModeNumeric, Status: game.StatusWon},
			{ID: "2", Mode: game.ModeNumeric, Status: game.StatusActive},
			{ID: "3", Mode: game.ModePokemon, Status: game.StatusLost},
			{ID: "4", Mode: game.ModePokemon, Status: game.StatusWon},
			{ID: "5", Mode: game.ModePokemon, Status: game.StatusLost},
		}
		for i, r := range rows {
			r.StartedAt = t0.Add(time.Duration(i) * time.Second)
			require.NoError(t, s.Save(ctx, r))
		}

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, []ModeStats{
			{Mode: game.ModeNumeric, Played: 2, Won: 1, Lost: 0},
			{Mode: game.ModePokemon, Played: 3, Won: 1, Lost: 2},
		}, st)
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newSQLStore(t)
	require.NoError(t, Migrate(context.Background(), s.db, assets.Migrations()))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestFromRound(t *testing.T) {
	fin := t0.Add(time.Minute)
	active := game.Round{ID: "x", Secret: game.NumberSecret{N: 9}, Status: game.StatusActive, Guesses: 1, StartedAt: t0}
	rec := FromRound(active)
	assert.Equal(t, game.ModeNumeric, rec.Mode)
	assert.Empty(t, rec.Answer, "unresolved rounds never record the answer")
	assert.Nil(t, rec.FinishedAt)

	won := active
	won.Status, won.FinishedAt = game.StatusWon, fin
	rec = FromRound(won)
	assert.Equal(t, "9", rec.Answer)
	require.NotNil(t, rec.FinishedAt)
	assert.Equal(t, fin, *rec.FinishedAt)
}
