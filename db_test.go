package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beltranomeara/guessgame/internal/config"
	"github.com/beltranomeara/guessgame/internal/game"
	"github.com/beltranomeara/guessgame/internal/store"
)

func TestOpenLedger_MemoryWhenNoPath(t *testing.T) {
	var cfg config.Config
	ledger, closeFn, err := openLedger(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	_, ok := ledger.(*store.SQLStore)
	assert.False(t, ok)
}

func TestOpenLedger_SQLiteMigrates(t *testing.T) {
	var cfg config.Config
	cfg.DB.Path = filepath.Join(t.TempDir(), "data", "game.db")
	cfg.DB.RunMigrations = true

	ctx := context.Background()
	ledger, closeFn, err := openLedger(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()

	rec := store.RoundRecord{
		ID:        "r1",
		Mode:      game.ModeNumeric,
		Status:    game.StatusActive,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, ledger.Save(ctx, rec))

	got, err := ledger.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusActive, got.Status)
}
