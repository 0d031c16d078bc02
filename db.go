// db.go
//
// Round ledger wiring.
//   - DB_PATH empty → in-memory ledger (history is lost on restart).
//   - DB_PATH set   → SQLite file, migrated from the embedded assets/sql/*.sql.
//
// The ledger only feeds /api/history and /api/stats; the active round always starts
// empty after a restart.

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/assets"
	"github.com/beltranomeara/guessgame/internal/config"
	"github.com/beltranomeara/guessgame/internal/store"
)

// openLedger returns the configured Store and a close func.
func openLedger(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.DB.Path == "" {
		log.Info().Msg("ledger: in-memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := store.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger %s: %w", cfg.DB.Path, err)
	}
	if cfg.DB.RunMigrations {
		if err := store.Migrate(ctx, db, assets.Migrations()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate ledger: %w", err)
		}
	}
	log.Info().Str("path", cfg.DB.Path).Msg("ledger: sqlite")

	return store.NewSQLStore(db), func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("close ledger")
		}
	}, nil
}
