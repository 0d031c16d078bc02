// internal/store/sqlite.go
//
// SQLite implementation of the round ledger.
// Responsibilities:
//   - Opening a SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from an fs.FS (idempotent, recorded in _migrations).
//   - Store implementation over the rounds table.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/beltranomeara/guessgame/internal/game"
)

// Open opens (and creates if missing) a SQLite database file.
// The parent directory of relative paths like ./data/game.db is created.
func Open(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies every *.sql file in fsys in lexical order, skipping the ones already
// recorded in _migrations. Each file runs in its own transaction.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// tsLayout is fixed-width so lexical order in SQL matches time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore is the SQLite-backed Store.
type SQLStore struct{ db *sql.DB }

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Save(ctx context.Context, r RoundRecord) error {
	if r.ID == "" {
		return errors.New("store: empty round id")
	}
	var finished any
	if r.FinishedAt != nil {
		finished = r.FinishedAt.UTC().Format(tsLayout)
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rounds (id, mode, status, guesses, answer, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            status      = excluded.status,
            guesses     = excluded.guesses,
            answer      = excluded.answer,
            finished_at = excluded.finished_at`,
		r.ID, string(r.Mode), string(r.Status), r.Guesses, r.Answer,
		r.StartedAt.UTC().Format(tsLayout), finished,
	)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (RoundRecord, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, mode, status, guesses, answer, started_at, COALESCE(finished_at, '')
        FROM rounds WHERE id=?`, id)
	r, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RoundRecord{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, mode, status, guesses, answer, started_at, COALESCE(finished_at, '')
        FROM rounds
        ORDER BY started_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoundRecord, 0, limit)
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Stats(ctx context.Context) ([]ModeStats, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT mode,
               COUNT(1),
               COALESCE(SUM(CASE WHEN status='won'  THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status='lost' THEN 1 ELSE 0 END), 0)
        FROM rounds
        GROUP BY mode
        ORDER BY mode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ModeStats{}
	for rows.Next() {
		var st ModeStats
		var mode string
		if err := rows.Scan(&mode, &st.Played, &st.Won, &st.Lost); err != nil {
			return nil, err
		}
		st.Mode = game.Mode(mode)
		out = append(out, st)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(sc scanner) (RoundRecord, error) {
	var (
		r                 RoundRecord
		mode, status      string
		started, finished string
	)
	if err := sc.Scan(&r.ID, &mode, &status, &r.Guesses, &r.Answer, &started, &finished); err != nil {
		return RoundRecord{}, err
	}
	r.Mode = game.Mode(mode)
	r.Status = game.Status(status)
	r.StartedAt, _ = time.Parse(tsLayout, started)
	if finished != "" {
		if t, err := time.Parse(tsLayout, finished); err == nil {
			r.FinishedAt = &t
		}
	}
	return r, nil
}
