// Package sqlite persists the ledger State document in a single-row SQLite
// table, keyed by the well-known storage key.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"monetra/internal/core"
	"monetra/internal/storage"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	key string
}

var _ storage.StateStore = (*Store)(nil)

func New(dbPath, key string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, key: key}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements storage.StateStore. A missing row means first run; a row
// that no longer parses is logged and treated the same way.
func (s *Store) Load(ctx context.Context) (core.State, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM ledger_state WHERE key = ?`, s.key,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewState(), false, nil
	}
	if err != nil {
		return core.NewState(), false, fmt.Errorf("read state document: %w", err)
	}

	var state core.State
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		slog.ErrorContext(ctx, "Stored ledger document is corrupt, starting fresh",
			"storage_key", s.key,
			"error", err)
		return core.NewState(), false, nil
	}
	state.Normalize()
	return state, true, nil
}

// Save implements storage.StateStore with an upsert on the storage key.
func (s *Store) Save(ctx context.Context, state core.State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledger_state (key, document, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		s.key, string(doc), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write state document: %w", err)
	}
	return nil
}
