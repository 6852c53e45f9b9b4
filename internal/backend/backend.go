// Package backend selects and constructs the ledger document store from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"monetra/internal/config"
	"monetra/internal/storage"
	"monetra/internal/storage/memory"
	"monetra/internal/storage/sqlite"
)

// Type represents the configured store backend.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend}
}

// Result holds the constructed store. Close releases backend resources; for
// the memory backend it is a no-op.
type Result struct {
	Store storage.StateStore
	Type  Type
}

// New builds the StateStore named by cfg.DataBackend.
func New(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case MemoryBackend:
		logger.Info("Initialized memory store", "backend", backendType.String())
		return &Result{Store: memory.New(), Type: backendType}, nil

	case SQLiteBackend:
		store, err := sqlite.New(cfg.SQLiteDBPath, cfg.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite store",
			"backend", backendType.String(),
			"db_path", cfg.SQLiteDBPath,
			"storage_key", cfg.StorageKey)
		return &Result{Store: store, Type: backendType}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type %q (valid: %v)", cfg.DataBackend, Types())
	}
}
