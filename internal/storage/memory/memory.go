// Package memory provides an in-memory StateStore used as the default
// backend and as the injected adapter in engine tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"monetra/internal/core"
	"monetra/internal/storage"
)

type Store struct {
	mu  sync.Mutex
	doc []byte
}

var _ storage.StateStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Load decodes the stored document. The round-trip through JSON keeps the
// memory backend honest about what the durable format can represent.
func (s *Store) Load(_ context.Context) (core.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return core.NewState(), false, nil
	}

	var state core.State
	if err := json.Unmarshal(s.doc, &state); err != nil {
		slog.Error("Stored ledger document is corrupt, starting fresh", "error", err)
		return core.NewState(), false, nil
	}
	state.Normalize()
	return state, true, nil
}

func (s *Store) Save(_ context.Context, state core.State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Seed replaces the stored document with raw bytes. Test hook for corrupt
// and legacy document handling.
func (s *Store) Seed(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append([]byte(nil), raw...)
}
