// Package storage defines the persistence port for the ledger State
// document. Implementations live in the sqlite and memory subpackages.
package storage

import (
	"context"

	"monetra/internal/core"
)

// StateStore loads and saves the full State as a single document under one
// well-known key.
//
// Load returns ok=false on first run (nothing stored yet). A corrupt or
// unparsable stored document must not surface as an error: implementations
// log the problem and return the empty initial state with ok=false, so the
// application starts fresh instead of crashing.
type StateStore interface {
	Load(ctx context.Context) (state core.State, ok bool, err error)
	Save(ctx context.Context, state core.State) error
	Close() error
}
