/*
store.go - Persistence interface for shifts

PURPOSE:
  Defines the interface between the scheduling logic and the database.
  Different implementations can use SQLite or in-memory storage.

CONTRACTS:
  - ListByOwner returns shifts ordered by StartAt ascending.
  - CreateBatch is atomic: a recurring series is persisted whole or not
    at all.
  - Get/Update/Delete return ErrNotFound for missing ids.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - schedule/store/memory.go: In-memory for testing
*/
package schedule

import (
	"context"
	"time"
)

// ShiftStore handles persistence of shifts.
type ShiftStore interface {
	// Get returns a shift by id, or ErrNotFound.
	Get(ctx context.Context, id ShiftID) (Shift, error)

	// ListByOwner returns every shift of an owner, ordered by StartAt.
	ListByOwner(ctx context.Context, ownerID OwnerID) ([]Shift, error)

	// ListByOwnerRange returns the owner's shifts intersecting [from, to).
	ListByOwnerRange(ctx context.Context, ownerID OwnerID, from, to time.Time) ([]Shift, error)

	// ListSeries returns the root and all children of a series, ordered
	// by StartAt.
	ListSeries(ctx context.Context, rootID ShiftID) ([]Shift, error)

	// Create persists a single shift.
	Create(ctx context.Context, s Shift) error

	// CreateBatch persists several shifts atomically. Either all are
	// written or none are.
	CreateBatch(ctx context.Context, shifts []Shift) error

	// Update overwrites a stored shift, or returns ErrNotFound.
	Update(ctx context.Context, s Shift) error

	// Delete removes a shift by id, or returns ErrNotFound.
	Delete(ctx context.Context, id ShiftID) error

	// DeleteSeries removes a root and all its children.
	DeleteSeries(ctx context.Context, rootID ShiftID) error
}
