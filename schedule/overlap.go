/*
overlap.go - Non-overlap invariant enforcement

PURPOSE:
  Validates that a candidate interval does not collide with any existing
  shift of the same owner before a write is attempted.

CONSISTENCY:
  The check is check-then-write relative to the store. Two concurrent
  writers can race past it; last-write-wins is the accepted behavior, the
  store provides no optimistic-concurrency token.

SERIES RELAXATION:
  Series-wide edits skip overlap validation entirely. The series' own
  internal non-overlap is assumed, not verified. See service.go.
*/
package schedule

import (
	"context"
	"time"
)

// Validator checks candidate intervals against an owner's stored shifts.
type Validator struct {
	store ShiftStore
}

func NewValidator(store ShiftStore) *Validator {
	return &Validator{store: store}
}

// HasOverlap reports whether any existing shift of the owner overlaps
// [start, end). excludeID is skipped, which lets an edit ignore the record
// being edited; pass "" when creating.
func (v *Validator) HasOverlap(ctx context.Context, ownerID OwnerID, start, end time.Time, excludeID ShiftID) (bool, *Shift, error) {
	existing, err := v.store.ListByOwnerRange(ctx, ownerID, start, end)
	if err != nil {
		return false, nil, err
	}
	for i := range existing {
		s := existing[i]
		if s.ID == excludeID {
			continue
		}
		if IntervalsOverlap(start, end, s.StartAt, s.EndAt) {
			return true, &s, nil
		}
	}
	return false, nil, nil
}

// Check wraps HasOverlap and converts a hit into a ConflictError.
func (v *Validator) Check(ctx context.Context, ownerID OwnerID, start, end time.Time, excludeID ShiftID) error {
	overlaps, hit, err := v.HasOverlap(ctx, ownerID, start, end, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return &ConflictError{OwnerID: ownerID, Existing: hit.ID, StartAt: start, EndAt: end}
	}
	return nil
}
