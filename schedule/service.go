/*
service.go - Scheduler orchestrating validation, expansion and persistence

PURPOSE:
  The write-side entry point of the engine. A caller (the HTTP layer)
  supplies a candidate shift or an edit; the scheduler validates it,
  materializes recurring occurrences, enforces the non-overlap invariant
  and persists through the ShiftStore.

OPERATION SEMANTICS:
  CreateShift:   validate -> expand recurrence -> overlap-check the root
                 and every occurrence -> atomic batch persist. Nothing is
                 written when any occurrence conflicts.
  UpdateShift:   scope=series propagates title/kind/hospital and the
                 start/end clock times to every member, skipping overlap
                 validation (deliberate relaxation). scope=single edits
                 one record and validates overlap excluding itself.
  DeleteShift:   scope=series removes root and children; scope=single
                 removes one record.
  UpdatePayment: mutates financial attributes only; never touches the
                 scheduling fields and never re-validates overlap.

SEE ALSO:
  - recurrence.go, overlap.go: The gates CreateShift runs
  - calendar.go: Read-side agenda assembly used by Agenda()
*/
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Scheduler is the write-side service for an owner's shift calendar.
type Scheduler struct {
	store     ShiftStore
	validator *Validator
}

func NewScheduler(store ShiftStore) *Scheduler {
	return &Scheduler{store: store, validator: NewValidator(store)}
}

// =============================================================================
// CREATE
// =============================================================================

// CreateShift validates and persists a shift, materializing the whole
// series when the root is recurring. Returns the stored root plus any
// generated children.
func (sch *Scheduler) CreateShift(ctx context.Context, s Shift, now time.Time) ([]Shift, error) {
	if err := validateShift(s); err != nil {
		return nil, err
	}
	if err := ValidateRecurrence(s); err != nil {
		return nil, err
	}

	if s.ID == "" {
		s.ID = ShiftID(uuid.NewString())
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.PaymentStatus == "" {
		s.PaymentStatus = PaymentPending
	}

	children, err := ExpandRecurrence(s)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].ID = ShiftID(uuid.NewString())
		children[i].CreatedAt = now
		children[i].UpdatedAt = now
	}

	// Overlap-gate every interval before the first write. Expansion and
	// validation happen up front so no partial series is ever exposed.
	// Occurrences can collide with each other when the duration exceeds
	// the recurrence step; the batch is ordered by StartAt, so each
	// member only needs checking against its successor.
	batch := append([]Shift{s}, children...)
	for i := 1; i < len(batch); i++ {
		prev, cur := batch[i-1], batch[i]
		if IntervalsOverlap(prev.StartAt, prev.EndAt, cur.StartAt, cur.EndAt) {
			return nil, &ConflictError{
				OwnerID:  cur.OwnerID,
				Existing: prev.ID,
				StartAt:  cur.StartAt,
				EndAt:    cur.EndAt,
			}
		}
	}
	for _, member := range batch {
		if err := sch.validator.Check(ctx, member.OwnerID, member.StartAt, member.EndAt, ""); err != nil {
			return nil, err
		}
	}

	if len(batch) == 1 {
		if err := sch.store.Create(ctx, s); err != nil {
			return nil, err
		}
		return batch, nil
	}
	if err := sch.store.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// =============================================================================
// UPDATE
// =============================================================================

// UpdateShift applies a patch to a shift. scope selects whether the edit
// propagates to the whole recurring series or touches only this record.
// Returns the updated records.
func (sch *Scheduler) UpdateShift(ctx context.Context, id ShiftID, patch ShiftPatch, scope Scope, now time.Time) ([]Shift, error) {
	current, err := sch.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if scope == ScopeSeries && (current.IsSeriesRoot() || current.IsOccurrence()) {
		return sch.updateSeries(ctx, current, patch, now)
	}
	return sch.updateSingle(ctx, current, patch, now)
}

func (sch *Scheduler) updateSingle(ctx context.Context, current Shift, patch ShiftPatch, now time.Time) ([]Shift, error) {
	updated := applyPatch(current, patch)
	if err := validateShift(updated); err != nil {
		return nil, err
	}
	if err := sch.validator.Check(ctx, updated.OwnerID, updated.StartAt, updated.EndAt, updated.ID); err != nil {
		return nil, err
	}
	updated.UpdatedAt = now
	if err := sch.store.Update(ctx, updated); err != nil {
		return nil, err
	}
	return []Shift{updated}, nil
}

// updateSeries propagates an edit to every member of the series. Start and
// end times are applied as clock times on each member's own date, so the
// series keeps its cadence. Overlap validation is skipped: the series'
// internal consistency is assumed.
func (sch *Scheduler) updateSeries(ctx context.Context, member Shift, patch ShiftPatch, now time.Time) ([]Shift, error) {
	series, err := sch.store.ListSeries(ctx, member.SeriesID())
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, ErrNotFound
	}

	var updated []Shift
	for _, s := range series {
		u := applyPatch(s, patchOnOwnDate(s, patch))
		if err := validateShift(u); err != nil {
			return nil, err
		}
		u.UpdatedAt = now
		if err := sch.store.Update(ctx, u); err != nil {
			return nil, err
		}
		updated = append(updated, u)
	}
	return updated, nil
}

// patchOnOwnDate rebases the patch's start/end onto the member's own
// calendar date, keeping only the clock time from the patch.
func patchOnOwnDate(s Shift, patch ShiftPatch) ShiftPatch {
	rebased := patch
	if patch.StartAt != nil {
		t := onDate(s.StartAt, *patch.StartAt)
		rebased.StartAt = &t
	}
	if patch.EndAt != nil {
		base := s.StartAt
		t := onDate(base, *patch.EndAt)
		// Preserve midnight crossing: an end clock-time at or before the
		// start lands on the next day.
		if rebased.StartAt != nil {
			base = *rebased.StartAt
		}
		if !t.After(base) {
			t = t.AddDate(0, 0, 1)
		}
		rebased.EndAt = &t
	}
	return rebased
}

func onDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), date.Location())
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteShift removes a shift. scope=series removes the whole series the
// shift belongs to; scope=single removes only this record.
func (sch *Scheduler) DeleteShift(ctx context.Context, id ShiftID, scope Scope) error {
	current, err := sch.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if scope == ScopeSeries && (current.IsSeriesRoot() || current.IsOccurrence()) {
		return sch.store.DeleteSeries(ctx, current.SeriesID())
	}
	return sch.store.Delete(ctx, id)
}

// =============================================================================
// PAYMENT
// =============================================================================

// UpdatePayment mutates the financial attributes of one shift. Scheduling
// fields are untouched and no overlap validation runs.
func (sch *Scheduler) UpdatePayment(ctx context.Context, id ShiftID, patch PaymentPatch, now time.Time) (Shift, error) {
	current, err := sch.store.Get(ctx, id)
	if err != nil {
		return Shift{}, err
	}
	if patch.Status != nil {
		current.PaymentStatus = *patch.Status
	}
	if patch.Value != nil {
		current.PaymentValue = *patch.Value
	}
	if patch.PaidAt != nil {
		current.PaymentDate = *patch.PaidAt
	}
	current.UpdatedAt = now
	if err := sch.store.Update(ctx, current); err != nil {
		return Shift{}, err
	}
	return current, nil
}

// =============================================================================
// READ SIDE
// =============================================================================

// Agenda returns the owner's 42-cell agenda for the month containing
// month, with shifts bucketed into time blocks.
func (sch *Scheduler) Agenda(ctx context.Context, ownerID OwnerID, month time.Time) ([]AgendaCell, error) {
	grid := MonthGrid(month)
	from, _ := DayBounds(grid[0].Date)
	_, to := DayBounds(grid[len(grid)-1].Date)

	shifts, err := sch.store.ListByOwnerRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	return BuildAgenda(month, shifts), nil
}

// ListShifts returns the owner's shifts intersecting [from, to), or all of
// them when both bounds are zero.
func (sch *Scheduler) ListShifts(ctx context.Context, ownerID OwnerID, from, to time.Time) ([]Shift, error) {
	if from.IsZero() && to.IsZero() {
		return sch.store.ListByOwner(ctx, ownerID)
	}
	return sch.store.ListByOwnerRange(ctx, ownerID, from, to)
}

// GetShift returns one shift by id.
func (sch *Scheduler) GetShift(ctx context.Context, id ShiftID) (Shift, error) {
	return sch.store.Get(ctx, id)
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateShift(s Shift) error {
	if s.OwnerID == "" {
		return validationErr("owner_id", "required")
	}
	if s.Title == "" {
		return validationErr("title", "required")
	}
	if s.StartAt.IsZero() || s.EndAt.IsZero() {
		return validationErr("start_at", "start_at and end_at are required")
	}
	if !s.StartAt.Before(s.EndAt) {
		return validationErr("end_at", "must be after start_at")
	}
	switch s.Kind {
	case KindFixedHospital:
		if s.HospitalName == "" {
			return validationErr("hospital_name", "required for fixed_hospital shifts")
		}
	case KindOnCall:
	default:
		return validationErr("kind", "must be fixed_hospital or on_call")
	}
	return nil
}

func applyPatch(s Shift, patch ShiftPatch) Shift {
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.StartAt != nil {
		s.StartAt = *patch.StartAt
	}
	if patch.EndAt != nil {
		s.EndAt = *patch.EndAt
	}
	if patch.Kind != nil {
		s.Kind = *patch.Kind
	}
	if patch.HospitalName != nil {
		s.HospitalName = *patch.HospitalName
	}
	return s
}
