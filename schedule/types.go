/*
Package schedule provides the core shift scheduling engine.

PURPOSE:
  This package contains the domain types and algorithms for managing an
  anesthesiologist's shift calendar: recurrence expansion, overlap
  validation, day/time-block bucketing, and the scheduler service that
  ties them together in front of a ShiftStore.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: A bookable time interval, possibly the root of a recurring series
  - ShiftKind: Fixed hospital assignment vs on-call commitment
  - RecurrenceRule: Weekly or monthly repetition
  - PaymentStatus: Financial state, mutated independently of scheduling

DESIGN PRINCIPLES:
  1. Determinism: Every computation takes its reference date as a parameter
  2. Precision: Payment values use decimal.Decimal, never float64
  3. UTC everywhere: StartAt/EndAt are absolute UTC timestamps
  4. Half-open intervals: [StartAt, EndAt) — touching shifts do not overlap

SEE ALSO:
  - recurrence.go: Series expansion from a recurring root
  - overlap.go: Non-overlap invariant enforcement
  - timeblock.go: Day-segment classification for the agenda view
  - service.go: Scheduler orchestrating the above against a store
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ShiftID string
type OwnerID string

// =============================================================================
// SHIFT - A bookable time interval
// =============================================================================

type ShiftKind string

const (
	KindFixedHospital ShiftKind = "fixed_hospital"
	KindOnCall        ShiftKind = "on_call"
)

type RecurrenceRule string

const (
	RecurWeekly  RecurrenceRule = "weekly"
	RecurMonthly RecurrenceRule = "monthly"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentInvoiced PaymentStatus = "invoiced"
	PaymentPaid     PaymentStatus = "paid"
)

// Shift is a scheduled work interval ("plantão") for one anesthesiologist.
//
// Invariants:
//   - StartAt < EndAt
//   - KindFixedHospital requires a non-empty HospitalName
//   - Within one owner's schedule, no two shifts overlap on [StartAt, EndAt)
//
// A recurring series consists of a root (IsRecurring=true, RecurrenceRule and
// RecurrenceEndAt set) plus generated children carrying ParentShiftID. The
// children are materialized once, at creation time.
type Shift struct {
	ID           ShiftID
	OwnerID      OwnerID
	Title        string
	StartAt      time.Time
	EndAt        time.Time
	Kind         ShiftKind
	HospitalName string

	// Recurrence (root only)
	IsRecurring     bool
	RecurrenceRule  RecurrenceRule
	RecurrenceEndAt time.Time

	// Set on generated occurrences, empty on standalone or root shifts.
	ParentShiftID ShiftID

	// Financial attributes. These mutate independently of the scheduling
	// attributes above; see Scheduler.UpdatePayment.
	PaymentStatus PaymentStatus
	PaymentValue  decimal.Decimal
	PaymentDate   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration returns the length of the shift interval.
func (s Shift) Duration() time.Duration { return s.EndAt.Sub(s.StartAt) }

// IsSeriesRoot reports whether this shift is the root of a recurring series.
func (s Shift) IsSeriesRoot() bool { return s.IsRecurring && s.ParentShiftID == "" }

// IsOccurrence reports whether this shift was generated from a recurring root.
func (s Shift) IsOccurrence() bool { return s.ParentShiftID != "" }

// SeriesID returns the root id for any member of a series, or the shift's own
// id when it is standalone.
func (s Shift) SeriesID() ShiftID {
	if s.ParentShiftID != "" {
		return s.ParentShiftID
	}
	return s.ID
}

// =============================================================================
// EDIT / DELETE SCOPE
// =============================================================================

// Scope selects whether an edit or delete applies to a whole recurring
// series or to a single occurrence.
type Scope string

const (
	// ScopeSeries propagates the operation to the root and every child.
	ScopeSeries Scope = "series"
	// ScopeSingle touches only the addressed record.
	ScopeSingle Scope = "single"
)

// =============================================================================
// SHIFT PATCH - Partial update
// =============================================================================

// ShiftPatch carries the fields of an edit. Nil fields are left unchanged.
type ShiftPatch struct {
	Title        *string
	StartAt      *time.Time
	EndAt        *time.Time
	Kind         *ShiftKind
	HospitalName *string
}

// PaymentPatch carries a financial update. Nil fields are left unchanged.
type PaymentPatch struct {
	Status *PaymentStatus
	Value  *decimal.Decimal
	PaidAt *time.Time
}
