/*
period.go - Goal-period window arithmetic

PURPOSE:
  Computes the active accounting window from a configurable reset day and
  a reference date. The window is derived on every read; no period record
  is ever persisted.

RESET DAY SEMANTICS:
  ResetDay 1-30: the period runs from that day of the month (midnight) to
  the next occurrence of it, minus one instant. When the reference date
  is before this month's reset day, the window anchored on last month's
  reset day is still active.

  ResetDay 31 is the "last day of month" sentinel: the period spans the
  reference date's calendar month exactly, bounded by last-instant-of-
  month marks on both sides. Instants are at millisecond precision,
  matching the stored timestamp resolution.
*/
package billing

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidResetDay is returned for reset days outside 1-31.
var ErrInvalidResetDay = errors.New("reset day must be between 1 and 31")

// Period is the half-open accounting window [Start, End) of one goal
// cycle. End is the next reset boundary minus one millisecond.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, half-open on End.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}

// DaysRemaining returns the whole calendar days from ref's date to the
// period end's date, floored at zero.
func (p Period) DaysRemaining(ref time.Time) int {
	refDay := dateOf(ref)
	endDay := dateOf(p.End)
	days := int(endDay.Sub(refDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ComputePeriod derives the active goal period for a reset day and a
// reference date. The reference date is always an explicit parameter so
// the computation stays deterministic under test.
func ComputePeriod(resetDay int, ref time.Time) (Period, error) {
	if resetDay < 1 || resetDay > 31 {
		return Period{}, ErrInvalidResetDay
	}

	if resetDay == LastDayOfMonth {
		// Sentinel: the period spans ref's calendar month exactly,
		// bounded by last-instant marks.
		end := lastInstantOfMonth(ref.Year(), ref.Month())
		start := lastInstantOfMonth(ref.Year(), ref.Month()-1)
		return Period{Start: start, End: end}, nil
	}

	year, month := ref.Year(), ref.Month()
	if ref.Day() >= resetDay {
		start := resetBoundary(year, month, resetDay, ref.Location())
		next := resetBoundary(year, month+1, resetDay, ref.Location())
		return Period{Start: start, End: next.Add(-time.Millisecond)}, nil
	}
	start := resetBoundary(year, month-1, resetDay, ref.Location())
	next := resetBoundary(year, month, resetDay, ref.Location())
	return Period{Start: start, End: next.Add(-time.Millisecond)}, nil
}

// resetBoundary is midnight of the reset day in the given month, clamped
// to the month's last day for short months.
func resetBoundary(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// lastInstantOfMonth is the final millisecond of the month.
func lastInstantOfMonth(year int, month time.Month) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-time.Millisecond)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
