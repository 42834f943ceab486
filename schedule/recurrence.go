/*
recurrence.go - Series expansion from a recurring root shift

PURPOSE:
  Materializes the finite, ordered sequence of child occurrences for a
  recurring shift. Children copy the root's title/kind/hospital and
  duration; only their StartAt/EndAt move forward.

ALGORITHM:
  cursor = root.StartAt; step weekly (+7 days) or monthly (+1 calendar
  month, preserving the root's day-of-month with clamping at month end);
  emit while the cursor's calendar date is on or before RecurrenceEndAt's
  date. The bound is date-level inclusive so that a date-only end (which
  parses to midnight) still keeps the occurrence falling on that day.

MONTHLY CLAMPING:
  A shift recurring on the 31st lands on the last day of shorter months
  (Jan 31 -> Feb 29 on a leap year -> Mar 31). The anchor day stays the
  root's day-of-month, so the series returns to the 31st when the month
  allows it. Short months are never skipped.

SEE ALSO:
  - service.go: Expansion runs once, synchronously, at creation time
*/
package schedule

import "time"

// ValidateRecurrence checks the recurrence configuration of a root shift.
// A rule without an end date, an unknown rule, or an end bound at or before
// the start are all rejected with ValidationError.
func ValidateRecurrence(root Shift) error {
	if !root.IsRecurring {
		return nil
	}
	switch root.RecurrenceRule {
	case RecurWeekly, RecurMonthly:
	default:
		return validationErr("recurrence_rule", "must be weekly or monthly")
	}
	if root.RecurrenceEndAt.IsZero() {
		return validationErr("recurrence_end_at", "required when recurrence_rule is set")
	}
	if !root.RecurrenceEndAt.After(root.StartAt) {
		return validationErr("recurrence_end_at", "must be after start_at")
	}
	return nil
}

// ExpandRecurrence generates the child occurrences of a recurring root,
// ordered by StartAt. The root itself is not included. Returns
// ValidationError for a malformed recurrence configuration.
func ExpandRecurrence(root Shift) ([]Shift, error) {
	if err := ValidateRecurrence(root); err != nil {
		return nil, err
	}
	if !root.IsRecurring {
		return nil, nil
	}

	duration := root.EndAt.Sub(root.StartAt)
	var children []Shift

	// The upper bound is date-level inclusive: a bound parsed from a
	// date-only value lands at midnight and must still keep its own day's
	// occurrence.
	endDay, _ := DayBounds(root.RecurrenceEndAt)

	for n := 1; ; n++ {
		cursor := advance(root.StartAt, root.RecurrenceRule, n)
		cursorDay, _ := DayBounds(cursor)
		if cursorDay.After(endDay) {
			break
		}
		child := root
		child.ID = ""
		child.IsRecurring = false
		child.RecurrenceRule = ""
		child.RecurrenceEndAt = time.Time{}
		child.ParentShiftID = root.ID
		child.StartAt = cursor
		child.EndAt = cursor.Add(duration)
		children = append(children, child)
	}

	return children, nil
}

// advance moves the series anchor forward n steps. Monthly steps are
// computed from the anchor, not from the previous occurrence, so a day-31
// series clamped to Feb 29 still lands on Mar 31.
func advance(anchor time.Time, rule RecurrenceRule, n int) time.Time {
	switch rule {
	case RecurWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case RecurMonthly:
		year := anchor.Year()
		month := anchor.Month() + time.Month(n)
		// Normalize month overflow before clamping the day.
		year += (int(month) - 1) / 12
		month = time.Month((int(month)-1)%12 + 1)
		d := ClampedDate(year, month, anchor.Day(), anchor.Hour(), anchor.Minute(), anchor.Location())
		return d.Add(time.Duration(anchor.Second())*time.Second + time.Duration(anchor.Nanosecond()))
	default:
		return anchor
	}
}
