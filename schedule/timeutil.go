package schedule

import "time"

// =============================================================================
// DATE RANGE UTILITIES
// =============================================================================

// DayBounds truncates t to midnight and returns the half-open day interval
// [dayStart, nextMidnight).
func DayBounds(t time.Time) (start, endExclusive time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IntervalsOverlap is the half-open interval overlap test on [aStart, aEnd)
// and [bStart, bEnd). Touching endpoints do not count as overlap: a shift
// ending at 12:00 does not collide with one starting at 12:00.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}

// ClampedDate builds a date in year/month with the day clamped to the last
// day of that month. ClampedDate(2024, February, 31) is Feb 29.
func ClampedDate(year int, month time.Month, day, hour, min int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

// DaysBetween returns the whole calendar days from a's date to b's date,
// ignoring the time-of-day of both.
func DaysBetween(a, b time.Time) int {
	aStart, _ := DayBounds(a)
	bStart, _ := DayBounds(b)
	return int(bStart.Sub(aStart).Hours() / 24)
}
