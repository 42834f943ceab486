package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesta/shift-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func weeklyRoot(start, end, until time.Time) schedule.Shift {
	return schedule.Shift{
		ID:              "root-1",
		OwnerID:         "dr-ana",
		Title:           "Plantão UTI",
		StartAt:         start,
		EndAt:           end,
		Kind:            schedule.KindFixedHospital,
		HospitalName:    "Santa Casa",
		IsRecurring:     true,
		RecurrenceRule:  schedule.RecurWeekly,
		RecurrenceEndAt: until,
	}
}

// =============================================================================
// WEEKLY EXPANSION
// =============================================================================

func TestExpandRecurrence_Weekly_InclusiveEndBound(t *testing.T) {
	// GIVEN: A weekly root on Jan 1 ending the series on Jan 22
	// WHEN: Expanding
	// THEN: Three children on Jan 8, 15 and 22; the bound itself is included

	start := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)
	until := time.Date(2024, time.January, 22, 8, 0, 0, 0, time.UTC)

	children, err := schedule.ExpandRecurrence(weeklyRoot(start, end, until))
	require.NoError(t, err)
	require.Len(t, children, 3)

	assert.Equal(t, time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC), children[0].StartAt)
	assert.Equal(t, time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC), children[1].StartAt)
	assert.Equal(t, time.Date(2024, time.January, 22, 8, 0, 0, 0, time.UTC), children[2].StartAt)

	for _, c := range children {
		assert.Equal(t, 6*time.Hour, c.Duration(), "children keep the root's duration")
		assert.Equal(t, schedule.ShiftID("root-1"), c.ParentShiftID)
		assert.Empty(t, c.ID, "child ids are assigned by the scheduler")
		assert.False(t, c.IsRecurring, "children are plain shifts")
	}
}

func TestExpandRecurrence_Weekly_MidnightBoundKeepsItsDay(t *testing.T) {
	// GIVEN: A series end parsed from a date-only value (midnight Jan 22)
	// WHEN: Expanding a weekly series from Jan 1 08:00
	// THEN: The Jan 22 08:00 occurrence is still generated; the bound is
	//       date-level, not a raw timestamp comparison

	start := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	until := time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC)

	children, err := schedule.ExpandRecurrence(weeklyRoot(start, end, until))
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, time.Date(2024, time.January, 22, 8, 0, 0, 0, time.UTC), children[2].StartAt)
}

func TestExpandRecurrence_Weekly_BoundOnDayBeforeOccurrence(t *testing.T) {
	// GIVEN: A series end on the day before the third occurrence
	// WHEN: Expanding
	// THEN: Only two children are generated

	start := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	until := time.Date(2024, time.January, 21, 23, 59, 59, 0, time.UTC)

	children, err := schedule.ExpandRecurrence(weeklyRoot(start, end, until))
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

// =============================================================================
// MONTHLY EXPANSION - Day-of-month anchoring
// =============================================================================

func TestExpandRecurrence_Monthly_ClampsShortMonths(t *testing.T) {
	// GIVEN: A monthly series anchored on Jan 31, 2024 (leap year)
	// WHEN: Expanding through April
	// THEN: Feb lands on the 29th, Mar returns to the 31st, Apr on the 30th

	root := weeklyRoot(
		time.Date(2024, time.January, 31, 19, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 7, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 19, 0, 0, 0, time.UTC),
	)
	root.RecurrenceRule = schedule.RecurMonthly

	children, err := schedule.ExpandRecurrence(root)
	require.NoError(t, err)
	require.Len(t, children, 3)

	assert.Equal(t, time.Date(2024, time.February, 29, 19, 0, 0, 0, time.UTC), children[0].StartAt,
		"February clamps to the 29th, the month is not skipped")
	assert.Equal(t, time.Date(2024, time.March, 31, 19, 0, 0, 0, time.UTC), children[1].StartAt,
		"the anchor day returns when the month allows it")
	assert.Equal(t, time.Date(2024, time.April, 30, 19, 0, 0, 0, time.UTC), children[2].StartAt)
}

func TestExpandRecurrence_Monthly_YearRollover(t *testing.T) {
	// GIVEN: A monthly series starting in November
	// WHEN: Expanding across the year boundary
	// THEN: December and January occurrences are generated

	root := weeklyRoot(
		time.Date(2024, time.November, 15, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 15, 14, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC),
	)
	root.RecurrenceRule = schedule.RecurMonthly

	children, err := schedule.ExpandRecurrence(root)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, time.Date(2024, time.December, 15, 8, 0, 0, 0, time.UTC), children[0].StartAt)
	assert.Equal(t, time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC), children[1].StartAt)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateRecurrence_EndNotAfterStart_Rejected(t *testing.T) {
	// GIVEN: A recurrence end at the root's own start
	// WHEN: Validating
	// THEN: ValidationError, not a silently empty series

	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	root := weeklyRoot(start, start.Add(6*time.Hour), start)

	err := schedule.ValidateRecurrence(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrValidation)

	var verr *schedule.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "recurrence_end_at", verr.Field)
}

func TestValidateRecurrence_UnknownRule_Rejected(t *testing.T) {
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	root := weeklyRoot(start, start.Add(6*time.Hour), start.AddDate(0, 1, 0))
	root.RecurrenceRule = "daily"

	err := schedule.ValidateRecurrence(root)
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestValidateRecurrence_MissingEnd_Rejected(t *testing.T) {
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	root := weeklyRoot(start, start.Add(6*time.Hour), time.Time{})

	err := schedule.ValidateRecurrence(root)
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestValidateRecurrence_NonRecurring_Ignored(t *testing.T) {
	// A plain shift carries no recurrence config and passes untouched.
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	root := weeklyRoot(start, start.Add(6*time.Hour), time.Time{})
	root.IsRecurring = false
	root.RecurrenceRule = ""

	assert.NoError(t, schedule.ValidateRecurrence(root))

	children, err := schedule.ExpandRecurrence(root)
	require.NoError(t, err)
	assert.Empty(t, children)
}
