package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesta/shift-engine/billing"
)

// =============================================================================
// LAST-DAY-OF-MONTH SENTINEL
// =============================================================================

func TestComputePeriod_LastDaySentinel_SpansCalendarMonth(t *testing.T) {
	// GIVEN: Reset day 31 and a reference in February of a leap year
	// WHEN: Computing the period
	// THEN: Bounded by the last instant of January and of February

	ref := time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(billing.LastDayOfMonth, ref)
	require.NoError(t, err)

	wantStart := time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC)
	wantEnd := time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC)
	assert.Equal(t, wantStart, period.Start)
	assert.Equal(t, wantEnd, period.End)

	assert.Equal(t, 14, period.DaysRemaining(ref))
}

func TestComputePeriod_LastDaySentinel_YearBoundary(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(billing.LastDayOfMonth, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 59, 999000000, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, time.January, 31, 23, 59, 59, 999000000, time.UTC), period.End)
}

// =============================================================================
// REGULAR RESET DAYS
// =============================================================================

func TestComputePeriod_RefAfterResetDay(t *testing.T) {
	// GIVEN: Reset day 5 and a reference on the 20th
	// WHEN: Computing the period
	// THEN: Runs from this month's 5th to just before next month's 5th

	ref := time.Date(2024, time.March, 20, 8, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(5, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, time.April, 4, 23, 59, 59, 999000000, time.UTC), period.End)
}

func TestComputePeriod_RefBeforeResetDay_PreviousWindowActive(t *testing.T) {
	// A reference on March 3 with reset day 5 still sits in the window
	// anchored on February 5.
	ref := time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(5, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, time.March, 4, 23, 59, 59, 999000000, time.UTC), period.End)
	assert.True(t, period.Contains(ref))
}

func TestComputePeriod_ResetDayOnRefDay_NewWindowStarts(t *testing.T) {
	// The reset day itself belongs to the new window.
	ref := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(5, ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), period.Start)
}

func TestComputePeriod_ShortMonthClamp(t *testing.T) {
	// GIVEN: Reset day 30 and a reference in February
	// WHEN: Computing the period
	// THEN: February's boundary clamps to its last day

	ref := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	period, err := billing.ComputePeriod(30, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC), period.Start)
	// Next boundary is Feb 28 (clamped), so the window ends just before it.
	assert.Equal(t, time.Date(2025, time.February, 27, 23, 59, 59, 999000000, time.UTC), period.End)
}

func TestComputePeriod_InvalidResetDay(t *testing.T) {
	ref := time.Now()

	_, err := billing.ComputePeriod(0, ref)
	assert.ErrorIs(t, err, billing.ErrInvalidResetDay)

	_, err = billing.ComputePeriod(32, ref)
	assert.ErrorIs(t, err, billing.ErrInvalidResetDay)
}

// =============================================================================
// DAYS REMAINING
// =============================================================================

func TestDaysRemaining_FlooredAtZero(t *testing.T) {
	period := billing.Period{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 31, 23, 59, 59, 999000000, time.UTC),
	}

	assert.Equal(t, 0, period.DaysRemaining(time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, period.DaysRemaining(time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)),
		"a reference past the window never goes negative")
	assert.Equal(t, 30, period.DaysRemaining(time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC)),
		"time of day does not shrink the count")
}
