package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesta/shift-engine/schedule"
)

func dayShift(startHour, endHour int) schedule.Shift {
	return schedule.Shift{
		ID:      "s-1",
		OwnerID: "dr-ana",
		Title:   "Plantão",
		StartAt: time.Date(2024, time.March, 10, startHour, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2024, time.March, 10, endHour, 0, 0, 0, time.UTC),
		Kind:    schedule.KindOnCall,
	}
}

// =============================================================================
// BLOCK BOUNDARIES
// =============================================================================

func TestBlockForHour_Boundaries(t *testing.T) {
	assert.Equal(t, schedule.BlockNight, schedule.BlockForHour(0))
	assert.Equal(t, schedule.BlockNight, schedule.BlockForHour(5))
	assert.Equal(t, schedule.BlockMorning, schedule.BlockForHour(6))
	assert.Equal(t, schedule.BlockMorning, schedule.BlockForHour(11))
	assert.Equal(t, schedule.BlockAfternoon, schedule.BlockForHour(12))
	assert.Equal(t, schedule.BlockAfternoon, schedule.BlockForHour(17))
	assert.Equal(t, schedule.BlockEvening, schedule.BlockForHour(18))
	assert.Equal(t, schedule.BlockEvening, schedule.BlockForHour(23))
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassify_DaytimeShift_StartBlockOnly(t *testing.T) {
	// GIVEN: A 08:00-14:00 shift
	// WHEN: Classifying on its own day
	// THEN: Morning only; the afternoon hours it spans are not attributed

	s := dayShift(8, 14)
	blocks := schedule.Classify(s, s.StartAt)

	assert.Equal(t, []schedule.TimeBlock{schedule.BlockMorning}, blocks)
}

func TestClassify_OvernightShift_BothDays(t *testing.T) {
	// GIVEN: A 22:00 -> 06:00 shift crossing midnight
	// WHEN: Classifying on the start day and the end day
	// THEN: Evening on March 10, night on March 11

	s := dayShift(22, 23)
	s.EndAt = time.Date(2024, time.March, 11, 6, 0, 0, 0, time.UTC)
	require.True(t, schedule.CrossesMidnight(s))

	startDay := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, []schedule.TimeBlock{schedule.BlockEvening}, schedule.Classify(s, startDay))
	assert.Equal(t, []schedule.TimeBlock{schedule.BlockNight}, schedule.Classify(s, endDay),
		"a shift ending exactly at 06:00 is rendered in the night segment")
}

func TestClassify_MidnightToMorning_SingleBlock(t *testing.T) {
	// GIVEN: A 00:00 -> 06:00 shift; end hour equals start's block boundary
	// WHEN: Classifying on its day
	// THEN: Night once, no duplicate from the overnight rule

	s := dayShift(0, 6)
	blocks := schedule.Classify(s, s.StartAt)

	assert.Equal(t, []schedule.TimeBlock{schedule.BlockNight}, blocks)
}

func TestClassify_UnrelatedDay_Empty(t *testing.T) {
	s := dayShift(8, 14)
	other := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, schedule.Classify(s, other))
}

func TestCrossesMidnight_EqualHours(t *testing.T) {
	// A 20:00 -> 20:00 next day shift has equal clock hours and counts as
	// crossing midnight.
	s := dayShift(20, 23)
	s.EndAt = time.Date(2024, time.March, 11, 20, 0, 0, 0, time.UTC)

	assert.True(t, schedule.CrossesMidnight(s))
	assert.False(t, schedule.CrossesMidnight(dayShift(8, 14)))
}
