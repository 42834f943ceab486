/*
timeblock.go - Day-segment classification for the agenda view

PURPOSE:
  Buckets shifts into the four fixed day segments the agenda renders:
  night [0,6), morning [6,12), afternoon [12,18), evening [18,24).

ATTRIBUTION RULES:
  1. A shift belongs to the segment containing its start hour, on its
     start day.
  2. Overnight exception: when the end clock-time is numerically <= the
     start clock-time, the shift crosses midnight and is also attributed
     to the segment containing its end hour, on its end day.
  3. Nowhere else. Multi-day shifts longer than 24h are undercounted for
     display; that is a display simplification, storage is unaffected.
*/
package schedule

import "time"

// TimeBlock is one of the four fixed segments of a calendar day.
type TimeBlock string

const (
	BlockNight     TimeBlock = "night"     // [00:00, 06:00)
	BlockMorning   TimeBlock = "morning"   // [06:00, 12:00)
	BlockAfternoon TimeBlock = "afternoon" // [12:00, 18:00)
	BlockEvening   TimeBlock = "evening"   // [18:00, 24:00)
)

// Blocks lists the segments in day order.
var Blocks = []TimeBlock{BlockNight, BlockMorning, BlockAfternoon, BlockEvening}

// BlockForHour returns the segment containing the given hour [0,24).
func BlockForHour(hour int) TimeBlock {
	switch {
	case hour < 6:
		return BlockNight
	case hour < 12:
		return BlockMorning
	case hour < 18:
		return BlockAfternoon
	default:
		return BlockEvening
	}
}

// CrossesMidnight reports whether the shift's end clock-time is numerically
// at or before its start clock-time, the signal the agenda uses for
// overnight shifts.
func CrossesMidnight(s Shift) bool {
	return s.EndAt.Hour() <= s.StartAt.Hour()
}

// Classify returns the segments the shift occupies on the given calendar
// day. The result is empty when the shift neither starts on day nor, via
// the overnight exception, ends on it.
//
// End attribution classifies the last occupied instant, not EndAt itself:
// a shift ending exactly at 06:00 spent its morning hours asleep in the
// night segment and is rendered there.
func Classify(s Shift, day time.Time) []TimeBlock {
	var blocks []TimeBlock
	if SameDay(s.StartAt, day) {
		blocks = append(blocks, BlockForHour(s.StartAt.Hour()))
	}
	if CrossesMidnight(s) {
		last := s.EndAt.Add(-time.Nanosecond)
		if SameDay(last, day) {
			end := BlockForHour(last.Hour())
			if len(blocks) == 0 || blocks[0] != end {
				blocks = append(blocks, end)
			}
		}
	}
	return blocks
}
