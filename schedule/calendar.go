/*
calendar.go - Month grid construction and agenda bucketing

PURPOSE:
  Builds the fixed 6x7 calendar grid the agenda view renders and buckets
  a set of shifts into it, per day and per time block.

GRID INVARIANT:
  MonthGrid always returns exactly 42 cells regardless of the target
  month's length or starting weekday. Cells borrowed from the adjacent
  months are tagged IsCurrentMonth=false.
*/
package schedule

import "time"

// GridCells is the fixed size of the agenda grid: 6 weeks of 7 days.
const GridCells = 42

// DayCell is one cell of the month grid.
type DayCell struct {
	Date           time.Time
	IsCurrentMonth bool
}

// MonthGrid builds the 42-cell grid for the month containing t. The grid
// starts on the Sunday at or before the 1st and left/right-pads with days
// of the previous and next months.
func MonthGrid(t time.Time) []DayCell {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	cells := make([]DayCell, GridCells)
	for i := range cells {
		day := gridStart.AddDate(0, 0, i)
		cells[i] = DayCell{
			Date:           day,
			IsCurrentMonth: day.Month() == t.Month() && day.Year() == t.Year(),
		}
	}
	return cells
}

// =============================================================================
// AGENDA - Shifts bucketed into the grid
// =============================================================================

// AgendaCell is a grid cell with its shifts grouped by time block.
type AgendaCell struct {
	DayCell
	Blocks map[TimeBlock][]Shift
}

// BuildAgenda places each shift into the cells and blocks it occupies,
// per the classifier's attribution rules. Shifts outside the grid's date
// range are ignored.
func BuildAgenda(month time.Time, shifts []Shift) []AgendaCell {
	grid := MonthGrid(month)

	agenda := make([]AgendaCell, len(grid))
	for i, cell := range grid {
		agenda[i] = AgendaCell{DayCell: cell, Blocks: make(map[TimeBlock][]Shift)}
	}

	// Index cells by date for O(1) placement.
	index := make(map[time.Time]int, len(grid))
	for i, cell := range grid {
		index[cell.Date] = i
	}

	for _, s := range shifts {
		for _, day := range attributionDays(s) {
			dayStart, _ := DayBounds(day)
			i, ok := index[dayStart]
			if !ok {
				continue
			}
			for _, block := range Classify(s, day) {
				agenda[i].Blocks[block] = append(agenda[i].Blocks[block], s)
			}
		}
	}
	return agenda
}

// attributionDays lists the calendar days a shift can appear on: its start
// day, plus its end day for overnight shifts.
func attributionDays(s Shift) []time.Time {
	days := []time.Time{s.StartAt}
	if CrossesMidnight(s) {
		last := s.EndAt.Add(-time.Nanosecond)
		if !SameDay(s.StartAt, last) {
			days = append(days, last)
		}
	}
	return days
}
