package availability

import "time"

type CalendarDay struct {
	Date       time.Time
	InMonth    bool
	IsToday    bool
	Blocks     []Block
	HasOverlap bool
}

// GridBounds returns the first and last (exclusive) instants of the Sunday-first
// weeks that cover month.
func GridBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 7-int(last.Weekday()))
	return start, end
}

// MonthGrid lays blocks out over the full weeks covering month.
func MonthGrid(year int, month time.Month, loc *time.Location, blocks []Block, now time.Time) []CalendarDay {
	start, end := GridBounds(year, month, loc)
	today := StartOfDay(now.In(loc))

	days := Days(start, end)
	grid := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		cell := CalendarDay{
			Date:    day,
			InMonth: day.Month() == month,
			IsToday: day.Equal(today),
			Blocks:  []Block{},
		}
		owners := make(map[string]struct{})
		for _, b := range blocks {
			if !OnDay(b, day) {
				continue
			}
			cell.Blocks = append(cell.Blocks, b)
			if b.Polarity == Available {
				owners[b.OwnerID] = struct{}{}
			}
		}
		cell.HasOverlap = len(owners) >= 2
		grid = append(grid, cell)
	}
	return grid
}

// OnDay reports whether b touches the calendar day containing day.
func OnDay(b Block, day time.Time) bool {
	loc := day.Location()
	dayStart, dayEnd := DayBounds(day)
	if b.AllDay {
		return !dayStart.Before(StartOfDay(b.Start.In(loc))) && !dayStart.After(EndOfDay(b.End.In(loc)))
	}
	return b.Start.Before(dayEnd) && b.End.After(dayStart)
}
