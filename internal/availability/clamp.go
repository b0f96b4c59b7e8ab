package availability

import "time"

type Polarity string

const (
	Available Polarity = "available"
	Busy      Polarity = "busy"
)

func (p Polarity) Valid() bool {
	return p == Available || p == Busy
}

// Block is the engine's view of a time block. Start must be before End.
type Block struct {
	ID       string
	OwnerID  string
	Start    time.Time
	End      time.Time
	Polarity Polarity
	AllDay   bool
}

// ClampedInterval is a block restricted to a single calendar day. Minutes are
// counted from that day's midnight; EndMinute is MinutesPerDay when the block
// runs to (or past) the end of the day.
type ClampedInterval struct {
	BlockID     string
	OwnerID     string
	Polarity    Polarity
	StartMinute int
	EndMinute   int
}

// Normalize widens an all-day block to the first instant of its start day and
// the last instant of its end day in loc. Other blocks are returned unchanged.
func Normalize(b Block, loc *time.Location) Block {
	if !b.AllDay {
		return b
	}
	b.Start = StartOfDay(b.Start.In(loc))
	b.End = EndOfDay(b.End.In(loc))
	return b
}

// ClampToDay intersects b with the calendar day containing day, using day's
// location. It reports false when the intersection is empty, including
// slivers shorter than a minute.
func ClampToDay(b Block, day time.Time) (ClampedInterval, bool) {
	loc := day.Location()
	b = Normalize(b, loc)
	dayStart, dayEnd := DayBounds(day)

	start := b.Start.In(loc)
	end := b.End.In(loc)
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !start.Before(end) {
		return ClampedInterval{}, false
	}

	endMinute := minuteOfDay(end)
	if isEndOfDay(end, dayEnd) {
		endMinute = MinutesPerDay
	}
	startMinute := minuteOfDay(start)
	if startMinute >= endMinute {
		// When clocks fall back the wall clock repeats an hour, so a block
		// can end at an earlier minute than it starts. Count its real length.
		elapsed := int(end.Sub(start) / time.Minute)
		endMinute = min(startMinute+elapsed, MinutesPerDay)
	}
	if startMinute >= endMinute {
		return ClampedInterval{}, false
	}

	return ClampedInterval{
		BlockID:     b.ID,
		OwnerID:     b.OwnerID,
		Polarity:    b.Polarity,
		StartMinute: startMinute,
		EndMinute:   endMinute,
	}, true
}

// ClampBlocks clamps every block to day and drops the ones that miss it.
func ClampBlocks(blocks []Block, day time.Time) []ClampedInterval {
	intervals := make([]ClampedInterval, 0, len(blocks))
	for _, b := range blocks {
		if iv, ok := ClampToDay(b, day); ok {
			intervals = append(intervals, iv)
		}
	}
	return intervals
}

func FilterPolarity(blocks []Block, p Polarity) []Block {
	filtered := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Polarity == p {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
