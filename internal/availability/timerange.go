package availability

import "time"

// MinutesPerDay is the minute value used for the end of a day.
const MinutesPerDay = 24 * 60

// An end this close to the next midnight is treated as end-of-day.
const endOfDayTolerance = time.Second

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func NextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return NextDay(t).Add(-time.Nanosecond)
}

// DayBounds returns the half-open range [dayStart, dayEnd) of the calendar
// day containing t, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), NextDay(t)
}

// Days lists the midnights of every calendar day that [from, to) touches.
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for day := StartOfDay(from); day.Before(to); day = NextDay(day) {
		days = append(days, day)
	}
	return days
}

// MinuteTime converts a minute of day back into an instant on day.
func MinuteTime(day time.Time, minute int) time.Time {
	if minute >= MinutesPerDay {
		return NextDay(day)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, day.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func isEndOfDay(t, dayEnd time.Time) bool {
	return dayEnd.Sub(t) < endOfDayTolerance
}
