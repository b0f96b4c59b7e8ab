package model

import "time"

const PolarityAll = "all"

type Slot struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	StartMinute  int       `json:"start_minute"`
	EndMinute    int       `json:"end_minute"`
	Participants []string  `json:"participants"`
	IsOverlap    bool      `json:"is_overlap"`
}

type DaySlots struct {
	Date         string `json:"date"`
	TimeZone     string `json:"time_zone"`
	Polarity     string `json:"polarity"`
	Slots        []Slot `json:"slots"`
	OverlapCount int    `json:"overlap_count"`
}

type CalendarDay struct {
	Date       string      `json:"date"`
	InMonth    bool        `json:"in_month"`
	IsToday    bool        `json:"is_today"`
	HasOverlap bool        `json:"has_overlap"`
	Blocks     []TimeBlock `json:"blocks"`
}

type MonthCalendar struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	TimeZone string        `json:"time_zone"`
	Days     []CalendarDay `json:"days"`
}

// SlotQuery selects the day to sweep. Only the calendar date of Date is used;
// it is read in the lobby's time zone.
type SlotQuery struct {
	Date        time.Time
	Polarity    string
	OverlapOnly bool
}
