package availability

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestClampToDay(t *testing.T) {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	prev := day.AddDate(0, 0, -1)
	next := day.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		block     Block
		wantOK    bool
		wantStart int
		wantEnd   int
	}{
		{
			name:      "inside the day",
			block:     Block{OwnerID: "a", Start: at(day, 9, 0), End: at(day, 10, 30)},
			wantOK:    true,
			wantStart: 540,
			wantEnd:   630,
		},
		{
			name:      "starts the previous evening",
			block:     Block{OwnerID: "a", Start: at(prev, 22, 0), End: at(day, 2, 0)},
			wantOK:    true,
			wantStart: 0,
			wantEnd:   120,
		},
		{
			name:      "runs past midnight",
			block:     Block{OwnerID: "a", Start: at(day, 22, 0), End: at(next, 2, 0)},
			wantOK:    true,
			wantStart: 1320,
			wantEnd:   MinutesPerDay,
		},
		{
			name:      "ends exactly at midnight",
			block:     Block{OwnerID: "a", Start: at(day, 20, 0), End: next},
			wantOK:    true,
			wantStart: 1200,
			wantEnd:   MinutesPerDay,
		},
		{
			name:      "ends at the last millisecond",
			block:     Block{OwnerID: "a", Start: at(day, 20, 0), End: next.Add(-time.Millisecond)},
			wantOK:    true,
			wantStart: 1200,
			wantEnd:   MinutesPerDay,
		},
		{
			name:      "ends a minute before midnight",
			block:     Block{OwnerID: "a", Start: at(day, 20, 0), End: at(day, 23, 59)},
			wantOK:    true,
			wantStart: 1200,
			wantEnd:   1439,
		},
		{
			name:   "entirely on another day",
			block:  Block{OwnerID: "a", Start: at(next, 9, 0), End: at(next, 10, 0)},
			wantOK: false,
		},
		{
			name:   "ends at the day's first instant",
			block:  Block{OwnerID: "a", Start: at(prev, 20, 0), End: day},
			wantOK: false,
		},
		{
			name:   "shorter than a minute",
			block:  Block{OwnerID: "a", Start: at(day, 9, 0).Add(10 * time.Second), End: at(day, 9, 0).Add(40 * time.Second)},
			wantOK: false,
		},
		{
			name:   "inverted",
			block:  Block{OwnerID: "a", Start: at(day, 11, 0), End: at(day, 10, 0)},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClampToDay(tt.block, day)
			if ok != tt.wantOK {
				t.Fatalf("ClampToDay() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.StartMinute != tt.wantStart || got.EndMinute != tt.wantEnd {
				t.Errorf("ClampToDay() = [%d, %d), want [%d, %d)", got.StartMinute, got.EndMinute, tt.wantStart, tt.wantEnd)
			}
			if got.OwnerID != tt.block.OwnerID {
				t.Errorf("ClampToDay() owner = %q, want %q", got.OwnerID, tt.block.OwnerID)
			}
		})
	}
}

func TestClampToDay_AllDayAcrossThreeDays(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	first := time.Date(2026, time.June, 1, 0, 0, 0, 0, loc)
	block := Block{
		OwnerID:  "a",
		Start:    first.Add(13 * time.Hour),
		End:      first.AddDate(0, 0, 2).Add(8 * time.Hour),
		Polarity: Available,
		AllDay:   true,
	}

	for i := 0; i < 3; i++ {
		day := first.AddDate(0, 0, i)
		got, ok := ClampToDay(block, day)
		if !ok {
			t.Fatalf("day %d: expected an interval", i)
		}
		if got.StartMinute != 0 || got.EndMinute != MinutesPerDay {
			t.Errorf("day %d: got [%d, %d), want the full day", i, got.StartMinute, got.EndMinute)
		}
	}

	for _, day := range []time.Time{first.AddDate(0, 0, -1), first.AddDate(0, 0, 3)} {
		if _, ok := ClampToDay(block, day); ok {
			t.Errorf("%s: expected no interval outside the block's days", day.Format(time.DateOnly))
		}
	}
}

func TestClampToDay_UsesDayLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)
	block := Block{
		OwnerID: "a",
		Start:   time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC),
		End:     time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
	}

	got, ok := ClampToDay(block, day)
	if !ok {
		t.Fatal("expected an interval")
	}
	if got.StartMinute != 9*60 || got.EndMinute != 10*60 {
		t.Errorf("got [%d, %d), want [540, 600)", got.StartMinute, got.EndMinute)
	}
}

func TestClampToDay_RepeatedHourWhenClocksFallBack(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2026, time.November, 1, 0, 0, 0, 0, loc)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantOK    bool
		wantStart int
		wantEnd   int
	}{
		{
			name:      "01:30 EDT to 01:10 EST",
			start:     time.Date(2026, time.November, 1, 5, 30, 0, 0, time.UTC),
			end:       time.Date(2026, time.November, 1, 6, 10, 0, 0, time.UTC),
			wantOK:    true,
			wantStart: 90,
			wantEnd:   130,
		},
		{
			name:      "01:00 EDT to 02:00 EST keeps wall-clock minutes",
			start:     time.Date(2026, time.November, 1, 5, 0, 0, 0, time.UTC),
			end:       time.Date(2026, time.November, 1, 7, 0, 0, 0, time.UTC),
			wantOK:    true,
			wantStart: 60,
			wantEnd:   120,
		},
		{
			name:   "under a minute inside the repeated hour",
			start:  time.Date(2026, time.November, 1, 5, 59, 30, 0, time.UTC),
			end:    time.Date(2026, time.November, 1, 6, 0, 10, 0, time.UTC),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClampToDay(Block{OwnerID: "a", Start: tt.start, End: tt.end}, day)
			if ok != tt.wantOK {
				t.Fatalf("ClampToDay() ok = %v, want %v (got %+v)", ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got.StartMinute != tt.wantStart || got.EndMinute != tt.wantEnd {
				t.Errorf("got [%d, %d), want [%d, %d)", got.StartMinute, got.EndMinute, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	regular := Block{Start: at(day, 9, 0), End: at(day, 10, 0)}
	if got := Normalize(regular, time.UTC); !got.Start.Equal(regular.Start) || !got.End.Equal(regular.End) {
		t.Errorf("Normalize() changed a regular block: %+v", got)
	}

	allDay := Block{Start: at(day, 9, 0), End: at(day.AddDate(0, 0, 1), 10, 0), AllDay: true}
	got := Normalize(allDay, time.UTC)
	if !got.Start.Equal(day) {
		t.Errorf("Normalize() start = %v, want %v", got.Start, day)
	}
	wantEnd := day.AddDate(0, 0, 2).Add(-time.Nanosecond)
	if !got.End.Equal(wantEnd) {
		t.Errorf("Normalize() end = %v, want %v", got.End, wantEnd)
	}
}

func TestDays(t *testing.T) {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{name: "within one day", from: at(day, 9, 0), to: at(day, 10, 0), want: 1},
		{name: "ends at midnight", from: at(day, 9, 0), to: day.AddDate(0, 0, 1), want: 1},
		{name: "crosses midnight", from: at(day, 22, 0), to: at(day.AddDate(0, 0, 1), 1, 0), want: 2},
		{name: "all-day end", from: day, to: EndOfDay(day.AddDate(0, 0, 2)), want: 3},
		{name: "zero length", from: at(day, 9, 0), to: at(day, 9, 0), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Days(tt.from, tt.to); len(got) != tt.want {
				t.Errorf("Days() returned %d days, want %d", len(got), tt.want)
			}
		})
	}
}
