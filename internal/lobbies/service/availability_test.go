package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	apperrors "huddle/pkg/errors"
	"huddle/pkg/model"
)

func seedDay(repo *fakeRepository, day time.Time) {
	add := func(id, owner, blockType string, start, end time.Time) {
		repo.blocks[id] = model.TimeBlock{
			ID: id, LobbyCode: testLobby, OwnerID: owner,
			Start: start, End: end, BlockType: blockType,
		}
	}
	add("a1", "a", model.BlockAvailable, at(day, 9, 0), at(day, 11, 0))
	add("a2", "a", model.BlockAvailable, at(day, 10, 0), at(day, 12, 0))
	add("b1", "b", model.BlockAvailable, at(day, 11, 0), at(day, 14, 0))
	add("c1", "c", model.BlockBusy, at(day, 10, 0), at(day, 11, 0))
	add("next", "c", model.BlockAvailable, at(day, 25, 0), at(day, 26, 0))
}

func TestDaySlots(t *testing.T) {
	day := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     model.SlotQuery
		want      []model.Slot
		wantPol   string
		wantCount int
	}{
		{
			name:    "available by default",
			query:   model.SlotQuery{Date: day},
			wantPol: "available",
			want: []model.Slot{
				{StartMinute: 540, EndMinute: 660, Participants: []string{"a"}},
				{StartMinute: 660, EndMinute: 720, Participants: []string{"a", "b"}, IsOverlap: true},
				{StartMinute: 720, EndMinute: 840, Participants: []string{"b"}},
			},
			wantCount: 1,
		},
		{
			name:    "overlaps only",
			query:   model.SlotQuery{Date: day, OverlapOnly: true},
			wantPol: "available",
			want: []model.Slot{
				{StartMinute: 660, EndMinute: 720, Participants: []string{"a", "b"}, IsOverlap: true},
			},
			wantCount: 1,
		},
		{
			name:    "busy",
			query:   model.SlotQuery{Date: day, Polarity: "busy"},
			wantPol: "busy",
			want: []model.Slot{
				{StartMinute: 600, EndMinute: 660, Participants: []string{"c"}},
			},
		},
		{
			name:    "mixed polarities",
			query:   model.SlotQuery{Date: day, Polarity: "all"},
			wantPol: "all",
			want: []model.Slot{
				{StartMinute: 540, EndMinute: 600, Participants: []string{"a"}},
				{StartMinute: 600, EndMinute: 660, Participants: []string{"a", "c"}, IsOverlap: true},
				{StartMinute: 660, EndMinute: 720, Participants: []string{"a", "b"}, IsOverlap: true},
				{StartMinute: 720, EndMinute: 840, Participants: []string{"b"}},
			},
			wantCount: 2,
		},
		{
			name:    "empty day",
			query:   model.SlotQuery{Date: day.AddDate(0, 0, 3)},
			wantPol: "available",
			want:    []model.Slot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			seedLobby(repo, testLobby, "UTC")
			seedDay(repo, day)

			got, err := svc.DaySlots(context.Background(), testLobby, tt.query)
			if err != nil {
				t.Fatalf("DaySlots() error = %v", err)
			}
			if got.Polarity != tt.wantPol || got.TimeZone != "UTC" {
				t.Errorf("DaySlots() polarity = %s, time zone = %s", got.Polarity, got.TimeZone)
			}
			if got.Date != tt.query.Date.Format(time.DateOnly) {
				t.Errorf("Date = %s", got.Date)
			}
			if got.OverlapCount != tt.wantCount {
				t.Errorf("OverlapCount = %d, want %d", got.OverlapCount, tt.wantCount)
			}
			if diff := cmp.Diff(tt.want, got.Slots, cmpopts.IgnoreFields(model.Slot{}, "Start", "End")); diff != "" {
				t.Errorf("DaySlots() mismatch (-want +got):\n%s", diff)
			}
			for _, s := range got.Slots {
				if s.Start.Sub(day) != time.Duration(s.StartMinute)*time.Minute {
					t.Errorf("slot start %v does not match minute %d", s.Start, s.StartMinute)
				}
			}
		})
	}
}

func TestDaySlots_LobbyTimeZone(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedLobby(repo, testLobby, "America/New_York")
	repo.blocks["late"] = model.TimeBlock{
		ID: "late", LobbyCode: testLobby, OwnerID: "a", BlockType: model.BlockAvailable,
		Start: time.Date(2026, time.October, 17, 1, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.October, 17, 3, 0, 0, 0, time.UTC),
	}

	got, err := svc.DaySlots(context.Background(), testLobby, model.SlotQuery{Date: time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("DaySlots() error = %v", err)
	}
	if got.TimeZone != "America/New_York" {
		t.Errorf("TimeZone = %s", got.TimeZone)
	}
	if len(got.Slots) != 1 || got.Slots[0].StartMinute != 21*60 || got.Slots[0].EndMinute != 23*60 {
		t.Errorf("Slots = %+v, want 21:00-23:00 local", got.Slots)
	}
}

func TestDaySlots_Errors(t *testing.T) {
	day := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	svc, repo, _ := newTestService(t)
	seedLobby(repo, testLobby, "UTC")

	_, err := svc.DaySlots(context.Background(), testLobby, model.SlotQuery{Date: day, Polarity: "maybe"})
	wantAppError(t, err, apperrors.CodeInvalidInput)

	_, err = svc.DaySlots(context.Background(), "XYZ789", model.SlotQuery{Date: day})
	wantAppError(t, err, apperrors.CodeNotFound)

	repo.listBlocksErr = errors.New("connection reset")
	_, err = svc.DaySlots(context.Background(), testLobby, model.SlotQuery{Date: day})
	wantAppError(t, err, apperrors.CodeInternal)
}

func TestMonthGrid(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedLobby(repo, testLobby, "UTC")
	day := time.Date(2026, time.October, 5, 0, 0, 0, 0, time.UTC)
	repo.blocks["a1"] = model.TimeBlock{ID: "a1", LobbyCode: testLobby, OwnerID: "a", BlockType: model.BlockAvailable, Start: at(day, 9, 0), End: at(day, 11, 0), Title: "Coffee"}
	repo.blocks["b1"] = model.TimeBlock{ID: "b1", LobbyCode: testLobby, OwnerID: "b", BlockType: model.BlockAvailable, Start: at(day, 18, 0), End: at(day, 19, 0)}
	repo.blocks["far"] = model.TimeBlock{ID: "far", LobbyCode: testLobby, OwnerID: "b", BlockType: model.BlockAvailable, Start: day.AddDate(0, 2, 0), End: day.AddDate(0, 2, 1)}

	cal, err := svc.MonthGrid(context.Background(), testLobby, 2026, time.October)
	if err != nil {
		t.Fatalf("MonthGrid() error = %v", err)
	}

	if cal.Year != 2026 || cal.Month != 10 || cal.TimeZone != "UTC" {
		t.Errorf("MonthGrid() header = %d-%d %s", cal.Year, cal.Month, cal.TimeZone)
	}
	if len(cal.Days) != 35 || cal.Days[0].Date != "2026-09-27" {
		t.Fatalf("grid has %d days starting %s, want 35 from 2026-09-27", len(cal.Days), cal.Days[0].Date)
	}

	for _, cell := range cal.Days {
		switch cell.Date {
		case "2026-10-05":
			if !cell.HasOverlap || len(cell.Blocks) != 2 {
				t.Errorf("Oct 5 = %+v, want two blocks flagged as overlap", cell)
			} else if cell.Blocks[0].Title != "Coffee" {
				t.Errorf("block lost its fields: %+v", cell.Blocks[0])
			}
		case "2026-10-16":
			if !cell.IsToday {
				t.Error("Oct 16 should be today")
			}
		case "2026-09-30":
			if cell.InMonth {
				t.Error("Sep 30 should be outside the month")
			}
		}
		if cell.Blocks == nil {
			t.Errorf("%s: Blocks should be an empty list, not nil", cell.Date)
		}
	}
}
