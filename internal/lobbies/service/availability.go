package service

import (
	"context"
	"fmt"
	"time"

	"huddle/internal/availability"
	apperrors "huddle/pkg/errors"
	"huddle/pkg/model"
)

// DaySlots sweeps the blocks of one lobby day. Available blocks are used
// unless the query asks for busy ones or for both polarities mixed.
func (s *lobbyService) DaySlots(ctx context.Context, code string, query model.SlotQuery) (*model.DaySlots, error) {
	polarity := query.Polarity
	if polarity == "" {
		polarity = string(availability.Available)
	}
	if polarity != model.PolarityAll && !availability.Polarity(polarity).Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid polarity %q, expected available, busy or all", query.Polarity))
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	loc := s.location(lobby)
	y, m, d := query.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayStart, dayEnd := availability.DayBounds(day)

	stored, err := s.repo.ListBlocksBetween(ctx, lobby.Code, dayStart, dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to list time blocks for day",
			"code", lobby.Code,
			"date", day.Format(time.DateOnly),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve time blocks", err)
	}

	blocks := toEngineBlocks(stored)
	if polarity != model.PolarityAll {
		blocks = availability.FilterPolarity(blocks, availability.Polarity(polarity))
	}

	computed := availability.DaySlots(blocks, day)
	overlaps := availability.OverlapsOnly(computed)
	if query.OverlapOnly {
		computed = overlaps
	}

	slots := make([]model.Slot, 0, len(computed))
	for _, ts := range computed {
		start, end := ts.Bounds(day)
		slots = append(slots, model.Slot{
			Start:        start,
			End:          end,
			StartMinute:  ts.StartMinute,
			EndMinute:    ts.EndMinute,
			Participants: ts.Participants,
			IsOverlap:    ts.IsOverlap,
		})
	}

	return &model.DaySlots{
		Date:         day.Format(time.DateOnly),
		TimeZone:     loc.String(),
		Polarity:     polarity,
		Slots:        slots,
		OverlapCount: len(overlaps),
	}, nil
}

func (s *lobbyService) MonthGrid(ctx context.Context, code string, year int, month time.Month) (*model.MonthCalendar, error) {
	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	loc := s.location(lobby)
	gridStart, gridEnd := availability.GridBounds(year, month, loc)

	stored, err := s.repo.ListBlocksBetween(ctx, lobby.Code, gridStart, gridEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to list time blocks for month",
			"code", lobby.Code,
			"year", year,
			"month", int(month),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve time blocks", err)
	}

	byID := make(map[string]model.TimeBlock, len(stored))
	for _, b := range stored {
		byID[b.ID] = b
	}

	grid := availability.MonthGrid(year, month, loc, toEngineBlocks(stored), s.now())
	days := make([]model.CalendarDay, 0, len(grid))
	for _, cell := range grid {
		blocks := make([]model.TimeBlock, 0, len(cell.Blocks))
		for _, b := range cell.Blocks {
			blocks = append(blocks, byID[b.ID])
		}
		days = append(days, model.CalendarDay{
			Date:       cell.Date.Format(time.DateOnly),
			InMonth:    cell.InMonth,
			IsToday:    cell.IsToday,
			HasOverlap: cell.HasOverlap,
			Blocks:     blocks,
		})
	}

	return &model.MonthCalendar{
		Year:     year,
		Month:    int(month),
		TimeZone: loc.String(),
		Days:     days,
	}, nil
}
