package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"huddle/internal/availability"
	"huddle/internal/live"
	lobbyerrors "huddle/internal/lobbies/errors"
	apperrors "huddle/pkg/errors"
	"huddle/pkg/model"
	"huddle/pkg/sanitizer"
)

func (s *lobbyService) CreateBlock(ctx context.Context, code string, req *model.CreateBlockRequest) (*model.TimeBlock, error) {
	req.ID = sanitizer.TrimAndNormalize(req.ID)
	req.OwnerID = sanitizer.TrimAndNormalize(req.OwnerID)
	req.Title = sanitizer.TrimAndNormalize(req.Title)
	req.Note = sanitizer.NormalizeNote(req.Note)

	if err := s.validate(req, "Time block validation failed"); err != nil {
		return nil, err
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	block := &model.TimeBlock{
		ID:        req.ID,
		LobbyCode: lobby.Code,
		OwnerID:   req.OwnerID,
		Start:     req.Start,
		End:       req.End,
		BlockType: req.BlockType,
		AllDay:    req.AllDay,
		Title:     req.Title,
		Note:      req.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.BlockType == "" {
		block.BlockType = model.BlockAvailable
	}
	if err := s.normalizeBlock(block, s.location(lobby)); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindParticipant(txCtx, lobby.Code, block.OwnerID); err != nil {
			return err
		}
		return s.repo.CreateBlock(txCtx, block)
	})
	if err != nil {
		switch {
		case errors.Is(err, lobbyerrors.ErrParticipantNotFound):
			s.cfg.Log.Warn("Time block owner is not in the lobby", "code", lobby.Code, "owner_id", block.OwnerID)
			return nil, apperrors.Validation("Time block validation failed", map[string]any{
				"owner_id": "owner_id is not a participant of this lobby",
			})
		case errors.Is(err, lobbyerrors.ErrBlockExists):
			return nil, apperrors.Conflict("A time block with this id already exists")
		}
		s.cfg.Log.Error("Failed to create time block",
			"code", lobby.Code,
			"owner_id", block.OwnerID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create time block", err)
	}

	s.cfg.Log.Info("Time block created",
		"code", lobby.Code,
		"id", block.ID,
		"owner_id", block.OwnerID,
		"block_type", block.BlockType,
		"all_day", block.AllDay,
	)
	s.publish(ctx, lobby.Code, live.EventBlockAdded, block)

	return block, nil
}

func (s *lobbyService) UpdateBlock(ctx context.Context, code, id string, req *model.UpdateBlockRequest) (*model.TimeBlock, error) {
	if req.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}
	s.sanitizeUpdate(req)

	if err := s.validate(req, "Time block validation failed"); err != nil {
		return nil, err
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFoundWithID("Time block", id)
	}

	existing, err := s.repo.FindBlock(ctx, lobby.Code, id)
	if err != nil {
		if errors.Is(err, lobbyerrors.ErrBlockNotFound) {
			return nil, apperrors.NotFoundWithID("Time block", id)
		}
		s.cfg.Log.Error("Failed to get time block", "code", lobby.Code, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve time block", err)
	}

	merged := mergeBlockUpdate(existing, req)
	merged.UpdatedAt = s.now()
	if err := s.normalizeBlock(merged, s.location(lobby)); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBlock(ctx, merged); err != nil {
		if errors.Is(err, lobbyerrors.ErrBlockNotFound) {
			return nil, apperrors.NotFoundWithID("Time block", id)
		}
		s.cfg.Log.Error("Failed to update time block", "code", lobby.Code, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update time block", err)
	}

	s.cfg.Log.Info("Time block updated", "code", lobby.Code, "id", id)
	s.publish(ctx, lobby.Code, live.EventBlockUpdated, merged)

	return merged, nil
}

func (s *lobbyService) DeleteBlock(ctx context.Context, code, id string) error {
	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFoundWithID("Time block", id)
	}

	if err := s.repo.DeleteBlock(ctx, lobby.Code, id); err != nil {
		if errors.Is(err, lobbyerrors.ErrBlockNotFound) {
			return apperrors.NotFoundWithID("Time block", id)
		}
		s.cfg.Log.Error("Failed to delete time block", "code", lobby.Code, "id", id, "error", err)
		return apperrors.Internal("Failed to delete time block", err)
	}

	s.cfg.Log.Info("Time block deleted", "code", lobby.Code, "id", id)
	s.publish(ctx, lobby.Code, live.EventBlockDeleted, map[string]string{"id": id})

	return nil
}

// normalizeBlock widens all-day blocks to whole days in loc, trims times to
// the millisecond precision every store keeps, and enforces start < end.
func (s *lobbyService) normalizeBlock(block *model.TimeBlock, loc *time.Location) error {
	if block.AllDay {
		normalized := availability.Normalize(toEngineBlock(*block), loc)
		block.Start, block.End = normalized.Start, normalized.End
	}
	block.Start = block.Start.Truncate(time.Millisecond)
	block.End = block.End.Truncate(time.Millisecond)

	if !block.Start.Before(block.End) {
		s.cfg.Log.Warn("Time block ends before it starts",
			"code", block.LobbyCode,
			"start", block.Start,
			"end", block.End,
		)
		return apperrors.Validation("Time block validation failed", map[string]any{
			"end": "end must be after start",
		})
	}
	return nil
}

func (s *lobbyService) sanitizeUpdate(req *model.UpdateBlockRequest) {
	if req.Title != nil {
		title := sanitizer.TrimAndNormalize(*req.Title)
		req.Title = &title
	}
	if req.Note != nil {
		note := sanitizer.NormalizeNote(*req.Note)
		req.Note = &note
	}
}

func mergeBlockUpdate(existing *model.TimeBlock, req *model.UpdateBlockRequest) *model.TimeBlock {
	merged := *existing

	if req.Start != nil {
		merged.Start = *req.Start
	}
	if req.End != nil {
		merged.End = *req.End
	}
	if req.BlockType != nil {
		merged.BlockType = *req.BlockType
	}
	if req.AllDay != nil {
		merged.AllDay = *req.AllDay
	}
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.Note != nil {
		merged.Note = *req.Note
	}

	return &merged
}

func toEngineBlock(b model.TimeBlock) availability.Block {
	return availability.Block{
		ID:       b.ID,
		OwnerID:  b.OwnerID,
		Start:    b.Start,
		End:      b.End,
		Polarity: availability.Polarity(b.BlockType),
		AllDay:   b.AllDay,
	}
}

func toEngineBlocks(blocks []model.TimeBlock) []availability.Block {
	engine := make([]availability.Block, 0, len(blocks))
	for _, b := range blocks {
		engine = append(engine, toEngineBlock(b))
	}
	return engine
}
