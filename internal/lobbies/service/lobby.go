package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"huddle/internal/live"
	lobbyerrors "huddle/internal/lobbies/errors"
	"huddle/internal/lobbies/repository"
	"huddle/internal/lobbies/validator"
	"huddle/pkg/codes"
	"huddle/pkg/config"
	apperrors "huddle/pkg/errors"
	"huddle/pkg/middleware"
	"huddle/pkg/model"
	"huddle/pkg/sanitizer"
)

const maxCodeAttempts = 5

// Broker is the part of live.Broker the service needs.
type Broker interface {
	Publish(lobbyCode string, event live.Event) int
	Subscribe(lobbyCode string) (*live.Subscriber, error)
	Unsubscribe(sub *live.Subscriber)
}

type LobbyService interface {
	CreateLobby(ctx context.Context, req *model.CreateLobbyRequest) (*model.Lobby, error)
	GetSnapshot(ctx context.Context, code string) (*model.LobbySnapshot, error)

	Join(ctx context.Context, code string, req *model.JoinRequest) (*model.Participant, error)
	Link(ctx context.Context, code string, req *model.LinkRequest) (*model.Participant, error)
	Leave(ctx context.Context, code string, req *model.LeaveRequest) error

	CreateBlock(ctx context.Context, code string, req *model.CreateBlockRequest) (*model.TimeBlock, error)
	UpdateBlock(ctx context.Context, code, id string, req *model.UpdateBlockRequest) (*model.TimeBlock, error)
	DeleteBlock(ctx context.Context, code, id string) error

	DaySlots(ctx context.Context, code string, query model.SlotQuery) (*model.DaySlots, error)
	MonthGrid(ctx context.Context, code string, year int, month time.Month) (*model.MonthCalendar, error)

	// Subscribe registers a live subscriber for an existing lobby. The caller
	// must hand it back to Unsubscribe.
	Subscribe(ctx context.Context, code string) (*live.Subscriber, error)
	Unsubscribe(sub *live.Subscriber)
}

type lobbyService struct {
	repo      repository.Repository
	validator *validator.LobbyValidator
	broker    Broker
	cfg       *config.Config

	now          func() time.Time
	generateCode func(length int) (string, error)
}

func NewLobbyService(
	repo repository.Repository,
	validator *validator.LobbyValidator,
	broker Broker,
	cfg *config.Config,
) LobbyService {
	return &lobbyService{
		repo:         repo,
		validator:    validator,
		broker:       broker,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
		generateCode: codes.Generate,
	}
}

func (s *lobbyService) CreateLobby(ctx context.Context, req *model.CreateLobbyRequest) (*model.Lobby, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.TimeZone = sanitizer.TrimAndNormalize(req.TimeZone)

	if err := s.validate(req, "Lobby validation failed"); err != nil {
		return nil, err
	}

	timeZone := req.TimeZone
	if timeZone == "" {
		timeZone = s.cfg.DefaultTimeZone
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.generateCode(s.cfg.LobbyCodeLength)
		if err != nil {
			return nil, apperrors.Internal("Failed to generate lobby code", err)
		}

		lobby := &model.Lobby{
			Code:      code,
			Name:      req.Name,
			TimeZone:  timeZone,
			CreatedAt: s.now(),
		}
		if lobby.Name == "" {
			lobby.Name = "Lobby " + code
		}

		err = s.repo.CreateLobby(ctx, lobby)
		if errors.Is(err, lobbyerrors.ErrCodeTaken) {
			s.cfg.Log.Warn("Lobby code collision, retrying", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			s.cfg.Log.Error("Failed to create lobby", "code", code, "error", err)
			return nil, apperrors.Internal("Failed to create lobby", err)
		}

		s.cfg.Log.Info("Lobby created", "code", lobby.Code, "time_zone", lobby.TimeZone)
		return lobby, nil
	}

	s.cfg.Log.Error("Could not find a free lobby code", "attempts", maxCodeAttempts)
	return nil, apperrors.Conflict("Could not allocate a unique lobby code, please try again")
}

func (s *lobbyService) GetSnapshot(ctx context.Context, code string) (*model.LobbySnapshot, error) {
	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	var participants []model.Participant
	var blocks []model.TimeBlock
	var errParticipants, errBlocks error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		participants, err = s.repo.ListParticipants(ctx, lobby.Code, true)
		if err != nil {
			s.cfg.Log.Error("Failed to list participants", "code", lobby.Code, "error", err)
			errParticipants = apperrors.Internal("Failed to retrieve participants", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		blocks, err = s.repo.ListBlocks(ctx, lobby.Code)
		if err != nil {
			s.cfg.Log.Error("Failed to list time blocks", "code", lobby.Code, "error", err)
			errBlocks = apperrors.Internal("Failed to retrieve time blocks", err)
		}
	}()
	wg.Wait()

	if errParticipants != nil {
		return nil, errParticipants
	}
	if errBlocks != nil {
		return nil, errBlocks
	}

	if participants == nil {
		participants = []model.Participant{}
	}
	if blocks == nil {
		blocks = []model.TimeBlock{}
	}

	return &model.LobbySnapshot{
		Lobby:        *lobby,
		Participants: participants,
		TimeBlocks:   blocks,
	}, nil
}

func (s *lobbyService) Join(ctx context.Context, code string, req *model.JoinRequest) (*model.Participant, error) {
	req.ID = sanitizer.TrimAndNormalize(req.ID)
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Color = sanitizer.NormalizeColor(req.Color)

	if err := s.validate(req, "Participant validation failed"); err != nil {
		return nil, err
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	var existing *model.Participant
	if req.ID != "" {
		existing, err = s.repo.FindParticipant(ctx, lobby.Code, req.ID)
		if err != nil && !errors.Is(err, lobbyerrors.ErrParticipantNotFound) {
			s.cfg.Log.Error("Failed to look up participant", "code", lobby.Code, "participant_id", req.ID, "error", err)
			return nil, apperrors.Internal("Failed to join lobby", err)
		}
	}

	now := s.now()
	participant := &model.Participant{
		ID:         req.ID,
		LobbyCode:  lobby.Code,
		Name:       req.Name,
		Color:      req.Color,
		IsActive:   true,
		JoinedAt:   now,
		LastSeenAt: now,
	}
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.Color == "" {
		participant.Color, err = s.pickColor(ctx, lobby.Code, existing)
		if err != nil {
			return nil, err
		}
	}

	var stored *model.Participant
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		participant.UserCode, err = s.generateCode(s.cfg.UserCodeLength)
		if err != nil {
			return nil, apperrors.Internal("Failed to generate user code", err)
		}

		stored, err = s.repo.UpsertParticipant(ctx, participant)
		if errors.Is(err, lobbyerrors.ErrUserCodeTaken) {
			s.cfg.Log.Warn("User code collision, retrying", "code", lobby.Code, "attempt", attempt)
			continue
		}
		break
	}
	if errors.Is(err, lobbyerrors.ErrUserCodeTaken) {
		return nil, apperrors.Conflict("Could not allocate a unique user code, please try again")
	}
	if err != nil {
		s.cfg.Log.Error("Failed to upsert participant", "code", lobby.Code, "participant_id", participant.ID, "error", err)
		return nil, apperrors.Internal("Failed to join lobby", err)
	}

	s.cfg.Log.Info("Participant joined",
		"code", lobby.Code,
		"participant_id", stored.ID,
		"rejoin", existing != nil,
	)
	s.publish(ctx, lobby.Code, live.EventUserJoined, stored)

	return stored, nil
}

// pickColor keeps a returning participant's color and otherwise cycles
// through the palette by lobby size.
func (s *lobbyService) pickColor(ctx context.Context, code string, existing *model.Participant) (string, error) {
	if existing != nil && existing.Color != "" {
		return existing.Color, nil
	}
	participants, err := s.repo.ListParticipants(ctx, code, false)
	if err != nil {
		s.cfg.Log.Error("Failed to count participants", "code", code, "error", err)
		return "", apperrors.Internal("Failed to join lobby", err)
	}
	return model.Colors[len(participants)%len(model.Colors)], nil
}

func (s *lobbyService) Link(ctx context.Context, code string, req *model.LinkRequest) (*model.Participant, error) {
	req.UserCode = codes.Normalize(req.UserCode)

	if err := s.validate(req, "Link validation failed"); err != nil {
		return nil, err
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	var linked *model.Participant
	err = s.repo.WithTransaction(ctx, func(txCtx context.Context) error {
		participant, err := s.repo.FindParticipantByUserCode(txCtx, lobby.Code, req.UserCode)
		if err != nil {
			return err
		}
		linked, err = s.repo.SetParticipantActive(txCtx, lobby.Code, participant.ID, true, s.now())
		return err
	})
	if err != nil {
		if errors.Is(err, lobbyerrors.ErrParticipantNotFound) {
			return nil, apperrors.NotFoundWithID("Participant", req.UserCode)
		}
		s.cfg.Log.Error("Failed to link participant", "code", lobby.Code, "error", err)
		return nil, apperrors.Internal("Failed to link participant", err)
	}

	s.cfg.Log.Info("Participant linked", "code", lobby.Code, "participant_id", linked.ID)
	s.publish(ctx, lobby.Code, live.EventUserJoined, linked)

	return linked, nil
}

func (s *lobbyService) Leave(ctx context.Context, code string, req *model.LeaveRequest) error {
	req.UserID = sanitizer.TrimAndNormalize(req.UserID)

	if err := s.validate(req, "Leave validation failed"); err != nil {
		return err
	}

	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return err
	}

	if _, err := s.repo.SetParticipantActive(ctx, lobby.Code, req.UserID, false, s.now()); err != nil {
		if errors.Is(err, lobbyerrors.ErrParticipantNotFound) {
			return apperrors.NotFoundWithID("Participant", req.UserID)
		}
		s.cfg.Log.Error("Failed to mark participant inactive", "code", lobby.Code, "participant_id", req.UserID, "error", err)
		return apperrors.Internal("Failed to leave lobby", err)
	}

	s.cfg.Log.Info("Participant left", "code", lobby.Code, "participant_id", req.UserID)
	s.publish(ctx, lobby.Code, live.EventUserLeft, map[string]string{"user_id": req.UserID})

	return nil
}

func (s *lobbyService) Subscribe(ctx context.Context, code string) (*live.Subscriber, error) {
	lobby, err := s.findLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	sub, err := s.broker.Subscribe(lobby.Code)
	if err != nil {
		if errors.Is(err, live.ErrBrokerClosed) {
			return nil, apperrors.Unavailable("Live updates")
		}
		return nil, apperrors.Internal("Failed to subscribe to lobby", err)
	}
	return sub, nil
}

func (s *lobbyService) Unsubscribe(sub *live.Subscriber) {
	s.broker.Unsubscribe(sub)
}

// findLobby normalizes a typed code and loads the lobby. A code that cannot
// exist is reported the same way as a missing lobby.
func (s *lobbyService) findLobby(ctx context.Context, code string) (*model.Lobby, error) {
	normalized := codes.Normalize(code)
	if !codes.Valid(normalized, s.cfg.LobbyCodeLength) {
		return nil, apperrors.NotFoundWithID("Lobby", code)
	}

	lobby, err := s.repo.FindLobby(ctx, normalized)
	if err != nil {
		if errors.Is(err, lobbyerrors.ErrLobbyNotFound) {
			return nil, apperrors.NotFoundWithID("Lobby", normalized)
		}
		s.cfg.Log.Error("Failed to get lobby", "code", normalized, "error", err)
		return nil, apperrors.Internal("Failed to retrieve lobby", err)
	}
	return lobby, nil
}

func (s *lobbyService) location(lobby *model.Lobby) *time.Location {
	if loc, err := time.LoadLocation(lobby.TimeZone); err == nil {
		return loc
	}
	return s.cfg.Location()
}

func (s *lobbyService) validate(req any, message string) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		s.cfg.Log.Warn(message, "error", err)
		return apperrors.Validation(message, validationErrs.Details())
	}
	return apperrors.Internal(message, fmt.Errorf("validator: %w", err))
}

func (s *lobbyService) publish(ctx context.Context, code, eventType string, data any) {
	event := live.NewEvent(eventType, code, data)
	event.CorrelationID = middleware.RequestID(ctx)

	delivered := s.broker.Publish(code, event)
	s.cfg.Log.Debug("Lobby event published",
		"code", code,
		"type", eventType,
		"subscribers", delivered,
	)
}
