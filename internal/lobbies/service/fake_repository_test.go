package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	lobbyerrors "huddle/internal/lobbies/errors"
	"huddle/pkg/model"
)

// fakeRepository keeps everything in maps. The *Err hooks let a test fail a
// single call.
type fakeRepository struct {
	mu           sync.Mutex
	lobbies      map[string]model.Lobby
	participants map[string]model.Participant
	blocks       map[string]model.TimeBlock

	createLobbyFunc       func(lobby *model.Lobby) error
	upsertParticipantFunc func(p *model.Participant) error
	listBlocksErr         error
	transactions          int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		lobbies:      make(map[string]model.Lobby),
		participants: make(map[string]model.Participant),
		blocks:       make(map[string]model.TimeBlock),
	}
}

func participantKey(lobbyCode, id string) string {
	return lobbyCode + "/" + id
}

func (r *fakeRepository) CreateLobby(_ context.Context, lobby *model.Lobby) error {
	if r.createLobbyFunc != nil {
		if err := r.createLobbyFunc(lobby); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[lobby.Code]; ok {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrCodeTaken, lobby.Code)
	}
	r.lobbies[lobby.Code] = *lobby
	return nil
}

func (r *fakeRepository) FindLobby(_ context.Context, code string) (*model.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lobby, ok := r.lobbies[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrLobbyNotFound, code)
	}
	return &lobby, nil
}

func (r *fakeRepository) UpsertParticipant(_ context.Context, p *model.Participant) (*model.Participant, error) {
	if r.upsertParticipantFunc != nil {
		if err := r.upsertParticipantFunc(p); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participantKey(p.LobbyCode, p.ID)
	stored, exists := r.participants[key]
	if !exists {
		for _, other := range r.participants {
			if other.LobbyCode == p.LobbyCode && other.UserCode == p.UserCode {
				return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrUserCodeTaken, p.UserCode)
			}
		}
		stored = *p
	} else {
		stored.Name = p.Name
		stored.Color = p.Color
		stored.IsActive = p.IsActive
		stored.LastSeenAt = p.LastSeenAt
	}
	r.participants[key] = stored
	return &stored, nil
}

func (r *fakeRepository) FindParticipant(_ context.Context, lobbyCode, id string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[participantKey(lobbyCode, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, id)
	}
	return &p, nil
}

func (r *fakeRepository) FindParticipantByUserCode(_ context.Context, lobbyCode, userCode string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.LobbyCode == lobbyCode && p.UserCode == userCode {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, userCode)
}

func (r *fakeRepository) SetParticipantActive(_ context.Context, lobbyCode, id string, active bool, seenAt time.Time) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participantKey(lobbyCode, id)
	p, ok := r.participants[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, id)
	}
	p.IsActive = active
	p.LastSeenAt = seenAt
	r.participants[key] = p
	return &p, nil
}

func (r *fakeRepository) ListParticipants(_ context.Context, lobbyCode string, activeOnly bool) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Participant
	for _, p := range r.participants {
		if p.LobbyCode != lobbyCode || (activeOnly && !p.IsActive) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *fakeRepository) CreateBlock(_ context.Context, block *model.TimeBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[block.ID]; ok {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockExists, block.ID)
	}
	r.blocks[block.ID] = *block
	return nil
}

func (r *fakeRepository) FindBlock(_ context.Context, lobbyCode, id string) (*model.TimeBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blocks[id]
	if !ok || b.LobbyCode != lobbyCode {
		return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
	}
	return &b, nil
}

func (r *fakeRepository) UpdateBlock(_ context.Context, block *model.TimeBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[block.ID]; !ok {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, block.ID)
	}
	r.blocks[block.ID] = *block
	return nil
}

func (r *fakeRepository) DeleteBlock(_ context.Context, lobbyCode, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blocks[id]
	if !ok || b.LobbyCode != lobbyCode {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
	}
	delete(r.blocks, id)
	return nil
}

func (r *fakeRepository) ListBlocks(ctx context.Context, lobbyCode string) ([]model.TimeBlock, error) {
	return r.ListBlocksBetween(ctx, lobbyCode, time.Time{}, time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC))
}

func (r *fakeRepository) ListBlocksBetween(_ context.Context, lobbyCode string, from, to time.Time) ([]model.TimeBlock, error) {
	if r.listBlocksErr != nil {
		return nil, r.listBlocksErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TimeBlock
	for _, b := range r.blocks {
		if b.LobbyCode == lobbyCode && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	r.transactions++
	r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeRepository) Ping(context.Context) error {
	return nil
}
