package repository

import (
	"context"
	"time"

	"huddle/pkg/config"
	"huddle/pkg/model"
)

// Repository persists lobbies, their participants and their time blocks.
// Lookups that miss return the sentinels in internal/lobbies/errors.
type Repository interface {
	CreateLobby(ctx context.Context, lobby *model.Lobby) error
	FindLobby(ctx context.Context, code string) (*model.Lobby, error)

	// UpsertParticipant inserts p or reactivates the existing participant with
	// the same id. An existing participant keeps its user code and join time.
	UpsertParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error)
	FindParticipant(ctx context.Context, lobbyCode, id string) (*model.Participant, error)
	FindParticipantByUserCode(ctx context.Context, lobbyCode, userCode string) (*model.Participant, error)
	SetParticipantActive(ctx context.Context, lobbyCode, id string, active bool, seenAt time.Time) (*model.Participant, error)
	ListParticipants(ctx context.Context, lobbyCode string, activeOnly bool) ([]model.Participant, error)

	CreateBlock(ctx context.Context, block *model.TimeBlock) error
	FindBlock(ctx context.Context, lobbyCode, id string) (*model.TimeBlock, error)
	UpdateBlock(ctx context.Context, block *model.TimeBlock) error
	DeleteBlock(ctx context.Context, lobbyCode, id string) error
	// ListBlocks returns every block of the lobby ordered by start.
	ListBlocks(ctx context.Context, lobbyCode string) ([]model.TimeBlock, error)
	// ListBlocksBetween returns the blocks intersecting [from, to), ordered by start.
	ListBlocksBetween(ctx context.Context, lobbyCode string, from, to time.Time) ([]model.TimeBlock, error)

	// WithTransaction runs fn atomically. Repository calls made with the
	// context passed to fn join the transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
}

// New picks the implementation for the configured store driver.
func New(cfg *config.Config) Repository {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresRepository(cfg)
	}
	return NewMongoRepository(cfg)
}

// withTimeout bounds ctx by timeout unless the caller's deadline is sooner.
// Transaction contexts are returned as is.
func withTimeout(ctx context.Context, timeout time.Duration, inTx bool) (context.Context, context.CancelFunc) {
	if inTx {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
