package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	lobbyerrors "huddle/internal/lobbies/errors"
	"huddle/pkg/config"
	"huddle/pkg/db/postgres"
	"huddle/pkg/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	lobbiesPkey          = "lobbies_pkey"
	participantsUserCode = "participants_lobby_code_user_code_key"
	timeBlocksPkey       = "time_blocks_pkey"
	timeBlocksOwnerFkey  = "time_blocks_owner_fkey"
)

const (
	participantColumns = `lobby_code, id, name, color, user_code, is_active, joined_at, last_seen_at`
	blockColumns       = `id, lobby_code, owner_id, start_time, end_time, block_type, all_day, title, note, created_at, updated_at`
)

type txKey struct{}

type postgresRepository struct {
	cfg *config.Config
	db  *sqlx.DB
}

func NewPostgresRepository(cfg *config.Config) Repository {
	return &postgresRepository{
		cfg: cfg,
		db:  cfg.Client.Postgres,
	}
}

// conn returns the transaction carried by ctx, or the pool.
func (r *postgresRepository) conn(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

func (r *postgresRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	_, inTx := ctx.Value(txKey{}).(*sqlx.Tx)
	return withTimeout(ctx, timeout, inTx)
}

// translate maps constraint violations to the package sentinels.
func translate(err error, ref string) (error, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err, false
	}

	var sentinel error
	switch {
	case pqErr.Code == pgUniqueViolation && pqErr.Constraint == lobbiesPkey:
		sentinel = lobbyerrors.ErrCodeTaken
	case pqErr.Code == pgUniqueViolation && pqErr.Constraint == participantsUserCode:
		sentinel = lobbyerrors.ErrUserCodeTaken
	case pqErr.Code == pgUniqueViolation && pqErr.Constraint == timeBlocksPkey:
		sentinel = lobbyerrors.ErrBlockExists
	case pqErr.Code == pgForeignKeyViolation && pqErr.Constraint == timeBlocksOwnerFkey:
		sentinel = lobbyerrors.ErrParticipantNotFound
	default:
		return err, false
	}
	return fmt.Errorf("%w: %s", sentinel, ref), true
}

func (r *postgresRepository) CreateLobby(ctx context.Context, lobby *model.Lobby) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.conn(ctx).ExecContext(ctx,
		`INSERT INTO lobbies (code, name, time_zone, created_at) VALUES ($1, $2, $3, $4)`,
		lobby.Code, lobby.Name, lobby.TimeZone, lobby.CreatedAt,
	)
	if err != nil {
		if translated, ok := translate(err, lobby.Code); ok {
			return translated
		}
		return fmt.Errorf("failed to create lobby: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindLobby(ctx context.Context, code string) (*model.Lobby, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var lobby model.Lobby
	err := sqlx.GetContext(ctx, r.conn(ctx), &lobby,
		`SELECT code, name, time_zone, created_at FROM lobbies WHERE code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrLobbyNotFound, code)
		}
		return nil, fmt.Errorf("failed to find lobby: %w", err)
	}
	return &lobby, nil
}

func (r *postgresRepository) UpsertParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
		ON CONFLICT (lobby_code, id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			is_active = TRUE,
			last_seen_at = EXCLUDED.last_seen_at
		RETURNING ` + participantColumns

	var stored model.Participant
	err := sqlx.GetContext(ctx, r.conn(ctx), &stored, query,
		p.LobbyCode, p.ID, p.Name, p.Color, p.UserCode, p.JoinedAt, p.LastSeenAt,
	)
	if err != nil {
		if translated, ok := translate(err, p.UserCode); ok {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}
	return &stored, nil
}

func (r *postgresRepository) FindParticipant(ctx context.Context, lobbyCode, id string) (*model.Participant, error) {
	return r.findParticipant(ctx, `lobby_code = $1 AND id = $2`, lobbyCode, id)
}

func (r *postgresRepository) FindParticipantByUserCode(ctx context.Context, lobbyCode, userCode string) (*model.Participant, error) {
	return r.findParticipant(ctx, `lobby_code = $1 AND user_code = $2`, lobbyCode, userCode)
}

func (r *postgresRepository) findParticipant(ctx context.Context, where, lobbyCode, ref string) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var p model.Participant
	err := sqlx.GetContext(ctx, r.conn(ctx), &p,
		`SELECT `+participantColumns+` FROM participants WHERE `+where, lobbyCode, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) SetParticipantActive(ctx context.Context, lobbyCode, id string, active bool, seenAt time.Time) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var p model.Participant
	err := sqlx.GetContext(ctx, r.conn(ctx), &p, `
		UPDATE participants SET is_active = $3, last_seen_at = $4
		WHERE lobby_code = $1 AND id = $2
		RETURNING `+participantColumns,
		lobbyCode, id, active, seenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, id)
		}
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) ListParticipants(ctx context.Context, lobbyCode string, activeOnly bool) ([]model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query := `SELECT ` + participantColumns + ` FROM participants WHERE lobby_code = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY joined_at, id`

	participants := []model.Participant{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &participants, query, lobbyCode); err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	return participants, nil
}

func (r *postgresRepository) CreateBlock(ctx context.Context, block *model.TimeBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := sqlx.NamedExecContext(ctx, r.conn(ctx), `
		INSERT INTO time_blocks (`+blockColumns+`)
		VALUES (:id, :lobby_code, :owner_id, :start_time, :end_time, :block_type, :all_day, :title, :note, :created_at, :updated_at)`,
		block,
	)
	if err != nil {
		if translated, ok := translate(err, block.ID); ok {
			return translated
		}
		return fmt.Errorf("failed to create time block: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindBlock(ctx context.Context, lobbyCode, id string) (*model.TimeBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var block model.TimeBlock
	err := sqlx.GetContext(ctx, r.conn(ctx), &block,
		`SELECT `+blockColumns+` FROM time_blocks WHERE lobby_code = $1 AND id = $2`, lobbyCode, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
		}
		return nil, fmt.Errorf("failed to find time block: %w", err)
	}
	return &block, nil
}

func (r *postgresRepository) UpdateBlock(ctx context.Context, block *model.TimeBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := sqlx.NamedExecContext(ctx, r.conn(ctx), `
		UPDATE time_blocks SET
			start_time = :start_time,
			end_time = :end_time,
			block_type = :block_type,
			all_day = :all_day,
			title = :title,
			note = :note,
			updated_at = :updated_at
		WHERE id = :id AND lobby_code = :lobby_code`,
		block,
	)
	if err != nil {
		return fmt.Errorf("failed to update time block: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, block.ID)
	}
	return nil
}

func (r *postgresRepository) DeleteBlock(ctx context.Context, lobbyCode, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.conn(ctx).ExecContext(ctx,
		`DELETE FROM time_blocks WHERE lobby_code = $1 AND id = $2`, lobbyCode, id)
	if err != nil {
		return fmt.Errorf("failed to delete time block: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
	}
	return nil
}

func (r *postgresRepository) ListBlocks(ctx context.Context, lobbyCode string) ([]model.TimeBlock, error) {
	return r.selectBlocks(ctx,
		`SELECT `+blockColumns+` FROM time_blocks WHERE lobby_code = $1 ORDER BY start_time, id`,
		lobbyCode)
}

func (r *postgresRepository) ListBlocksBetween(ctx context.Context, lobbyCode string, from, to time.Time) ([]model.TimeBlock, error) {
	return r.selectBlocks(ctx, `
		SELECT `+blockColumns+` FROM time_blocks
		WHERE lobby_code = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time, id`,
		lobbyCode, from, to)
}

func (r *postgresRepository) selectBlocks(ctx context.Context, query string, args ...any) ([]model.TimeBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	blocks := []model.TimeBlock{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query time blocks: %w", err)
	}
	for i := range blocks {
		blocks[i].Start = blocks[i].Start.UTC()
		blocks[i].End = blocks[i].End.UTC()
	}
	return blocks, nil
}

func (r *postgresRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	return postgres.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}
