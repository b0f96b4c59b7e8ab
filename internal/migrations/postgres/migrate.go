package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"huddle/pkg/db/postgres"
	"huddle/pkg/logger"
)

// Schema is applied in order inside one transaction. Constraint names are
// matched by the repository when it translates violations.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS lobbies (
		code       TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		time_zone  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT lobbies_code_check CHECK (code ~ '^[A-HJ-NP-Z2-9]+$')
	)`,

	`CREATE TABLE IF NOT EXISTS participants (
		lobby_code   TEXT NOT NULL REFERENCES lobbies (code) ON DELETE CASCADE,
		id           UUID NOT NULL,
		name         TEXT NOT NULL,
		color        TEXT NOT NULL,
		user_code    TEXT NOT NULL,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		joined_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT participants_pkey PRIMARY KEY (lobby_code, id),
		CONSTRAINT participants_lobby_code_user_code_key UNIQUE (lobby_code, user_code)
	)`,

	`CREATE INDEX IF NOT EXISTS participants_active_idx
		ON participants (lobby_code, is_active, joined_at)`,

	`CREATE TABLE IF NOT EXISTS time_blocks (
		id         UUID NOT NULL,
		lobby_code TEXT NOT NULL,
		owner_id   UUID NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ NOT NULL,
		block_type TEXT NOT NULL DEFAULT 'available',
		all_day    BOOLEAN NOT NULL DEFAULT FALSE,
		title      TEXT NOT NULL DEFAULT '',
		note       TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT time_blocks_pkey PRIMARY KEY (id),
		CONSTRAINT time_blocks_owner_fkey FOREIGN KEY (lobby_code, owner_id)
			REFERENCES participants (lobby_code, id) ON DELETE CASCADE,
		CONSTRAINT time_blocks_block_type_check CHECK (block_type IN ('available', 'busy')),
		CONSTRAINT time_blocks_range_check CHECK (start_time < end_time)
	)`,

	`CREATE INDEX IF NOT EXISTS time_blocks_lobby_start_idx
		ON time_blocks (lobby_code, start_time)`,
}

// RunMigration applies Schema. Every statement is idempotent.
func RunMigration(ctx context.Context, db *sqlx.DB, log *logger.Logger) error {
	log.Info("Running Postgres migrations", "statements", len(Schema))

	err := postgres.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		for i, stmt := range Schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info("All Postgres migrations applied")
	return nil
}
