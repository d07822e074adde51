package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seating_plans (
		id               UUID PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		strategy         TEXT NOT NULL,
		seed             BIGINT NOT NULL,
		student_count    INTEGER NOT NULL,
		room_count       INTEGER NOT NULL,
		unassigned_count INTEGER NOT NULL,
		payload          JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS seating_plans_created_at_idx ON seating_plans (created_at DESC)`,
}

// EnsureSchema creates the tables used by the plan store when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
