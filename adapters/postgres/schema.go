package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the artifact table when it does not exist.
// Called once at startup by both the trainer and the API server.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS model_artifacts (
			key TEXT PRIMARY KEY,
			position TEXT NOT NULL,
			target TEXT NOT NULL,
			run_id TEXT NOT NULL,
			pipeline_version TEXT NOT NULL,
			trained_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create model_artifacts table: %w", err)
	}
	return nil
}
