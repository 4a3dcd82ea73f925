package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/models"
	"github.com/xCarter93/lineupiq/ports"
)

// ArtifactStoreImpl implements ArtifactStore for PostgreSQL. The full
// artifact, ensemble included, is stored as a JSONB payload; the
// indexed columns exist only for lookups and operational queries.
type ArtifactStoreImpl struct {
	db *sqlx.DB
}

// NewArtifactStore creates a new PostgreSQL artifact store
func NewArtifactStore(db *sqlx.DB) ports.ArtifactStore {
	return &ArtifactStoreImpl{db: db}
}

// Save upserts an artifact under its key
func (r *ArtifactStoreImpl) Save(ctx context.Context, artifact *models.ModelArtifact) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", artifact.Key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO model_artifacts (
			key, position, target, run_id, pipeline_version, trained_at, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			position = EXCLUDED.position,
			target = EXCLUDED.target,
			run_id = EXCLUDED.run_id,
			pipeline_version = EXCLUDED.pipeline_version,
			trained_at = EXCLUDED.trained_at,
			payload = EXCLUDED.payload`,
		artifact.Key, string(artifact.Position), artifact.Target, string(artifact.RunID),
		string(artifact.PipelineVersion), artifact.TrainedAt, payload)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", artifact.Key, err)
	}
	return nil
}

// Load retrieves an artifact by key
func (r *ArtifactStoreImpl) Load(ctx context.Context, key string) (*models.ModelArtifact, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM model_artifacts WHERE key = $1
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %s: %w", key, core.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", key, err)
	}

	var artifact models.ModelArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", key, err)
	}
	return &artifact, nil
}

// List returns all stored artifact keys in key order
func (r *ArtifactStoreImpl) List(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, `SELECT key FROM model_artifacts ORDER BY key`); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return keys, nil
}

// Delete removes an artifact; missing keys are a no-op
func (r *ArtifactStoreImpl) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM model_artifacts WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", key, err)
	}
	return nil
}

// Ensure ArtifactStoreImpl implements ArtifactStore
var _ ports.ArtifactStore = (*ArtifactStoreImpl)(nil)
