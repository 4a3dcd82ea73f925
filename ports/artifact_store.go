package ports

import (
	"context"

	"github.com/xCarter93/lineupiq/models"
)

// ArtifactStore persists trained model artifacts keyed by
// {position}_{target}. Implementations are injected into the training
// engine and the serving layer; there is no ambient global registry.
type ArtifactStore interface {
	// Save persists an artifact, replacing any previous one under the
	// same key.
	Save(ctx context.Context, artifact *models.ModelArtifact) error

	// Load retrieves an artifact by key. A missing key fails with
	// core.ErrArtifactNotFound.
	Load(ctx context.Context, key string) (*models.ModelArtifact, error)

	// List returns all stored artifact keys in stable order.
	List(ctx context.Context) ([]string, error)

	// Delete removes an artifact by key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}
