package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/models"
)

// ArtifactStore persists model artifacts as one JSON file per key
// under a base directory. Writes go through a temp file and rename so
// a crashed save never leaves a truncated artifact behind.
type ArtifactStore struct {
	basePath string
}

// NewArtifactStore creates the base directory if needed.
func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactStore{basePath: basePath}, nil
}

// Save persists an artifact, replacing any previous one under the same key.
func (s *ArtifactStore) Save(ctx context.Context, artifact *models.ModelArtifact) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", artifact.Key, err)
	}

	final := s.keyToPath(artifact.Key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", artifact.Key, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit artifact %s: %w", artifact.Key, err)
	}
	return nil
}

// Load retrieves an artifact by key.
func (s *ArtifactStore) Load(ctx context.Context, key string) (*models.ModelArtifact, error) {
	data, err := os.ReadFile(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s: %w", key, core.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}

	var artifact models.ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", key, err)
	}
	if artifact.Key != key {
		return nil, fmt.Errorf("artifact file for %s holds key %s", key, artifact.Key)
	}
	return &artifact, nil
}

// List returns all stored artifact keys sorted lexically.
func (s *ArtifactStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes an artifact. Missing keys are a no-op.
func (s *ArtifactStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.keyToPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact %s: %w", key, err)
	}
	return nil
}

func (s *ArtifactStore) keyToPath(key string) string {
	return filepath.Join(s.basePath, key+".json")
}
