package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/features"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal"
	"github.com/xCarter93/lineupiq/internal/cache"
	"github.com/xCarter93/lineupiq/models"
	"github.com/xCarter93/lineupiq/ports"
)

// PredictionService serves stat predictions from persisted artifacts
// with an in-memory cache in front of inference. A nil cache degrades
// to always-miss rather than failing requests.
type PredictionService struct {
	store    ports.ArtifactStore
	pipeline *features.Pipeline
	cache    *cache.PredictionCache
	logger   *internal.Logger

	mu        sync.RWMutex
	artifacts map[string]*models.ModelArtifact
}

// NewPredictionService wires a prediction service.
func NewPredictionService(store ports.ArtifactStore, pipeline *features.Pipeline, predCache *cache.PredictionCache, logger *internal.Logger) *PredictionService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PredictionService{
		store:     store,
		pipeline:  pipeline,
		cache:     predCache,
		logger:    logger,
		artifacts: make(map[string]*models.ModelArtifact),
	}
}

// PredictResult is a prediction plus its cache disposition.
type PredictResult struct {
	Prediction models.Prediction
	CacheHit   bool
}

// Predict returns the stat-line prediction for one player payload. The
// payload is the flat feature map matching the pipeline's column
// contract. Inference runs outside any cache lock.
func (s *PredictionService) Predict(ctx context.Context, position gridiron.Position, payload map[string]float64) (*PredictResult, error) {
	if !position.Valid() {
		return nil, fmt.Errorf("unsupported position %q", position)
	}

	key := core.ComputeCacheKey(string(position), payload)
	if s.cache != nil {
		if pred, ok := s.cache.Get(key); ok {
			return &PredictResult{Prediction: pred, CacheHit: true}, nil
		}
	}

	vector, err := s.pipeline.VectorFromPayload(position, payload)
	if err != nil {
		return nil, err
	}

	targets, err := features.TargetsFor(position)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(targets))
	for _, target := range targets {
		artifact, err := s.artifact(ctx, position, target)
		if err != nil {
			return nil, err
		}
		v, err := artifact.Ensemble.PredictOne(vector)
		if err != nil {
			return nil, fmt.Errorf("inference for %s: %w", artifact.Key, err)
		}
		values[target] = v
	}

	pred, err := models.NewPrediction(position, values)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(key, pred)
	}
	return &PredictResult{Prediction: pred}, nil
}

// CacheStats exposes cache counters. A nil cache reads as empty.
func (s *PredictionService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// ClearCache flushes cached predictions.
func (s *PredictionService) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Reload drops memoized artifacts so the next request reads fresh ones
// from the store. Called after a training batch lands.
func (s *PredictionService) Reload() {
	s.mu.Lock()
	s.artifacts = make(map[string]*models.ModelArtifact)
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Clear()
	}
}

// artifact returns the store's artifact for a pair, memoizing loads.
// Version mismatches against the serving pipeline fail loudly instead
// of producing silently wrong vectors.
func (s *PredictionService) artifact(ctx context.Context, position gridiron.Position, target string) (*models.ModelArtifact, error) {
	key := models.ArtifactKey(position, target)

	s.mu.RLock()
	cached, ok := s.artifacts[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	artifact, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := artifact.CheckVersion(s.pipeline.Version()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.artifacts[key] = artifact
	s.mu.Unlock()
	return artifact, nil
}
