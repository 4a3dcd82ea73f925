package app

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/features"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal/training"
	"github.com/xCarter93/lineupiq/models"
)

// memStore is an in-memory ArtifactStore for service tests.
type memStore struct {
	artifacts map[string]*models.ModelArtifact
}

func newMemStore() *memStore {
	return &memStore{artifacts: make(map[string]*models.ModelArtifact)}
}

func (m *memStore) Save(ctx context.Context, a *models.ModelArtifact) error {
	m.artifacts[a.Key] = a
	return nil
}

func (m *memStore) Load(ctx context.Context, key string) (*models.ModelArtifact, error) {
	a, ok := m.artifacts[key]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", key, core.ErrArtifactNotFound)
	}
	return a, nil
}

func (m *memStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.artifacts))
	for k := range m.artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.artifacts, key)
	return nil
}

// stubSource serves a synthetic two-team league of quarterbacks.
type stubSource struct {
	records  []gridiron.PlayerWeekRecord
	schedule []gridiron.ScheduleGame
}

func (s *stubSource) LoadPlayerWeeks(ctx context.Context, seasons []int) ([]gridiron.PlayerWeekRecord, error) {
	return s.records, nil
}

func (s *stubSource) LoadSchedule(ctx context.Context, seasons []int) ([]gridiron.ScheduleGame, error) {
	return s.schedule, nil
}

func syntheticLeague() *stubSource {
	src := &stubSource{}
	for _, season := range []int{2022, 2023} {
		for week := 1; week <= 17; week++ {
			src.schedule = append(src.schedule, gridiron.ScheduleGame{
				Season: season, Week: week, HomeTeam: "KC", AwayTeam: "DET",
			})
			for i, team := range []gridiron.Team{"KC", "DET"} {
				src.records = append(src.records, gridiron.PlayerWeekRecord{
					PlayerID:   "qb-" + string(team),
					PlayerName: "QB " + string(team),
					Position:   gridiron.PositionQB,
					Team:       team,
					Season:     season,
					Week:       week,
					Stats: gridiron.StatLine{
						PassingYards: float64(200 + 10*week + 30*i),
						PassingTDs:   float64(1 + week%3),
					},
				})
			}
		}
	}
	return src
}

func TestTrainingService_TrainsAndServesQBModels(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping search in short mode")
	}

	pipeline, err := features.NewPipeline(features.DefaultRollingConfig())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	store := newMemStore()
	cfg := training.Config{Folds: 2, MaxTrials: 2, Seed: 42}
	service, err := NewTrainingService(syntheticLeague(), store, pipeline, cfg, nil)
	if err != nil {
		t.Fatalf("NewTrainingService failed: %v", err)
	}

	summary, err := service.TrainAll(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("TrainAll failed: %v", err)
	}

	// Only quarterbacks exist in the synthetic league: the two QB
	// targets train, every other pair fails on an empty dataset.
	if summary.RunsCompleted != 2 {
		t.Errorf("completed runs = %d, want 2 (QB targets only)", summary.RunsCompleted)
	}
	if summary.RunsFailed != 11 {
		t.Errorf("failed runs = %d, want 11 (non-QB pairs lack data)", summary.RunsFailed)
	}

	for _, target := range []string{"passing_yards", "passing_tds"} {
		key := models.ArtifactKey(gridiron.PositionQB, target)
		artifact, err := store.Load(context.Background(), key)
		if err != nil {
			t.Fatalf("artifact %s not persisted: %v", key, err)
		}
		if artifact.PipelineVersion != pipeline.Version() {
			t.Errorf("artifact %s carries the wrong pipeline version", key)
		}
		if artifact.NumSamples == 0 {
			t.Errorf("artifact %s trained on zero samples", key)
		}
	}

	// The persisted models must serve through the prediction path.
	predictions := NewPredictionService(store, pipeline, nil, nil)
	payload := make(map[string]float64)
	for _, col := range pipeline.Columns() {
		payload[col] = 1.0
	}
	payload["passing_yards_roll3"] = 260

	result, err := predictions.Predict(context.Background(), gridiron.PositionQB, payload)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	flat := result.Prediction.Flatten()
	if _, ok := flat["passing_yards"]; !ok {
		t.Error("prediction missing passing_yards")
	}
	if result.CacheHit {
		t.Error("nil cache reported a hit")
	}
}

func TestTrainAll_HoldoutSeasonExcludedFromTraining(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping search in short mode")
	}

	pipeline, err := features.NewPipeline(features.DefaultRollingConfig())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	store := newMemStore()
	cfg := training.Config{Folds: 2, MaxTrials: 2, Seed: 42}
	service, err := NewTrainingService(syntheticLeague(), store, pipeline, cfg, nil)
	if err != nil {
		t.Fatalf("NewTrainingService failed: %v", err)
	}

	summary, err := service.TrainAll(context.Background(), nil, 2023)
	if err != nil {
		t.Fatalf("TrainAll failed: %v", err)
	}
	if summary.RunsCompleted != 2 {
		t.Fatalf("completed runs = %d, want 2", summary.RunsCompleted)
	}
	if len(summary.Diagnostics) != 2 {
		t.Errorf("diagnostics = %d, want one per completed run", len(summary.Diagnostics))
	}

	// The reserved season must never reach the search or the refit:
	// every persisted artifact trains strictly before it.
	for _, target := range []string{"passing_yards", "passing_tds"} {
		key := models.ArtifactKey(gridiron.PositionQB, target)
		artifact, err := store.Load(context.Background(), key)
		if err != nil {
			t.Fatalf("artifact %s not persisted: %v", key, err)
		}
		if artifact.SeasonEnd >= 2023 {
			t.Errorf("artifact %s trained through season %d with 2023 reserved for evaluation", key, artifact.SeasonEnd)
		}
		if artifact.SeasonStart != 2022 {
			t.Errorf("artifact %s season start = %d, want 2022", key, artifact.SeasonStart)
		}
	}
}

func TestSplitHoldout(t *testing.T) {
	full := &training.Dataset{
		Position: gridiron.PositionQB,
		Target:   "passing_yards",
		X:        [][]float64{{1}, {2}, {3}, {4}},
		Y:        []float64{10, 20, 30, 40},
		Seasons:  []int{2022, 2022, 2023, 2024},
	}

	train, holdX, holdY := splitHoldout(full, 2023)
	if train.Len() != 2 {
		t.Fatalf("train rows = %d, want 2", train.Len())
	}
	for _, season := range train.Seasons {
		if season >= 2023 {
			t.Errorf("season %d leaked into the training side", season)
		}
	}
	if len(holdX) != 2 || len(holdY) != 2 {
		t.Fatalf("holdout rows = %d/%d, want 2/2", len(holdX), len(holdY))
	}
	if holdY[0] != 30 || holdY[1] != 40 {
		t.Errorf("holdout targets = %v, want [30 40]", holdY)
	}
}

func TestBuildDataset_FiltersRows(t *testing.T) {
	table := &features.FeatureTable{
		Rows: []features.FeatureVector{
			{PlayerID: "a", Position: gridiron.PositionQB, Season: 2023, Week: 2,
				Values: []float64{1}, Targets: map[string]float64{"passing_yards": 250}, HasDefense: true},
			{PlayerID: "a", Position: gridiron.PositionQB, Season: 2023, Week: 1,
				Values: []float64{1}, Targets: map[string]float64{"passing_yards": 230}, HasDefense: false},
			{PlayerID: "b", Position: gridiron.PositionRB, Season: 2023, Week: 2,
				Values: []float64{1}, Targets: map[string]float64{"rushing_yards": 90}, HasDefense: true},
		},
	}

	ds := buildDataset(table, gridiron.PositionQB, "passing_yards")
	if ds.Len() != 1 {
		t.Fatalf("dataset has %d rows, want 1 (no-defense and wrong-position rows dropped)", ds.Len())
	}
	if ds.Y[0] != 250 {
		t.Errorf("target = %.0f, want 250", ds.Y[0])
	}
}
