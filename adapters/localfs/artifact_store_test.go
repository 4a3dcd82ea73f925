package localfs

import (
	"context"
	"errors"
	"testing"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal/ml"
	"github.com/xCarter93/lineupiq/models"
)

func testArtifact(t *testing.T, position gridiron.Position, target string) *models.ModelArtifact {
	t.Helper()

	ens, err := ml.NewEnsemble(ml.DefaultHyperparams(), 1)
	if err != nil {
		t.Fatalf("NewEnsemble failed: %v", err)
	}
	if err := ens.Fit([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{10, 20, 30}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	return &models.ModelArtifact{
		Key:             models.ArtifactKey(position, target),
		Position:        position,
		Target:          target,
		RunID:           core.NewRunID(),
		PipelineVersion: core.ComputePipelineVersion([]string{"a", "b"}),
		FeatureColumns:  []string{"a", "b"},
		Params:          ml.DefaultHyperparams(),
		Ensemble:        ens,
		NumSamples:      3,
	}
}

func TestArtifactStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	saved := testArtifact(t, gridiron.PositionQB, "passing_yards")
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, saved.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Key != saved.Key || loaded.PipelineVersion != saved.PipelineVersion {
		t.Error("loaded artifact does not match saved artifact")
	}

	// The deserialized model must predict identically.
	want, err := saved.Ensemble.PredictOne([]float64{3, 4})
	if err != nil {
		t.Fatalf("PredictOne failed: %v", err)
	}
	got, err := loaded.Ensemble.PredictOne([]float64{3, 4})
	if err != nil {
		t.Fatalf("loaded PredictOne failed: %v", err)
	}
	if want != got {
		t.Errorf("loaded model predicts %.6f, saved model %.6f", got, want)
	}
}

func TestArtifactStore_LoadMissingKey(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}

	_, err = store.Load(context.Background(), "QB_passing_yards")
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if !errors.Is(err, core.ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestArtifactStore_ListIsSorted(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	for _, a := range []*models.ModelArtifact{
		testArtifact(t, gridiron.PositionWR, "receptions"),
		testArtifact(t, gridiron.PositionQB, "passing_yards"),
		testArtifact(t, gridiron.PositionRB, "carries"),
	} {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"QB_passing_yards", "RB_carries", "WR_receptions"}
	if len(keys) != len(want) {
		t.Fatalf("List returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestArtifactStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	a := testArtifact(t, gridiron.PositionTE, "receiving_yards")
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, a.Key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, a.Key); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, a.Key); !errors.Is(err, core.ErrArtifactNotFound) {
		t.Errorf("deleted artifact still loads: %v", err)
	}
}

func TestArtifactStore_SaveOverwrites(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	ctx := context.Background()

	first := testArtifact(t, gridiron.PositionQB, "passing_tds")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := testArtifact(t, gridiron.PositionQB, "passing_tds")
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, first.Key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RunID != second.RunID {
		t.Error("overwrite did not replace the stored artifact")
	}
}
