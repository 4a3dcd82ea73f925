package models

import (
	"testing"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal/ml"
)

func validArtifact(t *testing.T) *ModelArtifact {
	t.Helper()

	ens, err := ml.NewEnsemble(ml.DefaultHyperparams(), 1)
	if err != nil {
		t.Fatalf("NewEnsemble failed: %v", err)
	}
	if err := ens.Fit([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	return &ModelArtifact{
		Key:             ArtifactKey(gridiron.PositionQB, "passing_yards"),
		Position:        gridiron.PositionQB,
		Target:          "passing_yards",
		RunID:           core.NewRunID(),
		PipelineVersion: core.ComputePipelineVersion([]string{"a", "b"}),
		FeatureColumns:  []string{"a", "b"},
		Params:          ml.DefaultHyperparams(),
		Ensemble:        ens,
		NumSamples:      3,
	}
}

func TestArtifactKey(t *testing.T) {
	if got := ArtifactKey(gridiron.PositionRB, "rushing_yards"); got != "RB_rushing_yards" {
		t.Errorf("ArtifactKey = %q, want RB_rushing_yards", got)
	}
}

func TestModelArtifact_Validate(t *testing.T) {
	if err := validArtifact(t).Validate(); err != nil {
		t.Fatalf("valid artifact rejected: %v", err)
	}

	t.Run("mismatched key", func(t *testing.T) {
		a := validArtifact(t)
		a.Key = "WR_receptions"
		if err := a.Validate(); err == nil {
			t.Error("expected error for key not matching position/target")
		}
	})

	t.Run("missing ensemble", func(t *testing.T) {
		a := validArtifact(t)
		a.Ensemble = nil
		if err := a.Validate(); err == nil {
			t.Error("expected error for nil ensemble")
		}
	})

	t.Run("column width mismatch", func(t *testing.T) {
		a := validArtifact(t)
		a.FeatureColumns = []string{"a"}
		if err := a.Validate(); err == nil {
			t.Error("expected error for column count != model width")
		}
	})
}

func TestModelArtifact_CheckVersion(t *testing.T) {
	a := validArtifact(t)

	if err := a.CheckVersion(a.PipelineVersion); err != nil {
		t.Errorf("matching version rejected: %v", err)
	}

	err := a.CheckVersion(core.ComputePipelineVersion([]string{"other"}))
	if err == nil {
		t.Fatal("expected version mismatch error")
	}
	if !core.IsVersionError(err) {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestNewPrediction_RoundsToOneDecimal(t *testing.T) {
	pred, err := NewPrediction(gridiron.PositionQB, map[string]float64{
		"passing_yards": 287.6666,
		"passing_tds":   1.9499,
	})
	if err != nil {
		t.Fatalf("NewPrediction failed: %v", err)
	}

	flat := pred.Flatten()
	if flat["passing_yards"] != 287.7 {
		t.Errorf("passing_yards = %v, want 287.7", flat["passing_yards"])
	}
	if flat["passing_tds"] != 1.9 {
		t.Errorf("passing_tds = %v, want 1.9", flat["passing_tds"])
	}
	if pred.Position() != gridiron.PositionQB {
		t.Errorf("position = %s, want QB", pred.Position())
	}
}

func TestNewPrediction_PerPositionShapes(t *testing.T) {
	rb, err := NewPrediction(gridiron.PositionRB, map[string]float64{
		"rushing_yards": 80, "rushing_tds": 0.5, "carries": 18,
		"receiving_yards": 25, "receptions": 3,
	})
	if err != nil {
		t.Fatalf("RB prediction failed: %v", err)
	}
	if len(rb.Flatten()) != 5 {
		t.Errorf("RB prediction has %d stats, want 5", len(rb.Flatten()))
	}

	te, err := NewPrediction(gridiron.PositionTE, map[string]float64{
		"receiving_yards": 55, "receiving_tds": 0.4, "receptions": 4,
	})
	if err != nil {
		t.Fatalf("TE prediction failed: %v", err)
	}
	if te.Position() != gridiron.PositionTE {
		t.Errorf("TE prediction reports position %s", te.Position())
	}

	if _, err := NewPrediction("K", nil); err == nil {
		t.Error("expected error for unsupported position")
	}
}
