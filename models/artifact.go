package models

import (
	"fmt"
	"time"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal/ml"
)

// ModelArtifact is one trained regressor plus the metadata needed to
// use it safely: the feature column contract it was trained under, the
// chosen hyperparameters, and the cross-validation error distribution
// from the search phase. Immutable after creation; retraining creates a
// new artifact under the same key.
type ModelArtifact struct {
	Key      string            `json:"key"` // {position}_{target}
	Position gridiron.Position `json:"position"`
	Target   string            `json:"target"`

	RunID     core.RunID `json:"run_id"`
	TrainedAt time.Time  `json:"trained_at"`

	PipelineVersion core.PipelineVersion `json:"pipeline_version"`
	FeatureColumns  []string             `json:"feature_columns"`

	Params   ml.Hyperparams `json:"params"`
	Ensemble *ml.Ensemble   `json:"ensemble"`

	// Cross-validation error distribution from the winning trial.
	CVFoldRMSE []float64 `json:"cv_fold_rmse"`
	CVRMSEMean float64   `json:"cv_rmse_mean"`
	CVRMSEStd  float64   `json:"cv_rmse_std"`

	// TrainRMSE is the in-sample error of the refit ensemble, the
	// denominator of the overfit ratio.
	TrainRMSE float64 `json:"train_rmse"`

	SeasonStart int `json:"season_start"`
	SeasonEnd   int `json:"season_end"`
	NumSamples  int `json:"num_samples"`

	// Search accounting for failure reports.
	TrialsSucceeded int  `json:"trials_succeeded"`
	TrialsFailed    int  `json:"trials_failed"`
	PartialSearch   bool `json:"partial_search"` // wall-clock budget cut the search short
}

// ArtifactKey builds the canonical {position}_{target} storage key.
func ArtifactKey(position gridiron.Position, target string) string {
	return fmt.Sprintf("%s_%s", position, target)
}

// CheckVersion fails loudly when the artifact's column contract does
// not match the pipeline about to feed it.
func (a *ModelArtifact) CheckVersion(version core.PipelineVersion) error {
	if a.PipelineVersion != version {
		return core.NewVersionMismatchError(version.String(), a.PipelineVersion.String())
	}
	return nil
}

// Validate checks structural integrity after a load.
func (a *ModelArtifact) Validate() error {
	if a.Key == "" || a.Key != ArtifactKey(a.Position, a.Target) {
		return fmt.Errorf("artifact key %q does not match position %q and target %q", a.Key, a.Position, a.Target)
	}
	if !a.Position.Valid() {
		return fmt.Errorf("artifact has unsupported position %q", a.Position)
	}
	if a.Ensemble == nil {
		return fmt.Errorf("artifact %s has no ensemble", a.Key)
	}
	if len(a.FeatureColumns) != a.Ensemble.NumFeatures {
		return fmt.Errorf("artifact %s: %d feature columns but ensemble expects %d",
			a.Key, len(a.FeatureColumns), a.Ensemble.NumFeatures)
	}
	if a.PipelineVersion.String() == "" {
		return fmt.Errorf("artifact %s missing pipeline version", a.Key)
	}
	return nil
}
