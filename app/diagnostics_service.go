package app

import (
	"context"
	"time"

	"github.com/xCarter93/lineupiq/internal/evaluation"
	"github.com/xCarter93/lineupiq/ports"
)

// DiagnosticsService builds fit reports from persisted artifacts. At
// serving time no raw dataset is available, so the cross-validation
// RMSE stands in for holdout error; it is out-of-sample by
// construction of the forward-chaining folds.
type DiagnosticsService struct {
	store      ports.ArtifactStore
	thresholds evaluation.Thresholds
}

// NewDiagnosticsService wires a diagnostics service.
func NewDiagnosticsService(store ports.ArtifactStore, thresholds evaluation.Thresholds) *DiagnosticsService {
	return &DiagnosticsService{store: store, thresholds: thresholds}
}

// Report assesses every stored artifact.
func (s *DiagnosticsService) Report(ctx context.Context) (*evaluation.Report, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &evaluation.Report{GeneratedAt: time.Now()}
	for _, key := range keys {
		artifact, err := s.store.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		train := evaluation.Metrics{RMSE: artifact.TrainRMSE, N: artifact.NumSamples}
		holdout := evaluation.Metrics{RMSE: artifact.CVRMSEMean}
		d := evaluation.Diagnose(artifact.Position, artifact.Target, train, holdout, s.thresholds)
		report.Diagnostics = append(report.Diagnostics, d)
	}
	return report, nil
}
