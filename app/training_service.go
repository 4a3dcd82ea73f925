package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xCarter93/lineupiq/domain/features"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal"
	"github.com/xCarter93/lineupiq/internal/evaluation"
	"github.com/xCarter93/lineupiq/internal/training"
	"github.com/xCarter93/lineupiq/ports"
)

// TrainingService orchestrates a full batch run: load records, attach
// game context, build features once, then train every (position,
// target) model and persist the artifacts.
type TrainingService struct {
	source   ports.RecordSource
	store    ports.ArtifactStore
	pipeline *features.Pipeline
	engCfg   training.Config
	logger   *internal.Logger

	// Parallelism across (position, target) pairs. Each pair is an
	// independent search, so the only shared state is the store.
	concurrency int
}

// TrainingSummary reports the outcome of one batch run.
type TrainingSummary struct {
	RunsCompleted int
	RunsFailed    int
	RunsPartial   int
	Diagnostics   []evaluation.Diagnostic
	Elapsed       time.Duration
}

// NewTrainingService wires a training service.
func NewTrainingService(source ports.RecordSource, store ports.ArtifactStore, pipeline *features.Pipeline, engCfg training.Config, logger *internal.Logger) (*TrainingService, error) {
	if err := engCfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TrainingService{
		source:      source,
		store:       store,
		pipeline:    pipeline,
		engCfg:      engCfg,
		logger:      logger,
		concurrency: 4,
	}, nil
}

// TrainAll runs the batch for the given seasons. holdoutSeason, when
// non-zero, reserves that season onward for fit diagnostics instead of
// the search. Individual model failures are logged and counted; the
// batch fails only when data loading or feature assembly fails.
func (s *TrainingService) TrainAll(ctx context.Context, seasons []int, holdoutSeason int) (*TrainingSummary, error) {
	start := time.Now()

	records, err := s.source.LoadPlayerWeeks(ctx, seasons)
	if err != nil {
		return nil, fmt.Errorf("loading player weeks: %w", err)
	}
	schedule, err := s.source.LoadSchedule(ctx, seasons)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	records = gridiron.AttachGameContext(records, schedule)

	table, err := s.pipeline.Build(records)
	if err != nil {
		return nil, fmt.Errorf("building features: %w", err)
	}
	s.logger.Info("[TrainingService] feature table built: %d rows, version %s", len(table.Rows), table.Version)

	summary := &TrainingSummary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, position := range gridiron.Positions() {
		targets, err := features.TargetsFor(position)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			position, target := position, target
			g.Go(func() error {
				diag, partial, err := s.trainOne(gctx, table, position, target, holdoutSeason)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.RunsFailed++
					s.logger.Error("[TrainingService] %s/%s failed: %v", position, target, err)
					return nil
				}
				summary.RunsCompleted++
				if partial {
					summary.RunsPartial++
				}
				if diag != nil {
					summary.Diagnostics = append(summary.Diagnostics, *diag)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Elapsed = time.Since(start)
	s.logger.Info("[TrainingService] batch done in %s: %d completed, %d failed, %d partial",
		summary.Elapsed.Round(time.Second), summary.RunsCompleted, summary.RunsFailed, summary.RunsPartial)
	return summary, nil
}

// trainOne assembles the dataset for one pair, runs the engine and
// persists the artifact. The returned diagnostic is nil when no
// holdout season was configured.
func (s *TrainingService) trainOne(ctx context.Context, table *features.FeatureTable, position gridiron.Position, target string, holdoutSeason int) (*evaluation.Diagnostic, bool, error) {
	ds := buildDataset(table, position, target)

	// Holdout rows are reserved before the engine ever sees the data:
	// the search, the refit and the artifact's season range cover only
	// seasons strictly before the holdout.
	var holdX [][]float64
	var holdY []float64
	if holdoutSeason > 0 {
		ds, holdX, holdY = splitHoldout(ds, holdoutSeason)
	}

	if err := ds.Validate(); err != nil {
		return nil, false, err
	}

	engine, err := training.NewEngine(s.engCfg, s.logger)
	if err != nil {
		return nil, false, err
	}

	res, err := engine.Run(ctx, ds, table.Version, table.Columns)
	if err != nil {
		return nil, false, err
	}
	if err := s.store.Save(ctx, res.Artifact); err != nil {
		return nil, false, fmt.Errorf("persisting artifact: %w", err)
	}
	s.logger.Info("[TrainingService] saved %s (cv rmse %.3f, train rmse %.3f)",
		res.Artifact.Key, res.Artifact.CVRMSEMean, res.Artifact.TrainRMSE)

	var diag *evaluation.Diagnostic
	if holdoutSeason > 0 {
		d, err := s.diagnose(ds, res, holdX, holdY, position, target)
		if err != nil {
			s.logger.Warn("[TrainingService] diagnostics for %s skipped: %v", res.Artifact.Key, err)
		} else {
			diag = d
		}
	}
	return diag, res.Partial, nil
}

// diagnose scores the refit model on the rows splitHoldout reserved.
// The model never trained on them, so the holdout metrics are genuinely
// out of sample.
func (s *TrainingService) diagnose(ds *training.Dataset, res *training.Result, holdX [][]float64, holdY []float64, position gridiron.Position, target string) (*evaluation.Diagnostic, error) {
	if len(holdY) == 0 {
		return nil, fmt.Errorf("no holdout rows for %s/%s", position, target)
	}

	trainPred, err := res.Artifact.Ensemble.Predict(ds.X)
	if err != nil {
		return nil, err
	}
	holdPred, err := res.Artifact.Ensemble.Predict(holdX)
	if err != nil {
		return nil, err
	}

	trainM, err := evaluation.Compute(ds.Y, trainPred)
	if err != nil {
		return nil, err
	}
	holdM, err := evaluation.Compute(holdY, holdPred)
	if err != nil {
		return nil, err
	}

	d := evaluation.Diagnose(position, target, trainM, holdM, evaluation.DefaultThresholds())
	return &d, nil
}

// splitHoldout reserves every row at or after the holdout season.
// evaluation.HoldoutSplit drops the season labels, which the engine
// needs for the artifact's season range, so the split is done here.
func splitHoldout(full *training.Dataset, holdoutSeason int) (*training.Dataset, [][]float64, []float64) {
	train := &training.Dataset{Position: full.Position, Target: full.Target}
	var holdX [][]float64
	var holdY []float64
	for i, season := range full.Seasons {
		if season >= holdoutSeason {
			holdX = append(holdX, full.X[i])
			holdY = append(holdY, full.Y[i])
			continue
		}
		train.X = append(train.X, full.X[i])
		train.Y = append(train.Y, full.Y[i])
		train.Seasons = append(train.Seasons, season)
	}
	return train, holdX, holdY
}

// buildDataset flattens the table into a time-ordered design matrix
// for one pair. Rows without a defensive snapshot or without the
// target stat are dropped, never zero-filled.
func buildDataset(table *features.FeatureTable, position gridiron.Position, target string) *training.Dataset {
	ds := &training.Dataset{Position: position, Target: target}
	for _, row := range table.Rows {
		if row.Position != position || !row.HasDefense {
			continue
		}
		y, ok := row.Targets[target]
		if !ok {
			continue
		}
		ds.X = append(ds.X, row.Values)
		ds.Y = append(ds.Y, y)
		ds.Seasons = append(ds.Seasons, row.Season)
	}
	return ds
}
