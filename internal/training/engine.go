package training

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/xCarter93/lineupiq/domain/core"
	"github.com/xCarter93/lineupiq/domain/gridiron"
	"github.com/xCarter93/lineupiq/internal"
	"github.com/xCarter93/lineupiq/internal/ml"
	"github.com/xCarter93/lineupiq/models"
)

// RunState tracks a training run through its lifecycle. FAILED is
// terminal; every other state advances in order.
type RunState string

const (
	StateInitialized  RunState = "INITIALIZED"
	StateSearching    RunState = "SEARCHING"
	StateBestSelected RunState = "BEST_SELECTED"
	StateRefit        RunState = "REFIT"
	StatePersisted    RunState = "PERSISTED"
	StateFailed       RunState = "FAILED"
)

// Dataset is a time-ordered design matrix for one (position, target)
// pair. Rows must already be sorted by (season, week); the fold
// splitter relies on that ordering for temporal integrity.
type Dataset struct {
	Position gridiron.Position
	Target   string
	X        [][]float64
	Y        []float64
	Seasons  []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Y) }

// SeasonRange reports the earliest and latest seasons in the dataset.
func (d *Dataset) SeasonRange() (int, int) {
	if len(d.Seasons) == 0 {
		return 0, 0
	}
	lo, hi := d.Seasons[0], d.Seasons[0]
	for _, s := range d.Seasons[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// Validate checks shape and time ordering before a run starts.
func (d *Dataset) Validate() error {
	if len(d.X) == 0 || len(d.Y) == 0 {
		return core.ErrEmptyDataset
	}
	if len(d.X) != len(d.Y) {
		return fmt.Errorf("dataset %s/%s: %d feature rows vs %d targets", d.Position, d.Target, len(d.X), len(d.Y))
	}
	if len(d.Seasons) != len(d.Y) {
		return fmt.Errorf("dataset %s/%s: %d season labels vs %d targets", d.Position, d.Target, len(d.Seasons), len(d.Y))
	}
	for i := 1; i < len(d.Seasons); i++ {
		if d.Seasons[i] < d.Seasons[i-1] {
			return fmt.Errorf("%w: dataset %s/%s row %d (season %d) follows season %d",
				core.ErrFutureData, d.Position, d.Target, i, d.Seasons[i], d.Seasons[i-1])
		}
	}
	return nil
}

// Trial records one hyperparameter evaluation. Failed trials keep a
// score of +Inf so the sampler and the best-selection pass skip them.
type Trial struct {
	Number   int            `json:"number"`
	Params   ml.Hyperparams `json:"params"`
	FoldRMSE []float64      `json:"fold_rmse,omitempty"`
	Score    float64        `json:"score"`
	Err      string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Config bounds a run's hyperparameter search.
type Config struct {
	Folds      int
	MaxTrials  int
	Seed       int64
	TimeBudget time.Duration // zero means unbounded
}

// DefaultConfig mirrors the defaults used in batch training.
func DefaultConfig() Config {
	return Config{Folds: 5, MaxTrials: 50, Seed: 42}
}

// Validate rejects configurations outside supported bounds.
func (c Config) Validate() error {
	if c.Folds < 2 {
		return fmt.Errorf("folds must be at least 2, got %d", c.Folds)
	}
	if c.MaxTrials < 1 || c.MaxTrials > 100 {
		return fmt.Errorf("max trials must be in [1,100], got %d", c.MaxTrials)
	}
	return nil
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    core.RunID
	State    RunState
	Best     *Trial
	Trials   []Trial
	Artifact *models.ModelArtifact
	Partial  bool
	Elapsed  time.Duration
}

// Engine runs the hyperparameter search and final refit for one
// (position, target) dataset.
type Engine struct {
	cfg    Config
	logger *internal.Logger
}

// NewEngine returns an engine with a validated configuration.
func NewEngine(cfg Config, logger *internal.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Run executes the full lifecycle: forward-chaining CV over TPE trials,
// best-trial selection, refit on the full dataset, and artifact
// assembly. The returned Result records the terminal state even on
// error so callers can persist partial run telemetry.
func (e *Engine) Run(ctx context.Context, ds *Dataset, version core.PipelineVersion, columns []string) (*Result, error) {
	res := &Result{RunID: core.NewRunID(), State: StateInitialized}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	if err := ds.Validate(); err != nil {
		res.State = StateFailed
		return res, err
	}

	folds, err := ForwardChainingSplit(ds.Len(), e.cfg.Folds)
	if err != nil {
		res.State = StateFailed
		return res, err
	}

	e.logger.Info("[Training] run %s started: %s/%s, %d samples, %d folds, %d trials",
		res.RunID, ds.Position, ds.Target, ds.Len(), len(folds), e.cfg.MaxTrials)

	res.State = StateSearching
	sampler := ml.NewTPESampler(e.cfg.Seed)

	var deadline time.Time
	if e.cfg.TimeBudget > 0 {
		deadline = start.Add(e.cfg.TimeBudget)
	}

	for trial := 0; trial < e.cfg.MaxTrials; trial++ {
		if err := ctx.Err(); err != nil {
			res.State = StateFailed
			return res, err
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			e.logger.Warn("[Training] run %s hit time budget after %d trials", res.RunID, trial)
			res.Partial = true
			break
		}

		params := sampler.Suggest()
		t := e.runTrial(ctx, trial, params, ds, folds)
		sampler.Observe(params, t.Score)
		res.Trials = append(res.Trials, t)

		if t.Err != "" {
			e.logger.Warn("[Training] run %s trial %d failed: %s", res.RunID, trial, t.Err)
			continue
		}
		e.logger.Debug("[Training] run %s trial %d score %.4f", res.RunID, trial, t.Score)
	}

	best := bestTrial(res.Trials)
	if best == nil {
		res.State = StateFailed
		return res, core.ErrAllTrialsFailed
	}
	res.Best = best
	res.State = StateBestSelected
	e.logger.Info("[Training] run %s best trial %d: rmse %.4f", res.RunID, best.Number, best.Score)

	res.State = StateRefit
	ensemble, err := ml.NewEnsemble(best.Params, e.cfg.Seed)
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("refit: %w", err)
	}
	if err := ensemble.Fit(ds.X, ds.Y); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("refit: %w", err)
	}

	preds, err := ensemble.Predict(ds.X)
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("refit scoring: %w", err)
	}
	trainRMSE := rmse(ds.Y, preds)

	mean, std := foldSummary(best.FoldRMSE)
	seasonStart, seasonEnd := ds.SeasonRange()
	succeeded, failed := trialCounts(res.Trials)

	res.Artifact = &models.ModelArtifact{
		Key:             models.ArtifactKey(ds.Position, ds.Target),
		Position:        ds.Position,
		Target:          ds.Target,
		RunID:           res.RunID,
		TrainedAt:       time.Now().UTC(),
		PipelineVersion: version,
		FeatureColumns:  columns,
		Params:          best.Params,
		Ensemble:        ensemble,
		CVFoldRMSE:      best.FoldRMSE,
		CVRMSEMean:      mean,
		CVRMSEStd:       std,
		TrainRMSE:       trainRMSE,
		SeasonStart:     seasonStart,
		SeasonEnd:       seasonEnd,
		NumSamples:      ds.Len(),
		TrialsSucceeded: succeeded,
		TrialsFailed:    failed,
		PartialSearch:   res.Partial,
	}
	if err := res.Artifact.Validate(); err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("artifact validation: %w", err)
	}

	res.State = StatePersisted
	return res, nil
}

// runTrial scores one hyperparameter point across all folds. Any fold
// error fails the whole trial.
func (e *Engine) runTrial(ctx context.Context, number int, params ml.Hyperparams, ds *Dataset, folds []Fold) Trial {
	t := Trial{Number: number, Params: params, Score: math.Inf(1)}
	started := time.Now()
	defer func() { t.Duration = time.Since(started) }()

	if err := params.Validate(); err != nil {
		t.Err = err.Error()
		return t
	}

	foldRMSE := make([]float64, 0, len(folds))
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			t.Err = err.Error()
			return t
		}
		ens, err := ml.NewEnsemble(params, e.cfg.Seed+int64(number))
		if err != nil {
			t.Err = err.Error()
			return t
		}
		if err := ens.Fit(ds.X[:fold.TrainEnd], ds.Y[:fold.TrainEnd]); err != nil {
			t.Err = err.Error()
			return t
		}
		preds, err := ens.Predict(ds.X[fold.ValStart:fold.ValEnd])
		if err != nil {
			t.Err = err.Error()
			return t
		}
		foldRMSE = append(foldRMSE, rmse(ds.Y[fold.ValStart:fold.ValEnd], preds))
	}

	t.FoldRMSE = foldRMSE
	score, _ := stats.Mean(foldRMSE)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Err = "non-finite fold score"
		t.Score = math.Inf(1)
		return t
	}
	t.Score = score
	return t
}

// bestTrial returns the lowest-scoring successful trial. Ties resolve
// to the earliest trial because the scan keeps the first minimum.
func bestTrial(trials []Trial) *Trial {
	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Err != "" || math.IsInf(t.Score, 1) {
			continue
		}
		if best == nil || t.Score < best.Score {
			best = t
		}
	}
	return best
}

func trialCounts(trials []Trial) (succeeded, failed int) {
	for _, t := range trials {
		if t.Err != "" || math.IsInf(t.Score, 1) {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

func foldSummary(foldRMSE []float64) (mean, std float64) {
	if len(foldRMSE) == 0 {
		return 0, 0
	}
	mean, _ = stats.Mean(foldRMSE)
	std, _ = stats.StandardDeviation(foldRMSE)
	return mean, std
}

func rmse(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return math.NaN()
	}
	var sum float64
	for i := range actual {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}
