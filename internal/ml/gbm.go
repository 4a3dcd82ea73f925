package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/xCarter93/lineupiq/domain/core"
)

// Ensemble is a gradient-boosted regression ensemble: an additive model
// of depth-limited trees fitted to squared-error gradients, with row and
// column subsampling and L1/L2 leaf regularization. Fitting is
// deterministic for a fixed seed.
//
// The struct serializes to JSON in full, so a persisted artifact can be
// reloaded and produce identical predictions.
type Ensemble struct {
	Params      Hyperparams      `json:"params"`
	BaseScore   float64          `json:"base_score"`
	Trees       []regressionTree `json:"trees"`
	NumFeatures int              `json:"num_features"`
	Seed        int64            `json:"seed"`
}

// NewEnsemble prepares an unfitted ensemble.
func NewEnsemble(params Hyperparams, seed int64) (*Ensemble, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Ensemble{Params: params, Seed: seed}, nil
}

// Fit trains the ensemble on x (n rows, m columns) against y. Degenerate
// inputs (no rows, NaN values, ragged rows) fail before any tree is
// grown so a failed search trial leaves no partial state.
func (e *Ensemble) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(y) == 0 {
		return core.ErrEmptyDataset
	}
	if len(x) != len(y) {
		return fmt.Errorf("feature rows (%d) and targets (%d) differ", len(x), len(y))
	}
	m := len(x[0])
	for i, row := range x {
		if len(row) != m {
			return fmt.Errorf("ragged feature matrix: row %d has %d columns, want %d", i, len(row), m)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite feature value at (%d, %d)", i, j)
			}
		}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite target value at row %d", i)
		}
	}

	n := len(x)
	e.NumFeatures = m
	e.BaseScore = mean(y)
	e.Trees = make([]regressionTree, 0, e.Params.NumTrees)

	rng := rand.New(rand.NewSource(e.Seed))

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = e.BaseScore
	}
	grad := make([]float64, n)
	hess := make([]float64, n)
	for i := range hess {
		hess[i] = 1
	}

	for t := 0; t < e.Params.NumTrees; t++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}

		rows := sampleIndices(rng, n, e.Params.Subsample)
		features := sampleIndices(rng, m, e.Params.ColsampleByTree)

		tree := growTree(x, grad, hess, rows, features, e.Params)
		e.Trees = append(e.Trees, tree)

		for i := range pred {
			pred[i] += e.Params.LearningRate * tree.predict(x[i])
		}
	}

	return nil
}

// PredictOne scores a single feature vector.
func (e *Ensemble) PredictOne(x []float64) (float64, error) {
	if len(x) != e.NumFeatures {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), e.NumFeatures)
	}
	out := e.BaseScore
	for _, tree := range e.Trees {
		out += e.Params.LearningRate * tree.predict(x)
	}
	return out, nil
}

// Predict scores every row of x.
func (e *Ensemble) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := e.PredictOne(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// sampleIndices draws ceil(fraction*n) indices without replacement.
func sampleIndices(rng *rand.Rand, n int, fraction float64) []int {
	k := int(math.Ceil(fraction * float64(n)))
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(n)
	return perm[:k]
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
