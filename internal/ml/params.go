package ml

import (
	"fmt"
)

// Hyperparams configures one gradient-boosted ensemble. The space
// mirrors the usual gradient-boosting knobs: tree shape, shrinkage,
// sampling fractions and leaf regularization.
type Hyperparams struct {
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	NumTrees        int     `json:"num_trees"`
	MinChildWeight  float64 `json:"min_child_weight"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_bytree"`
	RegAlpha        float64 `json:"reg_alpha"`
	RegLambda       float64 `json:"reg_lambda"`
}

// DefaultHyperparams returns a conservative mid-space configuration,
// used when a caller fits without searching.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		MaxDepth:        6,
		LearningRate:    0.1,
		NumTrees:        200,
		MinChildWeight:  1,
		Subsample:       1.0,
		ColsampleByTree: 1.0,
		RegAlpha:        0,
		RegLambda:       1,
	}
}

// Validate checks bounds once before fitting.
func (h Hyperparams) Validate() error {
	if h.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be >= 1, got %d", h.MaxDepth)
	}
	if h.LearningRate <= 0 || h.LearningRate > 1 {
		return fmt.Errorf("learning_rate must be in (0, 1], got %g", h.LearningRate)
	}
	if h.NumTrees < 1 {
		return fmt.Errorf("num_trees must be >= 1, got %d", h.NumTrees)
	}
	if h.MinChildWeight < 0 {
		return fmt.Errorf("min_child_weight must be >= 0, got %g", h.MinChildWeight)
	}
	if h.Subsample <= 0 || h.Subsample > 1 {
		return fmt.Errorf("subsample must be in (0, 1], got %g", h.Subsample)
	}
	if h.ColsampleByTree <= 0 || h.ColsampleByTree > 1 {
		return fmt.Errorf("colsample_bytree must be in (0, 1], got %g", h.ColsampleByTree)
	}
	if h.RegAlpha < 0 || h.RegLambda < 0 {
		return fmt.Errorf("regularization strengths must be >= 0")
	}
	return nil
}
