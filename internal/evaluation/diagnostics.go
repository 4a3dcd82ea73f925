package evaluation

import (
	"fmt"
	"math"

	"github.com/xCarter93/lineupiq/domain/gridiron"
)

// Assessment labels how a model generalizes from its training set to a
// held-out set. These are advisory: nothing downstream blocks on them.
type Assessment string

const (
	AssessmentHealthy     Assessment = "healthy"
	AssessmentOverfitting Assessment = "overfitting"
	AssessmentUnderfit    Assessment = "underfitting"
)

// Thresholds controls the fit assessment. Defaults match the batch
// pipeline's accepted tolerances.
type Thresholds struct {
	// OverfitRatio is the holdout/train RMSE ratio above which a model
	// is flagged as overfitting.
	OverfitRatio float64
	// UnderfitTrainRMSE is the train RMSE above which, combined with a
	// near-flat ratio, the model is flagged as underfitting.
	UnderfitTrainRMSE float64
	// UnderfitMaxRatio is the ratio ceiling for the underfit flag.
	UnderfitMaxRatio float64
}

// DefaultThresholds returns the standard tolerances.
func DefaultThresholds() Thresholds {
	return Thresholds{OverfitRatio: 1.3, UnderfitTrainRMSE: 50, UnderfitMaxRatio: 1.1}
}

// Diagnostic is the fit report for one (position, target) model.
type Diagnostic struct {
	Position       gridiron.Position `json:"position"`
	Target         string            `json:"target"`
	Train          Metrics           `json:"train"`
	Holdout        Metrics           `json:"holdout"`
	OverfitRatio   float64           `json:"overfit_ratio"`
	Assessment     Assessment        `json:"assessment"`
	Recommendation string            `json:"recommendation,omitempty"`
}

// Diagnose compares training and holdout performance. A degenerate
// train RMSE of zero yields an infinite ratio, which reads as
// overfitting.
func Diagnose(position gridiron.Position, target string, train, holdout Metrics, th Thresholds) Diagnostic {
	d := Diagnostic{Position: position, Target: target, Train: train, Holdout: holdout}

	if train.RMSE == 0 {
		d.OverfitRatio = math.Inf(1)
	} else {
		d.OverfitRatio = holdout.RMSE / train.RMSE
	}

	switch {
	case d.OverfitRatio > th.OverfitRatio:
		d.Assessment = AssessmentOverfitting
		d.Recommendation = "holdout error well above train error; reduce tree depth or raise regularization"
	case train.RMSE > th.UnderfitTrainRMSE && d.OverfitRatio < th.UnderfitMaxRatio:
		d.Assessment = AssessmentUnderfit
		d.Recommendation = "high error on both sets; add trees or loosen regularization"
	default:
		d.Assessment = AssessmentHealthy
	}
	return d
}

// HoldoutSplit partitions time-ordered rows into training and holdout
// sets by season: every row in or after holdoutSeason goes to the
// holdout set. Returns an error when either side comes out empty.
func HoldoutSplit(x [][]float64, y []float64, seasons []int, holdoutSeason int) (trainX [][]float64, trainY []float64, holdX [][]float64, holdY []float64, err error) {
	if len(x) != len(y) || len(x) != len(seasons) {
		return nil, nil, nil, nil, fmt.Errorf("holdout split: mismatched lengths %d/%d/%d", len(x), len(y), len(seasons))
	}
	for i, s := range seasons {
		if s >= holdoutSeason {
			holdX = append(holdX, x[i])
			holdY = append(holdY, y[i])
		} else {
			trainX = append(trainX, x[i])
			trainY = append(trainY, y[i])
		}
	}
	if len(trainY) == 0 || len(holdY) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("holdout split at season %d left an empty side (%d train, %d holdout)", holdoutSeason, len(trainY), len(holdY))
	}
	return trainX, trainY, holdX, holdY, nil
}
