package training

import (
	"fmt"

	"github.com/xCarter93/lineupiq/domain/core"
)

// Fold is one forward-chaining split over a time-ordered dataset:
// training rows [0, TrainEnd) strictly precede validation rows
// [ValStart, ValEnd). TrainEnd always equals ValStart, so no later
// sample can ever sit in a training fold whose validation fold holds an
// earlier one.
type Fold struct {
	TrainEnd int
	ValStart int
	ValEnd   int
}

// Validate asserts the temporal boundary of one fold: validation rows
// must start at or after the end of the training prefix.
func (f Fold) Validate() error {
	if f.TrainEnd <= 0 || f.ValEnd <= f.ValStart {
		return fmt.Errorf("fold has an empty side: train [0,%d), val [%d,%d)", f.TrainEnd, f.ValStart, f.ValEnd)
	}
	if f.ValStart < f.TrainEnd {
		return fmt.Errorf("%w: fold trains through row %d but validates from row %d", core.ErrLeakage, f.TrainEnd, f.ValStart)
	}
	return nil
}

// ForwardChainingSplit produces k folds over n time-ordered samples.
// Fold i trains on the first (i+1) blocks and validates on block (i+2),
// the walk-forward scheme: every validation window occurs strictly
// after everything it is predicted from.
func ForwardChainingSplit(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("forward chaining needs at least 2 folds, got %d", k)
	}
	if n < k+1 {
		return nil, fmt.Errorf("cannot split %d samples into %d forward-chaining folds", n, k)
	}

	blockSize := n / (k + 1)
	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		valStart := (i + 1) * blockSize
		valEnd := (i + 2) * blockSize
		if i == k-1 {
			valEnd = n // last fold absorbs the remainder
		}
		folds = append(folds, Fold{TrainEnd: valStart, ValStart: valStart, ValEnd: valEnd})
	}
	for _, f := range folds {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	return folds, nil
}
