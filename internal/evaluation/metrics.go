package evaluation

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Metrics holds the standard regression scores for one model on one
// evaluation set. MAPE is NaN when every actual value is zero.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
	MAPE float64 `json:"mape"`
	N    int     `json:"n"`
}

// Compute scores predictions against actuals. Both slices must be the
// same non-zero length.
func Compute(actual, predicted []float64) (Metrics, error) {
	if len(actual) == 0 {
		return Metrics{}, fmt.Errorf("evaluation: empty sample")
	}
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf("evaluation: %d actuals vs %d predictions", len(actual), len(predicted))
	}

	m := Metrics{N: len(actual)}

	var absSum, sqSum float64
	for i := range actual {
		d := predicted[i] - actual[i]
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(actual))
	m.MAE = absSum / n
	m.RMSE = math.Sqrt(sqSum / n)
	m.R2 = rSquared(actual, sqSum)
	m.MAPE = mape(actual, predicted)
	return m, nil
}

// rSquared computes 1 - SS_res/SS_tot. A constant actual series yields
// zero total variance; R2 is 0 in that case rather than a division by
// zero.
func rSquared(actual []float64, ssRes float64) float64 {
	mean, _ := stats.Mean(actual)
	var ssTot float64
	for _, a := range actual {
		d := a - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// mape averages |err/actual| over samples with non-zero actuals only.
// Zero-valued actuals carry no percentage meaning and are skipped; if
// every actual is zero the result is NaN.
func mape(actual, predicted []float64) float64 {
	var sum float64
	var count int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((predicted[i] - actual[i]) / actual[i])
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count) * 100
}
