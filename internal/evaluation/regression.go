package evaluation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ScoreRegression computes MAE, RMSE, MAPE and R² over aligned pairs.
// Requires at least one pair. Values are rounded to 4 decimals on the way
// out; everything before that stays at full precision.
func ScoreRegression(pairs []AlignedPair) RegressionReport {
	n := len(pairs)

	absErrors := make([]float64, n)
	actuals := make([]float64, n)
	var ssRes, mapeSum float64
	for i, p := range pairs {
		diff := p.Actual - p.Predicted
		absErrors[i] = math.Abs(diff)
		actuals[i] = p.Actual
		ssRes += diff * diff
		mapeSum += safeDiv(absErrors[i], p.Actual)
	}

	mae := stat.Mean(absErrors, nil)
	rmse := math.Sqrt(ssRes / float64(n))
	mape := 100 * mapeSum / float64(n)

	// Total sum of squares around the mean actual. On a flat actual
	// series ssTot is 0 and the residual ratio goes through the shared
	// zero-guard instead of dividing by zero.
	meanActual := stat.Mean(actuals, nil)
	var ssTot float64
	for _, y := range actuals {
		d := y - meanActual
		ssTot += d * d
	}
	r2 := 1 - safeDiv(ssRes, ssTot)

	return RegressionReport{
		MAE:  round4(mae),
		RMSE: round4(rmse),
		MAPE: round4(mape),
		R2:   round4(r2),
	}
}
