package evaluation

import "math"

// safeDiv returns a/b, or 0 when b is zero. Every ratio in this package
// (MAPE terms, R², accuracy, precision, recall, F1) goes through this one
// helper so the zero-denominator policy is identical everywhere: a metric
// that would be undefined or infinite collapses to 0 instead.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// round4 rounds to 4 decimal places. Applied once, at the reporting
// boundary; intermediate computations stay at full precision.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
