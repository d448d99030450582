package evaluation

import (
	"github.com/foresightlab/foresight/internal/series"
)

// Align inner-joins the held-out test series with a forecast on exact
// calendar date. Output order follows the test series (ascending by date),
// which the directional scorer depends on. An empty result is not an error
// here; the harness decides whether that is fatal.
func Align(test series.Series, forecast []series.ForecastPoint) []AlignedPair {
	predicted := make(map[string]float64, len(forecast))
	for _, fp := range forecast {
		predicted[fp.Date.Format(series.DateFormat)] = fp.Predicted
	}

	pairs := make([]AlignedPair, 0, len(test))
	for _, p := range test {
		yhat, ok := predicted[p.Date.Format(series.DateFormat)]
		if !ok {
			continue
		}
		pairs = append(pairs, AlignedPair{Actual: p.Value, Predicted: yhat})
	}
	return pairs
}
