package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foresightlab/foresight/internal/series"
)

func d(s string) time.Time {
	t, err := time.ParseInLocation(series.DateFormat, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// linearSeries builds n consecutive daily points on the line
// base + slope*day.
func linearSeries(start time.Time, n int, base, slope float64) series.Series {
	s := make(series.Series, n)
	for i := 0; i < n; i++ {
		s[i] = series.Point{Date: start.AddDate(0, 0, i), Value: base + slope*float64(i)}
	}
	return s
}

func TestTrendModelExtendsALine(t *testing.T) {
	train := linearSeries(d("2024-01-01"), 60, 100, 2)
	model := NewTrendModel()

	forecast, err := model.FitAndForecast(train, 10)
	require.NoError(t, err)
	require.Len(t, forecast, 10)

	// Data on an exact line: OLS recovers it and the forecast continues it.
	for i, fp := range forecast {
		expected := 100 + 2*float64(60+i)
		assert.InDelta(t, expected, fp.Predicted, 1e-6, "day %d", i)
		assert.Equal(t, d("2024-01-01").AddDate(0, 0, 60+i), fp.Date)
	}
}

func TestTrendModelCoversEveryCalendarDay(t *testing.T) {
	train := linearSeries(d("2024-01-01"), 30, 50, 0.5)

	forecast, err := NewTrendModel().FitAndForecast(train, 45)
	require.NoError(t, err)

	require.Len(t, forecast, 45)
	last := train.Last().Date
	for i, fp := range forecast {
		assert.Equal(t, series.Day(last).AddDate(0, 0, i+1), fp.Date)
	}
}

func TestTrendModelSmallSampleFallsBackToLinearFit(t *testing.T) {
	// Below the seasonal-fit threshold; the plain regression still nails a
	// noiseless line.
	train := linearSeries(d("2024-01-01"), 5, 10, 1)

	forecast, err := NewTrendModel().FitAndForecast(train, 3)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, forecast[0].Predicted, 1e-9)
	assert.InDelta(t, 17.0, forecast[2].Predicted, 1e-9)
}

func TestTrendModelRejectsDegenerateInput(t *testing.T) {
	_, err := NewTrendModel().FitAndForecast(series.Series{{Date: d("2024-01-01"), Value: 1}}, 5)
	assert.Error(t, err)

	train := linearSeries(d("2024-01-01"), 10, 1, 1)
	_, err = NewTrendModel().FitAndForecast(train, 0)
	assert.Error(t, err)
}
