// Package forecast provides the forecasting models Foresight evaluates.
// Every model satisfies evaluation.Predictor: fit on a training series,
// emit one predicted value per calendar day past the training end.
package forecast

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/foresightlab/foresight/internal/series"
)

// trendFeatures is the design-matrix width of the full model: intercept,
// linear trend, and six day-of-week dummies (Sunday is the base level).
const trendFeatures = 8

// TrendModel fits a least-squares linear trend with day-of-week
// seasonality, a deliberately simple stand-in for heavier decomposition
// models. Stateless; fitting happens inside FitAndForecast on every call.
type TrendModel struct{}

// NewTrendModel creates a trend forecaster.
func NewTrendModel() *TrendModel {
	return &TrendModel{}
}

// FitAndForecast fits on the training series and forecasts one point per
// calendar day for horizonDays days after the last training date.
//
// With too few observations to identify the seasonal terms the model
// degrades to a plain linear regression on time rather than failing.
func (m *TrendModel) FitAndForecast(train series.Series, horizonDays int) ([]series.ForecastPoint, error) {
	if len(train) < 2 {
		return nil, fmt.Errorf("trend model requires at least 2 training points, got %d", len(train))
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d days", horizonDays)
	}

	origin := series.Day(train[0].Date)

	var predict func(t float64, weekday int) float64
	if len(train) >= 2*trendFeatures {
		beta, err := fitSeasonal(train, origin)
		if err != nil {
			return nil, fmt.Errorf("failed to fit trend model: %w", err)
		}
		predict = func(t float64, weekday int) float64 {
			y := beta[0] + beta[1]*t
			if weekday > 0 {
				y += beta[1+weekday]
			}
			return y
		}
	} else {
		alpha, slope := fitLinear(train, origin)
		predict = func(t float64, _ int) float64 {
			return alpha + slope*t
		}
	}

	lastDate := series.Day(train.Last().Date)
	out := make([]series.ForecastPoint, 0, horizonDays)
	for d := 1; d <= horizonDays; d++ {
		date := lastDate.AddDate(0, 0, d)
		t := float64(series.CalendarDaysBetween(origin, date))
		out = append(out, series.ForecastPoint{
			Date:      date,
			Predicted: predict(t, int(date.Weekday())),
		})
	}
	return out, nil
}

// fitSeasonal solves the full ordinary-least-squares system via QR
// factorization, returning the 8 coefficients of the seasonal trend model.
func fitSeasonal(train series.Series, origin time.Time) ([]float64, error) {
	n := len(train)
	x := mat.NewDense(n, trendFeatures, nil)
	y := mat.NewDense(n, 1, nil)

	for i, p := range train {
		x.Set(i, 0, 1)
		x.Set(i, 1, float64(series.CalendarDaysBetween(origin, p.Date)))
		if wd := int(series.Day(p.Date).Weekday()); wd > 0 {
			x.Set(i, 1+wd, 1)
		}
		y.Set(i, 0, p.Value)
	}

	var qr mat.QR
	qr.Factorize(x)

	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, y); err != nil {
		return nil, err
	}

	beta := make([]float64, trendFeatures)
	for j := range beta {
		beta[j] = coef.At(j, 0)
	}
	return beta, nil
}

// fitLinear is the small-sample fallback: simple regression of value on
// days-since-origin.
func fitLinear(train series.Series, origin time.Time) (alpha, slope float64) {
	ts := make([]float64, len(train))
	ys := make([]float64, len(train))
	for i, p := range train {
		ts[i] = float64(series.CalendarDaysBetween(origin, p.Date))
		ys[i] = p.Value
	}
	return stat.LinearRegression(ts, ys, nil, false)
}
