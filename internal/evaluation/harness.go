// Package evaluation implements the train/test evaluation of a price
// forecaster: date-based splitting, alignment of forecast and actual
// series, and regression plus directional-classification scoring.
package evaluation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foresightlab/foresight/internal/series"
)

// Default evaluation window configuration. The last TestWindow points of a
// series are held out; anything shorter than MinLength cannot be split.
const (
	DefaultTestWindow = 30
	DefaultMinLength  = 60
)

// Predictor is the external forecasting capability the harness drives. It
// fits on the training series and returns one forecast point per calendar
// day, covering at least horizonDays days past the training series' last
// date. Errors propagate to the harness caller unchanged.
type Predictor interface {
	FitAndForecast(train series.Series, horizonDays int) ([]series.ForecastPoint, error)
}

// Harness runs the full evaluation procedure. It holds no state between
// calls; every evaluation retrains from scratch and concurrent evaluations
// are independent.
type Harness struct {
	testWindow int
	minLength  int
	log        zerolog.Logger
}

// NewHarness creates a harness with the given window configuration. Zero
// values fall back to the defaults.
func NewHarness(testWindow, minLength int, log zerolog.Logger) *Harness {
	if testWindow <= 0 {
		testWindow = DefaultTestWindow
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Harness{
		testWindow: testWindow,
		minLength:  minLength,
		log:        log.With().Str("component", "evaluation").Logger(),
	}
}

// Evaluate splits the series into a training prefix and the last
// testWindow points, has the predictor fit and forecast across the test
// window, and scores the aligned result. The series must be sorted
// ascending by date with unique dates.
//
// The length check runs before the predictor is invoked, so an
// insufficient series never pays for a model fit. The forecast horizon is
// requested in calendar days (train end to test end inclusive), not in
// rows: the series may have weekend/holiday gaps, so the model forecasts
// every calendar day and alignment discards the dates the test window
// doesn't contain.
func (h *Harness) Evaluate(symbol string, s series.Series, p Predictor) (*Result, error) {
	runID := uuid.New().String()
	log := h.log.With().Str("run_id", runID).Str("symbol", symbol).Logger()

	if len(s) < h.minLength {
		log.Warn().Int("points", len(s)).Int("min", h.minLength).Msg("Series too short to evaluate")
		return nil, ErrInsufficientData{Have: len(s), Need: h.minLength}
	}

	train, test := s.SplitTail(h.testWindow)
	horizonDays := series.CalendarDaysBetween(train.Last().Date, test.Last().Date)

	log.Debug().
		Int("train_points", len(train)).
		Int("test_points", len(test)).
		Int("horizon_days", horizonDays).
		Msg("Fitting predictor on training split")

	forecast, err := p.FitAndForecast(train, horizonDays)
	if err != nil {
		return nil, fmt.Errorf("predictor failed for %s: %w", symbol, err)
	}

	pairs := Align(test, forecast)
	if len(pairs) == 0 {
		log.Error().Int("forecast_points", len(forecast)).Msg("Forecast dates do not overlap test window")
		return nil, ErrAlignmentFailure{TestPoints: len(test), ForecastPoints: len(forecast)}
	}

	result := &Result{
		Regression:     ScoreRegression(pairs),
		Classification: ScoreDirection(pairs),
		Meta: Meta{
			Symbol:   symbol,
			TestDays: len(pairs),
		},
	}

	log.Info().
		Int("test_days", len(pairs)).
		Float64("mae", result.Regression.MAE).
		Float64("accuracy", result.Classification.Accuracy).
		Msg("Evaluation complete")

	return result, nil
}
