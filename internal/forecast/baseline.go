package forecast

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/foresightlab/foresight/internal/series"
)

// DefaultSMAPeriod is the lookback of the baseline's moving average.
const DefaultSMAPeriod = 20

// SMABaseline carries the last simple moving average of the training
// series flat across the whole horizon. It exists as a sanity floor: a
// model that cannot beat a flat SMA is not forecasting.
type SMABaseline struct {
	Period int
}

// NewSMABaseline creates a baseline forecaster with the given SMA period
// (DefaultSMAPeriod when non-positive).
func NewSMABaseline(period int) *SMABaseline {
	if period <= 0 {
		period = DefaultSMAPeriod
	}
	return &SMABaseline{Period: period}
}

// FitAndForecast emits the training series' closing SMA for every calendar
// day of the horizon. Series shorter than the SMA period fall back to the
// plain mean.
func (b *SMABaseline) FitAndForecast(train series.Series, horizonDays int) ([]series.ForecastPoint, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("sma baseline requires a non-empty training series")
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d days", horizonDays)
	}

	values := train.Values()
	var level float64
	if len(values) >= b.Period {
		sma := talib.Sma(values, b.Period)
		level = sma[len(sma)-1]
	} else {
		level = stat.Mean(values, nil)
	}

	lastDate := series.Day(train.Last().Date)
	out := make([]series.ForecastPoint, 0, horizonDays)
	for d := 1; d <= horizonDays; d++ {
		out = append(out, series.ForecastPoint{
			Date:      lastDate.AddDate(0, 0, d),
			Predicted: level,
		})
	}
	return out, nil
}
