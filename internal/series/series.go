// Package series defines the time-series value types shared by the dataset
// layer, the forecasters and the evaluation harness.
package series

import (
	"sort"
	"time"
)

// DateFormat is the canonical wire format for calendar dates.
const DateFormat = "2006-01-02"

// Point is a single daily observation (closing price on a trading day).
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an ordered sequence of daily observations, ascending by date.
// Dates within a series are unique.
type Series []Point

// ForecastPoint is a model-predicted value for one calendar date.
type ForecastPoint struct {
	Date      time.Time
	Predicted float64
}

// Sort orders the series ascending by date in place.
func (s Series) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Values returns the observation values in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point of the series. Panics on an empty series;
// callers guard with len checks.
func (s Series) Last() Point {
	return s[len(s)-1]
}

// SplitTail partitions the series into everything before the last n points
// and the last n points themselves. The two halves share backing storage
// with the input. n must satisfy 0 <= n <= len(s).
func (s Series) SplitTail(n int) (train, test Series) {
	cut := len(s) - n
	return s[:cut], s[cut:]
}

// Day truncates a timestamp to midnight UTC, the resolution at which all
// date keys in this package compare.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarDaysBetween returns the number of calendar days from a to b
// (b after a), counting b's date and not a's. Two consecutive days yield 1.
func CalendarDaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
