package evaluation

import "fmt"

// ErrInsufficientData indicates the input series is too short to split into
// a training prefix and a held-out test window. Recoverable: the caller
// should surface it to the user rather than treat it as a system fault.
type ErrInsufficientData struct {
	Have int
	Need int
}

func (e ErrInsufficientData) Error() string {
	return fmt.Sprintf("not enough data to compute metrics: have %d points, need %d", e.Have, e.Need)
}

// ErrAlignmentFailure indicates the forecast dates did not overlap the
// held-out test window at all, so no pair could be scored.
type ErrAlignmentFailure struct {
	TestPoints     int
	ForecastPoints int
}

func (e ErrAlignmentFailure) Error() string {
	return fmt.Sprintf("could not align predictions with test data: %d test points, %d forecast points, 0 shared dates",
		e.TestPoints, e.ForecastPoints)
}
