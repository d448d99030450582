package evaluation

// AlignedPair is one (actual, predicted) value pair sharing a calendar date,
// produced by the inner join of the held-out test series with a forecast.
type AlignedPair struct {
	Actual    float64
	Predicted float64
}

// RegressionReport holds the value-closeness metrics for one evaluation.
// All fields are rounded to 4 decimals at the reporting boundary.
type RegressionReport struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// ConfusionMatrix counts directional-call outcomes. The four cells sum to
// the number of directional comparisons made (aligned pairs minus one).
type ConfusionMatrix struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

// ClassificationReport holds the up/down directional-call metrics.
type ClassificationReport struct {
	Accuracy        float64         `json:"accuracy"`
	Precision       float64         `json:"precision"`
	Recall          float64         `json:"recall"`
	F1              float64         `json:"f1"`
	ConfusionMatrix ConfusionMatrix `json:"confusion_matrix"`
}

// Meta carries evaluation context back to the caller. TestDays is the
// number of aligned test points actually scored, not the configured window.
type Meta struct {
	Symbol   string `json:"symbol"`
	TestDays int    `json:"test_days"`
}

// Result is the complete metrics report for one evaluation run.
type Result struct {
	Regression     RegressionReport     `json:"regression"`
	Classification ClassificationReport `json:"classification"`
	Meta           Meta                 `json:"meta"`
}
