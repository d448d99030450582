package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreDirectionScenario(t *testing.T) {
	// prevActual chain 100 -> 102 -> 101 -> 105:
	// actualUp = [1,0,1]; predicted vs prevActual: 101>100, 103>102,
	// 104>101 -> predictedUp = [1,1,1]. tp=2 fp=1 tn=0 fn=0.
	pairs := pairsFrom(
		[]float64{100, 102, 101, 105},
		[]float64{100, 101, 103, 104},
	)

	report := ScoreDirection(pairs)

	assert.Equal(t, ConfusionMatrix{TN: 0, FP: 1, FN: 0, TP: 2}, report.ConfusionMatrix)
	assert.Equal(t, 0.6667, report.Accuracy)
	assert.Equal(t, 0.6667, report.Precision)
	assert.Equal(t, 1.0, report.Recall)
	assert.Equal(t, 0.8, report.F1)
}

func TestScoreDirectionComparesPredictionAgainstPreviousActual(t *testing.T) {
	// The predicted label must compare against the previous ACTUAL, not
	// the previous prediction. Predictions fall monotonically (a
	// self-referential implementation would label every move down), yet
	// each one sits above the previous actual close.
	pairs := pairsFrom(
		[]float64{100, 110, 120},
		[]float64{200, 150, 140},
	)

	report := ScoreDirection(pairs)

	// 150 > 100 and 140 > 110: both predicted up, both actual up.
	assert.Equal(t, ConfusionMatrix{TP: 2}, report.ConfusionMatrix)
	assert.Equal(t, 1.0, report.Accuracy)
}

func TestScoreDirectionTieCountsAsDown(t *testing.T) {
	// Actual is flat (tie -> label down) while the prediction sits above
	// the previous actual (label up): a false positive, not a neutral.
	pairs := pairsFrom(
		[]float64{100, 100},
		[]float64{100, 101},
	)

	report := ScoreDirection(pairs)

	assert.Equal(t, ConfusionMatrix{FP: 1}, report.ConfusionMatrix)
	assert.Equal(t, 0.0, report.Accuracy)
	assert.Equal(t, 0.0, report.Precision)
	assert.Equal(t, 0.0, report.Recall)
	assert.Equal(t, 0.0, report.F1)
}

func TestScoreDirectionPredictedTieIsDown(t *testing.T) {
	// Prediction exactly equal to the previous actual is a down call.
	pairs := pairsFrom(
		[]float64{100, 100},
		[]float64{100, 100},
	)

	report := ScoreDirection(pairs)

	assert.Equal(t, ConfusionMatrix{TN: 1}, report.ConfusionMatrix)
	assert.Equal(t, 1.0, report.Accuracy)
	// No positive calls at all: precision and recall collapse to 0, and
	// F1's precision+recall guard keeps it at 0 too.
	assert.Equal(t, 0.0, report.Precision)
	assert.Equal(t, 0.0, report.Recall)
	assert.Equal(t, 0.0, report.F1)
}

func TestScoreDirectionSinglePairIsAllZero(t *testing.T) {
	report := ScoreDirection(pairsFrom([]float64{100}, []float64{99}))

	assert.Equal(t, ClassificationReport{}, report)
}

func TestScoreDirectionEmptyIsAllZero(t *testing.T) {
	report := ScoreDirection(nil)

	assert.Equal(t, ClassificationReport{}, report)
}

func TestScoreDirectionConfusionTotals(t *testing.T) {
	pairs := pairsFrom(
		[]float64{100, 101, 99, 98, 103, 103, 90},
		[]float64{100, 100, 102, 99, 101, 104, 95},
	)

	report := ScoreDirection(pairs)

	cm := report.ConfusionMatrix
	assert.Equal(t, len(pairs)-1, cm.TP+cm.TN+cm.FP+cm.FN,
		"confusion matrix cells must sum to the number of comparisons")
}
