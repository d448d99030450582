package evaluation

// ScoreDirection computes the up/down directional-call metrics over
// chronologically ordered aligned pairs.
//
// Labels are derived, not given. Walking the pairs in date order with a
// running prevActual (seeded from the first pair's actual):
//
//	actualUp    = actual_i    > prevActual
//	predictedUp = predicted_i > prevActual
//
// The predicted label compares the current prediction against the previous
// ACTUAL close, not the previous prediction: it measures whether the model
// called the move from the last known real price. prevActual always
// advances to the actual value, never the predicted one. Ties count as
// down on both sides.
//
// With fewer than two pairs no comparison is possible and the report is
// all zeros.
func ScoreDirection(pairs []AlignedPair) ClassificationReport {
	var cm ConfusionMatrix

	prevActual := 0.0
	for i, p := range pairs {
		if i == 0 {
			prevActual = p.Actual
			continue
		}
		actualUp := p.Actual > prevActual
		predictedUp := p.Predicted > prevActual
		switch {
		case actualUp && predictedUp:
			cm.TP++
		case !actualUp && !predictedUp:
			cm.TN++
		case !actualUp && predictedUp:
			cm.FP++
		default:
			cm.FN++
		}
		prevActual = p.Actual
	}

	m := cm.TP + cm.TN + cm.FP + cm.FN
	if m == 0 {
		return ClassificationReport{}
	}

	accuracy := safeDiv(float64(cm.TP+cm.TN), float64(m))
	precision := safeDiv(float64(cm.TP), float64(cm.TP+cm.FP))
	recall := safeDiv(float64(cm.TP), float64(cm.TP+cm.FN))

	// F1 keeps its own guard on precision+recall in addition to safeDiv.
	f1 := 0.0
	if precision+recall > 0 {
		f1 = safeDiv(2*precision*recall, precision+recall)
	}

	return ClassificationReport{
		Accuracy:        round4(accuracy),
		Precision:       round4(precision),
		Recall:          round4(recall),
		F1:              round4(f1),
		ConfusionMatrix: cm,
	}
}
