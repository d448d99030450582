package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDivZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, safeDiv(5, 0), "any numerator over zero should be 0")
	assert.Equal(t, 0.0, safeDiv(0, 0))
	assert.Equal(t, 0.0, safeDiv(-3.7, 0))
	assert.Equal(t, 0.0, safeDiv(math.Inf(1), 0))
}

func TestSafeDivRegularDivision(t *testing.T) {
	assert.Equal(t, 2.5, safeDiv(5, 2))
	assert.Equal(t, -2.0, safeDiv(4, -2))
	assert.InDelta(t, 0.333333, safeDiv(1, 3), 1e-6)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.6667, round4(2.0/3.0))
	assert.Equal(t, 1.2247, round4(math.Sqrt(1.5)))
	assert.Equal(t, 1.2346, round4(1.23456))
	assert.Equal(t, 3.0, round4(3.0))
}
