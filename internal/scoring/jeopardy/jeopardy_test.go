package jeopardy

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
)

func ptr(f float64) *float64 { return &f }

func TestEvaluate_DHM_OneSolveEqualsMax(t *testing.T) {
	t.Parallel()

	value, err := Evaluate(DHM, 1, 10, Params{}, 1, 100)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
}

func TestEvaluate_DHM_RejectsBeta(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(DHM, 1, 10, Params{Beta: ptr(1)}, 1, 100)
	require.Error(t, err)
	var paramErr *scoring.ParameterError
	assert.True(t, errors.As(err, &paramErr))
}

func TestEvaluate_HXP_DecaysTowardZero(t *testing.T) {
	t.Parallel()

	low, err := Evaluate(HXP, 1, 10, Params{}, 0, 100)
	require.NoError(t, err)
	high, err := Evaluate(HXP, 1000, 10, Params{}, 0, 100)
	require.NoError(t, err)
	assert.Greater(t, low, high)
	assert.GreaterOrEqual(t, high, 0.0)
}

func TestEvaluate_ECSC2025_RejectsAlphaAndBeta(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(ECSC2025, 1, 10, Params{Alpha: ptr(1)}, 1, 100)
	require.Error(t, err)
	_, err = Evaluate(ECSC2025, 1, 10, Params{Beta: ptr(1)}, 1, 100)
	require.Error(t, err)
}

func TestEvaluate_ECSC2025_DecaysBelowMinWithManySolves(t *testing.T) {
	t.Parallel()

	// ECSC2025's standalone _jeopardy curve only clamps at 0, unlike the
	// team-scaled ATKLABv2 wrapper around it; with enough solves it truncates
	// straight through any configured min.
	value, err := Evaluate(ECSC2025, 10000, 10, Params{}, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestEvaluate_NeverNegative(t *testing.T) {
	t.Parallel()

	for _, c := range []Curve{DHM, CSCG, HXP, ECSC2025} {
		value, err := Evaluate(c, 1, 10, Params{}, -50, 100)
		require.NoError(t, err)
		assert.False(t, math.Signbit(value) && value != 0)
		assert.GreaterOrEqual(t, value, 0.0)
	}
}
