package ecsc2024

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/testhelpers"
)

func TestEvaluate_RejectsMultiFlagstoreService(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0, 1).
		Team("alpha").
		Config(1, 1).
		Build()

	_, err := New(DefaultParams()).Evaluate(ctf)
	require.Error(t, err)
}

func TestEvaluate_CaptureMovesAttackAndDefense(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Stored: map[string]map[int]int{"web": {0: 1}},
			},
			"beta": {
				States:   map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Captured: []int{1},
			},
		}).
		Build()

	board, err := New(DefaultParams()).Evaluate(ctf)
	require.NoError(t, err)
	assert.Greater(t, board["beta"].Categories["ATK"], 0.0)
	assert.Less(t, board["alpha"].Categories["DEF"], 0.0)
}

func TestEvaluate_AllErrorServiceSkipsSLACounting(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateError}},
		}).
		Build()

	board, err := New(DefaultParams()).Evaluate(ctf)
	require.NoError(t, err)
	assert.Equal(t, 0.0, board["alpha"].Categories["SLA"])
}
