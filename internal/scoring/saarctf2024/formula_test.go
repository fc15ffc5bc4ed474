package saarctf2024

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/testhelpers"
)

func TestEvaluate_RejectsUnknownNopTeam(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Config(1, 1).
		Build()

	nop := ctfmodel.TeamName("GHOST")
	_, err := New(Params{NopTeam: &nop}).Evaluate(ctf)
	require.Error(t, err)
}

func TestEvaluate_SLAOnlyForOKService(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("NOP").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
		}).
		Build()

	board, err := New(DefaultParams()).Evaluate(ctf)
	require.NoError(t, err)
	assert.Greater(t, board["alpha"].Categories["SLA"], 0.0)
}

func TestEvaluate_AttackAndDefenseOnCapture(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Team("NOP").
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

func TestEvaluate_DefenseBugTogglesTeamCountSource(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Team("NOP").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Stored: map[string]map[int]int{"web": {0: 1}},
			},
			"beta": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOffline}},
		}).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
			"beta": {
				States:   map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Captured: []int{1},
			},
		}).
		Build()

	withBug := DefaultParams()
	withBug.DefenseBug = true
	boardBug, err := New(withBug).Evaluate(ctf)
	require.NoError(t, err)

	withoutBug := DefaultParams()
	withoutBug.DefenseBug = false
	boardNoBug, err := New(withoutBug).Evaluate(ctf)
	require.NoError(t, err)

	assert.NotEqual(t, boardBug["alpha"].Categories["DEF"], boardNoBug["alpha"].Categories["DEF"])
}

// TestEvaluate_SimultaneousCaptureDefendedOnce locks in that a flag captured
// by two teams in the same round only debits its owner's defense once, not
// once per capturing team.
func TestEvaluate_SimultaneousCaptureDefendedOnce(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Team("gamma").
		Team("NOP").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Stored: map[string]map[int]int{"web": {0: 1}},
			},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
			"gamma": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
		}).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Captured: []int{1}},
			"gamma": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Captured: []int{1}},
		}).
		Build()

	board, err := New(DefaultParams()).Evaluate(ctf)
	require.NoError(t, err)

	// 3 active teams throughout, flag owned by alpha, captured by 2 teams in
	// round 1: prevC=0, curC=2, teamCount=3, victimSla=sqrt(3) from round 0's
	// single OK service. Applied once, not once per capturer.
	victimSla := math.Sqrt(3)
	previousDamage := math.Pow(0.0/3.0, 0.3) * victimSla
	currentDamage := math.Pow(2.0/3.0, 0.3) * victimSla
	wantDef := previousDamage - currentDamage

	require.InDelta(t, wantDef, board["alpha"].Categories["DEF"], 1e-9)
}
