package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/testhelpers"
)

func TestAttackedTeams_ExcludesSelfCaptureAndNop(t *testing.T) {
	t.Parallel()

	nop := ctfmodel.TeamName("NOP")
	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Team("NOP").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States:   map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Stored:   map[string]map[int]int{"web": {0: 1}},
				Captured: []int{1},
			},
			"beta": {
				States:   map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Captured: []int{1},
			},
			"NOP": {
				States:   map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Captured: []int{1},
			},
		}).
		Build()

	attacked := AttackedTeams(ctf, &nop)
	key := AttackKey{PlacementRound: 0, Service: "web", FlagStore: 0}
	victims := attacked[key]

	assert.NotContains(t, victims, ctfmodel.TeamName("alpha"), "self-capture must not appear")
	assert.NotContains(t, victims, nop, "NOP's capture must not appear")
	assert.Contains(t, victims, ctfmodel.TeamName("beta"))
}

func TestActiveTeamsExcludingNop_ExcludesOfflineAndNop(t *testing.T) {
	t.Parallel()

	nop := ctfmodel.TeamName("NOP")
	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Team("NOP").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOffline}},
			"NOP":   {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}},
		}).
		Build()

	active := ActiveTeamsExcludingNop(ctf.Rounds[0], &nop)
	assert.Contains(t, active, ctfmodel.TeamName("alpha"))
	assert.NotContains(t, active, ctfmodel.TeamName("beta"))
	assert.NotContains(t, active, nop)
}
