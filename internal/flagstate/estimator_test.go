package flagstate

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/testhelpers"
)

func TestEstimate_OKMarksStoredFlagsPresent(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
				Stored: map[string]map[int]int{"web": {0: 1}},
			},
		}).
		Build()

	states := Estimate(ctf)
	require.Len(t, states, 1)
	assert.Equal(t, ctfmodel.FlagStateOK, states[0][ctfmodel.FlagId(1)])
}

func TestEstimate_OfflineMarksStoredFlagsMissing(t *testing.T) {
	t.Parallel()

	ctf := testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Config(1, 1).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {
				States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOffline},
				Stored: map[string]map[int]int{"web": {0: 1}},
			},
		}).
		Build()

	states := Estimate(ctf)
	assert.Equal(t, ctfmodel.FlagStateMissing, states[0][ctfmodel.FlagId(1)])
}

func TestEstimate_IsIdempotentAcrossRepeatedCalls(t *testing.T) {
	Convey("Given a CTF with a mix of service states", t, func() {
		ctf := testhelpers.NewBuilder().
			Service("web", 0).
			Team("alpha").
			Config(2, 2).
			Round(map[string]testhelpers.TeamRound{
				"alpha": {
					States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK},
					Stored: map[string]map[int]int{"web": {0: 1}},
				},
			}).
			Round(map[string]testhelpers.TeamRound{
				"alpha": {
					States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateRecovering},
					Stored: map[string]map[int]int{"web": {0: 2}},
				},
			}).
			Build()

		Convey("Estimating twice yields identical results", func() {
			first := Estimate(ctf)
			second := Estimate(ctf)
			So(first, ShouldResemble, second)
		})

		Convey("CTF.FlagStates only estimates once, memoized on the CTF value", func() {
			a := ctf.FlagStates(Estimate)
			b := ctf.FlagStates(Estimate)
			So(len(a), ShouldEqual, len(b))
			So(&a[0], ShouldEqual, &b[0])
		})
	})
}
