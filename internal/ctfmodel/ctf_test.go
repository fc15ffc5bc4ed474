package ctfmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/testhelpers"
)

func threeRoundFixture() *ctfmodel.CTF {
	return testhelpers.NewBuilder().
		Service("web", 0).
		Team("alpha").
		Team("beta").
		Config(2, 0).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 1}}},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 2}}},
		}).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 3}}, Captured: []int{2}},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 4}}},
		}).
		Round(map[string]testhelpers.TeamRound{
			"alpha": {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 5}}},
			"beta":  {States: map[string]ctfmodel.ServiceState{"web": ctfmodel.ServiceStateOK}, Stored: map[string]map[int]int{"web": {0: 6}}, Captured: []int{1}},
		}).
		Build()
}

func TestSlice_FullRangeMatchesOriginal(t *testing.T) {
	t.Parallel()

	ctf := threeRoundFixture()
	sliced := ctf.Slice(0, len(ctf.Rounds))

	require.Len(t, sliced.Rounds, len(ctf.Rounds))
	assert.Equal(t, ctf.Flags(), sliced.Flags())
	assert.Equal(t, len(ctf.FlagCaptures()), len(sliced.FlagCaptures()))
}

func TestSlice_IsIdempotentUnderRepeatedSlicing(t *testing.T) {
	t.Parallel()

	ctf := threeRoundFixture()
	once := ctf.Slice(0, 2)
	twice := once.Slice(0, 2)

	assert.Equal(t, len(once.Rounds), len(twice.Rounds))
	assert.Equal(t, once.Flags(), twice.Flags())
}

func TestSlice_NarrowsFlagsToVisibleRounds(t *testing.T) {
	t.Parallel()

	ctf := threeRoundFixture()
	prefix := ctf.Slice(0, 2)

	_, declaredInFullRange := ctf.Flags()[ctfmodel.FlagId(1)]
	_, declaredInPrefix := prefix.Flags()[ctfmodel.FlagId(1)]
	assert.True(t, declaredInFullRange, "flag 1 is stored in round 0, which is within the full range")
	assert.True(t, declaredInPrefix, "flag 1 is stored in round 0, which is still within the [0,2) prefix")

	_, capturedOutOfRange := prefix.FlagCaptures()[ctfmodel.FlagId(1)]
	assert.False(t, capturedOutOfRange, "flag 1 was captured in round 2, which is outside the [0,2) prefix")
}

func TestSlice_ClampsOutOfBoundsArguments(t *testing.T) {
	t.Parallel()

	ctf := threeRoundFixture()
	assert.Equal(t, len(ctf.Rounds), len(ctf.Slice(-5, 1000).Rounds))
	assert.Equal(t, 0, len(ctf.Slice(5, 5).Rounds))
}
