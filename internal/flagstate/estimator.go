// Package flagstate estimates, from recorded service states alone, which
// flags were actually retrievable in a given round. Real A/D game servers
// rarely record per-flag availability directly — only the checker's
// overall verdict for a service — so this is a best-effort reconstruction,
// not a ground truth.
package flagstate

import (
	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
)

// Estimate computes a FlagState for every flag checked in every round, from
// the service states recorded that round. It satisfies
// ctfmodel.FlagStateEstimator.
func Estimate(ctf *ctfmodel.CTF) []map[ctfmodel.FlagId]ctfmodel.FlagState {
	retention := ctf.Config.FlagRetentionPeriod()
	out := make([]map[ctfmodel.FlagId]ctfmodel.FlagState, len(ctf.Rounds))

	for roundID, round := range ctf.Rounds {
		result := make(map[ctfmodel.FlagId]ctfmodel.FlagState)
		for _, teamKey := range round.Keys() {
			team := ctfmodel.TeamName(teamKey)
			data, _ := round.Get(teamKey)
			if data == nil {
				continue
			}
			for service, state := range data.ServiceStates {
				checked := flagsStoredInRange(ctf, team, string(service), roundID-retention+1, roundID)
				switch state {
				case ctfmodel.ServiceStateOK, ctfmodel.ServiceStateError:
					// OK: we know for sure every flag in the retention window
					// is present. ERROR: a checker-internal failure, not a
					// missing flag — assume present for fairness.
					for f := range checked {
						result[f] = ctfmodel.FlagStateOK
					}
				case ctfmodel.ServiceStateRecovering:
					present := recoveringPresentCount(ctf, team, string(service), roundID, retention)
					presentFlags := flagsStoredInRange(ctf, team, string(service), roundID-present+1, roundID)
					for f := range checked {
						if _, ok := presentFlags[f]; ok {
							result[f] = ctfmodel.FlagStateOK
						} else {
							result[f] = ctfmodel.FlagStateMissing
						}
					}
				case ctfmodel.ServiceStateOffline, ctfmodel.ServiceStateMumble:
					// OFFLINE: unreachable, nothing checkable. MUMBLE: unknown
					// which flags remain; treat the same as unavailable.
					for f := range checked {
						result[f] = ctfmodel.FlagStateMissing
					}
				}
			}
		}
		out[roundID] = result
	}
	return out
}

// recoveringPresentCount estimates how many of the most recent
// flag_retention-1 rounds' flags are still present for a RECOVERING
// service, by scanning forward until the service returns to OK.
func recoveringPresentCount(ctf *ctfmodel.CTF, team ctfmodel.TeamName, service string, roundID, retention int) int {
	present := retention - 1
	for future := roundID + 1; future < roundID+retention; future++ {
		if future >= len(ctf.Rounds) {
			break
		}
		futureRound := ctf.Rounds[future]
		futureData, ok := futureRound.Get(string(team))
		if !ok || futureData == nil {
			break
		}
		if futureData.ServiceStates[ctfmodel.ServiceName(service)] == ctfmodel.ServiceStateOK {
			break
		}
		present--
	}
	if present > retention-1 {
		present = retention - 1
	}
	if present < 1 {
		present = 1
	}
	return present
}

// flagsStoredInRange unions the flags a team stored for a service across
// rounds [from, to] (inclusive, clipped to the valid round range).
func flagsStoredInRange(ctf *ctfmodel.CTF, team ctfmodel.TeamName, service string, from, to int) map[ctfmodel.FlagId]struct{} {
	out := make(map[ctfmodel.FlagId]struct{})
	if from < 0 {
		from = 0
	}
	if to >= len(ctf.Rounds) {
		to = len(ctf.Rounds) - 1
	}
	for r := from; r <= to; r++ {
		data, ok := ctf.Rounds[r].Get(string(team))
		if !ok || data == nil || data.FlagsStored == nil {
			continue
		}
		perStore, ok := data.FlagsStored.Get(service)
		if !ok || perStore == nil {
			continue
		}
		perStore.Range(func(_ string, flagID ctfmodel.FlagId) {
			out[flagID] = struct{}{}
		})
	}
	return out
}
