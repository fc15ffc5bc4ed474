// Package scoring holds the types and preprocessing helpers shared across
// the scoring formula packages (atklabv1, atklabv2, saarctf2024, ecsc2025,
// ecsc2024), plus the error types formulas return from Evaluate.
package scoring

import (
	"fmt"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
)

// Formula is a pure function from a CTF to its final scoreboard. Every
// concrete formula package (atklabv1.Formula, atklabv2.Formula, ...)
// implements this.
type Formula interface {
	Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error)
}

// ConfigError reports that the CTF's own configuration (teams, config,
// services) is not compatible with a formula's requirements — e.g. a
// configured NOP team that does not appear in ctf.Teams, or a service with
// more than one flagstore where the formula requires exactly one.
type ConfigError struct {
	Formula string
	Field   string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scoring: %s: %s: %s", e.Formula, e.Field, e.Reason)
}

// ParameterError reports that a formula was configured with an invalid
// combination of its own parameters (e.g. a jeopardy curve given an alpha
// or beta it forbids). It is returned when the formula is evaluated.
type ParameterError struct {
	Formula   string
	Parameter string
	Reason    string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("scoring: %s: parameter %s: %s", e.Formula, e.Parameter, e.Reason)
}

// AttackKey identifies the (service, flagstore) of a flag by the round it
// was placed in, so defense credit for a round can be attributed to the
// flags deployed in that round regardless of when they were later stolen.
type AttackKey struct {
	PlacementRound ctfmodel.RoundId
	Service        ctfmodel.ServiceName
	FlagStore      ctfmodel.FlagStoreId
}

// AttackedTeams maps each AttackKey to, for every attacker that ever stole
// a flag placed under that key, the set of victims they stole it from.
// Self-captures, captures made by nopTeam and captures of nopTeam's flags
// (when nopTeam is non-nil) are excluded.
func AttackedTeams(ctf *ctfmodel.CTF, nopTeam *ctfmodel.TeamName) map[AttackKey]map[ctfmodel.TeamName]map[ctfmodel.TeamName]struct{} {
	flags := ctf.Flags()
	out := make(map[AttackKey]map[ctfmodel.TeamName]map[ctfmodel.TeamName]struct{})
	for _, round := range ctf.Rounds {
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			attacker := ctfmodel.TeamName(teamKey)
			for _, flagID := range data.FlagsCaptured {
				flag := flags[flagID]
				if flag.Owner == attacker {
					continue
				}
				if nopTeam != nil && (flag.Owner == *nopTeam || attacker == *nopTeam) {
					continue
				}
				key := AttackKey{PlacementRound: flag.RoundID, Service: flag.Service, FlagStore: flag.FlagStore}
				byAttacker, ok := out[key]
				if !ok {
					byAttacker = make(map[ctfmodel.TeamName]map[ctfmodel.TeamName]struct{})
					out[key] = byAttacker
				}
				victims, ok := byAttacker[attacker]
				if !ok {
					victims = make(map[ctfmodel.TeamName]struct{})
					byAttacker[attacker] = victims
				}
				victims[flag.Owner] = struct{}{}
			}
		})
	}
	return out
}

// ActiveTeams returns the set of teams with at least one service in OK or
// RECOVERING state this round.
func ActiveTeams(round *ctfmodel.OrderedMap[*ctfmodel.TeamRoundData]) map[ctfmodel.TeamName]struct{} {
	out := make(map[ctfmodel.TeamName]struct{})
	round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
		if data == nil {
			return
		}
		for _, state := range data.ServiceStates {
			if state == ctfmodel.ServiceStateOK || state == ctfmodel.ServiceStateRecovering {
				out[ctfmodel.TeamName(teamKey)] = struct{}{}
				return
			}
		}
	})
	return out
}

// ActiveTeamsExcludingNop returns the set of teams, excluding nopTeam (when
// non-nil), with at least one service not in OFFLINE state this round. This
// is ATKLABv2/ECSC2025's shared-preprocessing definition of "active teams"
// (not-OFFLINE, NOP excluded), which is deliberately looser and NOP-aware
// compared to SaarCTF2024's own local OK/RECOVERING-based ActiveTeams.
func ActiveTeamsExcludingNop(round *ctfmodel.OrderedMap[*ctfmodel.TeamRoundData], nopTeam *ctfmodel.TeamName) map[ctfmodel.TeamName]struct{} {
	out := make(map[ctfmodel.TeamName]struct{})
	round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
		if data == nil {
			return
		}
		team := ctfmodel.TeamName(teamKey)
		if nopTeam != nil && team == *nopTeam {
			return
		}
		for _, state := range data.ServiceStates {
			if state != ctfmodel.ServiceStateOffline {
				out[team] = struct{}{}
				return
			}
		}
	})
	return out
}
