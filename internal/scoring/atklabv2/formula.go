// Package atklabv2 implements the second-generation Attacking Lab scoring
// formula: SLA credit scaled by per-flag retrievability rather than raw
// service state, jeopardy-priced attacks, and a defense component that
// rewards teams for flags attackers failed to exploit.
package atklabv2

import (
	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/flagstate"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/jeopardy"
)

// AttackerMode selects which teams are considered candidate attackers of a
// given (service, flagstore) coordinate when computing defense credit.
type AttackerMode int

const (
	// Everyone considers every non-NOP team a candidate attacker, whether
	// or not it actually captured anything at this coordinate.
	Everyone AttackerMode = iota
	// Successful restricts candidate attackers to teams that captured at
	// least one flag at this coordinate.
	Successful
	// Scaled is Successful, additionally scaling the jeopardy value by
	// max_victims / |attackers|.
	Scaled
)

// Params configures a Formula.
type Params struct {
	Jeopardy            jeopardy.Curve
	Alpha               *float64
	Beta                *float64
	Base                float64
	Min                 float64
	Attackers           AttackerMode
	DefenseCompensation bool
	NopTeam             *ctfmodel.TeamName
}

// DefaultParams mirrors the original's dataclass defaults.
func DefaultParams() Params {
	nop := ctfmodel.TeamName("NOP")
	return Params{
		Jeopardy:            jeopardy.CSCG,
		Base:                10.0,
		Min:                 1.0,
		Attackers:           Scaled,
		DefenseCompensation: true,
		NopTeam:             &nop,
	}
}

// Formula is the ATKLABv2 scoring formula.
type Formula struct {
	Params Params
}

// New constructs a Formula.
func New(p Params) *Formula {
	return &Formula{Params: p}
}

func teamExists(ctf *ctfmodel.CTF, team ctfmodel.TeamName) bool {
	for _, t := range ctf.Teams {
		if t == team {
			return true
		}
	}
	return false
}

func isNop(nopTeam *ctfmodel.TeamName, team ctfmodel.TeamName) bool {
	return nopTeam != nil && team == *nopTeam
}

// teamsForJeopardy is the "teams" competitor count fed to the jeopardy
// curves. It counts every team, NOP included, matching the original's
// literal len(ctf.teams); unlike attack/defense crediting, the jeopardy
// curves never special-case NOP out of the count.
func teamsForJeopardy(ctf *ctfmodel.CTF) int {
	return len(ctf.Teams)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Evaluate scores ctf under ATKLABv2.
func (f *Formula) Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error) {
	if f.Params.NopTeam != nil && !teamExists(ctf, *f.Params.NopTeam) {
		return nil, &scoring.ConfigError{Formula: "atklabv2", Field: "nop_team", Reason: "configured NOP team not found in the CTF data"}
	}
	if ctf.Config.FlagValidityPeriod() <= 0 {
		return nil, &scoring.ConfigError{Formula: "atklabv2", Field: "config.flag_validity", Reason: "no flag validity period defined in CTF data"}
	}

	base := f.Params.Base
	if base == 0 {
		base = 10.0
	}
	min := f.Params.Min
	if min == 0 {
		min = 1.0
	}
	jeopardyParams := jeopardy.Params{Alpha: f.Params.Alpha, Beta: f.Params.Beta}
	if err := jeopardyParams.Validate(f.Params.Jeopardy); err != nil {
		return nil, err
	}

	nop := f.Params.NopTeam
	flagValidity := ctf.Config.FlagValidityPeriod()
	scoreboard := scorealg.NewScoreboard(ctf.Teams)
	flags := ctf.Flags()
	captures := ctf.FlagCaptures()
	flagStates := ctf.FlagStates(flagstate.Estimate)
	attackedTeams := scoring.AttackedTeams(ctf, nop)
	jeopardyTeams := teamsForJeopardy(ctf)

	jeopardyValue := func(solves float64) (float64, error) {
		return jeopardy.Evaluate(f.Params.Jeopardy, solves, jeopardyTeams, jeopardyParams, min, base)
	}

	services := map[ctfmodel.ServiceName]*ctfmodel.Service{}
	ctf.Services.Range(func(name string, svc *ctfmodel.Service) {
		services[ctfmodel.ServiceName(name)] = svc
	})

	// SLA and direct attack, per round and team.
	for roundID, round := range ctf.Rounds {
		var rangeErr error
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil || rangeErr != nil {
				return
			}
			team := ctfmodel.TeamName(teamKey)
			score := scorealg.Default(0, 0, 0)

			for serviceName, state := range data.ServiceStates {
				svc := services[serviceName]
				if svc == nil {
					continue
				}
				flagstoreCount := len(svc.FlagStores)
				maxFlags := flagValidity * flagstoreCount
				var present int
				switch state {
				case ctfmodel.ServiceStateOK:
					present = maxFlags
				case ctfmodel.ServiceStateRecovering:
					for _, fsID := range svc.FlagStores {
						key := ctfmodel.ServiceFlagStoreKey{Service: serviceName, FlagStore: fsID}
						for p := maxInt(0, roundID-flagValidity+1); p <= roundID; p++ {
							placedData, ok := ctf.Rounds[p].Get(teamKey)
							if !ok || placedData == nil {
								continue
							}
							flagID, ok := placedData.AllStoredFlags()[key]
							if !ok {
								continue
							}
							if flagStates[roundID][flagID] == ctfmodel.FlagStateOK {
								present++
							}
						}
					}
				default:
					present = 0
				}
				if maxFlags > 0 {
					score = score.Add(scorealg.Default(0, 0, base*float64(present)/float64(maxFlags)*float64(flagstoreCount)))
				}
			}

			for _, flagID := range data.FlagsCaptured {
				flag := flags[flagID]
				if flag.Owner == team || isNop(nop, team) || isNop(nop, flag.Owner) {
					continue
				}
				value, err := jeopardyValue(float64(captures[flagID].Count))
				if err != nil {
					rangeErr = err
					return
				}
				score = score.Add(scorealg.Default(value, 0, 0))
			}

			scoreboard[team] = scoreboard[team].Add(score)
		})
		if rangeErr != nil {
			return nil, rangeErr
		}
	}

	// Defense, computed once per (round, service, flagstore) coordinate and
	// credited directly to the relevant attacker/defender pair.
	activeTeamsByRound := make([]map[ctfmodel.TeamName]struct{}, len(ctf.Rounds))
	for r, round := range ctf.Rounds {
		activeTeamsByRound[r] = scoring.ActiveTeamsExcludingNop(round, nop)
	}

	for roundID, round := range ctf.Rounds {
		for _, fsKey := range ctf.Flagstores() {
			key := scoring.AttackKey{PlacementRound: ctfmodel.RoundId(roundID), Service: fsKey.Service, FlagStore: fsKey.FlagStore}
			victimsByAttacker := attackedTeams[key]

			var attackers []ctfmodel.TeamName
			switch f.Params.Attackers {
			case Everyone:
				for _, t := range ctf.Teams {
					if !isNop(nop, t) {
						attackers = append(attackers, t)
					}
				}
			default: // Successful, Scaled
				for attacker := range victimsByAttacker {
					attackers = append(attackers, attacker)
				}
			}
			if len(attackers) == 0 {
				continue
			}

			for _, attacker := range attackers {
				victims := victimsByAttacker[attacker]
				for _, defender := range ctf.Teams {
					if isNop(nop, defender) {
						continue
					}
					if _, victimized := victims[defender]; victimized {
						continue
					}
					placedData, ok := round.Get(string(defender))
					if !ok || placedData == nil {
						continue
					}
					flagID, ok := placedData.AllStoredFlags()[fsKey]
					if !ok {
						continue
					}

					defense := 0.0
					maxDefense := 0.0
					for c := roundID; c < minInt(len(ctf.Rounds), roundID+flagValidity); c++ {
						maxVictims := maxInt(len(activeTeamsByRound[c])-1, 1)
						notExploited := maxVictims - len(victims)
						value, err := jeopardyValue(float64(notExploited))
						if err != nil {
							return nil, err
						}
						if f.Params.Attackers == Scaled {
							value *= float64(maxVictims) / float64(len(attackers))
						}
						value /= float64(flagValidity)
						maxDefense += value

						defenderData, ok := ctf.Rounds[c].Get(string(defender))
						if !ok || defenderData == nil {
							continue
						}
						state := defenderData.ServiceStates[fsKey.Service]
						if (state == ctfmodel.ServiceStateOK || state == ctfmodel.ServiceStateRecovering) && flagStates[c][flagID] == ctfmodel.FlagStateOK {
							defense += value
						}
					}

					if attacker == defender {
						if f.Params.DefenseCompensation {
							scoreboard[defender] = scoreboard[defender].Add(scorealg.Default(maxDefense, 0, 0))
						}
						continue
					}
					scoreboard[defender] = scoreboard[defender].Add(scorealg.Default(0, defense, 0))
				}
			}
		}
	}

	return scoreboard, nil
}
