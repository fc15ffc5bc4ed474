// Package saarctf2024 implements the saarCTF 2024 scoring formula: a
// rank-weighted attack bonus (attacking a strong team is worth more),
// a retroactive attack update as a flag accrues more captures, and an
// SLA-proportional defense penalty.
package saarctf2024

import (
	"math"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
)

// Params configures a Formula.
type Params struct {
	OffFactor   float64
	DefFactor   float64
	SlaFactor   float64
	NopTeam     *ctfmodel.TeamName
	DefenseBug  bool
}

// DefaultParams mirrors the original's dataclass defaults.
func DefaultParams() Params {
	nop := ctfmodel.TeamName("NOP")
	return Params{OffFactor: 1.0, DefFactor: 1.0, SlaFactor: 1.0, NopTeam: &nop, DefenseBug: true}
}

// Formula is the saarCTF 2024 scoring formula.
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

// rank computes the dense "ties share a rank, counter only advances on a
// positive score" ranking the formula uses to price an attack on a given
// victim as of the round the victim's flag was placed.
func rank(board scorealg.Scoreboard, teams []ctfmodel.TeamName, team ctfmodel.TeamName) int {
	sorted := make([]ctfmodel.TeamName, len(teams))
	copy(sorted, teams)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && board[sorted[j]].Combined > board[sorted[j-1]].Combined; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	place := 1
	var previousScore float64
	seenAny := false
	for _, t := range sorted {
		score := board[t].Combined
		if !seenAny {
			previousScore = score
			seenAny = true
		} else if score < previousScore && previousScore > 0 {
			place++
			previousScore = score
		} else {
			previousScore = score
		}
		if t == team {
			return place
		}
	}
	return place
}

// Evaluate scores ctf under saarCTF 2024.
func (f *Formula) Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error) {
	if f.Params.NopTeam != nil && !teamExists(ctf, *f.Params.NopTeam) {
		return nil, &scoring.ConfigError{Formula: "saarctf2024", Field: "nop_team", Reason: "configured NOP team not found in the CTF data"}
	}

	nop := f.Params.NopTeam
	offFactor, defFactor, slaFactor := f.Params.OffFactor, f.Params.DefFactor, f.Params.SlaFactor
	if offFactor == 0 {
		offFactor = 1.0
	}
	if defFactor == 0 {
		defFactor = 1.0
	}
	if slaFactor == 0 {
		slaFactor = 1.0
	}

	scoreboard := scorealg.NewScoreboard(ctf.Teams)
	flags := ctf.Flags()

	services := map[ctfmodel.ServiceName]*ctfmodel.Service{}
	ctf.Services.Range(func(name string, svc *ctfmodel.Service) {
		services[ctfmodel.ServiceName(name)] = svc
	})

	type teamServiceKey struct {
		Team    ctfmodel.TeamName
		Service ctfmodel.ServiceName
	}

	rankings := make([]map[ctfmodel.TeamName]int, len(ctf.Rounds))
	previousSlas := make([]map[teamServiceKey]float64, len(ctf.Rounds))
	activeTeamCounts := make([]int, len(ctf.Rounds))

	for roundID, round := range ctf.Rounds {
		ranking := make(map[ctfmodel.TeamName]int, len(ctf.Teams))
		for _, team := range ctf.Teams {
			ranking[team] = rank(scoreboard, ctf.Teams, team)
		}
		rankings[roundID] = ranking

		activeTeams := make(map[ctfmodel.TeamName]struct{})
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			for _, state := range data.ServiceStates {
				if state == ctfmodel.ServiceStateOK || state == ctfmodel.ServiceStateRecovering {
					activeTeams[ctfmodel.TeamName(teamKey)] = struct{}{}
					return
				}
			}
		})
		activeTeamCount := len(activeTeams)
		if activeTeamCount < 1 {
			activeTeamCount = 1
		}
		activeTeamCounts[roundID] = activeTeamCount
		sqrtN := math.Sqrt(float64(activeTeamCount))

		slas := make(map[teamServiceKey]float64)
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			team := ctfmodel.TeamName(teamKey)
			var sum float64
			for serviceName, state := range data.ServiceStates {
				var v float64
				if state == ctfmodel.ServiceStateOK {
					v = slaFactor
				}
				slas[teamServiceKey{team, ctfmodel.ServiceName(serviceName)}] = v * sqrtN
				sum += v * sqrtN
			}
			scoreboard[team] = scoreboard[team].Add(scorealg.Default(0, 0, sum))
		})
		previousSlas[roundID] = slas

		capturedFlagsThisRound := make(map[ctfmodel.FlagId]struct{})
		defendedFlagsThisRound := make(map[ctfmodel.FlagId]struct{})
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			capturer := ctfmodel.TeamName(teamKey)
			for _, flagID := range data.FlagsCaptured {
				flag := flags[flagID]
				if isNop(nop, flag.Owner) || flag.Owner == capturer {
					continue
				}
				svc := services[flag.Service]
				flagRate := 1.0
				if svc != nil {
					flagRate = svc.EffectiveFlagRate()
				}

				victimRank := len(ctf.Teams)
				if flag.RoundID > 0 {
					victimRank = rankings[flag.RoundID][flag.Owner]
				}

				captures := ctf.FlagCaptures()[flagID]
				prevC := captures.CountBefore(ctfmodel.RoundId(roundID))
				curC := prevC + captures.CountIn(ctfmodel.RoundId(roundID))

				currentValue := 1 + math.Sqrt(1/float64(curC)) + math.Sqrt(1/float64(victimRank))
				scoreboard[capturer] = scoreboard[capturer].Add(scorealg.Default(currentValue/flagRate*offFactor, 0, 0))

				if _, gated := capturedFlagsThisRound[flagID]; !gated && roundID > 0 {
					previousValue := 1 + math.Sqrt(1/float64(prevC)) + math.Sqrt(1/float64(victimRank))
					prevRound := ctf.Rounds[roundID-1]
					prevRound.Range(func(prevTeamKey string, prevData *ctfmodel.TeamRoundData) {
						if prevData == nil {
							return
						}
						for _, prevFlagID := range prevData.FlagsCaptured {
							if prevFlagID != flagID {
								continue
							}
							earlierAttacker := ctfmodel.TeamName(prevTeamKey)
							delta := currentValue - previousValue
							scoreboard[earlierAttacker] = scoreboard[earlierAttacker].Add(scorealg.Default(delta/flagRate*offFactor, 0, 0))
						}
					})
					capturedFlagsThisRound[flagID] = struct{}{}
				}

				if _, done := defendedFlagsThisRound[flagID]; done {
					continue
				}
				defendedFlagsThisRound[flagID] = struct{}{}

				victimSla := previousSlas[flag.RoundID][teamServiceKey{flag.Owner, flag.Service}]
				teamCount := activeTeamCounts[roundID]
				if !f.Params.DefenseBug {
					teamCount = activeTeamCounts[flag.RoundID]
				}
				previousDamage := math.Pow(float64(prevC)/float64(teamCount), 0.3) * victimSla
				currentDamage := math.Pow(float64(curC)/float64(teamCount), 0.3) * victimSla
				scoreboard[flag.Owner] = scoreboard[flag.Owner].Add(scorealg.Default(0, (previousDamage-currentDamage)/flagRate*defFactor, 0))
			}
		})
	}

	return scoreboard, nil
}
