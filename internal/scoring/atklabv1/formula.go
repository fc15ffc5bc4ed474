// Package atklabv1 implements the original, simplest A/D scoring formula
// used by the Attacking Lab: a fixed per-capture attack bonus, a
// count-scaled defense penalty, and SLA credit for the fraction of
// retained flags a service kept available.
package atklabv1

import (
	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
)

// Params configures a Formula.
type Params struct {
	// ScalingFactor is declared for parity with the original formula but,
	// as in the original, is never used by Evaluate.
	ScalingFactor float64
	// NopTeam, when set, must name a team present in the CTF; beyond that
	// check it plays no role in scoring (also a quirk inherited as-is from
	// the original).
	NopTeam *ctfmodel.TeamName
}

// DefaultParams mirrors the original's dataclass defaults.
func DefaultParams() Params {
	nop := ctfmodel.TeamName("NOP")
	return Params{ScalingFactor: 5.0, NopTeam: &nop}
}

// Formula is the ATKLABv1 scoring formula.
type Formula struct {
	Params Params
}

// New constructs a Formula.
func New(p Params) *Formula {
	return &Formula{Params: p}
}

func (f *Formula) teamExists(ctf *ctfmodel.CTF, team ctfmodel.TeamName) bool {
	for _, t := range ctf.Teams {
		if t == team {
			return true
		}
	}
	return false
}

// Evaluate scores ctf under ATKLABv1.
func (f *Formula) Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error) {
	if f.Params.NopTeam != nil && !f.teamExists(ctf, *f.Params.NopTeam) {
		return nil, &scoring.ConfigError{
			Formula: "atklabv1",
			Field:   "nop_team",
			Reason:  "configured NOP team not found in the CTF data",
		}
	}
	if ctf.Config.FlagRetentionPeriod() <= 0 {
		return nil, &scoring.ConfigError{
			Formula: "atklabv1",
			Field:   "config.flag_retention",
			Reason:  "no flag retention period defined in CTF data",
		}
	}

	retention := ctf.Config.FlagRetentionPeriod()
	scoreboard := scorealg.NewScoreboard(ctf.Teams)
	flags := ctf.Flags()
	captures := ctf.FlagCaptures()

	for roundID, round := range ctf.Rounds {
		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			team := ctfmodel.TeamName(teamKey)
			score := scorealg.Default(0, 0, 0)

			// SLA points.
			for service, state := range data.ServiceStates {
				maxFlags := min(roundID+1, retention)
				var present int
				switch state {
				case ctfmodel.ServiceStateOK:
					present = maxFlags
				case ctfmodel.ServiceStateRecovering:
					present = 1
					// The backward scan mirrors the original's
					// range(max(0, r-flag_retention), r-1): it stops one
					// round short of r-1, never examining the round
					// immediately before this one.
					for previousRound := roundID - 2; previousRound >= max(0, roundID-retention); previousRound-- {
						prevData, ok := ctf.Rounds[previousRound].Get(teamKey)
						if !ok || prevData == nil || prevData.ServiceStates[service] != ctfmodel.ServiceStateRecovering {
							break
						}
						present++
					}
					present = min(present, maxFlags)
				default:
					present = 0
				}
				if state == ctfmodel.ServiceStateOK || state == ctfmodel.ServiceStateRecovering {
					score = score.Add(scorealg.Default(0, 0, float64(present)/float64(maxFlags)))
				}
			}

			// Attack points.
			for _, flagID := range data.FlagsCaptured {
				flag := flags[flagID]
				if flag.Owner == team {
					continue
				}
				captureCount := captures[flagID].Count
				score = score.Add(scorealg.Default((1+1/float64(captureCount))/2, 0, 0))
			}

			// Defense points.
			for _, flagID := range data.IterateStoredFlags() {
				if count := captures[flagID].Count; count > 0 {
					score = score.Sub(scorealg.Default(0, (1+float64(count)/float64(len(ctf.Teams)))/2, 0))
				}
			}

			scoreboard[team] = scoreboard[team].Add(score)
		})
	}

	return scoreboard, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
