// Package ecsc2024 implements the ECSC 2024 scoring formula: an Elo-like
// per-service rating that moves on every flag capture. The ranking value is
// the rating weighted by uptime (score()*up_rounds/rounds, summed across
// services), while ATK/DEF/SLA are reported separately as raw attack,
// negated defense, and the plain up_rounds/checked_rounds uptime fraction.
package ecsc2024

import (
	"math"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
)

// Params configures a Formula.
type Params struct {
	Base         float64
	Scale        float64
	Norm         float64
	FlagValidity int
}

// DefaultParams mirrors the original's dataclass defaults: base=5000,
// scale=15*sqrt(5), norm=ln(ln(5))/12, flag_validity=6.
func DefaultParams() Params {
	return Params{
		Base:         5000.0,
		Scale:        15 * math.Sqrt(5),
		Norm:         math.Log(math.Log(5)) / 12,
		FlagValidity: 6,
	}
}

// Formula is the ECSC 2024 scoring formula.
type Formula struct {
	Params Params
}

// New constructs a Formula.
func New(p Params) *Formula {
	return &Formula{Params: p}
}

// serviceScore is the Elo-like state tracked per (team, service) across
// rounds; each round is built from a value copy of the previous one.
type serviceScore struct {
	base     float64
	attack   float64
	defense  float64
	rounds   int
	upRounds int
}

func (s serviceScore) sum() float64 {
	return s.base + s.attack - s.defense
}

func (s serviceScore) score() float64 {
	return math.Max(0, s.sum())
}

// Evaluate scores ctf under ECSC 2024.
func (f *Formula) Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error) {
	base := f.Params.Base
	if base == 0 {
		base = 5000.0
	}
	scale := f.Params.Scale
	if scale == 0 {
		scale = 15 * math.Sqrt(5)
	}
	norm := f.Params.Norm
	if norm == 0 {
		norm = math.Log(math.Log(5)) / 12
	}
	flagValidity := f.Params.FlagValidity
	if flagValidity == 0 {
		flagValidity = 6
	}

	services := map[ctfmodel.ServiceName]*ctfmodel.Service{}
	ctf.Services.Range(func(name string, svc *ctfmodel.Service) {
		services[ctfmodel.ServiceName(name)] = svc
		if len(svc.FlagStores) != 1 {
			services[ctfmodel.ServiceName(name)] = nil
		}
	})
	for name, svc := range services {
		if svc == nil {
			return nil, &scoring.ConfigError{
				Formula: "ecsc2024",
				Field:   "services." + string(name) + ".flagstores",
				Reason:  "ECSC2024 requires exactly one flagstore per service",
			}
		}
	}

	flags := ctf.Flags()

	// scores[-1] is seeded with base for every team/service, indexed at 0;
	// scores[r] for r >= 0 is indexed at r+1.
	seed := make(map[ctfmodel.TeamName]map[ctfmodel.ServiceName]serviceScore, len(ctf.Teams))
	for _, team := range ctf.Teams {
		m := make(map[ctfmodel.ServiceName]serviceScore, len(services))
		for name := range services {
			m[name] = serviceScore{base: base}
		}
		seed[team] = m
	}

	history := make([]map[ctfmodel.TeamName]map[ctfmodel.ServiceName]serviceScore, len(ctf.Rounds)+1)
	history[0] = seed

	relatedScores := func(flagRoundID ctfmodel.RoundId) map[ctfmodel.TeamName]map[ctfmodel.ServiceName]serviceScore {
		if flagRoundID == 0 {
			return history[0]
		}
		return history[flagRoundID+1]
	}

	for roundID, round := range ctf.Rounds {
		current := make(map[ctfmodel.TeamName]map[ctfmodel.ServiceName]serviceScore, len(ctf.Teams))
		previous := history[roundID]
		for team, byService := range previous {
			m := make(map[ctfmodel.ServiceName]serviceScore, len(byService))
			for name, s := range byService {
				m[name] = s
			}
			current[team] = m
		}

		allError := make(map[ctfmodel.ServiceName]bool, len(services))
		for name := range services {
			allError[name] = true
		}
		round.Range(func(_ string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			for name, state := range data.ServiceStates {
				if state != ctfmodel.ServiceStateError {
					allError[name] = false
				}
			}
		})

		round.Range(func(teamKey string, data *ctfmodel.TeamRoundData) {
			if data == nil {
				return
			}
			team := ctfmodel.TeamName(teamKey)
			for name, state := range data.ServiceStates {
				if allError[name] {
					continue
				}
				s := current[team][name]

				canGetflag := false
				for p := max0(roundID - flagValidity + 1); p <= roundID-1; p++ {
					if p < 0 {
						continue
					}
					placedData, ok := ctf.Rounds[p].Get(teamKey)
					if !ok || placedData == nil {
						continue
					}
					if _, stored := placedData.AllStoredFlags()[ctfmodel.ServiceFlagStoreKey{Service: name, FlagStore: servicesFlagstore(services[name])}]; stored {
						canGetflag = true
						break
					}
				}

				if state == ctfmodel.ServiceStateOK || (state == ctfmodel.ServiceStateRecovering && !canGetflag) {
					s.upRounds++
				}
				if state != ctfmodel.ServiceStateError {
					s.rounds++
				}
				current[team][name] = s
			}
		})

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
				related := relatedScores(flag.RoundID)
				attackerScore := related[attacker][flag.Service]
				victimScore := related[flag.Owner][flag.Service]
				attackerValue := math.Max(0, attackerScore.sum())
				victimValue := math.Max(0, victimScore.sum())
				delta := scale / (1 + math.Exp((math.Sqrt(attackerValue)-math.Sqrt(victimValue))*norm))

				as := current[attacker][flag.Service]
				as.attack += delta
				current[attacker][flag.Service] = as

				vs := current[flag.Owner][flag.Service]
				vs.defense += delta
				current[flag.Owner][flag.Service] = vs
			}
		})

		for team, byService := range current {
			for name, s := range byService {
				if sum := s.sum(); sum < 0 {
					s.defense += sum
				}
				current[team][name] = s
			}
		}

		history[roundID+1] = current
	}

	final := history[len(history)-1]
	scoreboard := scorealg.NewScoreboard(ctf.Teams)
	for _, team := range ctf.Teams {
		var attack, defense, total, slaFactor float64
		for _, s := range final[team] {
			attack += s.attack
			defense += -s.defense
			if s.rounds == 0 {
				total += s.base
				continue
			}
			checked := float64(s.rounds)
			total += s.score() * float64(s.upRounds) / checked
			slaFactor += float64(s.upRounds) / checked
		}
		scoreboard[team] = scorealg.Score{
			Combined: total,
			Categories: map[string]float64{
				"ATK": attack,
				"DEF": defense,
				"SLA": slaFactor,
			},
		}
	}

	return scoreboard, nil
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func servicesFlagstore(svc *ctfmodel.Service) ctfmodel.FlagStoreId {
	return svc.FlagStores[0]
}
