// Package ecsc2025 implements the ECSC 2025 scoring formula, a fixed
// parameterization of ATKLABv2: a specific jeopardy decay curve, a
// self-attacker accrual that always lands on attack rather than defense,
// and no separately configurable defense compensation toggle.
package ecsc2025

import (
	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scorealg"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/atklabv2"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/jeopardy"
)

// Params configures a Formula. Unlike ATKLABv2, every other knob is fixed
// by the competition's rules; only the NOP team name is left open.
type Params struct {
	NopTeam *ctfmodel.TeamName
}

// DefaultParams mirrors the original's dataclass defaults.
func DefaultParams() Params {
	nop := ctfmodel.TeamName("NOP")
	return Params{NopTeam: &nop}
}

// Formula is the ECSC 2025 scoring formula.
type Formula struct {
	inner *atklabv2.Formula
}

// New constructs a Formula. It delegates to ATKLABv2 with jeopardy=ECSC2025,
// base=10, attackers=Scaled and defense_compensation forced on: ECSC2025's
// "self-attacker credits attack, not defense" rule is exactly ATKLABv2's
// defense_compensation=true branch, just with no way to turn it off.
func New(p Params) *Formula {
	return &Formula{inner: atklabv2.New(atklabv2.Params{
		Jeopardy:            jeopardy.ECSC2025,
		Base:                10.0,
		Min:                 1.0,
		Attackers:           atklabv2.Scaled,
		DefenseCompensation: true,
		NopTeam:             p.NopTeam,
	})}
}

// Evaluate scores ctf under ECSC 2025.
func (f *Formula) Evaluate(ctf *ctfmodel.CTF) (scorealg.Scoreboard, error) {
	return f.inner.Evaluate(ctf)
}
