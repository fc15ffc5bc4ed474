// Package scorealg implements the small, formula-independent algebra that
// every scoring formula's result is expressed in: a Score is a combined
// number plus named subscores, and two Scores combine by adding the union
// of their categories.
package scorealg

import (
	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
)

// Score is a single team's score: a combined figure plus an open set of
// named subscores (conventionally "ATK", "DEF", "SLA", but formulas are
// free to add others).
type Score struct {
	Combined   float64            `json:"combined"`
	Categories map[string]float64 `json:"categories"`
}

// Zero is the additive identity: a combined score of 0 with no categories.
func Zero() Score {
	return Score{Categories: map[string]float64{}}
}

// Default builds the conventional attack/defense/SLA score most A/D CTFs
// report, with combined set to their sum.
func Default(attack, defense, sla float64) Score {
	return Score{
		Combined: attack + defense + sla,
		Categories: map[string]float64{
			"ATK": attack,
			"DEF": defense,
			"SLA": sla,
		},
	}
}

// Add combines two scores, summing combined and the union of their
// categories (a category present in only one operand is treated as 0 in
// the other).
func (s Score) Add(other Score) Score {
	return combine(s, other, func(a, b float64) float64 { return a + b })
}

// Sub is the inverse of Add.
func (s Score) Sub(other Score) Score {
	return combine(s, other, func(a, b float64) float64 { return a - b })
}

func combine(a, b Score, op func(x, y float64) float64) Score {
	cats := make(map[string]float64, len(a.Categories)+len(b.Categories))
	for k := range a.Categories {
		cats[k] = op(a.Categories[k], b.Categories[k])
	}
	for k := range b.Categories {
		if _, ok := cats[k]; ok {
			continue
		}
		cats[k] = op(a.Categories[k], b.Categories[k])
	}
	return Score{Combined: op(a.Combined, b.Combined), Categories: cats}
}

// Scoreboard maps each team to its final Score.
type Scoreboard map[ctfmodel.TeamName]Score

// NewScoreboard seeds a scoreboard with every team at Zero(), so formulas
// can accumulate with Add without special-casing a team's first score.
func NewScoreboard(teams []ctfmodel.TeamName) Scoreboard {
	board := make(Scoreboard, len(teams))
	for _, t := range teams {
		board[t] = Zero()
	}
	return board
}
