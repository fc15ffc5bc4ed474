// Package jeopardy implements the small family of decaying value curves
// used by jeopardy-style CTFs to price a challenge by how many teams have
// already solved it, reused here by ATKLABv2 and ECSC2025 to price a
// stolen or defended flag by how many teams have captured it.
package jeopardy

import (
	"math"

	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
)

// Curve selects one of the closed set of named decay formulas.
type Curve int

const (
	// DHM is the exponential formula for fixed team counts used at DHM.
	DHM Curve = iota
	// CSCG is the "normal" decaying formula used by e.g. 34C3 CTF and CSCG.
	CSCG
	// HXP is the "normal" decaying formula used by e.g. hxp CTF.
	HXP
	// ECSC2025 is the decaying formula used by ECSC 2025, with fixed
	// constants rather than constants scaled by team count.
	ECSC2025
)

func (c Curve) String() string {
	switch c {
	case DHM:
		return "DHM"
	case CSCG:
		return "CSCG"
	case HXP:
		return "hxp"
	case ECSC2025:
		return "ECSC2025"
	default:
		return "unknown"
	}
}

// Params carries the curve-specific alpha/beta parameters. Each curve
// declares which of these it accepts; supplying one it forbids, or
// omitting one it requires, is a scoring.ParameterError.
type Params struct {
	Alpha *float64
	Beta  *float64
}

// Validate checks that Params is compatible with curve, without evaluating
// anything.
func (p Params) Validate(curve Curve) error {
	switch curve {
	case DHM:
		if p.Beta != nil {
			return forbidden(curve, "beta")
		}
	case CSCG, HXP:
		// both alpha and beta are optional, defaulted per-curve.
	case ECSC2025:
		if p.Alpha != nil {
			return forbidden(curve, "alpha")
		}
		if p.Beta != nil {
			return forbidden(curve, "beta")
		}
	}
	return nil
}

func forbidden(curve Curve, name string) error {
	return &scoring.ParameterError{
		Formula:   "jeopardy/" + curve.String(),
		Parameter: name,
		Reason:    "is not used by this curve and must not be configured",
	}
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// Evaluate prices a challenge/flag with `solves` solves (a float so curves
// can interpolate) out of `teams` competitors, with min and max as the
// curve's parameters; the result is not confined to [min, max] (DHM and
// ECSC2025 can fall below min with many solves). The result is
// lower-clamped to 0 — capturing a flag should never cost points —
// matching the original's single clamp; there is no upper clamp to max.
func Evaluate(curve Curve, solves float64, teams int, p Params, min, max float64) (float64, error) {
	if err := p.Validate(curve); err != nil {
		return 0, err
	}
	var value float64
	switch curve {
	case DHM:
		alpha := orDefault(p.Alpha, 0.705)
		exponent := math.Pow(math.Max(0, solves-1)/math.Max(1, float64(teams-1)), alpha)
		value = max * math.Pow(min/max, exponent)
	case CSCG:
		alpha := orDefault(p.Alpha, 1.206069)
		beta := orDefault(p.Beta, 11.92201)
		value = min + (max-min)/(1+math.Pow(math.Max(0, solves-1)/beta, alpha))
	case HXP:
		alpha := orDefault(p.Alpha, 10.0)
		beta := orDefault(p.Beta, 9.0)
		value = max * math.Min(1, alpha/(beta+solves))
	case ECSC2025:
		const numerator = 30.0
		const offset = 29.0
		value = max * math.Pow(numerator/(offset+math.Max(solves, 1)), 3)
		value = math.Trunc(value)
	default:
		return 0, &scoring.ParameterError{Formula: "jeopardy", Parameter: "curve", Reason: "unknown curve"}
	}
	return math.Max(value, 0), nil
}
