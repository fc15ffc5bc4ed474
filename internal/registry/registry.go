// Package registry enumerates the data sources and scoring formulas the
// engine knows how to construct by name: a static list of identifier and
// constructor pairs, with a parameter schema attached for callers that need to validate or render
// configuration before constructing one.
package registry

import (
	"fmt"
	"io"

	"github.com/Attacking-Lab/scoring-playground/internal/ctfmodel"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/atklabv1"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/atklabv2"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/ecsc2024"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/ecsc2025"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/jeopardy"
	"github.com/Attacking-Lab/scoring-playground/internal/scoring/saarctf2024"
)

// ParameterKind is the declared type of a formula's configurable field.
type ParameterKind string

const (
	KindFloat ParameterKind = "float"
	KindInt   ParameterKind = "int"
	KindBool  ParameterKind = "bool"
	KindEnum  ParameterKind = "enum"
	KindTeam  ParameterKind = "team_name"
)

// Parameter documents one configurable field of a formula constructor.
type Parameter struct {
	Name    string
	Kind    ParameterKind
	Default any
	// Enum lists the permitted values when Kind == KindEnum.
	Enum []string
}

// FormulaEntry is a named, self-describing formula constructor. Construct
// takes untyped parameter overrides (only the keys present are applied;
// everything else falls back to the formula's own defaults) and returns a
// ready-to-evaluate scoring.Formula.
type FormulaEntry struct {
	Name       string
	Parameters []Parameter
	Construct  func(overrides map[string]any) (scoring.Formula, error)
}

// DataSource is a named loader producing a CTF from a reader of canonical
// JSON input. The conversion from upstream game-server dumps into that
// canonical format is explicitly out of scope; every data source here
// reads the canonical format directly.
type DataSource struct {
	Name string
	Load func(r io.Reader) (*ctfmodel.CTF, error)
}

var dataSources = []DataSource{
	{Name: "json", Load: ctfmodel.DecodeJSON},
}

var formulas = []FormulaEntry{
	{
		Name: "atklabv1",
		Parameters: []Parameter{
			{Name: "scaling_factor", Kind: KindFloat, Default: 5.0},
			{Name: "nop_team", Kind: KindTeam, Default: "NOP"},
		},
		Construct: func(overrides map[string]any) (scoring.Formula, error) {
			p := atklabv1.DefaultParams()
			if v, ok := overrides["scaling_factor"].(float64); ok {
				p.ScalingFactor = v
			}
			if v, ok := nopOverride(overrides); ok {
				p.NopTeam = v
			}
			return atklabv1.New(p), nil
		},
	},
	{
		Name: "atklabv2",
		Parameters: []Parameter{
			{Name: "jeopardy", Kind: KindEnum, Default: "CSCG", Enum: []string{"DHM", "CSCG", "hxp", "ECSC2025"}},
			{Name: "alpha", Kind: KindFloat},
			{Name: "beta", Kind: KindFloat},
			{Name: "base", Kind: KindFloat, Default: 10.0},
			{Name: "min", Kind: KindFloat, Default: 1.0},
			{Name: "attackers", Kind: KindEnum, Default: "Scaled", Enum: []string{"Everyone", "Successful", "Scaled"}},
			{Name: "defense_compensation", Kind: KindBool, Default: true},
			{Name: "nop_team", Kind: KindTeam, Default: "NOP"},
		},
		Construct: func(overrides map[string]any) (scoring.Formula, error) {
			p := atklabv2.DefaultParams()
			if v, ok := overrides["jeopardy"].(string); ok {
				curve, err := parseJeopardyCurve(v)
				if err != nil {
					return nil, err
				}
				p.Jeopardy = curve
			}
			if v, ok := overrides["alpha"].(float64); ok {
				p.Alpha = &v
			}
			if v, ok := overrides["beta"].(float64); ok {
				p.Beta = &v
			}
			if v, ok := overrides["base"].(float64); ok {
				p.Base = v
			}
			if v, ok := overrides["min"].(float64); ok {
				p.Min = v
			}
			if v, ok := overrides["attackers"].(string); ok {
				mode, err := parseAttackerMode(v)
				if err != nil {
					return nil, err
				}
				p.Attackers = mode
			}
			if v, ok := overrides["defense_compensation"].(bool); ok {
				p.DefenseCompensation = v
			}
			if v, ok := nopOverride(overrides); ok {
				p.NopTeam = v
			}
			return atklabv2.New(p), nil
		},
	},
	{
		Name: "saarctf2024",
		Parameters: []Parameter{
			{Name: "off_factor", Kind: KindFloat, Default: 1.0},
			{Name: "def_factor", Kind: KindFloat, Default: 1.0},
			{Name: "sla_factor", Kind: KindFloat, Default: 1.0},
			{Name: "nop_team", Kind: KindTeam, Default: "NOP"},
			{Name: "defense_bug", Kind: KindBool, Default: true},
		},
		Construct: func(overrides map[string]any) (scoring.Formula, error) {
			p := saarctf2024.DefaultParams()
			if v, ok := overrides["off_factor"].(float64); ok {
				p.OffFactor = v
			}
			if v, ok := overrides["def_factor"].(float64); ok {
				p.DefFactor = v
			}
			if v, ok := overrides["sla_factor"].(float64); ok {
				p.SlaFactor = v
			}
			if v, ok := overrides["defense_bug"].(bool); ok {
				p.DefenseBug = v
			}
			if v, ok := nopOverride(overrides); ok {
				p.NopTeam = v
			}
			return saarctf2024.New(p), nil
		},
	},
	{
		Name: "ecsc2025",
		Parameters: []Parameter{
			{Name: "nop_team", Kind: KindTeam, Default: "NOP"},
		},
		Construct: func(overrides map[string]any) (scoring.Formula, error) {
			p := ecsc2025.DefaultParams()
			if v, ok := nopOverride(overrides); ok {
				p.NopTeam = v
			}
			return ecsc2025.New(p), nil
		},
	},
	{
		Name: "ecsc2024",
		Parameters: []Parameter{
			{Name: "base", Kind: KindFloat, Default: 5000.0},
			{Name: "scale", Kind: KindFloat, Default: 15 * 2.23606797749979},
			{Name: "norm", Kind: KindFloat},
			{Name: "flag_validity", Kind: KindInt, Default: 6},
		},
		Construct: func(overrides map[string]any) (scoring.Formula, error) {
			p := ecsc2024.DefaultParams()
			if v, ok := overrides["base"].(float64); ok {
				p.Base = v
			}
			if v, ok := overrides["scale"].(float64); ok {
				p.Scale = v
			}
			if v, ok := overrides["norm"].(float64); ok {
				p.Norm = v
			}
			if v, ok := overrides["flag_validity"].(int); ok {
				p.FlagValidity = v
			}
			return ecsc2024.New(p), nil
		},
	},
}

func nopOverride(overrides map[string]any) (*ctfmodel.TeamName, bool) {
	v, ok := overrides["nop_team"]
	if !ok {
		return nil, false
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return nil, true
		}
		team := ctfmodel.TeamName(s)
		return &team, true
	}
	return nil, false
}

func parseJeopardyCurve(name string) (jeopardy.Curve, error) {
	switch name {
	case "DHM":
		return jeopardy.DHM, nil
	case "CSCG":
		return jeopardy.CSCG, nil
	case "hxp":
		return jeopardy.HXP, nil
	case "ECSC2025":
		return jeopardy.ECSC2025, nil
	default:
		return 0, fmt.Errorf("registry: unknown jeopardy curve %q", name)
	}
}

func parseAttackerMode(name string) (atklabv2.AttackerMode, error) {
	switch name {
	case "Everyone":
		return atklabv2.Everyone, nil
	case "Successful":
		return atklabv2.Successful, nil
	case "Scaled":
		return atklabv2.Scaled, nil
	default:
		return 0, fmt.Errorf("registry: unknown attacker mode %q", name)
	}
}

// DataSources returns every registered data source, in a stable declared
// order.
func DataSources() []DataSource {
	out := make([]DataSource, len(dataSources))
	copy(out, dataSources)
	return out
}

// Formulas returns every registered formula, in a stable declared order.
func Formulas() []FormulaEntry {
	out := make([]FormulaEntry, len(formulas))
	copy(out, formulas)
	return out
}

// FindDataSource looks up a data source by exact name.
func FindDataSource(name string) (DataSource, error) {
	for _, ds := range dataSources {
		if ds.Name == name {
			return ds, nil
		}
	}
	return DataSource{}, fmt.Errorf("registry: unknown data source %q", name)
}

// Formula looks up a formula by exact name and constructs it with the
// given parameter overrides.
func Formula(name string, overrides map[string]any) (scoring.Formula, error) {
	for _, entry := range formulas {
		if entry.Name == name {
			return entry.Construct(overrides)
		}
	}
	return nil, fmt.Errorf("registry: unknown formula %q", name)
}
