// Command scoreplay replays a canonical game log through a selected
// scoring formula and prints the resulting scoreboard as JSON. Option
// parsing and game-server dump conversion are kept deliberately thin: the
// engine's job is the replay, not the CLI ergonomics around it.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/Attacking-Lab/scoring-playground/internal/config"
	"github.com/Attacking-Lab/scoring-playground/internal/logging"
	"github.com/Attacking-Lab/scoring-playground/internal/registry"
	"github.com/Attacking-Lab/scoring-playground/internal/validation"
)

func main() {
	log.SetFlags(0)
	var (
		configPath     = flag.String("config", "", "path to engine.yaml (optional)")
		formulaName    = flag.String("formula", "", "scoring formula to evaluate, overrides config (see -list)")
		dataSourceName = flag.String("source", "", "data source to load the game log from, overrides config")
		inputPath      = flag.String("input", "", "path to the game log (- or empty for STDIN)")
		list           = flag.Bool("list", false, "list available data sources and formulas, then exit")
	)
	flag.Parse()

	if *list {
		printRegistry()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("scoreplay: %v", err)
	}
	if *formulaName != "" {
		cfg.Formula = *formulaName
	}
	if *dataSourceName != "" {
		cfg.DataSource = *dataSourceName
	}

	dataSource, err := registry.FindDataSource(cfg.DataSource)
	if err != nil {
		log.Fatalf("scoreplay: %v", err)
	}

	input := os.Stdin
	if *inputPath != "" && *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Fatalf("scoreplay: open input: %v", err)
		}
		defer f.Close()
		input = f
	}

	ctf, err := dataSource.Load(input)
	if err != nil {
		log.Fatalf("scoreplay: decode input: %v", err)
	}
	if err := validation.Shape(ctf); err != nil {
		log.Fatalf("scoreplay: invalid game log: %v", err)
	}

	formula, err := registry.Formula(cfg.Formula, cfg.OverridesFor(cfg.Formula))
	if err != nil {
		log.Fatalf("scoreplay: %v", err)
	}

	runID := uuid.NewString()
	runLog := logging.WithRun(runID)
	for _, msg := range ctf.Config.Messages {
		runLog.Warn(msg)
	}
	runLog.WithField("formula", cfg.Formula).Info("evaluating scoreboard")
	board, err := formula.Evaluate(ctf)
	if err != nil {
		log.Fatalf("scoreplay: evaluate: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(board); err != nil {
		log.Fatalf("scoreplay: encode scoreboard: %v", err)
	}
}

func printRegistry() {
	for _, ds := range registry.DataSources() {
		log.Printf("data source: %s", ds.Name)
	}
	for _, f := range registry.Formulas() {
		log.Printf("formula: %s", f.Name)
		for _, p := range f.Parameters {
			log.Printf("  - %s (%s) default=%v", p.Name, p.Kind, p.Default)
		}
	}
}
