// Package config loads the engine's own small YAML configuration: default
// data source and formula selection, and default parameter overrides per
// formula, so a deployment can pin "always run ECSC2025 with these
// constants" without passing flags on every invocation.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Attacking-Lab/scoring-playground/internal/logging"
)

// Engine is the engine's top-level configuration.
type Engine struct {
	DataSource string                    `yaml:"data_source"`
	Formula    string                    `yaml:"formula"`
	Parameters map[string]map[string]any `yaml:"parameters"`
}

// Default returns the engine's built-in defaults, used when no config file
// is present.
func Default() *Engine {
	return &Engine{
		DataSource: "json",
		Formula:    "atklabv1",
		Parameters: map[string]map[string]any{},
	}
}

// Load reads and strictly decodes an Engine from a YAML file, rejecting
// unrecognized keys. A missing path returns the built-in defaults.
func Load(path string) (*Engine, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Log.WithField("path", path).Warn("no engine config found, using defaults")
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.DataSource == "" {
		cfg.DataSource = "json"
	}
	if cfg.Formula == "" {
		cfg.Formula = "atklabv1"
	}
	if cfg.Parameters == nil {
		cfg.Parameters = map[string]map[string]any{}
	}
	return cfg, nil
}

// OverridesFor returns the configured parameter overrides for the named
// formula, or nil if none were configured.
func (e *Engine) OverridesFor(formula string) map[string]any {
	return e.Parameters[formula]
}
