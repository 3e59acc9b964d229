// Package config handles .debtgraph.yml project-level configuration and the
// environment-style threshold overrides
// (DEBTMAP_MIN_SCORE_THRESHOLD, DEBTMAP_MIN_CYCLOMATIC, DEBTMAP_MIN_COGNITIVE).
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ingoeichhorst/debtgraph/internal/scoring"
)

// Environment variable names for the threshold overrides
const (
	EnvMinScoreThreshold = "DEBTMAP_MIN_SCORE_THRESHOLD"
	EnvMinCyclomatic     = "DEBTMAP_MIN_CYCLOMATIC"
	EnvMinCognitive      = "DEBTMAP_MIN_COGNITIVE"
)

// ProjectConfig represents the .debtgraph.yml configuration file. The
// scoring-relevant sections map directly onto scoring.Config's yaml tags;
// the rest are ambient CLI/output settings.
type ProjectConfig struct {
	Version int `yaml:"version"`

	ComplexityWeights       *scoring.ComplexityWeights               `yaml:"complexity_weights"`
	RoleMultiplier          *scoring.RoleMultiplierConfig            `yaml:"role_multiplier"`
	RoleCoverageWeights     *scoring.RoleCoverageWeights             `yaml:"role_coverage_weights"`
	OrchestrationAdjustment *scoring.OrchestrationAdjustmentConfig   `yaml:"orchestration_adjustment"`
	DataFlowScoring         *scoring.DataFlowScoringConfig           `yaml:"data_flow_scoring"`
	Entropy                 *scoring.EntropyConfig                   `yaml:"entropy"`
	LanguageFeatures        map[string]scoring.LanguageFeatureConfig `yaml:"language_features"`

	MinScoreThreshold *float64 `yaml:"min_score_threshold"`
	MinCyclomatic     *int     `yaml:"min_cyclomatic"`
	MinCognitive      *int     `yaml:"min_cognitive"`
}

// LoadProjectConfig loads project configuration from .debtgraph.yml or
// .debtgraph.yaml. If explicitPath is provided (from --config flag), that
// file is loaded. Returns nil (no error) if no config file is found.
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".debtgraph.yml")
		yamlPath := filepath.Join(dir, ".debtgraph.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil // No config found, use defaults
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are in range. Configuration
// errors are surfaced before analysis starts.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}

	if cw := c.ComplexityWeights; cw != nil {
		if cw.Cyclomatic < 0 || cw.Cognitive < 0 {
			return fmt.Errorf("complexity weights must be >= 0, got cyclomatic=%f cognitive=%f", cw.Cyclomatic, cw.Cognitive)
		}
		if cw.MaxCyclomatic < 0 || cw.MaxCognitive < 0 {
			return fmt.Errorf("complexity max thresholds must be >= 0")
		}
	}
	if rm := c.RoleMultiplier; rm != nil && rm.EnableClamping {
		if rm.ClampMin < 0 || rm.ClampMax < rm.ClampMin {
			return fmt.Errorf("role multiplier clamp range [%f, %f] is invalid", rm.ClampMin, rm.ClampMax)
		}
	}
	if oa := c.OrchestrationAdjustment; oa != nil {
		if oa.MaxReduction < 0 || oa.MaxReduction > 1 {
			return fmt.Errorf("orchestration max_reduction must be in [0,1], got %f", oa.MaxReduction)
		}
	}
	if c.MinScoreThreshold != nil && *c.MinScoreThreshold < 0 {
		return fmt.Errorf("min_score_threshold must be >= 0, got %f", *c.MinScoreThreshold)
	}
	if c.MinCyclomatic != nil && *c.MinCyclomatic < 0 {
		return fmt.Errorf("min_cyclomatic must be >= 0, got %d", *c.MinCyclomatic)
	}
	if c.MinCognitive != nil && *c.MinCognitive < 0 {
		return fmt.Errorf("min_cognitive must be >= 0, got %d", *c.MinCognitive)
	}

	return nil
}

// ApplyToScoringConfig applies project config overrides onto a
// scoring.Config. Unset sections leave the defaults untouched.
func (c *ProjectConfig) ApplyToScoringConfig(sc *scoring.Config) {
	if c == nil || sc == nil {
		return
	}

	if c.ComplexityWeights != nil {
		sc.ComplexityWeights = *c.ComplexityWeights
	}
	if c.RoleMultiplier != nil {
		sc.RoleMultiplier = *c.RoleMultiplier
	}
	if c.RoleCoverageWeights != nil {
		sc.RoleCoverageWeights = *c.RoleCoverageWeights
	}
	if c.OrchestrationAdjustment != nil {
		sc.OrchestrationAdjustment = *c.OrchestrationAdjustment
	}
	if c.DataFlowScoring != nil {
		sc.DataFlowScoring = *c.DataFlowScoring
	}
	if c.Entropy != nil {
		sc.Entropy = *c.Entropy
	}
	for lang, features := range c.LanguageFeatures {
		if sc.LanguageFeatures == nil {
			sc.LanguageFeatures = make(map[string]scoring.LanguageFeatureConfig)
		}
		sc.LanguageFeatures[lang] = features
	}
	if c.MinScoreThreshold != nil {
		sc.MinScoreThreshold = *c.MinScoreThreshold
	}
	if c.MinCyclomatic != nil {
		sc.MinCyclomatic = *c.MinCyclomatic
	}
	if c.MinCognitive != nil {
		sc.MinCognitive = *c.MinCognitive
	}
}

// ApplyEnvOverrides reads the environment-style threshold overrides into
// sc. Environment values win over both defaults and project config. An
// unparsable
// value is a configuration error, not a silent default.
func ApplyEnvOverrides(sc *scoring.Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if raw, ok := lookup(EnvMinScoreThreshold); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %q", EnvMinScoreThreshold, raw)
		}
		sc.MinScoreThreshold = v
	}
	if raw, ok := lookup(EnvMinCyclomatic); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", EnvMinCyclomatic, raw)
		}
		sc.MinCyclomatic = v
	}
	if raw, ok := lookup(EnvMinCognitive); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", EnvMinCognitive, raw)
		}
		sc.MinCognitive = v
	}
	return nil
}
