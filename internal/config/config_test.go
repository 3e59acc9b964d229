package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/scoring"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadProjectConfigMissing(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config when no file exists, got %+v", cfg)
	}
}

func TestLoadProjectConfigBasic(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".debtgraph.yml", `
version: 1
complexity_weights:
  cyclomatic: 40
  cognitive: 60
  max_cyclomatic: 12
  max_cognitive: 20
min_score_threshold: 5.0
min_cyclomatic: 2
`)

	cfg, err := LoadProjectConfig(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if cfg.ComplexityWeights == nil || cfg.ComplexityWeights.Cyclomatic != 40 {
		t.Errorf("complexity_weights not parsed: %+v", cfg.ComplexityWeights)
	}
	if cfg.MinScoreThreshold == nil || *cfg.MinScoreThreshold != 5.0 {
		t.Errorf("min_score_threshold not parsed")
	}

	sc := scoring.DefaultConfig()
	cfg.ApplyToScoringConfig(&sc)
	if sc.ComplexityWeights.MaxCyclomatic != 12 {
		t.Errorf("ApplyToScoringConfig did not override max_cyclomatic: got %d", sc.ComplexityWeights.MaxCyclomatic)
	}
	if sc.MinScoreThreshold != 5.0 {
		t.Errorf("ApplyToScoringConfig did not override min_score_threshold: got %f", sc.MinScoreThreshold)
	}
	if sc.MinCyclomatic != 2 {
		t.Errorf("ApplyToScoringConfig did not override min_cyclomatic: got %d", sc.MinCyclomatic)
	}
	// Untouched sections keep defaults.
	if !sc.Entropy.Enabled {
		t.Errorf("entropy default should survive a config that does not mention it")
	}
}

func TestLoadProjectConfigUnknownField(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".debtgraph.yml", "version: 1\nnot_a_real_option: true\n")

	if _, err := LoadProjectConfig(dir, ""); err == nil {
		t.Error("expected error for unknown config field")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	neg := -1.0
	negInt := -2
	badReduction := 1.5

	tests := []struct {
		name string
		cfg  ProjectConfig
	}{
		{"bad version", ProjectConfig{Version: 7}},
		{"negative threshold", ProjectConfig{Version: 1, MinScoreThreshold: &neg}},
		{"negative cyclomatic", ProjectConfig{Version: 1, MinCyclomatic: &negInt}},
		{"orchestration reduction out of range", ProjectConfig{Version: 1, OrchestrationAdjustment: &scoring.OrchestrationAdjustmentConfig{MaxReduction: badReduction}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvMinScoreThreshold: "12.5",
		EnvMinCyclomatic:     "4",
		EnvMinCognitive:      "6",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	sc := scoring.DefaultConfig()
	if err := ApplyEnvOverrides(&sc, lookup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.MinScoreThreshold != 12.5 {
		t.Errorf("MinScoreThreshold = %f, want 12.5", sc.MinScoreThreshold)
	}
	if sc.MinCyclomatic != 4 || sc.MinCognitive != 6 {
		t.Errorf("complexity minimums = (%d, %d), want (4, 6)", sc.MinCyclomatic, sc.MinCognitive)
	}
}

func TestApplyEnvOverridesRejectsGarbage(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == EnvMinCyclomatic {
			return "many", true
		}
		return "", false
	}
	sc := scoring.DefaultConfig()
	if err := ApplyEnvOverrides(&sc, lookup); err == nil {
		t.Error("expected error for non-numeric env override")
	}
}
