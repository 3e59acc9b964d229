// Package scoring implements the unified scoring pipeline:
// fourteen deterministic stages composing complexity, coverage, dependency,
// role, purity, entropy, structural-quality, and orchestration-adjustment
// factors into a single 0-100 priority score.
package scoring

// ComplexityWeights configures stage 4's cyclo/cog blend and the
// thresholds used by both the debt classifier's ComplexityHotspot rule and
// stage 4's normalization. The trivial short-circuit uses its own fixed
// limits (cyclomatic <= 3, cognitive <= 5).
type ComplexityWeights struct {
	Cyclomatic     float64 `yaml:"cyclomatic"`
	Cognitive      float64 `yaml:"cognitive"`
	MaxCyclomatic  int     `yaml:"max_cyclomatic"`
	MaxCognitive   int     `yaml:"max_cognitive"`
}

// RoleMultiplierConfig optionally clamps stage 8's role multiplier.
type RoleMultiplierConfig struct {
	EnableClamping bool    `yaml:"enable_clamping"`
	ClampMin       float64 `yaml:"clamp_min"`
	ClampMax       float64 `yaml:"clamp_max"`
}

// RoleCoverageWeights are the per-role coverage_multiplier inputs consulted
// by stage 7 (base score).
type RoleCoverageWeights struct {
	EntryPoint   float64 `yaml:"entry_point"`
	Orchestrator float64 `yaml:"orchestrator"`
	PureLogic    float64 `yaml:"pure_logic"`
	IOWrapper    float64 `yaml:"io_wrapper"`
	PatternMatch float64 `yaml:"pattern_match"`
	Unknown      float64 `yaml:"unknown"`
}

// OrchestrationAdjustmentConfig configures stage 12. The weights are an
// open parameter surface; defaults are documented in DESIGN.md.
type OrchestrationAdjustmentConfig struct {
	Enabled          bool    `yaml:"enabled"`
	FanOutWeight     float64 `yaml:"fan_out_weight"`
	PurityWeight     float64 `yaml:"purity_weight"`
	SizeQualityWeight float64 `yaml:"size_quality_weight"`
	MaxReduction     float64 `yaml:"max_reduction"`
}

// DataFlowScoringConfig holds the data_flow_scoring section of the project
// config. Score does not read it: stage 12 uses only
// OrchestrationAdjustment, and the refactorability/pattern factors of
// UnifiedScore are never set.
type DataFlowScoringConfig struct {
	Enabled               bool    `yaml:"enabled"`
	PurityWeight          float64 `yaml:"purity_weight"`
	RefactorabilityWeight float64 `yaml:"refactorability_weight"`
	PatternWeight         float64 `yaml:"pattern_weight"`
}

// EntropyConfig toggles stage 3's cognitive-complexity dampening.
type EntropyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LanguageFeatureConfig holds per-language toggles.
type LanguageFeatureConfig struct {
	DetectDeadCode bool `yaml:"detect_dead_code"`
}

// Config is the flat scoring-relevant config object ("Input:
// configuration"). internal/config loads this (plus ambient CLI/output
// settings) from `.debtgraph.yml` and environment overrides.
type Config struct {
	ComplexityWeights       ComplexityWeights                `yaml:"complexity_weights"`
	RoleMultiplier          RoleMultiplierConfig              `yaml:"role_multiplier"`
	RoleCoverageWeights     RoleCoverageWeights                `yaml:"role_coverage_weights"`
	OrchestrationAdjustment OrchestrationAdjustmentConfig      `yaml:"orchestration_adjustment"`
	DataFlowScoring         DataFlowScoringConfig              `yaml:"data_flow_scoring"`
	Entropy                 EntropyConfig                      `yaml:"entropy"`
	LanguageFeatures        map[string]LanguageFeatureConfig   `yaml:"language_features"`

	MinScoreThreshold float64 `yaml:"-"`
	MinCyclomatic     int     `yaml:"-"`
	MinCognitive      int     `yaml:"-"`

	// TestComplexityMultiplier scales MaxCyclomatic/MaxCognitive for test
	// functions, which tolerate higher complexity before flagging.
	TestComplexityMultiplier float64 `yaml:"-"`
}

// DefaultConfig returns the documented defaults for every named knob; the
// weight constants (50/25 no-coverage blend,
// role-multiplier table, structural-quality breakpoints) are fixed inside
// the stage functions themselves and only the surfaces above are
// configurable.
func DefaultConfig() Config {
	return Config{
		ComplexityWeights: ComplexityWeights{
			Cyclomatic:    30,
			Cognitive:     70,
			MaxCyclomatic: 10,
			MaxCognitive:  15,
		},
		RoleMultiplier: RoleMultiplierConfig{
			EnableClamping: true,
			ClampMin:       0.1,
			ClampMax:       1.5,
		},
		RoleCoverageWeights: RoleCoverageWeights{
			EntryPoint:   1.0,
			Orchestrator: 0.8,
			PureLogic:    1.0,
			IOWrapper:    0.5,
			PatternMatch: 0.6,
			Unknown:      0.7,
		},
		OrchestrationAdjustment: OrchestrationAdjustmentConfig{
			Enabled:           true,
			FanOutWeight:      0.5,
			PurityWeight:      0.3,
			SizeQualityWeight: 0.2,
			MaxReduction:      0.6,
		},
		DataFlowScoring: DataFlowScoringConfig{
			Enabled:               true,
			PurityWeight:          0.4,
			RefactorabilityWeight: 0.3,
			PatternWeight:         0.3,
		},
		Entropy: EntropyConfig{Enabled: true},
		LanguageFeatures: map[string]LanguageFeatureConfig{
			"go":     {DetectDeadCode: true},
			"python": {DetectDeadCode: true},
		},
		MinScoreThreshold:        0,
		MinCyclomatic:            0,
		MinCognitive:             0,
		TestComplexityMultiplier: 1.5,
	}
}
