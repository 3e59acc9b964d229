package scoring

import (
	"fmt"
	"math"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// Input gathers every signal the fourteen-stage pipeline consumes
// for one function. Callers (internal/pipeline) assemble this from the
// call graph, internal/metrics, internal/coverage, internal/purity, and
// internal/debt outputs; scoring itself never touches those packages
// directly to avoid an import cycle with internal/debt (which already
// imports scoring.Config for its classifier thresholds).
type Input struct {
	IsEntryPoint bool
	IsTest       bool
	Cyclomatic   int
	Length       int
	Cognitive    int
	Nesting      int

	TokenEntropy      float64
	PatternRepetition float64
	HasEntropy        bool

	Role   model.FunctionRole
	Purity model.PurityLevel

	Coverage          model.TransitiveCoverage
	CoverageAvailable bool

	UpstreamCount int

	// DebtKind and RiskScore drive stage 13's exponent/boost selection;
	// DebtAdjustment is the precomputed debt.Totals.DebtAdjustment() value
	// for stage 10.
	DebtKind       model.DebtKind
	DebtRiskScore  float64
	DebtAdjustment float64

	// Orchestration-adjustment inputs (stage 12), precomputed by the
	// caller from the callee set: FanOutQuality and AvgCalleeSizeQuality
	// are in [0,1] (1 = best), AvgCalleePurityMultiplier is the mean of
	// each callee's PurityLevel.Multiplier() (0 = purest).
	FanOutQuality             float64
	AvgCalleePurityMultiplier float64
	AvgCalleeSizeQuality      float64

	// ContextualRiskMultiplier is the churn-derived signal from
	// internal/history, in [1.0,1.3]. Callers without history data
	// leave it at the zero value; Score treats 0 the same as 1.0 (no
	// adjustment) so the stage is a no-op when the signal is unavailable.
	ContextualRiskMultiplier float64
}

// purityFactor picks the midpoint of the stage-2 adjustment range for each
// purity level; this package carries no per-function confidence signal
// (internal/purity classifies deterministically, not probabilistically), so
// the midpoint is used directly. See DESIGN.md.
func purityFactor(level model.PurityLevel) float64 {
	switch level {
	case model.StrictlyPure:
		return 0.75
	case model.LocallyPure:
		return 0.80
	case model.IOIsolated:
		return 0.90
	case model.IOMixed:
		return 0.95
	default:
		return 1.00
	}
}

// entropyDampen implements stage 3: dampens cognitive complexity only,
// and only when the function's token entropy is available and below the
// repetitive-code threshold.
func entropyDampen(cognitive float64, in Input) float64 {
	if !in.HasEntropy || in.TokenEntropy >= 0.4 {
		return cognitive
	}
	factor := 1 - in.PatternRepetition*0.5
	if factor < 0.5 {
		factor = 0.5
	}
	if factor > 1.0 {
		factor = 1.0
	}
	return cognitive * factor
}

// complexityFactor implements stage 4: a 30/70 (configurable) blend of
// adjusted cyclomatic and cognitive complexity, normalized to [0,10]
// against the configured max thresholds.
func complexityFactor(adjustedCyclo, adjustedCog float64, cfg ComplexityWeights) float64 {
	maxCyclo := float64(cfg.MaxCyclomatic)
	maxCog := float64(cfg.MaxCognitive)
	if maxCyclo <= 0 {
		maxCyclo = 10
	}
	if maxCog <= 0 {
		maxCog = 15
	}
	wCyclo := cfg.Cyclomatic / 100
	wCog := cfg.Cognitive / 100
	raw := (adjustedCyclo/maxCyclo)*wCyclo + (adjustedCog/maxCog)*wCog
	return clamp(raw*10, 0, 10)
}

// dependencyFactor implements stage 5: a saturating function of upstream
// caller count, asymptotic to 10 as callers grow without bound.
func dependencyFactor(upstreamCount int) float64 {
	u := float64(upstreamCount)
	return 10 * u / (u + 1)
}

// coverageFactor implements stage 6.
func coverageFactor(cov model.TransitiveCoverage, available bool) float64 {
	if !available {
		return 0
	}
	return (1 - cov.Transitive) * 10
}

const (
	baseWeightComplexity = 0.50
	baseWeightDependency = 0.25
)

// roleMultiplier implements stage 8.
func roleMultiplier(role model.FunctionRole, complexity float64, cfg RoleMultiplierConfig) float64 {
	var m float64
	switch role {
	case model.RoleEntryPoint:
		m = 1.5
	case model.RolePureLogic:
		m = 1.0
		if complexity > 5 {
			m = 1.3
		}
	case model.RoleOrchestrator:
		m = 0.8
	case model.RoleIOWrapper:
		m = 0.5
	case model.RolePatternMatch:
		m = 0.6
	case model.RoleDebug:
		m = 0.3
	default:
		m = 1.0
	}
	if cfg.EnableClamping {
		m = clamp(m, cfg.ClampMin, cfg.ClampMax)
	}
	return m
}

// structuralQualityMultiplier implements stage 9: nesting/cyclomatic ratio
// breakpoints.
func structuralQualityMultiplier(nesting, cyclomatic int) float64 {
	if cyclomatic <= 0 {
		return 0.7
	}
	ratio := float64(nesting) / float64(cyclomatic)
	switch {
	case ratio >= 0.6:
		return 1.5
	case ratio >= 0.5:
		return 1.3
	case ratio >= 0.4:
		return 1.15
	case ratio >= 0.2:
		return 1.0
	case ratio >= 0.1:
		return 0.85
	default:
		return 0.7
	}
}

// isTrivialRole reports whether role belongs to the trivial-short-circuit
// role set of stage 1.
func isTrivialRole(role model.FunctionRole, length int) bool {
	switch role {
	case model.RoleIOWrapper, model.RoleEntryPoint, model.RolePatternMatch, model.RoleDebug:
		return true
	case model.RolePureLogic:
		return length <= 10
	default:
		return false
	}
}

// exponentAndBoost implements the debt-type/risk-evidence selection named
// in stage 13. Dead code is never amplified (reviewers want it surfaced,
// not inflated); a Risk verdict scales with its own RiskScore evidence.
func exponentAndBoost(in Input) (exponent, boost float64) {
	exponent = 1.2
	boost = 1.0
	switch in.DebtKind {
	case model.DebtDeadCode:
		exponent = 0.8
	case model.DebtRisk:
		exponent = 1.5
		boost = 1 + clamp(in.DebtRiskScore/50, 0, 1)
	case model.DebtGodObject, model.DebtComplexityHotspot, model.DebtTestComplexityHotspot:
		exponent = 1.3
	}
	return exponent, boost
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Score runs the fourteen-stage pipeline for one function.
func Score(in Input, cfg Config) model.UnifiedScore {
	var out model.UnifiedScore

	hasCoverage := in.CoverageAvailable && (in.Coverage.HasDirect || in.Coverage.Transitive > 0)

	// Stage 1: trivial short-circuit.
	if in.Cyclomatic <= 3 && in.Cognitive <= 5 && isTrivialRole(in.Role, in.Length) && hasCoverage {
		out.FinalScore = 0
		return out
	}

	// Stage 2: purity adjustment.
	pFactor := purityFactor(in.Purity)
	adjustedCyclo := float64(in.Cyclomatic) * pFactor
	adjustedCog := float64(in.Cognitive) * pFactor
	out.PurityFactor = pFactor
	out.HasPurityFactor = true

	// Stage 3: entropy dampening (cognitive only).
	if cfg.Entropy.Enabled {
		adjustedCog = entropyDampen(adjustedCog, in)
	}

	// Stage 4: complexity factor.
	out.ComplexityFactor = complexityFactor(adjustedCyclo, adjustedCog, cfg.ComplexityWeights)

	// Stage 5: dependency factor.
	out.DependencyFactor = dependencyFactor(in.UpstreamCount)

	// Stage 6: coverage factor. Test functions store 0: their own coverage
	// is meaningless as a debt signal.
	if !in.IsTest {
		out.CoverageFactor = coverageFactor(in.Coverage, in.CoverageAvailable)
	}

	// Stage 7: base score.
	coverageMultiplier := 1.0
	if hasCoverage {
		coverageMultiplier = CoverageWeightFor(cfg.RoleCoverageWeights, in.Role)
		if in.IsTest {
			coverageMultiplier = 0
		}
	}
	baseScore := coverageMultiplier * (out.ComplexityFactor*baseWeightComplexity + out.DependencyFactor*baseWeightDependency)
	out.BaseScore = baseScore
	out.HasBaseScore = true

	// Stage 8: role multiplier.
	out.RoleMultiplier = roleMultiplier(in.Role, out.ComplexityFactor, cfg.RoleMultiplier)

	// Stage 9: structural quality multiplier.
	out.StructuralMultiplier = structuralQualityMultiplier(in.Nesting, in.Cyclomatic)
	out.HasStructuralMultiplier = true

	score := baseScore * out.RoleMultiplier * out.StructuralMultiplier

	// Stage 10: debt adjustment.
	out.DebtAdjustment = in.DebtAdjustment
	out.HasDebtAdjustment = true
	score += in.DebtAdjustment

	// Stage 11: normalize to [0,10].
	out.PreNormalizationScore = score
	out.HasPreNormalizationScore = true
	normalized := clamp(score, 0, 10)

	// Stage 12: orchestration adjustment.
	if cfg.OrchestrationAdjustment.Enabled && in.Role == model.RoleOrchestrator {
		oc := cfg.OrchestrationAdjustment
		reduction := clamp(
			in.FanOutQuality*oc.FanOutWeight+
				(1-in.AvgCalleePurityMultiplier)*oc.PurityWeight+
				in.AvgCalleeSizeQuality*oc.SizeQualityWeight,
			0, oc.MaxReduction,
		)
		out.PreAdjustmentScore = normalized
		out.HasPreAdjustmentScore = true
		normalized = normalized * (1 - reduction)
		out.AdjustmentApplied = fmt.Sprintf("orchestration_reduction=%.3f", reduction)
		out.HasAdjustmentApplied = true
	}

	// Stage 13: exponential scaling + risk boost. The contextual risk
	// multiplier from internal/history's churn signal folds into the
	// boost alongside the debt-type/risk-evidence boost; it never changes
	// the exponent.
	exponent, boost := exponentAndBoost(in)
	riskMultiplier := in.ContextualRiskMultiplier
	if riskMultiplier <= 0 {
		riskMultiplier = 1.0
	}
	out.ContextualRiskMultiplier = riskMultiplier
	out.HasContextualRiskMultiplier = true
	boost *= riskMultiplier
	out.RiskBoost = boost
	out.HasRiskBoost = true

	frac := normalized / 10
	exponential := math.Pow(frac, exponent)
	out.ExponentialFactor = exponential
	out.HasExponentialFactor = true

	final := exponential * 100 * boost

	// Stage 14: clamp.
	out.FinalScore = clamp(final, 0, 100)

	return out
}
