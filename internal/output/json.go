package output

import (
	"encoding/json"
	"io"

	"github.com/ingoeichhorst/debtgraph/internal/compare"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// SchemaVersion is the analysis-JSON version field required for comparator
// compatibility.
const SchemaVersion = "1"

// JSONReport is the root analysis-output object: items (function and
// file debt items, internally tagged by "type"), aggregate totals, debt
// density, optional overall coverage, filter stats, and the diagnostics
// array that parallels items.
type JSONReport struct {
	Version          string           `json:"version"`
	Items            []JSONItem       `json:"items"`
	TotalDebtScore   float64          `json:"total_debt_score"`
	TotalLinesOfCode int              `json:"total_lines_of_code"`
	DebtDensity      float64          `json:"debt_density"`
	OverallCoverage  *float64         `json:"overall_coverage,omitempty"`
	Stats            JSONFilterStats  `json:"stats"`
	Diagnostics      []JSONDiagnostic `json:"diagnostics"`
}

// JSONItem is one internally-tagged debt item. Function items populate the
// function-level fields; file items only file/debt_type/score/tier.
type JSONItem struct {
	Type string `json:"type"` // "function" or "file"

	File     string `json:"file"`
	Function string `json:"function,omitempty"`
	Line     int    `json:"line,omitempty"`

	DebtType string    `json:"debt_type"`
	Score    JSONScore `json:"score"`
	Tier     string    `json:"tier"`

	Role           string `json:"role,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	ExpectedImpact *JSONImpact   `json:"expected_impact,omitempty"`
	Coverage       *JSONCoverage `json:"coverage,omitempty"`

	UpstreamCount   int      `json:"upstream_count,omitempty"`
	UpstreamNames   []string `json:"upstream_names,omitempty"`
	DownstreamCount int      `json:"downstream_count,omitempty"`
	DownstreamNames []string `json:"downstream_names,omitempty"`

	Cyclomatic int `json:"cyclomatic,omitempty"`
	Cognitive  int `json:"cognitive,omitempty"`
	Length     int `json:"length,omitempty"`
	Nesting    int `json:"nesting,omitempty"`

	IsPure      bool   `json:"is_pure,omitempty"`
	PurityLevel string `json:"purity_level,omitempty"`

	GodObjectMethods          int `json:"god_object_methods,omitempty"`
	GodObjectFields           int `json:"god_object_fields,omitempty"`
	GodObjectResponsibilities int `json:"god_object_responsibilities,omitempty"`

	ContextSuggestion string `json:"context_suggestion,omitempty"`

	LanguageData map[string]string `json:"language_data,omitempty"`
}

// JSONScore mirrors model.UnifiedScore with the transparency fields
// rendered as optional pointers so absent stages marshal to nothing.
type JSONScore struct {
	ComplexityFactor float64 `json:"complexity_factor"`
	CoverageFactor   float64 `json:"coverage_factor"`
	DependencyFactor float64 `json:"dependency_factor"`
	RoleMultiplier   float64 `json:"role_multiplier"`
	FinalScore       float64 `json:"final_score"`

	BaseScore                *float64 `json:"base_score,omitempty"`
	ExponentialFactor        *float64 `json:"exponential_factor,omitempty"`
	RiskBoost                *float64 `json:"risk_boost,omitempty"`
	PreAdjustmentScore       *float64 `json:"pre_adjustment_score,omitempty"`
	AdjustmentApplied        *string  `json:"adjustment_applied,omitempty"`
	PurityFactor             *float64 `json:"purity_factor,omitempty"`
	RefactorabilityFactor    *float64 `json:"refactorability_factor,omitempty"`
	PatternFactor            *float64 `json:"pattern_factor,omitempty"`
	StructuralMultiplier     *float64 `json:"structural_multiplier,omitempty"`
	DebtAdjustment           *float64 `json:"debt_adjustment,omitempty"`
	PreNormalizationScore    *float64 `json:"pre_normalization_score,omitempty"`
	ContextualRiskMultiplier *float64 `json:"contextual_risk_multiplier,omitempty"`
}

// JSONImpact mirrors model.ImpactMetrics.
type JSONImpact struct {
	CoverageImprovement float64 `json:"coverage_improvement"`
	LinesReduction      int     `json:"lines_reduction"`
	ComplexityReduction int     `json:"complexity_reduction"`
	RiskReduction       float64 `json:"risk_reduction"`
}

// JSONCoverage mirrors model.TransitiveCoverage.
type JSONCoverage struct {
	Direct         *float64 `json:"direct,omitempty"`
	Transitive     float64  `json:"transitive"`
	PropagatedFrom []string `json:"propagated_from,omitempty"`
	UncoveredLines []int    `json:"uncovered_lines,omitempty"`
}

// JSONFilterStats mirrors model.FilterStats.
type JSONFilterStats struct {
	TotalBeforeFilter     int `json:"total_before_filter"`
	DroppedBelowThreshold int `json:"dropped_below_threshold"`
	DroppedLowComplexity  int `json:"dropped_low_complexity"`
	TotalAfterFilter      int `json:"total_after_filter"`
}

// JSONDiagnostic mirrors model.Diagnostic.
type JSONDiagnostic struct {
	File     string `json:"file,omitempty"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
	Hint     string `json:"hint,omitempty"`
}

func optFloat(v float64, has bool) *float64 {
	if !has {
		return nil
	}
	return &v
}

func optString(v string, has bool) *string {
	if !has {
		return nil
	}
	return &v
}

func buildScore(s model.UnifiedScore) JSONScore {
	return JSONScore{
		ComplexityFactor:         s.ComplexityFactor,
		CoverageFactor:           s.CoverageFactor,
		DependencyFactor:         s.DependencyFactor,
		RoleMultiplier:           s.RoleMultiplier,
		FinalScore:               s.FinalScore,
		BaseScore:                optFloat(s.BaseScore, s.HasBaseScore),
		ExponentialFactor:        optFloat(s.ExponentialFactor, s.HasExponentialFactor),
		RiskBoost:                optFloat(s.RiskBoost, s.HasRiskBoost),
		PreAdjustmentScore:       optFloat(s.PreAdjustmentScore, s.HasPreAdjustmentScore),
		AdjustmentApplied:        optString(s.AdjustmentApplied, s.HasAdjustmentApplied),
		PurityFactor:             optFloat(s.PurityFactor, s.HasPurityFactor),
		RefactorabilityFactor:    optFloat(s.RefactorabilityFactor, s.HasRefactorabilityFactor),
		PatternFactor:            optFloat(s.PatternFactor, s.HasPatternFactor),
		StructuralMultiplier:     optFloat(s.StructuralMultiplier, s.HasStructuralMultiplier),
		DebtAdjustment:           optFloat(s.DebtAdjustment, s.HasDebtAdjustment),
		PreNormalizationScore:    optFloat(s.PreNormalizationScore, s.HasPreNormalizationScore),
		ContextualRiskMultiplier: optFloat(s.ContextualRiskMultiplier, s.HasContextualRiskMultiplier),
	}
}

func refNames(refs []model.DependencyRef) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return out
}

func buildFunctionItem(item model.UnifiedDebtItem) JSONItem {
	ji := JSONItem{
		Type:            "function",
		File:            item.Location.File,
		Function:        item.Location.Function,
		Line:            item.Location.Line,
		DebtType:        item.DebtType.String(),
		Score:           buildScore(item.Score),
		Tier:            item.Tier.String(),
		Role:            item.Role.String(),
		Recommendation:  item.Recommendation,
		UpstreamCount:   item.UpstreamCount,
		UpstreamNames:   refNames(item.UpstreamNames),
		DownstreamCount: item.DownstreamCount,
		DownstreamNames: refNames(item.DownstreamNames),
		Cyclomatic:      item.Cyclomatic,
		Cognitive:       item.Cognitive,
		Length:          item.Length,
		Nesting:         item.Nesting,
		IsPure:          item.IsPure,
		PurityLevel:     item.PurityLevel.String(),
		LanguageData:    item.LanguageData,
	}

	if item.ExpectedImpact != (model.ImpactMetrics{}) {
		ji.ExpectedImpact = &JSONImpact{
			CoverageImprovement: item.ExpectedImpact.CoverageImprovement,
			LinesReduction:      item.ExpectedImpact.LinesReduction,
			ComplexityReduction: item.ExpectedImpact.ComplexityReduction,
			RiskReduction:       item.ExpectedImpact.RiskReduction,
		}
	}

	cov := item.Coverage
	if cov.HasDirect || cov.Transitive > 0 || len(cov.PropagatedFrom) > 0 {
		jc := &JSONCoverage{
			Direct:         optFloat(cov.Direct, cov.HasDirect),
			Transitive:     cov.Transitive,
			UncoveredLines: cov.UncoveredLines,
		}
		for _, id := range cov.PropagatedFrom {
			jc.PropagatedFrom = append(jc.PropagatedFrom, id.Name)
		}
		ji.Coverage = jc
	}

	if item.DebtType.Kind == model.DebtGodObject {
		ji.GodObjectMethods = item.GodObjectMethods
		ji.GodObjectFields = item.GodObjectFields
		ji.GodObjectResponsibilities = item.GodObjectResponsibilities
	}
	if item.HasContextSuggestion {
		ji.ContextSuggestion = item.ContextSuggestion
	}

	return ji
}

// BuildJSONReport converts an AnalysisResult into its wire shape.
func BuildJSONReport(result *model.AnalysisResult) *JSONReport {
	report := &JSONReport{
		Version:          SchemaVersion,
		Items:            make([]JSONItem, 0, len(result.FunctionItems)+len(result.FileItems)),
		TotalDebtScore:   result.TotalDebtScore,
		TotalLinesOfCode: result.TotalLinesOfCode,
		DebtDensity:      result.DebtDensity(),
		Diagnostics:      make([]JSONDiagnostic, 0, len(result.Diagnostics)),
		Stats: JSONFilterStats{
			TotalBeforeFilter:     result.FilterStats.TotalBeforeFilter,
			DroppedBelowThreshold: result.FilterStats.DroppedBelowThreshold,
			DroppedLowComplexity:  result.FilterStats.DroppedLowComplexity,
			TotalAfterFilter:      result.FilterStats.TotalAfterFilter,
		},
	}

	if result.HasOverallCoverage {
		cov := result.OverallCoverage
		report.OverallCoverage = &cov
	}

	for _, item := range result.FunctionItems {
		report.Items = append(report.Items, buildFunctionItem(item))
	}
	for _, item := range result.FileItems {
		report.Items = append(report.Items, JSONItem{
			Type:     "file",
			File:     item.File,
			DebtType: item.DebtType.String(),
			Score:    buildScore(item.Score),
			Tier:     item.Tier.String(),
		})
	}

	for _, d := range result.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, JSONDiagnostic{
			File:     d.File,
			Severity: d.Severity.String(),
			Reason:   d.Reason,
			Hint:     d.Hint,
		})
	}

	return report
}

// RenderJSON writes the JSON report to w with pretty-printed indentation.
func RenderJSON(w io.Writer, report *JSONReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ParseJSONReport reads a previously written analysis report, used by the
// compare subcommand to load before/after runs.
func ParseJSONReport(r io.Reader) (*JSONReport, error) {
	var report JSONReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ItemsFromReport reconstructs the comparator's input set from a parsed
// report: only the fields the comparator's key matching and score math consult are
// restored (location, final score, cyclomatic, transitive coverage, tier).
func ItemsFromReport(report *JSONReport) []model.UnifiedDebtItem {
	var out []model.UnifiedDebtItem
	for _, ji := range report.Items {
		if ji.Type != "function" {
			continue
		}
		item := model.UnifiedDebtItem{
			Location:   model.Location{File: ji.File, Function: ji.Function, Line: ji.Line},
			Score:      model.UnifiedScore{FinalScore: ji.Score.FinalScore},
			Cyclomatic: ji.Cyclomatic,
			Cognitive:  ji.Cognitive,
			Tier:       model.TierFromScore(ji.Score.FinalScore),
		}
		if ji.Coverage != nil {
			item.Coverage.Transitive = ji.Coverage.Transitive
			if ji.Coverage.Direct != nil {
				item.Coverage.Direct = *ji.Coverage.Direct
				item.Coverage.HasDirect = true
			}
		}
		out = append(out, item)
	}
	return out
}

// ComparisonJSON is the comparison-output JSON shape.
type ComparisonJSON struct {
	Target       *TargetJSON  `json:"target,omitempty"`
	Regressions  []JSONItem   `json:"regressions"`
	Improvements []JSONItem   `json:"improvements"`
	Health       HealthJSON   `json:"project_health"`
}

// TargetJSON is the tracked-location comparison section.
type TargetJSON struct {
	Location                   string  `json:"location"`
	Status                     string  `json:"status"`
	ScoreReductionPercent      float64 `json:"score_reduction_pct"`
	ComplexityReductionPercent float64 `json:"complexity_reduction_pct"`
	CoverageImprovementPoints  float64 `json:"coverage_improvement_points"`
}

// HealthJSON is the aggregate project-health section.
type HealthJSON struct {
	TotalDebtScoreBefore float64 `json:"total_debt_score_before"`
	TotalDebtScoreAfter  float64 `json:"total_debt_score_after"`
	CriticalBefore       int     `json:"critical_before"`
	CriticalAfter        int     `json:"critical_after"`
	HighBefore           int     `json:"high_before"`
	HighAfter            int     `json:"high_after"`
	AverageScoreBefore   float64 `json:"average_score_before"`
	AverageScoreAfter    float64 `json:"average_score_after"`
	Trend                string  `json:"trend"`
}

// BuildComparisonJSON assembles the comparison report from the comparator's
// outputs.
func BuildComparisonJSON(target *compare.TargetResult, targetLoc *model.Location, regressions, improvements []model.UnifiedDebtItem, health compare.ProjectHealth) *ComparisonJSON {
	cj := &ComparisonJSON{
		Regressions:  make([]JSONItem, 0, len(regressions)),
		Improvements: make([]JSONItem, 0, len(improvements)),
		Health: HealthJSON{
			TotalDebtScoreBefore: health.TotalDebtScoreBefore,
			TotalDebtScoreAfter:  health.TotalDebtScoreAfter,
			CriticalBefore:       health.CriticalCountBefore,
			CriticalAfter:        health.CriticalCountAfter,
			HighBefore:           health.HighCountBefore,
			HighAfter:            health.HighCountAfter,
			AverageScoreBefore:   health.AverageScoreBefore,
			AverageScoreAfter:    health.AverageScoreAfter,
			Trend:                health.Trend.String(),
		},
	}
	if target != nil && targetLoc != nil {
		cj.Target = &TargetJSON{
			Location:                   targetLoc.String(),
			Status:                     target.Status.String(),
			ScoreReductionPercent:      target.ScoreReductionPercent,
			ComplexityReductionPercent: target.ComplexityReductionPercent,
			CoverageImprovementPoints:  target.CoverageImprovementPoints,
		}
	}
	for _, item := range regressions {
		cj.Regressions = append(cj.Regressions, buildFunctionItem(item))
	}
	for _, item := range improvements {
		cj.Improvements = append(cj.Improvements, buildFunctionItem(item))
	}
	return cj
}

// RenderComparisonJSON writes the comparison report as indented JSON.
func RenderComparisonJSON(w io.Writer, cj *ComparisonJSON) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cj)
}
