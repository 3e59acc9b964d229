// Package output renders analysis and comparison results to the three
// surfaces: analysis JSON, comparison JSON/markdown/
// terminal, and a tier-colored terminal report.
//
// Terminal rendering uses automatic color encoding (red/yellow/white/faint)
// based on tier so item priority reads at a glance. NO_COLOR environment
// variable support keeps output compatible with screen readers and CI
// pipelines per https://no-color.org.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ingoeichhorst/debtgraph/internal/compare"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// defaultTopN bounds how many items the terminal report prints in
// non-verbose mode.
const defaultTopN = 10

// colorEnabled decides whether to emit ANSI colors for w.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func tierColor(t model.Tier) *color.Color {
	switch t {
	case model.TierCritical:
		return color.New(color.FgRed, color.Bold)
	case model.TierHigh:
		return color.New(color.FgYellow)
	case model.TierMedium:
		return color.New(color.FgWhite)
	default:
		return color.New(color.Faint)
	}
}

// RenderAnalysis writes the ranked debt report to w. When verbose is false
// only the top defaultTopN function items are shown.
func RenderAnalysis(w io.Writer, result *model.AnalysisResult, verbose bool) {
	noColor := !colorEnabled(w)

	fmt.Fprintf(w, "Technical Debt Report\n")
	fmt.Fprintf(w, "=====================\n\n")

	fmt.Fprintf(w, "Total debt score: %.1f\n", result.TotalDebtScore)
	fmt.Fprintf(w, "Lines of code:    %d\n", result.TotalLinesOfCode)
	fmt.Fprintf(w, "Debt density:     %.1f per 1000 LOC\n", result.DebtDensity())
	if result.HasOverallCoverage {
		fmt.Fprintf(w, "Overall coverage: %.1f%%\n", result.OverallCoverage*100)
	}
	fmt.Fprintln(w)

	items := result.FunctionItems
	shown := len(items)
	if !verbose && shown > defaultTopN {
		shown = defaultTopN
	}

	for i := 0; i < shown; i++ {
		item := items[i]
		c := tierColor(item.Tier)
		header := fmt.Sprintf("%2d. [%5.1f] %s %s", i+1, item.Score.FinalScore, item.DebtType.String(), item.Location.String())
		if noColor {
			fmt.Fprintln(w, header)
		} else {
			c.Fprintln(w, header)
		}
		fmt.Fprintf(w, "      tier=%s role=%s cyclo=%d cog=%d callers=%d\n",
			item.Tier, item.Role, item.Cyclomatic, item.Cognitive, item.UpstreamCount)
		if item.Recommendation != "" {
			fmt.Fprintf(w, "      %s\n", item.Recommendation)
		}
		if verbose && len(item.DebtType.DeadCode.UsageHints) > 0 {
			for _, hint := range item.DebtType.DeadCode.UsageHints {
				fmt.Fprintf(w, "      hint: %s\n", hint)
			}
		}
	}
	if shown < len(items) {
		fmt.Fprintf(w, "\n... and %d more items (use --verbose to see all)\n", len(items)-shown)
	}

	for _, fi := range result.FileItems {
		fmt.Fprintf(w, "\nfile: [%5.1f] %s %s\n", fi.Score.FinalScore, fi.DebtType.String(), fi.File)
	}

	stats := result.FilterStats
	if stats.DroppedBelowThreshold > 0 || stats.DroppedLowComplexity > 0 {
		fmt.Fprintf(w, "\nFiltered: %d below score threshold, %d below complexity minimums (%d of %d kept)\n",
			stats.DroppedBelowThreshold, stats.DroppedLowComplexity, stats.TotalAfterFilter, stats.TotalBeforeFilter)
	}

	if len(result.Diagnostics) > 0 {
		fmt.Fprintf(w, "\nDiagnostics (%d):\n", len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			loc := d.File
			if loc != "" {
				loc += ": "
			}
			fmt.Fprintf(w, "  [%s] %s%s", d.Severity, loc, d.Reason)
			if d.Hint != "" {
				fmt.Fprintf(w, " (%s)", d.Hint)
			}
			fmt.Fprintln(w)
		}
	}
}

// RenderComparisonTerminal writes the before/after comparison in terminal
// form.
func RenderComparisonTerminal(w io.Writer, cj *ComparisonJSON) {
	fmt.Fprintf(w, "Debt Comparison\n")
	fmt.Fprintf(w, "===============\n\n")

	if cj.Target != nil {
		fmt.Fprintf(w, "Target %s: %s\n", cj.Target.Location, cj.Target.Status)
		if cj.Target.Status == "Improved" || cj.Target.Status == "Regressed" || cj.Target.Status == "Unchanged" {
			fmt.Fprintf(w, "  score reduction:      %.1f%%\n", cj.Target.ScoreReductionPercent)
			fmt.Fprintf(w, "  complexity reduction: %.1f%%\n", cj.Target.ComplexityReductionPercent)
			fmt.Fprintf(w, "  coverage improvement: %.1f points\n", cj.Target.CoverageImprovementPoints)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Trend: %s (total %.1f -> %.1f)\n", cj.Health.Trend, cj.Health.TotalDebtScoreBefore, cj.Health.TotalDebtScoreAfter)
	fmt.Fprintf(w, "Critical: %d -> %d   High: %d -> %d\n\n",
		cj.Health.CriticalBefore, cj.Health.CriticalAfter, cj.Health.HighBefore, cj.Health.HighAfter)

	fmt.Fprintf(w, "Regressions (%d):\n", len(cj.Regressions))
	for _, item := range cj.Regressions {
		fmt.Fprintf(w, "  [%5.1f] %s %s:%s:%d\n", item.Score.FinalScore, item.DebtType, item.File, item.Function, item.Line)
	}
	fmt.Fprintf(w, "Improvements (%d):\n", len(cj.Improvements))
	for _, item := range cj.Improvements {
		fmt.Fprintf(w, "  [%5.1f] %s %s:%s:%d\n", item.Score.FinalScore, item.DebtType, item.File, item.Function, item.Line)
	}
}

// RenderComparisonMarkdown writes the before/after comparison as markdown.
func RenderComparisonMarkdown(w io.Writer, cj *ComparisonJSON) {
	fmt.Fprintf(w, "# Debt Comparison\n\n")

	if cj.Target != nil {
		fmt.Fprintf(w, "## Target `%s`\n\n", cj.Target.Location)
		fmt.Fprintf(w, "**Status:** %s\n\n", cj.Target.Status)
		fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(w, "| Score reduction | %.1f%% |\n", cj.Target.ScoreReductionPercent)
		fmt.Fprintf(w, "| Complexity reduction | %.1f%% |\n", cj.Target.ComplexityReductionPercent)
		fmt.Fprintf(w, "| Coverage improvement | %.1f points |\n\n", cj.Target.CoverageImprovementPoints)
	}

	fmt.Fprintf(w, "## Project health\n\n")
	fmt.Fprintf(w, "| | Before | After |\n|---|---|---|\n")
	fmt.Fprintf(w, "| Total debt score | %.1f | %.1f |\n", cj.Health.TotalDebtScoreBefore, cj.Health.TotalDebtScoreAfter)
	fmt.Fprintf(w, "| Critical items | %d | %d |\n", cj.Health.CriticalBefore, cj.Health.CriticalAfter)
	fmt.Fprintf(w, "| High items | %d | %d |\n", cj.Health.HighBefore, cj.Health.HighAfter)
	fmt.Fprintf(w, "| Average score | %.1f | %.1f |\n\n", cj.Health.AverageScoreBefore, cj.Health.AverageScoreAfter)
	fmt.Fprintf(w, "**Trend:** %s\n\n", cj.Health.Trend)

	renderMarkdownItemList(w, "Regressions", cj.Regressions)
	renderMarkdownItemList(w, "Improvements", cj.Improvements)
}

func renderMarkdownItemList(w io.Writer, title string, items []JSONItem) {
	fmt.Fprintf(w, "## %s (%d)\n\n", title, len(items))
	if len(items) == 0 {
		fmt.Fprintf(w, "None.\n\n")
		return
	}
	fmt.Fprintf(w, "| Score | Debt type | Location |\n|---|---|---|\n")
	for _, item := range items {
		loc := fmt.Sprintf("%s:%s:%d", item.File, item.Function, item.Line)
		fmt.Fprintf(w, "| %.1f | %s | `%s` |\n", item.Score.FinalScore, item.DebtType, loc)
	}
	fmt.Fprintln(w)
}

// ParseTargetLocation parses a "file:function:line" target argument.
func ParseTargetLocation(s string) (model.Location, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return model.Location{}, fmt.Errorf("target must be file:function:line, got %q", s)
	}
	var line int
	if _, err := fmt.Sscanf(s[idx+1:], "%d", &line); err != nil {
		return model.Location{}, fmt.Errorf("target line must be numeric in %q", s)
	}
	rest := s[:idx]
	idx = strings.LastIndex(rest, ":")
	if idx < 0 {
		return model.Location{}, fmt.Errorf("target must be file:function:line, got %q", s)
	}
	return model.Location{File: rest[:idx], Function: rest[idx+1:], Line: line}, nil
}

// CompareReports runs the full comparison over two parsed analysis
// reports, returning the renderable comparison object.
func CompareReports(before, after *JSONReport, target *model.Location) *ComparisonJSON {
	beforeItems := ItemsFromReport(before)
	afterItems := ItemsFromReport(after)

	var targetResult *compare.TargetResult
	if target != nil {
		tr := compare.CompareTarget(beforeItems, afterItems, *target)
		targetResult = &tr
	}

	regressions := compare.FindRegressions(beforeItems, afterItems)
	improvements := compare.FindImprovements(beforeItems, afterItems)
	health := compare.ComputeProjectHealth(beforeItems, afterItems)

	return BuildComparisonJSON(targetResult, target, regressions, improvements, health)
}
