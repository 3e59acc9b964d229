// Package filterrank implements the single-stage item filter and ranking
// aggregate: a score/complexity threshold applied once at
// item-insert time, followed by score-descending ranking and the
// total-debt-score / debt-density aggregates computed over the surviving
// set.
package filterrank

import (
	"sort"

	"github.com/ingoeichhorst/debtgraph/internal/scoring"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// Filter drops any item whose FinalScore is below cfg.MinScoreThreshold,
// and independently drops any non-test item whose cyclomatic AND cognitive
// complexity both fall below their configured minimums (both thresholds
// must bind; test items are always exempt from the complexity filter).
func Filter(items []model.UnifiedDebtItem, isTest map[string]bool, cfg scoring.Config) ([]model.UnifiedDebtItem, model.FilterStats) {
	stats := model.FilterStats{TotalBeforeFilter: len(items)}
	out := make([]model.UnifiedDebtItem, 0, len(items))

	for _, item := range items {
		if item.Score.FinalScore < cfg.MinScoreThreshold {
			stats.DroppedBelowThreshold++
			continue
		}
		if !isTest[item.Location.String()] &&
			item.Cyclomatic < cfg.MinCyclomatic && item.Cognitive < cfg.MinCognitive {
			stats.DroppedLowComplexity++
			continue
		}
		out = append(out, item)
	}

	stats.TotalAfterFilter = len(out)
	return out, stats
}

// Rank sorts items by FinalScore descending, breaking ties by Location for
// determinism.
func Rank(items []model.UnifiedDebtItem) []model.UnifiedDebtItem {
	out := make([]model.UnifiedDebtItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.FinalScore != out[j].Score.FinalScore {
			return out[i].Score.FinalScore > out[j].Score.FinalScore
		}
		return out[i].Location.String() < out[j].Location.String()
	})
	return out
}

// TopN returns the first n items of a ranked slice, or all of them if
// fewer than n remain.
func TopN(ranked []model.UnifiedDebtItem, n int) []model.UnifiedDebtItem {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// TotalDebtScore sums FinalScore across items.
func TotalDebtScore(items []model.UnifiedDebtItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Score.FinalScore
	}
	return total
}

// DebtDensity computes total_debt_score / LOC * 1000, or 0 when loc is 0.
func DebtDensity(totalDebtScore float64, loc int) float64 {
	if loc == 0 {
		return 0
	}
	return totalDebtScore / float64(loc) * 1000
}
