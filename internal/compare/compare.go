// Package compare implements the before/after comparator:
// target-level regression/improvement classification, project-wide
// regression and improvement lists, and an aggregate project-health
// summary with an Improving/Stable/Regressing trend.
package compare

import (
	"strconv"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// TargetStatus classifies how one location's score moved between two runs.
type TargetStatus int

const (
	StatusNotFound TargetStatus = iota
	StatusNotFoundBefore
	StatusResolved
	StatusImproved
	StatusRegressed
	StatusUnchanged
)

func (s TargetStatus) String() string {
	switch s {
	case StatusNotFoundBefore:
		return "NotFoundBefore"
	case StatusResolved:
		return "Resolved"
	case StatusImproved:
		return "Improved"
	case StatusRegressed:
		return "Regressed"
	case StatusUnchanged:
		return "Unchanged"
	default:
		return "NotFound"
	}
}

// TargetResult is the outcome of comparing one tracked location across
// two runs.
type TargetResult struct {
	Status                     TargetStatus
	ScoreReductionPercent      float64
	ComplexityReductionPercent float64
	CoverageImprovementPoints  float64
}

// byKey indexes a result set by its normalized location key.
func byKey(items []model.UnifiedDebtItem) map[string]model.UnifiedDebtItem {
	m := make(map[string]model.UnifiedDebtItem, len(items))
	for _, item := range items {
		m[normalizedKey(item.Location)] = item
	}
	return m
}

func normalizedKey(loc model.Location) string {
	return loc.NormalizedFile() + ":" + loc.Function + ":" + strconv.Itoa(loc.Line)
}

// CompareTarget classifies the evolution of a single tracked location
// given its item in the before and after result sets.
func CompareTarget(before, after []model.UnifiedDebtItem, target model.Location) TargetResult {
	beforeItem, hasBefore := byKey(before)[normalizedKey(target)]
	afterItem, hasAfter := byKey(after)[normalizedKey(target)]

	switch {
	case !hasBefore && !hasAfter:
		return TargetResult{Status: StatusNotFound}
	case !hasBefore && hasAfter:
		return TargetResult{Status: StatusNotFoundBefore}
	case hasBefore && !hasAfter:
		return TargetResult{Status: StatusResolved, ScoreReductionPercent: 100}
	}

	beforeScore := beforeItem.Score.FinalScore
	afterScore := afterItem.Score.FinalScore

	result := TargetResult{
		ComplexityReductionPercent: percentReduction(float64(beforeItem.Cyclomatic), float64(afterItem.Cyclomatic)),
		CoverageImprovementPoints:  (afterItem.Coverage.Transitive - beforeItem.Coverage.Transitive) * 100,
	}
	if beforeScore > 0 {
		result.ScoreReductionPercent = percentReduction(beforeScore, afterScore)
	}

	switch {
	case afterScore < beforeScore*0.7:
		result.Status = StatusImproved
	case afterScore > beforeScore*1.1:
		result.Status = StatusRegressed
	default:
		result.Status = StatusUnchanged
	}
	return result
}

func percentReduction(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (before - after) / before * 100
}

// regressionSeverityFloor is the final_score threshold at or above which
// an after-only or worsened item counts as a regression.
const regressionSeverityFloor = 60.0

// improvementScoreFloor is the minimum before_score for a resolved
// item to count as an improvement.
const improvementScoreFloor = 40.0

// improvementReductionFloor is the minimum score-reduction percentage
// for a still-present item to count as an improvement.
const improvementReductionFloor = 30.0

// FindRegressions returns every after-set item scoring at or above the
// severity floor whose location had no before-set item at that severity.
func FindRegressions(before, after []model.UnifiedDebtItem) []model.UnifiedDebtItem {
	beforeIdx := byKey(before)
	var out []model.UnifiedDebtItem
	for _, item := range after {
		if item.Score.FinalScore < regressionSeverityFloor {
			continue
		}
		beforeItem, ok := beforeIdx[normalizedKey(item.Location)]
		if ok && beforeItem.Score.FinalScore >= regressionSeverityFloor {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FindImprovements returns every item resolved since the before run (with
// before_score at or above the floor) plus every still-present item whose
// score dropped by at least the reduction floor.
func FindImprovements(before, after []model.UnifiedDebtItem) []model.UnifiedDebtItem {
	afterIdx := byKey(after)
	var out []model.UnifiedDebtItem
	for _, item := range before {
		if _, present := afterIdx[normalizedKey(item.Location)]; present {
			continue
		}
		if item.Score.FinalScore >= improvementScoreFloor {
			out = append(out, item)
		}
	}
	for _, item := range after {
		beforeItem, ok := byKey(before)[normalizedKey(item.Location)]
		if !ok || beforeItem.Score.FinalScore == 0 {
			continue
		}
		if percentReduction(beforeItem.Score.FinalScore, item.Score.FinalScore) >= improvementReductionFloor {
			out = append(out, item)
		}
	}
	return out
}

// Trend classifies the overall direction of total_debt_score between runs.
type Trend int

const (
	TrendStable Trend = iota
	TrendImproving
	TrendRegressing
)

func (t Trend) String() string {
	switch t {
	case TrendImproving:
		return "Improving"
	case TrendRegressing:
		return "Regressing"
	default:
		return "Stable"
	}
}

// ProjectHealth is the aggregate summary's "project health"
// paragraph.
type ProjectHealth struct {
	TotalDebtScoreBefore float64
	TotalDebtScoreAfter  float64
	CriticalCountBefore  int
	CriticalCountAfter   int
	HighCountBefore      int
	HighCountAfter       int
	AverageScoreBefore   float64
	AverageScoreAfter    float64
	Trend                Trend
}

// trendThreshold is the ±5% of total_debt_score band inside which
// the trend is classified as Stable.
const trendThreshold = 0.05

// ComputeProjectHealth aggregates before/after result sets into a
// ProjectHealth summary.
func ComputeProjectHealth(before, after []model.UnifiedDebtItem) ProjectHealth {
	h := ProjectHealth{}
	for _, item := range before {
		h.TotalDebtScoreBefore += item.Score.FinalScore
		tallyTier(item.Tier, &h.CriticalCountBefore, &h.HighCountBefore)
	}
	for _, item := range after {
		h.TotalDebtScoreAfter += item.Score.FinalScore
		tallyTier(item.Tier, &h.CriticalCountAfter, &h.HighCountAfter)
	}
	if len(before) > 0 {
		h.AverageScoreBefore = h.TotalDebtScoreBefore / float64(len(before))
	}
	if len(after) > 0 {
		h.AverageScoreAfter = h.TotalDebtScoreAfter / float64(len(after))
	}

	if h.TotalDebtScoreBefore == 0 {
		h.Trend = TrendStable
		return h
	}
	delta := (h.TotalDebtScoreAfter - h.TotalDebtScoreBefore) / h.TotalDebtScoreBefore
	switch {
	case delta <= -trendThreshold:
		h.Trend = TrendImproving
	case delta >= trendThreshold:
		h.Trend = TrendRegressing
	default:
		h.Trend = TrendStable
	}
	return h
}

func tallyTier(tier model.Tier, critical, high *int) {
	switch tier {
	case model.TierCritical:
		*critical++
	case model.TierHigh:
		*high++
	}
}
