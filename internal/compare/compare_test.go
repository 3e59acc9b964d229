package compare

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func item(file, fn string, line int, score float64) model.UnifiedDebtItem {
	return model.UnifiedDebtItem{
		Location: model.Location{File: file, Function: fn, Line: line},
		Score:    model.UnifiedScore{FinalScore: score},
		Tier:     model.TierFromScore(score),
	}
}

func TestCompareTargetImproved(t *testing.T) {
	// End-to-end scenario: file.rs:func:42 drops from 81.9 to 15.2.
	target := model.Location{File: "file.rs", Function: "func", Line: 42}
	before := []model.UnifiedDebtItem{item("file.rs", "func", 42, 81.9)}
	after := []model.UnifiedDebtItem{item("file.rs", "func", 42, 15.2)}

	got := CompareTarget(before, after, target)
	if got.Status != StatusImproved {
		t.Fatalf("status = %s, want Improved", got.Status)
	}
	if got.ScoreReductionPercent < 81.0 || got.ScoreReductionPercent > 82.0 {
		t.Errorf("score reduction = %.1f%%, want ~81.4%%", got.ScoreReductionPercent)
	}

	health := ComputeProjectHealth(before, after)
	if health.Trend != TrendImproving {
		t.Errorf("trend = %s, want Improving (81.9 -> 15.2)", health.Trend)
	}
}

func TestCompareTargetStatusBoundaries(t *testing.T) {
	target := model.Location{File: "a.go", Function: "f", Line: 1}

	tests := []struct {
		name   string
		before float64
		after  float64
		want   TargetStatus
	}{
		{"improved iff after < before*0.7", 100, 69.9, StatusImproved},
		{"at 0.7 boundary is unchanged", 100, 70, StatusUnchanged},
		{"regressed iff after > before*1.1", 100, 110.1, StatusRegressed},
		{"at 1.1 boundary is unchanged", 100, 110, StatusUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareTarget(
				[]model.UnifiedDebtItem{item("a.go", "f", 1, tt.before)},
				[]model.UnifiedDebtItem{item("a.go", "f", 1, tt.after)},
				target,
			)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestCompareTargetResolvedAndMissing(t *testing.T) {
	target := model.Location{File: "a.go", Function: "f", Line: 1}
	present := []model.UnifiedDebtItem{item("a.go", "f", 1, 50)}

	if got := CompareTarget(present, nil, target); got.Status != StatusResolved {
		t.Errorf("present->absent status = %s, want Resolved", got.Status)
	}
	if got := CompareTarget(nil, present, target); got.Status != StatusNotFoundBefore {
		t.Errorf("absent->present status = %s, want NotFoundBefore", got.Status)
	}
	if got := CompareTarget(nil, nil, target); got.Status != StatusNotFound {
		t.Errorf("absent->absent status = %s, want NotFound", got.Status)
	}
}

func TestKeyMatchingNormalizesLeadingDotSlash(t *testing.T) {
	target := model.Location{File: "./a.go", Function: "f", Line: 1}
	before := []model.UnifiedDebtItem{item("a.go", "f", 1, 50)}
	after := []model.UnifiedDebtItem{item("a.go", "f", 1, 10)}

	if got := CompareTarget(before, after, target); got.Status != StatusImproved {
		t.Errorf("leading ./ should match: got %s", got.Status)
	}
}

func TestFindRegressions(t *testing.T) {
	before := []model.UnifiedDebtItem{
		item("a.go", "alreadyBad", 1, 75), // already at severity before: not a regression
		item("a.go", "wasFine", 10, 20),
	}
	after := []model.UnifiedDebtItem{
		item("a.go", "alreadyBad", 1, 80),
		item("a.go", "wasFine", 10, 65),  // newly severe
		item("a.go", "brandNew", 20, 61), // new at severity
		item("a.go", "minor", 30, 59.9),  // below the floor
	}

	got := FindRegressions(before, after)
	if len(got) != 2 {
		t.Fatalf("got %d regressions, want 2: %+v", len(got), got)
	}
	for _, item := range got {
		if item.Score.FinalScore < 60 {
			t.Errorf("regression %s scored %f, below the 60.0 floor", item.Location.Function, item.Score.FinalScore)
		}
	}
}

func TestFindImprovements(t *testing.T) {
	before := []model.UnifiedDebtItem{
		item("a.go", "resolvedBig", 1, 45),   // resolved with before >= 40: improvement
		item("a.go", "resolvedSmall", 5, 39), // resolved but below the floor: not
		item("a.go", "reduced", 10, 100),     // 70% reduction: improvement
		item("a.go", "barely", 20, 100),      // 10% reduction: not
	}
	after := []model.UnifiedDebtItem{
		item("a.go", "reduced", 10, 30),
		item("a.go", "barely", 20, 90),
	}

	got := FindImprovements(before, after)
	if len(got) != 2 {
		t.Fatalf("got %d improvements, want 2: %+v", len(got), got)
	}
}

func TestProjectHealthTrend(t *testing.T) {
	tests := []struct {
		name          string
		before, after float64
		want          Trend
	}{
		{"improving past -5%", 100, 94, TrendImproving},
		{"stable within band", 100, 97, TrendStable},
		{"stable within band up", 100, 103, TrendStable},
		{"regressing past +5%", 100, 106, TrendRegressing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ComputeProjectHealth(
				[]model.UnifiedDebtItem{item("a.go", "f", 1, tt.before)},
				[]model.UnifiedDebtItem{item("a.go", "f", 1, tt.after)},
			)
			if h.Trend != tt.want {
				t.Errorf("trend = %s, want %s", h.Trend, tt.want)
			}
		})
	}
}

func TestProjectHealthCounts(t *testing.T) {
	before := []model.UnifiedDebtItem{
		item("a.go", "critical", 1, 80),
		item("a.go", "high", 2, 45),
		item("a.go", "low", 3, 5),
	}
	h := ComputeProjectHealth(before, nil)
	if h.CriticalCountBefore != 1 || h.HighCountBefore != 1 {
		t.Errorf("counts = (critical %d, high %d), want (1, 1)", h.CriticalCountBefore, h.HighCountBefore)
	}
	if h.AverageScoreBefore < 43 || h.AverageScoreBefore > 44 {
		t.Errorf("average = %f, want ~43.3", h.AverageScoreBefore)
	}
}
