package filterrank

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/scoring"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func item(fn string, score float64, cyclo, cog int) model.UnifiedDebtItem {
	return model.UnifiedDebtItem{
		Location:   model.Location{File: "a.go", Function: fn, Line: 1},
		Score:      model.UnifiedScore{FinalScore: score},
		Cyclomatic: cyclo,
		Cognitive:  cog,
	}
}

func TestFilterScoreThreshold(t *testing.T) {
	cfg := scoring.DefaultConfig()
	cfg.MinScoreThreshold = 10

	items := []model.UnifiedDebtItem{
		item("keep", 10, 5, 5),
		item("drop", 9.9, 5, 5),
	}
	kept, stats := Filter(items, map[string]bool{}, cfg)

	if len(kept) != 1 || kept[0].Location.Function != "keep" {
		t.Fatalf("kept = %+v, want only the item at the threshold", kept)
	}
	if stats.DroppedBelowThreshold != 1 {
		t.Errorf("DroppedBelowThreshold = %d, want 1", stats.DroppedBelowThreshold)
	}
	for _, it := range kept {
		if it.Score.FinalScore < cfg.MinScoreThreshold {
			t.Errorf("item %s survived below threshold", it.Location.Function)
		}
	}
}

func TestFilterComplexityBothMustBind(t *testing.T) {
	cfg := scoring.DefaultConfig()
	cfg.MinCyclomatic = 3
	cfg.MinCognitive = 5

	items := []model.UnifiedDebtItem{
		item("bothLow", 50, 2, 4),    // both below: dropped
		item("cycloHigh", 50, 3, 4),  // cyclo at minimum: kept
		item("cogHigh", 50, 2, 5),    // cognitive at minimum: kept
	}
	kept, stats := Filter(items, map[string]bool{}, cfg)

	if len(kept) != 2 {
		t.Fatalf("kept %d items, want 2 (both thresholds must bind)", len(kept))
	}
	if stats.DroppedLowComplexity != 1 {
		t.Errorf("DroppedLowComplexity = %d, want 1", stats.DroppedLowComplexity)
	}
}

func TestFilterTestItemsExemptFromComplexity(t *testing.T) {
	cfg := scoring.DefaultConfig()
	cfg.MinCyclomatic = 3
	cfg.MinCognitive = 5

	testItem := item("TestSomething", 50, 1, 0)
	isTest := map[string]bool{testItem.Location.String(): true}

	kept, _ := Filter([]model.UnifiedDebtItem{testItem}, isTest, cfg)
	if len(kept) != 1 {
		t.Fatal("test items must be exempt from the complexity filter")
	}
}

func TestRankStableOrder(t *testing.T) {
	items := []model.UnifiedDebtItem{
		item("b", 50, 1, 1),
		item("a", 50, 1, 1),
		item("c", 80, 1, 1),
	}
	ranked := Rank(items)
	if ranked[0].Location.Function != "c" {
		t.Errorf("highest score should rank first, got %s", ranked[0].Location.Function)
	}
	// Equal scores tie-break by location for determinism.
	if ranked[1].Location.Function != "a" || ranked[2].Location.Function != "b" {
		t.Errorf("tie-break order = %s, %s; want a, b", ranked[1].Location.Function, ranked[2].Location.Function)
	}
}

func TestTopN(t *testing.T) {
	ranked := []model.UnifiedDebtItem{item("a", 90, 1, 1), item("b", 80, 1, 1), item("c", 70, 1, 1)}
	if got := TopN(ranked, 2); len(got) != 2 {
		t.Errorf("TopN(2) returned %d items", len(got))
	}
	if got := TopN(ranked, 0); len(got) != 3 {
		t.Errorf("TopN(0) should return everything, got %d", len(got))
	}
	if got := TopN(ranked, 10); len(got) != 3 {
		t.Errorf("TopN(10) of 3 should return 3, got %d", len(got))
	}
}

func TestAggregates(t *testing.T) {
	items := []model.UnifiedDebtItem{item("a", 30, 1, 1), item("b", 20, 1, 1)}
	total := TotalDebtScore(items)
	if total != 50 {
		t.Errorf("TotalDebtScore = %f, want 50", total)
	}
	if got := DebtDensity(total, 1000); got != 50 {
		t.Errorf("DebtDensity = %f, want 50", got)
	}
	if got := DebtDensity(total, 0); got != 0 {
		t.Errorf("DebtDensity with 0 LOC = %f, want 0", got)
	}
}
