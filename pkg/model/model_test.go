package model

import (
	"testing"
)

func TestDebtKindDisplayNames(t *testing.T) {
	kinds := []DebtKind{
		DebtTodo, DebtFixme, DebtTestingGap, DebtComplexityHotspot, DebtDeadCode,
		DebtDuplication, DebtErrorSwallowing, DebtBlockingIO, DebtNestedLoops,
		DebtAllocationInefficiency, DebtStringConcatenation, DebtSuboptimalDataStructure,
		DebtGodObject, DebtFeatureEnvy, DebtPrimitiveObsession, DebtMagicValues,
		DebtAssertionComplexity, DebtFlakyTestPattern, DebtAsyncMisuse, DebtResourceLeak,
		DebtCollectionInefficiency, DebtScatteredType, DebtOrphanedFunctions,
		DebtUtilitiesSprawl, DebtTestComplexityHotspot, DebtTestTodo, DebtTestDuplication,
		DebtRisk,
	}

	seen := make(map[string]DebtKind)
	for _, k := range kinds {
		name := k.String()
		if len(name) < 3 {
			t.Errorf("DebtKind(%d).String() = %q, want at least 3 chars", k, name)
		}
		if name == "Unknown" {
			t.Errorf("DebtKind(%d) has no display name", k)
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("display name %q shared by kinds %d and %d", name, prev, k)
		}
		seen[name] = k
		// Deterministic: a second call yields the same string.
		if k.String() != name {
			t.Errorf("DebtKind(%d).String() is not deterministic", k)
		}
	}
}

func TestTierFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierLow},
		{19.9, TierLow},
		{20, TierMedium},
		{40, TierHigh},
		{59.9, TierHigh},
		{60, TierCritical},
		{100, TierCritical},
	}
	for _, tt := range tests {
		if got := TierFromScore(tt.score); got != tt.want {
			t.Errorf("TierFromScore(%.1f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestDebtDensity(t *testing.T) {
	r := AnalysisResult{TotalDebtScore: 50, TotalLinesOfCode: 1000}
	if got := r.DebtDensity(); got != 50 {
		t.Errorf("DebtDensity() = %f, want 50", got)
	}

	empty := AnalysisResult{TotalDebtScore: 50}
	if got := empty.DebtDensity(); got != 0 {
		t.Errorf("DebtDensity() with 0 LOC = %f, want 0", got)
	}
}

func TestDebtDensityScaleIndependent(t *testing.T) {
	small := AnalysisResult{TotalDebtScore: 42, TotalLinesOfCode: 700}
	large := AnalysisResult{TotalDebtScore: 420, TotalLinesOfCode: 7000}
	if small.DebtDensity() != large.DebtDensity() {
		t.Errorf("10x project density %f != 1x project density %f", large.DebtDensity(), small.DebtDensity())
	}
}

func TestLocationNormalizedFile(t *testing.T) {
	loc := Location{File: "./src/main.py", Function: "main", Line: 3}
	if got := loc.NormalizedFile(); got != "src/main.py" {
		t.Errorf("NormalizedFile() = %q, want src/main.py", got)
	}
	plain := Location{File: "src/main.py"}
	if got := plain.NormalizedFile(); got != "src/main.py" {
		t.Errorf("NormalizedFile() without prefix = %q, want unchanged", got)
	}
}

func TestFunctionIdUnresolved(t *testing.T) {
	if !(FunctionId{File: "a.go", Name: "f", Line: 0}).Unresolved() {
		t.Error("line 0 should mark a placeholder")
	}
	if (FunctionId{File: "a.go", Name: "f", Line: 1}).Unresolved() {
		t.Error("line 1 is a real definition")
	}
}

func TestPurityMultipliers(t *testing.T) {
	tests := []struct {
		level PurityLevel
		want  float64
	}{
		{StrictlyPure, 0.0},
		{LocallyPure, 0.3},
		{IOIsolated, 0.6},
		{IOMixed, 0.9},
		{Impure, 1.0},
	}
	for _, tt := range tests {
		if got := tt.level.Multiplier(); got != tt.want {
			t.Errorf("%s.Multiplier() = %f, want %f", tt.level, got, tt.want)
		}
	}
}
