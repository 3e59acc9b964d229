package scoring

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func coveredInput() Input {
	return Input{
		Cyclomatic:        2,
		Cognitive:         1,
		Length:            5,
		Role:              model.RoleIOWrapper,
		Purity:            model.IOMixed,
		Coverage:          model.TransitiveCoverage{Direct: 1, HasDirect: true, Transitive: 1},
		CoverageAvailable: true,
	}
}

func TestTrivialShortCircuit(t *testing.T) {
	got := Score(coveredInput(), DefaultConfig())
	if got.FinalScore != 0 {
		t.Fatalf("trivial covered function scored %f, want 0", got.FinalScore)
	}
	if got.HasPurityFactor {
		t.Error("short-circuited score should record no stage output")
	}
}

func TestTrivialShortCircuitNeedsCoverage(t *testing.T) {
	in := coveredInput()
	in.Coverage = model.TransitiveCoverage{}
	in.CoverageAvailable = false
	got := Score(in, DefaultConfig())
	if !got.HasPurityFactor {
		t.Error("uncovered trivial function should still run the pipeline")
	}
}

func TestFinalScoreBounds(t *testing.T) {
	inputs := []Input{
		{Cyclomatic: 50, Cognitive: 80, Nesting: 30, Role: model.RoleEntryPoint, Purity: model.Impure, UpstreamCount: 100, DebtKind: model.DebtRisk, DebtRiskScore: 500, DebtAdjustment: 50, ContextualRiskMultiplier: 1.3},
		{Cyclomatic: 1, Cognitive: 0, Role: model.RoleUnknown, Purity: model.StrictlyPure},
		{Cyclomatic: 12, Cognitive: 18, Role: model.RoleOrchestrator, Purity: model.IOMixed, UpstreamCount: 4},
	}
	for i, in := range inputs {
		got := Score(in, DefaultConfig())
		if got.FinalScore < 0 || got.FinalScore > 100 {
			t.Errorf("input %d: final score %f out of [0,100]", i, got.FinalScore)
		}
	}
}

func TestTestFunctionCoverageFactorZero(t *testing.T) {
	in := Input{
		IsTest:            true,
		Cyclomatic:        8,
		Cognitive:         12,
		Role:              model.RoleUnknown,
		Purity:            model.Impure,
		Coverage:          model.TransitiveCoverage{Direct: 0, HasDirect: true, Transitive: 0},
		CoverageAvailable: true,
	}
	got := Score(in, DefaultConfig())
	if got.CoverageFactor != 0 {
		t.Errorf("test function stored coverage_factor %f, want 0", got.CoverageFactor)
	}
	if got.HasBaseScore && got.BaseScore != 0 {
		t.Errorf("test function base score %f, want 0 (coverage multiplier 0)", got.BaseScore)
	}
}

func TestUntestedComplexOrchestrator(t *testing.T) {
	// End-to-end scenario: cyclo 12, cog 18, pure callees, 0% coverage.
	in := Input{
		Cyclomatic:                12,
		Cognitive:                 18,
		Length:                    40,
		Role:                      model.RoleOrchestrator,
		Purity:                    model.IOMixed,
		Coverage:                  model.TransitiveCoverage{Direct: 0, HasDirect: true, Transitive: 0},
		CoverageAvailable:         true,
		UpstreamCount:             3,
		DebtKind:                  model.DebtTestingGap,
		FanOutQuality:             0.5,
		AvgCalleePurityMultiplier: 0.0,
		AvgCalleeSizeQuality:      0.8,
	}
	got := Score(in, DefaultConfig())

	if got.CoverageFactor < 9.5 {
		t.Errorf("coverage_factor = %f, want ~10 for 0%% coverage", got.CoverageFactor)
	}
	if got.RoleMultiplier != 0.8 {
		t.Errorf("role_multiplier = %f, want 0.8 for orchestrator", got.RoleMultiplier)
	}
	if !got.HasPreAdjustmentScore {
		t.Error("orchestrator should record pre_adjustment_score")
	}
	if !got.HasAdjustmentApplied {
		t.Error("orchestrator should record adjustment_applied")
	}
	if got.FinalScore <= 0 {
		t.Errorf("final score %f, want > 0", got.FinalScore)
	}
}

func TestOrchestrationAdjustmentReduces(t *testing.T) {
	in := Input{
		Cyclomatic:                10,
		Cognitive:                 5,
		Role:                      model.RoleOrchestrator,
		Purity:                    model.Impure,
		UpstreamCount:             2,
		FanOutQuality:             1.0,
		AvgCalleePurityMultiplier: 0.0,
		AvgCalleeSizeQuality:      1.0,
	}
	cfg := DefaultConfig()
	withAdj := Score(in, cfg)

	cfg.OrchestrationAdjustment.Enabled = false
	withoutAdj := Score(in, cfg)

	if withAdj.FinalScore >= withoutAdj.FinalScore {
		t.Errorf("adjustment did not reduce score: %f >= %f", withAdj.FinalScore, withoutAdj.FinalScore)
	}
}

func TestEntropyDampensCognitiveOnly(t *testing.T) {
	base := Input{
		Cyclomatic:    8,
		Cognitive:     20,
		Role:          model.RoleUnknown,
		Purity:        model.Impure,
		UpstreamCount: 1,
	}
	repetitive := base
	repetitive.HasEntropy = true
	repetitive.TokenEntropy = 0.2
	repetitive.PatternRepetition = 0.8

	plain := Score(base, DefaultConfig())
	damped := Score(repetitive, DefaultConfig())
	if damped.ComplexityFactor >= plain.ComplexityFactor {
		t.Errorf("repetitive function complexity factor %f not dampened below %f", damped.ComplexityFactor, plain.ComplexityFactor)
	}
}

func TestDeterministic(t *testing.T) {
	in := Input{Cyclomatic: 9, Cognitive: 11, Nesting: 3, Role: model.RolePureLogic, Purity: model.LocallyPure, UpstreamCount: 5, DebtKind: model.DebtComplexityHotspot}
	a := Score(in, DefaultConfig())
	b := Score(in, DefaultConfig())
	if a != b {
		t.Errorf("Score is not deterministic: %+v != %+v", a, b)
	}
}

func TestStructuralQualityBreakpoints(t *testing.T) {
	tests := []struct {
		nesting, cyclo int
		want           float64
	}{
		{6, 10, 1.5},
		{5, 10, 1.3},
		{4, 10, 1.15},
		{2, 10, 1.0},
		{1, 10, 0.85},
		{0, 10, 0.7},
	}
	for _, tt := range tests {
		if got := structuralQualityMultiplier(tt.nesting, tt.cyclo); got != tt.want {
			t.Errorf("structuralQualityMultiplier(%d, %d) = %f, want %f", tt.nesting, tt.cyclo, got, tt.want)
		}
	}
}

func TestClassifyRoleOrchestrator(t *testing.T) {
	id := model.FunctionId{File: "a.go", Name: "dispatchAll", Line: 1}
	info := &callgraph.NodeInfo{ID: id, Cyclomatic: 10}
	// Orchestrator: cognitive low relative to cyclomatic with real fan-out.
	role := ClassifyRole(id, info, 2, 5, model.IOMixed)
	if role != model.RoleOrchestrator {
		t.Errorf("ClassifyRole = %s, want orchestrator", role)
	}
}

func TestClassifyRoleDebug(t *testing.T) {
	id := model.FunctionId{File: "a.go", Name: "Logger.debugState", Line: 1}
	if role := ClassifyRole(id, nil, 3, 0, model.Impure); role != model.RoleDebug {
		t.Errorf("ClassifyRole = %s, want debug", role)
	}
}
