package workflow

import "testing"

func TestAdvanceFullSequence(t *testing.T) {
	m := NewMachine()
	sequence := []Phase{
		CallGraphBuilding, CallGraphComplete, CoverageLoading, CoverageComplete,
		PurityAnalyzing, PurityComplete, ContextLoading, ContextComplete,
		ScoringInProgress, ScoringComplete, FilteringInProgress, Complete,
	}
	for _, next := range sequence {
		if err := m.Advance(next); err != nil {
			t.Fatalf("Advance(%s) from %s: %v", next, m.Current(), err)
		}
	}
	if !m.Done() {
		t.Error("machine should be Done after reaching Complete")
	}
}

func TestAdvanceRejectsSkips(t *testing.T) {
	m := NewMachine()
	if err := m.Advance(ScoringInProgress); err == nil {
		t.Error("skipping phases should be rejected")
	}
	if m.Current() != Initialized {
		t.Errorf("failed transition moved the machine to %s", m.Current())
	}
}

func TestAdvanceRejectsRollback(t *testing.T) {
	m := NewMachine()
	if err := m.Advance(CallGraphBuilding); err != nil {
		t.Fatal(err)
	}
	if err := m.Advance(Initialized); err == nil {
		t.Error("rollback should be rejected")
	}
}

func TestAdvancePastCompleteRejected(t *testing.T) {
	m := &Machine{current: Complete}
	if err := m.Advance(Complete); err == nil {
		t.Error("Complete has no successor")
	}
}

func TestProgressPercentMonotone(t *testing.T) {
	prev := -1
	for p := Initialized; p <= Complete; p++ {
		pct := p.ProgressPercent()
		if pct < prev {
			t.Errorf("%s progress %d%% below predecessor's %d%%", p, pct, prev)
		}
		prev = pct
	}
	if Initialized.ProgressPercent() != 0 {
		t.Errorf("Initialized = %d%%, want 0", Initialized.ProgressPercent())
	}
	if Complete.ProgressPercent() != 100 {
		t.Errorf("Complete = %d%%, want 100", Complete.ProgressPercent())
	}
}

func TestTUIStageIndexCoversAllPhases(t *testing.T) {
	for p := Initialized; p <= Complete; p++ {
		stage := p.TUIStageIndex()
		if stage < StageDiscovery || stage > StageScoring {
			t.Errorf("%s maps to out-of-range stage %d", p, stage)
		}
	}
	if CallGraphBuilding.TUIStageIndex() != StageCallGraph {
		t.Error("CallGraphBuilding should map to the call-graph stage")
	}
	if Complete.TUIStageIndex() != StageScoring {
		t.Error("Complete should map to the final stage")
	}
}

func TestPhaseStrings(t *testing.T) {
	for p := Initialized; p <= Complete; p++ {
		if p.String() == "Unknown" || p.String() == "" {
			t.Errorf("phase %d has no name", p)
		}
	}
}
