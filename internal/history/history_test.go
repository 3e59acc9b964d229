package history

import "testing"

func TestLoadNonRepository(t *testing.T) {
	sig := Load(t.TempDir(), 0)
	if sig.Available {
		t.Error("a plain directory should produce an unavailable signal")
	}
	if got := sig.ContextualRiskMultiplier("any.go"); got != 1.0 {
		t.Errorf("unavailable signal multiplier = %f, want the 1.0 floor", got)
	}
	if sig.TopChurned(5) != nil {
		t.Error("unavailable signal should have no churn list")
	}
}

func TestContextualRiskMultiplierBounds(t *testing.T) {
	sig := Signal{
		Available: true,
		Churn: map[string]FileChurn{
			"hot.go":  {Path: "hot.go", CommitCount: 40, AuthorCount: 5},
			"warm.go": {Path: "warm.go", CommitCount: 20, AuthorCount: 2},
			"cold.go": {Path: "cold.go", CommitCount: 4, AuthorCount: 1},
		},
		maxChurn: 40,
	}

	hot := sig.ContextualRiskMultiplier("hot.go")
	if hot != 1.3 {
		t.Errorf("busiest file multiplier = %f, want the 1.3 ceiling", hot)
	}
	warm := sig.ContextualRiskMultiplier("warm.go")
	if warm <= 1.0 || warm >= hot {
		t.Errorf("mid-churn multiplier = %f, want strictly between 1.0 and %f", warm, hot)
	}
	if got := sig.ContextualRiskMultiplier("unknown.go"); got != 1.0 {
		t.Errorf("unknown file multiplier = %f, want the floor", got)
	}
}

func TestTopChurnedOrderingAndBound(t *testing.T) {
	sig := Signal{
		Available: true,
		Churn: map[string]FileChurn{
			"b.go": {Path: "b.go", CommitCount: 10},
			"a.go": {Path: "a.go", CommitCount: 10},
			"c.go": {Path: "c.go", CommitCount: 30},
		},
		maxChurn: 30,
	}

	top := sig.TopChurned(2)
	if len(top) != 2 {
		t.Fatalf("TopChurned(2) returned %d entries", len(top))
	}
	if top[0].Path != "c.go" {
		t.Errorf("highest churn first: got %s", top[0].Path)
	}
	// Ties break by path for determinism.
	if top[1].Path != "a.go" {
		t.Errorf("tie-break = %s, want a.go", top[1].Path)
	}
}

func TestEvidenceFor(t *testing.T) {
	sig := Signal{
		Available: true,
		Churn:     map[string]FileChurn{"hot.go": {Path: "hot.go", CommitCount: 7}},
		maxChurn:  7,
	}
	if got := EvidenceFor(sig, "hot.go"); got == "" {
		t.Error("churned file should yield evidence text")
	}
	if got := EvidenceFor(sig, "cold.go"); got != "" {
		t.Errorf("unchurned file evidence = %q, want empty", got)
	}
	if got := EvidenceFor(Signal{}, "hot.go"); got != "" {
		t.Errorf("unavailable signal evidence = %q, want empty", got)
	}
}
