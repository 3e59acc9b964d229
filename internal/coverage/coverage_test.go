package coverage

import (
	"strings"
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// mapSource is a test Source backed by a plain map.
type mapSource map[string]float64

func (m mapSource) FunctionCoverage(file, name string) (float64, bool) {
	v, ok := m[file+":"+name]
	return v, ok
}

func (m mapSource) FunctionCoverageWithBounds(file, name string, _, _ int) (float64, bool) {
	return m.FunctionCoverage(file, name)
}

func TestPropagateTakesMaxOfDirectAndBlend(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 1}
	callee := model.FunctionId{File: "a.go", Name: "callee", Line: 10}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(callee, false, false, 1, 5)
	g.AddCall(caller, callee, model.CallDirect)

	src := mapSource{"a.go:caller": 0.2, "a.go:callee": 0.9}
	covs := NewPropagator(g, src).PropagateAll()

	got := covs[caller.String()]
	if got.Direct != 0.2 {
		t.Errorf("direct = %f, want 0.2", got.Direct)
	}
	if got.Transitive != 0.9 {
		t.Errorf("transitive = %f, want 0.9 (callee blend beats direct)", got.Transitive)
	}
	if len(got.PropagatedFrom) != 1 || got.PropagatedFrom[0] != callee {
		t.Errorf("propagated_from = %v, want [callee]", got.PropagatedFrom)
	}
}

func TestPropagateDirectWinsWhenHigher(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 1}
	callee := model.FunctionId{File: "a.go", Name: "callee", Line: 10}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(callee, false, false, 1, 5)
	g.AddCall(caller, callee, model.CallDirect)

	src := mapSource{"a.go:caller": 0.95, "a.go:callee": 0.1}
	covs := NewPropagator(g, src).PropagateAll()

	if got := covs[caller.String()].Transitive; got != 0.95 {
		t.Errorf("transitive = %f, want direct 0.95", got)
	}
}

func TestPropagateEntryPointAttenuation(t *testing.T) {
	g := callgraph.New()
	entry := model.FunctionId{File: "a.go", Name: "main", Line: 1}
	callee := model.FunctionId{File: "a.go", Name: "callee", Line: 10}
	g.AddFunction(entry, true, false, 1, 5)
	g.AddFunction(callee, false, false, 1, 5)
	g.AddCall(entry, callee, model.CallDirect)

	src := mapSource{"a.go:callee": 1.0}
	covs := NewPropagator(g, src).PropagateAll()

	got := covs[entry.String()].Transitive
	if got != 0.5 {
		t.Errorf("entry point transitive = %f, want 0.5 (attenuated callee blend)", got)
	}
}

func TestPropagateBreaksCycles(t *testing.T) {
	g := callgraph.New()
	a := model.FunctionId{File: "a.go", Name: "a", Line: 1}
	b := model.FunctionId{File: "a.go", Name: "b", Line: 10}
	g.AddFunction(a, false, false, 1, 5)
	g.AddFunction(b, false, false, 1, 5)
	g.AddCall(a, b, model.CallDirect)
	g.AddCall(b, a, model.CallDirect)

	src := mapSource{"a.go:a": 0.4, "a.go:b": 0.6}
	covs := NewPropagator(g, src).PropagateAll()

	// Terminates, and each node's transitive is at least its direct.
	if covs[a.String()].Transitive < 0.4 {
		t.Errorf("a transitive %f below its direct coverage", covs[a.String()].Transitive)
	}
	if covs[b.String()].Transitive < 0.6 {
		t.Errorf("b transitive %f below its direct coverage", covs[b.String()].Transitive)
	}
}

func TestOverallCoverage(t *testing.T) {
	covs := map[string]model.TransitiveCoverage{
		"a": {Direct: 0.5, HasDirect: true},
		"b": {Direct: 1.0, HasDirect: true},
		"c": {Transitive: 0.9}, // no direct data: excluded
	}
	got, ok := OverallCoverage(covs)
	if !ok || got != 0.75 {
		t.Errorf("OverallCoverage = (%f, %v), want (0.75, true)", got, ok)
	}

	if _, ok := OverallCoverage(map[string]model.TransitiveCoverage{}); ok {
		t.Error("no direct data should report absent overall coverage")
	}
}

const sampleLCOV = `SF:src/app.py
FN:3,main
FN:10,helper
FNDA:5,main
FNDA:0,helper
DA:3,5
DA:4,5
DA:10,0
DA:11,0
end_of_record
`

func TestParseLCOV(t *testing.T) {
	src, err := ParseLCOV(strings.NewReader(sampleLCOV))
	if err != nil {
		t.Fatalf("ParseLCOV: %v", err)
	}

	cov, ok := src.FunctionCoverage("src/app.py", "main")
	if !ok || cov != 1.0 {
		t.Errorf("main coverage = (%f, %v), want (1.0, true)", cov, ok)
	}
	cov, ok = src.FunctionCoverage("src/app.py", "helper")
	if !ok || cov != 0.0 {
		t.Errorf("helper coverage = (%f, %v), want (0.0, true)", cov, ok)
	}

	// Bounded query: lines 3-4 fully hit.
	cov, ok = src.FunctionCoverageWithBounds("src/app.py", "main", 3, 4)
	if !ok || cov != 1.0 {
		t.Errorf("bounded main coverage = (%f, %v), want (1.0, true)", cov, ok)
	}
	cov, ok = src.FunctionCoverageWithBounds("src/app.py", "helper", 10, 11)
	if !ok || cov != 0.0 {
		t.Errorf("bounded helper coverage = (%f, %v), want (0.0, true)", cov, ok)
	}

	if _, ok := src.FunctionCoverage("src/app.py", "missing"); ok {
		t.Error("unknown function should report absent")
	}
}
