package purity

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func TestClassifyLocal(t *testing.T) {
	tests := []struct {
		name string
		sig  LocalSignals
		want model.PurityLevel
	}{
		{"no signals", LocalSignals{}, model.StrictlyPure},
		{"mutation only", LocalSignals{HasMutation: true}, model.LocallyPure},
		{"side effect only", LocalSignals{HasSideEffect: true}, model.LocallyPure},
		{"io only", LocalSignals{HasIO: true}, model.IOMixed},
		{"io and mutation", LocalSignals{HasIO: true, HasMutation: true}, model.Impure},
		{"unsafe and mutation", LocalSignals{HasUnsafe: true, HasMutation: true}, model.Impure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLocal(tt.sig); got != tt.want {
				t.Errorf("ClassifyLocal(%+v) = %s, want %s", tt.sig, got, tt.want)
			}
		})
	}
}

func TestPropagateDowngradesToWorstCallee(t *testing.T) {
	g := callgraph.New()
	pure := model.FunctionId{File: "a.go", Name: "pure", Line: 1}
	impure := model.FunctionId{File: "a.go", Name: "impure", Line: 10}
	g.AddFunction(pure, false, false, 1, 3)
	g.AddFunction(impure, false, false, 1, 3)
	g.AddCall(pure, impure, model.CallDirect)

	signals := map[string]LocalSignals{
		pure.String():   {},
		impure.String(): {HasIO: true, HasMutation: true},
	}
	levels := NewAnalyzer(g).Propagate(signals)

	if levels[pure.String()] != model.Impure {
		t.Errorf("caller of impure function = %s, want impure", levels[pure.String()])
	}
	if levels[impure.String()] != model.Impure {
		t.Errorf("impure function = %s, want impure", levels[impure.String()])
	}
}

func TestPropagateTransitiveChain(t *testing.T) {
	g := callgraph.New()
	a := model.FunctionId{File: "a.go", Name: "a", Line: 1}
	b := model.FunctionId{File: "a.go", Name: "b", Line: 10}
	c := model.FunctionId{File: "a.go", Name: "c", Line: 20}
	g.AddFunction(a, false, false, 1, 3)
	g.AddFunction(b, false, false, 1, 3)
	g.AddFunction(c, false, false, 1, 3)
	g.AddCall(a, b, model.CallDirect)
	g.AddCall(b, c, model.CallDirect)

	signals := map[string]LocalSignals{
		a.String(): {},
		b.String(): {},
		c.String(): {HasIO: true},
	}
	levels := NewAnalyzer(g).Propagate(signals)

	if levels[a.String()] != model.IOMixed {
		t.Errorf("a = %s, want io_mixed (inherited through b)", levels[a.String()])
	}
}

func TestPropagateTerminatesOnCycle(t *testing.T) {
	g := callgraph.New()
	a := model.FunctionId{File: "a.go", Name: "a", Line: 1}
	b := model.FunctionId{File: "a.go", Name: "b", Line: 10}
	g.AddFunction(a, false, false, 1, 3)
	g.AddFunction(b, false, false, 1, 3)
	g.AddCall(a, b, model.CallDirect)
	g.AddCall(b, a, model.CallDirect)

	signals := map[string]LocalSignals{
		a.String(): {HasMutation: true},
		b.String(): {},
	}
	levels := NewAnalyzer(g).Propagate(signals)

	if levels[b.String()] != model.LocallyPure {
		t.Errorf("b in cycle = %s, want locally_pure (a's classification)", levels[b.String()])
	}
}

func TestPropagateWithCacheSeedsFromCachedLevels(t *testing.T) {
	g := callgraph.New()
	cachedFn := model.FunctionId{File: "a.go", Name: "cachedImpure", Line: 1}
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 10}
	g.AddFunction(cachedFn, false, false, 1, 3)
	g.AddFunction(caller, false, false, 1, 3)
	g.AddCall(caller, cachedFn, model.CallDirect)

	// No local signals at all for cachedFn: without the cache it would
	// classify strictly_pure, masking the caller's true level.
	signals := map[string]LocalSignals{
		cachedFn.String(): {},
		caller.String():   {},
	}
	cached := map[string]model.PurityLevel{
		cachedFn.String(): model.Impure,
	}
	levels := NewAnalyzer(g).PropagateWithCache(signals, cached)

	if levels[cachedFn.String()] != model.Impure {
		t.Errorf("cached function = %s, want impure (seeded from cache)", levels[cachedFn.String()])
	}
	if levels[caller.String()] != model.Impure {
		t.Errorf("caller of cached-impure function = %s, want impure", levels[caller.String()])
	}
}

func TestPropagateUnknownFunctionsDefaultPure(t *testing.T) {
	g := callgraph.New()
	closure := model.FunctionId{File: "a.py", Name: "<closure@5>", Line: 5}
	g.AddFunction(closure, false, false, 1, 1)

	levels := NewAnalyzer(g).Propagate(map[string]LocalSignals{})
	if levels[closure.String()] != model.StrictlyPure {
		t.Errorf("signal-less closure = %s, want strictly_pure", levels[closure.String()])
	}
}
