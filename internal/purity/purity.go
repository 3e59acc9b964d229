// Package purity implements the purity analyzer: a local
// per-function classification from mutation/I-O/unsafe/side-effect signals
// gathered directly from syntax trees (go/ast for Go, Tree-sitter for
// Python), followed by a fixed-point propagation over the call graph that
// downgrades a function's classification to the worst classification of any
// callee.
package purity

import (
	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// maxIterations bounds the fixed-point propagation.
const maxIterations = 64

// LocalSignals are the raw per-function signals local classification is
// built from").
type LocalSignals struct {
	HasMutation  bool
	HasIO        bool
	HasUnsafe    bool
	HasSideEffect bool
}

// ClassifyLocal maps raw signals to a PurityLevel's spectrum.
func ClassifyLocal(s LocalSignals) model.PurityLevel {
	switch {
	case s.HasUnsafe || s.HasIO:
		if s.HasMutation {
			return model.Impure
		}
		return model.IOMixed
	case s.HasMutation || s.HasSideEffect:
		return model.LocallyPure
	default:
		return model.StrictlyPure
	}
}

// Analyzer runs the propagation pass over a completed, resolved call graph.
type Analyzer struct {
	graph *callgraph.Graph
}

// NewAnalyzer wires a resolved call graph.
func NewAnalyzer(graph *callgraph.Graph) *Analyzer {
	return &Analyzer{graph: graph}
}

// Propagate classifies every function locally from the supplied signals map
// (keyed by FunctionId.String()), then iterates the downgrade-to-worst-
// callee rule until no classification changes or maxIterations is reached.
// Functions absent from localSignals (e.g. synthesized closures) start as
// StrictlyPure and then, like every function, take the worst classification
// of any callee; this mirrors a closure's actual behavior being entirely
// determined by what it calls.
func (a *Analyzer) Propagate(localSignals map[string]LocalSignals) map[string]model.PurityLevel {
	return a.PropagateWithCache(localSignals, nil)
}

// PropagateWithCache behaves like Propagate, but any function present in
// cached (read-through from internal/cache's purity store, keyed by
// FunctionId.String()) seeds its starting classification from the cached
// result instead of from a fresh local classification, skipping the
// redundant recompute while still letting the fixed point run against the
// current call graph. A nil or empty cached map degenerates to Propagate.
func (a *Analyzer) PropagateWithCache(localSignals map[string]LocalSignals, cached map[string]model.PurityLevel) map[string]model.PurityLevel {
	levels := make(map[string]model.PurityLevel)
	ids := a.graph.FindAllFunctions()

	for _, id := range ids {
		key := id.String()
		if level, ok := cached[key]; ok {
			levels[key] = level
			continue
		}
		if sig, ok := localSignals[key]; ok {
			levels[key] = ClassifyLocal(sig)
		} else {
			levels[key] = model.StrictlyPure
		}
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, id := range ids {
			key := id.String()
			current := levels[key]
			worst := current
			for _, callee := range a.graph.GetCallees(id) {
				calleeLevel := levels[callee.String()]
				if calleeLevel < worst {
					worst = calleeLevel
				}
			}
			if worst != current {
				levels[key] = worst
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return levels
}
