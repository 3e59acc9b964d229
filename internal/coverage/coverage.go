// Package coverage implements transitive-coverage propagation:
// direct per-line coverage from an external LCOV source is
// joined onto the call graph and a function's transitive coverage becomes
// max(direct, blend(callees' transitive coverage)), computed via a
// reverse-topological walk with memoization. Cycles (recursion) are broken
// by fixing a node's value to its direct coverage on first (re-)visit
// rather than recursing forever.
package coverage

import (
	"sort"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// entryPointAttenuation discounts a callee's contribution to an entry
// point's blended coverage, reflecting that entry points are expected to
// gain coverage through integration tests rather than directly.
const entryPointAttenuation = 0.5

// Source is the external line-coverage collaborator: the core
// only ever queries these two methods, never parses a coverage file itself.
type Source interface {
	FunctionCoverage(file, name string) (float64, bool)
	FunctionCoverageWithBounds(file, name string, startLine, endLine int) (float64, bool)
}

// NoCoverage is a Source with no data, used when no coverage file was
// supplied; every query reports "absent".
type NoCoverage struct{}

func (NoCoverage) FunctionCoverage(string, string) (float64, bool)                     { return 0, false }
func (NoCoverage) FunctionCoverageWithBounds(string, string, int, int) (float64, bool) { return 0, false }

// Propagator runs the memoized reverse-topological walk.
type Propagator struct {
	graph  *callgraph.Graph
	source Source
	// memo caches the fully-resolved TransitiveCoverage per function,
	// keyed by FunctionId.String().
	memo map[string]model.TransitiveCoverage
	// visiting marks nodes currently on the DFS stack, used to detect and
	// break cycles by falling back to direct coverage.
	visiting map[string]bool
}

// NewPropagator wires a completed, resolved call graph to a coverage
// source.
func NewPropagator(graph *callgraph.Graph, source Source) *Propagator {
	if source == nil {
		source = NoCoverage{}
	}
	return &Propagator{
		graph:    graph,
		source:   source,
		memo:     make(map[string]model.TransitiveCoverage),
		visiting: make(map[string]bool),
	}
}

// PropagateAll computes transitive coverage for every function in the
// graph, returning a map keyed by FunctionId.String() for the scoring and
// debt-classification stages to consult.
func (p *Propagator) PropagateAll() map[string]model.TransitiveCoverage {
	for _, id := range p.graph.FindAllFunctions() {
		p.resolve(id)
	}
	return p.memo
}

func (p *Propagator) resolve(id model.FunctionId) model.TransitiveCoverage {
	key := id.String()
	if cov, ok := p.memo[key]; ok {
		return cov
	}
	if p.visiting[key] {
		// Cycle: fix this node's value at its direct coverage for this
		// traversal; the final memoized value is computed normally once
		// the recursion unwinds back to the first visit.
		return p.directOnly(id)
	}

	p.visiting[key] = true
	defer delete(p.visiting, key)

	direct, hasDirect := p.directCoverage(id)

	info := p.graph.GetFunctionInfo(id)
	isEntry := info != nil && info.IsEntryPoint

	callees := p.graph.GetCallees(id)
	var weighted float64
	var count int
	var uncovered []int
	for _, callee := range callees {
		calleeCov := p.resolve(callee)
		weighted += calleeCov.Transitive
		count++
		uncovered = append(uncovered, calleeCov.UncoveredLines...)
	}

	var blended float64
	if count > 0 {
		blended = weighted / float64(count)
		if isEntry {
			blended *= entryPointAttenuation
		}
	}

	transitive := blended
	if hasDirect && direct > transitive {
		transitive = direct
	}
	if !hasDirect && count == 0 {
		transitive = 0
	}

	var propagatedFrom []model.FunctionId
	if !hasDirect || transitive > direct {
		propagatedFrom = callees
	}

	cov := model.TransitiveCoverage{
		Direct:         direct,
		HasDirect:      hasDirect,
		Transitive:     transitive,
		PropagatedFrom: sortedIDs(propagatedFrom),
		UncoveredLines: uncovered,
	}
	p.memo[key] = cov
	return cov
}

func (p *Propagator) directOnly(id model.FunctionId) model.TransitiveCoverage {
	direct, hasDirect := p.directCoverage(id)
	return model.TransitiveCoverage{Direct: direct, HasDirect: hasDirect, Transitive: direct}
}

func (p *Propagator) directCoverage(id model.FunctionId) (float64, bool) {
	info := p.graph.GetFunctionInfo(id)
	if info == nil {
		return p.source.FunctionCoverage(id.File, id.Name)
	}
	startLine := id.Line
	endLine := id.Line + info.Length - 1
	if cov, ok := p.source.FunctionCoverageWithBounds(id.File, id.Name, startLine, endLine); ok {
		return cov, true
	}
	return p.source.FunctionCoverage(id.File, id.Name)
}

func sortedIDs(ids []model.FunctionId) []model.FunctionId {
	out := make([]model.FunctionId, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// OverallCoverage computes the aggregate coverage figure surfaced in
// AnalysisResult.OverallCoverage: the mean direct coverage across
// every function that has any direct coverage data at all.
func OverallCoverage(covs map[string]model.TransitiveCoverage) (float64, bool) {
	var sum float64
	var count int
	for _, c := range covs {
		if !c.HasDirect {
			continue
		}
		sum += c.Direct
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
