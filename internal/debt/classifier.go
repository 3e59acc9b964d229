package debt

import (
	"strings"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/metrics"
	"github.com/ingoeichhorst/debtgraph/internal/observer"
	"github.com/ingoeichhorst/debtgraph/internal/scoring"
	"github.com/ingoeichhorst/debtgraph/internal/traits"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// minTestedCoverage is the transitive-coverage floor below which a
// sufficiently complex function is flagged DebtTestingGap.
const minTestedCoverage = 0.8

// Classifier implements the primary-debt decision tree: given a function's
// position in the call graph plus its complexity, coverage, and purity
// evidence, it picks exactly one DebtType.
type Classifier struct {
	graph     *callgraph.Graph
	reach     *Reachability
	metrics   map[string]metrics.FuncMetrics
	coverage  map[string]model.TransitiveCoverage
	traits    *traits.Registry
	closures  *closures.Tracker
	observers *observer.Registry
	godObjs   *GodObjectIndex
	fields    map[string]int
	cfg       scoring.Config
}

// NewClassifier wires every collaborator the decision tree consults. Any
// of traits/closures/observers may be nil (language frontends that do not
// produce that signal simply contribute nothing). fieldCounts maps a bare
// type/class name to its field count, for GodObjectEvidence.Fields; a nil
// map leaves that evidence field at zero.
func NewClassifier(
	graph *callgraph.Graph,
	metricsByFn map[string]metrics.FuncMetrics,
	coverageByFn map[string]model.TransitiveCoverage,
	traitReg *traits.Registry,
	closureTracker *closures.Tracker,
	observerReg *observer.Registry,
	fieldCounts map[string]int,
	cfg scoring.Config,
) *Classifier {
	return &Classifier{
		graph:     graph,
		reach:     ComputeReachability(graph),
		metrics:   metricsByFn,
		coverage:  coverageByFn,
		traits:    traitReg,
		closures:  closureTracker,
		observers: observerReg,
		godObjs:   BuildGodObjectIndex(graph),
		fields:    fieldCounts,
		cfg:       cfg,
	}
}

// Classify runs the seven-step decision tree for a single
// function and returns its primary DebtType.
func (c *Classifier) Classify(id model.FunctionId) model.DebtType {
	info := c.graph.GetFunctionInfo(id)
	m := c.metrics[id.String()]
	cov := c.coverage[id.String()]

	// Step 1: dead code. Entry points, trait-dispatched methods, and
	// anything reachable through a closure/function-pointer/HOF are never
	// reported dead, regardless of graph position.
	if dt, ok := c.classifyDeadCode(id, info, m); ok {
		return dt
	}

	// Step 2: testing gap. Sufficiently complex, insufficiently covered.
	if dt, ok := c.classifyTestingGap(id, info, m, cov); ok {
		return dt
	}

	// Step 3: complexity hotspot (test and non-test variants).
	if dt, ok := c.classifyComplexityHotspot(id, info, m); ok {
		return dt
	}

	// Step 4: god object. Receiver type crosses method/responsibility
	// thresholds.
	if dt, ok := c.classifyGodObject(id); ok {
		return dt
	}

	// Step 5: error swallowing. The classifier only has graph/metric
	// evidence, and neither it nor the extractors recognize error-swallowing
	// patterns, so this step never returns DebtErrorSwallowing.

	// Step 6: known anti-pattern subset. Only NestedLoops has a concrete
	// graph/metric signal (nesting depth); the remaining anti-patterns
	// (duplication, feature envy, primitive obsession, magic values, string
	// concatenation, suboptimal data structures, resource leaks, async
	// misuse, collection inefficiency) require source-text or cross-function
	// AST comparison this package does not perform; see DESIGN.md for the
	// explicit scope decision.
	if dt, ok := c.classifyNestedLoops(m); ok {
		return dt
	}

	// Step 7: risk catch-all. Every function reaches a verdict.
	return model.DebtType{Kind: model.DebtRisk, RiskScore: c.riskScore(info, m, cov)}
}

func (c *Classifier) classifyDeadCode(id model.FunctionId, info *callgraph.NodeInfo, m metrics.FuncMetrics) (model.DebtType, bool) {
	if info == nil {
		return model.DebtType{}, false
	}
	if info.IsEntryPoint || info.IsTest || info.TraitDispatched {
		return model.DebtType{}, false
	}
	if c.reach.Reachable(id) {
		return model.DebtType{}, false
	}
	if m.Visibility == model.VisPublic {
		// Public API surface is assumed reachable from outside the
		// analyzed module; do not flag it dead on graph evidence alone.
		return model.DebtType{}, false
	}
	if c.closures != nil && c.closures.MightBeCalledThroughPointer(id) {
		return model.DebtType{}, false
	}
	if c.isObserverImplementation(id) {
		return model.DebtType{}, false
	}
	if traits.IsWellKnownPattern(bareMethodName(id.Name)) {
		return model.DebtType{}, false
	}

	return model.DebtType{
		Kind: model.DebtDeadCode,
		DeadCode: model.DeadCodeEvidence{
			Visibility: m.Visibility,
			Cyclomatic: info.Cyclomatic,
			Cognitive:  m.Cognitive,
			UsageHints: c.usageHints(id, m),
		},
	}, true
}

// usageHints attaches the visibility-specific removal suggestion and
// test-file context markers a reviewer wants next to a dead-code verdict.
func (c *Classifier) usageHints(id model.FunctionId, m metrics.FuncMetrics) []string {
	var hints []string
	switch m.Visibility {
	case model.VisPrivate:
		hints = append(hints, "Private function - safe to remove if no local callers")
	case model.VisPublic:
		hints = append(hints, "Public function - verify no external callers before removing")
	default:
		hints = append(hints, "Package-visible function - check sibling files before removing")
	}
	if len(c.graph.GetCallers(id)) == 0 {
		hints = append(hints, "no direct callers")
	}
	if strings.Contains(strings.ToLower(id.File), "test") {
		hints = append(hints, "defined in a test file")
	}
	return hints
}

func (c *Classifier) isObserverImplementation(id model.FunctionId) bool {
	if c.observers == nil {
		return false
	}
	typeName, method, ok := splitReceiver(id.Name)
	if !ok {
		return false
	}
	for _, implID := range c.observers.Implementations("", method) {
		if implID == id {
			return true
		}
	}
	_ = typeName
	return false
}

// testingGapMinCyclomatic and testingGapMinCognitive are the spec §4.10
// rule 2 literal thresholds, distinct from rule 3's configurable
// MaxCyclomatic/MaxCognitive.
const (
	testingGapMinCyclomatic = 3
	testingGapMinCognitive  = 5
)

func (c *Classifier) classifyTestingGap(id model.FunctionId, info *callgraph.NodeInfo, m metrics.FuncMetrics, cov model.TransitiveCoverage) (model.DebtType, bool) {
	if info == nil || info.IsTest {
		return model.DebtType{}, false
	}
	complexEnough := info.Cyclomatic >= testingGapMinCyclomatic || m.Cognitive >= testingGapMinCognitive
	if !complexEnough {
		return model.DebtType{}, false
	}
	if cov.Transitive >= minTestedCoverage {
		return model.DebtType{}, false
	}
	return model.DebtType{
		Kind: model.DebtTestingGap,
		TestingGap: model.TestingGapEvidence{
			Coverage:   cov.Transitive,
			Cyclomatic: info.Cyclomatic,
			Cognitive:  m.Cognitive,
		},
	}, true
}

func (c *Classifier) classifyComplexityHotspot(id model.FunctionId, info *callgraph.NodeInfo, m metrics.FuncMetrics) (model.DebtType, bool) {
	if info == nil {
		return model.DebtType{}, false
	}
	maxCyc := c.cfg.ComplexityWeights.MaxCyclomatic
	maxCog := c.cfg.ComplexityWeights.MaxCognitive
	if info.IsTest {
		mult := c.cfg.TestComplexityMultiplier
		if mult <= 0 {
			mult = 1
		}
		maxCyc = int(float64(maxCyc) * mult)
		maxCog = int(float64(maxCog) * mult)
	}
	if info.Cyclomatic <= maxCyc && m.Cognitive <= maxCog {
		return model.DebtType{}, false
	}
	kind := model.DebtComplexityHotspot
	if info.IsTest {
		kind = model.DebtTestComplexityHotspot
	}
	return model.DebtType{
		Kind: kind,
		ComplexityHotspot: model.ComplexityHotspotEvidence{
			Cyclomatic: info.Cyclomatic,
			Cognitive:  m.Cognitive,
		},
	}, true
}

func (c *Classifier) classifyGodObject(id model.FunctionId) (model.DebtType, bool) {
	typeName, _, ok := splitReceiver(id.Name)
	if !ok {
		return model.DebtType{}, false
	}
	if !c.godObjs.IsGodObject(typeName) {
		return model.DebtType{}, false
	}
	p := c.godObjs.Profile(typeName)
	score := float64(p.Methods)/float64(godObjectMethodThreshold) + float64(p.Responsibilities)/float64(godObjectResponsibilityThreshold)
	return model.DebtType{
		Kind: model.DebtGodObject,
		GodObject: model.GodObjectEvidence{
			Methods:          p.Methods,
			Fields:           c.fields[typeName],
			Responsibilities: p.Responsibilities,
			Score:            score,
			Lines:            p.Lines,
		},
	}, true
}

func (c *Classifier) classifyNestedLoops(m metrics.FuncMetrics) (model.DebtType, bool) {
	const nestedLoopsDepthThreshold = 3
	if m.Nesting < nestedLoopsDepthThreshold {
		return model.DebtType{}, false
	}
	return model.DebtType{
		Kind: model.DebtNestedLoops,
		NestedLoops: model.NestedLoopsEvidence{
			Depth:              m.Nesting,
			ComplexityEstimate: m.Cognitive,
		},
	}, true
}

func (c *Classifier) riskScore(info *callgraph.NodeInfo, m metrics.FuncMetrics, cov model.TransitiveCoverage) float64 {
	if info == nil {
		return 0
	}
	score := float64(info.Cyclomatic) + float64(m.Cognitive)*0.5
	score *= 1 - cov.Transitive*0.5
	return score
}

// bareMethodName strips any "Type." receiver qualifier from a function's
// qualified name.
func bareMethodName(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name
	}
	return name[idx+1:]
}
