package scoring

import (
	"strings"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// debugNameHints mark a function as Debug-role regardless of other signals
// (logging/tracing/debug-print helpers are never the thing worth refactoring).
var debugNameHints = []string{"debug", "trace", "dump", "println"}

// ClassifyRole implements the function-role classification the scoring
// pipeline's stage 8 and stage 1 trivial short-circuit consume.
// EntryPoint is read directly off the call-graph node; the remaining roles
// are heuristic: an orchestrator has low cognitive complexity relative to
// cyclomatic and a body that is predominantly dispatch to callees. See
// DESIGN.md for the full rationale.
func ClassifyRole(id model.FunctionId, info *callgraph.NodeInfo, cognitive int, calleeCount int, purityLevel model.PurityLevel) model.FunctionRole {
	if info != nil && info.IsEntryPoint {
		return model.RoleEntryPoint
	}

	lowerName := strings.ToLower(bareName(id.Name))
	for _, hint := range debugNameHints {
		if strings.Contains(lowerName, hint) {
			return model.RoleDebug
		}
	}

	cyclo := 1
	if info != nil {
		cyclo = info.Cyclomatic
	}

	// Orchestrator: cognitive complexity low relative to cyclomatic, and a
	// meaningful fan-out to other functions; the body is mostly dispatch.
	if calleeCount >= 3 && cyclo > 0 && float64(cognitive) <= float64(cyclo)*0.6 {
		return model.RoleOrchestrator
	}

	// IOWrapper: impure/IO-mixed, thin (few own branches, little fan-out),
	// a direct pass-through to an I/O operation.
	if (purityLevel == model.Impure || purityLevel == model.IOMixed) && calleeCount <= 1 && cyclo <= 3 {
		return model.RoleIOWrapper
	}

	// PatternMatch: high branching with no callees, a dispatch table or
	// switch/case-dominated body rather than delegation to other functions.
	if calleeCount == 0 && cyclo >= 4 {
		return model.RolePatternMatch
	}

	if purityLevel == model.StrictlyPure || purityLevel == model.LocallyPure {
		return model.RolePureLogic
	}

	return model.RoleUnknown
}

func bareName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// CoverageWeightFor returns the role_coverage_weights entry for role.
func CoverageWeightFor(weights RoleCoverageWeights, role model.FunctionRole) float64 {
	switch role {
	case model.RoleEntryPoint:
		return weights.EntryPoint
	case model.RoleOrchestrator:
		return weights.Orchestrator
	case model.RolePureLogic:
		return weights.PureLogic
	case model.RoleIOWrapper:
		return weights.IOWrapper
	case model.RolePatternMatch:
		return weights.PatternMatch
	default:
		return weights.Unknown
	}
}
