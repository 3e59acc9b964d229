// Package validate implements the structural validator:
// dangling-edge, orphaned-node, and duplicate-node checks over a completed
// call graph, plus heuristic fan-in/fan-out and likely-dead-file warnings
// and a 100-point health score.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/katalvlaran/lvlath/dfs"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// Issue is one structural problem found in the call graph.
type Issue struct {
	Kind        string
	Description string
}

// Warning is one heuristic concern, non-fatal to the analysis.
type Warning struct {
	Kind        string
	Description string
}

const (
	highFanThreshold       = 50
	orphanFileMinFunctions = 3
)

// isEntryLikeName treats main and test functions as legitimate no-callers
// nodes even outside the call graph's own IsEntryPoint flag.
func isEntryLikeName(name string) bool {
	bare := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		bare = name[idx+1:]
	}
	return bare == "main" || strings.HasPrefix(bare, "test_") || strings.HasPrefix(bare, "Test")
}

// Report is the full validator output for one analysis run.
type Report struct {
	Issues      []Issue
	Warnings    []Warning
	HealthScore int
}

// Validate runs every structural check and heuristic warning over graph
// and computes the resulting health score.
func Validate(graph *callgraph.Graph) Report {
	r := Report{}

	r.Issues = append(r.Issues, checkDanglingEdges(graph)...)
	r.Issues = append(r.Issues, checkOrphanedNodes(graph)...)
	r.Issues = append(r.Issues, checkDuplicateNodes(graph)...)

	r.Warnings = append(r.Warnings, checkFanIn(graph)...)
	r.Warnings = append(r.Warnings, checkFanOut(graph)...)
	r.Warnings = append(r.Warnings, checkDeadFiles(graph)...)
	r.Warnings = append(r.Warnings, checkLikelyPublicStandalone(graph)...)
	r.Warnings = append(r.Warnings, checkRecursionCycles(graph)...)

	score := 100 - 10*len(r.Issues) - 2*len(r.Warnings)
	if score < 0 {
		score = 0
	}
	r.HealthScore = score
	return r
}

func checkDanglingEdges(graph *callgraph.Graph) []Issue {
	known := make(map[string]bool)
	for _, id := range graph.FindAllFunctions() {
		known[id.String()] = true
	}
	var issues []Issue
	for _, e := range graph.Edges() {
		if !known[e.Caller.String()] {
			issues = append(issues, Issue{Kind: "DanglingEdge", Description: fmt.Sprintf("edge references missing caller %s", e.Caller.String())})
		}
		if !known[e.Callee.String()] {
			issues = append(issues, Issue{Kind: "DanglingEdge", Description: fmt.Sprintf("edge references missing callee %s", e.Callee.String())})
		}
	}
	return issues
}

func checkOrphanedNodes(graph *callgraph.Graph) []Issue {
	var issues []Issue
	for _, id := range graph.FindAllFunctions() {
		if isEntryLikeName(id.Name) {
			continue
		}
		if len(graph.GetCallers(id)) == 0 && len(graph.GetCallees(id)) == 0 {
			issues = append(issues, Issue{Kind: "OrphanedNode", Description: fmt.Sprintf("%s has no edges at all", id.String())})
		}
	}
	return issues
}

func checkDuplicateNodes(graph *callgraph.Graph) []Issue {
	seen := make(map[string][]int) // "file:name" -> lines
	for _, id := range graph.FindAllFunctions() {
		key := id.File + ":" + id.Name
		seen[key] = append(seen[key], id.Line)
	}
	var keys []string
	for k, lines := range seen {
		if len(lines) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var issues []Issue
	for _, k := range keys {
		issues = append(issues, Issue{Kind: "DuplicateNode", Description: fmt.Sprintf("%s defined at multiple lines %v", k, seen[k])})
	}
	return issues
}

func checkFanIn(graph *callgraph.Graph) []Warning {
	var warnings []Warning
	for _, id := range graph.FindAllFunctions() {
		if n := len(graph.GetCallers(id)); n > highFanThreshold {
			warnings = append(warnings, Warning{Kind: "HighFanIn", Description: fmt.Sprintf("%s has %d callers", id.String(), n)})
		}
	}
	return warnings
}

func checkFanOut(graph *callgraph.Graph) []Warning {
	var warnings []Warning
	for _, id := range graph.FindAllFunctions() {
		if n := len(graph.GetCallees(id)); n > highFanThreshold {
			warnings = append(warnings, Warning{Kind: "HighFanOut", Description: fmt.Sprintf("%s calls %d functions", id.String(), n)})
		}
	}
	return warnings
}

// checkDeadFiles flags files where every function has no callers, none of
// the names look like entry points, and there are at least
// orphanFileMinFunctions functions in the file.
func checkDeadFiles(graph *callgraph.Graph) []Warning {
	byFile := make(map[string][]model.FunctionId)
	for _, id := range graph.FindAllFunctions() {
		byFile[id.File] = append(byFile[id.File], id)
	}
	var files []string
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var warnings []Warning
	for _, f := range files {
		ids := byFile[f]
		if len(ids) < orphanFileMinFunctions {
			continue
		}
		allOrphaned := true
		for _, id := range ids {
			if isEntryLikeName(id.Name) || len(graph.GetCallers(id)) > 0 {
				allOrphaned = false
				break
			}
		}
		if allOrphaned {
			warnings = append(warnings, Warning{Kind: "LikelyDeadFile", Description: fmt.Sprintf("%s: %d functions, none called and none entry-point-like", f, len(ids))})
		}
	}
	return warnings
}

func checkLikelyPublicStandalone(graph *callgraph.Graph) []Warning {
	var warnings []Warning
	for _, id := range graph.FindAllFunctions() {
		info := graph.GetFunctionInfo(id)
		if info == nil || info.IsEntryPoint || info.IsTest {
			continue
		}
		if len(graph.GetCallers(id)) > 0 {
			continue
		}
		if !strings.Contains(id.Name, ".") && isExportedLooking(id.Name) {
			warnings = append(warnings, Warning{Kind: "LikelyPublicStandalone", Description: fmt.Sprintf("%s is exported-looking with no callers", id.String())})
		}
	}
	return warnings
}

// checkRecursionCycles surfaces mutually-recursive function groups. These
// are legal (coverage propagation and the purity fixed point both handle
// cycles), but a reviewer reading the graph wants them called out since
// they bound what transitive analysis can infer.
func checkRecursionCycles(graph *callgraph.Graph) []Warning {
	hasCycles, cycles, err := dfs.DetectCycles(graph.Underlying())
	if err != nil || !hasCycles {
		return nil
	}
	var warnings []Warning
	for _, cycle := range cycles {
		if len(cycle) < 2 {
			continue // direct self-recursion is routine, not worth a warning
		}
		warnings = append(warnings, Warning{
			Kind:        "RecursionCycle",
			Description: fmt.Sprintf("mutual recursion among %d functions: %s", len(cycle), strings.Join(cycle, " -> ")),
		})
	}
	return warnings
}

func isExportedLooking(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}
