package debt

import (
	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// Reachability is the set of functions reachable from any entry point,
// computed once per run by a forward BFS over the resolved call graph.
type Reachability struct {
	reached map[string]bool
}

// ComputeReachability BFS-walks outward from every node flagged
// IsEntryPoint (which includes every trait-dispatched method via
// MarkAsTraitDispatch) and every recognized test function, since tests are
// themselves entry points for reachability purposes.
func ComputeReachability(graph *callgraph.Graph) *Reachability {
	reached := make(map[string]bool)
	queue := make([]model.FunctionId, 0)

	for _, id := range graph.FindAllFunctions() {
		info := graph.GetFunctionInfo(id)
		if info != nil && (info.IsEntryPoint || info.IsTest) {
			key := id.String()
			if !reached[key] {
				reached[key] = true
				queue = append(queue, id)
			}
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, callee := range graph.GetCallees(cur) {
			key := callee.String()
			if reached[key] {
				continue
			}
			reached[key] = true
			queue = append(queue, callee)
		}
	}

	return &Reachability{reached: reached}
}

// Reachable reports whether id was reached from some entry point or test.
func (r *Reachability) Reachable(id model.FunctionId) bool {
	return r.reached[id.String()]
}
