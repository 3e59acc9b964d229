// Package callgraph wraps a lvlath/core.Graph into the directed multigraph
// of functions described by the function-identity and call-type model in
// pkg/model: nodes carry function metadata, edges carry a call_type.
//
// lvlath's Edge has no metadata field and AddEdge always mints a fresh edge
// ID for parallel edges, so this package keeps a side-table mapping edge ID
// to call_type and tracks (caller, callee, call_type) triples already
// inserted to keep AddCall idempotent.
package callgraph

import (
	"sort"
	"sync"

	"github.com/katalvlaran/lvlath/core"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// NodeInfo is the metadata carried by a call-graph vertex.
type NodeInfo struct {
	ID              model.FunctionId
	IsEntryPoint    bool
	IsTest          bool
	Cyclomatic      int
	Length          int
	TraitDispatched bool
}

// Edge is a classified call-graph edge, reconstructed from the underlying
// lvlath edge plus the side-table.
type Edge struct {
	Caller   model.FunctionId
	Callee   model.FunctionId
	CallType model.CallType
}

type tripleKey struct {
	caller, callee string
	callType       model.CallType
}

// Graph is the call graph for one analysis run. Safe for concurrent
// add_function/add_call during the extraction phase; read operations
// after extraction do not require external synchronization since the
// underlying lvlath.Graph guards its own maps, but the side-table is guarded
// here explicitly since it is not part of lvlath.
type Graph struct {
	g *core.Graph

	mu       sync.Mutex
	nodes    map[string]*NodeInfo // vertex ID -> info
	edgeType map[string]model.CallType // lvlath edge ID -> call_type
	seen     map[tripleKey]string      // (caller,callee,call_type) -> lvlath edge ID, for idempotency
}

// New creates an empty call graph: directed, multi-edge (parallel edges
// with distinct call_type are legitimate, e.g. both a Direct and a
// Callback edge between the same two functions), loops allowed (direct
// recursion).
func New() *Graph {
	return &Graph{
		g:        core.NewGraph(core.WithDirected(true), core.WithMultiEdges(), core.WithLoops()),
		nodes:    make(map[string]*NodeInfo),
		edgeType: make(map[string]model.CallType),
		seen:     make(map[tripleKey]string),
	}
}

// AddFunction is idempotent on id; last-writer-wins on metadata.
func (cg *Graph) AddFunction(id model.FunctionId, isEntryPoint, isTest bool, cyclomatic, length int) {
	key := id.String()
	cg.mu.Lock()
	defer cg.mu.Unlock()

	_ = cg.g.AddVertex(key)
	info, ok := cg.nodes[key]
	if !ok {
		info = &NodeInfo{ID: id}
		cg.nodes[key] = info
	}
	info.IsEntryPoint = isEntryPoint
	info.IsTest = isTest
	info.Cyclomatic = cyclomatic
	info.Length = length
}

// AddCall inserts a (caller, callee, call_type) edge, idempotently. The
// callee may be an unresolved placeholder (FunctionId with Line == 0); the
// resolver reassigns it later by removing and re-adding with the resolved
// id.
func (cg *Graph) AddCall(caller, callee model.FunctionId, callType model.CallType) {
	callerKey, calleeKey := caller.String(), callee.String()
	triple := tripleKey{callerKey, calleeKey, callType}

	cg.mu.Lock()
	defer cg.mu.Unlock()

	if _, exists := cg.seen[triple]; exists {
		return
	}
	if _, ok := cg.nodes[callerKey]; !ok {
		cg.nodes[callerKey] = &NodeInfo{ID: caller}
	}
	if _, ok := cg.nodes[calleeKey]; !ok {
		cg.nodes[calleeKey] = &NodeInfo{ID: callee}
	}

	eid, err := cg.g.AddEdge(callerKey, calleeKey, 0)
	if err != nil {
		return
	}
	cg.edgeType[eid] = callType
	cg.seen[triple] = eid
}

// GetFunctionInfo returns a node's metadata, or nil if unknown.
func (cg *Graph) GetFunctionInfo(id model.FunctionId) *NodeInfo {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	info, ok := cg.nodes[id.String()]
	if !ok {
		return nil
	}
	cp := *info
	return &cp
}

// MarkAsTraitDispatch sets the implicit entry-point flag for an
// interface-dispatched method.
func (cg *Graph) MarkAsTraitDispatch(id model.FunctionId) {
	key := id.String()
	cg.mu.Lock()
	defer cg.mu.Unlock()
	info, ok := cg.nodes[key]
	if !ok {
		info = &NodeInfo{ID: id}
		cg.nodes[key] = info
	}
	info.TraitDispatched = true
	info.IsEntryPoint = true
}

// GetCallers returns the deduplicated set of functions that call id.
func (cg *Graph) GetCallers(id model.FunctionId) []model.FunctionId {
	return cg.endpoints(id, false)
}

// GetCallees returns the deduplicated set of functions id calls.
func (cg *Graph) GetCallees(id model.FunctionId) []model.FunctionId {
	return cg.endpoints(id, true)
}

func (cg *Graph) endpoints(id model.FunctionId, outgoing bool) []model.FunctionId {
	key := id.String()
	edges, err := cg.g.Neighbors(key)
	if err != nil {
		return nil
	}
	cg.mu.Lock()
	defer cg.mu.Unlock()

	seen := make(map[string]struct{})
	var out []model.FunctionId
	for _, e := range edges {
		var otherKey string
		if outgoing && e.From == key {
			otherKey = e.To
		} else if !outgoing && e.To == key {
			otherKey = e.From
		} else {
			continue
		}
		if _, dup := seen[otherKey]; dup {
			continue
		}
		seen[otherKey] = struct{}{}
		if info, ok := cg.nodes[otherKey]; ok {
			out = append(out, info.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Edges returns every classified edge in the graph, sorted for deterministic
// iteration.
func (cg *Graph) Edges() []Edge {
	cg.mu.Lock()
	defer cg.mu.Unlock()

	out := make([]Edge, 0, len(cg.edgeType))
	for _, e := range cg.g.Edges() {
		ct, ok := cg.edgeType[e.ID]
		if !ok {
			continue
		}
		callerInfo, okC := cg.nodes[e.From]
		calleeInfo, okD := cg.nodes[e.To]
		if !okC || !okD {
			continue
		}
		out = append(out, Edge{Caller: callerInfo.ID, Callee: calleeInfo.ID, CallType: ct})
	}
	return out
}

// Merge unions other's nodes and edges into cg. Used to combine
// per-worker local call graphs produced during parallel extraction.
func (cg *Graph) Merge(other *Graph) {
	other.mu.Lock()
	nodesCopy := make([]*NodeInfo, 0, len(other.nodes))
	for _, n := range other.nodes {
		cp := *n
		nodesCopy = append(nodesCopy, &cp)
	}
	other.mu.Unlock()
	edgesCopy := other.Edges()

	for _, n := range nodesCopy {
		cg.AddFunction(n.ID, n.IsEntryPoint, n.IsTest, n.Cyclomatic, n.Length)
		if n.TraitDispatched {
			cg.MarkAsTraitDispatch(n.ID)
		}
	}
	for _, e := range edgesCopy {
		cg.AddCall(e.Caller, e.Callee, e.CallType)
	}
}

// FindAllFunctions returns every function node, sorted by FunctionId string.
func (cg *Graph) FindAllFunctions() []model.FunctionId {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	out := make([]model.FunctionId, 0, len(cg.nodes))
	for _, n := range cg.nodes {
		out = append(out, n.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// FindTestFunctions returns every function node flagged as a test.
func (cg *Graph) FindTestFunctions() []model.FunctionId {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	var out []model.FunctionId
	for _, n := range cg.nodes {
		if n.IsTest {
			out = append(out, n.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// NodeCount reports the number of function nodes.
func (cg *Graph) NodeCount() int {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	return len(cg.nodes)
}

// IsEmpty reports whether the graph has no nodes.
func (cg *Graph) IsEmpty() bool {
	return cg.NodeCount() == 0
}

// Underlying exposes the lvlath graph for algorithms that run on it
// directly; internal/validate uses it for cycle detection
// (github.com/katalvlaran/lvlath/dfs).
func (cg *Graph) Underlying() *core.Graph {
	return cg.g
}

// ReplaceCallee re-keys every edge whose callee is `from` to point at `to`
// instead, used by the cross-module resolver when it reconciles an
// unresolved (file, name, 0) placeholder against a discovered FunctionId.
func (cg *Graph) ReplaceCallee(from, to model.FunctionId) {
	fromKey, toKey := from.String(), to.String()
	if fromKey == toKey {
		return
	}

	cg.mu.Lock()
	edges := make([]Edge, 0)
	for _, e := range cg.g.Edges() {
		if e.To != fromKey {
			continue
		}
		ct, ok := cg.edgeType[e.ID]
		if !ok {
			continue
		}
		callerInfo, ok := cg.nodes[e.From]
		if !ok {
			continue
		}
		edges = append(edges, Edge{Caller: callerInfo.ID, Callee: from, CallType: ct})
	}
	// Drop the placeholder node; its edges are recreated against `to` below.
	delete(cg.nodes, fromKey)
	cg.mu.Unlock()

	for _, e := range edges {
		cg.AddCall(e.Caller, to, e.CallType)
	}
}
