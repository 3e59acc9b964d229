// Package closures is the function-pointer / callback tracker:
// closures synthesized by the per-language extractors,
// local function-pointer assignments, and higher-order-function call sites,
// feeding might_be_called_through_pointer back into dead-code
// classification.
package closures

import "github.com/ingoeichhorst/debtgraph/pkg/model"

// ClosureInfo records one synthesized closure pseudo-node.
type ClosureInfo struct {
	ID                 model.FunctionId
	ContainingFunction model.FunctionId
	Line               int
}

// FunctionPointer records a local variable bound to a function reference;
// PossibleTargets accumulates every callee seen assigned to or invoked
// through that variable name within the defining function.
type FunctionPointer struct {
	VarName          string
	DefiningFunction model.FunctionId
	PossibleTargets  []model.FunctionId
}

// PointerCall records one invocation of a tracked function-pointer variable.
type PointerCall struct {
	Caller    model.FunctionId
	VarName   string
	Line      int
}

// HOFCall records one call to a higher-order function with its function
// arguments.
type HOFCall struct {
	Caller          model.FunctionId
	HOFName         string
	FunctionArgs    []model.FunctionId
	Line            int
}

// Tracker holds the closure, function-pointer, pointer-call, and
// higher-order-call tables.
type Tracker struct {
	Closures        map[string]*ClosureInfo
	FunctionPointers map[string]*FunctionPointer // keyed by "definingFunc|varName"
	PointerCalls    []PointerCall
	HOFCalls        []HOFCall

	pointerTargets map[string]map[string]bool // id.String() -> set of possible-target id strings pointing at it
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		Closures:         make(map[string]*ClosureInfo),
		FunctionPointers: make(map[string]*FunctionPointer),
		pointerTargets:   make(map[string]map[string]bool),
	}
}

// RecordClosure registers a synthesized closure node.
func (t *Tracker) RecordClosure(id, containing model.FunctionId, line int) {
	t.Closures[id.String()] = &ClosureInfo{ID: id, ContainingFunction: containing, Line: line}
}

// RecordFunctionPointer records that a local variable or argument slot now
// may reference target, from within definingFunc.
func (t *Tracker) RecordFunctionPointer(varName string, definingFunc model.FunctionId, target model.FunctionId) {
	key := definingFunc.String() + "|" + varName
	fp, ok := t.FunctionPointers[key]
	if !ok {
		fp = &FunctionPointer{VarName: varName, DefiningFunction: definingFunc}
		t.FunctionPointers[key] = fp
	}
	fp.PossibleTargets = append(fp.PossibleTargets, target)

	targetKey := target.String()
	set, ok := t.pointerTargets[targetKey]
	if !ok {
		set = make(map[string]bool)
		t.pointerTargets[targetKey] = set
	}
	set[definingFunc.String()] = true
}

// RecordPointerCall records an invocation of a tracked pointer variable.
func (t *Tracker) RecordPointerCall(caller model.FunctionId, varName string, line int) {
	t.PointerCalls = append(t.PointerCalls, PointerCall{Caller: caller, VarName: varName, Line: line})
}

// RecordHOFCall records a call to a higher-order function along with the
// function-valued arguments passed to it.
func (t *Tracker) RecordHOFCall(caller model.FunctionId, hofName string, args []model.FunctionId, line int) {
	t.HOFCalls = append(t.HOFCalls, HOFCall{Caller: caller, HOFName: hofName, FunctionArgs: args, Line: line})
}

// MightBeCalledThroughPointer reports whether id is any recorded possible
// target of a function-pointer variable, is itself the containing
// function of any closure, or is a function argument of a recorded
// higher-order call. This feeds back into dead-code
// classification: such a function is never reported dead purely
// for lacking direct callers in the graph.
func (t *Tracker) MightBeCalledThroughPointer(id model.FunctionId) bool {
	if _, ok := t.pointerTargets[id.String()]; ok {
		return true
	}
	for _, c := range t.Closures {
		if c.ContainingFunction == id {
			return true
		}
	}
	for _, call := range t.HOFCalls {
		for _, arg := range call.FunctionArgs {
			if arg == id {
				return true
			}
		}
	}
	return false
}

// Merge unions other into t, used to combine per-worker tables produced
// during parallel per-file extraction.
func (t *Tracker) Merge(other *Tracker) {
	for k, v := range other.Closures {
		t.Closures[k] = v
	}
	for k, v := range other.FunctionPointers {
		for _, target := range v.PossibleTargets {
			set, ok := t.pointerTargets[target.String()]
			if !ok {
				set = make(map[string]bool)
				t.pointerTargets[target.String()] = set
			}
			set[v.DefiningFunction.String()] = true
		}
		existing, ok := t.FunctionPointers[k]
		if !ok {
			t.FunctionPointers[k] = v
			continue
		}
		existing.PossibleTargets = append(existing.PossibleTargets, v.PossibleTargets...)
	}
	t.PointerCalls = append(t.PointerCalls, other.PointerCalls...)
	t.HOFCalls = append(t.HOFCalls, other.HOFCalls...)
}
