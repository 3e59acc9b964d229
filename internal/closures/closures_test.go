package closures

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func TestMightBeCalledThroughPointer(t *testing.T) {
	tr := NewTracker()
	defining := model.FunctionId{File: "a.go", Name: "setup", Line: 1}
	target := model.FunctionId{File: "a.go", Name: "worker", Line: 20}
	unrelated := model.FunctionId{File: "a.go", Name: "other", Line: 40}

	tr.RecordFunctionPointer("f", defining, target)

	if !tr.MightBeCalledThroughPointer(target) {
		t.Error("pointer target should be flagged reachable")
	}
	if tr.MightBeCalledThroughPointer(unrelated) {
		t.Error("unrelated function should not be flagged")
	}
}

func TestHOFArgumentIsReachable(t *testing.T) {
	tr := NewTracker()
	caller := model.FunctionId{File: "a.go", Name: "pipeline", Line: 1}
	arg := model.FunctionId{File: "a.go", Name: "transform", Line: 30}

	tr.RecordHOFCall(caller, "Map", []model.FunctionId{arg}, 5)

	if !tr.MightBeCalledThroughPointer(arg) {
		t.Error("higher-order-function argument should be flagged reachable")
	}
}

func TestClosureContainerIsReachable(t *testing.T) {
	tr := NewTracker()
	containing := model.FunctionId{File: "a.go", Name: "outer", Line: 1}
	closure := model.FunctionId{File: "a.go", Name: "<closure@5>", Line: 5}

	tr.RecordClosure(closure, containing, 5)

	if !tr.MightBeCalledThroughPointer(containing) {
		t.Error("a function containing closures should be flagged")
	}
}

func TestMergeUnionsTables(t *testing.T) {
	a := NewTracker()
	b := NewTracker()

	defining := model.FunctionId{File: "a.go", Name: "setup", Line: 1}
	target1 := model.FunctionId{File: "a.go", Name: "worker1", Line: 20}
	target2 := model.FunctionId{File: "b.go", Name: "worker2", Line: 20}

	a.RecordFunctionPointer("f", defining, target1)
	b.RecordFunctionPointer("g", defining, target2)
	b.RecordClosure(model.FunctionId{File: "b.go", Name: "<closure@3>", Line: 3}, defining, 3)
	b.RecordPointerCall(defining, "g", 7)
	b.RecordHOFCall(defining, "Filter", []model.FunctionId{target2}, 9)

	a.Merge(b)

	if !a.MightBeCalledThroughPointer(target1) || !a.MightBeCalledThroughPointer(target2) {
		t.Error("merged tracker lost pointer targets")
	}
	if len(a.Closures) != 1 {
		t.Errorf("merged closures = %d, want 1", len(a.Closures))
	}
	if len(a.PointerCalls) != 1 || len(a.HOFCalls) != 1 {
		t.Errorf("merged call records = (%d pointer, %d hof), want (1, 1)", len(a.PointerCalls), len(a.HOFCalls))
	}
}

func TestMergeAppendsTargetsForSameVariable(t *testing.T) {
	a := NewTracker()
	b := NewTracker()
	defining := model.FunctionId{File: "a.go", Name: "setup", Line: 1}
	t1 := model.FunctionId{File: "a.go", Name: "w1", Line: 20}
	t2 := model.FunctionId{File: "a.go", Name: "w2", Line: 30}

	a.RecordFunctionPointer("f", defining, t1)
	b.RecordFunctionPointer("f", defining, t2)
	a.Merge(b)

	key := defining.String() + "|f"
	fp := a.FunctionPointers[key]
	if fp == nil || len(fp.PossibleTargets) != 2 {
		t.Fatalf("merged possible targets = %+v, want both", fp)
	}
}
