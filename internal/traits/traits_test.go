package traits

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func TestIsWellKnownPattern(t *testing.T) {
	wellKnown := []string{
		"new", "New", "create", "builder", "WithTimeout", "FromString",
		"NewClient", "String", "Error", "Clone", "Default", "MarshalJSON",
	}
	for _, name := range wellKnown {
		if !IsWellKnownPattern(name) {
			t.Errorf("%q should be a well-known pattern", name)
		}
	}

	ordinary := []string{"compute", "renderPage", "on_paint", "helper"}
	for _, name := range ordinary {
		if IsWellKnownPattern(name) {
			t.Errorf("%q should not be a well-known pattern", name)
		}
	}
}

func TestRegistryImplTables(t *testing.T) {
	reg := NewRegistry()
	id := model.FunctionId{File: "a.go", Name: "Widget.Draw", Line: 10}
	reg.RegisterImpl("Widget", "Draw", id)
	reg.RegisterTraitImpl("Drawer", "Widget")
	reg.RegisterTraitImpl("Drawer", "Widget") // duplicate registration is a no-op

	got, ok := reg.MethodID("Widget", "Draw")
	if !ok || got != id {
		t.Errorf("MethodID = (%v, %v), want the registered id", got, ok)
	}
	if _, ok := reg.MethodID("Widget", "Hide"); ok {
		t.Error("unknown method should miss")
	}

	impls := reg.Implementations("Drawer")
	if len(impls) != 1 || impls[0] != "Widget" {
		t.Errorf("Implementations(Drawer) = %v, want [Widget]", impls)
	}
}

func TestMarkDispatchableFlagsWholeMethodTable(t *testing.T) {
	reg := NewRegistry()
	draw := model.FunctionId{File: "a.go", Name: "Widget.Draw", Line: 10}
	hide := model.FunctionId{File: "a.go", Name: "Widget.Hide", Line: 20}
	reg.RegisterImpl("Widget", "Draw", draw)
	reg.RegisterImpl("Widget", "Hide", hide)
	reg.RegisterTraitImpl("Drawer", "Widget")

	g := callgraph.New()
	g.AddFunction(draw, false, false, 1, 5)
	g.AddFunction(hide, false, false, 1, 5)

	reg.MarkDispatchable(g)

	for _, id := range []model.FunctionId{draw, hide} {
		info := g.GetFunctionInfo(id)
		if info == nil || !info.TraitDispatched || !info.IsEntryPoint {
			t.Errorf("%s not marked trait-dispatched: %+v", id.Name, info)
		}
	}
}

func TestForEachVisitsEverything(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterImpl("A", "m1", model.FunctionId{File: "a.go", Name: "A.m1", Line: 1})
	reg.RegisterImpl("B", "m2", model.FunctionId{File: "b.go", Name: "B.m2", Line: 1})
	reg.RegisterTraitImpl("T", "A")
	reg.RegisterTraitImpl("T", "B")

	impls := 0
	reg.ForEachImpl(func(string, string, model.FunctionId) { impls++ })
	if impls != 2 {
		t.Errorf("ForEachImpl visited %d, want 2", impls)
	}

	pairs := 0
	reg.ForEachTrait(func(string, string) { pairs++ })
	if pairs != 2 {
		t.Errorf("ForEachTrait visited %d, want 2", pairs)
	}
}
