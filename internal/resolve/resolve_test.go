package resolve

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/observer"
	"github.com/ingoeichhorst/debtgraph/internal/traits"
	"github.com/ingoeichhorst/debtgraph/internal/validate"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// exportedByCase treats an uppercase first letter as exported, the Go rule.
func exportedByCase(id model.FunctionId) bool {
	return id.Name != "" && id.Name[0] >= 'A' && id.Name[0] <= 'Z'
}

func TestLinkSameFileExactName(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 1}
	defined := model.FunctionId{File: "a.go", Name: "helper", Line: 20}
	placeholder := model.FunctionId{File: "a.go", Name: "helper", Line: 0}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(defined, false, false, 1, 5)
	g.AddCall(caller, placeholder, model.CallDirect)

	r := NewResolver(nil, nil, nil)
	r.DiscoverFile("a.go", "pkg")
	r.IndexFunctions(g, exportedByCase)
	unresolved := r.Link(g)

	if len(unresolved) != 0 {
		t.Fatalf("unresolved = %+v, want none", unresolved)
	}
	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != defined {
		t.Fatalf("callees = %v, want the same-file definition", callees)
	}
}

func TestLinkCrossModuleExportedName(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 1}
	exported := model.FunctionId{File: "b/util.go", Name: "Render", Line: 12}
	placeholder := model.FunctionId{File: "a.go", Name: "Render", Line: 0}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(exported, false, false, 1, 5)
	g.AddCall(caller, placeholder, model.CallDirect)

	r := NewResolver(nil, nil, nil)
	r.DiscoverFile("a.go", "root")
	r.DiscoverFile("b/util.go", "root/b")
	r.IndexFunctions(g, exportedByCase)
	unresolved := r.Link(g)

	if len(unresolved) != 0 {
		t.Fatalf("unresolved = %+v, want none", unresolved)
	}
	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != exported {
		t.Fatalf("callees = %v, want the cross-module export", callees)
	}
}

func TestLinkUnexportedNameStaysUnresolved(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "caller", Line: 1}
	private := model.FunctionId{File: "b/util.go", Name: "render", Line: 12}
	placeholder := model.FunctionId{File: "a.go", Name: "render", Line: 0}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(private, false, false, 1, 5)
	g.AddCall(caller, placeholder, model.CallDirect)

	d := validate.NewDebugger()
	r := NewResolver(nil, nil, nil).WithDebugger(d)
	r.DiscoverFile("a.go", "root")
	r.DiscoverFile("b/util.go", "root/b")
	r.IndexFunctions(g, exportedByCase)
	unresolved := r.Link(g)

	if len(unresolved) != 1 {
		t.Fatalf("unresolved = %+v, want exactly the private cross-file name", unresolved)
	}
	if len(d.Attempts()) == 0 {
		t.Error("debugger recorded no attempts")
	}
}

func TestLinkObserverImplementations(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "ui.py", Name: "Panel.notify", Line: 1}
	impl := model.FunctionId{File: "view.py", Name: "AudioView.on_event", Line: 30}
	placeholder := model.FunctionId{File: "ui.py", Name: "on_event", Line: 0}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(impl, false, false, 1, 5)
	g.AddCall(caller, placeholder, model.CallMethod)

	obs := observer.NewRegistry()
	obs.RegisterImplementation("Observer", "on_event", impl)

	r := NewResolver(nil, obs, nil)
	r.DiscoverFile("ui.py", "ui")
	r.DiscoverFile("view.py", "view")
	r.IndexFunctions(g, func(model.FunctionId) bool { return false })
	r.Link(g)

	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != impl {
		t.Fatalf("callees = %v, want the observer implementation", callees)
	}
}

func TestLinkTraitMethodTable(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "a.go", Name: "render", Line: 1}
	method := model.FunctionId{File: "w.go", Name: "Widget.Draw", Line: 8}
	placeholder := model.FunctionId{File: "a.go", Name: "Widget.Draw", Line: 0}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(method, false, false, 1, 5)
	g.AddCall(caller, placeholder, model.CallMethod)

	tr := traits.NewRegistry()
	tr.RegisterImpl("Widget", "Draw", method)

	r := NewResolver(tr, nil, nil)
	r.DiscoverFile("a.go", "a")
	r.DiscoverFile("w.go", "w")
	// Index with nothing exported so only the trait table can answer.
	r.IndexFunctions(g, func(model.FunctionId) bool { return false })
	r.Link(g)

	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != method {
		t.Fatalf("callees = %v, want the trait method", callees)
	}
}

func TestApplyObserverDispatches(t *testing.T) {
	g := callgraph.New()
	caller := model.FunctionId{File: "ui.py", Name: "Panel.notify", Line: 1}
	impl := model.FunctionId{File: "view.py", Name: "AudioView.on_event", Line: 30}
	g.AddFunction(caller, false, false, 1, 5)
	g.AddFunction(impl, false, false, 1, 5)

	reg := observer.NewRegistry()
	reg.RegisterImplementation("Observer", "on_event", impl)

	d := observer.NewDispatch(caller, "on_event", "Observer", "self.observers", true)
	ApplyObserverDispatches(g, reg, []observer.Dispatch{d})

	callees := g.GetCallees(caller)
	if len(callees) != 1 || callees[0] != impl {
		t.Fatalf("callees = %v, want a Direct edge to the implementation", callees)
	}
}

func TestDiscoverFileTracksModuleHierarchy(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	r.DiscoverFile("root/mod.go", "root")
	child := r.DiscoverFile("root/sub/x.go", "root/sub")

	if child.ParentModule != "root" {
		t.Errorf("parent = %q, want root", child.ParentModule)
	}
	parent := r.DiscoverFile("root/other.go", "root")
	found := false
	for _, sub := range parent.Submodules {
		if sub == "root/sub" {
			found = true
		}
	}
	if !found {
		t.Errorf("submodules = %v, missing root/sub", parent.Submodules)
	}
}
