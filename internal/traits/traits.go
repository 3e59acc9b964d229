// Package traits is the trait/interface registry For Go,
// "trait" maps to "interface": the registry records which concrete types
// implement which interfaces and exposes their method tables, built from
// go/types method-set satisfaction. For Python, traits map to duck-typed
// protocols recognized by naming convention (dunder methods only; base
// classes are not examined). In both languages it flags well-known method patterns
// (constructor-like names, Clone/Default/From/Display analogs) so the
// debt classifier never reports them dead.
package traits

import (
	"go/ast"
	"go/types"
	"strings"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// Registry records trait/interface -> [impls] and impl -> method table.
type Registry struct {
	traitImpls  map[string][]string          // trait/interface name -> implementing type names
	implMethods map[string]map[string]model.FunctionId // "Type" -> method name -> FunctionId
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		traitImpls:  make(map[string][]string),
		implMethods: make(map[string]map[string]model.FunctionId),
	}
}

// RegisterImpl records that implType has method methodName at id.
func (r *Registry) RegisterImpl(implType, methodName string, id model.FunctionId) {
	methods, ok := r.implMethods[implType]
	if !ok {
		methods = make(map[string]model.FunctionId)
		r.implMethods[implType] = methods
	}
	methods[methodName] = id
}

// RegisterTraitImpl records that implType satisfies traitName.
func (r *Registry) RegisterTraitImpl(traitName, implType string) {
	for _, existing := range r.traitImpls[traitName] {
		if existing == implType {
			return
		}
	}
	r.traitImpls[traitName] = append(r.traitImpls[traitName], implType)
}

// Implementations returns every type implementing traitName.
func (r *Registry) Implementations(traitName string) []string {
	return r.traitImpls[traitName]
}

// ForEachImpl visits every recorded (implType, method, id) triple, used to
// merge per-language registries into one.
func (r *Registry) ForEachImpl(fn func(implType, methodName string, id model.FunctionId)) {
	for implType, methods := range r.implMethods {
		for methodName, id := range methods {
			fn(implType, methodName, id)
		}
	}
}

// ForEachTrait visits every recorded (trait, implType) pair.
func (r *Registry) ForEachTrait(fn func(traitName, implType string)) {
	for traitName, impls := range r.traitImpls {
		for _, implType := range impls {
			fn(traitName, implType)
		}
	}
}

// MethodID looks up implType.methodName's FunctionId, if known.
func (r *Registry) MethodID(implType, methodName string) (model.FunctionId, bool) {
	methods, ok := r.implMethods[implType]
	if !ok {
		return model.FunctionId{}, false
	}
	id, ok := methods[methodName]
	return id, ok
}

// wellKnownMethodNames are Display/Debug/Clone/Default/From-analog method
// names that, when found on any type, are treated as trait-dispatched entry
// points regardless of interface satisfaction.
var wellKnownMethodNames = map[string]bool{
	"String": true, // Display::fmt analog (fmt.Stringer)
	"Error":  true, // error interface
	"Clone":  true,
	"CloneBox": true,
	"Default": true,
	"Equal":  true,
	"MarshalJSON": true,
	"UnmarshalJSON": true,
}

// IsWellKnownPattern reports whether a bare method name matches one of the
// constructor-like or Default/Clone/From/Display-analog patterns,
// independent of language.
func IsWellKnownPattern(methodName string) bool {
	if wellKnownMethodNames[methodName] {
		return true
	}
	lower := strings.ToLower(methodName)
	switch {
	case lower == "new", lower == "create", lower == "builder":
		return true
	case strings.HasPrefix(lower, "with"):
		return true
	case strings.HasPrefix(lower, "new"), strings.HasSuffix(lower, "new"), strings.HasSuffix(lower, "builder"), strings.HasSuffix(lower, "create"):
		return true
	case strings.HasPrefix(lower, "from"), strings.HasPrefix(lower, "into"):
		return true
	}
	return false
}

// BuildFromGo constructs a Registry from type-checked Go packages: for
// every named interface type and every named concrete type in the package,
// it checks method-set satisfaction via go/types.Implements and records the
// impl's method table from the AST function declarations.
func BuildFromGo(pkgs []*parsefrontend.ParsedPackage) *Registry {
	reg := NewRegistry()

	for _, pkg := range pkgs {
		if pkg.ForTest != "" || pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		var interfaceTypes []*types.Named
		var concreteTypes []*types.Named

		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			tn, ok := obj.(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, isIface := named.Underlying().(*types.Interface); isIface {
				interfaceTypes = append(interfaceTypes, named)
			} else {
				concreteTypes = append(concreteTypes, named)
			}
		}

		for _, iface := range interfaceTypes {
			ifaceType, ok := iface.Underlying().(*types.Interface)
			if !ok {
				continue
			}
			for _, concrete := range concreteTypes {
				if types.Implements(concrete, ifaceType) || types.Implements(types.NewPointer(concrete), ifaceType) {
					reg.RegisterTraitImpl(iface.Obj().Name(), concrete.Obj().Name())
				}
			}
		}

		registerGoMethodTable(pkg, reg)
	}

	return reg
}

func registerGoMethodTable(pkg *parsefrontend.ParsedPackage, reg *Registry) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			recvType := receiverTypeName(fn.Recv.List[0].Type)
			pos := pkg.Fset.Position(fn.Pos())
			id := model.FunctionId{File: pos.Filename, Name: recvType + "." + fn.Name.Name, Line: pos.Line}
			reg.RegisterImpl(recvType, fn.Name.Name, id)
		}
	}
}

// MarkDispatchable flags every method of every registered trait
// implementation as trait-dispatched in graph: once a type is known
// to satisfy an interface, all of its methods are reachable through that
// interface in principle, not just the ones the satisfied interface
// happens to name, so the whole method table is marked rather than just
// the interface's method set.
func (r *Registry) MarkDispatchable(graph *callgraph.Graph) {
	implementing := make(map[string]bool)
	for _, impls := range r.traitImpls {
		for _, implType := range impls {
			implementing[implType] = true
		}
	}
	for implType := range implementing {
		for _, id := range r.implMethods[implType] {
			graph.MarkAsTraitDispatch(id)
		}
	}
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	default:
		return "?"
	}
}
