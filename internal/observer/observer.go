// Package observer implements the two-layer observer-dispatch mechanism
// used to materialize virtual dispatch for dynamic-language
// observer-collection iteration (and the structurally identical Go pattern
// of ranging over a slice of interface values and calling a method on each
// element): a registry of observer fields/interfaces/implementations, and a
// dispatch detector that turns `for x in self.<field>: x.method()` into
// explicit call-graph edges.
package observer

import "github.com/ingoeichhorst/debtgraph/pkg/model"

// heuristicCollectionNames are field names recognized as observer
// collections even without a registered interface.
var heuristicCollectionNames = map[string]bool{
	"observers": true, "listeners": true, "callbacks": true,
	"handlers": true, "subscribers": true, "watchers": true,
}

// IsHeuristicCollectionName reports whether name matches the recognized
// observer-collection naming convention.
func IsHeuristicCollectionName(name string) bool {
	return heuristicCollectionNames[name]
}

// Registry holds the class/field/interface/impl tables
type Registry struct {
	classField    map[string]map[string]string // class -> field -> interface
	interfaceImpl map[string]map[string][]model.FunctionId // interface -> method -> impl ids
	classIface    map[string]string // class -> interface
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		classField:    make(map[string]map[string]string),
		interfaceImpl: make(map[string]map[string][]model.FunctionId),
		classIface:    make(map[string]string),
	}
}

// RegisterObserverField records that class.field holds a collection of
// values satisfying interfaceName.
func (r *Registry) RegisterObserverField(class, field, interfaceName string) {
	fields, ok := r.classField[class]
	if !ok {
		fields = make(map[string]string)
		r.classField[class] = fields
	}
	fields[field] = interfaceName
}

// RegisterImplementation records that implID implements interfaceName.method.
func (r *Registry) RegisterImplementation(interfaceName, method string, implID model.FunctionId) {
	methods, ok := r.interfaceImpl[interfaceName]
	if !ok {
		methods = make(map[string][]model.FunctionId)
		r.interfaceImpl[interfaceName] = methods
	}
	methods[method] = append(methods[method], implID)
}

// RegisterClassInterface records that class itself implements interfaceName
// (used when a class both holds and is an observer).
func (r *Registry) RegisterClassInterface(class, interfaceName string) {
	r.classIface[class] = interfaceName
}

// InterfaceFor returns the registered interface for class.field, or "" if
// unregistered (the detector falls back to the heuristic name list).
func (r *Registry) InterfaceFor(class, field string) string {
	if fields, ok := r.classField[class]; ok {
		return fields[field]
	}
	return ""
}

// Implementations returns every registered implementation of
// interfaceName.method; if interfaceName is "" it returns every impl of any
// interface's method named `method` (the "otherwise" clause).
func (r *Registry) Implementations(interfaceName, method string) []model.FunctionId {
	if interfaceName != "" {
		return r.interfaceImpl[interfaceName][method]
	}
	var out []model.FunctionId
	for _, methods := range r.interfaceImpl {
		out = append(out, methods[method]...)
	}
	return out
}

// FieldBinding records that class.field was discovered (via a type
// annotation on a collection attribute) to hold values satisfying
// interfaceName, for registration into a Registry once extraction
// completes.
type FieldBinding struct {
	Class     string
	Field     string
	Interface string
}

// Dispatch is one virtual-dispatch record produced by the detector.
type Dispatch struct {
	Caller         model.FunctionId
	MethodName     string
	Interface      string // "" if unknown
	CollectionExpr string
	Confidence     float64
}

// Confidence bounds
const (
	minConfidence  = 0.70
	maxConfidence  = 0.95
	baseConfidence = 0.70
	registeredIfaceBonus = 0.15
	recognizedNameBonus  = 0.10
)

// NewDispatch builds a Dispatch record, computing confidence from whether
// the interface is registered and the collection name is recognized.
func NewDispatch(caller model.FunctionId, methodName, iface, collectionExpr string, recognizedName bool) Dispatch {
	confidence := baseConfidence
	if iface != "" {
		confidence += registeredIfaceBonus
	}
	if recognizedName {
		confidence += recognizedNameBonus
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}
	return Dispatch{Caller: caller, MethodName: methodName, Interface: iface, CollectionExpr: collectionExpr, Confidence: confidence}
}

// ResolveEdges turns a Dispatch into the set of callee FunctionIds the call
// graph should gain a Direct edge to: every impl of interface.method when
// Interface is known, otherwise every *.method implementation registered.
func (r *Registry) ResolveEdges(d Dispatch) []model.FunctionId {
	return r.Implementations(d.Interface, d.MethodName)
}
