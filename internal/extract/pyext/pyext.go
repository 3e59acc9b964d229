// Package pyext is the Python call-graph extractor: Tree-sitter CST
// traversal, class-qualified naming (Class.method), nested function/class
// handling, event-binding method calls, known callback-accepting APIs at
// documented argument positions, closures synthesized as "<closure@line>"
// pseudo-nodes, and route/framework-lifecycle entry-point detection via
// decorators.
package pyext

import (
	"regexp"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/extract/shared"
	"github.com/ingoeichhorst/debtgraph/internal/metrics"
	"github.com/ingoeichhorst/debtgraph/internal/observer"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

var higherOrderNames = map[string]bool{
	"map": true, "filter": true, "reduce": true, "sorted": true,
}

// eventBindMethods are the event-binding selectors recognized for Python
// frameworks (wx, Qt, DOM).
var eventBindMethods = map[string]bool{
	"Bind": true, "bind": true, "connect": true, "addEventListener": true,
	"subscribe": true, "observe": true, "listen": true,
}

// callbackAPIs maps a known callback-accepting call (selector or bare name)
// to the 0-based argument index carrying the callable.
var callbackAPIs = map[string]int{
	"CallAfter": 0, "create_task": 0, "Timer": 1, "Thread": 0,
	"Process": 0, "apply_async": 0, "submit": 0, "setTimeout": 0,
}

// routeDecoratorHints mark a function as an entry point when any decorator
// matches (Flask/FastAPI/Django-style route registration).
var routeDecoratorHints = []string{".route", ".get", ".post", ".put", ".delete", ".patch", ".websocket", "@app.", "@router."}

// frameworkLifecycleMethods are always entry points regardless of callers.
var frameworkLifecycleMethods = map[string]bool{
	"__init__": true, "__call__": true, "setUp": true, "tearDown": true,
	"setUpClass": true, "tearDownClass": true, "main": true,
}

// Result mirrors goext.Result for the Python extraction pass.
type Result struct {
	Graph         *callgraph.Graph
	Closures      *closures.Tracker
	Metrics       map[string]metrics.FuncMetrics
	Dispatches    []observer.Dispatch
	FieldBindings []observer.FieldBinding
	FieldCounts   map[string]int // class -> distinct self.<field> assignment count
}

// Extract walks every parsed Python source/test file and builds the call
// graph fragment, closure tables, and observer-dispatch candidates.
func Extract(files []*parsefrontend.ParsedTreeSitterFile) *Result {
	res := &Result{Graph: callgraph.New(), Closures: closures.NewTracker(), Metrics: make(map[string]metrics.FuncMetrics), FieldCounts: make(map[string]int)}

	for _, f := range files {
		isTestFile := shared.IsPythonTestFileByPath(f.RelPath)
		w := &walker{
			content:     f.Content,
			file:        f.RelPath,
			isTestFile:  isTestFile,
			graph:       res.Graph,
			closures:    res.Closures,
			metrics:     res.Metrics,
			classFields: make(map[string]map[string]string),
		}
		root := f.Tree.RootNode()
		w.walkModule(root)
		res.Dispatches = append(res.Dispatches, w.dispatches...)
		res.FieldBindings = append(res.FieldBindings, w.fieldBindings...)
		for class, count := range w.fieldCounts {
			res.FieldCounts[class] = count
		}
	}
	return res
}

// selfFieldAssignRe finds every distinct "self.<field> = " (optionally
// annotated) attribute assignment in a class body, used to count a class's
// fields for god-object evidence.
var selfFieldAssignRe = regexp.MustCompile(`self\.(\w+)\s*(?::\s*[^=]+?)?=[^=]`)

// fieldAnnotationRe recognizes a type-annotated collection attribute
// assignment, e.g. `self.observers: List[Observer] = []`, and captures the
// field name and the element interface for observer.Registry.
var fieldAnnotationRe = regexp.MustCompile(`self\.(\w+)\s*:\s*(?:List|Set|Tuple|Sequence|Iterable|FrozenSet)?\[?([A-Z]\w*)\]?\s*=`)

type walker struct {
	content    []byte
	file       string
	isTestFile bool
	graph      *callgraph.Graph
	closures   *closures.Tracker
	metrics    map[string]metrics.FuncMetrics
	dispatches []observer.Dispatch

	classFields   map[string]map[string]string // class -> field -> interface, from annotated self.field assignments
	fieldBindings []observer.FieldBinding
	fieldCounts   map[string]int

	className string
}

func (w *walker) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return shared.NodeText(n, w.content)
}

func (w *walker) walkModule(node *tree_sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		w.walkTop(node.Child(i))
	}
}

func (w *walker) walkTop(node *tree_sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "class_definition":
		w.visitClass(node)
	case "decorated_definition":
		w.visitDecorated(node, w.className)
	case "function_definition":
		w.visitFunction(node, nil)
	default:
		for i := uint(0); i < node.ChildCount(); i++ {
			w.walkTop(node.Child(i))
		}
	}
}

func (w *walker) visitClass(node *tree_sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	prevClass := w.className
	w.className = w.text(nameNode)
	body := node.ChildByFieldName("body")
	if body != nil {
		w.collectFieldInterfaces(body, w.className)
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			switch {
			case child == nil:
				continue
			case child.Kind() == "function_definition":
				w.visitFunction(child, nil)
			case child.Kind() == "decorated_definition":
				w.visitDecorated(child, w.className)
			case child.Kind() == "class_definition":
				w.visitClass(child)
			}
		}
	}
	w.className = prevClass
}

// collectFieldInterfaces scans a class body's raw text (ahead of visiting
// any of its methods) for `self.<field>` attribute assignments: every
// distinct field feeds the god-object field count, and any that carry a
// collection type annotation (`self.observers: List[Observer] = []`)
// register the field's element interface so visitForStatement can resolve
// it before the registered-interface confidence band applies.
func (w *walker) collectFieldInterfaces(body *tree_sitter.Node, className string) {
	text := w.text(body)

	seen := make(map[string]bool)
	for _, m := range selfFieldAssignRe.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	if len(seen) > 0 {
		if w.fieldCounts == nil {
			w.fieldCounts = make(map[string]int)
		}
		w.fieldCounts[className] = len(seen)
	}

	for _, m := range fieldAnnotationRe.FindAllStringSubmatch(text, -1) {
		field, iface := m[1], m[2]
		fields, ok := w.classFields[className]
		if !ok {
			fields = make(map[string]string)
			w.classFields[className] = fields
		}
		fields[field] = iface
		w.fieldBindings = append(w.fieldBindings, observer.FieldBinding{Class: className, Field: field, Interface: iface})
	}
}

func (w *walker) visitDecorated(node *tree_sitter.Node, _ string) {
	var decorators []string
	var inner *tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "decorator":
			decorators = append(decorators, w.text(child))
		case "function_definition":
			inner = child
		case "class_definition":
			w.visitClass(child)
			return
		}
	}
	if inner != nil {
		w.visitFunction(inner, decorators)
	}
}

func isRouteDecorated(decorators []string) bool {
	for _, d := range decorators {
		for _, hint := range routeDecoratorHints {
			if strings.Contains(d, hint) {
				return true
			}
		}
	}
	return false
}

func (w *walker) visitFunction(node *tree_sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	qualified := name
	if w.className != "" {
		qualified = w.className + "." + name
	}

	line := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1
	length := endLine - line + 1
	cyclo := pyComplexity(node)

	id := model.FunctionId{File: w.file, Name: qualified, Line: line}

	isTest := w.isTestFile && (strings.HasPrefix(name, "test_") || strings.HasPrefix(name, "test"))
	isEntry := name == "main" || strings.HasPrefix(name, "handle_") || strings.HasPrefix(name, "run_") ||
		frameworkLifecycleMethods[name] || isRouteDecorated(decorators)

	w.graph.AddFunction(id, isEntry, isTest, cyclo, length)

	body := node.ChildByFieldName("body")
	if body != nil {
		cognitive, nesting := metrics.PyCognitiveAndNesting(body)
		tokenEntropy, patternRepetition := metrics.ComputeEntropy(metrics.PyTokens(body))
		w.metrics[id.String()] = metrics.FuncMetrics{
			Cognitive:         cognitive,
			Nesting:           nesting,
			Visibility:        metrics.PyVisibility(name),
			TokenEntropy:      tokenEntropy,
			PatternRepetition: patternRepetition,
			HasEntropy:        length >= 3,
		}
		w.walkBody(body, id)
	}
}

// pyComplexity computes McCabe cyclomatic complexity, excluding nested
// function/class bodies.
func pyComplexity(funcNode *tree_sitter.Node) int {
	complexity := 1
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return complexity
	}
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "function_definition" || kind == "class_definition" {
			return
		}
		switch kind {
		case "if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "case_clause", "conditional_expression", "boolean_operator":
			complexity++
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return complexity
}

func (w *walker) walkBody(node *tree_sitter.Node, caller model.FunctionId) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition":
		w.visitNestedFunction(node, caller)
		return
	case "decorated_definition":
		for i := uint(0); i < node.ChildCount(); i++ {
			if inner := node.Child(i); inner != nil && inner.Kind() == "function_definition" {
				w.visitNestedFunction(inner, caller)
				return
			}
		}
	case "lambda":
		w.visitLambda(node, caller)
		return
	case "for_statement":
		w.visitForStatement(node, caller)
	case "call":
		w.visitCall(node, caller)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		w.walkBody(node.Child(i), caller)
	}
}

// visitNestedFunction synthesizes a closure pseudo-node for a nested
// function_definition: "parent.nested" qualified name, pre-indexed by its
// start line.
func (w *walker) visitNestedFunction(node *tree_sitter.Node, enclosing model.FunctionId) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	line := int(node.StartPosition().Row) + 1
	qualified := enclosing.Name + "." + name

	endLine := int(node.EndPosition().Row) + 1
	length := endLine - line + 1
	id := model.FunctionId{File: w.file, Name: qualified, Line: line}
	w.graph.AddFunction(id, false, false, pyComplexity(node), length)
	w.graph.AddCall(enclosing, id, model.CallCallback)
	w.closures.RecordClosure(id, enclosing, line)

	body := node.ChildByFieldName("body")
	if body != nil {
		cognitive, nesting := metrics.PyCognitiveAndNesting(body)
		tokenEntropy, patternRepetition := metrics.ComputeEntropy(metrics.PyTokens(body))
		w.metrics[id.String()] = metrics.FuncMetrics{
			Cognitive:         cognitive,
			Nesting:           nesting,
			Visibility:        model.VisPrivate,
			TokenEntropy:      tokenEntropy,
			PatternRepetition: patternRepetition,
			HasEntropy:        length >= 3,
		}
		w.walkBody(body, id)
	}
}

func (w *walker) visitLambda(node *tree_sitter.Node, enclosing model.FunctionId) {
	line := int(node.StartPosition().Row) + 1
	closureID := model.FunctionId{File: w.file, Name: "<closure@" + strconv.Itoa(line) + ">", Line: line}
	w.graph.AddFunction(closureID, false, false, 1, 1)
	w.graph.AddCall(enclosing, closureID, model.CallCallback)
	w.closures.RecordClosure(closureID, enclosing, line)

	body := node.ChildByFieldName("body")
	if body != nil {
		w.walkBody(body, closureID)
	}
}

// visitForStatement detects the observer-dispatch pattern:
// `for x in self.<field>: x.method(...)`.
func (w *walker) visitForStatement(node *tree_sitter.Node, caller model.FunctionId) {
	iterNode := node.ChildByFieldName("right")
	leftNode := node.ChildByFieldName("left")
	bodyNode := node.ChildByFieldName("body")
	if iterNode == nil || leftNode == nil || bodyNode == nil {
		return
	}

	iterText := w.text(iterNode)
	loopVar := w.text(leftNode)
	fieldName := extractFieldName(iterText)
	recognized := observer.IsHeuristicCollectionName(fieldName)
	iface := w.classFields[w.className][fieldName]
	if fieldName == "" || (!recognized && iface == "") {
		return
	}

	shared.WalkTree(bodyNode, func(n *tree_sitter.Node) {
		if n.Kind() != "call" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "attribute" {
			return
		}
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if obj == nil || attr == nil || w.text(obj) != loopVar {
			return
		}
		methodName := w.text(attr)
		d := observer.NewDispatch(caller, methodName, iface, iterText, recognized)
		w.dispatches = append(w.dispatches, d)
	})
}

// extractFieldName pulls the trailing "field" out of a "self.field"-shaped
// expression string.
func extractFieldName(expr string) string {
	parts := strings.Split(expr, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func (w *walker) visitCall(node *tree_sitter.Node, caller model.FunctionId) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	args := node.ChildByFieldName("arguments")

	switch fn.Kind() {
	case "identifier":
		name := w.text(fn)
		if higherOrderNames[name] {
			w.emitCallbackArgs(args, caller)
			return
		}
		callee := model.FunctionId{File: w.file, Name: name, Line: 0}
		w.graph.AddCall(caller, callee, classifyNameCallType(name))
		w.recordKnownCallbackAPI(name, args, caller)
	case "attribute":
		w.visitAttributeCall(fn, args, caller)
	}
}

func (w *walker) visitAttributeCall(fn *tree_sitter.Node, args *tree_sitter.Node, caller model.FunctionId) {
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if attr == nil {
		return
	}
	methodName := w.text(attr)
	objText := w.text(obj)

	if eventBindMethods[methodName] && args != nil {
		w.emitEventBinding(args, caller)
	}

	qualified := methodName
	if objText == "self" && w.className != "" {
		qualified = w.className + "." + methodName
	}
	callee := model.FunctionId{File: w.file, Name: qualified, Line: 0}
	w.graph.AddCall(caller, callee, classifyMethodCallType(methodName))

	w.recordKnownCallbackAPI(methodName, args, caller)
}

// emitEventBinding handles `self.widget.Bind(EVT, self.on_paint)`: any
// argument of the form self.<handler> becomes a Direct edge to the handler.
func (w *walker) emitEventBinding(args *tree_sitter.Node, caller model.FunctionId) {
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Kind() != "attribute" {
			continue
		}
		obj := arg.ChildByFieldName("object")
		attr := arg.ChildByFieldName("attribute")
		if obj == nil || attr == nil || w.text(obj) != "self" {
			continue
		}
		handler := w.text(attr)
		callee := model.FunctionId{File: w.file, Name: w.className + "." + handler, Line: 0}
		w.graph.AddCall(caller, callee, model.CallDirect)
	}
}

func (w *walker) recordKnownCallbackAPI(name string, args *tree_sitter.Node, caller model.FunctionId) {
	idx, ok := callbackAPIs[name]
	if !ok || args == nil {
		return
	}
	w.emitArgCallback(nthArg(args, idx), caller)
}

func nthArg(args *tree_sitter.Node, idx int) *tree_sitter.Node {
	count := 0
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child == nil || child.Kind() == "(" || child.Kind() == ")" || child.Kind() == "," {
			continue
		}
		if count == idx {
			return child
		}
		count++
	}
	return nil
}

func (w *walker) emitCallbackArgs(args *tree_sitter.Node, caller model.FunctionId) {
	if args == nil {
		return
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		w.emitArgCallback(args.Child(i), caller)
	}
}

func (w *walker) emitArgCallback(arg *tree_sitter.Node, caller model.FunctionId) {
	if arg == nil {
		return
	}
	switch arg.Kind() {
	case "identifier":
		name := w.text(arg)
		if name == "" || name == "None" {
			return
		}
		callee := model.FunctionId{File: w.file, Name: name, Line: 0}
		w.graph.AddCall(caller, callee, model.CallCallback)
		w.closures.RecordFunctionPointer(name, caller, callee)
	case "attribute":
		obj := arg.ChildByFieldName("object")
		attr := arg.ChildByFieldName("attribute")
		if attr == nil {
			return
		}
		name := w.text(attr)
		if w.text(obj) == "self" && w.className != "" {
			name = w.className + "." + name
		}
		callee := model.FunctionId{File: w.file, Name: name, Line: 0}
		w.graph.AddCall(caller, callee, model.CallCallback)
	case "lambda":
		w.visitLambda(arg, caller)
	}
}

func classifyNameCallType(name string) model.CallType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "handle") || strings.HasPrefix(lower, "process"):
		return model.CallDelegate
	case strings.Contains(lower, "async") || strings.Contains(lower, "await"):
		return model.CallAsync
	default:
		return model.CallDirect
	}
}

func classifyMethodCallType(methodName string) model.CallType {
	lower := strings.ToLower(methodName)
	switch {
	case lower == "map" || lower == "and_then" || lower == "then":
		return model.CallPipeline
	case strings.HasPrefix(lower, "handle") || strings.HasPrefix(lower, "process"):
		return model.CallDelegate
	case strings.Contains(lower, "async") || strings.Contains(lower, "await"):
		return model.CallAsync
	default:
		return model.CallMethod
	}
}
