// Package goext is the Go call-graph extractor: gocyclo for cyclomatic
// complexity, go/ast.Inspect for structural walking, go/packages-provided
// type info for receiver resolution.
//
// Extraction maintains a small context stack: current file,
// current package (module path), current enclosing type, current enclosing
// function, nested-function chain (closures). For every function-like node
// it records node metadata into the call graph and walks the body for call
// sites, classifying each into a model.CallType.
package goext

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/ingoeichhorst/debtgraph/internal/callgraph"
	"github.com/ingoeichhorst/debtgraph/internal/closures"
	"github.com/ingoeichhorst/debtgraph/internal/metrics"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// higherOrderNames lists call targets whose function-typed arguments are
// emitted as additional Callback edges.
var higherOrderNames = map[string]bool{
	"Map": true, "Filter": true, "Fold": true, "Reduce": true,
	"ForEach": true, "Each": true, "Walk": true, "Visit": true,
}

// callbackAPIs maps a well-known callback-accepting call (by selector
// suffix) to the 0-based argument index that carries the function
// reference.
var callbackAPIs = map[string]int{
	"Go":           0, // go func literal handled separately via GoStmt
	"AfterFunc":    1, // time.AfterFunc(d, f)
	"Submit":       0,
	"Defer":        0,
	"CallAfter":    0,
}

// eventBindMethods are selector names that, when called with a function
// reference argument, bind an event handler.
var eventBindMethods = map[string]bool{
	"Bind": true, "Connect": true, "AddEventListener": true,
	"Subscribe": true, "Observe": true, "Listen": true, "On": true,
}

// Result is everything one Go package-set extraction pass produces.
type Result struct {
	Graph       *callgraph.Graph
	Closures    *closures.Tracker
	Metrics     map[string]metrics.FuncMetrics // FunctionId.String() -> cognitive/nesting/visibility
	Diagnostics []model.Diagnostic
	FieldCounts map[string]int // struct type name -> field count
}

// Extract walks every non-test and test package's syntax trees and builds
// the call graph fragment plus closure/callback tables for this language.
func Extract(pkgs []*parsefrontend.ParsedPackage) *Result {
	res := &Result{Graph: callgraph.New(), Closures: closures.NewTracker(), Metrics: make(map[string]metrics.FuncMetrics), FieldCounts: make(map[string]int)}

	for _, pkg := range pkgs {
		isTestPkg := pkg.ForTest != ""
		for _, file := range pkg.Syntax {
			fileName := pkg.Fset.Position(file.Pos()).Filename
			w := &walker{
				fset:     pkg.Fset,
				file:     file,
				fileName: fileName,
				pkgPath:  pkg.PkgPath,
				isTestFile: isTestPkg || strings.HasSuffix(fileName, "_test.go"),
				graph:    res.Graph,
				closures: res.Closures,
				metrics:  res.Metrics,
				stats:    cyclomaticStats(file, pkg.Fset),
				nestedIndex: map[int]string{},
			}
			w.indexNestedFunctionLines(file)
			w.walkFile(file)
			for typeName, count := range structFieldCounts(file) {
				res.FieldCounts[typeName] = count
			}
		}
	}
	return res
}

// structFieldCounts counts each top-level struct type's field count,
// treating an embedded field (no explicit name) as contributing one field.
func structFieldCounts(file *ast.File) map[string]int {
	out := make(map[string]int)
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			count := 0
			for _, f := range st.Fields.List {
				if len(f.Names) == 0 {
					count++
				} else {
					count += len(f.Names)
				}
			}
			out[ts.Name.Name] = count
		}
	}
	return out
}

func cyclomaticStats(f *ast.File, fset *token.FileSet) map[int]int {
	var stats gocyclo.Stats
	stats = gocyclo.AnalyzeASTFile(f, fset, stats)
	out := make(map[int]int, len(stats))
	for _, s := range stats {
		out[s.Pos.Line] = s.Complexity
	}
	return out
}

type walker struct {
	fset        *token.FileSet
	file        *ast.File
	fileName    string
	pkgPath     string
	isTestFile  bool
	graph       *callgraph.Graph
	closures    *closures.Tracker
	metrics     map[string]metrics.FuncMetrics
	stats       map[int]int // line -> cyclomatic complexity
	nestedIndex map[int]string

	enclosingType string
	enclosingFunc model.FunctionId
	haveEnclosing bool
}

// indexNestedFunctionLines pre-indexes the start line of every FuncLit in
// the file, used to synthesize closure pseudo-identifiers "<closure@line>".
func (w *walker) indexNestedFunctionLines(file *ast.File) {
	ast.Inspect(file, func(n ast.Node) bool {
		if lit, ok := n.(*ast.FuncLit); ok {
			line := w.fset.Position(lit.Pos()).Line
			w.nestedIndex[line] = fmt.Sprintf("<closure@%d>", line)
		}
		return true
	})
}

func (w *walker) walkFile(file *ast.File) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		w.visitFunc(fn)
	}
}

func (w *walker) visitFunc(fn *ast.FuncDecl) {
	name := fn.Name.Name
	recv := ""
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		recv = receiverTypeName(fn.Recv.List[0].Type)
		name = recv + "." + name
	}

	pos := w.fset.Position(fn.Pos())
	end := w.fset.Position(fn.End())
	length := end.Line - pos.Line + 1

	cyclo := w.stats[pos.Line]
	if cyclo == 0 {
		cyclo = 1
	}

	id := model.FunctionId{File: w.fileName, Name: name, Line: pos.Line}
	isTest := w.isTestFile && (strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Example") || strings.HasPrefix(name, "Fuzz"))
	isEntry := isEntryPointName(name, recv, fn)

	w.graph.AddFunction(id, isEntry, isTest, cyclo, length)

	cognitive, nesting := metrics.GoCognitiveAndNesting(fn.Body)
	tokenEntropy, patternRepetition := metrics.ComputeEntropy(metrics.GoTokens(fn.Body))
	w.metrics[id.String()] = metrics.FuncMetrics{
		Cognitive:         cognitive,
		Nesting:           nesting,
		Visibility:        metrics.GoVisibility(fn.Name.Name),
		TokenEntropy:      tokenEntropy,
		PatternRepetition: patternRepetition,
		HasEntropy:        length >= 3,
	}

	prevFunc, prevHave, prevType := w.enclosingFunc, w.haveEnclosing, w.enclosingType
	w.enclosingFunc, w.haveEnclosing, w.enclosingType = id, true, recv
	w.walkBody(fn.Body, id)
	w.enclosingFunc, w.haveEnclosing, w.enclosingType = prevFunc, prevHave, prevType
}

func (w *walker) walkBody(body ast.Stmt, caller model.FunctionId) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.GoStmt:
			w.visitCallArg(node.Call, caller, model.CallAsync)
			return true
		case *ast.CallExpr:
			w.visitCall(node, caller)
			return true
		case *ast.FuncLit:
			w.visitFuncLit(node, caller)
			return false // recurse manually below with new enclosing context
		}
		return true
	})
}

// visitFuncLit synthesizes a pseudo-identifier for a closure, records it in
// the closure tracker, emits a Callback edge from the enclosing function,
// and recurses into its body with the closure as the new caller.
func (w *walker) visitFuncLit(lit *ast.FuncLit, enclosing model.FunctionId) {
	line := w.fset.Position(lit.Pos()).Line
	closureID := model.FunctionId{File: w.fileName, Name: fmt.Sprintf("<closure@%d>", line), Line: line}

	end := w.fset.Position(lit.End())
	length := end.Line - line + 1
	w.graph.AddFunction(closureID, false, false, 1, length)
	w.graph.AddCall(enclosing, closureID, model.CallCallback)
	w.closures.RecordClosure(closureID, enclosing, line)
	if lit.Body != nil {
		cognitive, nesting := metrics.GoCognitiveAndNesting(lit.Body)
		tokenEntropy, patternRepetition := metrics.ComputeEntropy(metrics.GoTokens(lit.Body))
		w.metrics[closureID.String()] = metrics.FuncMetrics{
			Cognitive:         cognitive,
			Nesting:           nesting,
			Visibility:        model.VisPrivate,
			TokenEntropy:      tokenEntropy,
			PatternRepetition: patternRepetition,
			HasEntropy:        length >= 3,
		}
	}

	if lit.Body != nil {
		w.walkBody(lit.Body, closureID)
	}
}

// visitCall classifies one call expression's rules and emits the
// corresponding edge(s).
func (w *walker) visitCall(call *ast.CallExpr, caller model.FunctionId) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		w.visitIdentCall(fn, call, caller)
	case *ast.SelectorExpr:
		w.visitSelectorCall(fn, call, caller)
	case *ast.FuncLit:
		// Immediately-invoked closure; body walked via FuncLit visit in Inspect.
	}
}

func (w *walker) visitIdentCall(fn *ast.Ident, call *ast.CallExpr, caller model.FunctionId) {
	name := fn.Name
	callee := model.FunctionId{File: w.fileName, Name: name, Line: 0}

	if higherOrderNames[name] {
		w.emitCallbackArgs(call, caller)
		return
	}

	callType := classifyNameCallType(name)
	w.graph.AddCall(caller, callee, callType)
	w.recordCallbackArgAPIs(call, name, caller)
}

func (w *walker) visitSelectorCall(sel *ast.SelectorExpr, call *ast.CallExpr, caller model.FunctionId) {
	methodName := sel.Sel.Name
	recvExpr := exprString(sel.X)

	// Event-binding call passing a method reference: self.widget.Bind(EVT, self.on_paint).
	if eventBindMethods[methodName] {
		for _, arg := range call.Args {
			if handlerSel, ok := arg.(*ast.SelectorExpr); ok {
				handlerName := handlerSel.Sel.Name
				if isSelfReceiver(handlerSel.X) {
					callee := model.FunctionId{File: w.fileName, Name: w.enclosingType + "." + handlerName, Line: 0}
					w.graph.AddCall(caller, callee, model.CallDirect)
				}
			}
		}
	}

	qualifiedName := methodName
	if isSelfReceiver(sel.X) && w.enclosingType != "" {
		qualifiedName = w.enclosingType + "." + methodName
	}
	callee := model.FunctionId{File: w.fileName, Name: qualifiedName, Line: 0}
	callType := classifyMethodCallType(recvExpr, methodName)
	w.graph.AddCall(caller, callee, callType)

	if idx, ok := callbackAPIs[methodName]; ok && idx < len(call.Args) {
		w.emitArgCallback(call.Args[idx], caller)
	}
}

// visitCallArg handles `go f(args)`: f is called asynchronously.
func (w *walker) visitCallArg(call *ast.CallExpr, caller model.FunctionId, callType model.CallType) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		callee := model.FunctionId{File: w.fileName, Name: fn.Name, Line: 0}
		w.graph.AddCall(caller, callee, callType)
	case *ast.SelectorExpr:
		callee := model.FunctionId{File: w.fileName, Name: sel2Name(w, fn), Line: 0}
		w.graph.AddCall(caller, callee, callType)
	}
}

func sel2Name(w *walker, sel *ast.SelectorExpr) string {
	if isSelfReceiver(sel.X) && w.enclosingType != "" {
		return w.enclosingType + "." + sel.Sel.Name
	}
	return sel.Sel.Name
}

// emitCallbackArgs emits Callback edges to every function-reference argument
// of a higher-order call (map/filter/fold/...).
func (w *walker) emitCallbackArgs(call *ast.CallExpr, caller model.FunctionId) {
	for _, arg := range call.Args {
		w.emitArgCallback(arg, caller)
	}
}

func (w *walker) emitArgCallback(arg ast.Expr, caller model.FunctionId) {
	switch a := arg.(type) {
	case *ast.Ident:
		if a.Name == "_" || a.Name == "nil" {
			return
		}
		callee := model.FunctionId{File: w.fileName, Name: a.Name, Line: 0}
		w.graph.AddCall(caller, callee, model.CallCallback)
		w.closures.RecordFunctionPointer(a.Name, caller, callee)
	case *ast.SelectorExpr:
		callee := model.FunctionId{File: w.fileName, Name: sel2Name(w, a), Line: 0}
		w.graph.AddCall(caller, callee, model.CallCallback)
	case *ast.FuncLit:
		w.visitFuncLit(a, caller)
	}
}

// recordCallbackArgAPIs records function-pointer assignment/usage for known
// callback-accepting plain-identifier calls not covered by selector form
// (threading/timer-style APIs rebound through local vars).
func (w *walker) recordCallbackArgAPIs(call *ast.CallExpr, name string, caller model.FunctionId) {
	if idx, ok := callbackAPIs[name]; ok && idx < len(call.Args) {
		w.emitArgCallback(call.Args[idx], caller)
	}
}

func isSelfReceiver(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == "self"
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

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	default:
		return ""
	}
}

// classifyNameCallType implements the bare-identifier-call classification
// rules: handle_/process_-prefixed → Delegate, names containing
// async/await → Async, otherwise Direct.
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

// classifyMethodCallType implements the receiver-method classification
// rules: map/and_then-style methods → Pipeline, handle_/process_
// receiver methods → Delegate, async/await → Async, else Method.
func classifyMethodCallType(_ string, methodName string) model.CallType {
	lower := strings.ToLower(methodName)
	switch {
	case lower == "map" || lower == "andthen" || strings.Contains(lower, "and_then"):
		return model.CallPipeline
	case strings.HasPrefix(lower, "handle") || strings.HasPrefix(lower, "process"):
		return model.CallDelegate
	case strings.Contains(lower, "async") || strings.Contains(lower, "await"):
		return model.CallAsync
	default:
		return model.CallMethod
	}
}

// isEntryPointName implements the entry-point classification for
// Go: main, handler-prefixed, runner-prefixed, framework lifecycle methods
// (Run, Start, Serve, ServeHTTP), test-runner methods (TestMain).
func isEntryPointName(name, recv string, fn *ast.FuncDecl) bool {
	if name == "main" || name == "TestMain" || name == "init" {
		return true
	}
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "handle") || strings.HasPrefix(lower, "run") {
		return true
	}
	if recv != "" {
		switch name {
		case "ServeHTTP", "Run", "Start", "Serve", "Execute", "RoundTrip":
			return true
		}
	}
	return false
}
