package purity

import (
	"go/ast"
	"strings"

	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// ioPackageNames are import identifiers whose calls are treated as I/O
// operations (file/console/network/database/system), matched by selector
// prefix since full type-checked call resolution is not needed for a local
// heuristic signal.
var ioPackageNames = map[string]bool{
	"os": true, "fmt": true, "net": true, "http": true, "sql": true,
	"bufio": true, "io": true, "log": true, "time": true, "exec": true,
	"syscall": true,
}

// AnalyzeGo walks every loaded Go package's syntax trees (test variants
// included) and returns the
// local purity signals for each function, keyed by FunctionId.String(). The
// function-identity computation mirrors internal/extract/goext's own
// receiver-qualification rule so the resulting keys align with the call
// graph's node keys.
func AnalyzeGo(pkgs []*parsefrontend.ParsedPackage) map[string]LocalSignals {
	out := make(map[string]LocalSignals)

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			hasUnsafeImport := fileImportsUnsafe(file)
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Body == nil {
					continue
				}
				name := fn.Name.Name
				if fn.Recv != nil && len(fn.Recv.List) > 0 {
					name = receiverTypeName(fn.Recv.List[0].Type) + "." + name
				}
				pos := pkg.Fset.Position(fn.Pos())
				id := model.FunctionId{File: pos.Filename, Name: name, Line: pos.Line}
				out[id.String()] = analyzeGoFuncBody(fn, hasUnsafeImport)
			}
		}
	}
	return out
}

func fileImportsUnsafe(file *ast.File) bool {
	for _, imp := range file.Imports {
		if imp.Path != nil && strings.Trim(imp.Path.Value, `"`) == "unsafe" {
			return true
		}
	}
	return false
}

func analyzeGoFuncBody(fn *ast.FuncDecl, hasUnsafeImport bool) LocalSignals {
	var sig LocalSignals

	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.AssignStmt:
			if node.Tok.String() == "=" {
				for _, lhs := range node.Lhs {
					switch lhs.(type) {
					case *ast.SelectorExpr, *ast.StarExpr, *ast.IndexExpr:
						sig.HasMutation = true
					}
				}
			}
		case *ast.IncDecStmt:
			switch node.X.(type) {
			case *ast.SelectorExpr, *ast.StarExpr, *ast.IndexExpr:
				sig.HasMutation = true
			}
		case *ast.SendStmt:
			sig.HasSideEffect = true
		case *ast.GoStmt:
			sig.HasSideEffect = true
		case *ast.SelectorExpr:
			if ident, ok := node.X.(*ast.Ident); ok && ioPackageNames[ident.Name] {
				sig.HasIO = true
			}
			if hasUnsafeImport {
				if ident, ok := node.X.(*ast.Ident); ok && ident.Name == "unsafe" {
					sig.HasUnsafe = true
				}
			}
		}
		return true
	})

	return sig
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
