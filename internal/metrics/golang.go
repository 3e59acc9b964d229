package metrics

import (
	"go/ast"
	"unicode"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// GoCognitiveAndNesting walks a function body computing cognitive
// complexity (Sonar-style: +1 per control-flow construct, +1 more per
// level of nesting it sits at) and the maximum nesting depth reached.
// Nested FuncLits and FuncDecls are not descended into; they are scored as
// their own functions.
func GoCognitiveAndNesting(body ast.Stmt) (cognitive, nesting int) {
	var walk func(n ast.Node, depth int)
	walk = func(n ast.Node, depth int) {
		if n == nil {
			return
		}
		switch node := n.(type) {
		case *ast.FuncLit:
			return
		case *ast.IfStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Init, depth)
			walk(node.Cond, depth)
			walk(node.Body, depth+1)
			if node.Else != nil {
				if _, isElseIf := node.Else.(*ast.IfStmt); isElseIf {
					// else-if chains add complexity without an extra nesting bump.
					cognitive++
					walk(node.Else, depth)
				} else {
					cognitive++
					walk(node.Else, depth+1)
				}
			}
		case *ast.ForStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Body, depth+1)
		case *ast.RangeStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Body, depth+1)
		case *ast.SwitchStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Body, depth+1)
		case *ast.TypeSwitchStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Body, depth+1)
		case *ast.SelectStmt:
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			walk(node.Body, depth+1)
		case *ast.CaseClause:
			for _, stmt := range node.Body {
				walk(stmt, depth)
			}
		case *ast.CommClause:
			for _, stmt := range node.Body {
				walk(stmt, depth)
			}
		case *ast.BinaryExpr:
			if node.Op.String() == "&&" || node.Op.String() == "||" {
				cognitive++
			}
			walk(node.X, depth)
			walk(node.Y, depth)
		case *ast.BlockStmt:
			for _, stmt := range node.List {
				walk(stmt, depth)
			}
		case *ast.GoStmt:
			walk(node.Call, depth)
		case *ast.DeferStmt:
			walk(node.Call, depth)
		default:
			ast.Inspect(n, func(child ast.Node) bool {
				if child == n || child == nil {
					return true
				}
				switch child.(type) {
				case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt,
					*ast.TypeSwitchStmt, *ast.SelectStmt, *ast.FuncLit, *ast.BinaryExpr:
					walk(child, depth)
					return false
				}
				return true
			})
		}
	}
	walk(body, 0)
	return cognitive, nesting
}

// GoTokens collects the identifier and keyword-operator token stream of a
// function body for entropy analysis, skipping nested FuncLit bodies (they
// are tokenized separately as their own functions).
func GoTokens(body ast.Stmt) []string {
	var tokens []string
	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.Ident:
			tokens = append(tokens, node.Name)
		case *ast.BasicLit:
			tokens = append(tokens, node.Kind.String())
		case *ast.BinaryExpr:
			tokens = append(tokens, node.Op.String())
		}
		return true
	})
	return tokens
}

// GoVisibility classifies a bare (unqualified) Go identifier's export
// status per the language's own capitalization convention.
func GoVisibility(bareName string) model.Visibility {
	if bareName == "" {
		return model.VisPrivate
	}
	r := []rune(bareName)[0]
	if unicode.IsUpper(r) {
		return model.VisPublic
	}
	return model.VisPrivate
}
