package metrics

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// nestingKinds are the Python compound statements that both add a
// cognitive-complexity point and increase nesting depth for their body.
var nestingKinds = map[string]bool{
	"if_statement": true, "elif_clause": true, "for_statement": true,
	"while_statement": true, "try_statement": true, "except_clause": true,
	"with_statement": true,
}

// PyCognitiveAndNesting walks a function's body computing cognitive
// complexity and maximum nesting depth. Nested function/class/lambda
// bodies are not descended into.
func PyCognitiveAndNesting(body *tree_sitter.Node) (cognitive, nesting int) {
	var walk func(n *tree_sitter.Node, depth int)
	walk = func(n *tree_sitter.Node, depth int) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "function_definition" || kind == "class_definition" || kind == "lambda" {
			return
		}

		childDepth := depth
		if nestingKinds[kind] {
			cognitive += 1 + depth
			if depth > nesting {
				nesting = depth
			}
			childDepth = depth + 1
		} else if kind == "boolean_operator" {
			cognitive++
		}

		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i), childDepth)
		}
	}
	walk(body, 0)
	return cognitive, nesting
}

// tokenKinds are the tree-sitter node kinds treated as entropy tokens:
// identifiers, literals, and the keyword-like operator node kinds.
var tokenKinds = map[string]bool{
	"identifier": true, "integer": true, "float": true, "string": true,
	"true": true, "false": true, "none": true,
	"boolean_operator": true, "comparison_operator": true,
}

// PyTokens collects the identifier/literal/operator token stream of a
// function body for entropy analysis, skipping nested def/class/lambda
// bodies.
func PyTokens(body *tree_sitter.Node) []string {
	var tokens []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "function_definition" || kind == "class_definition" || kind == "lambda" {
			return
		}
		if tokenKinds[kind] {
			tokens = append(tokens, kind)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return tokens
}

// PyVisibility classifies a bare Python name's visibility by the
// underscore-prefix convention: a single leading underscore is
// module/class-private by convention, no prefix is public.
func PyVisibility(bareName string) model.Visibility {
	if strings.HasPrefix(bareName, "_") {
		return model.VisPrivate
	}
	return model.VisPublic
}
