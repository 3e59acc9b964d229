package traits

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingoeichhorst/debtgraph/internal/extract/shared"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// protocolDunders are dunder methods that, taken together, signal a class
// participates in a recognized Python protocol (duck-typed analog of a
// Rust trait): iterator, context manager, comparison, representation.
var protocolDunders = map[string]string{
	"__iter__": "Iterator", "__next__": "Iterator",
	"__enter__": "ContextManager", "__exit__": "ContextManager",
	"__eq__": "Comparable", "__lt__": "Comparable",
	"__repr__": "Display", "__str__": "Display",
	"__init__": "Constructible",
}

// BuildFromPython constructs a Registry from parsed Python files: for each
// class, its method table is recorded, and any dunder method that matches
// protocolDunders registers the class as an implementor of that protocol.
func BuildFromPython(files []*parsefrontend.ParsedTreeSitterFile) *Registry {
	reg := NewRegistry()
	for _, f := range files {
		root := f.Tree.RootNode()
		walkClasses(root, f.Content, f.RelPath, reg)
	}
	return reg
}

func walkClasses(node *tree_sitter.Node, content []byte, file string, reg *Registry) {
	if node == nil {
		return
	}
	if node.Kind() == "class_definition" {
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		className := shared.NodeText(nameNode, content)
		body := node.ChildByFieldName("body")
		if body != nil {
			walkClassBody(body, content, file, className, reg)
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkClasses(node.Child(i), content, file, reg)
	}
}

func walkClassBody(node *tree_sitter.Node, content []byte, file, className string, reg *Registry) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		fn := child
		if fn.Kind() == "decorated_definition" {
			for j := uint(0); j < fn.ChildCount(); j++ {
				if inner := fn.Child(j); inner != nil && inner.Kind() == "function_definition" {
					fn = inner
					break
				}
			}
		}
		if fn.Kind() != "function_definition" {
			continue
		}
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methodName := shared.NodeText(nameNode, content)
		line := int(fn.StartPosition().Row) + 1
		id := model.FunctionId{File: file, Name: className + "." + methodName, Line: line}
		reg.RegisterImpl(className, methodName, id)

		if proto, ok := protocolDunders[methodName]; ok {
			reg.RegisterTraitImpl(proto, className)
		}
	}
}
