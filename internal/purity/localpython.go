package purity

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingoeichhorst/debtgraph/internal/extract/shared"
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// ioCallNames are Python call targets (bare function name or attribute
// name) treated as I/O operations.
var ioCallNames = map[string]bool{
	"print": true, "open": true, "input": true,
	"get": true, "post": true, "put": true, "delete": true, "request": true,
	"connect": true, "socket": true, "system": true, "popen": true,
	"sleep": true, "read": true, "write": true, "recv": true, "send": true,
}

// AnalyzePython walks every parsed Python file's Tree-sitter CST, returning
// local purity signals keyed by FunctionId.String(), matching
// internal/extract/pyext's class-qualification rule for id construction.
func AnalyzePython(files []*parsefrontend.ParsedTreeSitterFile) map[string]LocalSignals {
	out := make(map[string]LocalSignals)
	for _, f := range files {
		root := f.Tree.RootNode()
		walkPyFunctions(root, f.Content, f.RelPath, "", out)
	}
	return out
}

func walkPyFunctions(node *tree_sitter.Node, content []byte, file, className string, out map[string]LocalSignals) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		nextClass := shared.NodeText(nameNode, content)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				walkPyFunctions(body.Child(i), content, file, nextClass, out)
			}
		}
		return
	case "decorated_definition":
		for i := uint(0); i < node.ChildCount(); i++ {
			walkPyFunctions(node.Child(i), content, file, className, out)
		}
		return
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		name := shared.NodeText(nameNode, content)
		qualified := name
		if className != "" {
			qualified = className + "." + name
		}
		line := int(node.StartPosition().Row) + 1
		id := model.FunctionId{File: file, Name: qualified, Line: line}
		out[id.String()] = analyzePyFuncBody(node, content)

		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				walkPyFunctions(body.Child(i), content, file, className, out)
			}
		}
	default:
		for i := uint(0); i < node.ChildCount(); i++ {
			walkPyFunctions(node.Child(i), content, file, className, out)
		}
	}
}

func analyzePyFuncBody(funcNode *tree_sitter.Node, content []byte) LocalSignals {
	var sig LocalSignals
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return sig
	}

	shared.WalkTree(body, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "assignment":
			left := n.ChildByFieldName("left")
			if left != nil && (left.Kind() == "attribute" || left.Kind() == "subscript") {
				sig.HasMutation = true
			}
		case "augmented_assignment":
			sig.HasMutation = true
		case "global_statement", "nonlocal_statement":
			sig.HasSideEffect = true
		case "call":
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			var name string
			switch fn.Kind() {
			case "identifier":
				name = shared.NodeText(fn, content)
			case "attribute":
				attr := fn.ChildByFieldName("attribute")
				name = shared.NodeText(attr, content)
			}
			if ioCallNames[name] {
				sig.HasIO = true
			}
			if name == "ctypes" {
				sig.HasUnsafe = true
			}
		}
	})

	return sig
}
