// Package shared holds utilities common to both per-language extractors
// (internal/extract/goext, internal/extract/pyext): import-graph building
// for the cross-module resolver, and Tree-sitter tree-walking helpers.
package shared

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
)

// ImportGraph holds forward and reverse adjacency lists for intra-module
// imports, feeding the cross-module resolver's module-boundary discovery
// and the dependency-factor stage of scoring.
type ImportGraph struct {
	Forward map[string][]string // package -> packages it imports (efferent)
	Reverse map[string][]string // package -> packages that import it (afferent)
}

// BuildImportGraph constructs an import graph from parsed Go packages,
// filtering to intra-module imports (those with the given module path
// prefix).
func BuildImportGraph(pkgs []*parsefrontend.ParsedPackage, modulePath string) *ImportGraph {
	g := &ImportGraph{
		Forward: make(map[string][]string),
		Reverse: make(map[string][]string),
	}

	for _, pkg := range pkgs {
		if pkg.ForTest != "" {
			continue
		}
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, modulePath) {
				g.Forward[pkg.PkgPath] = append(g.Forward[pkg.PkgPath], importPath)
				g.Reverse[importPath] = append(g.Reverse[importPath], pkg.PkgPath)
			}
		}
	}

	return g
}

// WalkTree walks a Tree-sitter tree depth-first, calling fn for each node.
func WalkTree(node *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			WalkTree(child, fn)
		}
	}
}

// NodeText extracts the text content of a Tree-sitter node.
func NodeText(node *tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// CountLines counts lines in source content.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	count := 1
	for _, b := range content {
		if b == '\n' {
			count++
		}
	}
	return count
}

// IsPythonTestFileByPath reports whether a file path names a Python test
// module by convention (pytest/unittest discovery rules): `test_*.py`,
// `*_test.py`, or `conftest.py`.
func IsPythonTestFileByPath(path string) bool {
	base := strings.ToLower(path)
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.py") ||
		base == "conftest.py"
}
