package parsefrontend

import (
	"fmt"
	"os"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// ParsedTreeSitterFile holds a parsed Tree-sitter syntax tree with its
// source content. Callers must call Tree.Close() (or use CloseAll) when done.
type ParsedTreeSitterFile struct {
	Path     string
	RelPath  string
	Tree     *tree_sitter.Tree
	Content  []byte
	Language model.Language
}

// TreeSitterParser holds a pooled Tree-sitter parser for Python. Tree-sitter
// parsers are not thread-safe, so parse operations are serialized via a
// mutex; trees returned from parsing are safe to use concurrently afterward.
type TreeSitterParser struct {
	mu           sync.Mutex
	pythonParser *tree_sitter.Parser
}

// NewTreeSitterParser creates the pooled Python parser.
func NewTreeSitterParser() (*TreeSitterParser, error) {
	pyParser := tree_sitter.NewParser()
	pyLang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := pyParser.SetLanguage(pyLang); err != nil {
		pyParser.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}

	return &TreeSitterParser{pythonParser: pyParser}, nil
}

// Close releases parser resources. Must be called when done.
func (p *TreeSitterParser) Close() {
	if p.pythonParser != nil {
		p.pythonParser.Close()
	}
}

// ParseFile parses source content for the given language. Returns a Tree
// the caller must close. Thread-safe; parsing is serialized internally.
func (p *TreeSitterParser) ParseFile(lang model.Language, content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lang != model.LangPython {
		return nil, fmt.Errorf("unsupported language for Tree-sitter: %s", lang)
	}

	tree := p.pythonParser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}

// ParseTargetFiles parses every source/test file in an AnalysisTarget.
// Callers must close all returned trees (use CloseAll).
func (p *TreeSitterParser) ParseTargetFiles(target *model.AnalysisTarget) ([]*ParsedTreeSitterFile, error) {
	if target.Language != model.LangPython {
		return nil, fmt.Errorf("ParseTargetFiles only supports Python; got %s", target.Language)
	}

	var results []*ParsedTreeSitterFile
	for _, sf := range target.Files {
		if sf.Class != model.ClassSource && sf.Class != model.ClassTest {
			continue
		}

		content, err := os.ReadFile(sf.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sf.RelPath, err)
		}

		tree, err := p.ParseFile(target.Language, content)
		if err != nil {
			CloseAll(results)
			return nil, fmt.Errorf("parse %s: %w", sf.RelPath, err)
		}

		results = append(results, &ParsedTreeSitterFile{
			Path:     sf.Path,
			RelPath:  sf.RelPath,
			Tree:     tree,
			Content:  content,
			Language: target.Language,
		})
	}

	return results, nil
}

// CloseAll closes every tree in a slice of ParsedTreeSitterFile. Safe to call
// with nil or empty input.
func CloseAll(files []*ParsedTreeSitterFile) {
	for _, f := range files {
		if f != nil && f.Tree != nil {
			f.Tree.Close()
		}
	}
}
