package pipeline

import (
	"github.com/ingoeichhorst/debtgraph/internal/parsefrontend"
	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// goParser abstracts the Go syntax-tree provider so tests can substitute a
// canned package set for a real go/packages load.
type goParser interface {
	Parse(rootDir string) ([]*parsefrontend.ParsedPackage, []string, error)
}

// pythonParser abstracts the Tree-sitter provider the same way.
type pythonParser interface {
	ParseTargetFiles(target *model.AnalysisTarget) ([]*parsefrontend.ParsedTreeSitterFile, error)
	Close()
}
