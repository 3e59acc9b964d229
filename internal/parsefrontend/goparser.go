// Package parsefrontend is the syntax-tree provider: it owns everything
// the analysis core stays out of,
// reading files and producing walkable trees. go/packages gives the Go
// extractor type-checked ASTs; TreeSitterParser gives the Python extractor
// CSTs. The core (internal/extract, internal/callgraph, ...) never reads
// source text itself except for the nested-function line-indexing pass
// the dynamic-language extractor needs.
package parsefrontend

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// ParsedPackage holds all analysis-relevant data for a single Go package
// loaded via go/packages.
type ParsedPackage struct {
	ID        string
	Name      string
	PkgPath   string
	GoFiles   []string
	Syntax    []*ast.File
	Fset      *token.FileSet
	Types     *types.Package
	TypesInfo *types.Info
	Imports   map[string]*packages.Package
	ForTest   string
}

// GoPackagesParser loads Go packages from a module directory using go/packages.
type GoPackagesParser struct{}

// Parse loads all packages in the given root directory. Packages that fail
// to type-check are reported via diagnostics rather than aborting the load;
// the caller (internal/pipeline) appends them to AnalysisResult.Diagnostics
// so a broken package degrades to a diagnostic instead of a failed run.
func (p *GoPackagesParser) Parse(rootDir string) ([]*ParsedPackage, []string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedForTest,
		Dir:   rootDir,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, nil, fmt.Errorf("packages.Load: %w", err)
	}

	seen := make(map[string]*ParsedPackage)
	var result []*ParsedPackage
	var warnings []string

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				warnings = append(warnings, fmt.Sprintf("package %s: %s", pkg.PkgPath, e))
			}
			if pkg.Types == nil || len(pkg.Syntax) == 0 {
				continue
			}
		}

		parsed := &ParsedPackage{
			ID:        pkg.ID,
			Name:      pkg.Name,
			PkgPath:   pkg.PkgPath,
			GoFiles:   pkg.GoFiles,
			Syntax:    pkg.Syntax,
			Fset:      pkg.Fset,
			Types:     pkg.Types,
			TypesInfo: pkg.TypesInfo,
			Imports:   pkg.Imports,
			ForTest:   pkg.ForTest,
		}

		if pkg.ForTest != "" {
			result = append(result, parsed)
			continue
		}
		if _, exists := seen[pkg.PkgPath]; !exists {
			seen[pkg.PkgPath] = parsed
			result = append(result, parsed)
		}
	}

	return result, warnings, nil
}
