// Package discovery is the ambient file-discovery layer: it walks a
// project directory,
// applies .gitignore semantics, and classifies every file so the extractors
// in internal/extract only ever see source/test files for a known language.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// skipDirs lists directory names skipped entirely during walking (never
// recorded, not even as excluded).
var skipDirs = map[string]bool{
	".git":        true,
	"__pycache__": true,
	"dist":        true,
	"build":       true,
	".venv":       true,
	"venv":        true,
	"env":         true,
	".mypy_cache": true,
	".pytest_cache": true,
}

// langExtensions maps file extensions to the two languages debtgraph
// extracts call graphs for.
var langExtensions = map[string]model.Language{
	".go": model.LangGo,
	".py": model.LangPython,
}

// Walker discovers and classifies source files in a directory tree.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Discover walks rootDir recursively, finds all Go/Python files, classifies
// them (source/test/generated/excluded), and returns a ScanResult.
func (w *Walker) Discover(rootDir string) (*model.ScanResult, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("parse .gitignore: %w", err)
		}
	}

	result := &model.ScanResult{RootDir: rootDir}

	walkErr := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") && name != "." {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(name)
		lang, supported := langExtensions[ext]
		if !supported {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return nil
		}

		file := model.DiscoveredFile{Path: path, RelPath: relPath, Language: lang}

		if isVendorPath(relPath) {
			file.Class = model.ClassExcluded
			file.ExcludeReason = "vendor"
			result.Files = append(result.Files, file)
			result.ExcludedCount++
			result.TotalFiles++
			return nil
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			file.Class = model.ClassExcluded
			file.ExcludeReason = "gitignore"
			result.Files = append(result.Files, file)
			result.ExcludedCount++
			result.TotalFiles++
			return nil
		}

		if lang == model.LangGo {
			generated, err := IsGeneratedFile(path)
			if err == nil && generated {
				file.Class = model.ClassGenerated
				result.Files = append(result.Files, file)
				result.GeneratedCount++
				result.TotalFiles++
				return nil
			}
		}

		switch lang {
		case model.LangGo:
			file.Class = ClassifyGoFile(name)
		case model.LangPython:
			file.Class = ClassifyPythonFile(name)
		}

		result.Files = append(result.Files, file)
		result.TotalFiles++

		switch file.Class {
		case model.ClassSource:
			result.SourceCount++
		case model.ClassTest:
			result.TestCount++
		case model.ClassExcluded:
			result.ExcludedCount++
		}

		return nil
	})

	if walkErr != nil {
		return nil, fmt.Errorf("walk error: %w", walkErr)
	}

	return result, nil
}

// DetectProjectLanguages checks the project root for language indicators
// (go.mod/.go files, Python project files/.py files) and returns every
// language detected.
func DetectProjectLanguages(rootDir string) []model.Language {
	var langs []model.Language

	if fileExists(filepath.Join(rootDir, "go.mod")) || hasFileWithExt(rootDir, ".go") {
		langs = append(langs, model.LangGo)
	}

	pyIndicators := []string{"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt"}
	pyDetected := false
	for _, f := range pyIndicators {
		if fileExists(filepath.Join(rootDir, f)) {
			pyDetected = true
			break
		}
	}
	if !pyDetected {
		pyDetected = hasFileWithExt(rootDir, ".py")
	}
	if pyDetected {
		langs = append(langs, model.LangPython)
	}

	return langs
}

func isVendorPath(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if part == "vendor" {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func hasFileWithExt(dir string, ext string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ext {
			return true
		}
	}
	return false
}
