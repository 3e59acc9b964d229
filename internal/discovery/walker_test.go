package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverClassifiesGoAndPython(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "main_test.go", "package main\n")
	writeFile(t, dir, "app.py", "def f(): pass\n")
	writeFile(t, dir, "test_app.py", "def test_f(): pass\n")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, dir, "zz_generated.go", "// Code generated by foo. DO NOT EDIT.\npackage main\n")

	w := NewWalker()
	result, err := w.Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if result.SourceCount != 2 {
		t.Errorf("SourceCount = %d, want 2 (main.go, app.py)", result.SourceCount)
	}
	if result.TestCount != 2 {
		t.Errorf("TestCount = %d, want 2", result.TestCount)
	}
	if result.GeneratedCount != 1 {
		t.Errorf("GeneratedCount = %d, want 1", result.GeneratedCount)
	}
	if result.ExcludedCount != 1 {
		t.Errorf("ExcludedCount = %d, want 1 (vendor)", result.ExcludedCount)
	}
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "ignored/\n")
	writeFile(t, dir, "ignored/skip.go", "package ignored\n")
	writeFile(t, dir, "kept.go", "package main\n")

	w := NewWalker()
	result, err := w.Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	for _, f := range result.Files {
		if f.RelPath == filepath.Join("ignored", "skip.go") && f.Class != model.ClassExcluded {
			t.Errorf("expected ignored/skip.go to be excluded, got %v", f.Class)
		}
	}
}

func TestDetectProjectLanguages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module x\n")
	writeFile(t, dir, "requirements.txt", "flask\n")

	langs := DetectProjectLanguages(dir)
	found := map[model.Language]bool{}
	for _, l := range langs {
		found[l] = true
	}
	if !found[model.LangGo] || !found[model.LangPython] {
		t.Errorf("expected Go and Python detected, got %v", langs)
	}
}
