package cache

import (
	"testing"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPurityRoundTrip(t *testing.T) {
	s := openStore(t)
	id := model.FunctionId{File: "a.go", Name: "f", Line: 10}
	entry := PurityEntry{Result: model.LocallyPure, SourceHash: "abc", DepsHash: "dep", FileMtime: 42}

	if err := s.PutPurity(id, entry); err != nil {
		t.Fatalf("PutPurity: %v", err)
	}

	got, ok := s.GetPurity(id, "abc", "dep")
	if !ok {
		t.Fatal("expected a hit for matching hashes")
	}
	if got.Result != model.LocallyPure || got.FileMtime != 42 {
		t.Errorf("entry = %+v, want the stored values", got)
	}
}

func TestPurityStaleHashMisses(t *testing.T) {
	s := openStore(t)
	id := model.FunctionId{File: "a.go", Name: "f", Line: 10}
	entry := PurityEntry{Result: model.Impure, SourceHash: "abc", DepsHash: "dep"}
	if err := s.PutPurity(id, entry); err != nil {
		t.Fatalf("PutPurity: %v", err)
	}

	if _, ok := s.GetPurity(id, "changed", "dep"); ok {
		t.Error("changed source hash should miss")
	}
	if _, ok := s.GetPurity(id, "abc", "changed"); ok {
		t.Error("changed deps hash should miss")
	}
	if _, ok := s.GetPurity(model.FunctionId{File: "b.go", Name: "g", Line: 1}, "abc", "dep"); ok {
		t.Error("unknown function should miss")
	}
}

func TestCallGraphRoundTrip(t *testing.T) {
	s := openStore(t)
	entry := CallGraphEntry{
		SerializedGraph:    []byte(`{"nodes":[]}`),
		SourceFiles:        []string{"a.go", "b.go"},
		TimestampUnixMilli: 1000,
	}
	if err := s.PutCallGraph("deadbeef", entry); err != nil {
		t.Fatalf("PutCallGraph: %v", err)
	}

	got, ok := s.GetCallGraph("deadbeef")
	if !ok {
		t.Fatal("expected a hit")
	}
	if len(got.SourceFiles) != 2 || got.TimestampUnixMilli != 1000 {
		t.Errorf("entry = %+v, want stored values", got)
	}

	if _, ok := s.GetCallGraph("otherhash"); ok {
		t.Error("unknown key should miss")
	}
}

func TestClearAll(t *testing.T) {
	s := openStore(t)
	id := model.FunctionId{File: "a.go", Name: "f", Line: 10}
	if err := s.PutPurity(id, PurityEntry{Result: model.Impure, SourceHash: "h", DepsHash: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutCallGraph("k", CallGraphEntry{}); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, ok := s.GetPurity(id, "h", "d"); ok {
		t.Error("purity entry survived ClearAll")
	}
	if _, ok := s.GetCallGraph("k"); ok {
		t.Error("call graph entry survived ClearAll")
	}
}
