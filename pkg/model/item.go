package model

import (
	"fmt"
	"strings"
)

// Location keys a debt item: the file, the function name within it, and the
// line its definition starts on.
type Location struct {
	File     string
	Function string
	Line     int
}

// String renders "file:function:line", the key format used throughout
// comparison and filter diagnostics.
func (l Location) String() string {
	return fmt.Sprintf("%s:%s:%d", l.File, l.Function, l.Line)
}

// NormalizedFile strips a leading "./" from File, matching the comparator's
// key-matching rule.
func (l Location) NormalizedFile() string {
	return strings.TrimPrefix(l.File, "./")
}

// DependencyRef names an upstream caller or downstream callee by location,
// used to populate a UnifiedDebtItem's dependency lists without re-walking
// the call graph.
type DependencyRef struct {
	FunctionId FunctionId
	Name       string
}

// UnifiedDebtItem is the per-function record produced once in the scoring
// phase. Once built it is immutable: filtering may drop it from the
// result set but must never mutate it.
type UnifiedDebtItem struct {
	Location Location

	DebtType DebtType
	Score    UnifiedScore
	Role     FunctionRole

	Recommendation    string
	ExpectedImpact    ImpactMetrics
	Coverage          TransitiveCoverage

	UpstreamCount   int
	UpstreamNames   []DependencyRef
	DownstreamCount int
	DownstreamNames []DependencyRef

	Cyclomatic int
	Cognitive  int
	Length     int
	Nesting    int

	IsPure       bool
	PurityLevel  PurityLevel

	GodObjectMethods          int
	GodObjectFields           int
	GodObjectResponsibilities int

	Tier Tier

	ContextSuggestion string
	HasContextSuggestion bool

	// LanguageData holds extractor-specific evidence (e.g. Python
	// decorator names, Go receiver type) that doesn't generalize across
	// languages but is useful for recommendation text.
	LanguageData map[string]string
}
