package model

// FileDebtItem is a file-level entry in an AnalysisResult (e.g. GodObject
// findings scoped to a type/file rather than a single function).
type FileDebtItem struct {
	File     string
	DebtType DebtType
	Score    UnifiedScore
	Tier     Tier
}

// FilterStats records what the single-stage filter dropped and why.
type FilterStats struct {
	TotalBeforeFilter      int
	DroppedBelowThreshold  int
	DroppedLowComplexity   int
	TotalAfterFilter       int
}

// Severity of a recorded diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is a recovered error or warning surfaced alongside results
// rather than aborting the run: unreadable file, resolution ambiguity,
// cache miss, structural issue.
type Diagnostic struct {
	File     string
	Severity Severity
	Reason   string
	Hint     string
}

// AnalysisResult is the root output of one analysis run. Function-
// and file-level items, aggregate totals, diagnostics, and filter
// statistics accumulate monotonically across phases; nothing is
// replaced once set.
type AnalysisResult struct {
	Version string

	FunctionItems []UnifiedDebtItem
	FileItems     []FileDebtItem

	TotalDebtScore   float64
	TotalLinesOfCode int

	OverallCoverage    float64
	HasOverallCoverage bool

	FilterStats FilterStats
	Diagnostics []Diagnostic
}

// DebtDensity is total_debt_score / LOC * 1000, 0 when LOC is 0.
func (r AnalysisResult) DebtDensity() float64 {
	if r.TotalLinesOfCode == 0 {
		return 0
	}
	return r.TotalDebtScore / float64(r.TotalLinesOfCode) * 1000
}

// ExitError carries a process exit code alongside a human-readable message.
// cmd.Execute unwraps it via errors.As and calls os.Exit(Code); any other
// error exits 1 with the error printed.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
