// Package metrics computes the per-function attributes kept outside the
// call graph's own node metadata (a node carries only
// is_entry_point/is_test/cyclomatic/length): cognitive complexity,
// maximum nesting depth, and export visibility. These feed the debt
// classifier and the scoring pipeline's stage 3/9 alongside
// the graph rather than through it, mirroring how coverage and purity are
// also carried as side maps keyed by FunctionId.
package metrics

import "github.com/ingoeichhorst/debtgraph/pkg/model"

// FuncMetrics is one function's cognitive-complexity, nesting,
// visibility, and token-entropy evidence.
type FuncMetrics struct {
	Cognitive  int
	Nesting    int
	Visibility model.Visibility

	// TokenEntropy and PatternRepetition feed the scoring pipeline's
	// entropy-dampening stage; HasEntropy is false for
	// functions too small to yield a meaningful token stream (the stage
	// then runs undampened, matching "if entropy is available").
	TokenEntropy      float64
	PatternRepetition float64
	HasEntropy        bool
}
