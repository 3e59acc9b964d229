// Package correlate is the pattern-correlation / smart-filter post-pass:
// raw anti-pattern detections are re-examined against their
// surrounding context (test fixture? iterator chain? utility module?) and
// either suppressed, down-weighted, or boosted before they reach the final
// result set. Rules are registered independently so the correlation matrix
// can grow without touching callers.
package correlate

import (
	"fmt"
	"strings"

	"github.com/ingoeichhorst/debtgraph/pkg/model"
)

// ModuleType classifies the module a finding lives in, used by the
// severity-reduction and confidence-raising rules.
type ModuleType int

const (
	ModuleProduction ModuleType = iota
	ModuleTest
	ModuleUtility
	ModuleBenchmark
	ModuleExample
)

func (m ModuleType) String() string {
	switch m {
	case ModuleTest:
		return "test"
	case ModuleUtility:
		return "utility"
	case ModuleBenchmark:
		return "benchmark"
	case ModuleExample:
		return "example"
	default:
		return "production"
	}
}

// ClassifyModule decides a file's ModuleType from its path, using the same
// naming conventions the discovery classifier applies to individual files.
func ClassifyModule(file string) ModuleType {
	// A leading "/" lets a top-level directory ("bench/", "examples/")
	// match the same "/dir" checks as a nested one.
	lower := "/" + strings.ToLower(file)
	base := lower
	if idx := strings.LastIndex(lower, "/"); idx >= 0 {
		base = lower[idx+1:]
	}
	switch {
	case strings.HasSuffix(base, "_test.go"), strings.HasPrefix(base, "test_"), strings.HasSuffix(base, "_test.py"),
		strings.Contains(lower, "/test/"), strings.Contains(lower, "/tests/"):
		return ModuleTest
	case strings.Contains(lower, "/bench"), strings.HasPrefix(base, "bench"):
		return ModuleBenchmark
	case strings.Contains(lower, "/example"), strings.HasPrefix(base, "example"):
		return ModuleExample
	case strings.Contains(lower, "/util"), strings.Contains(lower, "/helpers"),
		strings.HasPrefix(base, "util"), strings.HasPrefix(base, "helpers"):
		return ModuleUtility
	default:
		return ModuleProduction
	}
}

// Context is everything a rule may consult about a raw finding's
// surroundings.
type Context struct {
	Item         model.UnifiedDebtItem
	ModuleType   ModuleType
	IsTest       bool
	InIterChain  bool // the finding sits inside a recognized iterator chain
	IsBusinessLogic bool
}

// Finding is a retained, context-adjusted anti-pattern detection.
type Finding struct {
	Pattern          model.DebtKind
	Context          string
	AdjustedSeverity float64
	Confidence       float64
	Reasoning        string
	Recommendation   string
}

// Outcome is a rule's verdict on one finding.
type Outcome int

const (
	OutcomeKeep Outcome = iota
	OutcomeSuppress
	OutcomeReduce
	OutcomeBoost
)

// Rule is one independent correlation rule. Rules run in registration
// order; the first non-Keep outcome wins.
type Rule struct {
	Name  string
	Apply func(Context) (Outcome, string)
}

const (
	reducedSeverityFactor = 0.5
	baseConfidence        = 0.7
	boostedConfidence     = 0.9
)

// DefaultRules returns the four rules, in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "blocking-io-in-test",
			Apply: func(c Context) (Outcome, string) {
				if c.Item.DebtType.Kind == model.DebtBlockingIO && c.IsTest {
					return OutcomeSuppress, "blocking I/O inside a test function is expected"
				}
				return OutcomeKeep, ""
			},
		},
		{
			Name: "allocation-in-iterator-chain",
			Apply: func(c Context) (Outcome, string) {
				if c.Item.DebtType.Kind == model.DebtAllocationInefficiency && c.InIterChain {
					return OutcomeSuppress, "allocation inside a recognized iterator chain"
				}
				return OutcomeKeep, ""
			},
		},
		{
			Name: "non-production-module",
			Apply: func(c Context) (Outcome, string) {
				switch c.ModuleType {
				case ModuleTest, ModuleUtility, ModuleBenchmark, ModuleExample:
					return OutcomeReduce, fmt.Sprintf("finding sits in a %s module", c.ModuleType)
				}
				return OutcomeKeep, ""
			},
		},
		{
			Name: "production-business-logic",
			Apply: func(c Context) (Outcome, string) {
				if c.ModuleType == ModuleProduction && c.IsBusinessLogic {
					return OutcomeBoost, "production business logic"
				}
				return OutcomeKeep, ""
			},
		},
	}
}

// Correlator applies a rule set to raw findings.
type Correlator struct {
	rules []Rule
}

// New builds a Correlator; a nil rule set falls back to DefaultRules.
func New(rules []Rule) *Correlator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Correlator{rules: rules}
}

// Apply runs the rule chain over one finding's context. A nil return means
// the finding was suppressed entirely.
func (c *Correlator) Apply(ctx Context) *Finding {
	severity := ctx.Item.Score.FinalScore
	confidence := baseConfidence
	reasoning := "no correlation rule matched"

	for _, rule := range c.rules {
		outcome, why := rule.Apply(ctx)
		switch outcome {
		case OutcomeKeep:
			continue
		case OutcomeSuppress:
			return nil
		case OutcomeReduce:
			severity *= reducedSeverityFactor
			reasoning = why
		case OutcomeBoost:
			confidence = boostedConfidence
			reasoning = why
		}
		break
	}

	return &Finding{
		Pattern:          ctx.Item.DebtType.Kind,
		Context:          ctx.ModuleType.String(),
		AdjustedSeverity: severity,
		Confidence:       confidence,
		Reasoning:        reasoning,
		Recommendation:   ctx.Item.Recommendation,
	}
}

// ApplyAll runs Apply over a batch, dropping suppressed findings.
func (c *Correlator) ApplyAll(ctxs []Context) []Finding {
	out := make([]Finding, 0, len(ctxs))
	for _, ctx := range ctxs {
		if f := c.Apply(ctx); f != nil {
			out = append(out, *f)
		}
	}
	return out
}
