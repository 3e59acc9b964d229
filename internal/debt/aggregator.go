// Package debt implements the debt aggregator and debt classifier
//: per-function running totals across five debt categories, folded
// into the scoring pipeline's debt-adjustment stage, and the decision tree
// that picks one primary DebtType per function from its metrics, graph
// position, and coverage state.
package debt

// Category is one of the five running-total buckets
type Category int

const (
	CategoryTesting Category = iota
	CategoryComplexity
	CategoryResource
	CategoryDuplication
	CategoryOrganization
	categoryCount
)

// Totals holds one function's running total per category.
type Totals struct {
	Testing      float64
	Complexity   float64
	Resource     float64
	Duplication  float64
	Organization float64
}

func (t *Totals) add(c Category, amount float64) {
	switch c {
	case CategoryTesting:
		t.Testing += amount
	case CategoryComplexity:
		t.Complexity += amount
	case CategoryResource:
		t.Resource += amount
	case CategoryDuplication:
		t.Duplication += amount
	case CategoryOrganization:
		t.Organization += amount
	}
}

// adjustmentDivisor is the "score / 50.0" scale factor for
// every category except complexity, which drives the scoring pipeline's
// base score directly rather than via the debt-adjustment stage.
const adjustmentDivisor = 50.0

// Aggregator folds per-function, per-category debt contributions across
// the whole analysis run.
type Aggregator struct {
	totals map[string]*Totals // FunctionId.String() -> totals
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{totals: make(map[string]*Totals)}
}

// Add records one additive contribution to a function's running total in
// the given category.
func (a *Aggregator) Add(functionKey string, c Category, amount float64) {
	t, ok := a.totals[functionKey]
	if !ok {
		t = &Totals{}
		a.totals[functionKey] = t
	}
	t.add(c, amount)
}

// Totals returns a function's accumulated totals, or the zero value if
// nothing was ever recorded.
func (a *Aggregator) Totals(functionKey string) Totals {
	if t, ok := a.totals[functionKey]; ok {
		return *t
	}
	return Totals{}
}

// DebtAdjustment implements scoring stage 10: the sum of every
// category total except complexity, each divided by 50, added to the
// normalized score.
func (t Totals) DebtAdjustment() float64 {
	return t.Testing/adjustmentDivisor + t.Resource/adjustmentDivisor +
		t.Duplication/adjustmentDivisor + t.Organization/adjustmentDivisor
}
