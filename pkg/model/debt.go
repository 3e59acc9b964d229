package model

// DebtKind enumerates the closed set of debt-type variants a function can be
// classified into. Exactly one variant is chosen per function by the
// classifier; the payload fields below are populated only for the active kind.
type DebtKind int

const (
	DebtTodo DebtKind = iota
	DebtFixme
	DebtTestingGap
	DebtComplexityHotspot
	DebtDeadCode
	DebtDuplication
	DebtErrorSwallowing
	DebtBlockingIO
	DebtNestedLoops
	DebtAllocationInefficiency
	DebtStringConcatenation
	DebtSuboptimalDataStructure
	DebtGodObject
	DebtFeatureEnvy
	DebtPrimitiveObsession
	DebtMagicValues
	DebtAssertionComplexity
	DebtFlakyTestPattern
	DebtAsyncMisuse
	DebtResourceLeak
	DebtCollectionInefficiency
	DebtScatteredType
	DebtOrphanedFunctions
	DebtUtilitiesSprawl
	DebtTestComplexityHotspot
	DebtTestTodo
	DebtTestDuplication
	DebtRisk
)

// String is the deterministic Display name for a DebtKind, tested to be
// non-empty and at least 3 characters for every variant.
func (k DebtKind) String() string {
	switch k {
	case DebtTodo:
		return "Todo"
	case DebtFixme:
		return "Fixme"
	case DebtTestingGap:
		return "TestingGap"
	case DebtComplexityHotspot:
		return "ComplexityHotspot"
	case DebtDeadCode:
		return "DeadCode"
	case DebtDuplication:
		return "Duplication"
	case DebtErrorSwallowing:
		return "ErrorSwallowing"
	case DebtBlockingIO:
		return "BlockingIO"
	case DebtNestedLoops:
		return "NestedLoops"
	case DebtAllocationInefficiency:
		return "AllocationInefficiency"
	case DebtStringConcatenation:
		return "StringConcatenation"
	case DebtSuboptimalDataStructure:
		return "SuboptimalDataStructure"
	case DebtGodObject:
		return "GodObject"
	case DebtFeatureEnvy:
		return "FeatureEnvy"
	case DebtPrimitiveObsession:
		return "PrimitiveObsession"
	case DebtMagicValues:
		return "MagicValues"
	case DebtAssertionComplexity:
		return "AssertionComplexity"
	case DebtFlakyTestPattern:
		return "FlakyTestPattern"
	case DebtAsyncMisuse:
		return "AsyncMisuse"
	case DebtResourceLeak:
		return "ResourceLeak"
	case DebtCollectionInefficiency:
		return "CollectionInefficiency"
	case DebtScatteredType:
		return "ScatteredType"
	case DebtOrphanedFunctions:
		return "OrphanedFunctions"
	case DebtUtilitiesSprawl:
		return "UtilitiesSprawl"
	case DebtTestComplexityHotspot:
		return "TestComplexityHotspot"
	case DebtTestTodo:
		return "TestTodo"
	case DebtTestDuplication:
		return "TestDuplication"
	case DebtRisk:
		return "Risk"
	default:
		return "Unknown"
	}
}

// TestingGapEvidence carries the numeric evidence for a DebtTestingGap.
type TestingGapEvidence struct {
	Coverage   float64
	Cyclomatic int
	Cognitive  int
}

// ComplexityHotspotEvidence carries the numeric evidence for a
// DebtComplexityHotspot / DebtTestComplexityHotspot.
type ComplexityHotspotEvidence struct {
	Cyclomatic int
	Cognitive  int
}

// DeadCodeEvidence carries the numeric evidence for a DebtDeadCode.
type DeadCodeEvidence struct {
	Visibility Visibility
	Cyclomatic int
	Cognitive  int
	UsageHints []string
}

// DuplicationEvidence carries the numeric evidence for DebtDuplication /
// DebtTestDuplication.
type DuplicationEvidence struct {
	Instances  int
	TotalLines int
}

// ErrorSwallowingEvidence preserves the offending pattern text and its
// surrounding context for a DebtErrorSwallowing.
type ErrorSwallowingEvidence struct {
	Pattern string
	Context string
}

// NestedLoopsEvidence carries the numeric evidence for a DebtNestedLoops.
type NestedLoopsEvidence struct {
	Depth              int
	ComplexityEstimate int
}

// GodObjectEvidence carries the numeric evidence for a DebtGodObject.
type GodObjectEvidence struct {
	Methods          int
	Fields           int
	Responsibilities int
	Score            float64
	Lines            int
}

// DebtType is a closed tagged sum. Kind selects which of the evidence
// fields, if any, is populated; unrelated fields are left zero.
type DebtType struct {
	Kind DebtKind

	TestingGap         TestingGapEvidence
	ComplexityHotspot  ComplexityHotspotEvidence
	DeadCode           DeadCodeEvidence
	Duplication        DuplicationEvidence
	ErrorSwallowing    ErrorSwallowingEvidence
	NestedLoops        NestedLoopsEvidence
	GodObject          GodObjectEvidence
	RiskScore          float64
}

// String delegates to the Kind's Display name.
func (d DebtType) String() string {
	return d.Kind.String()
}
