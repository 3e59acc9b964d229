// Package workflow implements the analysis-run state machine:
// a fixed, monotonically-advancing sequence of phases from
// Initialized through Complete, with progress-percentage and five-stage
// TUI groupings derived from the phase, used to drive a terminal progress
// indicator without the renderer needing to know the internal phase list.
package workflow

import "fmt"

// Phase is one state in the fixed workflow sequence.
type Phase int

const (
	Initialized Phase = iota
	CallGraphBuilding
	CallGraphComplete
	CoverageLoading
	CoverageComplete
	PurityAnalyzing
	PurityComplete
	ContextLoading
	ContextComplete
	ScoringInProgress
	ScoringComplete
	FilteringInProgress
	Complete
	phaseCount
)

var phaseNames = [...]string{
	"Initialized", "CallGraphBuilding", "CallGraphComplete", "CoverageLoading",
	"CoverageComplete", "PurityAnalyzing", "PurityComplete", "ContextLoading",
	"ContextComplete", "ScoringInProgress", "ScoringComplete",
	"FilteringInProgress", "Complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}
	return phaseNames[p]
}

// ProgressPercent maps a phase to its completion percentage, evenly
// dividing the thirteen-phase sequence. An even split is the documented
// default; see DESIGN.md.
func (p Phase) ProgressPercent() int {
	if p < 0 {
		return 0
	}
	if p >= Complete {
		return 100
	}
	return int(float64(p) / float64(Complete) * 100)
}

// TUIStage is one of the five user-visible groupings the terminal
// renderer shows in place of the full thirteen-phase detail.
type TUIStage int

const (
	StageDiscovery TUIStage = iota
	StageCallGraph
	StageCoverage
	StageAnalysis
	StageScoring
)

func (s TUIStage) String() string {
	switch s {
	case StageCallGraph:
		return "Building call graph"
	case StageCoverage:
		return "Loading coverage"
	case StageAnalysis:
		return "Analyzing purity and context"
	case StageScoring:
		return "Scoring and filtering"
	default:
		return "Discovering files"
	}
}

// TUIStageIndex maps a Phase to its five-stage grouping.
func (p Phase) TUIStageIndex() TUIStage {
	switch p {
	case Initialized:
		return StageDiscovery
	case CallGraphBuilding, CallGraphComplete:
		return StageCallGraph
	case CoverageLoading, CoverageComplete:
		return StageCoverage
	case PurityAnalyzing, PurityComplete, ContextLoading, ContextComplete:
		return StageAnalysis
	default:
		return StageScoring
	}
}

// next defines the single legal successor for each phase; Complete has
// none.
var next = map[Phase]Phase{
	Initialized:          CallGraphBuilding,
	CallGraphBuilding:     CallGraphComplete,
	CallGraphComplete:     CoverageLoading,
	CoverageLoading:       CoverageComplete,
	CoverageComplete:      PurityAnalyzing,
	PurityAnalyzing:       PurityComplete,
	PurityComplete:        ContextLoading,
	ContextLoading:        ContextComplete,
	ContextComplete:       ScoringInProgress,
	ScoringInProgress:     ScoringComplete,
	ScoringComplete:       FilteringInProgress,
	FilteringInProgress:   Complete,
}

// ErrInvalidTransition is returned by Machine.Advance when asked to move
// to anything other than the single legal next phase.
type ErrInvalidTransition struct {
	From, To Phase
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("workflow: cannot advance from %s to %s", e.From, e.To)
}

// Machine tracks the current phase of one analysis run. Transitions are
// monotone: there is no rollback, and Advance only ever accepts the one
// legal successor of the current phase.
type Machine struct {
	current Phase
}

// NewMachine creates a Machine in the Initialized phase.
func NewMachine() *Machine {
	return &Machine{current: Initialized}
}

// Current returns the machine's current phase.
func (m *Machine) Current() Phase {
	return m.current
}

// Advance moves the machine to the given phase if it is the single legal
// successor of the current phase; otherwise it returns
// ErrInvalidTransition and leaves the machine unchanged.
func (m *Machine) Advance(to Phase) error {
	want, ok := next[m.current]
	if !ok || want != to {
		return &ErrInvalidTransition{From: m.current, To: to}
	}
	m.current = to
	return nil
}

// Done reports whether the machine has reached Complete.
func (m *Machine) Done() bool {
	return m.current == Complete
}
