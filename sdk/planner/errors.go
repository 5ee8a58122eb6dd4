package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/world"
)

// SolverFailure is why a top-level solve did not reach the goal
// (spec.md §7). It is returned alongside the driver's counters so a
// caller never has to re-derive them.
type SolverFailure struct {
	Reason         SolverFailureReason
	ZeroRateReason string
	ExpandedNodes  int
	EnqueuedNodes  int
	BestCredits    int
}

// SolverFailureReason is the closed set of ways a solve can fail.
type SolverFailureReason uint8

const (
	ExpandedNodesExceeded SolverFailureReason = iota
	QueueSizeExceeded
	HeapExhausted
	ZeroRootRate
)

func (r SolverFailureReason) String() string {
	switch r {
	case ExpandedNodesExceeded:
		return "expanded_nodes_exceeded"
	case QueueSizeExceeded:
		return "queue_size_exceeded"
	case HeapExhausted:
		return "heap_exhausted"
	case ZeroRootRate:
		return "zero_root_rate"
	default:
		return "unknown"
	}
}

func (f SolverFailure) Error() string {
	if f.Reason == ZeroRootRate {
		return fmt.Sprintf("solve failed: %s (%s); expanded=%d enqueued=%d best_credits=%d",
			f.Reason, f.ZeroRateReason, f.ExpandedNodes, f.EnqueuedNodes, f.BestCredits)
	}
	return fmt.Sprintf("solve failed: %s; expanded=%d enqueued=%d best_credits=%d",
		f.Reason, f.ExpandedNodes, f.EnqueuedNodes, f.BestCredits)
}

// MacroOutcome is the macro expander's closed result set (spec.md §4.7).
type MacroOutcome interface {
	isMacroOutcome()
}

// MacroExpanded carries the result of a successful macro expansion.
type MacroExpanded struct {
	State               world.GameState
	TicksElapsed        int
	WaitFor             world.WaitFor
	Deaths              float64
	TriggeringCondition string
	Macro               world.MacroCandidate
}

// MacroAlreadySatisfied means the macro's target was already true.
type MacroAlreadySatisfied struct{ Reason string }

// MacroCannotExpand means the macro could not project a future; the
// caller skips that candidate.
type MacroCannotExpand struct{ Reason string }

// MacroNeedsPrerequisite asks the caller to substitute Prereq and retry.
type MacroNeedsPrerequisite struct{ Prereq world.MacroCandidate }

// MacroNeedsBoundary asks the caller to resolve Boundary and retry with
// the same macro.
type MacroNeedsBoundary struct{ Boundary ReplanBoundary }

func (MacroExpanded) isMacroOutcome()          {}
func (MacroAlreadySatisfied) isMacroOutcome()  {}
func (MacroCannotExpand) isMacroOutcome()      {}
func (MacroNeedsPrerequisite) isMacroOutcome() {}
func (MacroNeedsBoundary) isMacroOutcome()     {}

// ExecUnknown is returned by the prerequisite resolver when it cannot
// find a path to make an action executable (spec.md §7).
type ExecUnknown struct {
	Reason string
}

func (e ExecUnknown) Error() string { return fmt.Sprintf("cannot make action executable: %s", e.Reason) }

// ReplanBoundary is the closed sum of outcomes consume-until, the
// segment loop, and the replanning loop communicate between
// themselves (spec.md §7).
type ReplanBoundary interface {
	isReplanBoundary()
	// Category is the short label the replanning loop logs
	// (spec.md §4.10 step 6): planned | replan | recovery | expected | done | error | limit.
	Category() string
}

type BoundaryGoalReached struct{}
type BoundaryWaitConditionSatisfied struct{}
type BoundaryPlannedSegmentStop struct{}
type BoundaryUpgradeAffordableEarly struct{ Purchase string }
type BoundaryUnlockObserved struct{ Skill string; Level int }
type BoundaryUnexpectedUnlock struct{ Skill string; Level int }
type BoundaryInputsDepleted struct {
	Action      string
	MissingItem string
}
type BoundaryInventoryFull struct{}
type BoundaryInventoryPressure struct{}
type BoundaryDeath struct{}
type BoundaryNoProgressPossible struct{ Reason string }
type BoundaryCannotAfford struct{}
type BoundaryActionUnavailable struct{}
type BoundaryReplanLimitExceeded struct{ Limit int }
type BoundaryTimeBudgetExceeded struct {
	Limit  int
	Actual int
}

func (BoundaryGoalReached) isReplanBoundary()             {}
func (BoundaryWaitConditionSatisfied) isReplanBoundary()  {}
func (BoundaryPlannedSegmentStop) isReplanBoundary()      {}
func (BoundaryUpgradeAffordableEarly) isReplanBoundary()  {}
func (BoundaryUnlockObserved) isReplanBoundary()          {}
func (BoundaryUnexpectedUnlock) isReplanBoundary()        {}
func (BoundaryInputsDepleted) isReplanBoundary()          {}
func (BoundaryInventoryFull) isReplanBoundary()           {}
func (BoundaryInventoryPressure) isReplanBoundary()       {}
func (BoundaryDeath) isReplanBoundary()                   {}
func (BoundaryNoProgressPossible) isReplanBoundary()      {}
func (BoundaryCannotAfford) isReplanBoundary()            {}
func (BoundaryActionUnavailable) isReplanBoundary()       {}
func (BoundaryReplanLimitExceeded) isReplanBoundary()     {}
func (BoundaryTimeBudgetExceeded) isReplanBoundary()      {}

func (BoundaryGoalReached) Category() string            { return "done" }
func (BoundaryWaitConditionSatisfied) Category() string { return "expected" }
func (BoundaryPlannedSegmentStop) Category() string     { return "planned" }
func (BoundaryUpgradeAffordableEarly) Category() string { return "replan" }
func (BoundaryUnlockObserved) Category() string         { return "replan" }
func (BoundaryUnexpectedUnlock) Category() string       { return "replan" }
func (BoundaryInputsDepleted) Category() string         { return "replan" }
func (BoundaryInventoryFull) Category() string          { return "replan" }
func (BoundaryInventoryPressure) Category() string      { return "replan" }
func (BoundaryDeath) Category() string                  { return "recovery" }
func (BoundaryNoProgressPossible) Category() string     { return "error" }
func (BoundaryCannotAfford) Category() string            { return "error" }
func (BoundaryActionUnavailable) Category() string       { return "error" }
func (BoundaryReplanLimitExceeded) Category() string     { return "limit" }
func (BoundaryTimeBudgetExceeded) Category() string      { return "limit" }
