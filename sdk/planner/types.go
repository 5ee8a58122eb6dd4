package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/world"
)

// PlanStep is one step of a reconstructed Plan (spec.md §3).
type PlanStep interface {
	isPlanStep()
}

// StepInteraction is a zero-time step.
type StepInteraction struct {
	Action world.Interaction
}

// StepWait is a single wait edge of ExpectedTicks, sized by the
// next-decision-delta analysis.
type StepWait struct {
	Ticks          int
	WaitFor        world.WaitFor
	ExpectedAction world.ActionID
}

// StepMacro is a macro edge that ran until its composite WaitFor
// triggered.
type StepMacro struct {
	Macro        world.MacroCandidate
	TicksPlanned int
	WaitFor      world.WaitFor
}

func (StepInteraction) isPlanStep() {}
func (StepWait) isPlanStep()        {}
func (StepMacro) isPlanStep()       {}

// BucketKey is the goal-scoped equivalence class the Pareto frontier
// prunes over (spec.md §3). It intentionally excludes effective
// credits — the state-key used for best-ticks bookkeeping is finer
// (see ComputeStateKey).
type BucketKey struct {
	ActivityName   world.ActionID
	SkillLevels    map[world.SkillID]int
	AxeLevel       int
	RodLevel       int
	PickLevel      int
	HPBucket       int
	MasteryLevel   int
	InventoryBucket int
	InputItemMix   uint64
}

// String renders a BucketKey as a stable map key. Skill levels are
// sorted by id so the string is independent of map iteration order,
// preserving the determinism contract (spec.md §5).
func (k BucketKey) String() string {
	skills := make([]world.SkillID, 0, len(k.SkillLevels))
	for id := range k.SkillLevels {
		skills = append(skills, id)
	}
	sortSkillIDs(skills)

	s := fmt.Sprintf("a=%s|axe=%d|rod=%d|pick=%d|hp=%d|mast=%d|inv=%d|mix=%d",
		k.ActivityName, k.AxeLevel, k.RodLevel, k.PickLevel, k.HPBucket, k.MasteryLevel, k.InventoryBucket, k.InputItemMix)
	for _, id := range skills {
		s += fmt.Sprintf("|%s=%d", id, k.SkillLevels[id])
	}
	return s
}

func sortSkillIDs(ids []world.SkillID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// FrontierPoint is a single (ticks, progress) sample in a Pareto
// frontier bucket (spec.md §3).
type FrontierPoint struct {
	Ticks    int
	Progress int
}

// Dominates reports whether p dominates other: p.Ticks <= other.Ticks
// and p.Progress >= other.Progress, with at least one strict.
func (p FrontierPoint) Dominates(other FrontierPoint) bool {
	if p.Ticks > other.Ticks || p.Progress < other.Progress {
		return false
	}
	return p.Ticks < other.Ticks || p.Progress > other.Progress
}

// Node is one entry in the A* driver's append-only arena (spec.md
// §3/§4.8). Edges exist only as ParentID pointers from child to
// parent; there is no other graph structure.
type Node struct {
	State            world.GameState
	TicksSoFar       int
	InteractionsSoFar int
	ParentID         int // -1 for the root
	StepFromParent   PlanStep
	ExpectedDeaths   float64
}

// Plan is the reconstructed output of a successful solve (spec.md §3).
type Plan struct {
	Steps            []PlanStep
	TotalTicks       int
	InteractionCount int
	ExpectedDeaths   float64
	Diagnostics      Profile
	// FinalState is the goal node's state, captured for callers (the
	// segment loop, replanning loop) that chain one solve's terminus
	// into the next solve's start. It is never persisted by Save/LoadPlan.
	FinalState world.GameState
}
