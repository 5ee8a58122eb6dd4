package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func newTestSegmentRunner(t *testing.T) (*SegmentRunner, world.GameState) {
	t.Helper()
	cfg := DefaultSolverConfig()
	driver, gs := newTestDriver(t, cfg)

	bundle, _ := fixture.New()
	runner := NewSegmentRunner(driver, bundle.Enumerator, bundle.Provider, cfg)
	return runner, gs
}

func TestSolveSegmentReachesGoalBoundary(t *testing.T) {
	t.Parallel()

	runner, gs := newTestSegmentRunner(t)
	goal := world.ReachCurrency{Target: 30}

	segment, err := runner.SolveSegment(gs, goal)
	if err != nil {
		t.Fatalf("solve segment: %v", err)
	}
	if _, ok := segment.Boundary.(BoundaryGoalReached); !ok {
		t.Fatalf("expected a goal-reached boundary for a single-segment currency goal, got %#v", segment.Boundary)
	}
}

func TestSolveToGoalReachesCurrencyTarget(t *testing.T) {
	t.Parallel()

	runner, gs := newTestSegmentRunner(t)
	goal := world.ReachCurrency{Target: 50}

	segments, final, err := runner.SolveToGoal(gs, goal)
	if err != nil {
		t.Fatalf("solve to goal: %v", err)
	}
	if len(segments) == 0 {
		t.Fatalf("expected at least one segment")
	}
	if !goal.IsSatisfied(final) {
		t.Fatalf("expected final state to satisfy the currency goal")
	}
}

func TestClassifyBoundaryFallsBackToPlannedStop(t *testing.T) {
	t.Parallel()

	_, gs := fixture.New()
	goal := world.ReachSkillLevel{Skill: fixture.Woodcutting, Target: 2}
	watchSet := world.WatchSet{UpgradeThresholds: []world.PurchaseID{fixture.SharpAxe}}

	boundary := classifyBoundary(gs, goal, watchSet)
	if _, ok := boundary.(BoundaryPlannedSegmentStop); !ok {
		t.Fatalf("expected planned segment stop when no upgrade is affordable and goal unmet, got %#v", boundary)
	}
}

