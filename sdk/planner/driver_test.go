package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

// newTestDriver wires one full collaborator graph atop a fresh fixture
// bundle, the same construction order cmd/planner's solve command uses.
func newTestDriver(t *testing.T, cfg SolverConfig) (*Driver, world.GameState) {
	t.Helper()

	bundle, gs := fixture.New()

	rates, err := NewRateCache(bundle.Estimator, bundle.Registries, cfg.RateCacheCapacity)
	if err != nil {
		t.Fatalf("new rate cache: %v", err)
	}
	advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)
	expander := NewMacroExpander(bundle.Registries, rates, advancer, cfg)
	heuristic := NewHeuristic(rates)
	frontier := NewParetoFrontier()
	delta := NewDeltaAnalyzer(rates)

	driver := NewDriver(bundle.Enumerator, heuristic, frontier, expander, delta, advancer, bundle.Provider, cfg)
	return driver, gs
}

func TestDriverSolvesReachCurrency(t *testing.T) {
	t.Parallel()

	cfg := DefaultSolverConfig()
	driver, gs := newTestDriver(t, cfg)

	goal := world.ReachCurrency{Target: 50}
	plan, err := driver.Solve(gs, goal)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if plan == nil {
		t.Fatalf("expected a plan")
	}
	if plan.TotalTicks <= 0 {
		t.Fatalf("expected positive total ticks, got %d", plan.TotalTicks)
	}
	if len(plan.Steps) == 0 {
		t.Fatalf("expected at least one plan step")
	}
	if !goal.IsSatisfied(plan.FinalState) {
		t.Fatalf("expected final state to satisfy the goal")
	}
}

func TestDriverSolvesReachSkillLevel(t *testing.T) {
	t.Parallel()

	cfg := DefaultSolverConfig()
	driver, gs := newTestDriver(t, cfg)

	goal := world.ReachSkillLevel{Skill: fixture.Woodcutting, Target: 2}
	plan, err := driver.Solve(gs, goal)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !goal.IsSatisfied(plan.FinalState) {
		t.Fatalf("expected final state to have reached woodcutting level 2, got level %d", plan.FinalState.SkillLevel(fixture.Woodcutting))
	}
}

func TestDriverAlreadySatisfiedReturnsEmptyPlan(t *testing.T) {
	t.Parallel()

	cfg := DefaultSolverConfig()
	driver, gs := newTestDriver(t, cfg)

	goal := world.ReachCurrency{Target: 0}
	plan, err := driver.Solve(gs, goal)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(plan.Steps) != 0 {
		t.Fatalf("expected no steps for an already-satisfied goal, got %d", len(plan.Steps))
	}
	if plan.TotalTicks != 0 {
		t.Fatalf("expected zero total ticks, got %d", plan.TotalTicks)
	}
}

func TestDriverSolveIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := DefaultSolverConfig()
	goal := world.ReachCurrency{Target: 40}

	driverA, gsA := newTestDriver(t, cfg)
	planA, err := driverA.Solve(gsA, goal)
	if err != nil {
		t.Fatalf("solve a: %v", err)
	}

	driverB, gsB := newTestDriver(t, cfg)
	planB, err := driverB.Solve(gsB, goal)
	if err != nil {
		t.Fatalf("solve b: %v", err)
	}

	if planA.TotalTicks != planB.TotalTicks {
		t.Fatalf("expected identical total ticks across repeated solves of the same scenario, got %d vs %d", planA.TotalTicks, planB.TotalTicks)
	}
	if len(planA.Steps) != len(planB.Steps) {
		t.Fatalf("expected identical step counts, got %d vs %d", len(planA.Steps), len(planB.Steps))
	}
}
