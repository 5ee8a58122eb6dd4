package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func newTestExpander(t *testing.T) (*MacroExpander, world.GameState) {
	t.Helper()
	cfg := DefaultSolverConfig()
	bundle, gs := fixture.New()
	rates, err := NewRateCache(bundle.Estimator, bundle.Registries, cfg.RateCacheCapacity)
	if err != nil {
		t.Fatalf("new rate cache: %v", err)
	}
	advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)
	return NewMacroExpander(bundle.Registries, rates, advancer, cfg), gs
}

func TestExpandTrainSkillUntilReachesPrimaryStop(t *testing.T) {
	t.Parallel()

	expander, gs := newTestExpander(t)
	goal := world.ReachSkillLevel{Skill: fixture.Woodcutting, Target: 2}

	macro := world.TrainSkillUntil{
		Skill:       fixture.Woodcutting,
		PrimaryStop: world.SkillLevelStop{Skill: fixture.Woodcutting, Level: 2},
	}

	outcome := expander.Expand(gs, macro, goal)
	expanded, ok := outcome.(MacroExpanded)
	if !ok {
		t.Fatalf("expected MacroExpanded, got %#v", outcome)
	}
	if expanded.State.SkillLevel(fixture.Woodcutting) < 2 {
		t.Fatalf("expected woodcutting level >= 2, got %d", expanded.State.SkillLevel(fixture.Woodcutting))
	}
	if expanded.TicksElapsed <= 0 {
		t.Fatalf("expected positive ticks elapsed")
	}
}

func TestExpandTrainSkillUntilFullyLockedSkillCannotExpand(t *testing.T) {
	t.Parallel()

	expander, gs := newTestExpander(t)
	goal := world.ReachSkillLevel{Skill: fixture.Thieving, Target: 6}

	// pickpocket unlocks at thieving level 5 and is thieving's only
	// action. At a fresh state the prerequisite substituted for it is
	// another thieving TrainSkillUntil, just as locked, so Expand keeps
	// substituting until MaxPrereqDepth and returns MacroCannotExpand.
	macro := world.TrainSkillUntil{
		Skill:       fixture.Thieving,
		PrimaryStop: world.SkillLevelStop{Skill: fixture.Thieving, Level: 6},
	}
	outcome := expander.Expand(gs, macro, goal)
	if _, ok := outcome.(MacroCannotExpand); !ok {
		t.Fatalf("expected MacroCannotExpand while thieving is fully locked, got %#v", outcome)
	}
}

func TestExpandAlreadySatisfiedStop(t *testing.T) {
	t.Parallel()

	expander, gs := newTestExpander(t)
	goal := world.ReachSkillLevel{Skill: fixture.Woodcutting, Target: 1}

	macro := world.TrainSkillUntil{
		Skill:       fixture.Woodcutting,
		PrimaryStop: world.SkillLevelStop{Skill: fixture.Woodcutting, Level: 1},
	}
	outcome := expander.Expand(gs, macro, goal)
	if _, ok := outcome.(MacroAlreadySatisfied); !ok {
		t.Fatalf("expected MacroAlreadySatisfied since level 1 is the starting level, got %#v", outcome)
	}
}
