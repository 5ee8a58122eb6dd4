package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func TestAdvanceExpectedValueAccumulatesXPAndItems(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	active, err := bundle.Provider.ApplyInteractionDeterministic(gs, world.SwitchActivity{Action: fixture.ChopTree})
	if err != nil {
		t.Fatalf("switch to chop_tree: %v", err)
	}

	advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)
	result, err := advancer.Advance(active, 100)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if result.State.SkillXP(fixture.Woodcutting) == 0 {
		t.Fatalf("expected woodcutting xp to accumulate over 100 ticks")
	}

	logs := 0
	for _, stack := range result.State.Inventory() {
		if stack.Item == fixture.Logs {
			logs = stack.Count
		}
	}
	if logs == 0 {
		t.Fatalf("expected logs to accumulate over 100 ticks")
	}
}

func TestAdvanceZeroTicksIsNoop(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)

	result, err := advancer.Advance(gs, 0)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if result.State != gs {
		t.Fatalf("expected zero-tick advance to return the same state unchanged")
	}
}

func TestAdvanceNonLethalActionHasNoExpectedDeaths(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	// chop_tree carries no death risk, so an expected-value advance of
	// it reports zero expected deaths.
	seeded := gs
	withXP, err := bundle.Provider.ApplyInteractionDeterministic(gs, world.SwitchActivity{Action: fixture.ChopTree})
	if err != nil {
		t.Fatalf("switch to chop_tree: %v", err)
	}
	seeded = withXP

	advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 42)
	result, err := advancer.Advance(seeded, 50)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if result.ExpectedDeaths != 0 {
		t.Fatalf("chop_tree carries no death risk, expected 0 expected deaths, got %v", result.ExpectedDeaths)
	}
}
