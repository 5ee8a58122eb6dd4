package planner

import (
	"math/rand/v2"
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func TestConsumeUntilSkillXPTarget(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	active, err := bundle.Provider.ApplyInteractionDeterministic(gs, world.SwitchActivity{Action: fixture.ChopTree})
	if err != nil {
		t.Fatalf("switch to chop_tree: %v", err)
	}

	cfg := DefaultSolverConfig()
	consumer := NewConsumer(bundle.Provider, bundle.Registries, cfg)

	rng := rand.New(rand.NewPCG(9, 9))
	result, err := consumer.ConsumeUntil(active, world.SkillXP{Skill: fixture.Woodcutting, TargetXP: 30}, rng)
	if err != nil {
		t.Fatalf("consume until: %v", err)
	}
	if _, ok := result.Boundary.(BoundaryWaitConditionSatisfied); !ok {
		t.Fatalf("expected wait condition satisfied, got %#v", result.Boundary)
	}
	if result.State.SkillXP(fixture.Woodcutting) < 30 {
		t.Fatalf("expected woodcutting xp >= 30, got %d", result.State.SkillXP(fixture.Woodcutting))
	}
	if result.TicksElapsed == 0 {
		t.Fatalf("expected nonzero ticks elapsed")
	}
}

func TestConsumeUntilAlreadySatisfiedReturnsImmediately(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	cfg := DefaultSolverConfig()
	consumer := NewConsumer(bundle.Provider, bundle.Registries, cfg)

	rng := rand.New(rand.NewPCG(1, 1))
	result, err := consumer.ConsumeUntil(gs, world.SkillXP{Skill: fixture.Woodcutting, TargetXP: 0}, rng)
	if err != nil {
		t.Fatalf("consume until: %v", err)
	}
	if result.TicksElapsed != 0 {
		t.Fatalf("expected zero ticks for an already-satisfied wait, got %d", result.TicksElapsed)
	}
	if _, ok := result.Boundary.(BoundaryWaitConditionSatisfied); !ok {
		t.Fatalf("expected wait condition satisfied boundary, got %#v", result.Boundary)
	}
}

func TestConsumeUntilSwitchesProducerOnInputDepletion(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()

	// craft_bow is usable from level 1 and a fresh state holds no logs;
	// ask to train fletching directly: the consumer should notice craft_bow starves on logs immediately and
	// switch to chop_tree to restock before resuming.
	s := gs
	active, err := bundle.Provider.ApplyInteractionDeterministic(s, world.SwitchActivity{Action: fixture.CraftBow})
	if err != nil {
		t.Fatalf("switch to craft_bow: %v", err)
	}

	cfg := DefaultSolverConfig()
	cfg.ConsumeBufferTicks = 20
	consumer := NewConsumer(bundle.Provider, bundle.Registries, cfg)

	rng := rand.New(rand.NewPCG(5, 5))
	result, err := consumer.ConsumeUntil(active, world.SkillXP{Skill: fixture.Fletching, TargetXP: 15}, rng)
	if err != nil {
		t.Fatalf("consume until: %v", err)
	}
	if _, ok := result.Boundary.(BoundaryWaitConditionSatisfied); !ok {
		t.Fatalf("expected the producer-switch path to eventually satisfy the wait, got %#v", result.Boundary)
	}
	if result.State.SkillXP(fixture.Fletching) < 15 {
		t.Fatalf("expected fletching xp >= 15, got %d", result.State.SkillXP(fixture.Fletching))
	}
}

func TestBufferQuantity(t *testing.T) {
	t.Parallel()

	if got := bufferQuantity(3000, 4, 1); got <= 0 {
		t.Fatalf("expected a positive buffer quantity, got %d", got)
	}
	if got := bufferQuantity(3000, 0, 1); got != 0 {
		t.Fatalf("expected zero ticksPerAction to short-circuit to 0, got %d", got)
	}
}
