package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func TestEnsureExecutableReturnsNilWhenProducerAlreadyUnlocked(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()
	craftBow, ok := bundle.Registries.Actions().ByID(fixture.CraftBow)
	if !ok {
		t.Fatalf("craft_bow should be registered")
	}

	// craft_bow needs logs; chop_tree (logs' only producer) is already
	// unlocked at a fresh level-1 state, so nothing blocks execution
	// even though no logs are on hand yet.
	prereq, err := EnsureExecutable(gs, craftBow, bundle.Registries, 10)
	if err != nil {
		t.Fatalf("ensure executable: %v", err)
	}
	if prereq != nil {
		t.Fatalf("expected no prerequisite since chop_tree is already unlocked, got %#v", prereq)
	}
}

func TestEnsureExecutableReturnsExecUnknownForNoProducer(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()

	bogus := world.ActionDef{
		ID:    "bogus_action",
		Skill: fixture.Woodcutting,
		Inputs: []world.ItemAmount{
			{Item: world.ItemID("unobtainium"), Amount: 1},
		},
	}

	_, err := EnsureExecutable(gs, bogus, bundle.Registries, 10)
	if err == nil {
		t.Fatalf("expected ExecUnknown for an input with no producer")
	}
	if _, ok := err.(ExecUnknown); !ok {
		t.Fatalf("expected ExecUnknown, got %T: %v", err, err)
	}
}

func TestEnsureExecutableFindsLockedProducer(t *testing.T) {
	t.Parallel()

	bundle, gs := fixture.New()

	// a hypothetical action needing coins, whose only producer
	// (pickpocket) is locked until thieving level 5 at a fresh state.
	needsCoins := world.ActionDef{
		ID:    "hypothetical_coin_sink",
		Skill: fixture.Woodcutting,
		Inputs: []world.ItemAmount{
			{Item: fixture.Coins, Amount: 1},
		},
	}

	prereq, err := EnsureExecutable(gs, needsCoins, bundle.Registries, 10)
	if err != nil {
		t.Fatalf("ensure executable: %v", err)
	}
	if prereq == nil {
		t.Fatalf("expected a prerequisite since pickpocket is still locked")
	}
	if prereq.Skill != fixture.Thieving {
		t.Fatalf("expected thieving as the prerequisite skill, got %s", prereq.Skill)
	}
}
