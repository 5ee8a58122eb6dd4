package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func newTestRateCache(t *testing.T) (*RateCache, world.GameState) {
	t.Helper()
	bundle, gs := fixture.New()
	rates, err := NewRateCache(bundle.Estimator, bundle.Registries, DefaultSolverConfig().RateCacheCapacity)
	if err != nil {
		t.Fatalf("new rate cache: %v", err)
	}
	return rates, gs
}

func TestBestUnlockedRatePositiveForCurrencyGoal(t *testing.T) {
	t.Parallel()

	rates, gs := newTestRateCache(t)
	goal := world.ReachCurrency{Target: 100}

	rate, reason := rates.BestUnlockedRate(gs, goal)
	if rate <= 0 {
		t.Fatalf("expected a positive gold rate from chop_tree's sellable logs, got %v (reason %v)", rate, reason)
	}
}

func TestBestUnlockedRateZeroForLockedSkill(t *testing.T) {
	t.Parallel()

	rates, gs := newTestRateCache(t)
	goal := world.ReachSkillLevel{Skill: fixture.Thieving, Target: 10}

	rate, reason := rates.BestUnlockedRate(gs, goal)
	if rate != 0 {
		t.Fatalf("expected zero rate since thieving is locked at a fresh state, got %v", rate)
	}
	if reason == nil {
		t.Fatalf("expected a non-nil reason explaining the zero rate")
	}
	if _, ok := reason.(NoUnlockedActionsReason); !ok {
		t.Fatalf("expected NoUnlockedActionsReason, got %T: %v", reason, reason)
	}
}

func TestBestUnlockedRateCachesByCapabilityKey(t *testing.T) {
	t.Parallel()

	rates, gs := newTestRateCache(t)
	goal := world.ReachSkillLevel{Skill: fixture.Woodcutting, Target: 2}

	first, _ := rates.BestUnlockedRate(gs, goal)
	second, _ := rates.BestUnlockedRate(gs, goal)
	if first != second {
		t.Fatalf("expected the cached combined rate to be stable across calls: %v != %v", first, second)
	}
}

func TestPerSkillRateCappedByUnlockedProducer(t *testing.T) {
	t.Parallel()

	rates, gs := newTestRateCache(t)

	// fletching's only action needs logs; a fresh state has no logs and
	// chop_tree is the only producer, which IS unlocked, so fletching's
	// xp-rate should be capped by chop_tree's production rate, not zero.
	rate, reason := rates.PerSkillRate(gs, world.ReachSkillLevel{Skill: fixture.Fletching, Target: 2}, fixture.Fletching, true)
	if rate <= 0 {
		t.Fatalf("expected a positive capped rate since chop_tree can supply logs, got %v (reason %v)", rate, reason)
	}
}

func TestPerSkillRateZeroForLockedSkillWithNoEligibleActions(t *testing.T) {
	t.Parallel()

	rates, gs := newTestRateCache(t)

	rate, reason := rates.PerSkillRate(gs, world.ReachSkillLevel{Skill: fixture.Thieving, Target: 10}, fixture.Thieving, true)
	if rate != 0 {
		t.Fatalf("expected zero rate for a fully locked skill, got %v", rate)
	}
	if _, ok := reason.(NoUnlockedActionsReason); !ok {
		t.Fatalf("expected NoUnlockedActionsReason, got %T: %v", reason, reason)
	}
}

func TestComputeActionRateNonThieving(t *testing.T) {
	t.Parallel()

	bundle, _ := fixture.New()
	chopTree, ok := bundle.Registries.Actions().ByID(fixture.ChopTree)
	if !ok {
		t.Fatalf("chop_tree should be registered")
	}

	rate, ok := computeActionRate(emptyFixtureState(t), chopTree, 1)
	if !ok {
		t.Fatalf("expected computeActionRate to succeed for chop_tree")
	}
	if rate.xpRate <= 0 {
		t.Fatalf("expected a positive xp rate, got %v", rate.xpRate)
	}
	if rate.ticksUntilDeath != 0 {
		t.Fatalf("expected no death accounting for a non-thieving action, got %v", rate.ticksUntilDeath)
	}
}

func TestComputeActionRateThievingAccountsForDeathAndStun(t *testing.T) {
	t.Parallel()

	bundle, _ := fixture.New()
	pickpocket, ok := bundle.Registries.Actions().ByID(fixture.Pickpocket)
	if !ok {
		t.Fatalf("pickpocket should be registered")
	}

	rate, ok := computeActionRate(emptyFixtureState(t), pickpocket, 1)
	if !ok {
		t.Fatalf("expected computeActionRate to succeed for pickpocket")
	}
	if rate.ticksUntilDeath <= 0 {
		t.Fatalf("expected a positive expected ticks-until-death for a lethal thieving action, got %v", rate.ticksUntilDeath)
	}
	if rate.xpRate <= 0 {
		t.Fatalf("expected a positive xp rate net of stun/failure cycles, got %v", rate.xpRate)
	}
}

func TestComputeActionRateRejectsZeroDuration(t *testing.T) {
	t.Parallel()

	bundle, _ := fixture.New()
	chopTree, _ := bundle.Registries.Actions().ByID(fixture.ChopTree)
	chopTree.MeanDurationTicks = 0

	if _, ok := computeActionRate(emptyFixtureState(t), chopTree, 1); ok {
		t.Fatalf("expected computeActionRate to reject a zero mean duration")
	}
}

func emptyFixtureState(t *testing.T) world.GameState {
	t.Helper()
	_, gs := fixture.New()
	return gs
}
