package planner

import (
	"math"

	"github.com/lox/idleplanner/internal/world"
)

// DecisionDelta is the result of next-decision-delta analysis
// (spec.md §4.6).
type DecisionDelta struct {
	DeltaTicks     int
	WaitFor        world.WaitFor
	IntendedAction world.ActionID
	IsDeadEnd      bool
}

// DeltaAnalyzer computes the minimum positive ticks until any watched
// event could change the optimal decision (spec.md §4.6). It scans
// the candidate set's watch list and keeps the closest trigger, the
// same closest-candidate-under-a-numeric-ordering idiom the teacher
// uses to pick the nearest relevant raise size out of a small
// candidate list.
type DeltaAnalyzer struct {
	rates *RateCache
}

// NewDeltaAnalyzer returns a DeltaAnalyzer backed by rates.
func NewDeltaAnalyzer(rates *RateCache) *DeltaAnalyzer {
	return &DeltaAnalyzer{rates: rates}
}

// Compute is next_decision_delta (spec.md §4.6). hasInteraction
// reports whether candidates currently offer at least one relevant
// interaction (spec.md §4.6's invariant: delta == 0 implies this is
// true; the driver asserts it on every wait-edge attempt).
func (d *DeltaAnalyzer) Compute(state world.GameState, goal world.Goal, candidates world.Candidates, reg world.Registries, hasInteraction bool) DecisionDelta {
	if hasInteraction {
		return DecisionDelta{DeltaTicks: 0}
	}

	active, hasActive := state.ActiveAction()
	rate, _ := d.rates.BestUnlockedRate(state, goal)

	closest := -1
	consider := func(ticks int) {
		if ticks <= 0 {
			return
		}
		if closest == -1 || ticks < closest {
			closest = ticks
		}
	}

	watch := candidates.WatchSet

	if watch.GoalLine != nil && rate > 0 {
		remaining := float64(watch.GoalLine.Remaining(state))
		if remaining > 0 {
			consider(int(math.Ceil(remaining / rate)))
		}
	}

	if rate > 0 {
		for _, purchaseID := range watch.UpgradeThresholds {
			purchase, ok := reg.Shop().ByID(purchaseID)
			if !ok {
				continue
			}
			creditsNow := effectiveCredits(state)
			if creditsNow >= purchase.Cost {
				continue
			}
			consider(int(math.Ceil(float64(purchase.Cost-creditsNow) / rate)))
		}
	}

	// Skill unlock-level crossings in watch.SkillUnlockLevels have no
	// tick estimate here: the xp-to-level curve belongs to the
	// collaborator. The segment goal's WatchSet.DetectBoundary check
	// (SegmentGoal.IsSatisfied) catches the exact crossing once it happens.

	if hasActive && watch.WatchInputDepletion {
		if action, ok := reg.Actions().ByID(active); ok && action.IsConsuming() {
			consider(ticksUntilInputsEmpty(state, action))
		}
	}

	if closest == -1 {
		return DecisionDelta{DeltaTicks: 0, IsDeadEnd: true}
	}

	return DecisionDelta{DeltaTicks: closest, WaitFor: world.GoalWait{Goal: goal}, IntendedAction: active}
}

func ticksUntilInputsEmpty(state world.GameState, action world.ActionDef) int {
	minTicks := -1
	for _, in := range action.Inputs {
		if in.Amount <= 0 {
			continue
		}
		have := 0
		for _, stack := range state.Inventory() {
			if stack.Item == in.Item {
				have = stack.Count
				break
			}
		}
		ticksForThis := int(math.Floor(float64(have)/in.Amount)) * int(action.MeanDurationTicks)
		if minTicks == -1 || ticksForThis < minTicks {
			minTicks = ticksForThis
		}
	}
	if minTicks == -1 {
		return 0
	}
	return minTicks
}
