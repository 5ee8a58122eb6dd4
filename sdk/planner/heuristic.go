package planner

import (
	"math"

	"github.com/lox/idleplanner/internal/world"
)

// Heuristic computes the admissible lower bound h(state) the A*
// driver's priority queue orders by (spec.md §4.3).
type Heuristic struct {
	rates *RateCache
}

// NewHeuristic returns a heuristic backed by rates.
func NewHeuristic(rates *RateCache) *Heuristic {
	return &Heuristic{rates: rates}
}

// Evaluate returns h(state) for goal, and the RateReason attached
// when the underlying rate is zero (for root-state tripwire use).
func (h *Heuristic) Evaluate(state world.GameState, goal world.Goal) (float64, RateReason) {
	if multi, ok := goal.(world.MultiSkill); ok {
		return h.evaluateMultiSkill(state, multi)
	}
	return h.evaluateSingle(state, goal)
}

func (h *Heuristic) evaluateSingle(state world.GameState, goal world.Goal) (float64, RateReason) {
	remaining := float64(goal.Remaining(state))
	if remaining <= 0 {
		return 0, nil
	}
	rate, reason := h.rates.BestUnlockedRate(state, goal)
	if rate <= 0 {
		return 0, reason
	}
	return math.Ceil(remaining / rate), nil
}

// evaluateMultiSkill sums independent per-subgoal lower bounds: since
// a player cannot train two skills simultaneously, time is serial, so
// no schedule can beat the sum (spec.md §4.3).
func (h *Heuristic) evaluateMultiSkill(state world.GameState, goal world.MultiSkill) (float64, RateReason) {
	total := 0.0
	var lastReason RateReason
	anyUnsatisfied := false
	for _, sub := range goal.UnsatisfiedSubgoals(state) {
		anyUnsatisfied = true
		remaining := float64(sub.Remaining(state))
		if remaining <= 0 {
			continue
		}
		rate, reason := h.rates.PerSkillRate(state, goal, sub.Skill, true)
		if rate <= 0 {
			lastReason = reason
			continue
		}
		total += math.Ceil(remaining / rate)
	}
	if anyUnsatisfied && total == 0 && lastReason != nil {
		return 0, lastReason
	}
	return total, nil
}

// RootTripwire reports whether state's best rate under goal is zero,
// returning the attached reason when so (spec.md §4.3's root-state
// tripwire: the solver fails immediately rather than exploring from a
// state the estimator cannot score).
func (h *Heuristic) RootTripwire(state world.GameState, goal world.Goal) (zero bool, reason RateReason) {
	h0, reason := h.Evaluate(state, goal)
	if h0 == 0 && reason != nil {
		return true, reason
	}
	return false, nil
}
