package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/world"
)

// SegmentGoal wraps a WatchSet as a world.Goal so the A* driver can
// solve toward "the first material boundary" instead of the ultimate
// goal (spec.md §4.9). Every method but IsSatisfied defers to the
// underlying goal so bucketing, rates, and sell policy stay identical
// to a full solve toward goal.
type SegmentGoal struct {
	world.Goal
	watchSet world.WatchSet
}

// NewSegmentGoal wraps goal with watchSet's boundary detection.
func NewSegmentGoal(goal world.Goal, watchSet world.WatchSet) SegmentGoal {
	return SegmentGoal{Goal: goal, watchSet: watchSet}
}

func (g SegmentGoal) IsSatisfied(state world.GameState) bool {
	_, ok := g.watchSet.DetectBoundary(state, 0)
	return ok
}

// Segment is one entry in solve_to_goal's segment list: the plan that
// reached a material boundary, plus the boundary itself.
type Segment struct {
	Plan     *Plan
	Boundary ReplanBoundary
}

// SegmentRunner drives the Segment Loop (spec.md §4.9): solve_segment
// and solve_to_goal.
type SegmentRunner struct {
	driver     *Driver
	enumerator world.CandidateEnumerator
	provider   world.GameProvider
	cfg        SolverConfig
}

// NewSegmentRunner returns a SegmentRunner wired to driver for
// per-segment solves and provider for the synthetic sell/buy segments
// solve_to_goal synthesizes around UpgradeAffordable boundaries.
func NewSegmentRunner(driver *Driver, enumerator world.CandidateEnumerator, provider world.GameProvider, cfg SolverConfig) *SegmentRunner {
	return &SegmentRunner{driver: driver, enumerator: enumerator, provider: provider, cfg: cfg}
}

// SolveSegment is solve_segment (spec.md §4.9): it enumerates state's
// candidates to obtain a WatchSet, solves toward the first boundary
// that set watches, then classifies the terminal state into a
// ReplanBoundary. The terminal state is never replayed — the boundary
// is derived from that state alone.
func (r *SegmentRunner) SolveSegment(state world.GameState, goal world.Goal) (Segment, error) {
	candidates, err := r.enumerator.Enumerate(state, goal, nil, false)
	if err != nil {
		return Segment{}, fmt.Errorf("enumerate segment candidates: %w", err)
	}

	segmentGoal := NewSegmentGoal(goal, candidates.WatchSet)
	plan, err := r.driver.Solve(state, segmentGoal)
	if err != nil {
		return Segment{}, err
	}

	terminal := plan.FinalState
	if terminal == nil {
		terminal = state
	}
	boundary := classifyBoundary(terminal, goal, candidates.WatchSet)

	return Segment{Plan: plan, Boundary: boundary}, nil
}

// SolveToGoal is solve_to_goal (spec.md §4.9): it loops SolveSegment up
// to cfg.MaxSegments, synthesizing a final sell segment on GoalReached
// if currency is still short, and a zero-tick sell/buy segment on
// UpgradeAffordable.
func (r *SegmentRunner) SolveToGoal(state world.GameState, goal world.Goal) ([]Segment, world.GameState, error) {
	var segments []Segment

	for i := 0; i < r.cfg.MaxSegments; i++ {
		if goal.IsSatisfied(state) {
			return segments, state, nil
		}

		segment, err := r.SolveSegment(state, goal)
		if err != nil {
			return segments, state, err
		}
		segments = append(segments, segment)
		if segment.Plan.FinalState != nil {
			state = segment.Plan.FinalState
		}

		switch boundary := segment.Boundary.(type) {
		case BoundaryGoalReached:
			if rc, ok := goal.(world.ReachCurrency); ok && state.Currency() < rc.Target {
				sellSegment, next, err := r.synthesizeSell(state, goal)
				if err != nil {
					return segments, state, err
				}
				segments = append(segments, sellSegment)
				state = next
			}
			return segments, state, nil

		case BoundaryUpgradeAffordableEarly:
			synthesized, next, err := r.synthesizeBuy(state, goal, world.PurchaseID(boundary.Purchase))
			if err != nil {
				return segments, state, err
			}
			segments = append(segments, synthesized)
			state = next
		}
	}

	return segments, state, fmt.Errorf("solve_to_goal: exceeded max segments (%d) without reaching goal", r.cfg.MaxSegments)
}

// synthesizeSell builds a zero-tick segment selling everything, used
// to close the gap when a GoalReached boundary's terminal currency
// still falls short of a ReachCurrency target.
func (r *SegmentRunner) synthesizeSell(state world.GameState, goal world.Goal) (Segment, world.GameState, error) {
	next, err := r.provider.ApplyInteractionDeterministic(state, world.SellItems{Policy: world.SellPolicy{SellAll: true}})
	if err != nil {
		return Segment{}, state, fmt.Errorf("synthesize final sell: %w", err)
	}
	plan := &Plan{
		Steps:      []PlanStep{StepInteraction{Action: world.SellItems{Policy: world.SellPolicy{SellAll: true}}}},
		Diagnostics: NewProfile(),
		FinalState: next,
	}
	return Segment{Plan: plan, Boundary: BoundaryGoalReached{}}, next, nil
}

// synthesizeBuy is solve_to_goal step 4: verify affordability under the
// segment's sell policy, sell if actual currency is short, buy, and
// assert the purchase succeeded — recorded as a synthetic zero-tick
// segment.
func (r *SegmentRunner) synthesizeBuy(state world.GameState, goal world.Goal, purchase world.PurchaseID) (Segment, world.GameState, error) {
	def, ok := state.Registries().Shop().ByID(purchase)
	if !ok {
		return Segment{}, state, fmt.Errorf("unknown purchase in upgrade-affordable boundary: %s", purchase)
	}
	sellPolicy := goal.ComputeSellPolicy(state)
	if effectiveCredits(state) < def.Cost {
		return Segment{}, state, fmt.Errorf("upgrade-affordable boundary fired but effective credits < cost for %s", purchase)
	}

	steps := make([]PlanStep, 0, 2)
	working := state
	if state.Currency() < def.Cost {
		sold, err := r.provider.ApplyInteractionDeterministic(working, world.SellItems{Policy: sellPolicy})
		if err != nil {
			return Segment{}, state, fmt.Errorf("synthesize pre-buy sell: %w", err)
		}
		working = sold
		steps = append(steps, StepInteraction{Action: world.SellItems{Policy: sellPolicy}})
	}

	bought, err := r.provider.ApplyInteractionDeterministic(working, world.BuyShopItem{Purchase: purchase})
	if err != nil {
		return Segment{}, state, fmt.Errorf("synthesize buy: %w", err)
	}
	if bought.ShopPurchaseCount(purchase) <= working.ShopPurchaseCount(purchase) {
		return Segment{}, state, fmt.Errorf("assertion failed: purchase %s did not register after buy", purchase)
	}
	steps = append(steps, StepInteraction{Action: world.BuyShopItem{Purchase: purchase}})

	plan := &Plan{Steps: steps, Diagnostics: NewProfile(), FinalState: bought}
	return Segment{Plan: plan, Boundary: BoundaryUpgradeAffordableEarly{Purchase: string(purchase)}}, bought, nil
}

// classifyBoundary derives the ReplanBoundary a segment's terminal
// state represents, in priority order: the real goal, then an
// affordable upgrade, then a skill unlock, then input depletion on the
// active consuming action, falling back to a plain planned stop.
func classifyBoundary(state world.GameState, goal world.Goal, watchSet world.WatchSet) ReplanBoundary {
	if goal.IsSatisfied(state) {
		return BoundaryGoalReached{}
	}

	reg := state.Registries()
	for _, pid := range watchSet.UpgradeThresholds {
		def, ok := reg.Shop().ByID(pid)
		if !ok {
			continue
		}
		if effectiveCredits(state) >= def.Cost {
			return BoundaryUpgradeAffordableEarly{Purchase: string(pid)}
		}
	}

	for _, lvl := range watchSet.SkillUnlockLevels {
		if state.SkillLevel(lvl.Skill) >= lvl.Level {
			return BoundaryUnlockObserved{Skill: string(lvl.Skill), Level: lvl.Level}
		}
	}

	if watchSet.WatchInputDepletion {
		if action, ok := state.ActiveAction(); ok {
			if def, ok := reg.Actions().ByID(action); ok && def.IsConsuming() {
				for _, in := range def.Inputs {
					if float64(stackCount(state, in.Item)) < in.Amount {
						return BoundaryInputsDepleted{Action: string(action), MissingItem: string(in.Item)}
					}
				}
			}
		}
	}

	return BoundaryPlannedSegmentStop{}
}
