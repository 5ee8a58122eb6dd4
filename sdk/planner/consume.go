package planner

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"github.com/lox/idleplanner/internal/world"
)

// ConsumeResult is the outcome of driving a state toward a WaitFor
// target (spec.md §4.5).
type ConsumeResult struct {
	State       world.GameState
	TicksElapsed int
	Deaths      int
	Boundary    ReplanBoundary
}

// Consumer drives the goal-aware executor: it repeatedly calls the
// collaborator's bounded tick engine, handling death/restart and
// producer-switching on input depletion, until wait_for is satisfied
// or a terminal boundary is hit (spec.md §4.5).
type Consumer struct {
	provider world.GameProvider
	reg      world.Registries
	cfg      SolverConfig
}

// NewConsumer returns a Consumer using provider's tick engine.
func NewConsumer(provider world.GameProvider, reg world.Registries, cfg SolverConfig) *Consumer {
	return &Consumer{provider: provider, reg: reg, cfg: cfg}
}

// ConsumeUntil is consume_until (spec.md §4.5): the loop that drives
// every wait/macro edge the A* driver and segment loop take.
func (c *Consumer) ConsumeUntil(state world.GameState, waitFor world.WaitFor, rng *randv2.Rand) (ConsumeResult, error) {
	if waitFor.IsSatisfied(state) {
		return ConsumeResult{State: state, Boundary: BoundaryWaitConditionSatisfied{}}, nil
	}

	originalAction, hadAction := state.ActiveAction()
	totalTicks := 0
	deaths := 0

	for {
		progressBefore := waitFor.Progress(state)

		stop := func(s world.GameState) bool { return waitFor.IsSatisfied(s) }
		next, elapsed, reason, err := c.provider.ConsumeTicksUntil(state, rng, stop, c.cfg.ConsumeBufferTicks)
		if err != nil {
			return ConsumeResult{}, fmt.Errorf("consume ticks: %w", err)
		}
		if err := c.provider.ValidateState(next); err != nil {
			return ConsumeResult{}, fmt.Errorf("invalid state after consume: %w", err)
		}
		state = next
		totalTicks += elapsed

		if reason == world.MaxTicksReached && waitFor.Progress(state) <= progressBefore {
			return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths,
				Boundary: BoundaryNoProgressPossible{Reason: fmt.Sprintf("hit maxTicks with no progress on %s", waitFor.Describe())}}, nil
		}

		if waitFor.IsSatisfied(state) {
			return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryWaitConditionSatisfied{}}, nil
		}

		switch reason {
		case world.PlayerDied:
			deaths++
			if !hadAction {
				return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryDeath{}}, nil
			}
			restarted, err := c.provider.StartAction(state, originalAction, rng)
			if err != nil {
				return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryDeath{}}, nil
			}
			state = restarted
			continue

		case world.OutOfInputs:
			result, boundary, handled, err := c.handleInputsDepleted(state, waitFor, originalAction, hadAction, rng)
			if err != nil {
				return ConsumeResult{}, err
			}
			if handled {
				state = result
				continue
			}
			return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: boundary}, nil

		case world.InventoryFull:
			return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryInventoryFull{}}, nil

		case world.MaxTicksReached:
			continue

		default:
			return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryActionUnavailable{}}, nil
		}
	}
}

// handleInputsDepleted implements the producer-switching branch of
// consume_until (spec.md §4.5 step 5): find the fastest unlocked
// producer of a depleted input, switch to it, buffer enough stock,
// then resume the original action.
func (c *Consumer) handleInputsDepleted(state world.GameState, waitFor world.WaitFor, originalAction world.ActionID, hadAction bool, rng *randv2.Rand) (world.GameState, ReplanBoundary, bool, error) {
	if _, isSkillXP := waitFor.(world.SkillXP); !isSkillXP || !hadAction {
		return state, BoundaryInputsDepleted{Action: string(originalAction)}, false, nil
	}

	action, ok := c.reg.Actions().ByID(originalAction)
	if !ok || !action.IsConsuming() {
		return state, BoundaryInputsDepleted{Action: string(originalAction)}, false, nil
	}

	var missing world.ItemID
	for _, in := range action.Inputs {
		if float64(stackCount(state, in.Item)) < in.Amount {
			missing = in.Item
			break
		}
	}
	if missing == "" {
		return state, BoundaryInputsDepleted{Action: string(originalAction)}, false, nil
	}

	producer, found := c.fastestProducer(state, missing)
	if !found {
		return state, BoundaryInputsDepleted{Action: string(originalAction), MissingItem: string(missing)}, false, nil
	}

	switched, err := c.provider.StartAction(state, producer.ID, rng)
	if err != nil {
		return state, BoundaryInputsDepleted{Action: string(originalAction), MissingItem: string(missing)}, false, nil
	}

	var inputAmount float64
	for _, in := range action.Inputs {
		if in.Item == missing {
			inputAmount = in.Amount
			break
		}
	}
	bufferCount := bufferQuantity(c.cfg.ConsumeBufferTicks, action.MeanDurationTicks, inputAmount)

	bufferResult, err := c.ConsumeUntil(switched, world.InventoryAtLeast{Item: missing, Count: bufferCount}, rng)
	if err != nil {
		return state, nil, false, err
	}
	if _, ok := bufferResult.Boundary.(BoundaryWaitConditionSatisfied); !ok {
		return bufferResult.State, bufferResult.Boundary, false, nil
	}

	restarted, err := c.provider.StartAction(bufferResult.State, originalAction, rng)
	if err != nil {
		return bufferResult.State, BoundaryInputsDepleted{Action: string(originalAction), MissingItem: string(missing)}, false, nil
	}
	return restarted, nil, true, nil
}

// bufferQuantity is CONSUME_BUFFER_TICKS translated into a target
// stock count: ceil(bufferTicks / ticksPerConsumeAction) * inputsPerAction
// (spec.md §4.5's design value, ~5 minutes of buffer).
func bufferQuantity(bufferTicks int, ticksPerAction float64, inputsPerAction float64) int {
	if ticksPerAction <= 0 {
		return 0
	}
	actionsInBuffer := math.Ceil(float64(bufferTicks) / ticksPerAction)
	count := int(math.Ceil(actionsInBuffer * inputsPerAction))
	if count < 1 {
		return 1
	}
	return count
}

func (c *Consumer) fastestProducer(state world.GameState, item world.ItemID) (world.ActionDef, bool) {
	var best world.ActionDef
	bestRate := 0.0
	found := false
	for _, action := range c.reg.Actions().All() {
		if state.SkillLevel(action.Skill) < action.UnlockLevel {
			continue
		}
		for _, out := range action.Outputs {
			if out.Item != item {
				continue
			}
			if action.MeanDurationTicks <= 0 {
				continue
			}
			rate := out.Amount / action.MeanDurationTicks
			if rate > bestRate {
				bestRate = rate
				best = action
				found = true
			}
		}
	}
	return best, found
}

