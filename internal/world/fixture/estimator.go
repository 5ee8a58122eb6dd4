package fixture

import (
	"fmt"
	"math"

	"github.com/lox/idleplanner/internal/world"
)

// estimator is the fixture's Estimator. Its math mirrors
// sdk/planner/ratecache.go's computeActionRate exactly: the rate
// cache and this estimator must agree on what "the rate" of an action
// means, since the A* driver's heuristic is built from the rate
// cache's numbers while the state-advance fast path (sdk/planner/
// advance.go) is built from this estimator's.
type estimator struct {
	reg *registries
}

func newEstimator(reg *registries) *estimator { return &estimator{reg: reg} }

func (e *estimator) EstimateRates(gs world.GameState) (world.Rates, error) {
	s, err := asState(gs)
	if err != nil {
		return world.Rates{}, err
	}
	action, ok := s.ActiveAction()
	if !ok {
		return world.Rates{}, fmt.Errorf("fixture: no active action")
	}
	return e.EstimateRatesForAction(gs, action)
}

func (e *estimator) EstimateRatesForAction(gs world.GameState, action world.ActionID) (world.Rates, error) {
	s, err := asState(gs)
	if err != nil {
		return world.Rates{}, err
	}
	def, ok := e.reg.actions.ByID(action)
	if !ok {
		return world.Rates{}, fmt.Errorf("fixture: unknown action %s", action)
	}

	baseTicks := def.MeanDurationTicks * s.durationModifier(def)
	if baseTicks <= 0 {
		return world.Rates{}, fmt.Errorf("fixture: %s resolves to zero ticks per action", action)
	}

	rates := world.Rates{
		ActionID:             action,
		XPPerTickBySkill:     map[world.SkillID]float64{},
		ItemFlowsPerTick:     map[world.ItemID]float64{},
		ItemsConsumedPerTick: map[world.ItemID]float64{},
	}

	if !def.IsThieving {
		attemptsPerTick := 1.0 / baseTicks
		rates.XPPerTickBySkill[def.Skill] = attemptsPerTick * def.XPPerAction
		rates.MasteryXPPerTick = attemptsPerTick * def.XPPerAction
		for _, out := range def.Outputs {
			rates.ItemFlowsPerTick[out.Item] = attemptsPerTick * out.Amount
		}
		for _, in := range def.Inputs {
			rates.ItemsConsumedPerTick[in.Item] = attemptsPerTick * in.Amount
		}
		return rates, nil
	}

	p := def.SuccessProbability
	cycleTicks := baseTicks + (1-p)*def.StunPenaltyTicks
	if cycleTicks <= 0 {
		return world.Rates{}, fmt.Errorf("fixture: %s resolves to zero cycle ticks", action)
	}
	successRate := p / cycleTicks
	attemptRate := 1.0 / cycleTicks

	rates.XPPerTickBySkill[def.Skill] = successRate * def.XPPerAction
	rates.MasteryXPPerTick = successRate * def.XPPerAction
	for _, out := range def.Outputs {
		rates.ItemFlowsPerTick[out.Item] = successRate * out.Amount
	}
	for _, in := range def.Inputs {
		rates.ItemsConsumedPerTick[in.Item] = attemptRate * in.Amount
	}

	deathProbPerAttempt := (1 - p) * def.DeathProbability
	if deathProbPerAttempt > 0 {
		expectedAttemptsUntilDeath := 1.0 / deathProbPerAttempt
		rates.TicksUntilDeath = expectedAttemptsUntilDeath * cycleTicks
	}
	return rates, nil
}

// valueModel is the fixture's ValueModel: gold-equivalent conversion
// using the item registry's flat SellValue table.
type valueModel struct {
	reg *registries
}

func newValueModel(reg *registries) *valueModel { return &valueModel{reg: reg} }

func (v *valueModel) ValuePerTick(gs world.GameState, rates world.Rates) float64 {
	total := 0.0
	for item, perTick := range rates.ItemFlowsPerTick {
		if def, ok := v.reg.items.ByID(item); ok {
			total += perTick * float64(def.SellValue)
		}
	}
	return total
}

func (v *valueModel) EffectiveCredits(gs world.GameState, policy world.SellPolicy) int {
	s, err := asState(gs)
	if err != nil {
		return 0
	}
	total := s.currency
	if policy.SellAll {
		for item, count := range s.inventory {
			if def, ok := v.reg.items.ByID(item); ok {
				total += def.SellValue * int(math.Floor(count))
			}
		}
		return total
	}
	for _, item := range policy.Items {
		if def, ok := v.reg.items.ByID(item); ok {
			total += def.SellValue * s.inventoryCount(item)
		}
	}
	return total
}
