package fixture

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"github.com/lox/idleplanner/internal/world"
)

// deltaInteraction is the unexported shape sdk/planner/advance.go's
// expectedValueAdvance satisfies (Delta() returning its accumulated
// per-tick gains). The core passes it through the same
// ApplyInteractionDeterministic entry point as SwitchActivity/
// BuyShopItem/SellItems (advance.go: "keeping the collaborator
// boundary to one function instead of a second bespoke advance
// method") — a collaborator recognizes it by this structural
// interface rather than importing the planner package's unexported
// type.
type deltaInteraction interface {
	Delta() (xp map[world.SkillID]float64, mastery int, gained, consumed map[world.ItemID]float64, currency int)
}

// provider is the fixture's GameProvider.
type provider struct {
	reg *registries
}

func newProvider(reg *registries) *provider { return &provider{reg: reg} }

func asState(gs world.GameState) (*state, error) {
	s, ok := gs.(*state)
	if !ok {
		return nil, fmt.Errorf("fixture: unexpected GameState implementation %T", gs)
	}
	return s, nil
}

func (p *provider) ApplyInteraction(gs world.GameState, interaction world.Interaction, rng *randv2.Rand) (world.GameState, error) {
	return p.apply(gs, interaction)
}

func (p *provider) ApplyInteractionDeterministic(gs world.GameState, interaction world.Interaction) (world.GameState, error) {
	return p.apply(gs, interaction)
}

// apply handles every interaction variant the core ever constructs.
// None of SwitchActivity/BuyShopItem/SellItems/expectedValueAdvance
// needs randomness, so ApplyInteraction and ApplyInteractionDeterministic
// share this one body.
func (p *provider) apply(gs world.GameState, interaction world.Interaction) (world.GameState, error) {
	s, err := asState(gs)
	if err != nil {
		return nil, err
	}

	switch in := interaction.(type) {
	case world.SwitchActivity:
		return p.switchActivity(s, in.Action)
	case world.BuyShopItem:
		return p.buyShopItem(s, in.Purchase)
	case world.SellItems:
		return p.sellItems(s, in.Policy), nil
	default:
		if di, ok := interaction.(deltaInteraction); ok {
			return p.applyDelta(s, di), nil
		}
		return nil, fmt.Errorf("fixture: unknown interaction %T", interaction)
	}
}

func (p *provider) switchActivity(s *state, action world.ActionID) (*state, error) {
	def, ok := p.reg.actions.ByID(action)
	if !ok {
		return nil, fmt.Errorf("fixture: unknown action %s", action)
	}
	if s.SkillLevel(def.Skill) < def.UnlockLevel {
		return nil, fmt.Errorf("fixture: %s locked until %s reaches level %d", action, def.Skill, def.UnlockLevel)
	}
	return s.withActiveAction(action), nil
}

func (p *provider) buyShopItem(s *state, purchase world.PurchaseID) (*state, error) {
	def, ok := p.reg.shop.ByID(purchase)
	if !ok {
		return nil, fmt.Errorf("fixture: unknown purchase %s", purchase)
	}
	if s.currency < def.Cost {
		return nil, fmt.Errorf("fixture: insufficient currency for %s (have %d, need %d)", purchase, s.currency, def.Cost)
	}

	c := s.clone()
	c.currency -= def.Cost
	c.shopPurchases = cloneIntPurchaseMap(c.shopPurchases)
	c.shopPurchases[purchase]++
	if def.Effect.Tool != nil {
		c.toolTiers = cloneIntToolMap(c.toolTiers)
		c.toolTiers[*def.Effect.Tool] = def.Effect.ToolLevel
	}
	return c, nil
}

func (p *provider) sellItems(s *state, policy world.SellPolicy) *state {
	c := s.clone()
	c.inventory = cloneFloatMap(c.inventory)

	sell := func(item world.ItemID) {
		count := c.inventory[item]
		if count <= 0 {
			return
		}
		def, ok := p.reg.items.ByID(item)
		if !ok {
			return
		}
		c.currency += def.SellValue * int(math.Floor(count))
		c.inventory[item] = 0
	}

	if policy.SellAll {
		for item := range c.inventory {
			sell(item)
		}
		return c
	}
	for _, item := range policy.Items {
		sell(item)
	}
	return c
}

// applyDelta folds one tick-batch's expected-value gains (sdk/planner/
// advance.go's advanceExpectedValue) into state.
func (p *provider) applyDelta(s *state, di deltaInteraction) *state {
	xp, mastery, gained, consumed, currency := di.Delta()

	c := s.clone()
	c.currency += currency

	if len(gained) > 0 || len(consumed) > 0 {
		c.inventory = cloneFloatMap(c.inventory)
		for item, amt := range gained {
			c.inventory[item] += amt
		}
		for item, amt := range consumed {
			c.inventory[item] -= amt
			if c.inventory[item] < 0 {
				c.inventory[item] = 0
			}
		}
	}

	if len(xp) > 0 {
		c.skillXP = cloneFloatSkillMap(c.skillXP)
		for skill, amt := range xp {
			c.skillXP[skill] += amt
		}
	}

	if mastery != 0 {
		if active, ok := s.ActiveAction(); ok {
			c.masteryXP = cloneIntActionMap(c.masteryXP)
			c.masteryXP[active] += mastery
		}
	}

	return c
}

func (p *provider) StartAction(gs world.GameState, action world.ActionID, rng *randv2.Rand) (world.GameState, error) {
	s, err := asState(gs)
	if err != nil {
		return nil, err
	}
	if s.hp <= 0 {
		s = s.withHP(s.maxHP)
	}
	return p.switchActivity(s, action)
}

// ConsumeTicksUntil drives the active action attempt-by-attempt —
// consuming inputs, granting outputs/xp, and for IsThieving actions
// rolling success/stun/death — stopping at the first of: stop(state)
// true, maxTicks elapsed, death, input depletion, or a stack exceeding
// maxStackSize.
func (p *provider) ConsumeTicksUntil(gs world.GameState, rng *randv2.Rand, stop world.StopCondition, maxTicks int) (world.GameState, int, world.StopReason, error) {
	cur, err := asState(gs)
	if err != nil {
		return nil, 0, world.StillRunning, err
	}
	if !cur.hasActiveAction {
		return cur, 0, world.StillRunning, nil
	}
	def, ok := p.reg.actions.ByID(cur.activeAction)
	if !ok {
		return nil, 0, world.StillRunning, fmt.Errorf("fixture: active action %s not registered", cur.activeAction)
	}

	ticksElapsed := 0
	modifier := cur.durationModifier(def)
	baseTicks := def.MeanDurationTicks * modifier
	if baseTicks <= 0 {
		baseTicks = 1
	}

	for ticksElapsed < maxTicks {
		if stop(cur) {
			return cur, ticksElapsed, world.ConditionSatisfied, nil
		}

		if def.IsConsuming() {
			for _, in := range def.Inputs {
				if cur.inventory[in.Item] < in.Amount {
					return cur, ticksElapsed, world.OutOfInputs, nil
				}
			}
		}

		attemptTicks := int(math.Ceil(baseTicks))
		if attemptTicks < 1 {
			attemptTicks = 1
		}
		if attemptTicks > maxTicks-ticksElapsed {
			break
		}

		if def.IsThieving {
			if rng.Float64() < def.SuccessProbability {
				cur = cur.applyAttempt(def, true)
			} else {
				stunTicks := int(math.Ceil(def.StunPenaltyTicks))
				totalTicks := attemptTicks + stunTicks
				if totalTicks > maxTicks-ticksElapsed {
					ticksElapsed = maxTicks
					break
				}
				attemptTicks = totalTicks
				cur = cur.applyAttempt(def, false)
				if rng.Float64() < def.DeathProbability {
					cur = cur.withHP(0)
					ticksElapsed += attemptTicks
					return cur, ticksElapsed, world.PlayerDied, nil
				}
			}
		} else {
			cur = cur.applyAttempt(def, true)
		}

		if cur.inventoryOverCapacity() {
			ticksElapsed += attemptTicks
			return cur, ticksElapsed, world.InventoryFull, nil
		}

		ticksElapsed += attemptTicks
	}

	if stop(cur) {
		return cur, ticksElapsed, world.ConditionSatisfied, nil
	}
	return cur, ticksElapsed, world.MaxTicksReached, nil
}

// ValidateState sanity-checks invariants the tick engine must never
// violate: non-negative hp/currency/inventory.
func (p *provider) ValidateState(gs world.GameState) error {
	s, err := asState(gs)
	if err != nil {
		return err
	}
	if s.hp < 0 || s.hp > s.maxHP {
		return fmt.Errorf("fixture: hp %d out of range [0, %d]", s.hp, s.maxHP)
	}
	if s.currency < 0 {
		return fmt.Errorf("fixture: negative currency %d", s.currency)
	}
	for item, count := range s.inventory {
		if count < 0 {
			return fmt.Errorf("fixture: negative inventory count for %s", item)
		}
	}
	return nil
}
