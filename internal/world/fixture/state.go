package fixture

import (
	"math"
	"sort"

	"github.com/lox/idleplanner/internal/world"
)

// xpPerLevel is the fixture's flat xp curve: level = 1 + floor(xp/xpPerLevel).
// The real game's curve is collaborator knowledge (spec.md §9); the
// fixture only needs one that is monotonic and cheap to invert.
const xpPerLevel = 100

func levelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/xpPerLevel
}

// XPForLevel inverts levelForXP: the minimum xp at which SkillLevel
// first reports level. Goal construction wires this in as a
// world.ReachSkillLevel.TargetXP converter so the planner core can
// compute an exact wait-ticks advance instead of overshooting a level
// stop via exponential batch doubling (spec.md §8 scenario 2's
// `Wait(w, WaitForSkillXp(skill, X))`).
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * xpPerLevel
}

// maxStackSize bounds a single inventory item's count; exceeding it on
// a tick-engine attempt is the fixture's InventoryFull boundary.
const maxStackSize = 5000

// state is the fixture's GameState: a value-semantic snapshot shared
// only by pointer, never mutated after construction (internal/game's
// Player fields are mutated in place through methods; here every
// state-changing method instead returns a new *state, the copy-on-
// transition discipline spec.md §3 requires of GameState). Numeric
// accumulators that receive fractional expected-value deltas
// (sdk/planner/advance.go's advanceExpectedValue) are kept as float64
// internally and floored only when exposed through the int-typed
// GameState accessors, so repeated small advances don't lose the
// fractional remainder between calls.
type state struct {
	currency  int
	inventory map[world.ItemID]float64

	hp, maxHP int

	activeAction    world.ActionID
	hasActiveAction bool

	skillXP   map[world.SkillID]float64
	masteryXP map[world.ActionID]int

	shopPurchases map[world.PurchaseID]int
	toolTiers     map[world.ToolKind]int

	reg *registries
}

// newState returns the starting state: level-1 everywhere, empty
// inventory, full health, no active action.
func newState(reg *registries) *state {
	return &state{
		hp:            10,
		maxHP:         10,
		inventory:     map[world.ItemID]float64{},
		skillXP:       map[world.SkillID]float64{},
		masteryXP:     map[world.ActionID]int{},
		shopPurchases: map[world.PurchaseID]int{},
		toolTiers:     map[world.ToolKind]int{},
		reg:           reg,
	}
}

// clone returns a shallow copy; callers mutate only the fields they
// are changing, cloning any map they plan to write through first.
func (s *state) clone() *state {
	c := *s
	return &c
}

func (s *state) Currency() int { return s.currency }

func (s *state) Inventory() []world.InventoryStack {
	out := make([]world.InventoryStack, 0, len(s.inventory))
	for item, count := range s.inventory {
		if count <= 0 {
			continue
		}
		out = append(out, world.InventoryStack{Item: item, Count: int(math.Floor(count))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func (s *state) HP() int    { return s.hp }
func (s *state) MaxHP() int { return s.maxHP }

func (s *state) ActiveAction() (world.ActionID, bool) { return s.activeAction, s.hasActiveAction }

func (s *state) SkillXP(skill world.SkillID) int { return int(math.Floor(s.skillXP[skill])) }

func (s *state) SkillLevel(skill world.SkillID) int { return levelForXP(s.SkillXP(skill)) }

func (s *state) ActionMasteryXP(action world.ActionID) int { return s.masteryXP[action] }

func (s *state) ActionMasteryLevel(action world.ActionID) int {
	return levelForXP(s.masteryXP[action])
}

func (s *state) ShopPurchaseCount(purchase world.PurchaseID) int { return s.shopPurchases[purchase] }

func (s *state) ToolTier(tool world.ToolKind) int { return s.toolTiers[tool] }

func (s *state) Registries() world.Registries { return s.reg }

// inventoryCount reads a single item's floored count.
func (s *state) inventoryCount(item world.ItemID) int { return int(math.Floor(s.inventory[item])) }

// withHP returns a clone with hp set to v (clamped to [0, maxHP]).
func (s *state) withHP(v int) *state {
	if v < 0 {
		v = 0
	}
	if v > s.maxHP {
		v = s.maxHP
	}
	c := s.clone()
	c.hp = v
	return c
}

// withActiveAction returns a clone running action.
func (s *state) withActiveAction(action world.ActionID) *state {
	c := s.clone()
	c.activeAction = action
	c.hasActiveAction = true
	return c
}

// durationModifier returns the shop-purchase duration factor applying
// to def's skill, per registries.durationModifier.
func (s *state) durationModifier(def world.ActionDef) float64 {
	return s.reg.durationModifier(s.ShopPurchaseCount, def)
}

// inventoryOverCapacity reports whether any stack exceeds maxStackSize.
func (s *state) inventoryOverCapacity() bool {
	for _, count := range s.inventory {
		if count > maxStackSize {
			return true
		}
	}
	return false
}

// applyAttempt returns a clone reflecting one attempt at def: inputs
// consumed (if any), and outputs/xp/mastery granted only when success
// is true (a failed thieving roll still pays the input cost of the
// attempt's tick, never the reward).
func (s *state) applyAttempt(def world.ActionDef, success bool) *state {
	c := s.clone()

	if len(def.Inputs) > 0 {
		c.inventory = cloneFloatMap(c.inventory)
		for _, in := range def.Inputs {
			c.inventory[in.Item] -= in.Amount
			if c.inventory[in.Item] < 0 {
				c.inventory[in.Item] = 0
			}
		}
	}

	if !success {
		return c
	}

	if len(def.Outputs) > 0 {
		if len(def.Inputs) == 0 {
			c.inventory = cloneFloatMap(c.inventory)
		}
		for _, out := range def.Outputs {
			c.inventory[out.Item] += out.Amount
		}
	}

	c.skillXP = cloneFloatSkillMap(c.skillXP)
	c.skillXP[def.Skill] += def.XPPerAction

	c.masteryXP = cloneIntActionMap(c.masteryXP)
	c.masteryXP[def.ID] += int(def.XPPerAction)

	return c
}

func cloneFloatMap(m map[world.ItemID]float64) map[world.ItemID]float64 {
	out := make(map[world.ItemID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloatSkillMap(m map[world.SkillID]float64) map[world.SkillID]float64 {
	out := make(map[world.SkillID]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntActionMap(m map[world.ActionID]int) map[world.ActionID]int {
	out := make(map[world.ActionID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntPurchaseMap(m map[world.PurchaseID]int) map[world.PurchaseID]int {
	out := make(map[world.PurchaseID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntToolMap(m map[world.ToolKind]int) map[world.ToolKind]int {
	out := make(map[world.ToolKind]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
