// Package fixture is the single reference implementation of every
// internal/world collaborator interface: a small "woodcutting-style"
// economy with one producing skill, one consuming skill, one
// thieving-style risky skill, and one shop upgrade. It exists only to
// drive the solver core's own tests end-to-end (spec.md §8's six
// scenarios) — it is not a game content pack.
package fixture

import "github.com/lox/idleplanner/internal/world"

// Skill ids.
const (
	Woodcutting world.SkillID = "woodcutting"
	Fletching   world.SkillID = "fletching"
	Thieving    world.SkillID = "thieving"
)

// Item ids.
const (
	Logs  world.ItemID = "logs"
	Bows  world.ItemID = "bows"
	Coins world.ItemID = "coins"
)

// Action ids.
const (
	ChopTree   world.ActionID = "chop_tree"
	CraftBow   world.ActionID = "craft_bow"
	Pickpocket world.ActionID = "pickpocket"
)

// Purchase ids.
const (
	SharpAxe world.PurchaseID = "sharp_axe"
)

func actionDefs() []world.ActionDef {
	return []world.ActionDef{
		{
			ID:                ChopTree,
			Skill:             Woodcutting,
			UnlockLevel:       1,
			MeanDurationTicks: 4,
			XPPerAction:       10,
			Outputs:           []world.ItemAmount{{Item: Logs, Amount: 1}},
		},
		{
			ID:                CraftBow,
			Skill:             Fletching,
			UnlockLevel:       1,
			MeanDurationTicks: 6,
			XPPerAction:       15,
			Inputs:            []world.ItemAmount{{Item: Logs, Amount: 2}},
			Outputs:           []world.ItemAmount{{Item: Bows, Amount: 1}},
		},
		{
			ID:                 Pickpocket,
			Skill:               Thieving,
			UnlockLevel:         5,
			MeanDurationTicks:   3,
			XPPerAction:         8,
			Outputs:             []world.ItemAmount{{Item: Coins, Amount: 3}},
			IsThieving:          true,
			SuccessProbability:  0.7,
			StunPenaltyTicks:    5,
			DeathProbability:    0.05,
		},
	}
}

func itemDefs() []world.ItemDef {
	return []world.ItemDef{
		{ID: Logs, Name: "Logs", SellValue: 2},
		{ID: Bows, Name: "Bows", SellValue: 15},
		{ID: Coins, Name: "Coins", SellValue: 1},
	}
}

func purchaseDefs() []world.PurchaseDef {
	axe := world.ToolAxe
	return []world.PurchaseDef{
		{
			ID:   SharpAxe,
			Cost: 150,
			Effect: world.PurchaseEffect{
				DurationModifierSkill:  Woodcutting,
				DurationModifierFactor: 0.85,
				Tool:                   &axe,
				ToolLevel:              1,
			},
		},
	}
}

func unlockBoundaries() []world.SkillUnlock {
	return []world.SkillUnlock{
		{Skill: Woodcutting, Level: 1, Actions: []world.ActionID{ChopTree}},
		{Skill: Fletching, Level: 1, Actions: []world.ActionID{CraftBow}},
		{Skill: Thieving, Level: 5, Actions: []world.ActionID{Pickpocket}},
	}
}

// actionRegistry is the ActionDef table, ByID backed by a perfect hash.
type actionRegistry struct {
	defs  []world.ActionDef
	index *stringIndex
}

func newActionRegistry(defs []world.ActionDef) *actionRegistry {
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = string(d.ID)
	}
	return &actionRegistry{defs: defs, index: buildStringIndex(keys)}
}

func (r *actionRegistry) All() []world.ActionDef { return r.defs }

func (r *actionRegistry) ForSkill(skill world.SkillID) []world.ActionDef {
	out := make([]world.ActionDef, 0, len(r.defs))
	for _, d := range r.defs {
		if d.Skill == skill {
			out = append(out, d)
		}
	}
	return out
}

func (r *actionRegistry) ByID(id world.ActionID) (world.ActionDef, bool) {
	idx, ok := r.index.find(string(id))
	if !ok {
		return world.ActionDef{}, false
	}
	return r.defs[idx], true
}

// itemRegistry is the ItemDef table, ByID backed by a perfect hash.
type itemRegistry struct {
	defs  []world.ItemDef
	index *stringIndex
}

func newItemRegistry(defs []world.ItemDef) *itemRegistry {
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = string(d.ID)
	}
	return &itemRegistry{defs: defs, index: buildStringIndex(keys)}
}

func (r *itemRegistry) ByID(id world.ItemID) (world.ItemDef, bool) {
	idx, ok := r.index.find(string(id))
	if !ok {
		return world.ItemDef{}, false
	}
	return r.defs[idx], true
}

// shopRegistry is the PurchaseDef table, ByID backed by a perfect hash.
type shopRegistry struct {
	defs  []world.PurchaseDef
	index *stringIndex
}

func newShopRegistry(defs []world.PurchaseDef) *shopRegistry {
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = string(d.ID)
	}
	return &shopRegistry{defs: defs, index: buildStringIndex(keys)}
}

func (r *shopRegistry) All() []world.PurchaseDef { return r.defs }

func (r *shopRegistry) ByID(id world.PurchaseID) (world.PurchaseDef, bool) {
	idx, ok := r.index.find(string(id))
	if !ok {
		return world.PurchaseDef{}, false
	}
	return r.defs[idx], true
}

// registries bundles the three content tables plus unlock boundaries;
// it is the single immutable value every fixture GameState shares a
// pointer to.
type registries struct {
	actions *actionRegistry
	items   *itemRegistry
	shop    *shopRegistry
	unlocks []world.SkillUnlock
}

// newRegistries builds the fixture's fixed content set.
func newRegistries() *registries {
	return &registries{
		actions: newActionRegistry(actionDefs()),
		items:   newItemRegistry(itemDefs()),
		shop:    newShopRegistry(purchaseDefs()),
		unlocks: unlockBoundaries(),
	}
}

func (r *registries) Actions() world.ActionRegistry { return r.actions }
func (r *registries) Items() world.ItemRegistry     { return r.items }
func (r *registries) Shop() world.ShopRegistry       { return r.shop }
func (r *registries) UnlockBoundaries() []world.SkillUnlock { return r.unlocks }

// durationModifier is the fixture's copy of RateCache.actionDurationModifier
// (sdk/planner/ratecache.go): the product of every owned shop purchase's
// duration modifier applying to action's skill. The estimator and the
// provider's tick engine must agree on this factor, so both call this
// one function rather than deriving it independently.
func (r *registries) durationModifier(owned func(world.PurchaseID) int, action world.ActionDef) float64 {
	factor := 1.0
	for _, p := range r.shop.All() {
		if p.Effect.DurationModifierSkill != action.Skill {
			continue
		}
		if owned(p.ID) > 0 {
			factor *= p.Effect.DurationModifierFactor
		}
	}
	return factor
}
