package planner

import (
	"fmt"
	"sort"

	"github.com/lox/idleplanner/internal/world"
)

// quantize coarsens v into buckets of size bucket, except below
// exactUnder where it is tracked precisely (spec.md §3's inventory
// rule, generalized and reused for gold/hp/mastery via cfg).
func quantize(v, bucket, exactUnder int) int {
	if v < exactUnder {
		return v
	}
	return exactUnder + (v-exactUnder)/bucket
}

// consumingInputItems returns, in stable sorted order, the distinct
// items fed to any action belonging to one of goal's consuming
// skills, capped at cfg.InputMixBits entries. This mirrors
// sdk/solver/bucket.go's fixed-threshold coarsening idiom: a
// deterministic, bounded-size feature extracted once per state.
func consumingInputItems(reg world.Registries, goal world.Goal, cap int) []world.ItemID {
	seen := make(map[world.ItemID]bool)
	for _, skill := range goal.ConsumingSkills() {
		for _, action := range reg.Actions().ForSkill(skill) {
			if !action.IsConsuming() {
				continue
			}
			for _, in := range action.Inputs {
				seen[in.Item] = true
			}
		}
	}
	items := make([]world.ItemID, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	if len(items) > cap {
		items = items[:cap]
	}
	return items
}

func inputItemMix(state world.GameState, items []world.ItemID) uint64 {
	var mix uint64
	for i, item := range items {
		if stackCount(state, item) > 0 {
			mix |= 1 << uint(i)
		}
	}
	return mix
}

func stackCount(state world.GameState, item world.ItemID) int {
	for _, stack := range state.Inventory() {
		if stack.Item == item {
			return stack.Count
		}
	}
	return 0
}

// ComputeBucketKey derives the dominance-pruning equivalence class for
// state under goal (spec.md §3's BucketKey). cfg's GoldBucket is
// deliberately unused here: the BucketKey excludes effective credits
// by design (§9 open question) — only the state-key includes it.
func ComputeBucketKey(state world.GameState, goal world.Goal, cfg SolverConfig) BucketKey {
	activity := world.ActionID("")
	if a, ok := state.ActiveAction(); ok {
		activity = a
	}

	skillLevels := make(map[world.SkillID]int)
	for _, skill := range goal.RelevantSkillsForBucketing() {
		skillLevels[skill] = state.SkillLevel(skill)
	}

	masteryLevel := 0
	if goal.ShouldTrackMastery() {
		if a, ok := state.ActiveAction(); ok {
			masteryLevel = state.ActionMasteryLevel(a)
		}
	}

	invBucket := 0
	if goal.ShouldTrackInventory() {
		total := 0
		for _, stack := range state.Inventory() {
			total += stack.Count
		}
		invBucket = quantize(total, cfg.InventoryBucket, cfg.InventoryExactUnder)
	}

	hpBucket := 0
	if goal.ShouldTrackHP() {
		hpBucket = state.HP() / cfg.HPBucket
	}

	items := consumingInputItems(state.Registries(), goal, cfg.InputMixBits)

	return BucketKey{
		ActivityName:    activity,
		SkillLevels:     skillLevels,
		AxeLevel:        state.ToolTier(world.ToolAxe),
		RodLevel:        state.ToolTier(world.ToolRod),
		PickLevel:       state.ToolTier(world.ToolPick),
		HPBucket:        hpBucket,
		MasteryLevel:    masteryLevel / cfg.MasteryBucket,
		InventoryBucket: invBucket,
		InputItemMix:    inputItemMix(state, items),
	}
}

// ComputeStateKey derives the A* driver's visited-map key: the
// BucketKey's fields plus bucketed effective credits. It is strictly
// finer than the BucketKey (spec.md §4.8 "Note").
func ComputeStateKey(state world.GameState, goal world.Goal, cfg SolverConfig) string {
	bucket := ComputeBucketKey(state, goal, cfg)
	creditsBucket := quantize(effectiveCredits(state), cfg.GoldBucket, 0)
	return fmt.Sprintf("credits=%d|%s", creditsBucket, bucket.String())
}

// effectiveCredits is currency plus the sell-all value of inventory;
// it is a state-key feature independent of the goal's own progress
// metric (a skill goal's state-key still tracks credits, since
// affordability of upgrades depends on them regardless of goal type).
func effectiveCredits(state world.GameState) int {
	total := state.Currency()
	for _, stack := range state.Inventory() {
		if item, ok := state.Registries().Items().ByID(stack.Item); ok {
			total += item.SellValue * stack.Count
		}
	}
	return total
}
