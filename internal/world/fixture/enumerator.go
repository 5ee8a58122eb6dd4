package fixture

import "github.com/lox/idleplanner/internal/world"

// allSkills lists the fixture's three skills in a fixed order. Enumerate
// proposes one training macro for each goal-relevant skill, plus
// woodcutting always, regardless of lock state (the macro expander, not
// the enumerator, substitutes a prerequisite when a skill is still
// locked — sdk/planner/macro.go's expandTrainSkillUntil).
var allSkills = []world.SkillID{Woodcutting, Fletching, Thieving}

// enumerator is the fixture's CandidateEnumerator: since the whole
// economy is three actions, one upgrade, and three skills, "propose
// everything" is both the degenerate and the practical implementation
// (spec.md §9: a degenerate enumerator returning everything is
// correct, only slower).
type enumerator struct {
	reg *registries
}

func newEnumerator(reg *registries) *enumerator { return &enumerator{reg: reg} }

func (e *enumerator) Enumerate(gs world.GameState, goal world.Goal, sellPolicy *world.SellPolicy, collectStats bool) (world.Candidates, error) {
	s, err := asState(gs)
	if err != nil {
		return world.Candidates{}, err
	}

	var switchTo []world.ActionID
	for _, def := range e.reg.actions.All() {
		if s.SkillLevel(def.Skill) >= def.UnlockLevel {
			switchTo = append(switchTo, def.ID)
		}
	}

	var unowned []world.PurchaseID
	for _, pd := range e.reg.shop.All() {
		if s.ShopPurchaseCount(pd.ID) == 0 {
			unowned = append(unowned, pd.ID)
		}
	}

	macros := make([]world.MacroCandidate, 0, len(allSkills))
	for _, skill := range allSkills {
		if !goal.IsSkillRelevant(skill) && skill != Woodcutting {
			continue
		}
		stop := nextUnlockStop(s, e.reg, skill)
		macro := world.MacroCandidate(world.TrainSkillUntil{Skill: skill, PrimaryStop: stop})
		if consumingSkill(e.reg, skill) {
			macro = world.TrainConsumingSkillUntil{Skill: skill, PrimaryStop: stop}
		}
		macros = append(macros, macro)
	}

	policy := goal.ComputeSellPolicy(s)
	if sellPolicy != nil {
		policy = *sellPolicy
	}

	return world.Candidates{
		SwitchToActivities:      switchTo,
		BuyUpgrades:             unowned,
		Macros:                  macros,
		ShouldEmitSellCandidate: len(s.Inventory()) > 0,
		SellPolicy:              policy,
		WatchSet: world.WatchSet{
			UpgradeThresholds:   unowned,
			SkillUnlockLevels:   nextUnlockWatches(s, e.reg),
			WatchInputDepletion: activeActionConsumes(s, e.reg),
			GoalLine:            goal,
		},
	}, nil
}

// nextUnlockStop picks the first of skill's unlock levels above where
// it stands as the primary training stop; when no unlock level lies
// ahead it falls back to a flat milestone one level above, since the enumerator has no goal-specific xp
// target of its own (the driver is what attaches a real goal stop).
func nextUnlockStop(s *state, reg *registries, skill world.SkillID) world.MacroStopRule {
	level := s.SkillLevel(skill)
	for _, u := range reg.UnlockBoundaries() {
		if u.Skill == skill && u.Level > level {
			return world.SkillLevelStop{Skill: skill, Level: u.Level}
		}
	}
	return world.SkillLevelStop{Skill: skill, Level: level + 1}
}

// nextUnlockWatches returns, for every skill with a boundary still
// ahead of the state, the (skill, level) pair to watch.
func nextUnlockWatches(s *state, reg *registries) []world.SkillLevelWatch {
	var out []world.SkillLevelWatch
	for _, u := range reg.UnlockBoundaries() {
		if s.SkillLevel(u.Skill) < u.Level {
			out = append(out, world.SkillLevelWatch{Skill: u.Skill, Level: u.Level})
		}
	}
	return out
}

// consumingSkill reports whether skill's actions require inputs.
func consumingSkill(reg *registries, skill world.SkillID) bool {
	for _, def := range reg.actions.ForSkill(skill) {
		if def.IsConsuming() {
			return true
		}
	}
	return false
}

// activeActionConsumes reports whether the state's active action
// requires inputs, the signal the WatchSet uses to decide whether to
// watch for input depletion.
func activeActionConsumes(s *state, reg *registries) bool {
	action, ok := s.ActiveAction()
	if !ok {
		return false
	}
	def, ok := reg.actions.ByID(action)
	return ok && def.IsConsuming()
}
