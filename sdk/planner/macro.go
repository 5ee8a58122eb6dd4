package planner

import (
	"fmt"
	"math"

	"github.com/lox/idleplanner/internal/world"
)

// MacroExpander is the Macro Expander (spec.md §4.7): it projects a
// macro candidate forward to a future state plus a composite stop
// condition, substituting prerequisites and resolving inventory
// pressure along the way.
type MacroExpander struct {
	reg      world.Registries
	rates    *RateCache
	advancer *Advancer
	cfg      SolverConfig
}

// NewMacroExpander returns a MacroExpander.
func NewMacroExpander(reg world.Registries, rates *RateCache, advancer *Advancer, cfg SolverConfig) *MacroExpander {
	return &MacroExpander{reg: reg, rates: rates, advancer: advancer, cfg: cfg}
}

// Expand is `expand(state, macro, goal, unlock_boundaries)` (spec.md
// §4.7). It iterates up to cfg.MaxPrereqDepth, substituting
// NeedsPrerequisite outcomes and resolving InventoryPressure boundaries
// by selling before retrying the same macro.
func (m *MacroExpander) Expand(state world.GameState, macro world.MacroCandidate, goal world.Goal) MacroOutcome {
	current := macro
	for depth := 0; depth < m.cfg.MaxPrereqDepth; depth++ {
		outcome := m.expandOnce(state, current, goal)
		switch o := outcome.(type) {
		case MacroNeedsPrerequisite:
			current = o.Prereq
			continue
		case MacroNeedsBoundary:
			if _, pressure := o.Boundary.(BoundaryInventoryPressure); pressure {
				sold, err := m.applySellPolicy(state, goal)
				if err != nil {
					return MacroCannotExpand{Reason: err.Error()}
				}
				state = sold
				continue
			}
			return o
		default:
			return outcome
		}
	}
	return MacroCannotExpand{Reason: "max prerequisite depth exceeded"}
}

func (m *MacroExpander) expandOnce(state world.GameState, macro world.MacroCandidate, goal world.Goal) MacroOutcome {
	switch mc := macro.(type) {
	case world.TrainSkillUntil:
		return m.expandTrainSkillUntil(state, mc, goal)
	case world.TrainConsumingSkillUntil:
		return m.expandTrainSkillUntil(state, world.TrainSkillUntil{
			Skill: mc.Skill, PrimaryStop: mc.PrimaryStop, WatchedStops: mc.WatchedStops,
		}, goal)
	case world.AcquireItem:
		return m.expandAcquireItem(state, mc, goal)
	case world.EnsureStock:
		return m.expandEnsureStock(state, mc, goal)
	case world.ProduceItem:
		return m.expandProduceItem(state, mc, goal)
	default:
		return MacroCannotExpand{Reason: "unknown macro candidate"}
	}
}

// expandTrainSkillUntil handles both TrainSkillUntil and
// TrainConsumingSkillUntil once flattened: find the best unlocked
// action for the skill, substitute a prerequisite if the only option
// is still locked, switch to it, and advance until any watched stop
// triggers.
func (m *MacroExpander) expandTrainSkillUntil(state world.GameState, macro world.TrainSkillUntil, goal world.Goal) MacroOutcome {
	action, ok := m.bestActionForSkill(state, macro.Skill, goal)
	if !ok {
		locked, hasLocked := m.lockedActionForSkill(state, macro.Skill)
		if hasLocked {
			return MacroNeedsPrerequisite{Prereq: world.TrainSkillUntil{
				Skill:       locked.Skill,
				PrimaryStop: world.SkillLevelStop{Skill: locked.Skill, Level: locked.UnlockLevel},
			}}
		}
		return MacroCannotExpand{Reason: fmt.Sprintf("no action trains %s", macro.Skill)}
	}

	if action.IsConsuming() {
		for _, in := range action.Inputs {
			producer, found := findProducer(m.reg, in.Item)
			if !found {
				return MacroCannotExpand{Reason: fmt.Sprintf("no producer for %s", in.Item)}
			}
			if state.SkillLevel(producer.Skill) < producer.UnlockLevel {
				return MacroNeedsPrerequisite{Prereq: world.TrainSkillUntil{
					Skill:       producer.Skill,
					PrimaryStop: world.SkillLevelStop{Skill: producer.Skill, Level: producer.UnlockLevel},
				}}
			}
		}
	}

	working, err := m.ensureActive(state, action.ID)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	stops := make([]world.WaitFor, 0, len(macro.WatchedStops)+1)
	stops = append(stops, m.stopForRule(macro.PrimaryStop, working, goal))
	for _, s := range macro.WatchedStops {
		stops = append(stops, m.stopForRule(s, working, goal))
	}

	var composite world.WaitFor
	if len(stops) == 1 {
		composite = stops[0]
	} else {
		composite = world.AnyOf{Conditions: stops}
	}

	if composite.IsSatisfied(working) {
		return MacroAlreadySatisfied{Reason: composite.Describe()}
	}

	next, ticks, deaths, err := m.advanceToStop(working, composite, goal)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	return MacroExpanded{
		State:               next,
		TicksElapsed:        ticks,
		WaitFor:             composite,
		Deaths:              deaths,
		TriggeringCondition: composite.Describe(),
		Macro:               macro,
	}
}

func (m *MacroExpander) expandAcquireItem(state world.GameState, macro world.AcquireItem, goal world.Goal) MacroOutcome {
	return m.expandTowardStock(state, macro.Item, macro.Quantity, macro, goal)
}

func (m *MacroExpander) expandEnsureStock(state world.GameState, macro world.EnsureStock, goal world.Goal) MacroOutcome {
	return m.expandTowardStock(state, macro.Item, macro.MinTotal, macro, goal)
}

// expandTowardStock is the shared body of AcquireItem and EnsureStock:
// both are "train whatever produces item until count is on hand"
// (spec.md §4.7).
func (m *MacroExpander) expandTowardStock(state world.GameState, item world.ItemID, target int, macro world.MacroCandidate, goal world.Goal) MacroOutcome {
	if stackCount(state, item) >= target {
		return MacroAlreadySatisfied{Reason: fmt.Sprintf("%s already >= %d", item, target)}
	}

	producer, found := findProducer(m.reg, item)
	if !found {
		return MacroCannotExpand{Reason: fmt.Sprintf("no producer for %s", item)}
	}
	if state.SkillLevel(producer.Skill) < producer.UnlockLevel {
		return MacroNeedsPrerequisite{Prereq: world.TrainSkillUntil{
			Skill:       producer.Skill,
			PrimaryStop: world.SkillLevelStop{Skill: producer.Skill, Level: producer.UnlockLevel},
		}}
	}

	working, err := m.ensureActive(state, producer.ID)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	stop := world.InventoryAtLeast{Item: item, Count: target}
	next, ticks, deaths, err := m.advanceToStop(working, stop, goal)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	return MacroExpanded{
		State:               next,
		TicksElapsed:        ticks,
		WaitFor:             stop,
		Deaths:              deaths,
		TriggeringCondition: stop.Describe(),
		Macro:               macro,
	}
}

func (m *MacroExpander) expandProduceItem(state world.GameState, macro world.ProduceItem, goal world.Goal) MacroOutcome {
	action, ok := m.reg.Actions().ByID(macro.Action)
	if !ok {
		return MacroCannotExpand{Reason: fmt.Sprintf("unknown action %s", macro.Action)}
	}
	if state.SkillLevel(action.Skill) < action.UnlockLevel {
		return MacroNeedsPrerequisite{Prereq: world.TrainSkillUntil{
			Skill:       action.Skill,
			PrimaryStop: world.SkillLevelStop{Skill: action.Skill, Level: action.UnlockLevel},
		}}
	}

	working, err := m.ensureActive(state, macro.Action)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	result, err := m.advancer.Advance(working, macro.EstimatedTicks)
	if err != nil {
		return MacroCannotExpand{Reason: err.Error()}
	}

	return MacroExpanded{
		State:               result.State,
		TicksElapsed:        macro.EstimatedTicks,
		WaitFor:             world.InputsDepleted{Action: macro.Action},
		Deaths:              result.ExpectedDeaths,
		TriggeringCondition: "estimated production window elapsed",
		Macro:               macro,
	}
}

// stopForRule resolves rule to a concrete WaitFor, tightening a
// SkillLevelAtLeast into an exact SkillXP stop whenever goal carries an
// xp curve for that skill. Without this, advanceToStop has no choice
// but to reach a level stop via exponentially doubling batches, which
// routinely overshoots the level it was asked to stop at.
func (m *MacroExpander) stopForRule(rule world.MacroStopRule, state world.GameState, goal world.Goal) world.WaitFor {
	wf := rule.ToWaitFor(state, m.reg.UnlockBoundaries())
	lvl, ok := wf.(world.SkillLevelAtLeast)
	if !ok {
		return wf
	}
	if targetXP, ok := levelToXP(goal, lvl.Skill, lvl.Level); ok {
		return world.SkillXP{Skill: lvl.Skill, TargetXP: targetXP}
	}
	return wf
}

// levelToXP reports the exact xp threshold for skill reaching level,
// using whichever ReachSkillLevel subgoal of goal covers skill's xp
// curve. It reports false when goal carries no curve for skill (a
// ReachCurrency goal, or a skill goal doesn't cover this one) — the
// only case the core cannot know the curve in.
func levelToXP(goal world.Goal, skill world.SkillID, level int) (int, bool) {
	switch g := goal.(type) {
	case world.ReachSkillLevel:
		if g.Skill == skill && g.TargetXP != nil {
			return g.TargetXP(level), true
		}
	case world.MultiSkill:
		for _, sub := range g.Subgoals {
			if sub.Skill == skill && sub.TargetXP != nil {
				return sub.TargetXP(level), true
			}
		}
	}
	return 0, false
}

// bestActionForSkill finds the best unlocked action for skill by
// goal-relevant rate; multi-input consumers are admissible only if
// every input has some producer, locked or unlocked (spec.md §4.7).
func (m *MacroExpander) bestActionForSkill(state world.GameState, skill world.SkillID, goal world.Goal) (world.ActionDef, bool) {
	best := world.ActionDef{}
	bestRate := 0.0
	found := false

	for _, action := range m.reg.Actions().ForSkill(skill) {
		if state.SkillLevel(skill) < action.UnlockLevel {
			continue
		}
		if action.IsConsuming() {
			allHaveProducer := true
			for _, in := range action.Inputs {
				if _, ok := findProducer(m.reg, in.Item); !ok {
					allHaveProducer = false
					break
				}
			}
			if !allHaveProducer {
				continue
			}
		}
		rate, ok := computeActionRate(state, action, m.rates.actionDurationModifier(state, action))
		if !ok {
			continue
		}
		gold := goldRateFor(rate, m.reg.Items())
		candidate := goal.ActivityRate(skill, gold, rate.xpRate)
		if !found || candidate > bestRate {
			bestRate = candidate
			best = action
			found = true
		}
	}
	return best, found
}

// lockedActionForSkill returns the lowest-unlock-level still-locked
// action for skill, the natural next milestone to train toward.
func (m *MacroExpander) lockedActionForSkill(state world.GameState, skill world.SkillID) (world.ActionDef, bool) {
	best := world.ActionDef{}
	found := false
	for _, action := range m.reg.Actions().ForSkill(skill) {
		if state.SkillLevel(skill) >= action.UnlockLevel {
			continue
		}
		if !found || action.UnlockLevel < best.UnlockLevel {
			best = action
			found = true
		}
	}
	return best, found
}

func (m *MacroExpander) ensureActive(state world.GameState, action world.ActionID) (world.GameState, error) {
	if active, ok := state.ActiveAction(); ok && active == action {
		return state, nil
	}
	return m.advancer.provider.ApplyInteractionDeterministic(state, world.SwitchActivity{Action: action})
}

func (m *MacroExpander) applySellPolicy(state world.GameState, goal world.Goal) (world.GameState, error) {
	policy := goal.ComputeSellPolicy(state)
	return m.advancer.provider.ApplyInteractionDeterministic(state, world.SellItems{Policy: policy})
}

// advanceToStop advances state by expected-value batches until stop is
// satisfied. A WaitFor over xp (the common case) gets a single exact
// advance sized by the current rate; anything else is reached by
// exponentially doubling the batch size, since the xp-to-level curve
// and other stop shapes are collaborator knowledge the core does not
// have a formula for.
func (m *MacroExpander) advanceToStop(state world.GameState, stop world.WaitFor, goal world.Goal) (world.GameState, int, float64, error) {
	if stop.IsSatisfied(state) {
		return state, 0, 0, nil
	}

	if xpStop, ok := stop.(world.SkillXP); ok {
		rate, _ := m.rates.PerSkillRate(state, goal, xpStop.Skill, goal.IsSkillRelevant(xpStop.Skill))
		if rate > 0 {
			remaining := xpStop.TargetXP - state.SkillXP(xpStop.Skill)
			if remaining > 0 {
				exact := int(math.Ceil(float64(remaining) / rate))
				result, err := m.advancer.Advance(state, exact)
				if err != nil {
					return state, 0, 0, err
				}
				return result.State, exact, result.ExpectedDeaths, nil
			}
		}
	}

	cur := state
	totalTicks := 0
	var totalDeaths float64
	batch := 256
	for totalTicks < m.cfg.MaxTotalTicks {
		result, err := m.advancer.Advance(cur, batch)
		if err != nil {
			return cur, totalTicks, totalDeaths, err
		}
		cur = result.State
		totalTicks += batch
		totalDeaths += result.ExpectedDeaths
		if stop.IsSatisfied(cur) {
			return cur, totalTicks, totalDeaths, nil
		}
		batch *= 2
	}
	return cur, totalTicks, totalDeaths, fmt.Errorf("stop condition %q not reached within tick budget", stop.Describe())
}
