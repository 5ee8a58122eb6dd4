package world

import "fmt"

// WaitFor is the composite stop condition a macro or wait edge drives
// consume-until toward (spec.md §3).
type WaitFor interface {
	IsSatisfied(state GameState) bool
	Progress(state GameState) int
	Describe() string
}

// SkillXP is satisfied once Skill's xp reaches TargetXP.
type SkillXP struct {
	Skill    SkillID
	TargetXP int
}

func (w SkillXP) IsSatisfied(state GameState) bool { return state.SkillXP(w.Skill) >= w.TargetXP }
func (w SkillXP) Progress(state GameState) int     { return state.SkillXP(w.Skill) }
func (w SkillXP) Describe() string {
	return fmt.Sprintf("skill xp %s >= %d", w.Skill, w.TargetXP)
}

// InventoryValue is satisfied once effective credits reach Target.
type InventoryValue struct {
	Target int
}

func (w InventoryValue) IsSatisfied(state GameState) bool {
	return effectiveCreditsSellAll(state) >= w.Target
}
func (w InventoryValue) Progress(state GameState) int { return effectiveCreditsSellAll(state) }
func (w InventoryValue) Describe() string             { return fmt.Sprintf("inventory value >= %d", w.Target) }

func effectiveCreditsSellAll(state GameState) int {
	total := state.Currency()
	for _, stack := range state.Inventory() {
		if item, ok := state.Registries().Items().ByID(stack.Item); ok {
			total += item.SellValue * stack.Count
		}
	}
	return total
}

// InventoryAtLeast is satisfied once Item's stack count reaches Count.
type InventoryAtLeast struct {
	Item  ItemID
	Count int
}

func (w InventoryAtLeast) IsSatisfied(state GameState) bool {
	return inventoryCount(state, w.Item) >= w.Count
}
func (w InventoryAtLeast) Progress(state GameState) int { return inventoryCount(state, w.Item) }
func (w InventoryAtLeast) Describe() string {
	return fmt.Sprintf("inventory %s >= %d", w.Item, w.Count)
}

func inventoryCount(state GameState, item ItemID) int {
	for _, stack := range state.Inventory() {
		if stack.Item == item {
			return stack.Count
		}
	}
	return 0
}

// SkillLevelAtLeast is satisfied once Skill's level reaches Level. Used
// by the prerequisite resolver, which only knows a producer's unlock
// level, not the xp curve behind it.
type SkillLevelAtLeast struct {
	Skill SkillID
	Level int
}

func (w SkillLevelAtLeast) IsSatisfied(state GameState) bool { return state.SkillLevel(w.Skill) >= w.Level }
func (w SkillLevelAtLeast) Progress(state GameState) int     { return state.SkillLevel(w.Skill) }
func (w SkillLevelAtLeast) Describe() string {
	return fmt.Sprintf("skill level %s >= %d", w.Skill, w.Level)
}

// InputsDepleted is satisfied once the named action can no longer run
// due to insufficient inputs. The fixture and real game collaborator
// are the source of truth for "can run"; this condition is normally
// only used as a watch, not polled directly.
type InputsDepleted struct {
	Action ActionID
}

func (w InputsDepleted) IsSatisfied(state GameState) bool {
	def, ok := state.Registries().Actions().ByID(w.Action)
	if !ok {
		return true
	}
	for _, in := range def.Inputs {
		if float64(inventoryCount(state, in.Item)) < in.Amount {
			return true
		}
	}
	return false
}
func (w InputsDepleted) Progress(state GameState) int { return 0 }
func (w InputsDepleted) Describe() string             { return fmt.Sprintf("inputs depleted for %s", w.Action) }

// GoalWait wraps a Goal as a WaitFor, used by macros whose stop
// condition is simply "the outer goal is satisfied".
type GoalWait struct {
	Goal Goal
}

func (w GoalWait) IsSatisfied(state GameState) bool { return w.Goal.IsSatisfied(state) }
func (w GoalWait) Progress(state GameState) int     { return w.Goal.Progress(state) }
func (w GoalWait) Describe() string                 { return "goal satisfied" }

// AnyOf is satisfied once any of Conditions is satisfied; it is the
// shape every macro's composite stop condition takes (spec.md §4.7).
type AnyOf struct {
	Conditions []WaitFor
}

func (w AnyOf) IsSatisfied(state GameState) bool {
	for _, c := range w.Conditions {
		if c.IsSatisfied(state) {
			return true
		}
	}
	return false
}

// Progress returns the maximum progress across branches, since any one
// of them completing ends the wait.
func (w AnyOf) Progress(state GameState) int {
	best := 0
	for i, c := range w.Conditions {
		p := c.Progress(state)
		if i == 0 || p > best {
			best = p
		}
	}
	return best
}

func (w AnyOf) Describe() string {
	s := "any of:"
	for _, c := range w.Conditions {
		s += " [" + c.Describe() + "]"
	}
	return s
}

// MacroStopRule decides, for a given state, what the macro should wait
// for next. unlockBoundaries is passed through so a rule can watch
// upcoming unlocks without its own registries handle.
type MacroStopRule interface {
	ToWaitFor(state GameState, unlockBoundaries []SkillUnlock) WaitFor
}

// SkillLevelStop is a MacroStopRule that waits for Skill to reach
// Level; the prerequisite resolver attaches this to a substituted
// TrainSkillUntil since it only knows a producer's unlock level, not
// its xp curve.
type SkillLevelStop struct {
	Skill SkillID
	Level int
}

func (s SkillLevelStop) ToWaitFor(state GameState, unlockBoundaries []SkillUnlock) WaitFor {
	return SkillLevelAtLeast{Skill: s.Skill, Level: s.Level}
}

// MacroCandidate is the tagged variant set the candidate enumerator
// proposes and the macro expander resolves (spec.md §3).
type MacroCandidate interface {
	isMacroCandidate()
}

// TrainSkillUntil trains Skill on its best unlocked non-consuming
// action until PrimaryStop or any of WatchedStops is satisfied.
type TrainSkillUntil struct {
	Skill         SkillID
	PrimaryStop   MacroStopRule
	WatchedStops  []MacroStopRule
}

// TrainConsumingSkillUntil is TrainSkillUntil for a skill whose best
// action requires inputs; the macro expander handles producer
// switching and buffering before training can proceed.
type TrainConsumingSkillUntil struct {
	Skill        SkillID
	PrimaryStop  MacroStopRule
	WatchedStops []MacroStopRule
}

// AcquireItem trains whatever produces Item until Quantity is on hand.
type AcquireItem struct {
	Item     ItemID
	Quantity int
}

// EnsureStock is like AcquireItem but phrased as "keep at least MinTotal
// on hand", used by the candidate enumerator to batch stocking macros.
type EnsureStock struct {
	Item     ItemID
	MinTotal int
}

// ProduceItem runs Action (which produces Item) for EstimatedTicks.
type ProduceItem struct {
	Item           ItemID
	Action         ActionID
	EstimatedTicks int
}

func (TrainSkillUntil) isMacroCandidate()         {}
func (TrainConsumingSkillUntil) isMacroCandidate() {}
func (AcquireItem) isMacroCandidate()             {}
func (EnsureStock) isMacroCandidate()             {}
func (ProduceItem) isMacroCandidate()             {}
