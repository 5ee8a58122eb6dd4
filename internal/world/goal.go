package world

// Goal is the polymorphic capability set spec.md §3 requires. Every
// goal variant — collaborator-constructed (ReachCurrency,
// ReachSkillLevel, MultiSkill) or core-internal (the planner's
// segment goal) — implements this interface.
type Goal interface {
	Remaining(state GameState) int
	Progress(state GameState) int
	IsSatisfied(state GameState) bool
	ProgressPerTick(state GameState, rates Rates) float64
	// ActivityRate tells the rate cache which rate matters for a given
	// skill: gold-rate, xp-rate, or a blend of both.
	ActivityRate(skill SkillID, goldRate, xpRate float64) float64
	IsSkillRelevant(skill SkillID) bool
	RelevantSkillsForBucketing() []SkillID
	ShouldTrackHP() bool
	ShouldTrackMastery() bool
	ShouldTrackInventory() bool
	ConsumingSkills() []SkillID
	ComputeSellPolicy(state GameState) SellPolicy
}

// ReachCurrency is satisfied once effective credits reach Target.
type ReachCurrency struct {
	Target int
}

func (g ReachCurrency) Remaining(state GameState) int {
	r := g.Target - g.EffectiveCredits(state)
	if r < 0 {
		return 0
	}
	return r
}

// EffectiveCredits is a convenience used by Remaining/Progress/IsSatisfied;
// it assumes a SellAll policy, matching ComputeSellPolicy below.
func (g ReachCurrency) EffectiveCredits(state GameState) int {
	total := state.Currency()
	for _, stack := range state.Inventory() {
		if item, ok := state.Registries().Items().ByID(stack.Item); ok {
			total += item.SellValue * stack.Count
		}
	}
	return total
}

func (g ReachCurrency) Progress(state GameState) int { return g.EffectiveCredits(state) }

func (g ReachCurrency) IsSatisfied(state GameState) bool {
	return g.EffectiveCredits(state) >= g.Target
}

func (g ReachCurrency) ProgressPerTick(state GameState, rates Rates) float64 {
	total := 0.0
	for _, v := range rates.ItemFlowsPerTick {
		total += v
	}
	return total
}

func (g ReachCurrency) ActivityRate(skill SkillID, goldRate, xpRate float64) float64 {
	return goldRate
}

func (g ReachCurrency) IsSkillRelevant(skill SkillID) bool { return true }

func (g ReachCurrency) RelevantSkillsForBucketing() []SkillID { return nil }

func (g ReachCurrency) ShouldTrackHP() bool        { return true }
func (g ReachCurrency) ShouldTrackMastery() bool   { return false }
func (g ReachCurrency) ShouldTrackInventory() bool { return true }
func (g ReachCurrency) ConsumingSkills() []SkillID { return nil }

func (g ReachCurrency) ComputeSellPolicy(state GameState) SellPolicy {
	return SellPolicy{SellAll: true}
}

// ReachSkillLevel is satisfied once Skill's xp reaches the xp required
// for Target's level.
type ReachSkillLevel struct {
	Skill     SkillID
	Target    int
	TargetXP  func(level int) int
}

func (g ReachSkillLevel) targetXP() int {
	if g.TargetXP == nil {
		return g.Target
	}
	return g.TargetXP(g.Target)
}

func (g ReachSkillLevel) Remaining(state GameState) int {
	r := g.targetXP() - state.SkillXP(g.Skill)
	if r < 0 {
		return 0
	}
	return r
}

func (g ReachSkillLevel) Progress(state GameState) int { return state.SkillXP(g.Skill) }

func (g ReachSkillLevel) IsSatisfied(state GameState) bool {
	return state.SkillLevel(g.Skill) >= g.Target
}

func (g ReachSkillLevel) ProgressPerTick(state GameState, rates Rates) float64 {
	return rates.XPPerTickBySkill[g.Skill]
}

func (g ReachSkillLevel) ActivityRate(skill SkillID, goldRate, xpRate float64) float64 {
	if skill == g.Skill {
		return xpRate
	}
	return goldRate
}

func (g ReachSkillLevel) IsSkillRelevant(skill SkillID) bool { return skill == g.Skill }

func (g ReachSkillLevel) RelevantSkillsForBucketing() []SkillID { return []SkillID{g.Skill} }

func (g ReachSkillLevel) ShouldTrackHP() bool        { return true }
func (g ReachSkillLevel) ShouldTrackMastery() bool   { return true }
func (g ReachSkillLevel) ShouldTrackInventory() bool { return true }

// ConsumingSkills names the skill this goal targets; whether that
// skill's best action actually requires inputs is a registry fact the
// rate cache and consume-until check separately.
func (g ReachSkillLevel) ConsumingSkills() []SkillID { return []SkillID{g.Skill} }

func (g ReachSkillLevel) ComputeSellPolicy(state GameState) SellPolicy {
	return SellPolicy{SellAll: true}
}

// MultiSkill is satisfied once every subgoal is satisfied. Since a
// player can only train one skill at a time, the admissible heuristic
// sums independent per-skill lower bounds (spec.md §4.3).
type MultiSkill struct {
	Subgoals []ReachSkillLevel
}

func (g MultiSkill) Remaining(state GameState) int {
	total := 0
	for _, sub := range g.Subgoals {
		total += sub.Remaining(state)
	}
	return total
}

func (g MultiSkill) Progress(state GameState) int {
	total := 0
	for _, sub := range g.Subgoals {
		total += sub.Progress(state)
	}
	return total
}

func (g MultiSkill) IsSatisfied(state GameState) bool {
	for _, sub := range g.Subgoals {
		if !sub.IsSatisfied(state) {
			return false
		}
	}
	return true
}

func (g MultiSkill) ProgressPerTick(state GameState, rates Rates) float64 {
	for _, sub := range g.Subgoals {
		if !sub.IsSatisfied(state) {
			return sub.ProgressPerTick(state, rates)
		}
	}
	return 0
}

func (g MultiSkill) ActivityRate(skill SkillID, goldRate, xpRate float64) float64 {
	if g.IsSkillRelevant(skill) {
		return xpRate
	}
	return goldRate
}

func (g MultiSkill) IsSkillRelevant(skill SkillID) bool {
	for _, sub := range g.Subgoals {
		if sub.Skill == skill {
			return true
		}
	}
	return false
}

func (g MultiSkill) RelevantSkillsForBucketing() []SkillID {
	skills := make([]SkillID, 0, len(g.Subgoals))
	for _, sub := range g.Subgoals {
		skills = append(skills, sub.Skill)
	}
	return skills
}

func (g MultiSkill) ShouldTrackHP() bool      { return true }
func (g MultiSkill) ShouldTrackMastery() bool { return true }
func (g MultiSkill) ShouldTrackInventory() bool { return true }

func (g MultiSkill) ConsumingSkills() []SkillID {
	skills := make([]SkillID, 0, len(g.Subgoals))
	for _, sub := range g.Subgoals {
		skills = append(skills, sub.Skill)
	}
	return skills
}

func (g MultiSkill) ComputeSellPolicy(state GameState) SellPolicy {
	return SellPolicy{SellAll: true}
}

// UnsatisfiedSubgoals returns the subgoals of a MultiSkill goal that
// are not yet satisfied in state, in declared order.
func (g MultiSkill) UnsatisfiedSubgoals(state GameState) []ReachSkillLevel {
	out := make([]ReachSkillLevel, 0, len(g.Subgoals))
	for _, sub := range g.Subgoals {
		if !sub.IsSatisfied(state) {
			out = append(out, sub)
		}
	}
	return out
}

// WatchSet is the set of events whose occurrence could change the
// optimal decision; it bounds wait-edge length but never implies an
// action should be taken (spec.md invariant 1).
type WatchSet struct {
	// UpgradeThresholds names shop purchases whose affordability under
	// the current sell policy should be watched.
	UpgradeThresholds []PurchaseID
	// SkillUnlockLevels names (skill, level) pairs whose crossing should
	// be watched.
	SkillUnlockLevels []SkillLevelWatch
	// WatchInputDepletion, if true, watches the active consuming
	// action's inputs for depletion.
	WatchInputDepletion bool
	// GoalLine, if non-nil, watches the goal's own target line.
	GoalLine Goal
}

// SkillLevelWatch names one (skill, level) unlock boundary to watch.
type SkillLevelWatch struct {
	Skill SkillID
	Level int
}

// DetectBoundary reports the first boundary condition WatchSet
// observes in state, if any, given ticks already elapsed in the
// current segment. The zero value ("", false) means no boundary yet.
// It checks GoalLine and SkillUnlockLevels only: UpgradeThresholds and
// WatchInputDepletion are not checked here, and elapsedTicks is unused.
func (w WatchSet) DetectBoundary(state GameState, elapsedTicks int) (string, bool) {
	if w.GoalLine != nil && w.GoalLine.IsSatisfied(state) {
		return "goal_reached", true
	}
	for _, lvl := range w.SkillUnlockLevels {
		if state.SkillLevel(lvl.Skill) >= lvl.Level {
			return "unlock_observed", true
		}
	}
	return "", false
}
