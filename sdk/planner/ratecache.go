package planner

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/opencoff/golang-lru"

	"github.com/lox/idleplanner/internal/world"
)

// RateReason explains a zero best-rate for diagnostic propagation
// into a solver failure message (spec.md §4.1).
type RateReason interface {
	isRateReason()
	String() string
}

// NoRelevantSkillReason means the goal considers no skill relevant to score.
type NoRelevantSkillReason struct{}

// NoUnlockedActionsReason means every candidate action is either
// locked or blocked on an input with no available producer.
type NoUnlockedActionsReason struct {
	Skill              world.SkillID
	ActionNeedingInput world.ActionID
	MissingInput       world.ItemID
}

// InputsRequiredReason means the only unlocked actions for the skill
// all require inputs and none currently has a producing source.
type InputsRequiredReason struct{ Skill world.SkillID }

// ZeroTicksReason means the only candidate actions resolve to zero
// mean duration, which the estimator treats as unusable.
type ZeroTicksReason struct{ Action world.ActionID }

func (NoRelevantSkillReason) isRateReason()   {}
func (NoUnlockedActionsReason) isRateReason() {}
func (InputsRequiredReason) isRateReason()    {}
func (ZeroTicksReason) isRateReason()         {}

func (NoRelevantSkillReason) String() string { return "no relevant skill for this goal" }
func (r NoUnlockedActionsReason) String() string {
	if r.MissingInput != "" {
		return fmt.Sprintf("no unlocked action for %s produces enough %s for %s", r.Skill, r.MissingInput, r.ActionNeedingInput)
	}
	return fmt.Sprintf("no unlocked actions for %s", r.Skill)
}
func (r InputsRequiredReason) String() string { return fmt.Sprintf("%s is blocked on inputs with no producer", r.Skill) }
func (r ZeroTicksReason) String() string      { return fmt.Sprintf("%s resolves to zero ticks per action", r.Action) }

// actionRate is the per-tick throughput the rate cache derives for
// one action under the actor's current modifiers.
type actionRate struct {
	goldRate  float64
	xpRate    float64
	output    map[world.ItemID]float64
	input     map[world.ItemID]float64
	ticksUntilDeath float64
}

// cachedRate is the combined-rate LRU's value type.
type cachedRate struct {
	rate   float64
	reason RateReason
}

// RateCache memoizes per-capability-class best rates for a single
// solve (spec.md §4.1). It is never hoisted to a package-level global
// (spec.md §9): one instance is created per solver context.
type RateCache struct {
	estimator  world.Estimator
	registries world.Registries

	combined *lru.Cache

	skillMu sync.Mutex
	skill   map[string]cachedRate
}

// NewRateCache returns an empty rate cache bounded to capacity
// combined-rate entries.
func NewRateCache(estimator world.Estimator, registries world.Registries, capacity int) (*RateCache, error) {
	combined, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("create rate cache: %w", err)
	}
	return &RateCache{
		estimator:  estimator,
		registries: registries,
		combined:   combined,
		skill:      make(map[string]cachedRate),
	}, nil
}

func capabilityKey(state world.GameState, skills []world.SkillID) string {
	sorted := append([]world.SkillID(nil), skills...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := fmt.Sprintf("axe=%d|rod=%d|pick=%d", state.ToolTier(world.ToolAxe), state.ToolTier(world.ToolRod), state.ToolTier(world.ToolPick))
	for _, s := range sorted {
		key += fmt.Sprintf("|%s=%d", s, state.SkillLevel(s))
	}
	return key
}

func allSkills(reg world.Registries) []world.SkillID {
	seen := make(map[world.SkillID]bool)
	for _, u := range reg.UnlockBoundaries() {
		seen[u.Skill] = true
	}
	out := make([]world.SkillID, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// computeActionRate derives actionRate for a single action under
// state's current modifiers, including thieving's success/stun/death
// cycle correction (spec.md §4.1).
func computeActionRate(state world.GameState, action world.ActionDef, modifier float64) (actionRate, bool) {
	baseTicks := action.MeanDurationTicks * modifier
	if baseTicks <= 0 {
		return actionRate{}, false
	}

	rate := actionRate{output: make(map[world.ItemID]float64), input: make(map[world.ItemID]float64)}

	if !action.IsThieving {
		attemptsPerTick := 1.0 / baseTicks
		rate.xpRate = attemptsPerTick * action.XPPerAction
		for _, out := range action.Outputs {
			rate.output[out.Item] = attemptsPerTick * out.Amount
		}
		for _, in := range action.Inputs {
			rate.input[in.Item] = attemptsPerTick * in.Amount
		}
		return rate, true
	}

	p := action.SuccessProbability
	cycleTicks := baseTicks + (1-p)*action.StunPenaltyTicks
	if cycleTicks <= 0 {
		return actionRate{}, false
	}
	successRate := p / cycleTicks
	attemptRate := 1.0 / cycleTicks

	rate.xpRate = successRate * action.XPPerAction
	for _, out := range action.Outputs {
		rate.output[out.Item] = successRate * out.Amount
	}
	for _, in := range action.Inputs {
		rate.input[in.Item] = attemptRate * in.Amount
	}

	deathProbPerAttempt := (1 - p) * action.DeathProbability
	if deathProbPerAttempt > 0 {
		expectedAttemptsUntilDeath := 1.0 / deathProbPerAttempt
		rate.ticksUntilDeath = expectedAttemptsUntilDeath * cycleTicks
	}
	return rate, true
}

func goldRateFor(rate actionRate, items world.ItemRegistry) float64 {
	total := 0.0
	for item, perTick := range rate.output {
		if def, ok := items.ByID(item); ok {
			total += perTick * float64(def.SellValue)
		}
	}
	return total
}

// producerThroughput returns the best currently-unlocked producer's
// items-per-tick output for item, or 0 if none is unlocked.
func (c *RateCache) producerThroughput(state world.GameState, item world.ItemID) float64 {
	best := 0.0
	for _, action := range c.registries.Actions().All() {
		if state.SkillLevel(action.Skill) < action.UnlockLevel {
			continue
		}
		rate, ok := computeActionRate(state, action, c.actionDurationModifier(state, action))
		if !ok {
			continue
		}
		if v, ok2 := rate.output[item]; ok2 && v > best {
			best = v
		}
	}
	return best
}

// actionDurationModifier returns the product of every owned shop
// purchase's duration modifier applying to action's skill.
func (c *RateCache) actionDurationModifier(state world.GameState, action world.ActionDef) float64 {
	factor := 1.0
	for _, p := range c.registries.Shop().All() {
		if p.Effect.DurationModifierSkill != action.Skill {
			continue
		}
		if state.ShopPurchaseCount(p.ID) > 0 {
			factor *= p.Effect.DurationModifierFactor
		}
	}
	return factor
}

// eligibleActions returns every unlocked action for skill whose
// inputs (if any) have a nonzero best available producer.
func (c *RateCache) eligibleActions(state world.GameState, skill world.SkillID) []world.ActionDef {
	candidates := c.registries.Actions().ForSkill(skill)
	out := make([]world.ActionDef, 0, len(candidates))
	for _, action := range candidates {
		if state.SkillLevel(skill) < action.UnlockLevel {
			continue
		}
		if !action.IsConsuming() {
			out = append(out, action)
			continue
		}
		blocked := false
		for _, in := range action.Inputs {
			if c.producerThroughput(state, in.Item) <= 0 {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, action)
		}
	}
	return out
}

// noEligibleReason explains an empty eligibleActions result for skill:
// NoUnlockedActionsReason when every action is still locked,
// InputsRequiredReason when unlocked actions exist but are all blocked
// on inputs.
func (c *RateCache) noEligibleReason(state world.GameState, skill world.SkillID) RateReason {
	for _, action := range c.registries.Actions().ForSkill(skill) {
		if state.SkillLevel(skill) >= action.UnlockLevel {
			return InputsRequiredReason{Skill: skill}
		}
	}
	return NoUnlockedActionsReason{Skill: skill}
}

// BestUnlockedRate is the combined rate accessor used by single-skill
// and currency goals (spec.md §4.1/§4.3).
func (c *RateCache) BestUnlockedRate(state world.GameState, goal world.Goal) (float64, RateReason) {
	relevantSkills := make([]world.SkillID, 0)
	for _, s := range allSkills(c.registries) {
		if goal.IsSkillRelevant(s) {
			relevantSkills = append(relevantSkills, s)
		}
	}
	if len(relevantSkills) == 0 {
		return 0, NoRelevantSkillReason{}
	}

	key := "combined|" + capabilityKey(state, relevantSkills)
	if v, ok := c.combined.Get(key); ok {
		cached := v.(cachedRate)
		return cached.rate, cached.reason
	}

	best := 0.0
	var reason RateReason = NoRelevantSkillReason{}
	for _, skill := range relevantSkills {
		eligible := c.eligibleActions(state, skill)
		if len(eligible) == 0 {
			reason = c.noEligibleReason(state, skill)
			continue
		}
		for _, action := range eligible {
			rate, ok := computeActionRate(state, action, c.actionDurationModifier(state, action))
			if !ok {
				reason = ZeroTicksReason{Action: action.ID}
				continue
			}
			gold := goldRateFor(rate, c.registries.Items())
			candidate := goal.ActivityRate(skill, gold, rate.xpRate)
			if candidate > best {
				best = candidate
			}
		}
	}

	if best == 0 {
		c.combined.Add(key, cachedRate{rate: 0, reason: reason})
		return 0, reason
	}
	c.combined.Add(key, cachedRate{rate: best, reason: nil})
	return best, nil
}

// PerSkillRate is the multi-skill heuristic's per-subgoal accessor
// (spec.md §4.1/§4.3). goalRelevant selects raw xp-rate scoring for
// prerequisite (non-goal) skills versus goal-rate scoring for
// goal-relevant skills (spec.md §9's preserved distinction).
func (c *RateCache) PerSkillRate(state world.GameState, goal world.Goal, skill world.SkillID, goalRelevant bool) (float64, RateReason) {
	key := fmt.Sprintf("skill=%s|relevant=%v|%s", skill, goalRelevant, capabilityKey(state, []world.SkillID{skill}))

	c.skillMu.Lock()
	if cached, ok := c.skill[key]; ok {
		c.skillMu.Unlock()
		return cached.rate, cached.reason
	}
	c.skillMu.Unlock()

	eligible := c.eligibleActions(state, skill)
	if len(eligible) == 0 {
		reason := c.noEligibleReason(state, skill)
		c.storeSkillRate(key, 0, reason)
		return 0, reason
	}

	best := 0.0
	var reason RateReason
	for _, action := range eligible {
		rate, ok := computeActionRate(state, action, c.actionDurationModifier(state, action))
		if !ok {
			reason = ZeroTicksReason{Action: action.ID}
			continue
		}
		xpRate := rate.xpRate
		for _, in := range action.Inputs {
			producer := c.producerThroughput(state, in.Item)
			if in.Amount <= 0 {
				continue
			}
			// producer is items/tick and in.Amount is items/attempt, so
			// producer/in.Amount is the attempt rate the supply can
			// sustain; convert to xp/tick before capping xpRate with it.
			capRate := (producer / in.Amount) * action.XPPerAction
			if capRate < xpRate {
				xpRate = capRate
			}
		}
		candidate := xpRate
		if goalRelevant {
			gold := goldRateFor(rate, c.registries.Items())
			candidate = goal.ActivityRate(skill, gold, xpRate)
		}
		if candidate > best {
			best = candidate
		}
	}

	if best == 0 && reason == nil {
		reason = InputsRequiredReason{Skill: skill}
	}
	c.storeSkillRate(key, best, reason)
	return best, reason
}

func (c *RateCache) storeSkillRate(key string, rate float64, reason RateReason) {
	c.skillMu.Lock()
	c.skill[key] = cachedRate{rate: rate, reason: reason}
	c.skillMu.Unlock()
}
