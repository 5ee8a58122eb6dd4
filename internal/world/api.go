// Package world declares the collaborator interfaces the planner core
// consumes but never implements: game state, content registries, the
// rate estimator, the value model, the candidate enumerator, and the
// tick engine. Per SPEC_FULL.md §1/§6 these are supplied by the game;
// the only implementation in this module lives in internal/world/fixture
// and exists solely to exercise the core's own tests.
package world

import "math/rand/v2"

// SkillID, ActionID, ItemID, and PurchaseID are opaque content-registry
// identifiers. The core never interprets their contents.
type (
	SkillID    string
	ActionID   string
	ItemID     string
	PurchaseID string
)

// ToolKind enumerates the three tool tiers the BucketKey and state-key
// track explicitly (spec.md §3).
type ToolKind uint8

const (
	ToolAxe ToolKind = iota
	ToolRod
	ToolPick
)

// InventoryStack is one (item, count) entry in a state's ordered inventory.
type InventoryStack struct {
	Item  ItemID
	Count int
}

// GameState is the opaque, value-semantic world state the planner
// searches over. Every transition returns a new GameState; nothing in
// this module ever mutates one in place.
type GameState interface {
	Currency() int
	Inventory() []InventoryStack
	HP() int
	MaxHP() int
	// ActiveAction returns the currently running action, if any.
	ActiveAction() (ActionID, bool)
	SkillXP(skill SkillID) int
	SkillLevel(skill SkillID) int
	ActionMasteryXP(action ActionID) int
	ActionMasteryLevel(action ActionID) int
	ShopPurchaseCount(purchase PurchaseID) int
	ToolTier(tool ToolKind) int
	Registries() Registries
}

// ItemAmount is a quantity of a single item, used for action inputs and outputs.
type ItemAmount struct {
	Item   ItemID
	Amount float64
}

// ActionDef is static, read-only content describing one action.
type ActionDef struct {
	ID          ActionID
	Skill       SkillID
	UnlockLevel int

	// MeanDurationTicks is the expected ticks per attempt before any
	// skill-wide duration modifier derived from shop purchases.
	MeanDurationTicks float64
	XPPerAction       float64

	Inputs  []ItemAmount
	Outputs []ItemAmount

	// IsThieving marks actions with a failure/stun/death model: on
	// failure the actor pays StunPenaltyTicks and may die with
	// DeathProbability, then restarts.
	IsThieving         bool
	SuccessProbability float64
	StunPenaltyTicks   float64
	DeathProbability   float64
}

// IsConsuming reports whether the action requires input items.
func (a ActionDef) IsConsuming() bool { return len(a.Inputs) > 0 }

// ItemDef is static, read-only content describing one item.
type ItemDef struct {
	ID        ItemID
	Name      string
	SellValue int
}

// PurchaseEffect describes what a shop purchase changes about the actor.
type PurchaseEffect struct {
	// DurationModifierSkill, if non-empty, is the skill whose action
	// durations DurationModifierFactor scales (e.g. 0.9 for a 10% cut).
	DurationModifierSkill SkillID
	DurationModifierFactor float64
	// Tool, if set, is the tool tier this purchase increments.
	Tool      *ToolKind
	ToolLevel int
}

// PurchaseDef is static, read-only content describing one shop purchase.
type PurchaseDef struct {
	ID     PurchaseID
	Cost   int
	Effect PurchaseEffect
}

// SkillUnlock names the actions that become available once a skill
// crosses a level.
type SkillUnlock struct {
	Skill   SkillID
	Level   int
	Actions []ActionID
}

// ActionRegistry is the read-only action content table.
type ActionRegistry interface {
	All() []ActionDef
	ForSkill(skill SkillID) []ActionDef
	ByID(id ActionID) (ActionDef, bool)
}

// ItemRegistry is the read-only item content table.
type ItemRegistry interface {
	ByID(id ItemID) (ItemDef, bool)
}

// ShopRegistry is the read-only shop content table.
type ShopRegistry interface {
	All() []PurchaseDef
	ByID(id PurchaseID) (PurchaseDef, bool)
}

// Registries bundles the three read-only content tables plus the
// per-skill unlock boundaries used by the macro expander and next-
// decision-delta analysis.
type Registries interface {
	Actions() ActionRegistry
	Items() ItemRegistry
	Shop() ShopRegistry
	// UnlockBoundaries returns, per skill, the sorted list of
	// (level -> newly unlocked actions) boundaries.
	UnlockBoundaries() []SkillUnlock
}

// Rates is the estimator's per-tick flow summary for one action, under
// the actor's current modifiers.
type Rates struct {
	ActionID             ActionID
	XPPerTickBySkill      map[SkillID]float64
	ItemFlowsPerTick      map[ItemID]float64
	ItemsConsumedPerTick  map[ItemID]float64
	MasteryXPPerTick      float64
	// TicksUntilDeath is the expected number of ticks before a death
	// occurs under this action's failure model; 0 means no death risk.
	TicksUntilDeath float64
}

// Estimator computes per-tick rates for an action given the actor's
// current modifiers (shop purchases, skill levels).
type Estimator interface {
	// EstimateRates returns rates for the state's currently active action.
	EstimateRates(state GameState) (Rates, error)
	// EstimateRatesForAction returns rates for action as if it were
	// active, without requiring it to actually be running.
	EstimateRatesForAction(state GameState, action ActionID) (Rates, error)
}

// SellPolicy specifies which inventory stacks convert to currency on a
// SellItems interaction.
type SellPolicy struct {
	// SellAll, when true, liquidates the entire inventory.
	SellAll bool
	// Items, when SellAll is false, names the specific items to sell.
	Items []ItemID
}

// ValueModel converts item flows and inventory into gold-equivalent terms.
type ValueModel interface {
	ValuePerTick(state GameState, rates Rates) float64
	EffectiveCredits(state GameState, policy SellPolicy) int
}

// Interaction is a zero-time action the planner may apply to a state.
type Interaction interface {
	isInteraction()
}

// SwitchActivity starts or switches the actor to the named action.
type SwitchActivity struct{ Action ActionID }

// BuyShopItem purchases a shop upgrade.
type BuyShopItem struct{ Purchase PurchaseID }

// SellItems liquidates inventory per policy.
type SellItems struct{ Policy SellPolicy }

func (SwitchActivity) isInteraction() {}
func (BuyShopItem) isInteraction()    {}
func (SellItems) isInteraction()      {}

// StopReason is why ConsumeTicksUntil stopped advancing.
type StopReason uint8

const (
	StillRunning StopReason = iota
	PlayerDied
	OutOfInputs
	InventoryFull
	MaxTicksReached
	ConditionSatisfied
)

func (r StopReason) String() string {
	switch r {
	case StillRunning:
		return "still_running"
	case PlayerDied:
		return "player_died"
	case OutOfInputs:
		return "out_of_inputs"
	case InventoryFull:
		return "inventory_full"
	case MaxTicksReached:
		return "max_ticks_reached"
	case ConditionSatisfied:
		return "condition_satisfied"
	default:
		return "unknown"
	}
}

// StopCondition reports whether a state satisfies a wait target; the
// tick engine polls it between ticks.
type StopCondition func(GameState) bool

// GameProvider is the game simulation boundary: zero-time interaction
// application and the bounded tick engine that drives wait/macro edges.
type GameProvider interface {
	ApplyInteraction(state GameState, interaction Interaction, rng *rand.Rand) (GameState, error)
	ApplyInteractionDeterministic(state GameState, interaction Interaction) (GameState, error)
	StartAction(state GameState, action ActionID, rng *rand.Rand) (GameState, error)
	// ConsumeTicksUntil advances state deterministically (expected-value
	// math) or stochastically (full simulation), stopping at the first
	// of: stop(state) becomes true, maxTicks ticks elapse, or a
	// terminal condition (death, depletion, full inventory) occurs.
	ConsumeTicksUntil(state GameState, rng *rand.Rand, stop StopCondition, maxTicks int) (next GameState, ticksElapsed int, reason StopReason, err error)
	// ValidateState is a sanity hook consume-until calls on every
	// returned state.
	ValidateState(state GameState) error
}

// Candidates is the small action/upgrade/macro/sell/watch set the
// enumerator proposes for a state; see spec.md §3.
type Candidates struct {
	SwitchToActivities    []ActionID
	BuyUpgrades           []PurchaseID
	Macros                []MacroCandidate
	ShouldEmitSellCandidate bool
	SellPolicy            SellPolicy
	WatchSet              WatchSet
}

// CandidateEnumerator proposes a small branching set for a state. Its
// contract (spec.md §9): a degenerate enumerator returning everything
// would still be correct, only slower.
type CandidateEnumerator interface {
	Enumerate(state GameState, goal Goal, sellPolicy *SellPolicy, collectStats bool) (Candidates, error)
}
