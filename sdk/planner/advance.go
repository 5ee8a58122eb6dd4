package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lox/idleplanner/internal/randutil"
	"github.com/lox/idleplanner/internal/world"
)

// fullSimTimeout bounds the full-simulation advance fallback so a
// collaborator bug (infinite tick loop) cannot hang a solve
// indefinitely; the A* driver has no other wall-clock guard
// (spec.md §5 — node/queue caps are the only other limits).
const fullSimTimeout = 5 * time.Second

// Advancer drives State Advance (spec.md §4.4): an O(1) expected-value
// fast-forward when the active action is rate-modelable, falling back
// to the collaborator's full tick simulation otherwise.
type Advancer struct {
	estimator world.Estimator
	value     world.ValueModel
	provider  world.GameProvider
	simSeed   int64
}

// NewAdvancer returns an Advancer using seed as the single fixed seed
// for every full-simulation fallback this solve performs (spec.md §5).
func NewAdvancer(estimator world.Estimator, value world.ValueModel, provider world.GameProvider, seed int64) *Advancer {
	return &Advancer{estimator: estimator, value: value, provider: provider, simSeed: seed}
}

// AdvanceResult is the outcome of advancing a state by some number of
// ticks.
type AdvanceResult struct {
	State          world.GameState
	ExpectedDeaths float64
}

// isRateModelable reports whether state's active action can be
// advanced by expected-value math rather than full simulation
// (spec.md §4.4: "non-combat skill action, including consuming
// actions"). The estimator is the source of truth: if it can produce
// rates for the active action, it is modelable.
func (a *Advancer) isRateModelable(state world.GameState) bool {
	_, ok := state.ActiveAction()
	if !ok {
		return false
	}
	_, err := a.estimator.EstimateRates(state)
	return err == nil
}

// Advance moves state forward by deltaTicks, using expected-value math
// when possible and the collaborator's full tick simulation otherwise
// (spec.md §4.4).
func (a *Advancer) Advance(state world.GameState, deltaTicks int) (AdvanceResult, error) {
	if deltaTicks <= 0 {
		return AdvanceResult{State: state}, nil
	}
	if a.isRateModelable(state) {
		return a.advanceExpectedValue(state, deltaTicks)
	}
	return a.advanceFullSimulation(state, deltaTicks)
}

func (a *Advancer) advanceExpectedValue(state world.GameState, deltaTicks int) (AdvanceResult, error) {
	active, _ := state.ActiveAction()
	rates, err := a.estimator.EstimateRates(state)
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("estimate rates for %s: %w", active, err)
	}

	dt := float64(deltaTicks)
	var expectedDeaths float64
	if rates.TicksUntilDeath > 0 {
		expectedDeaths = dt / rates.TicksUntilDeath
	}

	goldGain := int(math.Floor(a.value.ValuePerTick(state, rates) * dt))

	interaction := advanceInteraction{
		xpGainBySkill:   scale(rates.XPPerTickBySkill, dt),
		masteryGain:     int(math.Floor(rates.MasteryXPPerTick * dt)),
		itemsGained:     scale(rates.ItemFlowsPerTick, dt),
		itemsConsumed:   scale(rates.ItemsConsumedPerTick, dt),
		currencyGain:    goldGain,
	}

	next, err := applyAdvanceInteraction(state, interaction, a.provider)
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("apply expected-value advance: %w", err)
	}
	return AdvanceResult{State: next, ExpectedDeaths: expectedDeaths}, nil
}

// advanceInteraction is the pure description of an expected-value
// advance's effects, kept separate from world.Interaction (a
// zero-time planner edge) since this is a deterministic multi-tick
// accumulation the core computes itself rather than delegating.
type advanceInteraction struct {
	xpGainBySkill map[world.SkillID]float64
	masteryGain   int
	itemsGained   map[world.ItemID]float64
	itemsConsumed map[world.ItemID]float64
	currencyGain  int
}

// applyAdvanceInteraction asks the provider to apply a deterministic
// interaction carrying the computed deltas. Collaborators implement
// this by constructing a synthetic deterministic state transition;
// the core never mutates GameState fields directly (spec.md §3's
// value-semantic rule).
func applyAdvanceInteraction(state world.GameState, delta advanceInteraction, provider world.GameProvider) (world.GameState, error) {
	return provider.ApplyInteractionDeterministic(state, expectedValueAdvance{delta: delta})
}

// expectedValueAdvance is a provider-recognized interaction variant
// carrying one tick-batch's accumulated deltas. It satisfies
// world.Interaction's marker so it can travel through the same
// ApplyInteractionDeterministic entry point as SwitchActivity/
// BuyShopItem/SellItems, keeping the collaborator boundary to one
// function instead of a second bespoke "advance" method.
type expectedValueAdvance struct {
	delta advanceInteraction
}

func (expectedValueAdvance) isInteraction() {}

// Delta exposes the accumulated per-tick deltas to a collaborator's
// ApplyInteractionDeterministic implementation.
func (e expectedValueAdvance) Delta() (xp map[world.SkillID]float64, mastery int, gained, consumed map[world.ItemID]float64, currency int) {
	return e.delta.xpGainBySkill, e.delta.masteryGain, e.delta.itemsGained, e.delta.itemsConsumed, e.delta.currencyGain
}

func scale[K comparable](rates map[K]float64, dt float64) map[K]float64 {
	out := make(map[K]float64, len(rates))
	for k, v := range rates {
		out[k] = v * dt
	}
	return out
}

func (a *Advancer) advanceFullSimulation(state world.GameState, deltaTicks int) (AdvanceResult, error) {
	rng := randutil.New(a.simSeed)

	type result struct {
		state world.GameState
		err   error
	}

	ctx, cancel := context.WithTimeout(context.Background(), fullSimTimeout)
	defer cancel()

	resultCh := make(chan result, 1)
	go func() {
		never := func(world.GameState) bool { return false }
		next, _, _, err := a.provider.ConsumeTicksUntil(state, rng, never, deltaTicks)
		resultCh <- result{state: next, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			return AdvanceResult{}, fmt.Errorf("full-simulation advance: %w", r.err)
		}
		return AdvanceResult{State: r.state}, nil
	case <-ctx.Done():
		return AdvanceResult{}, fmt.Errorf("full-simulation advance timed out after %v", fullSimTimeout)
	}
}
