package planner

import (
	"container/heap"

	"github.com/lox/idleplanner/internal/world"
)

// Driver is the A* Driver (spec.md §4.8): it searches an append-only
// node arena with a binary heap ordered by (f, g), expanding
// interaction, macro, and wait edges until the goal is reached or a
// limit trips.
type Driver struct {
	enumerator world.CandidateEnumerator
	heuristic  *Heuristic
	frontier   *ParetoFrontier
	expander   *MacroExpander
	delta      *DeltaAnalyzer
	advancer   *Advancer
	provider   world.GameProvider
	cfg        SolverConfig
}

// NewDriver returns a Driver wired to its collaborators.
func NewDriver(enumerator world.CandidateEnumerator, heuristic *Heuristic, frontier *ParetoFrontier, expander *MacroExpander, delta *DeltaAnalyzer, advancer *Advancer, provider world.GameProvider, cfg SolverConfig) *Driver {
	return &Driver{
		enumerator: enumerator,
		heuristic:  heuristic,
		frontier:   frontier,
		expander:   expander,
		delta:      delta,
		advancer:   advancer,
		provider:   provider,
		cfg:        cfg,
	}
}

// heapItem is one entry in the priority queue: an index into the node
// arena ordered by (f, g) ascending.
type heapItem struct {
	nodeID int
	f      float64
	g      int
}

type nodeHeap []heapItem

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g < h[j].g
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(heapItem)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Solve runs the A* search from state toward goal, returning a
// reconstructed Plan or a typed SolverFailure (spec.md §4.8/§7).
func (d *Driver) Solve(state world.GameState, goal world.Goal) (*Plan, error) {
	profile := NewProfile()

	if goal.IsSatisfied(state) {
		return &Plan{Diagnostics: profile, FinalState: state}, nil
	}
	if zero, reason := d.heuristic.RootTripwire(state, goal); zero {
		return nil, SolverFailure{Reason: ZeroRootRate, ZeroRateReason: reason.String()}
	}

	nodes := []Node{{State: state, ParentID: -1}}
	bestTicks := make(map[string]int)
	bucketsSeen := make(map[string]bool)
	dominanceChecks := 0

	pq := &nodeHeap{}
	heap.Init(pq)
	h0, _ := d.heuristic.Evaluate(state, goal)
	heap.Push(pq, heapItem{nodeID: 0, f: h0, g: 0})
	profile.EnqueuedNodes = 1

	tryEnqueue := func(parentID int, next world.GameState, deltaTicks int, step PlanStep, deltaDeaths float64) bool {
		parent := nodes[parentID]
		ticksSoFar := parent.TicksSoFar + deltaTicks
		reachesGoal := goal.IsSatisfied(next)

		if !reachesGoal {
			bucketKey := ComputeBucketKey(next, goal, d.cfg).String()
			bucketsSeen[bucketKey] = true
			dominanceChecks++
			if d.frontier.IsDominatedOrInsert(bucketKey, ticksSoFar, goal.Progress(next)) {
				return false
			}
		}

		stateKey := ComputeStateKey(next, goal, d.cfg)
		if bt, ok := bestTicks[stateKey]; ok && bt <= ticksSoFar && !reachesGoal {
			return false
		}
		bestTicks[stateKey] = ticksSoFar

		interactionsSoFar := parent.InteractionsSoFar
		if _, ok := step.(StepInteraction); ok {
			interactionsSoFar++
		}

		nodeID := len(nodes)
		nodes = append(nodes, Node{
			State:             next,
			TicksSoFar:        ticksSoFar,
			InteractionsSoFar: interactionsSoFar,
			ParentID:          parentID,
			StepFromParent:    step,
			ExpectedDeaths:    parent.ExpectedDeaths + deltaDeaths,
		})

		h, _ := d.heuristic.Evaluate(next, goal)
		heap.Push(pq, heapItem{nodeID: nodeID, f: float64(ticksSoFar) + h, g: ticksSoFar})
		profile.EnqueuedNodes++
		return true
	}

	for pq.Len() > 0 {
		if profile.EnqueuedNodes > d.cfg.MaxQueueSize {
			return nil, SolverFailure{Reason: QueueSizeExceeded, ExpandedNodes: profile.ExpandedNodes, EnqueuedNodes: profile.EnqueuedNodes, BestCredits: profile.BestCredits}
		}
		if profile.ExpandedNodes >= d.cfg.MaxExpandedNodes {
			return nil, SolverFailure{Reason: ExpandedNodesExceeded, ExpandedNodes: profile.ExpandedNodes, EnqueuedNodes: profile.EnqueuedNodes, BestCredits: profile.BestCredits}
		}

		item := heap.Pop(pq).(heapItem)
		node := nodes[item.nodeID]
		profile.ExpandedNodes++

		reachesGoal := goal.IsSatisfied(node.State)
		stateKey := ComputeStateKey(node.State, goal, d.cfg)
		if bt, ok := bestTicks[stateKey]; ok && bt < node.TicksSoFar && !reachesGoal {
			continue
		}
		if reachesGoal {
			return d.reconstruct(nodes, item.nodeID, goal, profile, bucketsSeen, dominanceChecks), nil
		}

		if credits := effectiveCredits(node.State); credits > profile.BestCredits {
			profile.BestCredits = credits
		}
		hVal, _ := d.heuristic.Evaluate(node.State, goal)
		profile.HeuristicSamples = append(profile.HeuristicSamples, hVal)

		candidates, err := d.enumerator.Enumerate(node.State, goal, nil, true)
		if err != nil {
			continue
		}

		hasInteraction := relevantSwitchExists(node.State, candidates.SwitchToActivities) || len(candidates.BuyUpgrades) > 0 || candidates.ShouldEmitSellCandidate

		for _, actionID := range candidates.SwitchToActivities {
			interaction := world.SwitchActivity{Action: actionID}
			next, err := d.provider.ApplyInteractionDeterministic(node.State, interaction)
			if err != nil {
				continue
			}
			tryEnqueue(item.nodeID, next, 0, StepInteraction{Action: interaction}, 0)
		}
		for _, purchaseID := range candidates.BuyUpgrades {
			interaction := world.BuyShopItem{Purchase: purchaseID}
			next, err := d.provider.ApplyInteractionDeterministic(node.State, interaction)
			if err != nil {
				continue
			}
			tryEnqueue(item.nodeID, next, 0, StepInteraction{Action: interaction}, 0)
		}
		if candidates.ShouldEmitSellCandidate {
			interaction := world.SellItems{Policy: candidates.SellPolicy}
			next, err := d.provider.ApplyInteractionDeterministic(node.State, interaction)
			if err == nil {
				tryEnqueue(item.nodeID, next, 0, StepInteraction{Action: interaction}, 0)
			}
		}

		for _, macro := range candidates.Macros {
			outcome := d.expander.Expand(node.State, macro, goal)
			expanded, ok := outcome.(MacroExpanded)
			if !ok {
				continue
			}
			step := StepMacro{Macro: expanded.Macro, TicksPlanned: expanded.TicksElapsed, WaitFor: expanded.WaitFor}
			if tryEnqueue(item.nodeID, expanded.State, expanded.TicksElapsed, step, expanded.Deaths) && goal.IsSatisfied(expanded.State) {
				return d.reconstruct(nodes, len(nodes)-1, goal, profile, bucketsSeen, dominanceChecks), nil
			}
		}

		decision := d.delta.Compute(node.State, goal, candidates, d.enumeratorRegistries(), hasInteraction)
		if decision.DeltaTicks == 0 && !hasInteraction && !decision.IsDeadEnd {
			panic("next-decision-delta invariant violated: delta == 0 with no interaction candidate")
		}
		if !decision.IsDeadEnd && decision.DeltaTicks > 0 {
			result, err := d.advancer.Advance(node.State, decision.DeltaTicks)
			if err == nil {
				step := StepWait{Ticks: decision.DeltaTicks, WaitFor: decision.WaitFor, ExpectedAction: decision.IntendedAction}
				tryEnqueue(item.nodeID, result.State, decision.DeltaTicks, step, result.ExpectedDeaths)
			}
		}
	}

	return nil, SolverFailure{Reason: HeapExhausted, ExpandedNodes: profile.ExpandedNodes, EnqueuedNodes: profile.EnqueuedNodes, BestCredits: profile.BestCredits}
}

// relevantSwitchExists reports whether switchTo offers an action other
// than the one already running. Switching to the active action is a
// no-op, not a real decision branch; counting it as "an interaction
// exists" was suppressing every goal-line wait edge, since the
// enumerator always lists the active action among its unlocked set.
func relevantSwitchExists(state world.GameState, switchTo []world.ActionID) bool {
	active, hasActive := state.ActiveAction()
	for _, a := range switchTo {
		if hasActive && a == active {
			continue
		}
		return true
	}
	return false
}

// enumeratorRegistries exposes the registries backing d.expander to
// the delta analyzer without widening Driver's own field set; both
// collaborators are always constructed against the same Registries.
func (d *Driver) enumeratorRegistries() world.Registries {
	return d.expander.reg
}

// reconstruct walks parent pointers from goalNodeID back to the root,
// reverses the step list, then applies spec.md §4.8's plan-shaping
// rules: a sell-all before every shop purchase, and a final sell-all
// if a currency goal's terminal state still falls short.
func (d *Driver) reconstruct(nodes []Node, goalNodeID int, goal world.Goal, profile Profile, bucketsSeen map[string]bool, dominanceChecks int) *Plan {
	goalNode := nodes[goalNodeID]

	var steps []PlanStep
	for id := goalNodeID; nodes[id].ParentID != -1; id = nodes[id].ParentID {
		steps = append(steps, nodes[id].StepFromParent)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	shaped := make([]PlanStep, 0, len(steps)+2)
	for _, step := range steps {
		if si, ok := step.(StepInteraction); ok {
			if _, isBuy := si.Action.(world.BuyShopItem); isBuy {
				shaped = append(shaped, StepInteraction{Action: world.SellItems{Policy: world.SellPolicy{SellAll: true}}})
			}
		}
		shaped = append(shaped, step)
	}

	if rc, ok := goal.(world.ReachCurrency); ok && goalNode.State.Currency() < rc.Target {
		shaped = append(shaped, StepInteraction{Action: world.SellItems{Policy: world.SellPolicy{SellAll: true}}})
	}

	profile.FrontierInserted, profile.FrontierRemoved = d.frontier.Counters()
	if dominanceChecks > 0 {
		profile.BucketUniqueness = float64(len(bucketsSeen)) / float64(dominanceChecks)
	}

	return &Plan{
		Steps:            shaped,
		TotalTicks:       goalNode.TicksSoFar,
		InteractionCount: goalNode.InteractionsSoFar,
		ExpectedDeaths:   goalNode.ExpectedDeaths,
		Diagnostics:      profile,
		FinalState:       goalNode.State,
	}
}
