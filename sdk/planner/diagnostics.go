package planner

import "time"

// Profile is the optional metrics bundle a solve can attach to its
// result (spec.md §2 component 12). It is always populated by the
// driver internally; no switch turns any of its counters off, and the
// driver calls the candidate enumerator with collect_stats set on every
// expansion (spec.md §6).
type Profile struct {
	ExpandedNodes int
	EnqueuedNodes int
	BestCredits   int

	// FrontierInserted and FrontierRemoved are the Pareto Frontier's
	// own diagnostic counters (spec.md §4.2).
	FrontierInserted int
	FrontierRemoved  int

	// HeuristicSamples records h(n) for every node the driver expands,
	// for distribution analysis.
	HeuristicSamples []float64

	// BucketUniqueness is the ratio of distinct BucketKeys seen to
	// total dominance checks performed; low values mean the bucketing
	// scheme is too coarse for the goal.
	BucketUniqueness float64

	// Replans, ReplanCategories accumulate across a replanning-loop
	// run (spec.md §4.10); zero for a bare solve.
	Replans         int
	ReplanCategories map[string]int

	// WallTime is elapsed real time for diagnostics only; wall-clock is
	// never a gating budget (spec.md §5). Measured through an injected
	// quartz.Clock so tests can assert on it without a real sleep.
	WallTime time.Duration
}

// NewProfile returns a zero-valued Profile with its maps initialized.
func NewProfile() Profile {
	return Profile{ReplanCategories: make(map[string]int)}
}

// RecordReplan appends one replan event under category (one of:
// planned, replan, recovery, expected, done, error, limit).
func (p *Profile) RecordReplan(category string) {
	if p.ReplanCategories == nil {
		p.ReplanCategories = make(map[string]int)
	}
	p.Replans++
	p.ReplanCategories[category]++
}
