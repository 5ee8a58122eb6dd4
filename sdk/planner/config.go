// Package planner implements the offline optimal planner: an A* search
// over idle-game states whose edges are zero-time interactions, macro
// expansions, and single wait edges sized by a next-decision-delta
// analysis. See SPEC_FULL.md for the full component breakdown.
package planner

import (
	"errors"
	"fmt"
)

// SolverConfig aggregates the tunable constants that govern a single
// solve. Values here should stay aligned with whatever bucketing and
// caps the caller's scenario actually needs; the defaults are
// conservative enough for smoke tests.
type SolverConfig struct {
	// GoldBucket quantizes effective-credit buckets for the state key.
	GoldBucket int
	// HPBucket quantizes hit-point buckets for the state key.
	HPBucket int
	// InventoryBucket quantizes inventory totals at or above InventoryExactUnder.
	InventoryBucket int
	// InventoryExactUnder is the threshold below which inventory counts are
	// tracked exactly rather than quantized.
	InventoryExactUnder int
	// MasteryBucket quantizes the active action's mastery level.
	MasteryBucket int
	// InputMixBits caps the number of distinct input items tracked in the
	// BucketKey's input-mix bitmask.
	InputMixBits int

	// MaxExpandedNodes caps the number of nodes the A* driver may pop
	// before giving up.
	MaxExpandedNodes int
	// MaxQueueSize caps the number of nodes that may be enqueued.
	MaxQueueSize int

	// MaxPrereqDepth caps the macro expander's prerequisite substitution depth.
	MaxPrereqDepth int
	// MaxEnsureExecDepth caps the prerequisite resolver's DFS depth.
	MaxEnsureExecDepth int

	// ConsumeBufferTicks sizes the input buffer consume-until requests
	// from a newly switched producer before resuming a consuming action.
	ConsumeBufferTicks int

	// MaxSegments caps the number of segments solve_to_goal will traverse.
	MaxSegments int

	// MaxReplans caps the number of re-plans the replanning loop will perform.
	MaxReplans int
	// MaxTotalTicks caps the cumulative ticks the replanning loop will execute.
	MaxTotalTicks int

	// RateCacheCapacity bounds the number of capability-key entries the
	// combined-rate LRU will retain before evicting the coldest class.
	RateCacheCapacity int
}

// Validate ensures the configuration is well-formed before a solve begins.
func (c SolverConfig) Validate() error {
	if c.GoldBucket <= 0 {
		return errors.New("gold bucket must be > 0")
	}
	if c.HPBucket <= 0 {
		return errors.New("hp bucket must be > 0")
	}
	if c.InventoryBucket <= 0 {
		return errors.New("inventory bucket must be > 0")
	}
	if c.InventoryExactUnder < 0 {
		return errors.New("inventory exact-under cannot be negative")
	}
	if c.MasteryBucket <= 0 {
		return errors.New("mastery bucket must be > 0")
	}
	if c.InputMixBits <= 0 || c.InputMixBits > 62 {
		return fmt.Errorf("input mix bits must be in (0, 62], got %d", c.InputMixBits)
	}
	if c.MaxExpandedNodes <= 0 {
		return errors.New("max expanded nodes must be > 0")
	}
	if c.MaxQueueSize <= 0 {
		return errors.New("max queue size must be > 0")
	}
	if c.MaxPrereqDepth <= 0 {
		return errors.New("max prereq depth must be > 0")
	}
	if c.MaxEnsureExecDepth <= 0 {
		return errors.New("max ensure-exec depth must be > 0")
	}
	if c.ConsumeBufferTicks <= 0 {
		return errors.New("consume buffer ticks must be > 0")
	}
	if c.MaxSegments <= 0 {
		return errors.New("max segments must be > 0")
	}
	if c.MaxReplans < 0 {
		return errors.New("max replans cannot be negative")
	}
	if c.MaxTotalTicks <= 0 {
		return errors.New("max total ticks must be > 0")
	}
	if c.RateCacheCapacity <= 0 {
		return errors.New("rate cache capacity must be > 0")
	}
	return nil
}

// DefaultSolverConfig returns the design-value tunables documented in
// spec.md §6.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		GoldBucket:          50,
		HPBucket:            10,
		InventoryBucket:     10,
		InventoryExactUnder: 100,
		MasteryBucket:       10,
		InputMixBits:        30,

		MaxExpandedNodes: 200_000,
		MaxQueueSize:     500_000,

		MaxPrereqDepth:     20,
		MaxEnsureExecDepth: 8,

		ConsumeBufferTicks: 3000,

		MaxSegments: 100,

		MaxReplans:    50,
		MaxTotalTicks: 50_000_000,

		RateCacheCapacity: 4096,
	}
}
