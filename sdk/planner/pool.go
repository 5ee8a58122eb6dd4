package planner

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lox/idleplanner/internal/world"
)

// DriverFactory builds a fresh Driver — its own rate cache, frontier,
// node arena, and heap — so concurrent solves never share mutable
// state (spec.md §5: "each solve owns its node vector, priority queue,
// visited map, frontier, and rate cache").
type DriverFactory func() *Driver

// Pool runs concurrent solves, one fresh Driver per request. It
// generalizes the teacher's equity-worker fan-out
// (internal/evaluator/equity.go: errgroup.WithContext over a fixed
// worker count, each worker seeded with its own independent RNG) to
// per-request independent solver state instead of per-worker
// independent RNG — same "no shared mutable state across concurrent
// units of work" shape, different unit of isolation.
type Pool struct {
	factory DriverFactory
	group   singleflight.Group
}

// NewPool returns a Pool that builds a fresh Driver per solve via factory.
func NewPool(factory DriverFactory) *Pool {
	return &Pool{factory: factory}
}

// Solve runs one solve under key, collapsing concurrent identical
// requests (golang.org/x/sync/singleflight) so a diagnostics server
// and a CLI racing to resolve the same scenario share one Driver run.
func (p *Pool) Solve(key string, state world.GameState, goal world.Goal) (*Plan, error) {
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.factory().Solve(state, goal)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Plan), nil
}

// SolveRequest is one entry in a SolveAll batch.
type SolveRequest struct {
	Key   string
	State world.GameState
	Goal  world.Goal
}

// SolveResult pairs a SolveRequest's key with its outcome.
type SolveResult struct {
	Key  string
	Plan *Plan
	Err  error
}

// SolveAll runs requests concurrently, bounded to maxConcurrency
// in-flight solves at once, replacing the teacher's hand-rolled
// sync.WaitGroup + mutex-guarded firstErr in Trainer.singleIteration
// with errgroup's SetLimit — the idiomatic form of the same
// fan-out-then-join shape. Per-request errors are carried in the
// result slice rather than aborting the batch.
func (p *Pool) SolveAll(ctx context.Context, requests []SolveRequest, maxConcurrency int) []SolveResult {
	results := make([]SolveResult, len(requests))
	g, _ := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			plan, err := p.Solve(req.Key, req.State, req.Goal)
			results[i] = SolveResult{Key: req.Key, Plan: plan, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
