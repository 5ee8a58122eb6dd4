package planner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func requestKey(i int) string { return fmt.Sprintf("req-%d", i) }

func newTestPool(t *testing.T, builds *atomic.Int32) *Pool {
	t.Helper()
	cfg := DefaultSolverConfig()
	return NewPool(func() *Driver {
		builds.Add(1)
		bundle, _ := fixture.New()
		rates, err := NewRateCache(bundle.Estimator, bundle.Registries, cfg.RateCacheCapacity)
		if err != nil {
			t.Fatalf("new rate cache: %v", err)
		}
		advancer := NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)
		expander := NewMacroExpander(bundle.Registries, rates, advancer, cfg)
		heuristic := NewHeuristic(rates)
		frontier := NewParetoFrontier()
		delta := NewDeltaAnalyzer(rates)
		return NewDriver(bundle.Enumerator, heuristic, frontier, expander, delta, advancer, bundle.Provider, cfg)
	})
}

func TestPoolSolveReturnsAPlan(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	pool := newTestPool(t, &builds)
	_, gs := fixture.New()

	plan, err := pool.Solve("scenario-a", gs, world.ReachCurrency{Target: 30})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if plan == nil {
		t.Fatalf("expected a plan")
	}
	if builds.Load() != 1 {
		t.Fatalf("expected exactly one driver build, got %d", builds.Load())
	}
}

func TestPoolSolveAllRunsEveryRequest(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	pool := newTestPool(t, &builds)

	requests := make([]SolveRequest, 0, 3)
	for i, target := range []int{20, 30, 40} {
		_, gs := fixture.New()
		requests = append(requests, SolveRequest{Key: requestKey(i), State: gs, Goal: world.ReachCurrency{Target: target}})
	}

	results := pool.SolveAll(context.Background(), requests, 2)
	if len(results) != len(requests) {
		t.Fatalf("expected %d results, got %d", len(requests), len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected error for %s: %v", r.Key, r.Err)
		}
		if r.Plan == nil {
			t.Fatalf("expected a plan for %s", r.Key)
		}
	}
}
