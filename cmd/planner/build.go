package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
	"github.com/lox/idleplanner/sdk/planner"
)

// solverStack bundles every collaborator a solve needs, all sharing
// one fixture.Bundle the way newTestDriver wires the same
// collaborators for the core's own tests.
type solverStack struct {
	bundle fixture.Bundle
	state  world.GameState
	cfg    planner.SolverConfig

	rates     *planner.RateCache
	advancer  *planner.Advancer
	expander  *planner.MacroExpander
	heuristic *planner.Heuristic
	frontier  *planner.ParetoFrontier
	delta     *planner.DeltaAnalyzer
	driver    *planner.Driver
	consumer  *planner.Consumer
}

func buildSolverStack(cfg planner.SolverConfig, logger *log.Logger) (*solverStack, error) {
	bundle, state := fixture.New()

	rates, err := planner.NewRateCache(bundle.Estimator, bundle.Registries, cfg.RateCacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("new rate cache: %w", err)
	}
	advancer := planner.NewAdvancer(bundle.Estimator, bundle.Value, bundle.Provider, 1)
	expander := planner.NewMacroExpander(bundle.Registries, rates, advancer, cfg)
	heuristic := planner.NewHeuristic(rates)
	frontier := planner.NewParetoFrontier()
	delta := planner.NewDeltaAnalyzer(rates)
	driver := planner.NewDriver(bundle.Enumerator, heuristic, frontier, expander, delta, advancer, bundle.Provider, cfg)
	consumer := planner.NewConsumer(bundle.Provider, bundle.Registries, cfg)

	return &solverStack{
		bundle:    bundle,
		state:     state,
		cfg:       cfg,
		rates:     rates,
		advancer:  advancer,
		expander:  expander,
		heuristic: heuristic,
		frontier:  frontier,
		delta:     delta,
		driver:    driver,
		consumer:  consumer,
	}, nil
}

func (s *solverStack) segmentRunner() *planner.SegmentRunner {
	return planner.NewSegmentRunner(s.driver, s.bundle.Enumerator, s.bundle.Provider, s.cfg)
}

func (s *solverStack) replanner(logger *log.Logger, clock quartz.Clock) *planner.Replanner {
	return planner.NewReplanner(s.driver, s.consumer, s.bundle.Provider, logger, clock, s.cfg)
}
