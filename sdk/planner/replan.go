package planner

import (
	"fmt"
	randv2 "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/idleplanner/internal/world"
)

// ExecutedSegment is one solve-then-execute iteration of the
// Replanning Loop.
type ExecutedSegment struct {
	Plan         *Plan
	Boundary     ReplanBoundary
	TicksElapsed int
	Deaths       int
}

// ReplanResult is solve_with_replanning's final report.
type ReplanResult struct {
	FinalState  world.GameState
	Segments    []ExecutedSegment
	TotalTicks  int
	Deaths      int
	ReplanCount int
	Boundary    ReplanBoundary
	Diagnostics Profile
}

// Replanner drives the Replanning Loop (spec.md §4.10): solve, execute
// the plan against the real stochastic simulator, decide whether
// execution deviated enough to replan, and loop.
type Replanner struct {
	driver   *Driver
	consumer *Consumer
	provider world.GameProvider
	logger   *log.Logger
	clock    quartz.Clock
	cfg      SolverConfig
}

// NewReplanner returns a Replanner. logger may be nil; logging is
// purely a diagnostics sink (spec.md §4.12), never gating control
// flow. clock times Profile.WallTime only — wall-clock is never a
// gating budget (spec.md §5) — and defaults to quartz.NewReal() when nil.
func NewReplanner(driver *Driver, consumer *Consumer, provider world.GameProvider, logger *log.Logger, clock quartz.Clock, cfg SolverConfig) *Replanner {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Replanner{driver: driver, consumer: consumer, provider: provider, logger: logger, clock: clock, cfg: cfg}
}

// SolveWithReplanning is solve_with_replanning (spec.md §4.10).
func (r *Replanner) SolveWithReplanning(state world.GameState, goal world.Goal, rng *randv2.Rand) (ReplanResult, error) {
	var (
		executed    []ExecutedSegment
		totalTicks  int
		deaths      int
		replanCount int
	)
	profile := NewProfile()
	started := r.clock.Now()
	finish := func(boundary ReplanBoundary) ReplanResult {
		profile.WallTime = r.clock.Now().Sub(started)
		return ReplanResult{FinalState: state, Segments: executed, TotalTicks: totalTicks, Deaths: deaths, ReplanCount: replanCount, Boundary: boundary, Diagnostics: profile}
	}

	for {
		if goal.IsSatisfied(state) {
			profile.RecordReplan("done")
			r.logBoundary("done", replanCount, totalTicks)
			return finish(BoundaryGoalReached{}), nil
		}
		if replanCount >= r.cfg.MaxReplans {
			boundary := BoundaryReplanLimitExceeded{Limit: r.cfg.MaxReplans}
			profile.RecordReplan(boundary.Category())
			r.logBoundary(boundary.Category(), replanCount, totalTicks)
			return finish(boundary), nil
		}
		if totalTicks >= r.cfg.MaxTotalTicks {
			boundary := BoundaryTimeBudgetExceeded{Limit: r.cfg.MaxTotalTicks, Actual: totalTicks}
			profile.RecordReplan(boundary.Category())
			r.logBoundary(boundary.Category(), replanCount, totalTicks)
			return finish(boundary), nil
		}

		plan, err := r.driver.Solve(state, goal)
		if err != nil {
			return ReplanResult{}, fmt.Errorf("solve_with_replanning: solver failed: %w", err)
		}

		execResult, err := r.executePlan(state, plan, rng)
		if err != nil {
			return ReplanResult{}, fmt.Errorf("solve_with_replanning: execute_plan: %w", err)
		}

		state = execResult.State
		totalTicks += execResult.TicksElapsed
		deaths += execResult.Deaths

		goalSatisfied := goal.IsSatisfied(state)
		boundary := execResult.Boundary
		if boundary == nil {
			if goalSatisfied {
				boundary = BoundaryGoalReached{}
			} else {
				boundary = BoundaryPlannedSegmentStop{}
			}
		}

		executed = append(executed, ExecutedSegment{Plan: plan, Boundary: boundary, TicksElapsed: execResult.TicksElapsed, Deaths: execResult.Deaths})
		profile.RecordReplan(boundary.Category())
		r.logBoundary(boundary.Category(), replanCount, totalTicks)

		if !replanRequired(boundary, goalSatisfied) {
			if goalSatisfied {
				return finish(boundary), nil
			}
			return ReplanResult{}, fmt.Errorf("solve_with_replanning: plan completed without reaching goal and no replan needed (boundary=%s)", boundary.Category())
		}

		replanCount++
	}
}

// replanRequired is solve_with_replanning step 4 (spec.md §4.10): the
// plan's terminating wait satisfied but the goal didn't (expected-vs-
// stochastic drift), or any boundary that signals the executed path no
// longer matches what was planned.
func replanRequired(boundary ReplanBoundary, goalSatisfied bool) bool {
	switch boundary.(type) {
	case BoundaryWaitConditionSatisfied:
		return !goalSatisfied
	case BoundaryGoalReached:
		return false
	case BoundaryNoProgressPossible,
		BoundaryInputsDepleted,
		BoundaryInventoryFull,
		BoundaryInventoryPressure,
		BoundaryPlannedSegmentStop,
		BoundaryUnlockObserved,
		BoundaryUnexpectedUnlock,
		BoundaryUpgradeAffordableEarly:
		return true
	default:
		return false
	}
}

// executePlan is execute_plan (spec.md §4.10 step 3): replays plan's
// steps against the real stochastic simulator, stopping at the first
// wait/macro step whose boundary isn't WaitConditionSatisfied — the
// remaining steps assumed a future that no longer holds.
func (r *Replanner) executePlan(state world.GameState, plan *Plan, rng *randv2.Rand) (ConsumeResult, error) {
	totalTicks := 0
	deaths := 0

	for _, step := range plan.Steps {
		switch s := step.(type) {
		case StepInteraction:
			next, err := r.provider.ApplyInteraction(state, s.Action, rng)
			if err != nil {
				return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: BoundaryActionUnavailable{}}, nil
			}
			state = next

		case StepWait:
			result, err := r.consumer.ConsumeUntil(state, s.WaitFor, rng)
			if err != nil {
				return ConsumeResult{}, err
			}
			state = result.State
			totalTicks += result.TicksElapsed
			deaths += result.Deaths
			if _, ok := result.Boundary.(BoundaryWaitConditionSatisfied); !ok {
				return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: result.Boundary}, nil
			}

		case StepMacro:
			result, err := r.consumer.ConsumeUntil(state, s.WaitFor, rng)
			if err != nil {
				return ConsumeResult{}, err
			}
			state = result.State
			totalTicks += result.TicksElapsed
			deaths += result.Deaths
			if _, ok := result.Boundary.(BoundaryWaitConditionSatisfied); !ok {
				return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths, Boundary: result.Boundary}, nil
			}
		}
	}

	return ConsumeResult{State: state, TicksElapsed: totalTicks, Deaths: deaths}, nil
}

func (r *Replanner) logBoundary(category string, replanCount, totalTicks int) {
	if r.logger == nil {
		return
	}
	r.logger.Info("replan boundary", "category", category, "replan_count", replanCount, "total_ticks", totalTicks)
}
