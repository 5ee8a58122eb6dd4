// Package runtime exposes read-only access to a solved plan for live
// execution, mirroring sdk/solver/runtime's relationship to a trained
// blueprint.
package runtime

import (
	"errors"

	"github.com/lox/idleplanner/sdk/planner"
)

// ErrReplanNeeded is returned once the cursor has advanced past the
// plan's last step; the caller should solve again from its live state
// rather than guess at what comes after the plan's horizon.
var ErrReplanNeeded = errors.New("plan cursor: execution has run past the last planned step, replan needed")

// PlanCursor walks a solved Plan's steps in order, the runtime
// counterpart to sdk/solver/runtime.Policy walking a trained
// Blueprint's strategies: load an artifact, look up the next entry,
// fall back to a safe signal when the artifact runs out.
type PlanCursor struct {
	plan  *planner.Plan
	index int
}

// Load constructs a PlanCursor from a stored plan file.
func Load(path string) (*PlanCursor, error) {
	p, err := planner.LoadPlan(path)
	if err != nil {
		return nil, err
	}
	return &PlanCursor{plan: p}, nil
}

// NewPlanCursor wraps an in-memory plan, for callers that solved
// directly rather than loading a saved plan.
func NewPlanCursor(plan *planner.Plan) *PlanCursor {
	return &PlanCursor{plan: plan}
}

// Plan returns the underlying plan (read-only).
func (c *PlanCursor) Plan() *planner.Plan {
	if c == nil {
		return nil
	}
	return c.plan
}

// Current returns the step at the cursor's position, or
// ErrReplanNeeded once the cursor has moved past the plan's last step.
func (c *PlanCursor) Current() (planner.PlanStep, error) {
	if c == nil || c.plan == nil || c.index >= len(c.plan.Steps) {
		return nil, ErrReplanNeeded
	}
	return c.plan.Steps[c.index], nil
}

// Advance moves the cursor to the next step.
func (c *PlanCursor) Advance() {
	if c == nil {
		return
	}
	c.index++
}

// Remaining reports how many steps, including the current one, are
// left before the cursor exhausts the plan.
func (c *PlanCursor) Remaining() int {
	if c == nil || c.plan == nil || c.index >= len(c.plan.Steps) {
		return 0
	}
	return len(c.plan.Steps) - c.index
}
