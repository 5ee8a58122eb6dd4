package runtime

import (
	"errors"
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/sdk/planner"
)

func TestPlanCursorWalksSteps(t *testing.T) {
	t.Parallel()

	plan := &planner.Plan{
		Steps: []planner.PlanStep{
			planner.StepInteraction{Action: world.SwitchActivity{Action: "chop_tree"}},
			planner.StepWait{Ticks: 10},
		},
	}
	cursor := NewPlanCursor(plan)

	if cursor.Remaining() != 2 {
		t.Fatalf("expected 2 remaining steps, got %d", cursor.Remaining())
	}

	step, err := cursor.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if _, ok := step.(planner.StepInteraction); !ok {
		t.Fatalf("expected first step to be an interaction, got %T", step)
	}

	cursor.Advance()
	if cursor.Remaining() != 1 {
		t.Fatalf("expected 1 remaining step after advancing, got %d", cursor.Remaining())
	}

	step, err = cursor.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if _, ok := step.(planner.StepWait); !ok {
		t.Fatalf("expected second step to be a wait, got %T", step)
	}

	cursor.Advance()
	if cursor.Remaining() != 0 {
		t.Fatalf("expected 0 remaining steps after exhausting the plan, got %d", cursor.Remaining())
	}
	if _, err := cursor.Current(); !errors.Is(err, ErrReplanNeeded) {
		t.Fatalf("expected ErrReplanNeeded past the last step, got %v", err)
	}
}

func TestNilPlanCursorIsSafe(t *testing.T) {
	t.Parallel()

	var cursor *PlanCursor
	if cursor.Remaining() != 0 {
		t.Fatalf("expected 0 remaining steps on a nil cursor")
	}
	if _, err := cursor.Current(); !errors.Is(err, ErrReplanNeeded) {
		t.Fatalf("expected ErrReplanNeeded on a nil cursor, got %v", err)
	}
	cursor.Advance() // must not panic
}
