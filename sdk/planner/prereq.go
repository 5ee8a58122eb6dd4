package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/world"
)

// EnsureExecutable is the Prerequisite Resolver's `_ensure_executable`
// (spec.md §4.7): a bounded-depth DFS over action's input requirements.
// It returns a non-nil TrainSkillUntil when the nearest blocking input
// is produced by a locked action, nil when action is already
// executable (every insufficient input has some unlocked producer
// chain back to raw materials), or ExecUnknown when no producer exists
// anywhere in the chain.
func EnsureExecutable(state world.GameState, action world.ActionDef, reg world.Registries, maxDepth int) (*world.TrainSkillUntil, error) {
	visited := make(map[world.ActionID]bool)
	return ensureExecutable(state, action, reg, maxDepth, visited)
}

func ensureExecutable(state world.GameState, action world.ActionDef, reg world.Registries, depthRemaining int, visited map[world.ActionID]bool) (*world.TrainSkillUntil, error) {
	if depthRemaining <= 0 {
		return nil, ExecUnknown{Reason: fmt.Sprintf("max prerequisite depth reached resolving %s", action.ID)}
	}
	if visited[action.ID] {
		return nil, ExecUnknown{Reason: fmt.Sprintf("cycle detected resolving %s", action.ID)}
	}
	visited[action.ID] = true

	for _, in := range action.Inputs {
		if float64(stackCount(state, in.Item)) >= in.Amount {
			continue
		}

		producer, ok := findProducer(reg, in.Item)
		if !ok {
			return nil, ExecUnknown{Reason: fmt.Sprintf("no producer for %s", in.Item)}
		}

		if state.SkillLevel(producer.Skill) >= producer.UnlockLevel {
			prereq, err := ensureExecutable(state, producer, reg, depthRemaining-1, visited)
			if err != nil {
				return nil, err
			}
			if prereq != nil {
				return prereq, nil
			}
			continue
		}

		return &world.TrainSkillUntil{
			Skill:       producer.Skill,
			PrimaryStop: world.SkillLevelStop{Skill: producer.Skill, Level: producer.UnlockLevel},
		}, nil
	}

	return nil, nil
}

// findProducer returns the first action in reg that outputs item.
// "First" is stable because ActionRegistry.All() is a fixed content
// table; ties in a real game would be resolved by rate, which is the
// macro expander's concern, not the resolver's.
func findProducer(reg world.Registries, item world.ItemID) (world.ActionDef, bool) {
	for _, a := range reg.Actions().All() {
		for _, out := range a.Outputs {
			if out.Item == item {
				return a, true
			}
		}
	}
	return world.ActionDef{}, false
}
