package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
)

func TestLoadPlannerConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadPlannerConfig(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Scenario.Goal != "currency" {
		t.Fatalf("expected the default scenario goal, got %q", cfg.Scenario.Goal)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoadPlannerConfigEmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadPlannerConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Solver.RateCacheCapacity == 0 {
		t.Fatalf("expected a nonzero default rate cache capacity")
	}
}

func TestLoadPlannerConfigParsesHCLAndBackfillsDefaults(t *testing.T) {
	t.Parallel()

	body := `
solver {
  gold_bucket = 25
}

scenario {
  goal            = "skill"
  skill           = "woodcutting"
  skill_target    = 5
}
`
	path := filepath.Join(t.TempDir(), "scenario.hcl")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	cfg, err := LoadPlannerConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Solver.GoldBucket != 25 {
		t.Fatalf("expected the HCL gold_bucket to override the default, got %d", cfg.Solver.GoldBucket)
	}
	// every other tunable should be backfilled from the defaults.
	if cfg.Solver.HPBucket == 0 {
		t.Fatalf("expected hp_bucket to be backfilled from defaults")
	}
	if cfg.Scenario.Goal != "skill" || cfg.Scenario.Skill != "woodcutting" || cfg.Scenario.SkillTarget != 5 {
		t.Fatalf("unexpected scenario: %#v", cfg.Scenario)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected parsed config to validate, got %v", err)
	}
}

func TestPlannerConfigValidateRejectsUnknownGoal(t *testing.T) {
	t.Parallel()

	cfg := DefaultPlannerConfig()
	cfg.Scenario.Goal = "not_a_real_goal"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for an unknown scenario goal")
	}
}

func TestPlannerConfigValidateRequiresSkillForSkillGoal(t *testing.T) {
	t.Parallel()

	cfg := DefaultPlannerConfig()
	cfg.Scenario.Goal = "skill"
	cfg.Scenario.Skill = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when a skill goal names no skill")
	}
}

func TestToGoalBuildsReachCurrency(t *testing.T) {
	t.Parallel()

	cfg := DefaultPlannerConfig()
	cfg.Scenario.Goal = "currency"
	cfg.Scenario.CurrencyTarget = 250

	goal, err := cfg.ToGoal()
	if err != nil {
		t.Fatalf("to goal: %v", err)
	}
	if g, ok := goal.(world.ReachCurrency); !ok || g.Target != 250 {
		t.Fatalf("expected ReachCurrency{Target: 250}, got %#v", goal)
	}
}

func TestToGoalBuildsMultiSkillAndResolvesFixtureSkill(t *testing.T) {
	t.Parallel()

	cfg := DefaultPlannerConfig()
	cfg.Scenario.Goal = "multi_skill"
	cfg.Scenario.Skill = string(fixture.Fletching)
	cfg.Scenario.SkillTarget = 3

	goal, err := cfg.ToGoal()
	if err != nil {
		t.Fatalf("to goal: %v", err)
	}
	multi, ok := goal.(world.MultiSkill)
	if !ok || len(multi.Subgoals) != 1 {
		t.Fatalf("expected a single-subgoal MultiSkill, got %#v", goal)
	}
	if multi.Subgoals[0].Skill != fixture.Fletching || multi.Subgoals[0].Target != 3 {
		t.Fatalf("unexpected subgoal: %#v", multi.Subgoals[0])
	}
}

func TestToGoalRejectsUnknownSkill(t *testing.T) {
	t.Parallel()

	cfg := DefaultPlannerConfig()
	cfg.Scenario.Goal = "skill"
	cfg.Scenario.Skill = "alchemy"
	cfg.Scenario.SkillTarget = 1

	if _, err := cfg.ToGoal(); err == nil {
		t.Fatalf("expected an error resolving a skill the fixture economy doesn't have")
	}
}
