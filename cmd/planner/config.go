package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/internal/world/fixture"
	"github.com/lox/idleplanner/sdk/planner"
)

// PlannerConfig is the HCL-loadable scenario + tunables file cmd/planner
// reads before any subcommand runs, shaped the way the teacher's
// internal/client/config.go carries a ServerConnection/PlayerSettings/
// UISettings block set under one top-level struct.
type PlannerConfig struct {
	Solver   SolverTunables `hcl:"solver,block"`
	Scenario ScenarioConfig `hcl:"scenario,block"`
}

// SolverTunables mirrors planner.SolverConfig's fields as optional HCL
// attributes; zero means "use the design default" (applyDefaults below).
type SolverTunables struct {
	GoldBucket          int `hcl:"gold_bucket,optional"`
	HPBucket            int `hcl:"hp_bucket,optional"`
	InventoryBucket     int `hcl:"inventory_bucket,optional"`
	InventoryExactUnder int `hcl:"inventory_exact_under,optional"`
	MasteryBucket       int `hcl:"mastery_bucket,optional"`
	InputMixBits        int `hcl:"input_mix_bits,optional"`
	MaxExpandedNodes    int `hcl:"max_expanded_nodes,optional"`
	MaxQueueSize        int `hcl:"max_queue_size,optional"`
	MaxPrereqDepth      int `hcl:"max_prereq_depth,optional"`
	MaxEnsureExecDepth  int `hcl:"max_ensure_exec_depth,optional"`
	ConsumeBufferTicks  int `hcl:"consume_buffer_ticks,optional"`
	MaxSegments         int `hcl:"max_segments,optional"`
	MaxReplans          int `hcl:"max_replans,optional"`
	MaxTotalTicks       int `hcl:"max_total_ticks,optional"`
	RateCacheCapacity   int `hcl:"rate_cache_capacity,optional"`
}

// ScenarioConfig names the goal to solve for and the RNG seed the
// replanning loop's execution steps draw from. The reference economy
// (internal/world/fixture) is the only world this CLI knows how to
// drive, per SPEC_FULL.md §1's scope boundary — a real game build
// would supply its own registries/provider through the same
// internal/world interfaces.
type ScenarioConfig struct {
	Goal         string `hcl:"goal"`
	CurrencyTarget int  `hcl:"currency_target,optional"`
	Skill        string `hcl:"skill,optional"`
	SkillTarget  int    `hcl:"skill_target,optional"`
	Seed         int64  `hcl:"seed,optional"`
}

// DefaultPlannerConfig returns the design-value tunables plus a
// currency-target scenario, matching DefaultSolverConfig's own
// design-value defaults.
func DefaultPlannerConfig() *PlannerConfig {
	def := planner.DefaultSolverConfig()
	return &PlannerConfig{
		Solver: SolverTunables{
			GoldBucket:          def.GoldBucket,
			HPBucket:            def.HPBucket,
			InventoryBucket:     def.InventoryBucket,
			InventoryExactUnder: def.InventoryExactUnder,
			MasteryBucket:       def.MasteryBucket,
			InputMixBits:        def.InputMixBits,
			MaxExpandedNodes:    def.MaxExpandedNodes,
			MaxQueueSize:        def.MaxQueueSize,
			MaxPrereqDepth:      def.MaxPrereqDepth,
			MaxEnsureExecDepth:  def.MaxEnsureExecDepth,
			ConsumeBufferTicks:  def.ConsumeBufferTicks,
			MaxSegments:         def.MaxSegments,
			MaxReplans:          def.MaxReplans,
			MaxTotalTicks:       def.MaxTotalTicks,
			RateCacheCapacity:   def.RateCacheCapacity,
		},
		Scenario: ScenarioConfig{
			Goal:           "currency",
			CurrencyTarget: 500,
			Seed:           1,
		},
	}
}

// LoadPlannerConfig loads filename as HCL, falling back to
// DefaultPlannerConfig when the file does not exist — the same
// graceful-missing-file shape as internal/client.LoadClientConfig.
func LoadPlannerConfig(filename string) (*PlannerConfig, error) {
	if filename == "" {
		return DefaultPlannerConfig(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultPlannerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl file: %s", diags.Error())
	}

	var cfg PlannerConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl: %s", diags.Error())
	}

	defaults := DefaultPlannerConfig()
	applyDefaults(&cfg, defaults)
	return &cfg, nil
}

// applyDefaults fills any zero-valued tunable with defaults' value,
// the same missing-field backfill internal/client.LoadClientConfig
// performs field by field after a successful decode.
func applyDefaults(cfg, defaults *PlannerConfig) {
	s, d := &cfg.Solver, &defaults.Solver
	if s.GoldBucket == 0 {
		s.GoldBucket = d.GoldBucket
	}
	if s.HPBucket == 0 {
		s.HPBucket = d.HPBucket
	}
	if s.InventoryBucket == 0 {
		s.InventoryBucket = d.InventoryBucket
	}
	if s.InventoryExactUnder == 0 {
		s.InventoryExactUnder = d.InventoryExactUnder
	}
	if s.MasteryBucket == 0 {
		s.MasteryBucket = d.MasteryBucket
	}
	if s.InputMixBits == 0 {
		s.InputMixBits = d.InputMixBits
	}
	if s.MaxExpandedNodes == 0 {
		s.MaxExpandedNodes = d.MaxExpandedNodes
	}
	if s.MaxQueueSize == 0 {
		s.MaxQueueSize = d.MaxQueueSize
	}
	if s.MaxPrereqDepth == 0 {
		s.MaxPrereqDepth = d.MaxPrereqDepth
	}
	if s.MaxEnsureExecDepth == 0 {
		s.MaxEnsureExecDepth = d.MaxEnsureExecDepth
	}
	if s.ConsumeBufferTicks == 0 {
		s.ConsumeBufferTicks = d.ConsumeBufferTicks
	}
	if s.MaxSegments == 0 {
		s.MaxSegments = d.MaxSegments
	}
	if s.MaxReplans == 0 {
		s.MaxReplans = d.MaxReplans
	}
	if s.MaxTotalTicks == 0 {
		s.MaxTotalTicks = d.MaxTotalTicks
	}
	if s.RateCacheCapacity == 0 {
		s.RateCacheCapacity = d.RateCacheCapacity
	}
	if cfg.Scenario.Goal == "" {
		cfg.Scenario.Goal = defaults.Scenario.Goal
	}
	if cfg.Scenario.Seed == 0 {
		cfg.Scenario.Seed = defaults.Scenario.Seed
	}
}

// Validate checks the scenario names a goal this CLI can resolve and
// that the solver tunables pass planner.SolverConfig.Validate.
func (c *PlannerConfig) Validate() error {
	switch c.Scenario.Goal {
	case "currency", "skill", "multi_skill":
	default:
		return fmt.Errorf("unknown scenario goal %q (want currency, skill, or multi_skill)", c.Scenario.Goal)
	}
	if c.Scenario.Goal == "skill" || c.Scenario.Goal == "multi_skill" {
		if c.Scenario.Skill == "" {
			return fmt.Errorf("scenario goal %q requires a skill name", c.Scenario.Goal)
		}
	}
	return c.ToSolverConfig().Validate()
}

// ToSolverConfig converts the HCL tunables into planner.SolverConfig.
func (c *PlannerConfig) ToSolverConfig() planner.SolverConfig {
	s := c.Solver
	return planner.SolverConfig{
		GoldBucket:          s.GoldBucket,
		HPBucket:            s.HPBucket,
		InventoryBucket:     s.InventoryBucket,
		InventoryExactUnder: s.InventoryExactUnder,
		MasteryBucket:       s.MasteryBucket,
		InputMixBits:        s.InputMixBits,
		MaxExpandedNodes:    s.MaxExpandedNodes,
		MaxQueueSize:        s.MaxQueueSize,
		MaxPrereqDepth:      s.MaxPrereqDepth,
		MaxEnsureExecDepth:  s.MaxEnsureExecDepth,
		ConsumeBufferTicks:  s.ConsumeBufferTicks,
		MaxSegments:         s.MaxSegments,
		MaxReplans:          s.MaxReplans,
		MaxTotalTicks:       s.MaxTotalTicks,
		RateCacheCapacity:   s.RateCacheCapacity,
	}
}

// ToGoal resolves the scenario's goal name against the fixture
// economy's skill ids, the only world this CLI can drive.
func (c *PlannerConfig) ToGoal() (world.Goal, error) {
	switch c.Scenario.Goal {
	case "currency":
		return world.ReachCurrency{Target: c.Scenario.CurrencyTarget}, nil
	case "skill":
		skill, err := resolveSkill(c.Scenario.Skill)
		if err != nil {
			return nil, err
		}
		return world.ReachSkillLevel{Skill: skill, Target: c.Scenario.SkillTarget, TargetXP: fixture.XPForLevel}, nil
	case "multi_skill":
		skill, err := resolveSkill(c.Scenario.Skill)
		if err != nil {
			return nil, err
		}
		return world.MultiSkill{Subgoals: []world.ReachSkillLevel{{Skill: skill, Target: c.Scenario.SkillTarget, TargetXP: fixture.XPForLevel}}}, nil
	default:
		return nil, fmt.Errorf("unknown scenario goal %q", c.Scenario.Goal)
	}
}

func resolveSkill(name string) (world.SkillID, error) {
	switch name {
	case string(fixture.Woodcutting), string(fixture.Fletching), string(fixture.Thieving):
		return world.SkillID(name), nil
	default:
		return "", fmt.Errorf("unknown skill %q (want woodcutting, fletching, or thieving)", name)
	}
}
