package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/idleplanner/internal/diagnosticsserver"
	"github.com/lox/idleplanner/sdk/planner"
	"github.com/lox/idleplanner/sdk/planner/runtime"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Solve    SolveCmd    `cmd:"" help:"solve a scenario to a single Plan"`
	Segment  SegmentCmd  `cmd:"" help:"solve a scenario segment by segment, synthesizing sell/buy stops"`
	Replan   ReplanCmd   `cmd:"" help:"solve then execute against the stochastic simulator, replanning as needed"`
	Diagnose DiagnoseCmd `cmd:"" help:"solve a scenario and print its full diagnostics profile"`
}

type SolveCmd struct {
	Config string `help:"path to a planner HCL config file" type:"existingfile"`
}

type SegmentCmd struct {
	Config string `help:"path to a planner HCL config file" type:"existingfile"`
}

type ReplanCmd struct {
	Config          string `help:"path to a planner HCL config file" type:"existingfile"`
	DiagnosticsAddr string `help:"if set, serve a live Profile snapshot to cmd/plan-viewer over this address (e.g. :8090) after the run completes" name:"diagnostics-addr"`
}

type DiagnoseCmd struct {
	Config string `help:"path to a planner HCL config file" type:"existingfile"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("planner"),
		kong.Description("offline optimal planner for an idle progression game"),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Debug)

	var err error
	switch ctx.Command() {
	case "solve":
		err = cli.Solve.Run(context.Background(), logger)
	case "segment":
		err = cli.Segment.Run(context.Background(), logger)
	case "replan":
		err = cli.Replan.Run(context.Background(), logger)
	case "diagnose":
		err = cli.Diagnose.Run(context.Background(), logger)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func newLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level})
}

func loadScenario(path string) (*PlannerConfig, planner.SolverConfig, error) {
	cfg, err := LoadPlannerConfig(path)
	if err != nil {
		return nil, planner.SolverConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, planner.SolverConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.ToSolverConfig(), nil
}

func (cmd *SolveCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, solverCfg, err := loadScenario(cmd.Config)
	if err != nil {
		return err
	}
	goal, err := cfg.ToGoal()
	if err != nil {
		return err
	}

	stack, err := buildSolverStack(solverCfg, logger)
	if err != nil {
		return err
	}

	plan, err := stack.driver.Solve(stack.state, goal)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	printPlan(plan)
	return nil
}

func (cmd *SegmentCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, solverCfg, err := loadScenario(cmd.Config)
	if err != nil {
		return err
	}
	goal, err := cfg.ToGoal()
	if err != nil {
		return err
	}

	stack, err := buildSolverStack(solverCfg, logger)
	if err != nil {
		return err
	}

	segments, final, err := stack.segmentRunner().SolveToGoal(stack.state, goal)
	if err != nil {
		return fmt.Errorf("solve to goal: %w", err)
	}
	printSegments(segments, final)
	return nil
}

func (cmd *ReplanCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, solverCfg, err := loadScenario(cmd.Config)
	if err != nil {
		return err
	}
	goal, err := cfg.ToGoal()
	if err != nil {
		return err
	}

	stack, err := buildSolverStack(solverCfg, logger)
	if err != nil {
		return err
	}

	rng := planner.NewFastRand(cfg.Scenario.Seed)
	result, err := stack.replanner(logger, quartz.NewReal()).SolveWithReplanning(stack.state, goal, rng)
	if err != nil {
		return fmt.Errorf("solve with replanning: %w", err)
	}
	printReplanResult(result)

	if cmd.DiagnosticsAddr == "" {
		return nil
	}
	return serveDiagnostics(ctx, logger, cmd.DiagnosticsAddr, result.Diagnostics)
}

// serveDiagnostics starts a diagnostics server publishing profile to
// any connected cmd/plan-viewer instance, then blocks until
// interrupted. A solve that already ran produces only a final
// snapshot; there is no live per-segment stream yet (the Replanner
// doesn't expose a progress hook), so every newly-connected viewer
// simply receives the same terminal profile.
func serveDiagnostics(ctx context.Context, logger *log.Logger, addr string, profile planner.Profile) error {
	srv := diagnosticsserver.NewServer(logger)

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	srv.Publish(profile)
	logger.Info("serving diagnostics", "addr", addr)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("shutting down diagnostics server")
		return srv.Shutdown(context.Background())
	case err := <-serveErr:
		return err
	}
}

func (cmd *DiagnoseCmd) Run(ctx context.Context, logger *log.Logger) error {
	cfg, solverCfg, err := loadScenario(cmd.Config)
	if err != nil {
		return err
	}
	goal, err := cfg.ToGoal()
	if err != nil {
		return err
	}

	stack, err := buildSolverStack(solverCfg, logger)
	if err != nil {
		return err
	}

	plan, err := stack.driver.Solve(stack.state, goal)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	cursor := runtime.NewPlanCursor(plan)
	fmt.Printf("plan cursor: %d steps remaining\n", cursor.Remaining())
	printPlan(plan)

	d := plan.Diagnostics
	if len(d.HeuristicSamples) > 0 {
		min, max, sum := d.HeuristicSamples[0], d.HeuristicSamples[0], 0.0
		for _, v := range d.HeuristicSamples {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
		}
		fmt.Printf("heuristic samples: n=%d min=%.2f max=%.2f mean=%.2f\n",
			len(d.HeuristicSamples), min, max, sum/float64(len(d.HeuristicSamples)))
	}
	fmt.Printf("bucket uniqueness: %.4f\n", d.BucketUniqueness)
	return nil
}
