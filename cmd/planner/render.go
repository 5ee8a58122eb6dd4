package main

import (
	"fmt"

	"github.com/lox/idleplanner/internal/world"
	"github.com/lox/idleplanner/sdk/planner"
)

func printPlan(plan *planner.Plan) {
	fmt.Printf("plan: %d steps, %d ticks, %d interactions, %.4f expected deaths\n",
		len(plan.Steps), plan.TotalTicks, plan.InteractionCount, plan.ExpectedDeaths)
	for i, step := range plan.Steps {
		fmt.Printf("  %2d. %s\n", i, describeStep(step))
	}
	printProfile(plan.Diagnostics)
}

func describeStep(step planner.PlanStep) string {
	switch s := step.(type) {
	case planner.StepInteraction:
		return describeInteraction(s.Action)
	case planner.StepWait:
		return fmt.Sprintf("wait %d ticks for %s (expect %s)", s.Ticks, s.WaitFor.Describe(), s.ExpectedAction)
	case planner.StepMacro:
		return fmt.Sprintf("macro ~%d ticks until %s", s.TicksPlanned, s.WaitFor.Describe())
	default:
		return fmt.Sprintf("%T", step)
	}
}

func describeInteraction(action world.Interaction) string {
	switch a := action.(type) {
	case world.SwitchActivity:
		return fmt.Sprintf("switch_activity(%s)", a.Action)
	case world.BuyShopItem:
		return fmt.Sprintf("buy_shop_item(%s)", a.Purchase)
	case world.SellItems:
		return fmt.Sprintf("sell_items(sell_all=%v)", a.Policy.SellAll)
	default:
		return fmt.Sprintf("%T", action)
	}
}

func printProfile(p planner.Profile) {
	fmt.Printf("diagnostics: expanded=%d enqueued=%d best_credits=%d frontier_inserted=%d frontier_removed=%d wall_time=%s\n",
		p.ExpandedNodes, p.EnqueuedNodes, p.BestCredits, p.FrontierInserted, p.FrontierRemoved, p.WallTime)
	if p.Replans > 0 {
		fmt.Printf("replans: %d %v\n", p.Replans, p.ReplanCategories)
	}
}

func printSegments(segments []planner.Segment, final world.GameState) {
	for i, seg := range segments {
		fmt.Printf("segment %d: %d steps, %d ticks, boundary=%s\n",
			i, len(seg.Plan.Steps), seg.Plan.TotalTicks, seg.Boundary.Category())
	}
	fmt.Printf("final currency=%d\n", final.Currency())
}

func printReplanResult(result planner.ReplanResult) {
	fmt.Printf("replan result: %d segments executed, %d total ticks, %d deaths, %d replans, boundary=%s\n",
		len(result.Segments), result.TotalTicks, result.Deaths, result.ReplanCount, result.Boundary.Category())
	printProfile(result.Diagnostics)
	fmt.Printf("final currency=%d\n", result.FinalState.Currency())
}
