package planner

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/lox/idleplanner/internal/world"
)

const planFileVersion = 1

// planFile is the on-disk shape of a Plan, following
// sdk/solver/blueprint.go's exact recipe: a version field,
// json.NewEncoder(...).SetIndent on save, a version check on load.
// PlanStep's tagged-interface variants are flattened into a single
// struct with a Kind discriminator since JSON has no native sum type.
type planFile struct {
	Version           int            `json:"version"`
	GeneratedAt       time.Time      `json:"generated_at"`
	TotalTicks        int            `json:"total_ticks"`
	InteractionCount  int            `json:"interaction_count"`
	ExpectedDeaths    float64        `json:"expected_deaths"`
	Steps             []planStepFile `json:"steps"`
}

type planStepFile struct {
	Kind string `json:"kind"` // interaction | wait | macro

	// interaction
	InteractionKind string         `json:"interaction_kind,omitempty"` // switch_activity | buy_shop_item | sell_items
	Action          world.ActionID `json:"action,omitempty"`
	Purchase        world.PurchaseID `json:"purchase,omitempty"`
	SellAll         bool           `json:"sell_all,omitempty"`
	SellItems       []world.ItemID `json:"sell_items,omitempty"`

	// wait
	Ticks           int            `json:"ticks,omitempty"`
	WaitDescription string         `json:"wait_description,omitempty"`
	ExpectedAction  world.ActionID `json:"expected_action,omitempty"`

	// macro
	TicksPlanned    int    `json:"ticks_planned,omitempty"`
	MacroDescription string `json:"macro_description,omitempty"`
}

// Save writes plan to path in JSON, following Blueprint.Save's recipe.
func (p *Plan) Save(path string) error {
	if p == nil {
		return errors.New("nil plan")
	}
	if path == "" {
		return errors.New("destination path is required")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file := planFile{
		Version:          planFileVersion,
		GeneratedAt:      time.Now(),
		TotalTicks:       p.TotalTicks,
		InteractionCount: p.InteractionCount,
		ExpectedDeaths:   p.ExpectedDeaths,
		Steps:            make([]planStepFile, 0, len(p.Steps)),
	}
	for _, step := range p.Steps {
		file.Steps = append(file.Steps, toStepFile(step))
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// LoadPlan reads a plan from path, following LoadBlueprint's recipe.
func LoadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file planFile
	if err := json.NewDecoder(f).Decode(&file); err != nil {
		return nil, err
	}
	if file.Version != planFileVersion {
		return nil, errors.New("unsupported plan version")
	}

	steps := make([]PlanStep, 0, len(file.Steps))
	for _, sf := range file.Steps {
		step, err := fromStepFile(sf)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	return &Plan{
		Steps:            steps,
		TotalTicks:       file.TotalTicks,
		InteractionCount: file.InteractionCount,
		ExpectedDeaths:   file.ExpectedDeaths,
		Diagnostics:      NewProfile(),
	}, nil
}

func toStepFile(step PlanStep) planStepFile {
	switch s := step.(type) {
	case StepInteraction:
		switch interaction := s.Action.(type) {
		case world.SwitchActivity:
			return planStepFile{Kind: "interaction", InteractionKind: "switch_activity", Action: interaction.Action}
		case world.BuyShopItem:
			return planStepFile{Kind: "interaction", InteractionKind: "buy_shop_item", Purchase: interaction.Purchase}
		case world.SellItems:
			return planStepFile{Kind: "interaction", InteractionKind: "sell_items", SellAll: interaction.Policy.SellAll, SellItems: interaction.Policy.Items}
		default:
			return planStepFile{Kind: "interaction", InteractionKind: "unknown"}
		}
	case StepWait:
		return planStepFile{Kind: "wait", Ticks: s.Ticks, WaitDescription: s.WaitFor.Describe(), ExpectedAction: s.ExpectedAction}
	case StepMacro:
		return planStepFile{Kind: "macro", TicksPlanned: s.TicksPlanned, MacroDescription: s.WaitFor.Describe()}
	default:
		return planStepFile{Kind: "unknown"}
	}
}

func fromStepFile(sf planStepFile) (PlanStep, error) {
	switch sf.Kind {
	case "interaction":
		switch sf.InteractionKind {
		case "switch_activity":
			return StepInteraction{Action: world.SwitchActivity{Action: sf.Action}}, nil
		case "buy_shop_item":
			return StepInteraction{Action: world.BuyShopItem{Purchase: sf.Purchase}}, nil
		case "sell_items":
			return StepInteraction{Action: world.SellItems{Policy: world.SellPolicy{SellAll: sf.SellAll, Items: sf.SellItems}}}, nil
		default:
			return nil, errors.New("unknown interaction kind in plan file: " + sf.InteractionKind)
		}
	case "wait":
		return StepWait{Ticks: sf.Ticks, ExpectedAction: sf.ExpectedAction}, nil
	case "macro":
		return StepMacro{TicksPlanned: sf.TicksPlanned}, nil
	default:
		return nil, errors.New("unknown step kind in plan file: " + sf.Kind)
	}
}
