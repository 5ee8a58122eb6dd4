package planner

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/lox/idleplanner/internal/fileutil"
)

const segmentLogVersion = 1

// segmentLogSnapshot is SegmentLog's on-disk shape, following
// checkpoint.go's exact recipe: a version field, an atomic
// temp-file-then-rename write, a version check on load.
type segmentLogSnapshot struct {
	Version        int        `json:"version"`
	CompletedCount int        `json:"completed_count"`
	TotalTicks     int        `json:"total_ticks"`
	Boundaries     []string   `json:"boundaries"`
	Segments       []planFile `json:"segments"`
}

// SegmentLog is the resumable record solve_to_goal appends to after
// each completed segment (spec.md §4.9). GameState itself stays
// opaque to the core, so SegmentLog records the audit trail — each
// segment's reconstructed steps, ticks, and boundary category — not a
// restorable state snapshot; a caller resuming after a restart pairs a
// loaded SegmentLog with its own collaborator-level state checkpoint
// to skip re-solving the segments already recorded here.
type SegmentLog struct {
	Segments []Segment
}

// SaveSegmentLog writes segments to path atomically, following
// SaveCheckpoint's recipe.
func SaveSegmentLog(path string, segments []Segment) error {
	snap := segmentLogSnapshot{
		Version:        segmentLogVersion,
		CompletedCount: len(segments),
	}
	for _, seg := range segments {
		snap.TotalTicks += seg.Plan.TotalTicks
		if seg.Boundary != nil {
			snap.Boundaries = append(snap.Boundaries, seg.Boundary.Category())
		} else {
			snap.Boundaries = append(snap.Boundaries, "")
		}

		sf := planFile{
			Version:          planFileVersion,
			TotalTicks:       seg.Plan.TotalTicks,
			InteractionCount: seg.Plan.InteractionCount,
			ExpectedDeaths:   seg.Plan.ExpectedDeaths,
			Steps:            make([]planStepFile, 0, len(seg.Plan.Steps)),
		}
		for _, step := range seg.Plan.Steps {
			sf.Steps = append(sf.Steps, toStepFile(step))
		}
		snap.Segments = append(snap.Segments, sf)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// LoadSegmentLog restores a SegmentLog's audit trail from path,
// following LoadTrainerFromCheckpoint's recipe.
func LoadSegmentLog(path string) (*SegmentLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := decodeSegmentLog(f)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(snap.Segments))
	for i, sf := range snap.Segments {
		steps := make([]PlanStep, 0, len(sf.Steps))
		for _, stepFile := range sf.Steps {
			step, err := fromStepFile(stepFile)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
		}
		plan := &Plan{
			Steps:            steps,
			TotalTicks:       sf.TotalTicks,
			InteractionCount: sf.InteractionCount,
			ExpectedDeaths:   sf.ExpectedDeaths,
			Diagnostics:      NewProfile(),
		}

		var boundary ReplanBoundary
		if i < len(snap.Boundaries) {
			boundary = boundaryFromCategory(snap.Boundaries[i])
		}
		segments = append(segments, Segment{Plan: plan, Boundary: boundary})
	}

	return &SegmentLog{Segments: segments}, nil
}

func decodeSegmentLog(r io.Reader) (*segmentLogSnapshot, error) {
	var snap segmentLogSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Version != segmentLogVersion {
		return nil, errors.New("unsupported segment log version")
	}
	return &snap, nil
}

// boundaryFromCategory reconstructs a coarse ReplanBoundary from its
// logged category. Detail fields (purchase id, skill, missing item)
// are not round-tripped — the log records the audit category a
// segment stopped under, not a replayable boundary value.
func boundaryFromCategory(category string) ReplanBoundary {
	switch category {
	case "done":
		return BoundaryGoalReached{}
	case "planned":
		return BoundaryPlannedSegmentStop{}
	case "replan":
		return BoundaryUpgradeAffordableEarly{}
	case "recovery":
		return BoundaryDeath{}
	case "expected":
		return BoundaryWaitConditionSatisfied{}
	case "limit":
		return BoundaryReplanLimitExceeded{}
	default:
		return BoundaryActionUnavailable{}
	}
}
