package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lox/idleplanner/internal/world"
)

func TestSegmentLogSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	segments := []Segment{
		{
			Plan: &Plan{
				Steps:            []PlanStep{StepInteraction{Action: world.SwitchActivity{Action: "chop_tree"}}},
				TotalTicks:       40,
				InteractionCount: 1,
				Diagnostics:      NewProfile(),
			},
			Boundary: BoundaryPlannedSegmentStop{},
		},
		{
			Plan: &Plan{
				Steps:            []PlanStep{StepInteraction{Action: world.SellItems{Policy: world.SellPolicy{SellAll: true}}}},
				TotalTicks:       0,
				InteractionCount: 1,
				Diagnostics:      NewProfile(),
			},
			Boundary: BoundaryGoalReached{},
		},
	}

	path := filepath.Join(t.TempDir(), "segments.json")
	if err := SaveSegmentLog(path, segments); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadSegmentLog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Segments) != len(segments) {
		t.Fatalf("segment count: got %d, want %d", len(loaded.Segments), len(segments))
	}
	if loaded.Segments[0].Plan.TotalTicks != 40 {
		t.Fatalf("expected first segment's ticks to round-trip, got %d", loaded.Segments[0].Plan.TotalTicks)
	}
	if loaded.Segments[0].Boundary.Category() != "planned" {
		t.Fatalf("expected first segment's boundary category to round-trip as planned, got %s", loaded.Segments[0].Boundary.Category())
	}
	if loaded.Segments[1].Boundary.Category() != "done" {
		t.Fatalf("expected second segment's boundary category to round-trip as done, got %s", loaded.Segments[1].Boundary.Category())
	}
}

func TestLoadSegmentLogRejectsWrongVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"version": 2, "segments": []}`), 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	if _, err := LoadSegmentLog(path); err == nil {
		t.Fatalf("expected an error loading a segment log with an unsupported version")
	}
}
