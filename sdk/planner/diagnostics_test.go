package planner

import "testing"

func TestNewProfileInitializesReplanCategories(t *testing.T) {
	t.Parallel()

	p := NewProfile()
	if p.ReplanCategories == nil {
		t.Fatalf("expected ReplanCategories to be initialized")
	}
	if p.Replans != 0 {
		t.Fatalf("expected zero replans on a fresh profile")
	}
}

func TestRecordReplanAccumulatesByCategory(t *testing.T) {
	t.Parallel()

	p := NewProfile()
	p.RecordReplan("planned")
	p.RecordReplan("planned")
	p.RecordReplan("recovery")

	if p.Replans != 3 {
		t.Fatalf("expected 3 total replans, got %d", p.Replans)
	}
	if p.ReplanCategories["planned"] != 2 {
		t.Fatalf("expected 2 planned replans, got %d", p.ReplanCategories["planned"])
	}
	if p.ReplanCategories["recovery"] != 1 {
		t.Fatalf("expected 1 recovery replan, got %d", p.ReplanCategories["recovery"])
	}
}

func TestRecordReplanOnZeroValueProfile(t *testing.T) {
	t.Parallel()

	var p Profile
	p.RecordReplan("done")
	if p.ReplanCategories["done"] != 1 {
		t.Fatalf("expected RecordReplan to lazily initialize the map on a zero-value Profile")
	}
}
