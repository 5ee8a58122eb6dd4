package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type frontierCounters struct{ Inserted, Removed int }

func (f *ParetoFrontier) counters() frontierCounters {
	inserted, removed := f.Counters()
	return frontierCounters{Inserted: inserted, Removed: removed}
}

func TestFrontierFirstInsertNeverDominated(t *testing.T) {
	t.Parallel()

	f := NewParetoFrontier()
	if f.IsDominatedOrInsert("k", 10, 5) {
		t.Fatalf("expected the first point in a bucket to never be dominated")
	}
	assert.Equal(t, frontierCounters{Inserted: 1, Removed: 0}, f.counters())
}

func TestFrontierDominatedPointRejected(t *testing.T) {
	t.Parallel()

	f := NewParetoFrontier()
	f.IsDominatedOrInsert("k", 10, 5)

	// the existing point has fewer ticks for no less progress, so it
	// dominates the new one.
	if !f.IsDominatedOrInsert("k", 20, 5) {
		t.Fatalf("expected (20, 5) to be dominated by the existing (10, 5)")
	}
}

func TestFrontierDominatingPointEvictsExisting(t *testing.T) {
	t.Parallel()

	f := NewParetoFrontier()
	f.IsDominatedOrInsert("k", 20, 5)

	// fewer ticks for the same progress dominates and should replace it.
	if f.IsDominatedOrInsert("k", 10, 5) {
		t.Fatalf("expected (10, 5) to dominate (20, 5) rather than be dominated")
	}
	assert.Equal(t, 1, f.counters().Removed, "expected the dominated point to be evicted")
}

func TestFrontierIncomparablePointsBothSurvive(t *testing.T) {
	t.Parallel()

	f := NewParetoFrontier()
	f.IsDominatedOrInsert("k", 10, 5)

	// more ticks but more progress too: neither dominates the other.
	if f.IsDominatedOrInsert("k", 20, 10) {
		t.Fatalf("expected (20, 10) to survive alongside (10, 5)")
	}
	assert.Equal(t, frontierCounters{Inserted: 2, Removed: 0}, f.counters())
}

func TestFrontierBucketsAreIndependent(t *testing.T) {
	t.Parallel()

	f := NewParetoFrontier()
	f.IsDominatedOrInsert("a", 5, 5)

	if f.IsDominatedOrInsert("b", 50, 1) {
		t.Fatalf("a different bucket key must not be affected by another bucket's points")
	}
}
