package planner

import "sync"

// ParetoFrontier maps a BucketKey to an unordered list of
// FrontierPoints and prunes dominated points on insertion (spec.md
// §4.2). It is sharded and FNV-1a hashed exactly like the teacher's
// RegretTable, since a solve's bucket population has the same shape:
// many distinct keys, each touched repeatedly, under concurrent
// readers when a caller runs several solves in parallel (spec.md §5
// says each solve owns its own frontier, so the sharding here buys
// nothing across solves — it is kept for the same reason the teacher
// keeps it in a single-threaded trainer path: so the type is safe to
// reuse if a caller ever does share one).
const frontierShardCount = 64
const frontierShardMask = frontierShardCount - 1

type frontierShard struct {
	mu      sync.Mutex
	buckets map[string][]FrontierPoint
}

// ParetoFrontier is the dominance-pruning structure the A* driver
// consults on every interaction/macro/wait edge.
type ParetoFrontier struct {
	shards [frontierShardCount]frontierShard

	mu       sync.Mutex
	inserted int
	removed  int
}

// NewParetoFrontier returns an empty frontier ready for use.
func NewParetoFrontier() *ParetoFrontier {
	f := &ParetoFrontier{}
	for i := range f.shards {
		f.shards[i].buckets = make(map[string][]FrontierPoint)
	}
	return f
}

func (f *ParetoFrontier) shardFor(key string) *frontierShard {
	return &f.shards[hashKey(key)&frontierShardMask]
}

// IsDominatedOrInsert is the frontier's single operation (spec.md
// §4.2): if an existing point in key's bucket dominates (ticks,
// progress), return true without modifying the bucket. Otherwise
// remove every point that (ticks, progress) now dominates, append the
// new point, and return false.
func (f *ParetoFrontier) IsDominatedOrInsert(key string, ticks, progress int) bool {
	candidate := FrontierPoint{Ticks: ticks, Progress: progress}
	shard := f.shardFor(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	points := shard.buckets[key]
	for _, p := range points {
		if p.Ticks <= ticks && p.Progress >= progress {
			return true
		}
	}

	kept := points[:0]
	removed := 0
	for _, p := range points {
		if candidate.Dominates(p) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	kept = append(kept, candidate)
	shard.buckets[key] = kept

	f.mu.Lock()
	f.inserted++
	f.removed += removed
	f.mu.Unlock()

	return false
}

// Counters returns the frontier's diagnostic (inserted, removed)
// totals (spec.md §4.2).
func (f *ParetoFrontier) Counters() (inserted, removed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserted, f.removed
}

func hashKey(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	var hash uint32 = offset32
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}
