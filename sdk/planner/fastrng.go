package planner

import randv2 "math/rand/v2"

// PCG32 is a fast, small, statistically good RNG.
// Based on PCG-XSH-RR with 64-bit state and 32-bit output.
type PCG32 struct {
	state uint64
}

// NewPCG32 creates a new PCG32 RNG with the given seed.
func NewPCG32(seed int64) *PCG32 {
	return &PCG32{state: uint64(seed)*2 + 1}
}

// InitSeed reinitializes with a new seed (avoids allocation).
func (r *PCG32) InitSeed(seed int64) {
	r.state = uint64(seed)*2 + 1
}

// Uint32 generates a random uint32.
func (r *PCG32) Uint32() uint32 {
	oldstate := r.state
	r.state = oldstate*6364136223846793005 + 1442695040888963407
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Intn returns a random int in [0, n).
func (r *PCG32) Intn(n int) int {
	return int(r.Uint32() % uint32(n))
}

// pcg32Source adapts PCG32 to the math/rand/v2 Source interface
// (Uint64() uint64) so the replanning loop can drive a *rand.Rand
// across many segments' worth of ApplyInteraction/ConsumeUntil calls
// without a full math/rand/v2.PCG's allocation on every draw.
type pcg32Source struct {
	rng *PCG32
}

func (s *pcg32Source) Uint64() uint64 {
	hi := uint64(s.rng.Uint32())
	lo := uint64(s.rng.Uint32())
	return hi<<32 | lo
}

// NewFastRand creates a math/rand/v2.Rand using the embedded PCG32.
// cmd/planner's replan command constructs one of these and threads it
// through the whole of SolveWithReplanning (spec.md §5's single fixed
// seed per solve), rather than paying a stdlib PCG's setup cost once
// per stochastic interaction.
func NewFastRand(seed int64) *randv2.Rand {
	return randv2.New(&pcg32Source{rng: NewPCG32(seed)})
}
