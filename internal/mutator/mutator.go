// Package mutator generates the initial seed corpus and mutates
// existing inputs using the four integer operators from the
// reference fuzzer: bit flip, arithmetic nudge, scale, and negate.
package mutator

import (
	"math/rand"
	"sync"

	"github.com/bytescribe/fuzz/pkg/types"
)

// seedBoundaries are the fixed boundary-value seeds planted before any
// mutation runs: zero, unit values, and the powers-of-two ladder up to
// the int32 extremes, matching the reference input generator.
var seedBoundaries = []int32{
	0, 1, -1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048,
	100000, -100000, 2147483647, -2147483648,
}

// operatorFunc applies one mutation operator to a single int32 value.
type operatorFunc func(rng *rand.Rand, v int32) int32

// Generator produces seeds and mutations using its own seeded RNG, so
// a run is fully reproducible given the same config seed.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	operators  []operatorFunc
	operatorOf []types.MutationKind
}

// New builds a Generator seeded with rngSeed. The operator table order
// is fixed: bit flip, arithmetic, scale, negate.
func New(rngSeed int64) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(rngSeed)),
	}
	g.operators = []operatorFunc{bitFlip, arithmeticNudge, scale, negate}
	g.operatorOf = []types.MutationKind{
		types.MutateBitFlip, types.MutateArithmetic, types.MutateScale, types.MutateNegate,
	}
	return g
}

// GenerateSeeds returns a deduplicated seed set of at least count
// values: the fixed boundaries, topped up with uniform random draws
// from [-10^6, 10^6] until the total reaches count. If the boundaries
// alone already meet or exceed count (as they do for any count <= 18),
// no random draws are added and the result is just the boundaries, in
// boundary order, so a run's initial corpus stays reproducible for a
// given RNG seed.
func (g *Generator) GenerateSeeds(count int) []types.Input {
	set := make(map[int32]struct{}, len(seedBoundaries))
	values := make([]int32, 0, len(seedBoundaries))
	for _, v := range seedBoundaries {
		if _, dup := set[v]; dup {
			continue
		}
		set[v] = struct{}{}
		values = append(values, v)
	}
	for len(values) < count {
		v := int32(g.rng.Intn(2_000_001) - 1_000_000)
		if _, dup := set[v]; dup {
			continue
		}
		set[v] = struct{}{}
		values = append(values, v)
	}

	seeds := make([]types.Input, len(values))
	for i, v := range values {
		seeds[i] = types.NewScalarInput(v)
	}
	return seeds
}

// Mutate applies n mutation rounds to input, picking one of the four
// operators uniformly at random each round, and returns a new Input
// without modifying the argument.
func (g *Generator) Mutate(input types.Input, n int) types.Input {
	out := input.Clone()
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < n; i++ {
		idx := g.rng.Intn(len(out.Values))
		opIdx := g.rng.Intn(len(g.operators))
		out.Values[idx] = g.operators[opIdx](g.rng, out.Values[idx])
	}
	return out
}

// bitFlip flips one of the low 31 bits of v.
func bitFlip(rng *rand.Rand, v int32) int32 {
	bit := rng.Intn(31)
	return v ^ (1 << uint(bit))
}

// arithmeticNudge adds a small signed offset in [-10, 10] to v.
func arithmeticNudge(rng *rand.Rand, v int32) int32 {
	delta := int32(rng.Intn(21) - 10)
	return v + delta
}

// scale doubles or halves v. Zero is a fixed point: doubling zero
// stays zero, so the operator never perturbs it — matching the
// reference generator's multiply/divide operator.
func scale(rng *rand.Rand, v int32) int32 {
	if v == 0 {
		return 0
	}
	if rng.Intn(2) == 0 {
		return v * 2
	}
	return v / 2
}

// negate flips the sign of v. Go's defined wraparound arithmetic means
// negating math.MinInt32 yields math.MinInt32 again rather than
// panicking, which is the desired behavior at that boundary.
func negate(rng *rand.Rand, v int32) int32 {
	return -v
}
