package mutator

import (
	"math"
	"testing"

	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestGenerateSeedsBelowBoundaryCountReturnsExactlyBoundaries(t *testing.T) {
	g := New(42)
	seeds := g.GenerateSeeds(10)
	assert.Equal(t, len(seedBoundaries), len(seeds))

	found := make(map[int32]bool)
	for _, s := range seeds {
		found[s.Values[0]] = true
	}
	for _, b := range seedBoundaries {
		assert.True(t, found[b], "missing boundary seed %d", b)
	}
}

func TestGenerateSeedsAboveBoundaryCountToppedUpWithRandomDraws(t *testing.T) {
	g := New(42)
	count := len(seedBoundaries) + 5
	seeds := g.GenerateSeeds(count)
	assert.Equal(t, count, len(seeds))

	seen := make(map[int32]bool)
	for _, s := range seeds {
		assert.False(t, seen[s.Values[0]], "duplicate seed %d", s.Values[0])
		seen[s.Values[0]] = true
	}
}

func TestGenerateSeedsDeterministic(t *testing.T) {
	a := New(7).GenerateSeeds(5)
	b := New(7).GenerateSeeds(5)
	assert.Equal(t, a, b)
}

func TestMutateZeroRoundsIsNoOp(t *testing.T) {
	g := New(1)
	in := types.NewScalarInput(3)
	out := g.Mutate(in, 0)
	assert.Equal(t, in.Values[0], out.Values[0])
}

func TestMutateDoesNotModifyInput(t *testing.T) {
	g := New(1)
	in := types.NewScalarInput(3)
	_ = g.Mutate(in, 5)
	assert.Equal(t, int32(3), in.Values[0])
}

func TestScaleZeroIsFixedPoint(t *testing.T) {
	g := New(2)
	for i := 0; i < 50; i++ {
		assert.Equal(t, int32(0), scale(g.rng, 0))
	}
}

func TestNegateMinInt32DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		got := negate(nil, math.MinInt32)
		assert.Equal(t, int32(math.MinInt32), got)
	})
}
