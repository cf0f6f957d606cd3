package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHitCountBucketBoundaries(t *testing.T) {
	cases := []struct {
		hits int
		want byte
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3},
		{4, 4}, {7, 4},
		{8, 5}, {15, 5},
		{16, 6}, {31, 6},
		{32, 7}, {127, 7},
		{128, 8}, {255, 8},
		{256, 8}, {100000, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, hitCountBucket(c.hits), "hits=%d", c.hits)
	}
}

func TestUpdateNoveltyOnFirstSeen(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.Update(map[int32]int{1: 1}))
}

func TestUpdateNoNoveltyOnRepeat(t *testing.T) {
	tr := NewTracker()
	tr.Update(map[int32]int{1: 1})
	assert.False(t, tr.Update(map[int32]int{1: 1}))
}

func TestUpdateNoveltyOnBucketIncrease(t *testing.T) {
	tr := NewTracker()
	tr.Update(map[int32]int{1: 1})
	assert.True(t, tr.Update(map[int32]int{1: 8}))
}

func TestUpdateNoNoveltyOnBucketDecrease(t *testing.T) {
	tr := NewTracker()
	tr.Update(map[int32]int{1: 100})
	assert.False(t, tr.Update(map[int32]int{1: 1}))
}

func TestEdgeCountAndExecCount(t *testing.T) {
	tr := NewTracker()
	tr.Update(map[int32]int{1: 1, 2: 1})
	tr.Update(map[int32]int{1: 1, 3: 1})
	assert.Equal(t, 3, tr.EdgeCount())
	assert.Equal(t, int64(2), tr.ExecCount())
}

func TestSetTrackerNovelty(t *testing.T) {
	st := NewSetTracker()
	assert.True(t, st.Update([]int32{1, 2}))
	assert.False(t, st.Update([]int32{1, 2}))
	assert.True(t, st.Update([]int32{1, 2, 3}))
	assert.Equal(t, 3, st.EdgeCount())
}
