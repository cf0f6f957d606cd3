package corpus

import (
	"testing"

	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerAddDedup(t *testing.T) {
	m := New(42)
	require.True(t, m.Add(types.NewScalarInput(5)))
	require.False(t, m.Add(types.NewScalarInput(5)))
	assert.Equal(t, 1, m.Size())
}

func TestManagerAddDistinctValues(t *testing.T) {
	m := New(42)
	m.Add(types.NewScalarInput(1))
	m.Add(types.NewScalarInput(2))
	m.Add(types.NewScalarInput(3))
	assert.Equal(t, 3, m.Size())
}

func TestManagerPickEmpty(t *testing.T) {
	m := New(42)
	_, ok := m.Pick()
	assert.False(t, ok)
}

func TestManagerPickReturnsMember(t *testing.T) {
	m := New(1)
	m.Add(types.NewScalarInput(10))
	m.Add(types.NewScalarInput(20))
	got, ok := m.Pick()
	require.True(t, ok)
	assert.Contains(t, []int32{10, 20}, got.Values[0])
}

func TestManagerSnapshotIsIndependentCopy(t *testing.T) {
	m := New(1)
	m.Add(types.NewScalarInput(7))
	snap := m.Snapshot()
	snap[0].Values[0] = 99
	got, _ := m.Pick()
	assert.Equal(t, int32(7), got.Values[0])
}
