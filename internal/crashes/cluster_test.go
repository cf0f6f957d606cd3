package crashes

import (
	"testing"

	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestClustererGroupsShortMessagesByType(t *testing.T) {
	c := NewClusterer()
	a := types.CrashEntry{ErrorType: "java.lang.ArithmeticException", ErrorMessage: "short"}
	b := types.CrashEntry{ErrorType: "java.lang.ArithmeticException", ErrorMessage: "other"}
	ia := c.Add(a)
	ib := c.Add(b)
	assert.Equal(t, ia, ib)
	assert.Len(t, c.Clusters(), 1)
}

func TestClustererSeparatesDifferentTypes(t *testing.T) {
	c := NewClusterer()
	a := types.CrashEntry{ErrorType: "java.lang.ArithmeticException", ErrorMessage: "short"}
	b := types.CrashEntry{ErrorType: "java.lang.NullPointerException", ErrorMessage: "other"}
	ia := c.Add(a)
	ib := c.Add(b)
	assert.NotEqual(t, ia, ib)
	assert.Len(t, c.Clusters(), 2)
}
