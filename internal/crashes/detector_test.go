package crashes

import (
	"testing"

	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDetectIgnoresCleanExit(t *testing.T) {
	d := NewDetector()
	_, novel := d.Detect(types.NewScalarInput(1), "", 0)
	assert.False(t, novel)
	assert.Equal(t, 0, d.Count())
}

func TestDetectIgnoresEmptyStderrDespiteExitCode(t *testing.T) {
	d := NewDetector()
	_, novel := d.Detect(types.NewScalarInput(1), "   ", 1)
	assert.False(t, novel)
}

func TestDetectRecordsNewCrash(t *testing.T) {
	d := NewDetector()
	entry, novel := d.Detect(types.NewScalarInput(1), "java.lang.ArithmeticException: / by zero", 1)
	assert.True(t, novel)
	assert.Equal(t, "java.lang.ArithmeticException", entry.ErrorType)
	assert.Equal(t, 1, d.Count())
}

func TestDetectDedupesIdenticalMessage(t *testing.T) {
	d := NewDetector()
	d.Detect(types.NewScalarInput(1), "java.lang.ArithmeticException: / by zero", 1)
	_, novel := d.Detect(types.NewScalarInput(2), "java.lang.ArithmeticException: / by zero", 1)
	assert.False(t, novel)
	assert.Equal(t, 1, d.Count())
}

func TestExtractTypeUnknownPrefix(t *testing.T) {
	assert.Equal(t, "UnknownError", extractType("some random failure with no class name"))
}

func TestExtractTypeComPrefix(t *testing.T) {
	assert.Equal(t, "com.example.Widget$Failure", extractType("com.example.Widget$Failure: bad state"))
}
