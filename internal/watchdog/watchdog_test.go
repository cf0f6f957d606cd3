package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchdogRecordsHistory(t *testing.T) {
	w := New(20*time.Millisecond, DefaultThreshold(), nil)
	w.Start()
	time.Sleep(80 * time.Millisecond)
	w.Stop()
	assert.NotEmpty(t, w.History())
}

func TestCurrentReturnsNonZeroGoroutines(t *testing.T) {
	s := Current()
	assert.Greater(t, s.NumGoroutine, 0)
}

func TestCheckThresholdDoesNotPanicAtZeroThreshold(t *testing.T) {
	w := New(time.Second, Threshold{}, nil)
	assert.NotPanics(t, func() { w.checkThreshold(collect()) })
}
