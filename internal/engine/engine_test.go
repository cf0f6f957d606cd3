package engine

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bytescribe/fuzz/internal/config"
	"github.com/bytescribe/fuzz/internal/driver"
	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor reports a one-edge trace keyed by the input value, so
// every previously unseen value is novel by coverage, and crashes with
// an ArithmeticException when the value equals crashAt, so the loop
// exercises corpus growth and crash detection without a real JVM.
type fakeExecutor struct {
	mu      sync.Mutex
	workers int
	calls   int
	crashAt int32
}

func (f *fakeExecutor) Submit(ctx context.Context, workerIdx int, record types.ExecutionRecord) (driver.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	v := record.Inputs[0]
	if v == f.crashAt {
		return driver.Result{Stderr: "java.lang.ArithmeticException: / by zero", ExitCode: 1}, nil
	}
	return driver.Result{Trace: []int32{v}}, nil
}

func (f *fakeExecutor) Workers() int { return f.workers }
func (f *fakeExecutor) Release()     {}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Fuzz.SeedCount = 2
	cfg.Fuzz.MutationsPerPick = 2
	cfg.Fuzz.MaxIterations = 20
	cfg.Fuzz.Workers = 1
	cfg.Fuzz.RNGSeed = 1
	return cfg
}

func TestEngineRunGrowsCorpusAndStops(t *testing.T) {
	cfg := testConfig()
	exec := &fakeExecutor{workers: 1}
	e := newWithExecutor(cfg, slog.Default(), exec)
	e.Initialize()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := e.Run(ctx)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, e.Corpus().Size(), cfg.Fuzz.SeedCount)
	assert.LessOrEqual(t, int(e.iteration.Load()), cfg.Fuzz.MaxIterations)
}

func TestEngineDetectsCrash(t *testing.T) {
	cfg := testConfig()
	cfg.Fuzz.MaxIterations = 50
	exec := &fakeExecutor{workers: 1, crashAt: 0}
	e := newWithExecutor(cfg, slog.Default(), exec)
	e.Initialize()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.GreaterOrEqual(t, e.Detector().Count(), 1)
}

func TestEngineUsesSetTrackerWhenBucketingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.BucketedCoverage = false
	exec := &fakeExecutor{workers: 1}
	e := newWithExecutor(cfg, slog.Default(), exec)
	e.Initialize()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.Greater(t, e.Tracker().EdgeCount(), 0)
}

func TestEngineStopsWhenCorpusEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.Fuzz.SeedCount = 0
	exec := &fakeExecutor{workers: 1}
	e := newWithExecutor(cfg, slog.Default(), exec)
	// Deliberately skip Initialize so the corpus starts empty, to
	// exercise the empty-corpus termination path.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, int64(0), e.iteration.Load())
}
