// Package engine runs the coverage-guided fuzzing loop: pick an input
// from the corpus, mutate it some number of times, execute each
// mutant, fold its trace into the coverage tracker, detect crashes,
// and keep mutants that found new coverage.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytescribe/fuzz/internal/config"
	"github.com/bytescribe/fuzz/internal/corpus"
	"github.com/bytescribe/fuzz/internal/coverage"
	"github.com/bytescribe/fuzz/internal/crashes"
	"github.com/bytescribe/fuzz/internal/driver"
	"github.com/bytescribe/fuzz/internal/mutator"
	"github.com/bytescribe/fuzz/pkg/types"
)

// progressInterval is how often, in iterations, the engine emits a
// ProgressSnapshot, matching the reference loop's print-every-1000
// cadence.
const progressInterval = 1000

// Executor runs one execution record and reports its result. driver.Pool
// satisfies this; tests substitute a fake so the scheduling loop can
// be exercised without a real JVM.
type Executor interface {
	Submit(ctx context.Context, workerIdx int, record types.ExecutionRecord) (driver.Result, error)
	Workers() int
	Release()
}

// EdgeTracker is the coverage representation the scheduling loop folds
// execution traces into. *coverage.Tracker (AFL-style bucketing) and
// *coverage.SetTracker (plain edge-ID set) both satisfy it, selected
// by Config.Agent.BucketedCoverage.
type EdgeTracker interface {
	UpdateHits(hits map[int32]int) bool
	EdgeCount() int
}

// Engine owns the shared state a run's workers contend on: the
// corpus, the coverage tracker, and the crash detector. Every field
// that can be touched from more than one goroutine guards itself
// internally, so Engine itself holds no lock.
type Engine struct {
	cfg      *config.Config
	corpus   *corpus.Manager
	gen      *mutator.Generator
	tracker  EdgeTracker
	detector *crashes.Detector
	exec     Executor
	logger   *slog.Logger

	iteration  atomic.Int64
	execCount  atomic.Int64
	onProgress func(types.ProgressSnapshot)
	startedAt  time.Time
}

// New builds an Engine from cfg. cfg must already be validated.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := driver.NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: building driver pool: %w", err)
	}
	return newWithExecutor(cfg, logger, pool), nil
}

// newWithExecutor builds an Engine around an arbitrary Executor,
// letting tests inject a fake in place of the real driver pool.
func newWithExecutor(cfg *config.Config, logger *slog.Logger, exec Executor) *Engine {
	var tracker EdgeTracker = coverage.NewTracker()
	if !cfg.Agent.BucketedCoverage {
		tracker = coverage.NewSetTracker()
	}
	return &Engine{
		cfg:      cfg,
		corpus:   corpus.New(cfg.Fuzz.RNGSeed),
		gen:      mutator.New(cfg.Fuzz.RNGSeed),
		tracker:  tracker,
		detector: crashes.NewDetector(),
		exec:     exec,
		logger:   logger,
	}
}

// OnProgress registers a callback invoked every progressInterval
// iterations and once more after the run ends. Used by the terminal
// and web dashboards; nil is a valid no-op.
func (e *Engine) OnProgress(fn func(types.ProgressSnapshot)) {
	e.onProgress = fn
}

// Initialize seeds the corpus with the boundary-value and random
// seeds from the mutator, per the configured seed count.
func (e *Engine) Initialize() {
	for _, seed := range e.gen.GenerateSeeds(e.cfg.Fuzz.SeedCount) {
		e.corpus.Add(seed)
	}
	e.logger.Info("corpus initialized", "size", e.corpus.Size())
}

// Run executes the scheduling loop until MaxIterations is reached, the
// corpus is exhausted, or ctx is canceled. It fans out across
// cfg.Fuzz.Workers goroutines sharing the same corpus, tracker, and
// detector.
func (e *Engine) Run(ctx context.Context) error {
	e.startedAt = time.Now()
	defer e.exec.Release()

	workers := e.exec.Workers()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerIdx int) {
			defer wg.Done()
			e.workerLoop(ctx, workerIdx)
		}(w)
	}
	wg.Wait()

	e.emitProgress()
	e.logger.Info("run complete",
		"iterations", e.iteration.Load(),
		"corpus_size", e.corpus.Size(),
		"covered_edges", e.tracker.EdgeCount(),
		"crashes", e.detector.Count(),
	)
	return ctx.Err()
}

// workerLoop is one worker's share of the scheduling loop: it keeps
// claiming the next iteration number until the budget is exhausted,
// the corpus runs dry, or the context is done.
func (e *Engine) workerLoop(ctx context.Context, workerIdx int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if e.corpus.Size() == 0 {
			return
		}
		iter := e.iteration.Add(1)
		if iter > int64(e.cfg.Fuzz.MaxIterations) {
			e.iteration.Add(-1)
			return
		}

		seed, ok := e.corpus.Pick()
		if !ok {
			return
		}

		for m := 0; m < e.cfg.Fuzz.MutationsPerPick; m++ {
			mutant := e.gen.Mutate(seed, 1)
			e.runOne(ctx, workerIdx, mutant)
		}

		if iter%progressInterval == 0 {
			e.emitProgress()
		}
	}
}

// runOne executes a single mutant through the driver, folds its trace
// into the coverage tracker, runs crash detection, and adds the
// mutant back to the corpus if it produced new coverage.
func (e *Engine) runOne(ctx context.Context, workerIdx int, mutant types.Input) {
	record := types.ExecutionRecord{
		Method: e.cfg.Target.MethodSig,
		Inputs: mutant.Values,
	}

	res, err := e.exec.Submit(ctx, workerIdx, record)
	e.execCount.Add(1)
	if err != nil {
		if err == driver.ErrTimeout {
			e.logger.Debug("execution timed out", "inputs", mutant.Values)
		} else {
			e.logger.Warn("execution failed", "error", err, "inputs", mutant.Values)
		}
		return
	}

	if _, novel := e.detector.Detect(mutant, res.Stderr, res.ExitCode); novel {
		e.logger.Info("new crash", "inputs", mutant.Values, "exit_code", res.ExitCode)
	}

	hits := driver.EdgeHits(res.Trace)
	if e.tracker.UpdateHits(hits) {
		e.corpus.Add(mutant)
	}
}

// emitProgress builds and dispatches a ProgressSnapshot.
func (e *Engine) emitProgress() {
	if e.onProgress == nil {
		return
	}
	elapsed := time.Since(e.startedAt).Seconds()
	var execsPerSec float64
	if elapsed > 0 {
		execsPerSec = float64(e.execCount.Load()) / elapsed
	}
	e.onProgress(types.ProgressSnapshot{
		Iteration:    int(e.iteration.Load()),
		CorpusSize:   e.corpus.Size(),
		CoveredEdges: e.tracker.EdgeCount(),
		CrashCount:   e.detector.Count(),
		ExecsPerSec:  execsPerSec,
		Timestamp:    time.Now(),
	})
}

// Corpus, Tracker, and Detector expose the engine's shared state for
// reporting surfaces that need a final snapshot after Run returns.
func (e *Engine) Corpus() *corpus.Manager     { return e.corpus }
func (e *Engine) Tracker() EdgeTracker        { return e.tracker }
func (e *Engine) Detector() *crashes.Detector { return e.detector }

// Iterations returns the number of scheduling-loop iterations claimed
// so far.
func (e *Engine) Iterations() int { return int(e.iteration.Load()) }

// Duration returns the wall-clock time elapsed since Run started. It
// is zero if Run has not been called yet.
func (e *Engine) Duration() time.Duration {
	if e.startedAt.IsZero() {
		return 0
	}
	return time.Since(e.startedAt)
}
