package driver

import (
	"context"
	"fmt"

	"github.com/bytescribe/fuzz/internal/config"
	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

// execJob is one unit of work submitted to the pool: run record
// through the worker-indexed driver and deliver the result.
type execJob struct {
	record types.ExecutionRecord
	driver *Driver
	result chan<- jobResult
}

type jobResult struct {
	res Result
	err error
}

// Pool runs multiple Drivers concurrently, each with its own
// instrumentation file paths, bounded by an ants goroutine pool and an
// optional execs/sec rate limiter.
type Pool struct {
	drivers []*Driver
	pool    *ants.PoolWithFunc
	limiter *rate.Limiter
}

// NewPool builds one Driver per worker (paths suffixed ".w<N>") and a
// goroutine pool sized to cfg.Fuzz.Workers. A zero ExecsPerSecond
// disables rate limiting.
func NewPool(cfg *config.Config) (*Pool, error) {
	workers := cfg.Fuzz.Workers
	if workers <= 0 {
		workers = 1
	}

	drivers := make([]*Driver, workers)
	for i := 0; i < workers; i++ {
		drivers[i] = NewWithPaths(cfg, fmt.Sprintf(".w%d", i))
	}

	p := &Pool{drivers: drivers}

	antsPool, err := ants.NewPoolWithFunc(workers, func(arg interface{}) {
		job := arg.(execJob)
		res, err := job.driver.Run(context.Background(), job.record)
		job.result <- jobResult{res: res, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("driver: creating worker pool: %w", err)
	}
	p.pool = antsPool

	if cfg.Fuzz.ExecsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.Fuzz.ExecsPerSecond), workers)
	}

	return p, nil
}

// Submit runs record on worker workerIdx (chosen by the caller to
// pick a driver with free instrumentation paths) and blocks for the
// result, honoring ctx cancellation and the pool's rate limiter.
func (p *Pool) Submit(ctx context.Context, workerIdx int, record types.ExecutionRecord) (Result, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
	}

	driver := p.drivers[workerIdx%len(p.drivers)]
	resultCh := make(chan jobResult, 1)
	job := execJob{record: record, driver: driver, result: resultCh}

	if err := p.pool.Invoke(job); err != nil {
		return Result{}, fmt.Errorf("driver: submitting job: %w", err)
	}

	select {
	case r := <-resultCh:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Workers returns the number of concurrent drivers in the pool.
func (p *Pool) Workers() int {
	return len(p.drivers)
}

// Release tears down the underlying goroutine pool.
func (p *Pool) Release() {
	p.pool.Release()
}
