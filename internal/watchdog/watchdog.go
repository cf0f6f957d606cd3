// Package watchdog periodically samples process memory and goroutine
// counts during a long fuzzing run and logs when a threshold is
// crossed, independent of whether anything in the engine itself asked
// for it.
package watchdog

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Stats is one sample of process resource usage.
type Stats struct {
	HeapAlloc    uint64
	HeapSys      uint64
	NumGC        uint32
	NumGoroutine int
	Timestamp    time.Time
}

// Threshold defines the levels at which Watchdog logs a warning.
type Threshold struct {
	HeapAllocBytes uint64
	Goroutines     int
}

// DefaultThreshold is generous enough not to fire during a normal
// single-worker run but catches a goroutine or heap leak in a
// many-worker one.
func DefaultThreshold() Threshold {
	return Threshold{
		HeapAllocBytes: 1 << 30,
		Goroutines:     10000,
	}
}

// Watchdog samples Stats on an interval and logs breaches. It is
// optional ambient infrastructure: the engine runs identically with
// or without one attached.
type Watchdog struct {
	interval  time.Duration
	threshold Threshold
	logger    *slog.Logger

	mu      sync.RWMutex
	history []Stats

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Watchdog that has not yet started sampling.
func New(interval time.Duration, threshold Threshold, logger *slog.Logger) *Watchdog {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watchdog{
		interval:  interval,
		threshold: threshold,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine. Stop must be
// called to release it.
func (w *Watchdog) Start() {
	go w.loop()
}

// Stop ends sampling. Safe to call more than once.
func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watchdog) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			stats := collect()
			w.record(stats)
			w.checkThreshold(stats)
		}
	}
}

func collect() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Stats{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		NumGC:        m.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now(),
	}
}

func (w *Watchdog) record(s Stats) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = append(w.history, s)
	const maxHistory = 1000
	if len(w.history) > maxHistory {
		w.history = w.history[len(w.history)-maxHistory:]
	}
}

func (w *Watchdog) checkThreshold(s Stats) {
	if w.threshold.HeapAllocBytes > 0 && s.HeapAlloc > w.threshold.HeapAllocBytes {
		w.logger.Warn("heap allocation exceeded threshold",
			"heap_alloc", s.HeapAlloc, "threshold", w.threshold.HeapAllocBytes)
	}
	if w.threshold.Goroutines > 0 && s.NumGoroutine > w.threshold.Goroutines {
		w.logger.Warn("goroutine count exceeded threshold",
			"goroutines", s.NumGoroutine, "threshold", w.threshold.Goroutines)
	}
}

// History returns a copy of all recorded samples.
func (w *Watchdog) History() []Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Stats, len(w.history))
	copy(out, w.history)
	return out
}

// Current samples Stats immediately, without waiting for the next
// tick.
func Current() Stats {
	return collect()
}
