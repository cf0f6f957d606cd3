// Package coverage tracks edge coverage across executions: a global
// per-edge bucket map with AFL-style bucketing for novelty detection, and
// a degenerate edge-ID set for the alternate trace convention the
// reference prototype also emits.
package coverage

import "sync"

// bucketTable maps a raw hit count to one of the 8 AFL buckets used to
// decide whether an edge's hit-count class changed. Indices 4-7, 8-15,
// 16-31, 32-127, and 128-255 each collapse to one bucket; anything at
// or above 256 is a saturated bucket 8. This table is consulted for
// every edge of every execution, so it is a direct lookup rather than
// a branch chain above 7.
var bucketTable = func() [256]byte {
	var t [256]byte
	t[0] = 0
	t[1] = 1
	t[2] = 2
	t[3] = 3
	for i := 4; i <= 7; i++ {
		t[i] = 4
	}
	for i := 8; i <= 15; i++ {
		t[i] = 5
	}
	for i := 16; i <= 31; i++ {
		t[i] = 6
	}
	for i := 32; i <= 127; i++ {
		t[i] = 7
	}
	for i := 128; i <= 255; i++ {
		t[i] = 8
	}
	return t
}()

// hitCountBucket returns the bucket for a raw hit count, saturating at
// the table's top entry for counts of 256 or more.
func hitCountBucket(hits int) byte {
	if hits >= 256 {
		return 8
	}
	return bucketTable[hits]
}

// Tracker holds the global per-edge bucket map. Edge IDs are whatever
// the instrumentation agent assigns; the tracker does not interpret
// them beyond using them as map keys.
type Tracker struct {
	mu        sync.Mutex
	buckets   map[int32]byte
	execCount int64
}

// NewTracker returns an empty coverage tracker.
func NewTracker() *Tracker {
	return &Tracker{buckets: make(map[int32]byte)}
}

// Update folds one execution's per-edge hit counts into the global
// map and reports whether any edge's bucket is new or increased,
// meaning the execution is "interesting" and its input should be kept.
func (t *Tracker) Update(edgeHits map[int32]int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.execCount++

	novel := false
	for edge, hits := range edgeHits {
		bucket := hitCountBucket(hits)
		if prev, ok := t.buckets[edge]; !ok || bucket > prev {
			t.buckets[edge] = bucket
			novel = true
		}
	}
	return novel
}

// UpdateHits satisfies the engine's EdgeTracker interface, letting
// callers that don't care which coverage representation is active
// treat a Tracker and a SetTracker interchangeably.
func (t *Tracker) UpdateHits(hits map[int32]int) bool {
	return t.Update(hits)
}

// EdgeCount returns the number of distinct edges ever observed.
func (t *Tracker) EdgeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// ExecCount returns the number of executions folded in so far.
func (t *Tracker) ExecCount() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.execCount
}

// Reset clears all recorded coverage and the execution count.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buckets = make(map[int32]byte)
	t.execCount = 0
}
