// Package corpus manages the pool of inputs retained because they
// produced coverage novelty at least once: an insertion-ordered
// sequence plus a dedup set, and uniform random selection over the
// present items.
package corpus

import (
	"math/rand"
	"sync"

	"github.com/bytescribe/fuzz/pkg/types"
)

// Manager is the corpus's pool and dedup set, guarded by one mutex so
// Add/Pick/Size are each atomic with respect to each other — required
// when multiple fuzz workers share a corpus (spec §5).
type Manager struct {
	mu      sync.RWMutex
	entries []types.Input
	seen    map[string]struct{}
	rng     *rand.Rand
}

// New creates an empty corpus. rngSeed drives the uniform pick so a
// run is reproducible given the same seed and mutation sequence.
func New(rngSeed int64) *Manager {
	return &Manager{
		entries: make([]types.Input, 0),
		seen:    make(map[string]struct{}),
		rng:     rand.New(rand.NewSource(rngSeed)),
	}
}

// Add inserts input if it is not already present. Returns whether it
// was new. Idempotent: a second Add of the same input is a no-op.
func (m *Manager) Add(input types.Input) bool {
	key := input.Key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.seen[key]; exists {
		return false
	}
	m.seen[key] = struct{}{}
	m.entries = append(m.entries, input.Clone())
	return true
}

// Pick returns a uniform-random entry from the corpus. The second
// return value is false when the corpus is empty; callers must check
// it rather than relying on the zero Input.
func (m *Manager) Pick() (types.Input, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return types.Input{}, false
	}
	idx := m.rng.Intn(len(m.entries))
	return m.entries[idx].Clone(), true
}

// Size returns the number of distinct inputs currently retained.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot returns a copy of the entries in insertion order, for
// reporting and persistence; the corpus itself is never exposed
// mutably.
func (m *Manager) Snapshot() []types.Input {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Input, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Clone()
	}
	return out
}
