package coverage

import "sync"

// SetTracker is the degenerate coverage representation from the
// reference prototype's legacy path: a plain set of edge IDs with no
// hit-count bucketing. It exists for drivers or report consumers that
// only emit a flat list of covered edges rather than per-edge hit
// counts, and is not used for novelty decisions by the default engine
// configuration.
type SetTracker struct {
	mu    sync.Mutex
	edges map[int32]struct{}
}

// NewSetTracker returns an empty set tracker.
func NewSetTracker() *SetTracker {
	return &SetTracker{edges: make(map[int32]struct{})}
}

// Update adds the given edge IDs to the set and reports whether any
// were previously unseen.
func (s *SetTracker) Update(trace []int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	novel := false
	for _, e := range trace {
		if _, ok := s.edges[e]; !ok {
			s.edges[e] = struct{}{}
			novel = true
		}
	}
	return novel
}

// UpdateHits discards the hit counts and records only which edges
// fired, satisfying the engine's EdgeTracker interface so a run
// configured for the degenerate representation can share the same
// scheduling loop as the bucketed Tracker.
func (s *SetTracker) UpdateHits(hits map[int32]int) bool {
	trace := make([]int32, 0, len(hits))
	for edge := range hits {
		trace = append(trace, edge)
	}
	return s.Update(trace)
}

// EdgeCount returns the number of distinct edges observed.
func (s *SetTracker) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}
