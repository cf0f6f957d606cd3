// Package report builds the end-of-run summary: corpus size, covered
// edges, and every deduplicated crash found.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytescribe/fuzz/internal/crashes"
	"github.com/bytescribe/fuzz/pkg/types"
)

// Report is the top-level summary document for one fuzzing run.
type Report struct {
	GeneratedAt   time.Time          `json:"generated_at"`
	Iterations    int                `json:"iterations"`
	CorpusSize    int                `json:"corpus_size"`
	CoveredEdges  int                `json:"covered_edges"`
	Duration      string             `json:"duration"`
	Crashes       []types.CrashEntry `json:"crashes"`
	CrashClusters int                `json:"crash_clusters"`
}

// Stats is the subset of Engine state needed to build a Report, so
// this package does not import the engine package.
type Stats struct {
	Iterations   int
	CorpusSize   int
	CoveredEdges int
	Duration     time.Duration
	Crashes      []types.CrashEntry
}

// Generate builds a Report from a run's final stats. Crashes are
// additionally grouped by a crashes.Clusterer so near-duplicate
// exceptions (same root cause, different interpolated value) collapse
// into one reported cluster, without affecting the exact-dedup crash
// list itself.
func Generate(s Stats) Report {
	clusterer := crashes.NewClusterer()
	for _, c := range s.Crashes {
		clusterer.Add(c)
	}
	return Report{
		GeneratedAt:   time.Now(),
		Iterations:    s.Iterations,
		CorpusSize:    s.CorpusSize,
		CoveredEdges:  s.CoveredEdges,
		Duration:      s.Duration.String(),
		Crashes:       s.Crashes,
		CrashClusters: len(clusterer.Clusters()),
	}
}

// ToIndentedJSON renders the report as indented JSON for writing to
// disk.
func (r Report) ToIndentedJSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshaling: %w", err)
	}
	return b, nil
}
