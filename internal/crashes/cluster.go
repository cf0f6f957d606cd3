package crashes

import (
	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/glaslos/tlsh"
)

// minClusterDataSize is the smallest error-message length TLSH can
// fingerprint meaningfully; shorter messages fall back to grouping by
// identical error type.
const minClusterDataSize = 50

// similarityThreshold is the maximum TLSH distance at which two crash
// messages are considered the same underlying fault.
const similarityThreshold = 100

// Clusterer groups deduplicated crashes that are textually distinct
// but likely the same root cause, e.g. the same exception with a
// different offending value interpolated into the message. It is
// strictly additive: it never hides a crash, only annotates which
// cluster it joined.
type Clusterer struct {
	clusters [][]types.CrashEntry
	hashes   []*tlsh.TLSH
}

// NewClusterer returns an empty clusterer.
func NewClusterer() *Clusterer {
	return &Clusterer{}
}

// Add assigns entry to an existing cluster if its error message is
// within similarityThreshold of a cluster representative, or starts a
// new cluster otherwise. Returns the cluster index.
func (c *Clusterer) Add(entry types.CrashEntry) int {
	if len(entry.ErrorMessage) < minClusterDataSize {
		return c.addExact(entry)
	}

	h, err := tlsh.HashBytes([]byte(entry.ErrorMessage))
	if err != nil {
		return c.addExact(entry)
	}

	for i, rep := range c.hashes {
		if rep == nil {
			continue
		}
		if dist := h.Diff(rep); dist <= similarityThreshold {
			c.clusters[i] = append(c.clusters[i], entry)
			return i
		}
	}

	c.clusters = append(c.clusters, []types.CrashEntry{entry})
	c.hashes = append(c.hashes, h)
	return len(c.clusters) - 1
}

// addExact groups by identical error type when the message is too
// short for TLSH to fingerprint.
func (c *Clusterer) addExact(entry types.CrashEntry) int {
	for i, cluster := range c.clusters {
		if len(cluster) > 0 && cluster[0].ErrorType == entry.ErrorType {
			c.clusters[i] = append(c.clusters[i], entry)
			return i
		}
	}
	c.clusters = append(c.clusters, []types.CrashEntry{entry})
	c.hashes = append(c.hashes, nil)
	return len(c.clusters) - 1
}

// Clusters returns all clusters built so far.
func (c *Clusterer) Clusters() [][]types.CrashEntry {
	return c.clusters
}
