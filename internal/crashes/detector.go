// Package crashes deduplicates and classifies crashing executions.
package crashes

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/bytescribe/fuzz/pkg/types"
)

// knownPrefixes are the exception-type prefixes the detector
// recognizes when extracting a type from a raw stderr message,
// matching the reference error detector's check against
// "java.lang." and "com." prefixed class names.
var knownPrefixes = []string{"java.lang.", "com."}

// Detector deduplicates crashes by the MD5 of their error message, so
// the same exception raised from the same input shape is reported
// once regardless of how many times the fuzzer rediscovers it.
type Detector struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	entries []types.CrashEntry
}

// NewDetector returns an empty crash detector.
func NewDetector() *Detector {
	return &Detector{seen: make(map[string]struct{})}
}

// Detect classifies stderr output as a crash and records it if novel.
// exitCode must be nonzero and stderr non-empty for a crash to be
// recognized; a timeout is never passed here. Returns the entry and
// whether it was newly recorded.
func (d *Detector) Detect(input types.Input, stderr string, exitCode int) (types.CrashEntry, bool) {
	trimmed := strings.TrimSpace(stderr)
	if exitCode == 0 || trimmed == "" {
		return types.CrashEntry{}, false
	}

	hash := md5Hex(trimmed)
	entry := types.CrashEntry{
		Input:        input.Clone(),
		InputValues:  append([]int32(nil), input.Values...),
		ErrorMessage: trimmed,
		ErrorType:    extractType(trimmed),
		DiscoveredAt: time.Now(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.seen[hash]; exists {
		return entry, false
	}
	d.seen[hash] = struct{}{}
	d.entries = append(d.entries, entry)
	return entry, true
}

// Count returns the number of distinct crashes recorded so far.
func (d *Detector) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Entries returns a copy of all recorded crashes in discovery order.
func (d *Detector) Entries() []types.CrashEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.CrashEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// extractType splits the message on its first colon and returns the
// left-hand side if it looks like a qualified exception class name,
// matching the reference detector's prefix check.
func extractType(msg string) string {
	parts := strings.SplitN(msg, ":", 2)
	candidate := strings.TrimSpace(parts[0])
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(candidate, prefix) {
			return candidate
		}
	}
	return "UnknownError"
}
