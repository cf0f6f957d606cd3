// Package driver invokes the target JVM under the instrumentation
// agent for a single execution, and parses the per-edge trace the
// agent writes to disk.
package driver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bytescribe/fuzz/internal/config"
	"github.com/bytescribe/fuzz/pkg/types"
)

// ErrTimeout is returned by Run when the target process is killed
// after exceeding the configured timeout. A timeout is not itself a
// crash: the engine's crash detector only fires on a nonzero exit
// code paired with stderr output.
var ErrTimeout = errors.New("driver: execution timed out")

// Result is everything one invocation of the target produces.
type Result struct {
	Trace    []int32
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Driver runs one target method invocation at a time, using a fixed
// set of instrumentation file paths. Concurrent fuzzing uses one
// Driver per worker, each constructed with distinct paths so their
// agent instances never collide (see Pool).
type Driver struct {
	cfg         *config.Config
	shmPath     string
	mapPath     string
	edgeCSVPath string
}

// New builds a Driver from cfg's agent paths, used directly for
// single-worker runs.
func New(cfg *config.Config) *Driver {
	return &Driver{
		cfg:         cfg,
		shmPath:     cfg.Agent.ShmPath,
		mapPath:     cfg.Agent.MapPath,
		edgeCSVPath: cfg.Agent.EdgeCSVPath,
	}
}

// NewWithPaths builds a Driver whose instrumentation files are
// suffixed for a particular worker, so W workers never contend for
// the same shm/map/CSV files.
func NewWithPaths(cfg *config.Config, suffix string) *Driver {
	return &Driver{
		cfg:         cfg,
		shmPath:     cfg.Agent.ShmPath + suffix,
		mapPath:     cfg.Agent.MapPath + suffix,
		edgeCSVPath: cfg.Agent.EdgeCSVPath + suffix,
	}
}

// agentArg builds the exact -javaagent invocation string the
// instrumentation agent expects.
func (d *Driver) agentArg() string {
	return fmt.Sprintf(
		"-javaagent:%s=size=%d,shm=%s,map=%s,map.append=false,perEdge=true,perEdgePath=%s",
		d.cfg.Agent.AgentJarPath, d.cfg.Agent.BitmapSize, d.shmPath, d.mapPath, d.edgeCSVPath,
	)
}

// Run executes the target once with the given record's method and
// inputs, under ctx's deadline, and returns the parsed per-edge trace.
func (d *Driver) Run(ctx context.Context, record types.ExecutionRecord) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.cfg.Fuzz.Timeout)
	defer cancel()

	os.Remove(d.edgeCSVPath)

	args := []string{
		d.agentArg(),
		"-cp", d.cfg.Target.ClasspathDir,
		d.cfg.Target.RuntimeClass,
		record.Method,
	}
	for _, v := range record.Inputs {
		args = append(args, strconv.FormatInt(int64(v), 10))
	}

	cmd := exec.CommandContext(runCtx, d.cfg.Target.VMPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{Duration: duration}, ErrTimeout
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{Duration: duration}, fmt.Errorf("driver: starting target: %w", err)
		}
	}

	trace, traceErr := parseEdgeCSV(d.edgeCSVPath)
	if traceErr != nil {
		if exitCode == 0 && errors.Is(traceErr, os.ErrNotExist) {
			return Result{Stderr: stderr.String(), ExitCode: exitCode, Duration: duration}, nil
		}
		return Result{Stderr: stderr.String(), ExitCode: exitCode, Duration: duration}, traceErr
	}

	return Result{
		Trace:    trace,
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// parseEdgeCSV reads the agent's per-edge trace file. Two line shapes
// are accepted, matching the two conventions seen in the reference
// prototype: "src,dst,hits" (the comma form, most lines) and
// "edge_id:hit_count" (the colon form from the prototype's alternate
// path). A line whose first field fails to parse as an integer is a
// header and is skipped rather than treated as an error.
func parseEdgeCSV(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("driver: opening trace %s: %w", path, err)
	}
	defer f.Close()

	var trace []int32
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var firstField string
		if idx := strings.IndexAny(line, ",:"); idx >= 0 {
			firstField = line[:idx]
		} else {
			firstField = line
		}

		edgeID, err := strconv.ParseInt(strings.TrimSpace(firstField), 10, 32)
		if err != nil {
			continue
		}
		trace = append(trace, int32(edgeID))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("driver: reading trace %s: %w", path, err)
	}
	return trace, nil
}

// EdgeHits folds a flat trace (possibly with repeated edge IDs, one
// per hit) into a hit-count map for the coverage tracker's bucketing.
func EdgeHits(trace []int32) map[int32]int {
	hits := make(map[int32]int, len(trace))
	for _, e := range trace {
		hits[e]++
	}
	return hits
}
