// Package config handles configuration loading and validation for the
// fuzzer: compiled-in defaults and an optional YAML overlay. The CLI in
// cmd/bytescribe-fuzz applies its flags on top of both.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the immutable run parameters for one fuzzing session.
// It is built once at startup by LoadFile/Validate and never mutated
// afterward; components receive it by value or read-only pointer.
type Config struct {
	Target TargetConfig `yaml:"target"`
	Fuzz   FuzzConfig   `yaml:"fuzz"`
	Agent  AgentConfig  `yaml:"agent"`
	Output OutputConfig `yaml:"output"`
}

// TargetConfig identifies the managed-bytecode target.
type TargetConfig struct {
	ClasspathDir string `yaml:"classpath"`     // -cp argument for the target JVM
	MethodSig    string `yaml:"method_sig"`    // e.g. "jpamb.cases.Simple.divideByN:(I)I"
	RuntimeClass string `yaml:"runtime_class"` // fixed dispatcher class, default jpamb.Runtime
	VMPath       string `yaml:"vm_path"`       // path to the java binary
}

// AgentConfig describes the instrumentation agent's file layout.
type AgentConfig struct {
	AgentJarPath string `yaml:"agent_jar_path"`
	ShmPath      string `yaml:"shm_path"`
	MapPath      string `yaml:"map_path"`
	EdgeCSVPath  string `yaml:"edge_csv_path"`
	BitmapSize   int    `yaml:"bitmap_size"`
	// BucketedCoverage selects the AFL-style hit-count bucketing
	// tracker. False falls back to the degenerate edge-ID set tracker,
	// for an agent build that only emits a flat list of covered edges.
	BucketedCoverage bool `yaml:"bucketed_coverage"`
}

// FuzzConfig controls the scheduling loop.
type FuzzConfig struct {
	SeedCount        int           `yaml:"seed_count"`
	MutationsPerPick int           `yaml:"mutations_per_pick"`
	MaxIterations    int           `yaml:"max_iterations"`
	Timeout          time.Duration `yaml:"timeout"`
	RNGSeed          int64         `yaml:"rng_seed"`
	Workers          int           `yaml:"workers"`
	ExecsPerSecond   float64       `yaml:"execs_per_second"`
}

// OutputConfig controls ambient surfaces: logging, the live terminal
// dashboard, and the optional web dashboard.
type OutputConfig struct {
	LogLevel  string `yaml:"log_level"` // debug, info, warn, error
	EnableTUI bool   `yaml:"enable_tui"`
	WebAddr   string `yaml:"web_addr"` // empty disables the dashboard
	ReportDir string `yaml:"report_dir"`
}

// Default returns the compiled-in baseline configuration.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			ClasspathDir: "bin:lib/asm.jar",
			MethodSig:    "jpamb.cases.Simple.divideByN:(I)I",
			RuntimeClass: "jpamb.Runtime",
			VMPath:       "java",
		},
		Agent: AgentConfig{
			AgentJarPath: "./bytescribe-agent-1.0-SNAPSHOT.jar",
			ShmPath:      "./bytescribe.cov",
			MapPath:      "./bytescribe-map.csv",
			EdgeCSVPath:  "./per-edge.csv",
			BitmapSize:   65536,
			BucketedCoverage: true,
		},
		Fuzz: FuzzConfig{
			SeedCount:        100,
			MutationsPerPick: 5,
			MaxIterations:    10000,
			Timeout:          5 * time.Second,
			RNGSeed:          42,
			Workers:          1,
			ExecsPerSecond:   0, // 0 disables the rate limiter
		},
		Output: OutputConfig{
			LogLevel:  "info",
			EnableTUI: false,
			ReportDir: "./bytescribe-out",
		},
	}
}

// LoadFile overlays a YAML file onto the given base configuration.
// An empty path returns base unchanged; a path that cannot be read or
// parsed is an error.
func LoadFile(base *Config, path string) (*Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate enforces the startup invariants from the spec: bitmap size
// is a positive power of two, the timeout is positive, and the agent
// jar actually exists on disk. These are the only non-catchable
// failures in the core; everything past this point is handled as a
// recoverable per-iteration error.
func (c *Config) Validate() error {
	if c.Agent.BitmapSize <= 0 || c.Agent.BitmapSize&(c.Agent.BitmapSize-1) != 0 {
		return fmt.Errorf("config: bitmap_size must be a positive power of two, got %d", c.Agent.BitmapSize)
	}
	if c.Fuzz.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Fuzz.Timeout)
	}
	if _, err := os.Stat(c.Agent.AgentJarPath); err != nil {
		return fmt.Errorf("config: agent jar not found at %s: %w", c.Agent.AgentJarPath, err)
	}
	if c.Fuzz.Workers <= 0 {
		c.Fuzz.Workers = 1
	}
	return nil
}
