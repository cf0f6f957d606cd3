// bytescribe-fuzz is a coverage-guided fuzzer for a single managed-
// bytecode method, driven by a JVM-side instrumentation agent that
// reports per-edge hit counts back to the fuzzing loop.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bytescribe/fuzz/internal/config"
	"github.com/bytescribe/fuzz/internal/driver"
	"github.com/bytescribe/fuzz/internal/engine"
	"github.com/bytescribe/fuzz/internal/protocol"
	"github.com/bytescribe/fuzz/internal/report"
	"github.com/bytescribe/fuzz/internal/ui"
	"github.com/bytescribe/fuzz/internal/watchdog"
	"github.com/bytescribe/fuzz/internal/web"
	"github.com/bytescribe/fuzz/pkg/types"
)

var version = "0.1.0-dev"

var (
	configPath string
	verbose    bool
	webAddr    string
	tui        bool

	driverInputFile  string
	driverOutputFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bytescribe-fuzz",
		Short: "Coverage-guided fuzzer for a managed-bytecode target method",
		Long: `bytescribe-fuzz mutates integer inputs to a single target method,
runs them through a JVM instrumented with an edge-coverage agent, and
keeps any mutant that discovers new coverage. Crashes are deduplicated
by error message and reported at the end of the run.`,
		RunE: runFuzz,
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config overlay")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&webAddr, "web", "", "start the web dashboard on this address, e.g. :9090")
	rootCmd.Flags().BoolVar(&tui, "tui", false, "enable the terminal dashboard")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bytescribe-fuzz %s\n", version)
		},
	}

	driverCmd := &cobra.Command{
		Use:   "driver",
		Short: "answer a single driver-protocol request and exit",
		RunE:  runDriver,
	}
	driverCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config overlay")
	driverCmd.Flags().StringVar(&driverInputFile, "input", "", "request file (default: stdin)")
	driverCmd.Flags().StringVar(&driverOutputFile, "output", "", "response file (default: stdout)")

	webCmd := &cobra.Command{
		Use:   "web",
		Short: "run a fuzzing session with the live web dashboard enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			if webAddr == "" {
				webAddr = ":9090"
			}
			return runFuzz(cmd, args)
		},
	}
	webCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config overlay")
	webCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	webCmd.Flags().StringVar(&webAddr, "addr", "", "address to bind the web dashboard (default :9090)")
	webCmd.Flags().BoolVar(&tui, "tui", false, "also enable the terminal dashboard")

	rootCmd.AddCommand(versionCmd, driverCmd, webCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(config.Default(), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFuzz(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !verbose {
		var level slog.Level
		if level.UnmarshalText([]byte(cfg.Output.LogLevel)) == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		}
	}
	if webAddr == "" {
		webAddr = cfg.Output.WebAddr
	}
	if cfg.Output.EnableTUI {
		tui = true
	}

	eng, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}
	eng.Initialize()

	wd := watchdog.New(0, watchdog.DefaultThreshold(), logger)
	wd.Start()
	defer wd.Stop()

	var webServer *web.Server
	if webAddr != "" {
		webServer = web.NewServer(logger)
		go func() {
			if err := webServer.Listen(webAddr); err != nil {
				logger.Error("web dashboard stopped", "error", err)
			}
		}()
	}

	var snapshotCh chan types.ProgressSnapshot
	if tui {
		snapshotCh = make(chan types.ProgressSnapshot, 16)
	}

	eng.OnProgress(func(snap types.ProgressSnapshot) {
		logger.Info("progress",
			"iteration", snap.Iteration,
			"corpus_size", snap.CorpusSize,
			"covered_edges", snap.CoveredEdges,
			"crashes", snap.CrashCount,
			"execs_per_sec", snap.ExecsPerSec,
		)
		if webServer != nil {
			webServer.PushSnapshot(snap)
			webServer.SetCorpusSample(eng.Corpus().Snapshot())
		}
		if snapshotCh != nil {
			select {
			case snapshotCh <- snap:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- eng.Run(ctx) }()

	if tui {
		dash := ui.NewDashboard(cfg.Fuzz.MaxIterations, snapshotCh)
		if err := ui.Run(dash); err != nil {
			logger.Warn("dashboard exited", "error", err)
		}
	}

	runErr := <-runErrCh
	if runErr != nil && runErr != context.Canceled {
		return runErr
	}

	return writeReport(cfg, eng)
}

func writeReport(cfg *config.Config, eng *engine.Engine) error {
	stats := report.Stats{
		Iterations:   eng.Iterations(),
		CorpusSize:   eng.Corpus().Size(),
		CoveredEdges: eng.Tracker().EdgeCount(),
		Duration:     eng.Duration(),
		Crashes:      eng.Detector().Entries(),
	}
	rpt := report.Generate(stats)

	data, err := rpt.ToIndentedJSON()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.ReportDir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	jsonPath := cfg.Output.ReportDir + "/report.json"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	htmlPath := cfg.Output.ReportDir + "/report.html"
	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("creating HTML report: %w", err)
	}
	defer htmlFile.Close()
	if err := report.NewHTMLGenerator().Generate(rpt, htmlFile); err != nil {
		return err
	}

	fmt.Printf("reports written to %s and %s\n", jsonPath, htmlPath)
	return nil
}

func runDriver(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if driverInputFile != "" {
		f, err := os.Open(driverInputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	body, err := io.ReadAll(bufio.NewReader(in))
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	var resp protocol.Response
	req, err := protocol.ParseRequest(body)
	if err != nil {
		resp = protocol.ErrorResponse("invalid input json")
	} else {
		d := driver.New(cfg)
		resp = protocol.Handle(context.Background(), d, req)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	if driverOutputFile != "" {
		return os.WriteFile(driverOutputFile, out, 0o644)
	}
	fmt.Println(string(out))
	return nil
}
