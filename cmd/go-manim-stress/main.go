// go-manim-stress renders a battery of manim stress-test scenes under
// supervision, measuring wall-clock durations against expectations and
// writing a timestamped report.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renderbench/go-manim-stress/internal/bench"
	"github.com/renderbench/go-manim-stress/internal/config"
	"github.com/renderbench/go-manim-stress/internal/history"
	"github.com/renderbench/go-manim-stress/internal/logging"
	"github.com/renderbench/go-manim-stress/internal/metrics"
	"github.com/renderbench/go-manim-stress/internal/preflight"
	"github.com/renderbench/go-manim-stress/internal/process"
	"github.com/renderbench/go-manim-stress/internal/report"
	"github.com/renderbench/go-manim-stress/internal/scheduler"
	"github.com/renderbench/go-manim-stress/internal/stats"
	"github.com/renderbench/go-manim-stress/internal/supervisor"
	"github.com/renderbench/go-manim-stress/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-version", "--version":
			fmt.Printf("go-manim-stress %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		return 1
	}

	var logger *slog.Logger
	if cfg.TUIEnabled {
		// Structured output would corrupt the dashboard.
		logger = logging.Discard()
	} else {
		logger = logging.New(logging.Options{
			Format:  cfg.LogFormat,
			Verbose: cfg.Verbose,
		})
	}

	jobs, err := selectJobs(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	runner := process.NewManimRunner(&process.ManimConfig{
		PythonPath: cfg.PythonPath,
		FFmpegDir:  cfg.FFmpegDir,
		Quality:    cfg.Quality,
		Verbosity:  "INFO", // progress parsing needs manim's INFO lines
		MediaDir:   cfg.MediaDir,
		FastMode:   cfg.FastMode,
	})

	if cfg.PrintCmd {
		for _, job := range jobs {
			fmt.Println(runner.CommandString(job))
		}
		return 0
	}

	if !cfg.SkipPreflight {
		result := preflight.RunAll(preflight.Options{
			PythonPath: cfg.PythonPath,
			FFmpegDir:  cfg.FFmpegDir,
			SceneFiles: sceneFiles(jobs),
			ReportDir:  cfg.ReportDir,
		})
		preflight.PrintResults(result)
		if !result.Passed {
			fmt.Fprintln(os.Stderr, "Preflight checks failed (use -skip-preflight to run anyway)")
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBattery(ctx, cfg, logger, runner, jobs)
}

// runBattery wires the supervisor, scheduler and reporting together and
// drives the run to completion. Job failures are reported, not returned:
// the battery measures the machine, so a failed render is still a result.
func runBattery(ctx context.Context, cfg *config.Config, logger *slog.Logger, runner *process.ManimRunner, jobs []bench.Job) int {
	selection := cfg.Test
	if cfg.JobsFile != "" {
		selection = "custom"
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			Version:   version,
			Selection: selection,
			Quality:   cfg.Quality,
		})
		collector.RunStarted(jobs)

		srv := metrics.NewServer(cfg.MetricsAddr, collector, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	var store *history.Store
	if cfg.HistoryDB != "" {
		var err error
		store, err = history.Open(cfg.HistoryDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open history db: %v\n", err)
			return 1
		}
		defer store.Close()
	}

	out := io.Writer(os.Stdout)
	var program *tea.Program
	if cfg.TUIEnabled {
		out = io.Discard
		program = tea.NewProgram(
			tui.New(tui.Config{Selection: selection, Quality: cfg.Quality, Jobs: jobs}),
			tea.WithAltScreen(),
		)
	}
	console := report.NewConsole(out)

	start := time.Now()
	rep := bench.NewRunReport(bench.Names(jobs), start)
	rec := stats.NewRecorder()

	if !cfg.TUIEnabled {
		printBanner()
	}
	console.SuiteHeader(selection, cfg.Quality, cfg.LogInterval, start)
	logger.Info("run_started",
		"run_id", rep.RunID,
		"selection", selection,
		"jobs", len(jobs),
		"quality", cfg.Quality,
		"fast_mode", cfg.FastMode,
	)

	jobByName := make(map[string]bench.Job, len(jobs))
	for _, job := range jobs {
		jobByName[job.Name] = job
	}

	// A nil *Collector must stay a nil interface.
	var sink supervisor.MetricsSink
	if collector != nil {
		sink = collector
	}

	sup := supervisor.New(supervisor.Config{
		Runner:      runner,
		Logger:      logger,
		Markers:     rec,
		Metrics:     sink,
		LogInterval: cfg.LogInterval,
		Callbacks: supervisor.Callbacks{
			OnStart: func(job bench.Job, pid int) {
				if collector != nil {
					collector.JobStarted(job)
				}
				tui.Send(program, tui.JobStartedMsg{Name: job.Name, PID: pid})
			},
			OnProgress: func(job string, elapsed time.Duration, markers int) {
				console.Progress(elapsed, markers)
				if collector != nil {
					collector.SetJobElapsed(elapsed)
				}
				tui.Send(program, tui.JobProgressMsg{Name: job, Elapsed: elapsed, Markers: markers})
			},
			OnHeartbeat: func(job string, elapsed time.Duration) {
				console.Heartbeat(elapsed)
				if collector != nil {
					collector.SetJobElapsed(elapsed)
				}
			},
		},
	})

	thermalAnnounced := false
	sched := scheduler.New(scheduler.Config{
		Runner: sup,
		Logger: logger,
		Policy: scheduler.CooldownPolicy{
			Standard:           cfg.CooldownStandard,
			Thermal:            cfg.CooldownThermal,
			ThermalStep:        cfg.CooldownStep,
			ThermalBatterySize: bench.CanonicalBatterySize,
		},
		Callbacks: scheduler.Callbacks{
			OnJobStart: func(index, total int, job bench.Job) {
				console.JobHeader(job, cfg.Quality)
			},
			OnJobDone: func(index, total int, res bench.JobResult) {
				scene := res.Name
				if job, ok := jobByName[res.Name]; ok {
					scene = job.Scene
				}
				console.JobFooter(res, scene)
				if collector != nil {
					collector.JobFinished(res)
				}
				tui.Send(program, tui.JobFinishedMsg{Result: res})
			},
			OnCooldown: func(kind scheduler.CooldownKind, remaining time.Duration) {
				if kind == scheduler.CooldownThermal {
					if !thermalAnnounced {
						console.ThermalCooldownStart(cfg.CooldownThermal)
						thermalAnnounced = true
					}
					console.ThermalCountdown(remaining)
				} else {
					console.StandardCooldown(remaining)
				}
				if collector != nil {
					collector.SetCooldownRemaining(remaining)
				}
				tui.Send(program, tui.CooldownMsg{
					Thermal:   kind == scheduler.CooldownThermal,
					Remaining: remaining,
				})
			},
			OnCooldownDone: func(kind scheduler.CooldownKind) {
				if kind == scheduler.CooldownThermal {
					console.ThermalCooldownDone()
					thermalAnnounced = false
				}
				if collector != nil {
					collector.SetCooldownRemaining(0)
				}
			},
		},
	})

	writer := report.NewWriter(cfg.ReportDir, logger)

	execute := func(ctx context.Context) {
		sched.RunAll(ctx, jobs)
		finalize(logger, console, writer, store, rec, rep, sched, program)
	}

	if program == nil {
		execute(ctx)
		return 0
	}

	// Dashboard mode: the battery runs in the background while Bubble Tea
	// owns the terminal. Quitting the dashboard cancels the run; the
	// finalizer still writes the report for whatever completed.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		execute(runCtx)
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	cancel()
	<-done
	return 0
}

// finalize closes out the run: it snapshots whatever results the scheduler
// collected, writes the report file, prints the summary and records history.
// It runs even after cancellation so a partial run still leaves a report.
func finalize(logger *slog.Logger, console *report.Console, writer *report.Writer, store *history.Store, rec *stats.Recorder, rep *bench.RunReport, sched *scheduler.Scheduler, program *tea.Program) {
	results := sched.Results()
	byName := make(map[string]bench.JobResult, len(results))
	for _, res := range results {
		byName[res.Name] = res
	}
	rep.Finish(time.Now(), byName)

	path := ""
	if len(rep.Results) > 0 {
		path = writer.Write(rep)
	}
	console.FinalResults(rep, path)

	for _, name := range rep.Order {
		if s, ok := rec.Summary(name); ok {
			logger.Info("marker_summary",
				"job", name,
				"markers", s.Count,
				"gap_p50", s.P50.String(),
				"gap_p95", s.P95.String(),
				"gap_p99", s.P99.String(),
			)
		}
	}

	if store != nil && len(rep.Results) > 0 {
		if err := store.RecordRun(rep); err != nil {
			logger.Error("history_record_failed", "run_id", rep.RunID, "error", err)
		} else if runs, err := store.RecentRuns(5); err == nil {
			for _, r := range runs {
				logger.Info("history_run",
					"run_id", r.RunID,
					"difficulty", r.Difficulty,
					"started_at", r.StartedAt,
					"passed", r.Passed,
					"total", r.Total,
				)
			}
		}
	}

	passed, total := rep.Passed()
	logger.Info("run_finished", "run_id", rep.RunID, "passed", passed, "total", total)
	tui.Send(program, tui.RunFinishedMsg{Passed: passed, Total: total})
}

// selectJobs resolves the battery: an explicit TOML job table wins over the
// built-in test selection.
func selectJobs(cfg *config.Config) ([]bench.Job, error) {
	if cfg.JobsFile != "" {
		return config.LoadJobsFile(cfg.JobsFile, cfg.SceneDir)
	}
	return bench.JobsFor(cfg.Test, cfg.SceneDir, cfg.FastMode)
}

// sceneFiles returns the distinct scene files of the battery, in order.
func sceneFiles(jobs []bench.Job) []string {
	seen := make(map[string]bool, len(jobs))
	var files []string
	for _, job := range jobs {
		if !seen[job.File] {
			seen[job.File] = true
			files = append(files, job.File)
		}
	}
	return files
}

func printBanner() {
	fmt.Println("╔" + strings.Repeat("═", 62) + "╗")
	fmt.Printf("║%s║\n", center("go-manim-stress "+version, 62))
	fmt.Println("╚" + strings.Repeat("═", 62) + "╝")
	fmt.Println()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
