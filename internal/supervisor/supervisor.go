// Package supervisor owns the lifecycle of a single render process: spawn,
// output draining, progress reporting and result finalization.
package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/renderbench/go-manim-stress/internal/bench"
	"github.com/renderbench/go-manim-stress/internal/drain"
	"github.com/renderbench/go-manim-stress/internal/process"
	"github.com/renderbench/go-manim-stress/internal/stats"
)

// Callbacks contains optional callback functions for supervisor events.
// They are invoked from the poll loop goroutine.
type Callbacks struct {
	// OnStart is called when the render process starts.
	OnStart func(job bench.Job, pid int)

	// OnProgress is called every Nth progress marker.
	OnProgress func(job string, elapsed time.Duration, markers int)

	// OnHeartbeat is called when the reporting interval elapses without a
	// marker-driven message, guaranteeing liveness output.
	OnHeartbeat func(job string, elapsed time.Duration)

	// OnExit is called when the render process exits, before artifact
	// checks.
	OnExit func(job string, exitCode int, duration time.Duration)
}

// MetricsSink receives pipeline observations. Satisfied by the Prometheus
// collector; nil disables it.
type MetricsSink interface {
	MarkersObserved(job string, n int)
	AddOutputLines(read, dropped int64)
}

// Supervisor runs benchmark jobs one at a time. It is safe to reuse across
// sequential jobs; it never runs two processes concurrently.
type Supervisor struct {
	runner    process.Runner
	logger    *slog.Logger
	callbacks Callbacks
	markers   *stats.Recorder
	metrics   MetricsSink

	logInterval  time.Duration
	pollInterval time.Duration
	markerEvery  int
	bufferSize   int
	drainTimeout time.Duration
	killGrace    time.Duration
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Runner    process.Runner
	Logger    *slog.Logger
	Callbacks Callbacks

	// Markers optionally records marker inter-arrival stats.
	Markers *stats.Recorder

	// Metrics optionally receives marker and output-line counts.
	Metrics MetricsSink

	// LogInterval is the minimum progress-reporting cadence. Default 15s.
	LogInterval time.Duration

	// PollInterval bounds the sleep quantum of the poll loop, and with it
	// the reporting latency. Default 500ms.
	PollInterval time.Duration

	// MarkerEvery emits a progress message every Nth marker. Default 50.
	MarkerEvery int

	// BufferSize is the output buffer capacity in lines.
	BufferSize int

	// DrainTimeout bounds the join of the output reader after process
	// exit. Default 1s.
	DrainTimeout time.Duration
}

const (
	defaultLogInterval  = 15 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	defaultMarkerEvery  = 50
	defaultDrainTimeout = time.Second
	defaultKillGrace    = 5 * time.Second
)

// New creates a new Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	logInterval := cfg.LogInterval
	if logInterval <= 0 {
		logInterval = defaultLogInterval
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	markerEvery := cfg.MarkerEvery
	if markerEvery <= 0 {
		markerEvery = defaultMarkerEvery
	}
	drainTimeout := cfg.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}

	return &Supervisor{
		runner:       cfg.Runner,
		logger:       cfg.Logger,
		callbacks:    cfg.Callbacks,
		markers:      cfg.Markers,
		metrics:      cfg.Metrics,
		logInterval:  logInterval,
		pollInterval: pollInterval,
		markerEvery:  markerEvery,
		bufferSize:   cfg.BufferSize,
		drainTimeout: drainTimeout,
		killGrace:    defaultKillGrace,
	}
}

// Run executes one job to completion and returns its result. It never
// returns an error: spawn and wait failures degrade to a failed result with
// no measured duration. Context cancellation terminates the process group
// and finalizes the result with the measured duration so far.
func (s *Supervisor) Run(ctx context.Context, job bench.Job) bench.JobResult {
	res := bench.JobResult{
		Name:     job.Name,
		Expected: job.Expected,
		ExitCode: -1,
	}

	cmd, err := s.runner.BuildCommand(ctx, job)
	if err != nil {
		s.logger.Error("build_command_failed", "job", job.Name, "error", err)
		return res
	}

	// Combined stdout+stderr as one line-oriented stream.
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logger.Error("stdout_pipe_failed", "job", job.Name, "error", err)
		return res
	}
	cmd.Stderr = cmd.Stdout

	// Own process group so cancellation can reach grandchildren.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	buffer := drain.NewBuffer(s.bufferSize)
	reader := drain.NewReader(stdout, buffer)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		s.logger.Error("spawn_failed", "job", job.Name, "error", err)
		return res
	}

	pid := cmd.Process.Pid
	s.logger.Info("job_started", "job", job.Name, "pid", pid, "expected", job.Expected.String())
	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(job, pid)
	}

	// Exactly one drainer per process.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		reader.Run()
	}()

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	markers, waitErr := s.poll(ctx, job, start, buffer, waitCh, pid)

	res.Duration = time.Since(start)
	res.Measured = true

	// Retire the drainer before finalizing; never block indefinitely on a
	// stuck reader.
	select {
	case <-readerDone:
	case <-time.After(s.drainTimeout):
		s.logger.Warn("drainer_join_timeout", "job", job.Name, "timeout", s.drainTimeout.String())
	}

	// Output that arrived between the last tick and exit still counts.
	s.scan(job, start, buffer, &markers)

	read, dropped := buffer.Stats()
	if s.metrics != nil {
		s.metrics.AddOutputLines(read, dropped)
	}
	res.ExitCode = extractExitCode(waitErr)
	res.Success = res.ExitCode == 0

	s.logger.Info("job_exited",
		"job", job.Name,
		"pid", pid,
		"exit_code", res.ExitCode,
		"duration", res.Duration.String(),
		"markers", markers,
		"lines_read", read,
		"lines_dropped", dropped,
	)

	if s.callbacks.OnExit != nil {
		s.callbacks.OnExit(job.Name, res.ExitCode, res.Duration)
	}

	if res.Success {
		res.Artifact = s.checkArtifact(job)
	}

	return res
}

// poll drives the monitoring loop until the process exits, scanning drained
// output for progress markers and enforcing the reporting cadence.
func (s *Supervisor) poll(ctx context.Context, job bench.Job, start time.Time, buffer *drain.Buffer, waitCh <-chan error, pid int) (int, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	markers := 0
	lastHeartbeat := start

	for {
		select {
		case err := <-waitCh:
			return markers, err

		case <-ctx.Done():
			s.logger.Warn("job_cancelled", "job", job.Name, "reason", ctx.Err())
			s.terminate(pid)
			return markers, <-waitCh

		case <-ticker.C:
		}

		s.scan(job, start, buffer, &markers)

		// Liveness guarantee: report elapsed time even when the render is
		// silent for long stretches.
		if time.Since(lastHeartbeat) >= s.logInterval {
			elapsed := time.Since(start)
			s.logger.Info("still_rendering",
				"job", job.Name,
				"elapsed_min", elapsed.Minutes(),
			)
			if s.callbacks.OnHeartbeat != nil {
				s.callbacks.OnHeartbeat(job.Name, elapsed)
			}
			lastHeartbeat = time.Now()
		}
	}
}

// scan consumes everything currently buffered, counting progress markers and
// emitting progress messages every Nth one.
func (s *Supervisor) scan(job bench.Job, start time.Time, buffer *drain.Buffer, markers *int) {
	for {
		line, ok := buffer.TryNext()
		if !ok {
			return
		}
		if !isProgressMarker(line) {
			continue
		}
		*markers++
		if s.markers != nil {
			s.markers.Observe(job.Name, time.Now())
		}
		if s.metrics != nil {
			s.metrics.MarkersObserved(job.Name, 1)
		}
		if *markers%s.markerEvery == 0 {
			elapsed := time.Since(start)
			s.logger.Info("render_progress",
				"job", job.Name,
				"elapsed_min", elapsed.Minutes(),
				"operations", *markers,
			)
			if s.callbacks.OnProgress != nil {
				s.callbacks.OnProgress(job.Name, elapsed, *markers)
			}
		}
	}
}

// terminate sends SIGTERM to the process group, escalating to SIGKILL after
// the grace period.
func (s *Supervisor) terminate(pid int) {
	pgid, err := syscall.Getpgid(pid)
	if err == nil {
		syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		syscall.Kill(pid, syscall.SIGTERM)
	}

	time.AfterFunc(s.killGrace, func() {
		if pgid, err := syscall.Getpgid(pid); err == nil {
			syscall.Kill(-pgid, syscall.SIGKILL)
		} else {
			syscall.Kill(pid, syscall.SIGKILL)
		}
	})
}

// checkArtifact logs whether the expected output artifact exists. Purely
// diagnostic: absence never flips a successful result.
func (s *Supervisor) checkArtifact(job bench.Job) string {
	locator, ok := s.runner.(process.ArtifactLocator)
	if !ok {
		return ""
	}

	path := locator.ExpectedArtifact(job)
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("artifact_missing", "job", job.Name, "path", path)
		return ""
	}

	s.logger.Info("artifact_found",
		"job", job.Name,
		"path", path,
		"size_mb", float64(info.Size())/(1024*1024),
	)
	return path
}

// isProgressMarker reports whether an output line counts as render
// activity: manim INFO lines and frame progress lines.
func isProgressMarker(line string) bool {
	return strings.Contains(line, "INFO") || strings.Contains(strings.ToLower(line), "frame")
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
