// Package metrics provides Prometheus metrics for the stress harness.
//
// The run is sequential, so cardinality is tiny: a handful of gauges for the
// in-flight job plus per-job duration gauges labeled by job name (at most
// the four canonical jobs).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// Collector manages all Prometheus metrics for a run. Each collector owns
// its metrics and the registry they live in, so tests can build as many as
// they like.
type Collector struct {
	registry *prometheus.Registry

	// --- Run overview ---
	info              *prometheus.GaugeVec
	jobsTotal         prometheus.Gauge
	runElapsedSeconds prometheus.Gauge

	// --- Job lifecycle ---
	jobsStartedTotal   prometheus.Counter
	jobsCompletedTotal *prometheus.CounterVec
	jobElapsedSeconds  prometheus.Gauge
	jobDurationSeconds *prometheus.GaugeVec
	jobExpectedSeconds *prometheus.GaugeVec
	jobExitsTotal      *prometheus.CounterVec

	// --- Render output pipeline ---
	markersTotal       *prometheus.CounterVec
	outputLinesRead    prometheus.Counter
	outputLinesDropped prometheus.Counter

	// --- Cooldowns ---
	cooldownRemainingSeconds prometheus.Gauge

	startTime time.Time
}

// CollectorConfig holds the run identity stamped onto the info metric.
type CollectorConfig struct {
	Version   string
	Selection string
	Quality   string
}

// NewCollector creates a collector with a fresh private registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector registering into the given
// registry.
func NewCollectorWithRegistry(cfg CollectorConfig, registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry:  registry,
		startTime: time.Now(),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manim_stress_info",
				Help: "Information about the stress run (value always 1)",
			},
			[]string{"version", "test_selection", "quality"},
		),
		jobsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manim_stress_jobs_total",
				Help: "Number of jobs in this battery",
			},
		),
		runElapsedSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manim_stress_run_elapsed_seconds",
				Help: "Seconds since the run started",
			},
		),

		jobsStartedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manim_stress_jobs_started_total",
				Help: "Total render processes started",
			},
		),
		jobsCompletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manim_stress_jobs_completed_total",
				Help: "Completed jobs by outcome",
			},
			[]string{"status"}, // "success" | "failure"
		),
		jobElapsedSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manim_stress_job_elapsed_seconds",
				Help: "Elapsed seconds of the in-flight job (0 when idle)",
			},
		),
		jobDurationSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manim_stress_job_duration_seconds",
				Help: "Measured duration of each finished job",
			},
			[]string{"job"},
		),
		jobExpectedSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manim_stress_job_expected_seconds",
				Help: "Expected duration of each job",
			},
			[]string{"job"},
		),
		jobExitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manim_stress_job_exits_total",
				Help: "Job exits by exit code",
			},
			[]string{"exit_code"},
		),

		markersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manim_stress_progress_markers_total",
				Help: "Progress markers observed in render output",
			},
			[]string{"job"},
		),
		outputLinesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manim_stress_output_lines_read_total",
				Help: "Render output lines read",
			},
		),
		outputLinesDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manim_stress_output_lines_dropped_total",
				Help: "Render output lines dropped (buffer backpressure)",
			},
		),

		cooldownRemainingSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manim_stress_cooldown_remaining_seconds",
				Help: "Seconds remaining in the current cooldown (0 outside cooldowns)",
			},
		),
	}

	registry.MustRegister(
		c.info,
		c.jobsTotal,
		c.runElapsedSeconds,
		c.jobsStartedTotal,
		c.jobsCompletedTotal,
		c.jobElapsedSeconds,
		c.jobDurationSeconds,
		c.jobExpectedSeconds,
		c.jobExitsTotal,
		c.markersTotal,
		c.outputLinesRead,
		c.outputLinesDropped,
		c.cooldownRemainingSeconds,
	)

	c.info.WithLabelValues(cfg.Version, cfg.Selection, cfg.Quality).Set(1)

	return c
}

// Registry returns the registry holding this collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RunStarted records the battery size at the start of a run.
func (c *Collector) RunStarted(jobs []bench.Job) {
	c.jobsTotal.Set(float64(len(jobs)))
	for _, job := range jobs {
		c.jobExpectedSeconds.WithLabelValues(job.Name).Set(job.Expected.Seconds())
	}
}

// JobStarted records a render process start.
func (c *Collector) JobStarted(job bench.Job) {
	c.jobsStartedTotal.Inc()
	c.jobElapsedSeconds.Set(0)
}

// JobFinished records a finished job's outcome and duration.
func (c *Collector) JobFinished(res bench.JobResult) {
	status := "failure"
	if res.Success {
		status = "success"
	}
	c.jobsCompletedTotal.WithLabelValues(status).Inc()
	c.jobExitsTotal.WithLabelValues(strconv.Itoa(res.ExitCode)).Inc()
	if res.Measured {
		c.jobDurationSeconds.WithLabelValues(res.Name).Set(res.Duration.Seconds())
	}
	c.jobElapsedSeconds.Set(0)
}

// MarkersObserved adds progress markers for a job.
func (c *Collector) MarkersObserved(job string, n int) {
	c.markersTotal.WithLabelValues(job).Add(float64(n))
}

// SetJobElapsed updates the in-flight job's elapsed time.
func (c *Collector) SetJobElapsed(d time.Duration) {
	c.jobElapsedSeconds.Set(d.Seconds())
	c.runElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}

// SetCooldownRemaining updates the cooldown countdown gauge.
func (c *Collector) SetCooldownRemaining(d time.Duration) {
	c.cooldownRemainingSeconds.Set(d.Seconds())
}

// AddOutputLines records output pipeline deltas.
func (c *Collector) AddOutputLines(read, dropped int64) {
	if read > 0 {
		c.outputLinesRead.Add(float64(read))
	}
	if dropped > 0 {
		c.outputLinesDropped.Add(float64(dropped))
	}
}
