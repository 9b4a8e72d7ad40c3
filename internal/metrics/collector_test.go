package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

func testCollector() *Collector {
	return NewCollector(CollectorConfig{
		Version:   "test",
		Selection: "all",
		Quality:   "m",
	})
}

// scrape serves the collector's registry over HTTP and decodes the exposition
// text back into metric families.
func scrape(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()

	srv := NewServer("127.0.0.1:0", c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("scraping metrics: %v", err)
	}
	defer resp.Body.Close()

	decoder := expfmt.NewDecoder(resp.Body, expfmt.FmtText)
	families := make(map[string]*dto.MetricFamily)
	for {
		var mf dto.MetricFamily
		if err := decoder.Decode(&mf); err != nil {
			break
		}
		families[mf.GetName()] = &mf
	}
	return families
}

func metricValue(t *testing.T, families map[string]*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()

	mf, ok := families[name]
	if !ok {
		t.Fatalf("metric %q not exposed", name)
	}

outer:
	for _, m := range mf.GetMetric() {
		for k, v := range labels {
			found := false
			for _, lp := range m.GetLabel() {
				if lp.GetName() == k && lp.GetValue() == v {
					found = true
					break
				}
			}
			if !found {
				continue outer
			}
		}
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			return m.GetCounter().GetValue()
		default:
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %q has no series matching %v", name, labels)
	return 0
}

func TestCollector_InfoAndBatterySize(t *testing.T) {
	c := testCollector()
	jobs := []bench.Job{
		{Name: "simple", Expected: 5 * time.Minute},
		{Name: "hard", Expected: 35 * time.Minute},
	}
	c.RunStarted(jobs)

	families := scrape(t, c)

	info := metricValue(t, families, "manim_stress_info", map[string]string{
		"version":        "test",
		"test_selection": "all",
		"quality":        "m",
	})
	if info != 1 {
		t.Errorf("info = %v, want 1", info)
	}

	if got := metricValue(t, families, "manim_stress_jobs_total", nil); got != 2 {
		t.Errorf("jobs_total = %v, want 2", got)
	}
	if got := metricValue(t, families, "manim_stress_job_expected_seconds", map[string]string{"job": "hard"}); got != 2100 {
		t.Errorf("expected_seconds{job=hard} = %v, want 2100", got)
	}
}

func TestCollector_JobLifecycle(t *testing.T) {
	c := testCollector()

	c.JobStarted(bench.Job{Name: "simple"})
	c.JobFinished(bench.JobResult{
		Name:     "simple",
		Measured: true,
		Success:  true,
		Duration: 252 * time.Second,
	})
	c.JobStarted(bench.Job{Name: "hard"})
	c.JobFinished(bench.JobResult{Name: "hard", Measured: true, ExitCode: 1})

	families := scrape(t, c)

	if got := metricValue(t, families, "manim_stress_jobs_started_total", nil); got != 2 {
		t.Errorf("jobs_started_total = %v, want 2", got)
	}
	if got := metricValue(t, families, "manim_stress_jobs_completed_total", map[string]string{"status": "success"}); got != 1 {
		t.Errorf("completed{success} = %v, want 1", got)
	}
	if got := metricValue(t, families, "manim_stress_jobs_completed_total", map[string]string{"status": "failure"}); got != 1 {
		t.Errorf("completed{failure} = %v, want 1", got)
	}
	if got := metricValue(t, families, "manim_stress_job_duration_seconds", map[string]string{"job": "simple"}); got != 252 {
		t.Errorf("duration{simple} = %v, want 252", got)
	}
	if got := metricValue(t, families, "manim_stress_job_exits_total", map[string]string{"exit_code": "1"}); got != 1 {
		t.Errorf("exits{1} = %v, want 1", got)
	}
}

func TestCollector_PipelineCounters(t *testing.T) {
	c := testCollector()

	c.MarkersObserved("simple", 50)
	c.MarkersObserved("simple", 7)
	c.AddOutputLines(100, 3)
	c.AddOutputLines(-5, -1) // negative deltas ignored

	families := scrape(t, c)

	if got := metricValue(t, families, "manim_stress_progress_markers_total", map[string]string{"job": "simple"}); got != 57 {
		t.Errorf("markers{simple} = %v, want 57", got)
	}
	if got := metricValue(t, families, "manim_stress_output_lines_read_total", nil); got != 100 {
		t.Errorf("lines_read = %v, want 100", got)
	}
	if got := metricValue(t, families, "manim_stress_output_lines_dropped_total", nil); got != 3 {
		t.Errorf("lines_dropped = %v, want 3", got)
	}
}

func TestCollector_CooldownGauge(t *testing.T) {
	c := testCollector()
	c.SetCooldownRemaining(270 * time.Second)

	families := scrape(t, c)
	if got := metricValue(t, families, "manim_stress_cooldown_remaining_seconds", nil); got != 270 {
		t.Errorf("cooldown_remaining = %v, want 270", got)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := NewServer("127.0.0.1:0", testCollector(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
