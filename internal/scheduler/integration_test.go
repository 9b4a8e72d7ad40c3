package scheduler

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/renderbench/go-manim-stress/internal/bench"
	"github.com/renderbench/go-manim-stress/internal/report"
	"github.com/renderbench/go-manim-stress/internal/supervisor"
)

// scriptedRunner maps job names to bash scripts so a battery can mix
// outcomes.
type scriptedRunner map[string]string

func (r scriptedRunner) BuildCommand(ctx context.Context, job bench.Job) (*exec.Cmd, error) {
	script, ok := r[job.Name]
	if !ok {
		return nil, errors.New("no script for " + job.Name)
	}
	return exec.CommandContext(ctx, "bash", "-c", script), nil
}

func (r scriptedRunner) Name() string { return "scripted" }

// TestBattery_EndToEnd runs real processes through the supervisor and
// scheduler, then writes and re-reads the report file.
func TestBattery_EndToEnd(t *testing.T) {
	runner := scriptedRunner{
		"simple": `echo "INFO rendering"; exit 0`,
		"hard":   `echo "INFO rendering"; exit 1`,
	}

	sup := supervisor.New(supervisor.Config{
		Runner:       runner,
		Logger:       testLogger(),
		PollInterval: 10 * time.Millisecond,
		LogInterval:  time.Hour,
	})

	var sleeps []time.Duration
	sched := New(Config{
		Runner: sup,
		Logger: testLogger(),
		Policy: CooldownPolicy{Standard: time.Second, ThermalBatterySize: bench.CanonicalBatterySize},
		Sleep:  recordedSleep(&sleeps),
	})

	battery := []bench.Job{
		{Name: "simple", Scene: "SimpleStressTest", Expected: 5 * time.Minute},
		{Name: "hard", Scene: "HardStressTest", Expected: 35 * time.Minute},
	}

	start := time.Now()
	rep := bench.NewRunReport(bench.Names(battery), start)

	results := sched.RunAll(context.Background(), battery)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	byName := make(map[string]bench.JobResult, len(results))
	for _, res := range results {
		byName[res.Name] = res
	}
	rep.Finish(time.Now(), byName)

	if passed, total := rep.Passed(); passed != 1 || total != 2 {
		t.Errorf("Passed = %d/%d, want 1/2", passed, total)
	}

	dir := t.TempDir()
	path := report.NewWriter(dir, testLogger()).Write(rep)
	if path == report.FailedSentinel {
		t.Fatal("report save failed")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("report written to %s, want %s", path, dir)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"MANIM STRESS TEST REPORT",
		"simple          | PASSED |",
		"hard            | FAILED |",
		"Success Rate: 1/2 tests passed",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("report missing %q\n---\n%s", want, body)
		}
	}

	// One standard cooldown between the two jobs.
	if len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Errorf("sleeps = %v, want one 1s cooldown", sleeps)
	}
}
