package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

func testModel() Model {
	return New(Config{
		Selection: "all",
		Quality:   "m",
		Jobs: []bench.Job{
			{Name: "simple", Scene: "SimpleStressTest", Expected: 5 * time.Minute},
			{Name: "hard", Scene: "HardStressTest", Expected: 35 * time.Minute},
		},
	})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestModel_JobLifecycle(t *testing.T) {
	m := testModel()

	if got := m.Running(); got != "" {
		t.Errorf("Running = %q, want idle", got)
	}

	m = update(t, m, JobStartedMsg{Name: "simple", PID: 1234})
	if got := m.Running(); got != "simple" {
		t.Errorf("Running = %q, want simple", got)
	}
	if m.rows[0].state != jobRunning {
		t.Errorf("state = %v, want running", m.rows[0].state)
	}

	m = update(t, m, JobProgressMsg{Name: "simple", Markers: 150})
	if m.rows[0].markers != 150 {
		t.Errorf("markers = %d, want 150", m.rows[0].markers)
	}

	m = update(t, m, JobFinishedMsg{Result: bench.JobResult{
		Name: "simple", Measured: true, Success: true, Duration: 4 * time.Minute,
	}})
	if m.rows[0].state != jobPassed {
		t.Errorf("state = %v, want passed", m.rows[0].state)
	}
	if got := m.Running(); got != "" {
		t.Errorf("Running = %q, want idle after finish", got)
	}
}

func TestModel_FailedJob(t *testing.T) {
	m := testModel()
	m = update(t, m, JobStartedMsg{Name: "hard"})
	m = update(t, m, JobFinishedMsg{Result: bench.JobResult{
		Name: "hard", Measured: true, Success: false, ExitCode: 1, Duration: time.Minute,
	}})

	if m.rows[1].state != jobFailed {
		t.Errorf("state = %v, want failed", m.rows[1].state)
	}
	if m.rows[1].exitCode != 1 {
		t.Errorf("exitCode = %d, want 1", m.rows[1].exitCode)
	}
}

func TestModel_CooldownAndFinish(t *testing.T) {
	m := testModel()

	m = update(t, m, CooldownMsg{Thermal: true, Remaining: 4 * time.Minute})
	if !m.cooldown || !m.cooldownThermal {
		t.Errorf("cooldown state = %v/%v, want thermal cooldown", m.cooldown, m.cooldownThermal)
	}

	// Starting the next job clears the cooldown banner.
	m = update(t, m, JobStartedMsg{Name: "hard"})
	if m.cooldown {
		t.Error("cooldown should clear when a job starts")
	}

	m = update(t, m, RunFinishedMsg{Passed: 1, Total: 2})
	if !m.done || m.passed != 1 || m.total != 2 {
		t.Errorf("final state = %+v", m)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"q":      {Type: tea.KeyRunes, Runes: []rune("q")},
		"ctrl+c": {Type: tea.KeyCtrlC},
		"esc":    {Type: tea.KeyEsc},
	}

	for name, key := range keys {
		next, cmd := testModel().Update(key)
		model := next.(Model)
		if !model.quitting {
			t.Errorf("key %q should set quitting", name)
		}
		if cmd == nil {
			t.Errorf("key %q should return tea.Quit", name)
		}
	}
}

func TestModel_ViewShowsJobs(t *testing.T) {
	m := testModel()
	m = update(t, m, JobStartedMsg{Name: "simple"})

	view := m.View()
	for _, want := range []string{"MANIM STRESS TEST", "simple", "hard", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q\n---\n%s", want, view)
		}
	}
}

func TestModel_ViewAfterQuitIsEmpty(t *testing.T) {
	m := testModel()
	m.quitting = true
	if m.View() != "" {
		t.Error("quitting view should be empty")
	}
}

func TestModel_UnknownJobMessagesIgnored(t *testing.T) {
	m := testModel()
	// Must not panic or corrupt state.
	m = update(t, m, JobStartedMsg{Name: "mystery"})
	m = update(t, m, JobProgressMsg{Name: "mystery", Markers: 5})
	m = update(t, m, JobFinishedMsg{Result: bench.JobResult{Name: "mystery"}})

	for _, row := range m.rows {
		if row.state != jobPending {
			t.Errorf("row %s state = %v, want untouched", row.job.Name, row.state)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{65 * time.Second, "00:01:05"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
