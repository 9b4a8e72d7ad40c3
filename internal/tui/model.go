package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh elapsed times.
type TickMsg time.Time

// JobStartedMsg announces that a render process has started.
type JobStartedMsg struct {
	Name string
	PID  int
}

// JobProgressMsg carries a marker-driven progress update.
type JobProgressMsg struct {
	Name    string
	Elapsed time.Duration
	Markers int
}

// JobFinishedMsg carries a finished job's result.
type JobFinishedMsg struct {
	Result bench.JobResult
}

// CooldownMsg announces a cooldown step with time remaining.
type CooldownMsg struct {
	Thermal   bool
	Remaining time.Duration
}

// RunFinishedMsg carries the final tallies.
type RunFinishedMsg struct {
	Passed int
	Total  int
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// jobState tracks one job's lifecycle for display.
type jobState int

const (
	jobPending jobState = iota
	jobRunning
	jobPassed
	jobFailed
)

// jobRow is the display state of one job.
type jobRow struct {
	job      bench.Job
	state    jobState
	duration time.Duration
	measured bool
	exitCode int
	markers  int
}

// Model represents the TUI state.
type Model struct {
	selection string
	quality   string

	rows    []jobRow
	current int // index of the running job, -1 when none

	startTime time.Time
	jobStart  time.Time

	cooldown          bool
	cooldownThermal   bool
	cooldownRemaining time.Duration

	done   bool
	passed int
	total  int

	width    int
	height   int
	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	Selection string
	Quality   string
	Jobs      []bench.Job
}

// New creates a new TUI model.
func New(cfg Config) Model {
	rows := make([]jobRow, len(cfg.Jobs))
	for i, job := range cfg.Jobs {
		rows[i] = jobRow{job: job}
	}
	return Model{
		selection: cfg.Selection,
		quality:   cfg.Quality,
		rows:      rows,
		current:   -1,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case JobStartedMsg:
		m.cooldown = false
		m.current = m.indexOf(msg.Name)
		if m.current >= 0 {
			m.rows[m.current].state = jobRunning
		}
		m.jobStart = time.Now()
		return m, nil

	case JobProgressMsg:
		if i := m.indexOf(msg.Name); i >= 0 {
			m.rows[i].markers = msg.Markers
		}
		return m, nil

	case JobFinishedMsg:
		if i := m.indexOf(msg.Result.Name); i >= 0 {
			row := &m.rows[i]
			row.duration = msg.Result.Duration
			row.measured = msg.Result.Measured
			row.exitCode = msg.Result.ExitCode
			if msg.Result.Success {
				row.state = jobPassed
			} else {
				row.state = jobFailed
			}
		}
		m.current = -1
		return m, nil

	case CooldownMsg:
		m.cooldown = true
		m.cooldownThermal = msg.Thermal
		m.cooldownRemaining = msg.Remaining
		return m, nil

	case RunFinishedMsg:
		m.done = true
		m.cooldown = false
		m.passed = msg.Passed
		m.total = msg.Total
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the run started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Running returns the name of the in-flight job, empty when idle.
func (m Model) Running() string {
	if m.current < 0 || m.current >= len(m.rows) {
		return ""
	}
	return m.rows[m.current].job.Name
}

func (m Model) indexOf(name string) int {
	for i := range m.rows {
		if m.rows[i].job.Name == name {
			return i
		}
	}
	return -1
}

// =============================================================================
// Helper for external use
// =============================================================================

// Send delivers a message to a running program, ignoring a nil program so
// callers can wire callbacks unconditionally.
func Send(p *tea.Program, msg tea.Msg) {
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, mins, s)
}

// formatMinutes formats a duration the way the report rows do.
func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%.1fm", d.Minutes())
}
