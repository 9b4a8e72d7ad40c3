package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// render draws the whole dashboard.
func (m Model) render() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderJobs())
	b.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("MANIM STRESS TEST")
	info := mutedStyle.Render(fmt.Sprintf("selection=%s quality=%s elapsed=%s",
		m.selection, m.quality, formatDuration(m.Elapsed())))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", info)
}

// renderJobs draws one row per job with its state glyph and timing.
func (m Model) renderJobs() string {
	var rows []string
	for i, row := range m.rows {
		rows = append(rows, m.renderJobRow(i, row))
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderJobRow(i int, row jobRow) string {
	var glyph, timing string

	switch row.state {
	case jobRunning:
		glyph = statusWarning.Render("▶")
		elapsed := time.Since(m.jobStart)
		timing = fmt.Sprintf("%s / ~%s", formatMinutes(elapsed), formatMinutes(row.job.Expected))
		if row.markers > 0 {
			timing += mutedStyle.Render(fmt.Sprintf("  %d ops", row.markers))
		}
	case jobPassed:
		glyph = statusOK.Render("✓")
		timing = fmt.Sprintf("%s / ~%s", formatMinutes(row.duration), formatMinutes(row.job.Expected))
	case jobFailed:
		glyph = statusError.Render("✗")
		if row.measured {
			timing = fmt.Sprintf("%s (exit %d)", formatMinutes(row.duration), row.exitCode)
		} else {
			timing = "did not run"
		}
	default:
		glyph = mutedStyle.Render("·")
		timing = mutedStyle.Render(fmt.Sprintf("~%s", formatMinutes(row.job.Expected)))
	}

	name := baseStyle.Render(fmt.Sprintf("%-15s", row.job.Name))
	return fmt.Sprintf(" %s %s %s", glyph, name, timing)
}

// renderStatus draws the cooldown countdown or the final tallies.
func (m Model) renderStatus() string {
	if m.done {
		style := statusOK
		if m.passed < m.total {
			style = statusWarning
		}
		if m.passed == 0 && m.total > 0 {
			style = statusError
		}
		return style.Render(fmt.Sprintf(" Run complete: %d/%d passed", m.passed, m.total))
	}

	if m.cooldown {
		label := "cooling down"
		if m.cooldownThermal {
			label = "thermal cooldown"
		}
		return subtitleStyle.Render(fmt.Sprintf(" %s: %s remaining", label, formatDuration(m.cooldownRemaining)))
	}

	return ""
}

func (m Model) renderFooter() string {
	return mutedStyle.Render(" q: quit")
}
