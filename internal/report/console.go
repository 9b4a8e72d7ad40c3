package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// Console prints the human-readable run transcript: banners around each job,
// progress lines, cooldown countdowns and the final results table. It is the
// half of the output meant for a person watching the run; structured logs
// carry the same events for machines.
type Console struct {
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a console printer writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

func (c *Console) rule(n int) string {
	return strings.Repeat("=", n)
}

// SuiteHeader prints the run preamble.
func (c *Console) SuiteHeader(selection, quality string, logInterval time.Duration, start time.Time) {
	fmt.Fprintln(c.w, "MANIM STRESS TEST SUITE")
	fmt.Fprintf(c.w, "Test Selection: %s\n", selection)
	fmt.Fprintf(c.w, "Quality: %s\n", quality)
	fmt.Fprintf(c.w, "Log Interval: %ds\n", int(logInterval.Seconds()))
	fmt.Fprintf(c.w, "Start Time: %s\n", start.Format(timestampLayout))
}

// JobHeader prints the banner opening one job.
func (c *Console) JobHeader(job bench.Job, quality string) {
	fmt.Fprintf(c.w, "\n%s\n", c.rule(60))
	fmt.Fprintf(c.w, "STARTING: %s (Quality: %s)\n", job.Scene, quality)
	fmt.Fprintf(c.w, "File: %s\n", job.File)
	fmt.Fprintf(c.w, "Start: %s\n", c.now().Format("15:04:05"))
	fmt.Fprintf(c.w, "%s\n", c.rule(60))
}

// Progress prints a marker-driven progress line.
func (c *Console) Progress(elapsed time.Duration, operations int) {
	fmt.Fprintf(c.w, "Progress: %.1f min - %d operations completed\n", elapsed.Minutes(), operations)
}

// Heartbeat prints the periodic liveness line for silent renders.
func (c *Console) Heartbeat(elapsed time.Duration) {
	fmt.Fprintf(c.w, "Progress: %.1f min elapsed - Still rendering...\n", elapsed.Minutes())
}

// JobFooter prints the banner closing one job.
func (c *Console) JobFooter(res bench.JobResult, scene string) {
	fmt.Fprintf(c.w, "\n%s\n", c.rule(60))
	fmt.Fprintf(c.w, "COMPLETED: %s\n", scene)
	fmt.Fprintf(c.w, "End: %s\n", c.now().Format("15:04:05"))
	fmt.Fprintf(c.w, "Duration: %.1f minutes (%.0f seconds)\n", res.Duration.Minutes(), res.Duration.Seconds())
	if res.Success {
		fmt.Fprintln(c.w, "Status: SUCCESS")
		if res.Artifact != "" {
			fmt.Fprintf(c.w, "Output: %s\n", res.Artifact)
		}
	} else {
		fmt.Fprintf(c.w, "Status: FAILED (Exit code: %d)\n", res.ExitCode)
	}
	fmt.Fprintf(c.w, "%s\n", c.rule(60))
}

// StandardCooldown announces the short pause between jobs.
func (c *Console) StandardCooldown(d time.Duration) {
	fmt.Fprintf(c.w, "\nCool down period: %d seconds...\n", int(d.Seconds()))
}

// ThermalCooldownStart announces the extended cooling window.
func (c *Console) ThermalCooldownStart(d time.Duration) {
	fmt.Fprintf(c.w, "\n%s\n", c.rule(70))
	fmt.Fprintln(c.w, "THERMAL MANAGEMENT - Extended Cool Down")
	fmt.Fprintf(c.w, "%s\n", c.rule(70))
	fmt.Fprintf(c.w, "Allowing system to cool for %d minutes before next test...\n", int(d.Minutes()))
	fmt.Fprintln(c.w, "This helps prevent overheating during intensive stress testing.")
}

// ThermalCountdown prints one step of the cooling countdown.
func (c *Console) ThermalCountdown(remaining time.Duration) {
	mins := int(remaining.Minutes())
	secs := int(remaining.Seconds()) % 60
	if mins > 0 {
		fmt.Fprintf(c.w, "Cooling time remaining: %dm %02ds\n", mins, secs)
	} else {
		fmt.Fprintf(c.w, "Cooling time remaining: %ds\n", secs)
	}
}

// ThermalCooldownDone closes the cooling window.
func (c *Console) ThermalCooldownDone() {
	fmt.Fprintln(c.w, "System cooling complete. Ready for next test.")
}

// FinalResults prints the end-of-run summary table and the report location.
func (c *Console) FinalResults(rep *bench.RunReport, reportPath string) {
	fmt.Fprintf(c.w, "\n%s\n", c.rule(70))
	fmt.Fprintln(c.w, "FINAL STRESS TEST RESULTS")
	fmt.Fprintf(c.w, "%s\n", c.rule(70))

	if len(rep.Results) == 0 {
		fmt.Fprintln(c.w, "No tests were run or completed. No report generated.")
		return
	}

	for _, name := range rep.Order {
		if res, ok := rep.Results[name]; ok {
			fmt.Fprintln(c.w, ResultRow(res))
		}
	}

	passed, total := rep.Passed()
	fmt.Fprintf(c.w, "\nTotal Runtime: %.1f minutes\n", rep.TotalRuntime().Minutes())
	fmt.Fprintf(c.w, "Success Rate: %d/%d tests\n", passed, total)
	fmt.Fprintf(c.w, "End Time: %s\n", rep.End.Format(timestampLayout))
	fmt.Fprintf(c.w, "\nDetailed report saved to: %s\n", reportPath)
}
