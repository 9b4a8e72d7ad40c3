// Package report renders run outcomes to the console and to the report file.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// FailedSentinel is returned instead of a path when the report file could
// not be written. Callers print it verbatim so a failed save is visible in
// the console transcript.
const FailedSentinel = "FAILED_TO_SAVE_REPORT"

const timestampLayout = "2006-01-02 15:04:05"

// Writer persists run reports as timestamped text files.
type Writer struct {
	dir    string
	logger *slog.Logger

	// now is injectable for deterministic filenames in tests.
	now func() time.Time
}

// NewWriter creates a writer that saves reports into dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// Write saves the report and returns the file path. Failures are logged and
// reported through the sentinel value, never through an error: the run's
// results have already been printed by the time this runs, and a reporting
// hiccup should not look like a benchmark failure.
func (w *Writer) Write(rep *bench.RunReport) string {
	difficulty := bench.DifficultyLabel(rep.Order)
	name := fmt.Sprintf("stress_test_report_%s_%s.txt", difficulty, w.now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(w.render(rep)), 0o644); err != nil {
		w.logger.Error("report_write_failed", "path", path, "error", err)
		return FailedSentinel
	}

	w.logger.Info("report_written", "path", path)
	return path
}

func (w *Writer) render(rep *bench.RunReport) string {
	var b strings.Builder

	b.WriteString("MANIM STRESS TEST REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", w.now().Format(timestampLayout))
	fmt.Fprintf(&b, "Test Period: %s to %s\n", rep.Start.Format(timestampLayout), rep.End.Format(timestampLayout))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("RESULTS SUMMARY:\n")
	for _, name := range rep.Order {
		res, ok := rep.Results[name]
		if !ok {
			continue // job never ran
		}
		b.WriteString(ResultRow(res) + "\n")
	}

	passed, total := rep.Passed()
	fmt.Fprintf(&b, "\nTotal Runtime: %.1f minutes\n", rep.TotalRuntime().Minutes())
	fmt.Fprintf(&b, "Success Rate: %d/%d tests passed\n", passed, total)

	b.WriteString("\nSYSTEM ASSESSMENT:\n")
	b.WriteString(rep.Assessment().String() + "\n")

	b.WriteString("\nTEST ENVIRONMENT:\n")
	fmt.Fprintf(&b, "Go: %s\n", runtime.Version())
	fmt.Fprintf(&b, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if cwd, err := os.Getwd(); err == nil {
		fmt.Fprintf(&b, "Working Directory: %s\n", cwd)
	}
	fmt.Fprintf(&b, "Run ID: %s\n", rep.RunID)

	return b.String()
}

// ResultRow formats one job's result line, shared by the report file and the
// console summary.
func ResultRow(res bench.JobResult) string {
	if !res.Measured {
		return fmt.Sprintf("%-15s | FAILED | Timeout/Error", res.Name)
	}
	status := "FAILED"
	if res.Success {
		status = "PASSED"
	}
	return fmt.Sprintf("%-15s | %-6s | %6.1fm | Expected: %4.1fm",
		res.Name, status, res.Duration.Minutes(), res.Expected.Minutes())
}
