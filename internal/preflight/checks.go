// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Options names the external pieces the harness depends on.
type Options struct {
	PythonPath string
	FFmpegDir  string
	SceneFiles []string
	ReportDir  string
}

// RunAll executes all preflight checks.
func RunAll(opts Options) *Result {
	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}

	for _, check := range []Check{
		checkManim(opts.PythonPath),
		checkFFmpeg(opts.FFmpegDir),
		checkSceneFiles(opts.SceneFiles),
		checkReportDir(opts.ReportDir),
	} {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	return result
}

// checkManim verifies the Python interpreter can run the manim module.
func checkManim(pythonPath string) Check {
	cmd := exec.Command(pythonPath, "-m", "manim", "--version")
	output, err := cmd.Output()
	if err != nil {
		return Check{
			Name:    "manim",
			Passed:  false,
			Message: fmt.Sprintf("%s -m manim not runnable: %v", pythonPath, err),
		}
	}

	version := strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
	if version == "" {
		version = "unknown version"
	}
	return Check{
		Name:    "manim",
		Passed:  true,
		Message: fmt.Sprintf("%s (%s)", pythonPath, version),
	}
}

// checkFFmpeg verifies an ffmpeg binary exists where PATH will point.
// manim needs it for encoding; a missing binary fails every render late,
// after minutes of CPU time.
func checkFFmpeg(dir string) Check {
	binary := filepath.Join(dir, "ffmpeg")
	if _, err := os.Stat(binary); err == nil {
		return Check{
			Name:    "ffmpeg",
			Passed:  true,
			Message: fmt.Sprintf("found at %s", binary),
		}
	}
	if _, err := os.Stat(binary + ".exe"); err == nil {
		return Check{
			Name:    "ffmpeg",
			Passed:  true,
			Message: fmt.Sprintf("found at %s.exe", binary),
		}
	}

	// A system-wide ffmpeg keeps things working even without the bundled
	// directory.
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return Check{
			Name:    "ffmpeg",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("not in %s, falling back to %s", dir, path),
		}
	}

	return Check{
		Name:    "ffmpeg",
		Passed:  false,
		Message: fmt.Sprintf("no ffmpeg in %s or PATH", dir),
	}
}

// checkSceneFiles verifies every selected scene file exists.
func checkSceneFiles(files []string) Check {
	var missing []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return Check{
			Name:    "scene_files",
			Passed:  false,
			Message: fmt.Sprintf("missing: %s", strings.Join(missing, ", ")),
		}
	}
	return Check{
		Name:    "scene_files",
		Passed:  true,
		Message: fmt.Sprintf("%d file(s) present", len(files)),
	}
}

// checkReportDir verifies the report directory is writable, so the run does
// not end with a failed save after hours of rendering.
func checkReportDir(dir string) Check {
	if dir == "" {
		dir = "."
	}

	probe, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return Check{
			Name:    "report_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s not writable: %v", dir, err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return Check{
		Name:    "report_dir",
		Passed:  true,
		Message: fmt.Sprintf("%s writable", dir),
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "manim":
		return "pip install manim (and verify -python points at the right interpreter)"
	case "ffmpeg":
		return "install ffmpeg or point -ffmpeg-dir at its bin directory"
	case "scene_files":
		return "check -scene-dir, or fetch the scene files for this battery"
	case "report_dir":
		return "choose a writable -report-dir"
	default:
		return "see documentation"
	}
}
