package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-manim-stress - manim render benchmarking with supervised process execution

Usage:
  go-manim-stress [flags]

Test Selection:
`)
		printFlagCategory([]string{"test", "jobs", "scene-dir", "fast"})

		fmt.Fprintf(os.Stderr, "\nRender:\n")
		printFlagCategory([]string{"quality", "python", "ffmpeg-dir", "media-dir"})

		fmt.Fprintf(os.Stderr, "\nMonitoring & Cooldowns:\n")
		printFlagCategory([]string{"log-interval", "cooldown", "thermal-cooldown", "thermal-step"})

		fmt.Fprintf(os.Stderr, "\nReporting:\n")
		printFlagCategory([]string{"report-dir", "history-db"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory([]string{"print-cmd", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Quick baseline render (~5 minutes)
  go-manim-stress -test simple

  # Full battery with thermal cooldowns between the heavy renders
  go-manim-stress -test all -quality h

  # Reduced-scale smoke run with a live dashboard
  go-manim-stress -test all -fast -tui

`)
	}

	// Test selection
	flag.StringVar(&cfg.Test, "test", cfg.Test,
		`Test to run: "simple" (~5min), "intermediate" (~20min), "hard" (~35min), "very-hard" (~90min), or "all"`)
	flag.StringVar(&cfg.JobsFile, "jobs", cfg.JobsFile, "TOML file defining a custom job table (overrides -test)")
	flag.StringVar(&cfg.SceneDir, "scene-dir", cfg.SceneDir, "Directory containing the scene files")
	flag.BoolVar(&cfg.FastMode, "fast", cfg.FastMode, "Run the reduced-scale scene variants (~10x faster)")

	// Render
	flag.StringVar(&cfg.Quality, "quality", cfg.Quality, `Video quality: "l", "m", "h", "p", "k"`)
	flag.StringVar(&cfg.PythonPath, "python", cfg.PythonPath, "Python interpreter used to invoke manim")
	flag.StringVar(&cfg.FFmpegDir, "ffmpeg-dir", cfg.FFmpegDir, "Directory containing the ffmpeg binary (prepended to PATH)")
	flag.StringVar(&cfg.MediaDir, "media-dir", cfg.MediaDir, "Root of manim's media output tree")

	// Monitoring & cooldowns
	flag.DurationVar(&cfg.LogInterval, "log-interval", cfg.LogInterval, "Progress logging interval")
	flag.DurationVar(&cfg.CooldownStandard, "cooldown", cfg.CooldownStandard, "Pause between lighter jobs")
	flag.DurationVar(&cfg.CooldownThermal, "thermal-cooldown", cfg.CooldownThermal, "Cooling window before heavy jobs in a full battery")
	flag.DurationVar(&cfg.CooldownStep, "thermal-step", cfg.CooldownStep, "Countdown granularity of the thermal window")

	// Reporting
	flag.StringVar(&cfg.ReportDir, "report-dir", cfg.ReportDir, "Directory to write report files into")
	flag.StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "SQLite file recording run history (empty = disabled)")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	// Diagnostics
	flag.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the manim command for each selected job and exit")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	flag.Parse()

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
