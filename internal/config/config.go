// Package config provides configuration management for go-manim-stress.
package config

import "time"

// Config holds all configuration options for the harness.
type Config struct {
	// Test selection
	Test     string `json:"test"`      // simple, intermediate, hard, very-hard, all
	JobsFile string `json:"jobs_file"` // optional TOML job table overriding the built-ins
	SceneDir string `json:"scene_dir"`

	// Render
	Quality    string `json:"quality"` // l, m, h, p, k
	PythonPath string `json:"python_path"`
	FFmpegDir  string `json:"ffmpeg_dir"`
	MediaDir   string `json:"media_dir"`
	FastMode   bool   `json:"fast_mode"` // reduced-scale scene variants

	// Monitoring
	LogInterval time.Duration `json:"log_interval"`

	// Cooldowns
	CooldownStandard time.Duration `json:"cooldown_standard"`
	CooldownThermal  time.Duration `json:"cooldown_thermal"`
	CooldownStep     time.Duration `json:"cooldown_step"`

	// Reporting
	ReportDir string `json:"report_dir"`
	HistoryDB string `json:"history_db"` // optional SQLite run history

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Test selection
		Test:     "simple",
		SceneDir: ".",

		// Render
		Quality:    "m",
		PythonPath: "python3",
		FFmpegDir:  "ffmpeg-7.1.1-essentials_build/bin",
		MediaDir:   "media",

		// Monitoring
		LogInterval: 15 * time.Second,

		// Cooldowns
		CooldownStandard: 10 * time.Second,
		CooldownThermal:  5 * time.Minute,
		CooldownStep:     30 * time.Second,

		// Reporting
		ReportDir: ".",

		// Observability
		MetricsAddr: "", // disabled unless asked for
		LogFormat:   "text",
	}
}
