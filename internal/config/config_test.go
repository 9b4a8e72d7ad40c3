package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Test != "simple" {
		t.Errorf("Test = %q, want simple", cfg.Test)
	}
	if cfg.Quality != "m" {
		t.Errorf("Quality = %q, want m", cfg.Quality)
	}
	if cfg.LogInterval != 15*time.Second {
		t.Errorf("LogInterval = %v, want 15s", cfg.LogInterval)
	}
	if cfg.CooldownStandard != 10*time.Second {
		t.Errorf("CooldownStandard = %v, want 10s", cfg.CooldownStandard)
	}
	if cfg.CooldownThermal != 5*time.Minute {
		t.Errorf("CooldownThermal = %v, want 5m", cfg.CooldownThermal)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want disabled by default", cfg.MetricsAddr)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad test selection",
			mutate:  func(c *Config) { c.Test = "impossible" },
			wantErr: "test:",
		},
		{
			name: "jobs file bypasses test selection",
			mutate: func(c *Config) {
				c.Test = "impossible"
				c.JobsFile = "jobs.toml"
			},
		},
		{
			name:    "bad quality",
			mutate:  func(c *Config) { c.Quality = "ultra" },
			wantErr: "quality:",
		},
		{
			name:    "zero log interval",
			mutate:  func(c *Config) { c.LogInterval = 0 },
			wantErr: "log_interval:",
		},
		{
			name:    "negative cooldown",
			mutate:  func(c *Config) { c.CooldownStandard = -time.Second },
			wantErr: "cooldown:",
		},
		{
			name:    "empty python path",
			mutate:  func(c *Config) { c.PythonPath = "" },
			wantErr: "python:",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "log_format:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Test = "nope"
	cfg.Quality = "nope"
	cfg.LogInterval = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, field := range []string{"test:", "quality:", "log_interval:"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q missing %q", err.Error(), field)
		}
	}
}

func writeJobsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJobsFile(t *testing.T) {
	path := writeJobsFile(t, `
[[job]]
name = "spiral"
file = "spiral_scene.py"
scene = "SpiralScene"
expected_seconds = 420

[[job]]
name = "grid"
file = "/abs/grid_scene.py"
scene = "GridScene"
expected_seconds = 90.5
`)

	jobs, err := LoadJobsFile(path, "scenes")
	if err != nil {
		t.Fatalf("LoadJobsFile: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}

	if jobs[0].Name != "spiral" || jobs[0].Scene != "SpiralScene" {
		t.Errorf("jobs[0] = %+v", jobs[0])
	}
	if jobs[0].File != filepath.Join("scenes", "spiral_scene.py") {
		t.Errorf("relative file = %q, want resolved against scene dir", jobs[0].File)
	}
	if jobs[0].Expected != 7*time.Minute {
		t.Errorf("Expected = %v, want 7m", jobs[0].Expected)
	}

	if jobs[1].File != "/abs/grid_scene.py" {
		t.Errorf("absolute file = %q, want untouched", jobs[1].File)
	}
	if jobs[1].Expected != 90*time.Second+500*time.Millisecond {
		t.Errorf("fractional Expected = %v", jobs[1].Expected)
	}
}

func TestLoadJobsFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty table",
			content: `# no jobs`,
			wantErr: "defines no jobs",
		},
		{
			name: "missing name",
			content: `
[[job]]
file = "a.py"
scene = "A"
expected_seconds = 60
`,
			wantErr: "has no name",
		},
		{
			name: "duplicate names",
			content: `
[[job]]
name = "a"
file = "a.py"
scene = "A"
expected_seconds = 60

[[job]]
name = "a"
file = "b.py"
scene = "B"
expected_seconds = 60
`,
			wantErr: "duplicate job name",
		},
		{
			name: "missing scene",
			content: `
[[job]]
name = "a"
file = "a.py"
expected_seconds = 60
`,
			wantErr: "needs both file and scene",
		},
		{
			name: "zero expected",
			content: `
[[job]]
name = "a"
file = "a.py"
scene = "A"
`,
			wantErr: "positive expected_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeJobsFile(t, tt.content)
			_, err := LoadJobsFile(path, ".")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadJobsFile = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadJobsFile_MissingFile(t *testing.T) {
	_, err := LoadJobsFile(filepath.Join(t.TempDir(), "absent.toml"), ".")
	if err == nil {
		t.Error("LoadJobsFile on a missing file should error")
	}
}
