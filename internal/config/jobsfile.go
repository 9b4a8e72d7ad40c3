package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// jobsFile is the TOML shape of a custom job table:
//
//	[[job]]
//	name = "spiral"
//	file = "spiral_scene.py"
//	scene = "SpiralScene"
//	expected_seconds = 420
type jobsFile struct {
	Jobs []jobEntry `toml:"job"`
}

type jobEntry struct {
	Name            string  `toml:"name"`
	File            string  `toml:"file"`
	Scene           string  `toml:"scene"`
	ExpectedSeconds float64 `toml:"expected_seconds"`
}

// LoadJobsFile reads a custom job table from a TOML file. Scene file paths
// are resolved against sceneDir unless absolute.
func LoadJobsFile(path, sceneDir string) ([]bench.Job, error) {
	var jf jobsFile
	if _, err := toml.DecodeFile(path, &jf); err != nil {
		return nil, fmt.Errorf("parsing jobs file %s: %w", path, err)
	}

	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s defines no jobs", path)
	}

	seen := make(map[string]bool, len(jf.Jobs))
	jobs := make([]bench.Job, 0, len(jf.Jobs))
	for i, e := range jf.Jobs {
		if e.Name == "" {
			return nil, fmt.Errorf("jobs file %s: job %d has no name", path, i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("jobs file %s: duplicate job name %q", path, e.Name)
		}
		seen[e.Name] = true
		if e.File == "" || e.Scene == "" {
			return nil, fmt.Errorf("jobs file %s: job %q needs both file and scene", path, e.Name)
		}
		if e.ExpectedSeconds <= 0 {
			return nil, fmt.Errorf("jobs file %s: job %q needs a positive expected_seconds", path, e.Name)
		}

		file := e.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(sceneDir, file)
		}

		jobs = append(jobs, bench.Job{
			Name:     e.Name,
			File:     file,
			Scene:    e.Scene,
			Expected: time.Duration(e.ExpectedSeconds * float64(time.Second)),
		})
	}

	return jobs, nil
}
