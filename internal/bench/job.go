// Package bench defines the benchmark job model shared by the supervisor,
// scheduler and report writer.
package bench

import (
	"fmt"
	"path/filepath"
	"time"
)

// Job is one named render benchmark: a manim scene file, the scene class to
// render, and how long a healthy machine is expected to take.
// Jobs are immutable once constructed.
type Job struct {
	Name     string
	File     string // scene file path
	Scene    string // scene class name inside File
	Expected time.Duration
}

// JobResult captures the outcome of a single job.
//
// Measured is false when the render process could not be spawned or waited
// on; Duration is only meaningful when Measured is true.
type JobResult struct {
	Name     string
	Duration time.Duration
	Measured bool
	Success  bool
	ExitCode int
	Expected time.Duration

	// Artifact is the path of the rendered video, when it was found at the
	// conventional location after a successful run. Diagnostic only.
	Artifact string
}

// CanonicalBatterySize is the size of the full canonical job set. Running
// exactly this battery triggers the extended thermal cooldown.
const CanonicalBatterySize = 4

// canonical is the built-in job table, ordered by increasing load.
var canonical = []Job{
	{Name: "simple", File: "simple_stress_test.py", Scene: "SimpleStressTest", Expected: 5 * time.Minute},
	{Name: "intermediate", File: "intermediate_stress_test.py", Scene: "IntermediateStressTest", Expected: 20 * time.Minute},
	{Name: "hard", File: "hard_stress_test.py", Scene: "HardStressTest", Expected: 35 * time.Minute},
	{Name: "very-hard", File: "very_hard_stress_test.py", Scene: "VeryHardStressTest", Expected: 90 * time.Minute},
}

// fastScale divides expected durations when the reduced-scale scene variants
// are selected. The scenes shrink their workloads by roughly this factor.
const fastScale = 10

// JobsFor returns the job sequence for a test selection. Selection is one of
// the canonical job names or "all". Scene files are resolved against
// sceneDir. When fast is set, expected durations are scaled down to match
// the reduced-scale scene variants.
func JobsFor(selection, sceneDir string, fast bool) ([]Job, error) {
	var jobs []Job
	if selection == "all" {
		jobs = append(jobs, canonical...)
	} else {
		found := false
		for _, j := range canonical {
			if j.Name == selection {
				jobs = append(jobs, j)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown test selection %q", selection)
		}
	}

	for i := range jobs {
		jobs[i].File = filepath.Join(sceneDir, jobs[i].File)
		if fast {
			jobs[i].Expected /= fastScale
		}
	}
	return jobs, nil
}

// Names returns the job names in order.
func Names(jobs []Job) []string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	return names
}
