// Package process provides abstractions for running external render
// processes.
package process

import (
	"context"
	"os/exec"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// Runner creates executable commands for benchmark jobs.
// This interface allows the supervisor to be process-agnostic.
type Runner interface {
	// BuildCommand returns a ready-to-start command for the given job.
	// The command should NOT be started yet.
	BuildCommand(ctx context.Context, job bench.Job) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// ArtifactLocator is implemented by runners whose output lands at a
// deterministic, convention-based path. The supervisor uses it for
// diagnostic artifact checks after a successful run.
type ArtifactLocator interface {
	// ExpectedArtifact returns the conventional output path for the job.
	ExpectedArtifact(job bench.Job) string
}
