package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// ManimConfig holds configuration for manim process execution.
type ManimConfig struct {
	// PythonPath is the interpreter used to invoke the manim module.
	PythonPath string

	// FFmpegDir is the directory containing the ffmpeg binary required by
	// manim's video encoding. It is prepended to PATH in the child
	// environment.
	FFmpegDir string

	// Quality is the render quality tier: l, m, h, p or k.
	Quality string

	// Verbosity is forwarded to manim's --verbosity flag. INFO is required
	// for progress line parsing.
	Verbosity string

	// MediaDir is the root of manim's media output tree.
	MediaDir string

	// FastMode selects the reduced-scale scene variants. It is an explicit
	// configuration field here; the scenes see it as an environment
	// variable.
	FastMode bool
}

// FastModeEnv is the environment variable the scene files consult for the
// reduced-scale mode.
const FastModeEnv = "MANIM_STRESS_FAST"

// DefaultManimConfig returns a ManimConfig matching the conventional
// working-directory layout.
func DefaultManimConfig() *ManimConfig {
	return &ManimConfig{
		PythonPath: "python3",
		FFmpegDir:  filepath.Join("ffmpeg-7.1.1-essentials_build", "bin"),
		Quality:    "m",
		Verbosity:  "INFO",
		MediaDir:   "media",
	}
}

// qualityFolders maps the quality flag to manim's output folder name.
var qualityFolders = map[string]string{
	"l": "480p15",
	"m": "720p30",
	"h": "1080p60",
	"p": "1440p60",
	"k": "2160p60",
}

// QualityFolder returns manim's media folder name for a quality tier,
// falling back to the medium tier for unknown values.
func QualityFolder(quality string) string {
	if folder, ok := qualityFolders[quality]; ok {
		return folder
	}
	return qualityFolders["m"]
}

// ManimRunner implements Runner for manim render processes.
type ManimRunner struct {
	config *ManimConfig
}

// NewManimRunner creates a new manim runner with the given configuration.
func NewManimRunner(cfg *ManimConfig) *ManimRunner {
	return &ManimRunner{
		config: cfg,
	}
}

// Name returns "manim".
func (r *ManimRunner) Name() string {
	return "manim"
}

// BuildCommand creates an exec.Cmd rendering the job's scene.
func (r *ManimRunner) BuildCommand(ctx context.Context, job bench.Job) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, r.config.PythonPath, r.buildArgs(job)...)
	cmd.Env = r.buildEnv(os.Environ())
	return cmd, nil
}

// buildArgs constructs the manim command-line arguments.
func (r *ManimRunner) buildArgs(job bench.Job) []string {
	return []string{
		"-m", "manim",
		"render",
		"--quality", r.config.Quality,
		"--disable_caching",
		"--verbosity", r.config.Verbosity,
		job.File,
		job.Scene,
	}
}

// buildEnv returns the child environment: the ffmpeg directory prepended to
// PATH, plus the fast-mode toggle when enabled.
func (r *ManimRunner) buildEnv(base []string) []string {
	env := make([]string, 0, len(base)+2)
	sep := string(os.PathListSeparator)

	pathSeen := false
	for _, kv := range base {
		if strings.HasPrefix(kv, "PATH=") {
			env = append(env, "PATH="+r.ffmpegDir()+sep+strings.TrimPrefix(kv, "PATH="))
			pathSeen = true
			continue
		}
		env = append(env, kv)
	}
	if !pathSeen {
		env = append(env, "PATH="+r.ffmpegDir())
	}

	if r.config.FastMode {
		env = append(env, FastModeEnv+"=1")
	}
	return env
}

// ffmpegDir resolves the ffmpeg directory against the working directory when
// it is relative, matching where the tool archive is unpacked.
func (r *ManimRunner) ffmpegDir() string {
	dir := r.config.FFmpegDir
	if filepath.IsAbs(dir) {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return dir
	}
	return filepath.Join(cwd, dir)
}

// ExpectedArtifact returns manim's conventional output path for the job:
// <media>/videos/<script>/<quality folder>/<Scene>.mp4.
func (r *ManimRunner) ExpectedArtifact(job bench.Job) string {
	script := strings.TrimSuffix(filepath.Base(job.File), filepath.Ext(job.File))
	return filepath.Join(r.config.MediaDir, "videos", script, QualityFolder(r.config.Quality), job.Scene+".mp4")
}

// Config returns the manim configuration.
func (r *ManimRunner) Config() *ManimConfig {
	return r.config
}

// CommandString returns the command that would be executed (for -print-cmd).
func (r *ManimRunner) CommandString(job bench.Job) string {
	return r.config.PythonPath + " " + strings.Join(r.buildArgs(job), " ")
}
