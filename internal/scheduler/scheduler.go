// Package scheduler runs benchmark jobs sequentially with cooldown pauses
// between them, collecting results as it goes.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/renderbench/go-manim-stress/internal/bench"
)

// JobRunner executes one job and reports its result.
type JobRunner interface {
	Run(ctx context.Context, job bench.Job) bench.JobResult
}

// Callbacks contains optional callback functions for scheduler events.
type Callbacks struct {
	// OnJobStart is called before each job begins, with its position in
	// the battery (1-based) and the battery size.
	OnJobStart func(index, total int, job bench.Job)

	// OnJobDone is called after each job finishes.
	OnJobDone func(index, total int, res bench.JobResult)

	// OnCooldown is called for each cooldown step with the time remaining.
	OnCooldown func(kind CooldownKind, remaining time.Duration)

	// OnCooldownDone is called when a cooldown finishes uninterrupted.
	OnCooldownDone func(kind CooldownKind)
}

// Config holds configuration for creating a Scheduler.
type Config struct {
	Runner    JobRunner
	Logger    *slog.Logger
	Policy    CooldownPolicy
	Callbacks Callbacks

	// Sleep is the pause primitive, injectable for tests. Defaults to a
	// context-aware timer sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Scheduler runs a battery of jobs in order. It keeps the results collected
// so far available even while the battery is still in flight, so a caller
// finalizing after a crash or cancellation reports the partial run.
type Scheduler struct {
	runner    JobRunner
	logger    *slog.Logger
	policy    CooldownPolicy
	callbacks Callbacks
	sleep     func(ctx context.Context, d time.Duration) error

	state atomic.Int32

	mu      sync.Mutex
	results []bench.JobResult
}

// New creates a new Scheduler with the given configuration.
func New(cfg Config) *Scheduler {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Scheduler{
		runner:    cfg.Runner,
		logger:    cfg.Logger,
		policy:    cfg.Policy.withDefaults(),
		callbacks: cfg.Callbacks,
		sleep:     sleep,
	}
}

// RunAll executes the jobs in order and returns all results. A cancelled
// context stops the battery after the in-flight job; the remaining jobs are
// skipped and do not appear in the results.
func (s *Scheduler) RunAll(ctx context.Context, jobs []bench.Job) []bench.JobResult {
	total := len(jobs)
	defer s.setState(StateDone)

	for i, job := range jobs {
		if ctx.Err() != nil {
			s.logger.Warn("battery_stopped", "completed", i, "total", total, "reason", ctx.Err())
			break
		}

		s.setState(StateRunning)
		if s.callbacks.OnJobStart != nil {
			s.callbacks.OnJobStart(i+1, total, job)
		}

		res := s.runJob(ctx, job)
		s.record(res)

		if s.callbacks.OnJobDone != nil {
			s.callbacks.OnJobDone(i+1, total, res)
		}

		if i == total-1 {
			break
		}
		if err := s.cooldown(ctx, i, total); err != nil {
			s.logger.Warn("cooldown_interrupted", "reason", err)
		}
	}

	return s.Results()
}

// runJob executes one job, containing panics so a misbehaving runner fails
// that job instead of taking down the whole battery.
func (s *Scheduler) runJob(ctx context.Context, job bench.Job) (res bench.JobResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job_panicked", "job", job.Name, "panic", r)
			res = bench.JobResult{
				Name:     job.Name,
				Expected: job.Expected,
				ExitCode: -1,
			}
		}
	}()

	return s.runner.Run(ctx, job)
}

func (s *Scheduler) record(res bench.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
}

// State returns the battery's current lifecycle state. Safe to call
// concurrently with RunAll.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(state State) {
	if s.state.Swap(int32(state)) != int32(state) {
		s.logger.Debug("state_changed", "state", state.String())
	}
}

// Results returns a copy of the results collected so far. Safe to call
// concurrently with RunAll.
func (s *Scheduler) Results() []bench.JobResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bench.JobResult, len(s.results))
	copy(out, s.results)
	return out
}

// cooldown pauses between jobs i and i+1 according to the policy.
func (s *Scheduler) cooldown(ctx context.Context, i, total int) error {
	kind := s.policy.Kind(i, total)
	s.setState(StateCoolingDown)

	if kind == CooldownThermal {
		s.logger.Info("thermal_cooldown", "duration", s.policy.Thermal.String())
		for remaining := s.policy.Thermal; remaining > 0; remaining -= s.policy.ThermalStep {
			if s.callbacks.OnCooldown != nil {
				s.callbacks.OnCooldown(kind, remaining)
			}
			step := s.policy.ThermalStep
			if remaining < step {
				step = remaining
			}
			if err := s.sleep(ctx, step); err != nil {
				return err
			}
		}
		if s.callbacks.OnCooldownDone != nil {
			s.callbacks.OnCooldownDone(kind)
		}
		return nil
	}

	s.logger.Info("cooldown", "duration", s.policy.Standard.String())
	if s.callbacks.OnCooldown != nil {
		s.callbacks.OnCooldown(kind, s.policy.Standard)
	}
	if err := s.sleep(ctx, s.policy.Standard); err != nil {
		return err
	}
	if s.callbacks.OnCooldownDone != nil {
		s.callbacks.OnCooldownDone(kind)
	}
	return nil
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
