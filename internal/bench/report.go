package bench

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunReport aggregates the outcomes of one harness invocation. It is created
// once at startup, filled in by the scheduler, and written exactly once.
type RunReport struct {
	RunID   string
	Start   time.Time
	End     time.Time
	Order   []string // job names in execution order
	Results map[string]JobResult
}

// NewRunReport creates a report for the given ordered job names, stamped
// with the run start time and a fresh run ID.
func NewRunReport(jobNames []string, start time.Time) *RunReport {
	return &RunReport{
		RunID:   uuid.NewString(),
		Start:   start,
		Order:   jobNames,
		Results: make(map[string]JobResult),
	}
}

// Finish records the end of the run window and the collected results.
func (r *RunReport) Finish(end time.Time, results map[string]JobResult) {
	r.End = end
	r.Results = results
}

// TotalRuntime sums the measured durations of all jobs.
func (r *RunReport) TotalRuntime() time.Duration {
	var total time.Duration
	for _, res := range r.Results {
		if res.Measured {
			total += res.Duration
		}
	}
	return total
}

// Passed returns the number of successful jobs and the total job count.
func (r *RunReport) Passed() (passed, total int) {
	for _, res := range r.Results {
		total++
		if res.Success {
			passed++
		}
	}
	return passed, total
}

// Tier is the qualitative system assessment derived from the pass fraction.
type Tier int

const (
	TierNeedsAttention Tier = iota
	TierModerate
	TierGood
	TierExcellent
)

// String returns the assessment text written into the report.
func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "EXCELLENT! System handled all stress levels successfully."
	case TierGood:
		return "GOOD! System handled moderate stress levels well."
	case TierModerate:
		return "MODERATE! System handled basic stress only."
	default:
		return "NEEDS ATTENTION! Consider system optimization."
	}
}

// Assess maps a pass count to a tier. The thresholds generalize the
// historical three-job cutoffs (3/3, 2/3, 1/3, 0/3) to arbitrary set sizes
// by fraction passed.
func Assess(passed, total int) Tier {
	switch {
	case total > 0 && passed == total:
		return TierExcellent
	case total > 0 && 3*passed >= 2*total:
		return TierGood
	case passed > 0:
		return TierModerate
	default:
		return TierNeedsAttention
	}
}

// Assessment returns the tier for this report's results.
func (r *RunReport) Assessment() Tier {
	passed, total := r.Passed()
	return Assess(passed, total)
}

// DifficultyLabel derives the report filename component from the job names:
// the name itself for a single job, "all_tests" for the full canonical
// battery, and an underscore-joined list otherwise.
func DifficultyLabel(jobNames []string) string {
	switch {
	case len(jobNames) == 0:
		return "unknown"
	case len(jobNames) == 1:
		return jobNames[0]
	case len(jobNames) == CanonicalBatterySize:
		return "all_tests"
	default:
		return strings.Join(jobNames, "_")
	}
}
