// Package stats tracks render progress-marker activity per job.
//
// Marker inter-arrival times go into a t-digest per job, so the final
// summary can show p50/p95/p99 marker gaps with bounded memory even for
// renders emitting hundreds of thousands of lines.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// MarkerSummary is a point-in-time view of one job's marker activity.
type MarkerSummary struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// jobMarkers accumulates marker intervals for one job.
type jobMarkers struct {
	digest *tdigest.TDigest
	count  int64
	gaps   int64
	last   time.Time
}

// Recorder aggregates marker activity across jobs. Safe for concurrent use,
// though in practice only the single poll loop writes at a time.
type Recorder struct {
	mu   sync.Mutex
	jobs map[string]*jobMarkers
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		jobs: make(map[string]*jobMarkers),
	}
}

// Observe records one progress marker for the job at the given time. The
// first marker of a job establishes the baseline; subsequent markers add
// their gap to the digest.
func (r *Recorder) Observe(job string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jm, ok := r.jobs[job]
	if !ok {
		// ~100 centroids, a few KB per job
		jm = &jobMarkers{digest: tdigest.NewWithCompression(100)}
		r.jobs[job] = jm
	}

	jm.count++
	if !jm.last.IsZero() {
		gap := at.Sub(jm.last)
		if gap > 0 {
			jm.digest.Add(gap.Seconds(), 1)
			jm.gaps++
		}
	}
	jm.last = at
}

// Summary returns the marker summary for a job. The second return is false
// when the job recorded no markers.
func (r *Recorder) Summary(job string) (MarkerSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jm, ok := r.jobs[job]
	if !ok {
		return MarkerSummary{}, false
	}

	s := MarkerSummary{Count: jm.count}
	if jm.gaps > 0 {
		s.P50 = secondsToDuration(jm.digest.Quantile(0.50))
		s.P95 = secondsToDuration(jm.digest.Quantile(0.95))
		s.P99 = secondsToDuration(jm.digest.Quantile(0.99))
	}
	return s, true
}

// Count returns the marker count for a job, zero if none recorded.
func (r *Recorder) Count(job string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if jm, ok := r.jobs[job]; ok {
		return jm.count
	}
	return 0
}

func secondsToDuration(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
