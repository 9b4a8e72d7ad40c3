package stats

import (
	"testing"
	"time"
)

func TestRecorder_EmptyJob(t *testing.T) {
	r := NewRecorder()

	if _, ok := r.Summary("missing"); ok {
		t.Error("Summary for unknown job should return false")
	}
	if got := r.Count("missing"); got != 0 {
		t.Errorf("Count = %d, want 0", got)
	}
}

func TestRecorder_SingleMarker(t *testing.T) {
	r := NewRecorder()
	r.Observe("simple", time.Unix(100, 0))

	s, ok := r.Summary("simple")
	if !ok {
		t.Fatal("Summary should exist after one marker")
	}
	if s.Count != 1 {
		t.Errorf("Count = %d, want 1", s.Count)
	}
	// One marker has no interval yet.
	if s.P50 != 0 || s.P95 != 0 || s.P99 != 0 {
		t.Errorf("percentiles should be zero with a single marker, got %+v", s)
	}
}

func TestRecorder_UniformIntervals(t *testing.T) {
	r := NewRecorder()
	base := time.Unix(0, 0)
	for i := 0; i < 101; i++ {
		r.Observe("hard", base.Add(time.Duration(i)*2*time.Second))
	}

	s, ok := r.Summary("hard")
	if !ok {
		t.Fatal("Summary should exist")
	}
	if s.Count != 101 {
		t.Errorf("Count = %d, want 101", s.Count)
	}

	// All gaps are exactly 2s, so every percentile should be near 2s.
	for _, q := range []time.Duration{s.P50, s.P95, s.P99} {
		if q < 1900*time.Millisecond || q > 2100*time.Millisecond {
			t.Errorf("percentile = %v, want ~2s (summary %+v)", q, s)
		}
	}
}

func TestRecorder_JobsAreIndependent(t *testing.T) {
	r := NewRecorder()
	base := time.Unix(0, 0)
	r.Observe("a", base)
	r.Observe("a", base.Add(time.Second))
	r.Observe("b", base)

	if got := r.Count("a"); got != 2 {
		t.Errorf("Count(a) = %d, want 2", got)
	}
	if got := r.Count("b"); got != 1 {
		t.Errorf("Count(b) = %d, want 1", got)
	}
}

func TestRecorder_NonPositiveGapIgnored(t *testing.T) {
	r := NewRecorder()
	at := time.Unix(50, 0)
	r.Observe("a", at)
	r.Observe("a", at) // zero gap
	r.Observe("a", at.Add(-time.Second))

	s, _ := r.Summary("a")
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.P50 != 0 {
		t.Errorf("P50 = %v, want 0 (no positive gaps recorded)", s.P50)
	}
}
