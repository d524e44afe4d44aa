package metrics

import (
	"errors"
	"testing"
	"time"
)

// captureBackend records calls for assertions.
type captureBackend struct {
	counters  map[string]float64
	durations int
	labels    []Labels
}

func newCapture() *captureBackend {
	return &captureBackend{counters: map[string]float64{}}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels = append(c.labels, labels)
}

func (c *captureBackend) ObserveDuration(name string, seconds float64, labels Labels) {
	c.durations++
}

func (c *captureBackend) Flush() error { return nil }

/*
TestRecordHelpers routes through the installed backend: RecordStep emits a
counter plus a duration with a status label derived from the error;
RecordRows and RecordFiles ignore non-positive deltas.
*/
func TestRecordHelpers(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	RecordStep("job", "consolidate", nil, 10*time.Millisecond)
	RecordStep("job", "unmatched_report", errors.New("boom"), time.Millisecond)
	RecordRows("job", "rows_written", 5)
	RecordRows("job", "rows_skipped", 0) // ignored
	RecordFiles("job", 2)
	RecordFiles("job", -1) // ignored

	if got := cap.counters["consolidation_step_total"]; got != 2 {
		t.Fatalf("step_total = %v", got)
	}
	if got := cap.counters["consolidation_records_total"]; got != 5 {
		t.Fatalf("records_total = %v", got)
	}
	if got := cap.counters["consolidation_files_total"]; got != 2 {
		t.Fatalf("files_total = %v", got)
	}
	if cap.durations != 2 {
		t.Fatalf("durations = %d", cap.durations)
	}

	var statuses []string
	for _, l := range cap.labels {
		if s, ok := l["status"]; ok {
			statuses = append(statuses, s)
		}
	}
	if len(statuses) != 2 || statuses[0] != "success" || statuses[1] != "failure" {
		t.Fatalf("statuses = %v", statuses)
	}
}

/*
TestSetBackend_NilKeepsCurrent: installing nil must not clobber the backend.
*/
func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	cap := newCapture()
	SetBackend(cap)
	defer SetBackend(nopBackend{})

	SetBackend(nil)
	RecordRows("job", "rows_written", 1)
	if cap.counters["consolidation_records_total"] != 1 {
		t.Fatal("nil SetBackend replaced the backend")
	}
}
