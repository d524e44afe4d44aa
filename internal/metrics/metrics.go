// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the consolidation run.
//
// The package exposes a narrow Backend interface (counters plus duration
// observations) behind a global, pluggable backend that defaults to a no-op
// implementation, so metric calls are always safe even when nothing is
// configured. Concrete systems live in subpackages (prompush for a
// Prometheus Pushgateway); the pipeline depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes collected metrics if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics stay optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)        {}
func (nopBackend) ObserveDuration(name string, seconds float64, labels Labels) {}
func (nopBackend) Flush() error                                                { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one pipeline step: latency plus success/failure.
// Typical steps: "probe", "dictionary", "consolidate", "unmatched_report".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter("consolidation_step_total", 1, lbls)
	backend.ObserveDuration("consolidation_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given job and kind.
//
// Kinds mirror the run summary:
//   - "rows_written"
//   - "rows_skipped"
//   - "rows_unmatched"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("consolidation_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFiles counts consolidated source files for the given job.
func RecordFiles(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("consolidation_files_total", float64(delta), Labels{"job": job})
}
