// Package metrics records operational metrics from a flowback run behind a
// narrow Backend interface.
//
// The default backend is a no-op, so instrumentation is always safe to call.
// Concrete systems live in subpackages (prompush) and are installed once at
// startup with SetBackend, the same way storage backends are selected by kind.
package metrics

import "time"

// Metric names shared by the helpers below and the backends.
const (
	StepTotal    = "flowback_step_total"
	StepDuration = "flowback_step_duration_seconds"
	RowsTotal    = "flowback_rows_total"
	FilesTotal   = "flowback_files_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it before any work starts.
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

// RecordStep counts one execution of a run stage (parse, cleanse, output,
// merge, ...) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind. Kinds in use:
//   - "parsed"
//   - "dropped_width"
//   - "collapsed"
//   - "merged"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFile counts one input file by outcome: "processed", "failed" or
// "flagged".
func RecordFile(job, status string) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":    job,
		"status": status,
	})
}
