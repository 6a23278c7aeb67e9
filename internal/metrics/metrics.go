// Package metrics is a small buffered-metrics seam.
//
// Core conversion code depends only on Backend. The command installs a
// process-global backend at startup (Datadog in production); the default is
// a nop, so library code never pays for metrics it did not ask for and never
// imports a vendor SDK.
package metrics

import (
	"sync"
	"time"
)

// Labels are free-form metric tags (e.g. {"job": "nightly", "status": "ok"}).
type Labels map[string]string

// Backend receives metric observations. Implementations buffer in-memory and
// submit on Flush.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-global backend. Passing nil restores
// the nop backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter increments a counter on the installed backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records a sample on the installed backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush submits buffered metrics on the installed backend.
func Flush() error {
	return current().Flush()
}

// RecordConversion records one conversion attempt.
//
// matched and skipped count score elements that parsed and that were dropped
// with a format warning; dur is the wall time of the whole pipeline.
func RecordConversion(job string, convErr error, matched, skipped int, dur time.Duration) {
	status := "ok"
	if convErr != nil {
		status = "error"
	}

	IncCounter("xmljson_conversions_total", 1, Labels{"job": job, "status": status})
	IncCounter("xmljson_scores_matched_total", float64(matched), Labels{"job": job})
	IncCounter("xmljson_scores_skipped_total", float64(skipped), Labels{"job": job})
	ObserveHistogram("xmljson_conversion_duration_ms",
		float64(dur.Milliseconds()), Labels{"job": job, "status": status})
}
