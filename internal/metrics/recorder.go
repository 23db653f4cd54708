// Package metrics defines observability hooks for build cycles and their two
// phases. Implementations may forward to Prometheus or anything else; the
// NoopRecorder is the default when metrics are not configured.
package metrics

import "time"

// ResultLabel enumerates task result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailure  ResultLabel = "failure"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for cycle, render, and inject metrics.
type Recorder interface {
	ObserveCycleDuration(d time.Duration)
	IncCycleOutcome(outcome string) // outcome: success|failed|canceled
	ObserveRenderDuration(entry string, d time.Duration, success bool)
	IncRenderResult(result ResultLabel)
	ObserveInjectDuration(name string, d time.Duration, success bool)
	IncInjectResult(result ResultLabel)
	IncCacheHit()
	IncCacheMiss()
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCycleDuration(time.Duration)                 {}
func (NoopRecorder) IncCycleOutcome(string)                             {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration, bool)  {}
func (NoopRecorder) IncRenderResult(ResultLabel)                        {}
func (NoopRecorder) ObserveInjectDuration(string, time.Duration, bool)  {}
func (NoopRecorder) IncInjectResult(ResultLabel)                        {}
func (NoopRecorder) IncCacheHit()                                       {}
func (NoopRecorder) IncCacheMiss()                                      {}
