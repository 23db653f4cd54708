package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	cycleDuration  prom.Histogram
	cycleOutcome   *prom.CounterVec
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	injectDuration *prom.HistogramVec
	injectResults  *prom.CounterVec
	cacheLookups   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		cycleDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "prerender",
			Name:      "cycle_duration_seconds",
			Help:      "Total duration of one build cycle",
			Buckets:   prom.DefBuckets,
		}),
		cycleOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "cycle_outcomes_total",
			Help:      "Build cycle outcome counts",
		}, []string{"outcome"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "prerender",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual content renders",
			Buckets:   prom.DefBuckets,
		}, []string{"entry", "success"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "render_results_total",
			Help:      "Content render result counts",
		}, []string{"result"}),
		injectDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "prerender",
			Name:      "inject_duration_seconds",
			Help:      "Duration of individual document injections",
			Buckets:   prom.DefBuckets,
		}, []string{"asset", "success"}),
		injectResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "inject_results_total",
			Help:      "Document injection result counts",
		}, []string{"result"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "fragment_cache_lookups_total",
			Help:      "Fragment cache lookup counts",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		pr.cycleDuration, pr.cycleOutcome,
		pr.renderDuration, pr.renderResults,
		pr.injectDuration, pr.injectResults,
		pr.cacheLookups,
	)
	return pr
}

func (pr *PrometheusRecorder) ObserveCycleDuration(d time.Duration) {
	pr.cycleDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncCycleOutcome(outcome string) {
	pr.cycleOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) ObserveRenderDuration(entry string, d time.Duration, success bool) {
	pr.renderDuration.WithLabelValues(entry, strconv.FormatBool(success)).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncRenderResult(result ResultLabel) {
	pr.renderResults.WithLabelValues(string(result)).Inc()
}

func (pr *PrometheusRecorder) ObserveInjectDuration(name string, d time.Duration, success bool) {
	pr.injectDuration.WithLabelValues(name, strconv.FormatBool(success)).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncInjectResult(result ResultLabel) {
	pr.injectResults.WithLabelValues(string(result)).Inc()
}

func (pr *PrometheusRecorder) IncCacheHit()  { pr.cacheLookups.WithLabelValues("hit").Inc() }
func (pr *PrometheusRecorder) IncCacheMiss() { pr.cacheLookups.WithLabelValues("miss").Inc() }
