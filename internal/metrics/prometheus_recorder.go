package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	filesProcessed *prom.CounterVec
	resolutions    *prom.CounterVec
	collisions     *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "hrefrewrite",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages per file",
			Buckets:   prom.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "hrefrewrite",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hrefrewrite",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hrefrewrite",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		filesProcessed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hrefrewrite",
			Name:      "files_processed_total",
			Help:      "Files emitted by the rewrite pipeline",
		}, []string{"mode"}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hrefrewrite",
			Name:      "href_resolutions_total",
			Help:      "Href resolutions by kind (external, exact, index, unresolved)",
		}, []string{"kind"}),
		collisions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hrefrewrite",
			Name:      "index_collisions_total",
			Help:      "Keys emitted more than once with a different value",
		}, []string{"index"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.filesProcessed, pr.resolutions, pr.collisions)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncFilesProcessed(mode string) {
	if p == nil {
		return
	}
	p.filesProcessed.WithLabelValues(mode).Inc()
}

func (p *PrometheusRecorder) IncHrefResolution(kind string) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncIndexCollision(index string) {
	if p == nil {
		return
	}
	p.collisions.WithLabelValues(index).Inc()
}
