package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mkdocstrings_shell"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	collections    *prom.CounterVec
	renderDuration *prom.HistogramVec
	pagesBuilt     prom.Counter
	buildDuration  prom.Histogram
}

// NewPrometheusRecorder constructs the metrics and registers them on reg. A
// nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		collections: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "collections_total",
			Help:      "Collected identifiers by handler and result",
		}, []string{"handler", "result"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of handler render calls",
			Buckets:   prom.DefBuckets,
		}, []string{"handler"}),
		pagesBuilt: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_built_total",
			Help:      "Pages written to the site directory",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.collections, pr.renderDuration, pr.pagesBuilt, pr.buildDuration)
	return pr
}

func (p *PrometheusRecorder) IncCollection(handler string, result ResultLabel) {
	if p == nil {
		return
	}
	p.collections.WithLabelValues(handler, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(handler string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(handler).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPagesBuilt() {
	if p == nil {
		return
	}
	p.pagesBuilt.Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
