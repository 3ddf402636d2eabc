package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	itemCount      prom.Gauge
	generatorSkips *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitemap",
			Name:      "build_duration_seconds",
			Help:      "Duration of sitemap item collection builds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemap",
			Name:      "build_outcomes_total",
			Help:      "Sitemap builds by final status",
		}, []string{"outcome"}),
		itemCount: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitemap",
			Name:      "items",
			Help:      "Number of items produced by the last successful build",
		}),
		generatorSkips: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitemap",
			Name:      "generator_skips_total",
			Help:      "Dynamic routes that contributed no items, by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.itemCount, pr.generatorSkips)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetItemCount(n int) {
	p.itemCount.Set(float64(n))
}

func (p *PrometheusRecorder) IncGeneratorSkip(reason string) {
	p.generatorSkips.WithLabelValues(reason).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
