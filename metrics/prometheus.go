// Package metrics records bot activity as Prometheus series.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder owns a private registry so several bots (and tests) can
// coexist in one process.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	transitionsTotal   *prometheus.CounterVec
	droppedTotal       *prometheus.CounterVec
	evictedTotal       prometheus.Counter
}

func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		registry: reg,
		generationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_generation_requests_total",
				Help: "Total number of text generation calls by backend and status",
			},
			[]string{"backend", "status"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hrbot_generation_duration_seconds",
				Help:    "Duration of text generation calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_transitions_total",
				Help: "Dialog state transitions by source and target state",
			},
			[]string{"from", "to"},
		),
		droppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrbot_events_dropped_total",
				Help: "Inbound events that were not processed",
			},
			[]string{"reason"},
		),
		evictedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hrbot_sessions_evicted_total",
				Help: "Sessions removed by the idle sweeper",
			},
		),
	}
}

func (p *PrometheusRecorder) ObserveGeneration(backend, status string, duration time.Duration) {
	p.generationTotal.WithLabelValues(backend, status).Inc()
	p.generationDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveTransition(from, to string) {
	p.transitionsTotal.WithLabelValues(from, to).Inc()
}

// IncDropped counts an event that was refused, e.g. "busy" or "duplicate".
func (p *PrometheusRecorder) IncDropped(reason string) {
	p.droppedTotal.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncEvicted(string) {
	p.evictedTotal.Inc()
}

// TrackSessions exports the live session count. It may be called once.
func (p *PrometheusRecorder) TrackSessions(count func() int) {
	promauto.With(p.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hrbot_sessions",
			Help: "Number of sessions currently held in memory",
		},
		func() float64 { return float64(count()) },
	)
}

func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
