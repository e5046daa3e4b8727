package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	Payments      *prometheus.CounterVec
	CartMutations *prometheus.CounterVec
	Sessions      prometheus.Gauge

	registry *prometheus.Registry
}

// NewServerMetrics registers every collector on a private registry so that
// tests can build as many instances as they like. Metric names are prefixed
// with service only.
func NewServerMetrics(service string) *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "payments_simulated_total",
			Help:      "Simulated payments by checkout source and method.",
		}, []string{"source", "method"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "sessions_active",
			Help:      "Shopping sessions currently held in memory.",
		}),
		registry: reg,
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Payments, m.CartMutations, m.Sessions)
	return m
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry, mostly for tests.
func (m *ServerMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
