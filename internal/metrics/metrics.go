package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	Registry *prometheus.Registry

	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	SoftFails        *prometheus.CounterVec

	CartMutations *prometheus.CounterVec
}

// New registers on a private registry so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "http_request_duration_ms",
			Help:      "Inbound HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"route"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream calls by service and outcome.",
		}, []string{"service", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_ms",
			Help:      "Upstream call latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"service"}),
		SoftFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "soft_fail_total",
			Help:      "Requests answered with a fallback payload.",
		}, []string{"route"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS,
		m.UpstreamRequests, m.UpstreamLatency, m.SoftFails,
		m.CartMutations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(d.Milliseconds()))
}

// ObserveUpstream records one outbound call. outcome is "ok", "http_error",
// "timeout" or "network_error".
func (m *Metrics) ObserveUpstream(service, outcome string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(service, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(service).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) SoftFail(route string) {
	m.SoftFails.WithLabelValues(route).Inc()
}

func (m *Metrics) CartMutation(kind string) {
	m.CartMutations.WithLabelValues(kind).Inc()
}
