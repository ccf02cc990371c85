package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements Collector using Prometheus metrics
type PrometheusCollector struct {
	stateTransitions *prometheus.CounterVec
	startDuration    *prometheus.HistogramVec
	stopDuration     *prometheus.HistogramVec
	probeDuration    *prometheus.HistogramVec
	errors           *prometheus.CounterVec
	endpoints        prometheus.Counter
	restarts         prometheus.Counter

	registry *prometheus.Registry
}

// NewPrometheusCollector creates a collector registered on a fresh registry.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "stremio_service"
	}

	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
	}

	pc.stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_state_transitions_total",
			Help:      "Total number of server state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	// Start includes the grace window, so buckets go well past the defaults.
	pc.startDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "server_start_duration_seconds",
			Help:      "Duration of server start attempts",
			Buckets:   []float64{0.5, 1, 2, 3, 4, 5, 7.5, 10, 15, 30},
		},
		[]string{"result"},
	)

	pc.stopDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "server_stop_duration_seconds",
			Help:      "Duration of server stops including the settle window",
			Buckets:   []float64{0.5, 1, 2, 4, 6, 8, 10, 15, 30},
		},
		[]string{"result"},
	)

	pc.probeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settings_probe_duration_seconds",
			Help:      "Duration of settings probes",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	pc.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_errors_total",
			Help:      "Total number of supervisor errors",
		},
		[]string{"code"},
	)

	pc.endpoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_endpoints_discovered_total",
			Help:      "Total number of server endpoints discovered on stdout",
		},
	)

	pc.restarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_restarts_total",
			Help:      "Total number of server restarts",
		},
	)

	pc.registry.MustRegister(
		pc.stateTransitions,
		pc.startDuration,
		pc.stopDuration,
		pc.probeDuration,
		pc.errors,
		pc.endpoints,
		pc.restarts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return pc
}

func (pc *PrometheusCollector) StateTransition(from, to string) {
	pc.stateTransitions.WithLabelValues(from, to).Inc()
}

func (pc *PrometheusCollector) StartDuration(duration time.Duration, code string) {
	pc.startDuration.WithLabelValues(result(code)).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) StopDuration(duration time.Duration, code string) {
	pc.stopDuration.WithLabelValues(result(code)).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) ProbeDuration(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pc.probeDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) Error(code string) {
	pc.errors.WithLabelValues(code).Inc()
}

func (pc *PrometheusCollector) EndpointDiscovered() {
	pc.endpoints.Inc()
}

func (pc *PrometheusCollector) Restart() {
	pc.restarts.Inc()
}

// Registry returns the registry the collector writes to.
func (pc *PrometheusCollector) Registry() *prometheus.Registry {
	return pc.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{Registry: pc.registry})
}
