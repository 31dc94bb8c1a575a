// Package metrics exposes Prometheus instrumentation for the dashboard.
//
// All collectors live on a private registry so tests and multiple servers
// in one process do not collide. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worlddash"

// Metrics holds the dashboard collectors.
type Metrics struct {
	registry *prometheus.Registry

	filterRequests *prometheus.CounterVec
	filterDuration *prometheus.HistogramVec
	filterRows     *prometheus.HistogramVec
	datasetRows    prometheus.Gauge
	loadSeconds    prometheus.Gauge
	builds         *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_requests_total",
			Help:      "Filter evaluations by view.",
		}, []string{"view"}),
		filterDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_duration_seconds",
			Help:      "Time spent filtering and deriving a view.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .05},
		}, []string{"view"}),
		filterRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_rows",
			Help:      "Rows returned by a filter evaluation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 300},
		}, []string{"view"}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Countries in the current dataset.",
		}),
		loadSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_load_seconds",
			Help:      "Duration of the last dataset build.",
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_builds_total",
			Help:      "Dataset builds by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.filterRequests,
		m.filterDuration,
		m.filterRows,
		m.datasetRows,
		m.loadSeconds,
		m.builds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// ObserveFilter records one filter evaluation for a view.
func (m *Metrics) ObserveFilter(view string, took time.Duration, rows int) {
	if m == nil {
		return
	}
	m.filterRequests.WithLabelValues(view).Inc()
	m.filterDuration.WithLabelValues(view).Observe(took.Seconds())
	m.filterRows.WithLabelValues(view).Observe(float64(rows))
}

// ObserveBuild records a dataset build. It satisfies core.BuildObserver.
func (m *Metrics) ObserveBuild(took time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.builds.WithLabelValues("error").Inc()
		return
	}
	m.builds.WithLabelValues("ok").Inc()
	m.datasetRows.Set(float64(rows))
	m.loadSeconds.Set(took.Seconds())
}
