package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	notifyTotal    *prometheus.CounterVec
	notifyDuration *prometheus.HistogramVec
	notifyInFlight prometheus.Gauge
	expiryEvents   prometheus.Counter
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	notifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cfe",
			Subsystem: "worker",
			Name:      "notifications_total",
			Help:      "Total handled transition events by outcome.",
		},
		[]string{"service", "kind", "status"},
	)
	notifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cfe",
			Subsystem: "worker",
			Name:      "notification_duration_seconds",
			Help:      "Event handling duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "kind", "status"},
	)
	notifyInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cfe",
			Subsystem: "worker",
			Name:      "notifications_in_flight",
			Help:      "Number of in-flight event handlers.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	expiryEvents := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cfe",
			Subsystem: "worker",
			Name:      "expiry_events_total",
			Help:      "Total document-expiring reminder events emitted.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(notifyTotal, notifyDuration, notifyInFlight, expiryEvents)

	return &WorkerMetrics{
		registry:       registry,
		notifyTotal:    notifyTotal,
		notifyDuration: notifyDuration,
		notifyInFlight: notifyInFlight,
		expiryEvents:   expiryEvents,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEvent() {
	m.notifyInFlight.Inc()
}

func (m *WorkerMetrics) FinishEvent(service, kind string, duration time.Duration, err error) {
	m.notifyInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.notifyTotal.WithLabelValues(service, kind, status).Inc()
	m.notifyDuration.WithLabelValues(service, kind, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) AddExpiryEvents(count int) {
	if count <= 0 {
		return
	}
	m.expiryEvents.Add(float64(count))
}
