package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "readmodel"

// ProjectionMetrics counts event-pipeline outcomes per event type.
type ProjectionMetrics struct {
	eventsReceived *prometheus.CounterVec
	eventsTotal    *prometheus.CounterVec
	handleDuration *prometheus.HistogramVec
}

// Outcome labels for events_processed_total.
const (
	ResultApplied   = "applied"
	ResultDuplicate = "duplicate"
	ResultAnomaly   = "anomaly"
	ResultInvalid   = "invalid"
	ResultFailed    = "failed"
)

func NewProjectionMetrics(reg prometheus.Registerer) *ProjectionMetrics {
	m := &ProjectionMetrics{
		eventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_received_total",
				Help:      "Total number of events received per event type",
			},
			[]string{"event_type"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_processed_total",
				Help:      "Total number of events processed per event type and outcome",
			},
			[]string{"event_type", "result"},
		),
		handleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_handle_duration_seconds",
				Help:      "Time spent projecting a single event",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
	}
	reg.MustRegister(m.eventsReceived, m.eventsTotal, m.handleDuration)
	return m
}

func (m *ProjectionMetrics) IncReceived(eventType string) {
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *ProjectionMetrics) IncProcessed(eventType, result string) {
	m.eventsTotal.WithLabelValues(eventType, result).Inc()
}

func (m *ProjectionMetrics) ObserveHandleDuration(eventType string, start time.Time) {
	m.handleDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
}
