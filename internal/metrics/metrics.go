package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "event_collector"

// Metrics holds the collectors shared by the publisher and the request path.
type Metrics struct {
	Requests          *prometheus.CounterVec
	EventsReceived    prometheus.Counter
	PublishAttempts   prometheus.Counter
	RecordsFailed     prometheus.Counter
	RecordsUnresolved prometheus.Counter
	PublishDuration   prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// A nil reg leaves them unregistered, which is what most tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Requests handled, by response status code",
			},
			[]string{"status"},
		),
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Events accepted for publishing after validation",
		}),
		PublishAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "attempts_total",
			Help:      "Batch submissions made to the stream, including retries",
		}),
		RecordsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "records_failed_total",
			Help:      "Records rejected by the stream in a single submission",
		}),
		RecordsUnresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "records_unresolved_total",
			Help:      "Records still failing after the retry budget was spent",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "duration_seconds",
			Help:      "Time spent publishing one request, retries included",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Requests,
			m.EventsReceived,
			m.PublishAttempts,
			m.RecordsFailed,
			m.RecordsUnresolved,
			m.PublishDuration,
		)
	}
	return m
}
