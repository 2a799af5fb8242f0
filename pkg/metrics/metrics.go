package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Queue state machine
	TransitionsTotal    *prometheus.CounterVec
	TransitionConflicts *prometheus.CounterVec
	TransitionDenied    *prometheus.CounterVec
	TransitionLatency   prometheus.Histogram
	ActiveQueueSize     prometheus.Gauge

	// Attendance sessions
	SessionsOpened   prometheus.Counter
	SessionsClosed   prometheus.Counter
	BillingRecords   prometheus.Counter
	SideEffectErrors *prometheus.CounterVec

	// Display feed
	FeedRefreshes prometheus.Counter
	NewCallEvents prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "room_transitions_total",
			Help:      "Room status transitions, labelled by room and target status",
		}, []string{"room", "to"}),
		TransitionConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "room_transition_conflicts_total",
			Help:      "Transitions rejected by the concurrency invariants",
		}, []string{"room"}),
		TransitionDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "room_transition_denied_total",
			Help:      "Transitions rejected by the access policy",
		}, []string{"room"}),
		TransitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "room_transition_duration_seconds",
			Help:      "Time spent applying a room transition and its side effects",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		ActiveQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_queue_size",
			Help:      "Visits currently in the active queue projection",
		}),
		SessionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attendance_sessions_opened_total",
			Help:      "Attendance sessions opened",
		}),
		SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "attendance_sessions_closed_total",
			Help:      "Attendance sessions closed",
		}),
		BillingRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "billing_records_created_total",
			Help:      "Placeholder billing records created on session close",
		}),
		SideEffectErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "side_effect_errors_total",
			Help:      "Best-effort side effects that failed after a committed transition",
		}, []string{"effect"}),
		FeedRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "display_feed_refreshes_total",
			Help:      "Call display feed refresh cycles",
		}),
		NewCallEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "display_new_call_events_total",
			Help:      "New-call events published to the display surface",
		}),
	}
}
