package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the notification jobs. A nil
// *Metrics disables collection.
type Metrics struct {
	// NotificationsTotal counts processed users per job kind and outcome.
	NotificationsTotal *prometheus.CounterVec

	// JourneyRequests counts journey planning attempts by result.
	JourneyRequests *prometheus.CounterVec

	// SendDuration is the time to render and deliver one email.
	SendDuration prometheus.Histogram
}

// NewMetrics creates and registers Prometheus metrics for the notifier.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Users processed by the reminder jobs",
			},
			[]string{"kind", "outcome"},
		),

		JourneyRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journey_requests_total",
				Help:      "Journey planning attempts by result",
			},
			[]string{"result"},
		),

		SendDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "send_duration_seconds",
				Help:      "Time to render and deliver one email",
				Buckets:   []float64{.05, .1, .5, 1, 2, 5, 10},
			},
		),
	}
}

func (m *Metrics) IncOutcome(kind, outcome string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncJourney(result string) {
	if m == nil {
		return
	}
	m.JourneyRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSend(seconds float64) {
	if m == nil {
		return
	}
	m.SendDuration.Observe(seconds)
}
