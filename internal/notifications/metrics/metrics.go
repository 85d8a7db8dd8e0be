package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Emitted  *prometheus.CounterVec
	Failures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_notifications_emitted_total",
			Help: "Notifications persisted, by event and recipient kind",
		}, []string{"event", "recipient_kind"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_notification_failures_total",
			Help: "Notifications dropped because the store rejected them",
		}, []string{"event"}),
	}
}

func (m *Metrics) IncEmitted(event, kind string) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(event, kind).Inc()
}

func (m *Metrics) IncFailure(event string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(event).Inc()
}
