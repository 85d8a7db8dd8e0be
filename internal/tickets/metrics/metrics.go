package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions   *prometheus.CounterVec
	ManualCreated *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_ticket_transitions_total",
			Help: "Ticket status transitions by target status",
		}, []string{"status"}),
		ManualCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_tickets_manual_total",
			Help: "Manually created tickets by category",
		}, []string{"category"}),
	}
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncManual(category string) {
	if m == nil {
		return
	}
	m.ManualCreated.WithLabelValues(category).Inc()
}
