package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers check-in processing and plan lifecycle.
type Metrics struct {
	CheckInsAccepted *prometheus.CounterVec
	CheckInsRejected *prometheus.CounterVec
	DuplicateRetries prometheus.Counter
	TicketsGenerated *prometheus.CounterVec
	PlansClosed      *prometheus.CounterVec
	SubmitLatency    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CheckInsAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_checkins_accepted_total",
			Help: "Accepted check-ins by resulting risk tier",
		}, []string{"tier"}),
		CheckInsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_checkins_rejected_total",
			Help: "Rejected check-ins by error code",
		}, []string{"code"}),
		DuplicateRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "safereturn_checkin_duplicate_retries_total",
			Help: "Submissions retried after losing a (profile, month) uniqueness race",
		}),
		TicketsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_tickets_generated_total",
			Help: "Auto-generated support tickets by category",
		}, []string{"category"}),
		PlansClosed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safereturn_plans_closed_total",
			Help: "Follow-up plans leaving the active state, by final status",
		}, []string{"status"}),
		SubmitLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "safereturn_checkin_submit_duration_seconds",
			Help:    "Time to process a check-in submission",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncAccepted(tier string) {
	if m == nil {
		return
	}
	m.CheckInsAccepted.WithLabelValues(tier).Inc()
}

func (m *Metrics) IncRejected(code string) {
	if m == nil {
		return
	}
	m.CheckInsRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) IncDuplicateRetry() {
	if m == nil {
		return
	}
	m.DuplicateRetries.Inc()
}

func (m *Metrics) IncTicket(category string) {
	if m == nil {
		return
	}
	m.TicketsGenerated.WithLabelValues(category).Inc()
}

func (m *Metrics) IncPlanClosed(status string) {
	if m == nil {
		return
	}
	m.PlansClosed.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitLatency.Observe(time.Since(start).Seconds())
}
