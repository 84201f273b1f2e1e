package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application wizard: draft activity,
// step-gate refusals, and the submission pipeline.
type Metrics struct {
	DraftsSaved        prometheus.Counter
	GateRefusals       *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	SubmitAttempts     prometheus.Counter
	Decisions          *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
	NotificationsSent  *prometheus.CounterVec
	NotificationErrors prometheus.Counter
}

// New creates a Metrics instance with all application module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentportal_drafts_saved_total",
			Help: "Total number of draft checkpoints written",
		}),
		GateRefusals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentportal_gate_refusals_total",
			Help: "Step-gate refusals by wizard step",
		}, []string{"step"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentportal_submissions_total",
			Help: "Submission outcomes",
		}, []string{"outcome"}),
		SubmitAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentportal_submit_attempts_total",
			Help: "Individual persistence attempts inside the submit retry loop",
		}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentportal_decisions_total",
			Help: "Admin decisions by resulting status",
		}, []string{"status"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentportal_submit_duration_seconds",
			Help:    "Duration of the submit pipeline including retries",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentportal_notifications_sent_total",
			Help: "Notifications delivered by kind",
		}, []string{"kind"}),
		NotificationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentportal_notification_errors_total",
			Help: "Notification deliveries that failed",
		}),
	}
}

// RecordGateRefusal counts a validation refusal at the named step.
func (m *Metrics) RecordGateRefusal(step string) {
	m.GateRefusals.WithLabelValues(step).Inc()
}

// RecordSubmission counts a submission outcome (accepted, conflict, failed).
func (m *Metrics) RecordSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// RecordDecision counts an admin decision by resulting status.
func (m *Metrics) RecordDecision(status string) {
	m.Decisions.WithLabelValues(status).Inc()
}

// RecordNotification counts a delivery attempt result for the given kind.
func (m *Metrics) RecordNotification(kind string, err error) {
	if err != nil {
		m.NotificationErrors.Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(kind).Inc()
}
