// Package metrics holds the prometheus collectors for membership and
// invitation activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "farmstead"

type Metrics struct {
	invitations *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	anomalies   *prometheus.CounterVec
	planChanges *prometheus.CounterVec
	removals    prometheus.Counter
	swept       prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		invitations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitation_transitions_total",
			Help:      "Invitations created or moved to a terminal status.",
		}, []string{"status"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_rejections_total",
			Help:      "Membership operations rejected, by operation and error kind.",
		}, []string{"operation", "kind"}),
		anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_anomalies_total",
			Help:      "Referential integrity problems degraded during identity resolution.",
		}, []string{"anomaly"}),
		planChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_changes_total",
			Help:      "Plan change events by source and outcome.",
		}, []string{"source", "outcome"}),
		removals: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staff_removals_total",
			Help:      "Staff members removed from a farm.",
		}),
		swept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_swept_total",
			Help:      "Expired pending invitations flipped to expired by the sweeper.",
		}),
	}
}

func (m *Metrics) InvitationTransition(status string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(status).Inc()
}

func (m *Metrics) Rejected(operation, kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) Anomaly(name string) {
	if m == nil {
		return
	}
	m.anomalies.WithLabelValues(name).Inc()
}

func (m *Metrics) PlanChange(source, outcome string) {
	if m == nil {
		return
	}
	m.planChanges.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) StaffRemoved() {
	if m == nil {
		return
	}
	m.removals.Inc()
}

func (m *Metrics) Swept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}
