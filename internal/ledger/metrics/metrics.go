// Package metrics exposes Prometheus counters for ledger events. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledger"

type Metrics struct {
	creditsGranted  *prometheus.CounterVec
	creditsDebited  prometheus.Counter
	duplicateGrants *prometheus.CounterVec
	debitsRejected  prometheus.Counter
	unlocks         prometheus.Counter
	transitions     *prometheus.CounterVec
	seatRejections  prometheus.Counter
	notifyFailures  *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
}

// New registers the ledger collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		creditsGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_granted_total",
			Help:      "Credits added to user balances.",
		}, []string{"source"}),
		creditsDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_debited_total",
			Help:      "Credits consumed by unlocks.",
		}),
		duplicateGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_grants_total",
			Help:      "Grant requests collapsed by the idempotency key.",
		}, []string{"source"}),
		debitsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debits_rejected_total",
			Help:      "Debits refused for insufficient or expired credit.",
		}),
		unlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposal_unlocks_total",
			Help:      "Proposals unlocked.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposal_transitions_total",
			Help:      "Proposal status transitions by target status.",
		}, []string{"to"}),
		seatRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_limit_rejections_total",
			Help:      "Invites or acceptances refused because the company was full.",
		}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Best-effort notifications that failed to deliver.",
		}, []string{"kind"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Payment processor webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
	}

	reg.MustRegister(
		m.creditsGranted, m.creditsDebited, m.duplicateGrants, m.debitsRejected,
		m.unlocks, m.transitions, m.seatRejections, m.notifyFailures, m.webhookEvents,
	)
	return m
}

func (m *Metrics) CreditsGranted(source string, n int64) {
	if m == nil {
		return
	}
	m.creditsGranted.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) DuplicateGrant(source string) {
	if m == nil {
		return
	}
	m.duplicateGrants.WithLabelValues(source).Inc()
}

func (m *Metrics) CreditsDebited(n int64) {
	if m == nil {
		return
	}
	m.creditsDebited.Add(float64(n))
}

func (m *Metrics) DebitRejected() {
	if m == nil {
		return
	}
	m.debitsRejected.Inc()
}

func (m *Metrics) Unlocked() {
	if m == nil {
		return
	}
	m.unlocks.Inc()
}

func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) SeatRejected() {
	if m == nil {
		return
	}
	m.seatRejections.Inc()
}

func (m *Metrics) NotifyFailed(kind string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}
