package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.CreditsGranted("payment", 10)
		m.DuplicateGrant("payment")
		m.CreditsDebited(1)
		m.DebitRejected()
		m.Unlocked()
		m.Transition("accepted")
		m.SeatRejected()
		m.NotifyFailed("proposal.sent")
		m.WebhookEvent("checkout.session.completed", "applied")
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CreditsGranted("payment", 10)
	m.CreditsGranted("payment", 5)
	m.DuplicateGrant("payment")
	m.Transition("accepted")

	require.InDelta(t, 15, testutil.ToFloat64(m.creditsGranted.WithLabelValues("payment")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.duplicateGrants.WithLabelValues("payment")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.transitions.WithLabelValues("accepted")), 0)
}
