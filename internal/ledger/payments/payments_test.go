package payments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

func TestMetadataRoundTrip(t *testing.T) {
	m := Metadata{UserID: "u1", Plan: PlanLongPack, Credits: 25, LongLived: true}
	raw := m.Map()
	require.Equal(t, "long_pack", raw[MetaPlan])
	require.Equal(t, "25", raw[MetaCredits])

	got, err := ParseMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestParseMetadata(t *testing.T) {
	got, err := ParseMetadata(map[string]string{"credits": "10", "plan": "pack", "user_id": "u1"})
	require.NoError(t, err)
	require.EqualValues(t, 10, got.Credits)
	require.Equal(t, PlanPack, got.Plan)

	got, err = ParseMetadata(map[string]string{"kind": "seats", "seats": "2", "company_id": "c1"})
	require.NoError(t, err)
	require.Equal(t, PlanSeats, got.Plan)
	require.Equal(t, 2, got.Seats)

	_, err = ParseMetadata(map[string]string{"credits": "ten"})
	require.ErrorIs(t, err, ErrInvalidMetadata)
	_, err = ParseMetadata(map[string]string{"credits": "-1"})
	require.ErrorIs(t, err, ErrInvalidMetadata)
	_, err = ParseMetadata(map[string]string{"long_lived": "maybe"})
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func signedEvent(t *testing.T, secret string, event map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	s := &Stripe{WebhookSecret: secret}

	payload, header := signedEvent(t, secret, map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": "2020-08-27",
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_123",
				"object":         "checkout.session",
				"payment_status": "paid",
				"customer":       "cus_1",
				"payment_link":   "plink_1",
				"metadata":       map[string]string{"user_id": "u1", "credits": "10", "plan": "pack"},
			},
		},
	})

	ev, err := s.ParseWebhook(payload, header)
	require.NoError(t, err)
	require.Equal(t, EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Session)
	require.Equal(t, "cs_test_123", ev.Session.ID)
	require.True(t, ev.Session.Paid)
	require.Equal(t, "cus_1", ev.Session.CustomerID)
	require.Equal(t, "plink_1", ev.Session.PaymentLinkID)
	require.Equal(t, "10", ev.Session.Metadata["credits"])

	_, err = s.ParseWebhook(payload, "t=1,v1=deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookIgnoresOtherEvents(t *testing.T) {
	const secret = "whsec_test"
	s := &Stripe{WebhookSecret: secret}

	payload, header := signedEvent(t, secret, map[string]any{
		"id":     "evt_2",
		"object": "event",
		"type":   "customer.created",
		"data":   map[string]any{"object": map[string]any{"id": "cus_1", "object": "customer"}},
	})

	ev, err := s.ParseWebhook(payload, header)
	require.NoError(t, err)
	require.Equal(t, "customer.created", ev.Type)
	require.Nil(t, ev.Session)
}
