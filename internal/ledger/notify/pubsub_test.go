package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/require"
)

func TestNewPubSubSenderRequiresTopic(t *testing.T) {
	_, err := NewPubSubSender(context.Background(), "proj", "")
	require.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	err := s.Send(context.Background(), Message{Kind: KindProposalSent, Recipient: "pat@example.com"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"kind":"proposal.sent"`)
}

func TestPubSubSenderWithEmulator(t *testing.T) {
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	s, err := NewPubSubSender(ctx, "test-project", "ledger-notifications")
	require.NoError(t, err)
	defer s.Close()

	topic, err := s.client.CreateTopic(ctx, "ledger-notifications")
	require.NoError(t, err)
	sub, err := s.client.CreateSubscription(ctx, "ledger-notifications-sub", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	msg := Message{Kind: KindProposalAccepted, Recipient: "owner@example.com", Data: map[string]string{"title": "Deck"}}
	require.NoError(t, s.Send(ctx, msg))

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	got := make(chan []byte, 1)
	_ = sub.Receive(recvCtx, func(_ context.Context, m *pubsub.Message) {
		m.Ack()
		got <- m.Data
		cancel()
	})

	select {
	case data := <-got:
		var decoded Message
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, msg, decoded)
	default:
		t.Fatal("no message received")
	}
}
