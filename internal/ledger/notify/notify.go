// Package notify delivers proposal notifications. Rendering and transport of
// the actual email live in a separate mailer; this package only hands off
// {kind, recipient, data} messages.
package notify

import (
	"context"
	"log/slog"
)

type Kind string

const (
	KindProposalSent          Kind = "proposal.sent"
	KindProposalAccepted      Kind = "proposal.accepted"
	KindProposalCountersigned Kind = "proposal.countersigned"
	KindDepositPaid           Kind = "proposal.deposit_paid"
	KindTeamInvite            Kind = "team.invite"
)

// Message is the payload handed to a Sender.
type Message struct {
	Kind      Kind              `json:"kind"`
	Recipient string            `json:"recipient"`
	Data      map[string]string `json:"data,omitempty"`
}

// Sender delivers a message. Callers treat failures as best-effort.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. Used in
// development and when no topic is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "notification",
		slog.String("kind", string(msg.Kind)),
		slog.String("recipient", msg.Recipient),
		slog.Int("fields", len(msg.Data)),
	)
	return nil
}
