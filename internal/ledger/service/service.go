// Package service implements the ledger operations on top of the store.
// Every invariant that must hold under concurrency is expressed as a
// conditional write in the store; services only sequence those writes
// inside transactions and translate store failures into domain errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// clock returns now() in UTC, falling back to the wall clock.
func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

// notFound maps store.ErrNotFound to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// ownedProposal loads a proposal and hides it from anyone but its owner.
func ownedProposal(ctx context.Context, st store.Store, id, userID string) (domain.Proposal, error) {
	p, err := st.Proposals().GetProposalByID(ctx, id)
	if err != nil {
		return domain.Proposal{}, notFound(err)
	}
	if p.UserID != userID {
		return domain.Proposal{}, domain.ErrNotFound
	}
	return p, nil
}

// appendAudit writes an audit entry. Always called with the same tx as the
// mutation it describes.
func appendAudit(
	ctx context.Context,
	st store.Store,
	actorID, targetUserID, action, reason, ip string,
	now time.Time,
) error {
	return st.AuditLogs().AppendAuditLog(ctx, domain.AuditLogEntry{
		ID:           idx.NewAt(now).String(),
		ActorID:      actorID,
		TargetUserID: targetUserID,
		Action:       action,
		Reason:       reason,
		IPAddress:    ip,
		CreatedAt:    now,
	})
}

// deliver sends a best-effort notification. Failures are logged and counted,
// never returned.
func deliver(ctx context.Context, sender notify.Sender, m *metrics.Metrics, msg notify.Message) {
	if sender == nil || msg.Recipient == "" {
		return
	}
	if err := sender.Send(ctx, msg); err != nil {
		slogx.FromContext(ctx).Warn("notification failed",
			slog.String("kind", string(msg.Kind)),
			slog.Any("error", err),
		)
		m.NotifyFailed(string(msg.Kind))
	}
}
