package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// Offer is what one checkout plan sells.
type Offer struct {
	PriceID string
	Credits int64

	// TTL is how long granted credits stay spendable. Zero means no expiry.
	TTL time.Duration
}

// Catalog maps checkout plans to offers.
type Catalog map[payments.Plan]Offer

// ReconcileResult describes what a paid session did to the ledger.
type ReconcileResult struct {
	SessionID        string
	Plan             payments.Plan
	CreditsAdded     int64
	SeatsAdded       int
	AlreadyProcessed bool
	Balance          Balance
}

// BillingService creates checkout sessions and deposit links and reconciles
// their outcomes into the ledger.
type BillingService struct {
	Store     store.Store
	Processor payments.Processor
	Notifier  notify.Sender
	Metrics   *metrics.Metrics
	Catalog   Catalog

	PublicBaseURL string

	Now func() time.Time
}

func (s *BillingService) url(path string) string {
	return strings.TrimRight(s.PublicBaseURL, "/") + path
}

// CreateCheckout starts a checkout for plan. seats is only read for the
// seats plan, which requires the caller to manage a company.
func (s *BillingService) CreateCheckout(
	ctx context.Context,
	userID string,
	plan payments.Plan,
	seats int,
) (payments.CheckoutSession, error) {
	log := slogx.FromContext(ctx)

	offer, ok := s.Catalog[plan]
	if !plan.Valid() || !ok || offer.PriceID == "" {
		return payments.CheckoutSession{}, domain.ErrInvalidInput
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return payments.CheckoutSession{}, notFound(err)
	}

	meta := payments.Metadata{
		UserID:    userID,
		Plan:      plan,
		Credits:   offer.Credits,
		LongLived: plan == payments.PlanLongPack,
	}
	quantity := int64(1)

	if plan == payments.PlanSeats {
		if seats <= 0 {
			return payments.CheckoutSession{}, domain.ErrInvalidInput
		}
		m, err := s.Store.Memberships().GetMembershipByUserID(ctx, userID)
		if err != nil {
			return payments.CheckoutSession{}, notFound(err)
		}
		if !m.Role.CanManage() {
			return payments.CheckoutSession{}, domain.ErrForbidden
		}
		meta.Credits = 0
		meta.CompanyID = m.CompanyID
		meta.Seats = seats
		quantity = int64(seats)
	}

	customerID := u.ProcessorCustomerID
	if customerID == "" {
		customerID, err = s.Processor.CreateCustomer(ctx, u.ID, u.Email, u.Name)
		if err != nil {
			log.Error("failed to create processor customer", slog.Any("error", err))
			return payments.CheckoutSession{}, err
		}
		if err := s.Store.Users().SetProcessorCustomerID(ctx, u.ID, customerID); err != nil {
			return payments.CheckoutSession{}, notFound(err)
		}
	}

	sess, err := s.Processor.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    offer.PriceID,
		Quantity:   quantity,
		Plan:       plan,
		SuccessURL: s.url("/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  s.url("/billing/cancel"),
		Metadata:   meta,
	})
	if err != nil {
		log.Error("failed to create checkout session", slog.String("plan", string(plan)), slog.Any("error", err))
		return payments.CheckoutSession{}, err
	}

	log.Info("checkout session created",
		slog.String("session_id", sess.ID),
		slog.String("plan", string(plan)),
	)
	return sess, nil
}

// ReconcileSession applies a paid session for its owner. It is safe to call
// any number of times; the session id is the idempotency key.
func (s *BillingService) ReconcileSession(ctx context.Context, sessionID, userID string) (ReconcileResult, error) {
	sess, err := s.Processor.RetrieveSession(ctx, sessionID)
	if errors.Is(err, payments.ErrSessionNotFound) {
		return ReconcileResult{}, domain.ErrNotFound
	}
	if err != nil {
		return ReconcileResult{}, err
	}

	meta, err := payments.ParseMetadata(sess.Metadata)
	if err != nil {
		return ReconcileResult{}, domain.ErrInvalidInput
	}
	if meta.UserID != userID {
		return ReconcileResult{}, domain.ErrForbidden
	}
	if !sess.Paid {
		return ReconcileResult{}, domain.ErrPaymentIncomplete
	}

	return s.applySession(ctx, sess, meta, userID)
}

// HandleWebhook verifies and applies a processor notification. Events the
// ledger does not act on are acknowledged and ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := slogx.FromContext(ctx)

	ev, err := s.Processor.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn("webhook rejected", slog.Any("error", err))
		s.Metrics.WebhookEvent("unknown", "rejected")
		return domain.ErrInvalidSignature
	}
	log = log.With(slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))

	if ev.Type != payments.EventCheckoutCompleted || ev.Session == nil {
		s.Metrics.WebhookEvent(ev.Type, "ignored")
		return nil
	}
	sess := *ev.Session
	if !sess.Paid {
		// Delayed payment methods complete later with another event.
		s.Metrics.WebhookEvent(ev.Type, "unpaid")
		return nil
	}

	meta, err := payments.ParseMetadata(sess.Metadata)
	if err != nil {
		log.Error("webhook session has malformed metadata", slog.String("session_id", sess.ID))
		s.Metrics.WebhookEvent(ev.Type, "invalid")
		return nil
	}

	if sess.PaymentLinkID != "" || meta.ProposalID != "" {
		if err := s.markDepositPaid(ctx, sess, meta); err != nil {
			s.Metrics.WebhookEvent(ev.Type, "error")
			return err
		}
		s.Metrics.WebhookEvent(ev.Type, "deposit")
		return nil
	}

	if meta.UserID == "" {
		log.Warn("webhook session has no user", slog.String("session_id", sess.ID))
		s.Metrics.WebhookEvent(ev.Type, "ignored")
		return nil
	}

	res, err := s.applySession(ctx, sess, meta, domain.SystemActor)
	if err != nil {
		s.Metrics.WebhookEvent(ev.Type, "error")
		return err
	}
	outcome := "applied"
	if res.AlreadyProcessed {
		outcome = "duplicate"
	}
	s.Metrics.WebhookEvent(ev.Type, outcome)
	return nil
}

func (s *BillingService) expiryFor(meta payments.Metadata, now time.Time) *time.Time {
	plan := meta.Plan
	if meta.LongLived {
		plan = payments.PlanLongPack
	}
	ttl := s.Catalog[plan].TTL
	if ttl <= 0 {
		return nil
	}
	exp := now.Add(ttl)
	return &exp
}

// applySession writes the effect of a paid session in one transaction.
func (s *BillingService) applySession(
	ctx context.Context,
	sess payments.Session,
	meta payments.Metadata,
	actorID string,
) (ReconcileResult, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	res := ReconcileResult{SessionID: sess.ID, Plan: meta.Plan}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if meta.Plan == payments.PlanSeats {
			return s.applySeats(ctx, tx, sess, meta, actorID, now, &res)
		}

		if meta.Credits <= 0 {
			return domain.ErrInvalidInput
		}
		g, err := grantTx(ctx, tx, GrantRequest{
			UserID:     meta.UserID,
			Credits:    meta.Credits,
			ExpiresAt:  s.expiryFor(meta, now),
			ExternalID: sess.ID,
			Source:     domain.GrantSourcePayment,
			ActorID:    actorID,
			Reason:     fmt.Sprintf("checkout %s (%s)", meta.Plan, sess.ID),
		}, now)
		if err != nil {
			return err
		}
		res.CreditsAdded = g.CreditsAdded
		res.AlreadyProcessed = g.AlreadyProcessed
		res.Balance = g.Balance

		if !g.AlreadyProcessed && meta.Plan.Subscription() {
			if err := tx.Users().SetPlan(ctx, meta.UserID, domain.Plan(meta.Plan)); err != nil {
				return notFound(err)
			}
		}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if meta.Plan != payments.PlanSeats {
		recordGrant(s.Metrics, domain.GrantSourcePayment, GrantResult{
			CreditsAdded:     res.CreditsAdded,
			AlreadyProcessed: res.AlreadyProcessed,
		})
	}
	log.Info("payment session reconciled",
		slog.String("session_id", sess.ID),
		slog.String("plan", string(meta.Plan)),
		slog.Int64("credits_added", res.CreditsAdded),
		slog.Int("seats_added", res.SeatsAdded),
		slog.Bool("already_processed", res.AlreadyProcessed),
	)
	return res, nil
}

func (s *BillingService) applySeats(
	ctx context.Context,
	tx store.Store,
	sess payments.Session,
	meta payments.Metadata,
	actorID string,
	now time.Time,
	res *ReconcileResult,
) error {
	if meta.CompanyID == "" || meta.Seats <= 0 {
		return domain.ErrInvalidInput
	}

	inserted, err := tx.SeatPurchases().InsertSeatPurchase(ctx, domain.SeatPurchase{
		ID:         idx.NewAt(now).String(),
		ExternalID: sess.ID,
		CompanyID:  meta.CompanyID,
		Seats:      meta.Seats,
		CreatedAt:  now,
	})
	if err != nil {
		return err
	}
	if !inserted {
		res.AlreadyProcessed = true
		return nil
	}

	if err := tx.Companies().AddExtraSeats(ctx, meta.CompanyID, meta.Seats, now); err != nil {
		return notFound(err)
	}
	res.SeatsAdded = meta.Seats

	reason := "purchased " + strconv.Itoa(meta.Seats) + " seats for company " + meta.CompanyID + " (" + sess.ID + ")"
	return appendAudit(ctx, tx, actorID, meta.UserID, domain.AuditSeatPurchase, reason, "", now)
}

// CreateDepositLink issues a payment link for pct of the proposal's price
// midpoint. Any earlier link is deactivated first; that step is best-effort.
// When a concurrent call stores its link first, ours is deactivated and the
// proposal is returned with the winning link.
func (s *BillingService) CreateDepositLink(
	ctx context.Context,
	proposalID, userID string,
	pct int,
) (domain.Proposal, error) {
	log := slogx.FromContext(ctx)

	p, err := ownedProposal(ctx, s.Store, proposalID, userID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if p.PaymentStatus == domain.PaymentPaid {
		return domain.Proposal{}, domain.ErrInvalidTransition
	}

	amount, err := domain.DepositAmountCents(p.PriceLowCents, p.PriceHighCents, pct)
	if err != nil {
		return domain.Proposal{}, err
	}
	if amount <= 0 {
		return domain.Proposal{}, domain.ErrInvalidInput
	}

	if p.PaymentLinkID != "" {
		s.deactivate(ctx, p.PaymentLinkID)
	}

	link, err := s.Processor.CreatePaymentLink(ctx, payments.PaymentLinkRequest{
		AmountCents: amount,
		Currency:    p.Currency,
		ProductName: fmt.Sprintf("%d%% deposit: %s", pct, p.Title),
		Metadata:    payments.Metadata{UserID: userID, ProposalID: p.ID},
	})
	if err != nil {
		log.Error("failed to create payment link", slog.String("proposal_id", p.ID), slog.Any("error", err))
		return domain.Proposal{}, err
	}

	// The link only lands on the proposal state it was priced from.
	err = s.Store.Proposals().SetDepositLink(ctx, p.ID, p.PaymentLinkID, link.ID, link.URL, pct, amount, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		s.deactivate(ctx, link.ID)
		cur, err := ownedProposal(ctx, s.Store, proposalID, userID)
		if err != nil {
			return domain.Proposal{}, err
		}
		if cur.PaymentStatus == domain.PaymentPaid {
			return domain.Proposal{}, domain.ErrInvalidTransition
		}
		// A concurrent request replaced the link first; its link stands.
		log.Info("deposit link superseded concurrently",
			slog.String("proposal_id", p.ID),
			slog.String("payment_link_id", cur.PaymentLinkID),
		)
		return cur, nil
	}
	if err != nil {
		s.deactivate(ctx, link.ID)
		return domain.Proposal{}, err
	}

	log.Info("deposit link created",
		slog.String("proposal_id", p.ID),
		slog.String("payment_link_id", link.ID),
		slog.Int("deposit_percentage", pct),
		slog.Int64("deposit_amount_cents", amount),
	)
	return ownedProposal(ctx, s.Store, proposalID, userID)
}

func (s *BillingService) deactivate(ctx context.Context, linkID string) {
	if err := s.Processor.DeactivatePaymentLink(ctx, linkID); err != nil {
		slogx.FromContext(ctx).Warn("failed to deactivate payment link",
			slog.String("payment_link_id", linkID),
			slog.Any("error", err),
		)
	}
}

// markDepositPaid flips the proposal's payment status. Repeat deliveries and
// payments on superseded links are no-ops.
func (s *BillingService) markDepositPaid(ctx context.Context, sess payments.Session, meta payments.Metadata) error {
	log := slogx.FromContext(ctx)

	var (
		p   domain.Proposal
		err error
	)
	if sess.PaymentLinkID != "" {
		p, err = s.Store.Proposals().GetProposalByPaymentLinkID(ctx, sess.PaymentLinkID)
	} else {
		p, err = s.Store.Proposals().GetProposalByID(ctx, meta.ProposalID)
	}
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("deposit payment for unknown or superseded link",
			slog.String("session_id", sess.ID),
			slog.String("payment_link_id", sess.PaymentLinkID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	err = s.Store.Proposals().MarkPaid(ctx, p.ID, clock(s.Now))
	if errors.Is(err, store.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("deposit paid", slog.String("proposal_id", p.ID), slog.String("session_id", sess.ID))
	if owner, err := s.Store.Users().GetUserByID(ctx, p.UserID); err == nil {
		deliver(ctx, s.Notifier, s.Metrics, notify.Message{
			Kind:      notify.KindDepositPaid,
			Recipient: owner.Email,
			Data: map[string]string{
				"proposal_id":          p.ID,
				"title":                p.Title,
				"deposit_amount_cents": strconv.FormatInt(p.DepositAmountCents, 10),
				"currency":             p.Currency,
			},
		})
	}
	return nil
}
