package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// Balance is a user's credit position at a point in time.
type Balance struct {
	// Credits is the stored integer. It is left alone when it expires.
	Credits   int64
	Effective int64
	ExpiresAt *time.Time
}

func balanceOf(u domain.User, now time.Time) Balance {
	return Balance{
		Credits:   u.ProposalCredits,
		Effective: u.EffectiveCredits(now),
		ExpiresAt: u.CreditsExpireAt,
	}
}

type GrantRequest struct {
	UserID     string
	Credits    int64
	ExpiresAt  *time.Time
	ExternalID string
	Source     string

	// ActorID, when set, records the grant in the audit log.
	ActorID   string
	Reason    string
	IPAddress string
}

type GrantResult struct {
	CreditsAdded     int64
	AlreadyProcessed bool
	Balance          Balance
}

// CreditService is the credit ledger.
type CreditService struct {
	Store   store.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Grant applies credits once per external id. A repeated external id
// returns the current balance with AlreadyProcessed set.
func (s *CreditService) Grant(ctx context.Context, req GrantRequest) (GrantResult, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var res GrantResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		res, err = grantTx(ctx, tx, req, now)
		return err
	})
	if err != nil {
		return GrantResult{}, err
	}

	recordGrant(s.Metrics, req.Source, res)
	log.Info("credit grant",
		slog.String("user_id", req.UserID),
		slog.String("external_id", req.ExternalID),
		slog.Int64("credits_added", res.CreditsAdded),
		slog.Bool("already_processed", res.AlreadyProcessed),
	)
	return res, nil
}

func recordGrant(m *metrics.Metrics, source string, res GrantResult) {
	if res.AlreadyProcessed {
		m.DuplicateGrant(source)
		return
	}
	m.CreditsGranted(source, res.CreditsAdded)
}

// grantTx is the body of Grant for callers that already hold a transaction.
// The unique external id on credit_grants is the idempotency boundary.
func grantTx(ctx context.Context, tx store.Store, req GrantRequest, now time.Time) (GrantResult, error) {
	if req.UserID == "" || req.ExternalID == "" || req.Credits <= 0 {
		return GrantResult{}, domain.ErrInvalidInput
	}

	if _, err := tx.Users().GetUserByID(ctx, req.UserID); err != nil {
		return GrantResult{}, notFound(err)
	}

	inserted, err := tx.CreditGrants().InsertGrant(ctx, domain.CreditGrant{
		ID:         idx.NewAt(now).String(),
		ExternalID: req.ExternalID,
		UserID:     req.UserID,
		Credits:    req.Credits,
		ExpiresAt:  req.ExpiresAt,
		Source:     req.Source,
		CreatedAt:  now,
	})
	if err != nil {
		return GrantResult{}, err
	}

	res := GrantResult{AlreadyProcessed: !inserted}
	if inserted {
		if err := tx.Users().AddCredits(ctx, req.UserID, req.Credits, req.ExpiresAt, now); err != nil {
			return GrantResult{}, notFound(err)
		}
		res.CreditsAdded = req.Credits

		if req.ActorID != "" {
			reason := req.Reason
			if reason == "" {
				reason = req.Source + " grant of " + strconv.FormatInt(req.Credits, 10) + " (" + req.ExternalID + ")"
			}
			if err := appendAudit(ctx, tx, req.ActorID, req.UserID, domain.AuditCreditGrant, reason, req.IPAddress, now); err != nil {
				return GrantResult{}, err
			}
		}
	}

	u, err := tx.Users().GetUserByID(ctx, req.UserID)
	if err != nil {
		return GrantResult{}, notFound(err)
	}
	res.Balance = balanceOf(u, now)
	return res, nil
}

// Debit consumes amount credits or fails with ErrInsufficientCredit.
func (s *CreditService) Debit(ctx context.Context, userID string, amount int64) (Balance, error) {
	now := clock(s.Now)

	var bal Balance
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := debitTx(ctx, tx, userID, amount, now); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return notFound(err)
		}
		bal = balanceOf(u, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredit) {
			s.Metrics.DebitRejected()
		}
		return Balance{}, err
	}

	s.Metrics.CreditsDebited(amount)
	return bal, nil
}

// debitTx is a single conditional update; it never reads the balance first.
func debitTx(ctx context.Context, tx store.Store, userID string, amount int64, now time.Time) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}

	err := tx.Users().DebitCredits(ctx, userID, amount, now)
	if errors.Is(err, store.ErrConflict) {
		// Distinguish a missing user from an empty or expired balance.
		if _, err := tx.Users().GetUserByID(ctx, userID); err != nil {
			return notFound(err)
		}
		return domain.ErrInsufficientCredit
	}
	return err
}

// Balance reads the user's balance, treating an expired one as zero.
func (s *CreditService) Balance(ctx context.Context, userID string) (Balance, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return Balance{}, notFound(err)
	}
	return balanceOf(u, clock(s.Now)), nil
}
