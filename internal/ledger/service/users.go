package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// UserService provisions ledger users for identity-provider subjects.
type UserService struct {
	Store   store.Store
	Metrics *metrics.Metrics

	// SignupCredits is the free allowance granted once per user.
	SignupCredits int64

	Now func() time.Time
}

// EnsureUser returns the user, creating it and applying the signup grant on
// first sight. Concurrent first requests converge on the same row and grant.
// An existing user whose signup grant never landed gets it on the next call.
func (s *UserService) EnsureUser(ctx context.Context, id, email, name string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrInvalidInput
	}

	u, err := s.Store.Users().GetUserByID(ctx, id)
	switch {
	case err == nil:
		granted, err := s.signupGranted(ctx, id)
		if err != nil || granted {
			return u, err
		}
	case errors.Is(err, store.ErrNotFound):
		now := clock(s.Now)
		err = s.Store.Users().CreateUser(ctx, domain.User{
			ID:        id,
			Email:     strings.ToLower(strings.TrimSpace(email)),
			Name:      strings.TrimSpace(name),
			Plan:      domain.PlanFree,
			Role:      domain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, err
		}
		if err == nil {
			slogx.FromContext(ctx).Info("user provisioned", slog.String("user_id", id))
		}
	default:
		return domain.User{}, err
	}

	if s.SignupCredits > 0 {
		credits := CreditService{Store: s.Store, Metrics: s.Metrics, Now: s.Now}
		if _, err := credits.Grant(ctx, GrantRequest{
			UserID:     id,
			Credits:    s.SignupCredits,
			ExternalID: signupGrantID(id),
			Source:     domain.GrantSourceSignup,
		}); err != nil {
			return domain.User{}, err
		}
	}
	return s.Get(ctx, id)
}

func signupGrantID(userID string) string { return "signup:" + userID }

// signupGranted reports whether the signup allowance is settled for userID.
func (s *UserService) signupGranted(ctx context.Context, userID string) (bool, error) {
	if s.SignupCredits <= 0 {
		return true, nil
	}
	_, err := s.Store.CreditGrants().GetGrantByExternalID(ctx, signupGrantID(userID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, notFound(err)
}
