package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// AdminService holds the privileged mutations. Every change it makes is
// written together with its audit entry.
type AdminService struct {
	Store   store.Store
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Actor identifies who is making a privileged change.
type Actor struct {
	UserID    string
	IPAddress string
}

func (s *AdminService) authorize(ctx context.Context, st store.Store, a Actor) error {
	u, err := st.Users().GetUserByID(ctx, a.UserID)
	if err != nil {
		return domain.ErrForbidden
	}
	if !u.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// staleWrite maps a lost compare-and-set on the user row to
// domain.ErrConcurrentUpdate. The transaction has rolled back by then, so
// neither the change nor its audit entry was written.
func staleWrite(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return domain.ErrConcurrentUpdate
	}
	return err
}

func (s *AdminService) GrantEntitlement(ctx context.Context, a Actor, targetID, name, reason string) (domain.User, error) {
	return s.changeEntitlement(ctx, a, targetID, name, reason, true)
}

func (s *AdminService) RevokeEntitlement(ctx context.Context, a Actor, targetID, name, reason string) (domain.User, error) {
	return s.changeEntitlement(ctx, a, targetID, name, reason, false)
}

// changeEntitlement updates the entitlement set and appends the audit entry
// in one transaction. The write only lands on the set it was computed from;
// losing to a concurrent change fails with domain.ErrConcurrentUpdate. A
// change that would leave the set as it was writes nothing.
func (s *AdminService) changeEntitlement(
	ctx context.Context,
	a Actor,
	targetID, name, reason string,
	grant bool,
) (domain.User, error) {
	name, ok := domain.NormalizeEntitlement(name)
	reason = strings.TrimSpace(reason)
	if !ok || reason == "" {
		return domain.User{}, domain.ErrInvalidInput
	}

	action := domain.AuditEntitlementRevoke
	if grant {
		action = domain.AuditEntitlementGrant
	}

	now := clock(s.Now)
	var (
		out     domain.User
		changed bool
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.authorize(ctx, tx, a); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			return notFound(err)
		}

		set := slices.Clone(u.Entitlements)
		has := slices.Contains(set, name)
		switch {
		case grant && !has:
			set = append(set, name)
			slices.Sort(set)
		case !grant && has:
			set = slices.DeleteFunc(set, func(e string) bool { return e == name })
		default:
			out = u
			return nil
		}

		if err := tx.Users().SetEntitlements(ctx, targetID, u.Entitlements, set); err != nil {
			return err
		}
		if err := appendAudit(ctx, tx, a.UserID, targetID, action, name+": "+reason, a.IPAddress, now); err != nil {
			return err
		}
		changed = true
		u.Entitlements = set
		out = u
		return nil
	})
	if err := staleWrite(err); err != nil {
		return domain.User{}, err
	}

	if changed {
		slogx.FromContext(ctx).Info("entitlement changed",
			slog.String("action", action),
			slog.String("target_user_id", targetID),
			slog.String("entitlement", name),
		)
	}
	return out, nil
}

// SetRole changes a user's role. Refusing self-demotion is left to the
// HTTP authorization layer.
func (s *AdminService) SetRole(ctx context.Context, a Actor, targetID string, role domain.Role, reason string) (domain.User, error) {
	reason = strings.TrimSpace(reason)
	if !role.Valid() || reason == "" {
		return domain.User{}, domain.ErrInvalidInput
	}

	now := clock(s.Now)
	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.authorize(ctx, tx, a); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			return notFound(err)
		}
		if u.Role == role {
			out = u
			return nil
		}

		if err := tx.Users().SetRole(ctx, targetID, u.Role, role); err != nil {
			return err
		}
		detail := string(u.Role) + " -> " + string(role) + ": " + reason
		if err := appendAudit(ctx, tx, a.UserID, targetID, domain.AuditRoleChange, detail, a.IPAddress, now); err != nil {
			return err
		}
		u.Role = role
		out = u
		return nil
	})
	if err := staleWrite(err); err != nil {
		return domain.User{}, err
	}
	return out, nil
}

// GrantCredits is a manual grant. Each call is its own grant; the idempotency
// key is freshly generated.
func (s *AdminService) GrantCredits(
	ctx context.Context,
	a Actor,
	targetID string,
	credits int64,
	expiresAt *time.Time,
	reason string,
) (GrantResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return GrantResult{}, domain.ErrInvalidInput
	}

	now := clock(s.Now)
	var res GrantResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.authorize(ctx, tx, a); err != nil {
			return err
		}
		var err error
		res, err = grantTx(ctx, tx, GrantRequest{
			UserID:     targetID,
			Credits:    credits,
			ExpiresAt:  expiresAt,
			ExternalID: "admin:" + idx.NewAt(now).String(),
			Source:     domain.GrantSourceAdmin,
			ActorID:    a.UserID,
			Reason:     reason,
			IPAddress:  a.IPAddress,
		}, now)
		return err
	})
	if err != nil {
		return GrantResult{}, err
	}

	recordGrant(s.Metrics, domain.GrantSourceAdmin, res)
	slogx.FromContext(ctx).Info("admin credit grant",
		slog.String("target_user_id", targetID),
		slog.Int64("credits", credits),
	)
	return res, nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, a Actor, f domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	if err := s.authorize(ctx, s.Store, a); err != nil {
		return nil, err
	}
	return s.Store.AuditLogs().ListAuditLogs(ctx, f)
}
