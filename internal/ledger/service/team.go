package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/cryptox"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

const (
	defaultInviteTTL = 7 * 24 * time.Hour
	defaultBaseSeats = 3
)

// TeamService manages companies, their seats and invites.
type TeamService struct {
	Store    store.Store
	Notifier notify.Sender
	Metrics  *metrics.Metrics

	InviteTTL     time.Duration
	BaseSeats     int
	PublicBaseURL string

	Now func() time.Time
}

func (s *TeamService) inviteTTL() time.Duration {
	if s.InviteTTL > 0 {
		return s.InviteTTL
	}
	return defaultInviteTTL
}

func (s *TeamService) baseSeats() int {
	if s.BaseSeats > 0 {
		return s.BaseSeats
	}
	return defaultBaseSeats
}

// membership returns the caller's membership of companyID. Callers outside
// the company see NotFound.
func (s *TeamService) membership(ctx context.Context, st store.Store, companyID, userID string) (domain.Membership, error) {
	m, err := st.Memberships().GetMembershipByUserID(ctx, userID)
	if err != nil {
		return domain.Membership{}, notFound(err)
	}
	if m.CompanyID != companyID {
		return domain.Membership{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *TeamService) manager(ctx context.Context, st store.Store, companyID, userID string) (domain.Membership, error) {
	m, err := s.membership(ctx, st, companyID, userID)
	if err != nil {
		return domain.Membership{}, err
	}
	if !m.Role.CanManage() {
		return domain.Membership{}, domain.ErrForbidden
	}
	return m, nil
}

// CreateCompany creates a company with ownerID as its first member.
func (s *TeamService) CreateCompany(ctx context.Context, ownerID string, p domain.CompanyProfile) (domain.Company, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > 200 {
		return domain.Company{}, domain.ErrInvalidInput
	}

	now := clock(s.Now)
	c := domain.Company{
		ID:          idx.NewAt(now).String(),
		OwnerID:     ownerID,
		Name:        p.Name,
		SeatLimit:   s.baseSeats(),
		MemberCount: 1,
		Phone:       p.Phone,
		Website:     p.Website,
		Address:     p.Address,
		LogoURL:     p.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, ownerID); err != nil {
			return notFound(err)
		}
		if err := tx.Companies().CreateCompany(ctx, c); err != nil {
			return err
		}
		err := tx.Memberships().CreateMembership(ctx, domain.Membership{
			CompanyID: c.ID,
			UserID:    ownerID,
			Role:      domain.MemberOwner,
			CreatedAt: now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.ErrAlreadyMember
		}
		return err
	})
	if err != nil {
		return domain.Company{}, err
	}

	slogx.FromContext(ctx).Info("company created", slog.String("company_id", c.ID))
	return c, nil
}

// GetMyCompany returns the company the user belongs to.
func (s *TeamService) GetMyCompany(ctx context.Context, userID string) (domain.Company, domain.Membership, error) {
	m, err := s.Store.Memberships().GetMembershipByUserID(ctx, userID)
	if err != nil {
		return domain.Company{}, domain.Membership{}, notFound(err)
	}
	c, err := s.Store.Companies().GetCompanyByID(ctx, m.CompanyID)
	if err != nil {
		return domain.Company{}, domain.Membership{}, notFound(err)
	}
	return c, m, nil
}

// UpdateProfile replaces the company's display fields.
func (s *TeamService) UpdateProfile(ctx context.Context, companyID, userID string, p domain.CompanyProfile) (domain.Company, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > 200 {
		return domain.Company{}, domain.ErrInvalidInput
	}
	if _, err := s.manager(ctx, s.Store, companyID, userID); err != nil {
		return domain.Company{}, err
	}
	if err := s.Store.Companies().UpdateCompanyProfile(ctx, companyID, p, clock(s.Now)); err != nil {
		return domain.Company{}, notFound(err)
	}
	c, err := s.Store.Companies().GetCompanyByID(ctx, companyID)
	return c, notFound(err)
}

func (s *TeamService) ListMembers(ctx context.Context, companyID, userID string) ([]domain.Membership, error) {
	if _, err := s.membership(ctx, s.Store, companyID, userID); err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListMembers(ctx, companyID)
}

// Invite issues an invite token. The token is returned once and only its
// fingerprint is stored.
func (s *TeamService) Invite(
	ctx context.Context,
	companyID, userID, email string,
	role domain.MemberRole,
) (domain.Invite, string, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if !domain.ValidEmail(email) || (role != domain.MemberAdmin && role != domain.MemberMember) {
		return domain.Invite{}, "", domain.ErrInvalidInput
	}
	if _, err := s.manager(ctx, s.Store, companyID, userID); err != nil {
		return domain.Invite{}, "", err
	}

	c, err := s.Store.Companies().GetCompanyByID(ctx, companyID)
	if err != nil {
		return domain.Invite{}, "", notFound(err)
	}
	if !c.HasOpenSeat() {
		s.Metrics.SeatRejected()
		return domain.Invite{}, "", domain.ErrSeatLimitReached
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Invite{}, "", err
	}

	now := clock(s.Now)
	inv := domain.Invite{
		ID:        idx.NewAt(now).String(),
		CompanyID: companyID,
		Email:     email,
		Role:      role,
		TokenHash: cryptox.FingerprintToken(token),
		InvitedBy: userID,
		ExpiresAt: now.Add(s.inviteTTL()),
		CreatedAt: now,
	}
	if err := s.Store.Invites().CreateInvite(ctx, inv); err != nil {
		return domain.Invite{}, "", err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("company_id", companyID),
		slog.String("role", string(role)),
	)
	deliver(ctx, s.Notifier, s.Metrics, notify.Message{
		Kind:      notify.KindTeamInvite,
		Recipient: email,
		Data: map[string]string{
			"company_name": c.Name,
			"role":         string(role),
			"link":         s.AcceptURL(token),
			"expires_at":   inv.ExpiresAt.Format(time.RFC3339),
		},
	})
	return inv, token, nil
}

// AcceptURL is the link an invitee follows to join.
func (s *TeamService) AcceptURL(token string) string {
	return strings.TrimRight(s.PublicBaseURL, "/") + "/invites/accept?token=" + url.QueryEscape(token)
}

// ListInvites returns the company's outstanding invites.
func (s *TeamService) ListInvites(ctx context.Context, companyID, userID string) ([]domain.Invite, error) {
	if _, err := s.manager(ctx, s.Store, companyID, userID); err != nil {
		return nil, err
	}
	return s.Store.Invites().ListInvitesByCompany(ctx, companyID)
}

func (s *TeamService) RevokeInvite(ctx context.Context, companyID, inviteID, userID string) error {
	if _, err := s.manager(ctx, s.Store, companyID, userID); err != nil {
		return err
	}
	inv, err := s.Store.Invites().GetInviteByID(ctx, inviteID)
	if err != nil {
		return notFound(err)
	}
	if inv.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return domain.ErrInviteExpiredOrConsumed
	}
	return notFound(s.Store.Invites().DeleteInvite(ctx, inviteID))
}

// AcceptInvite joins userID to the invite's company. The seat is reserved
// with a conditional increment, so concurrent acceptances against the last
// open seat cannot both succeed.
func (s *TeamService) AcceptInvite(ctx context.Context, token, userID string) (domain.Membership, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	if token == "" {
		return domain.Membership{}, domain.ErrNotFound
	}

	var m domain.Membership
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
		if err != nil {
			return notFound(err)
		}
		if !inv.Active(now) {
			return domain.ErrInviteExpiredOrConsumed
		}

		if _, err := tx.Users().GetUserByID(ctx, userID); err != nil {
			return notFound(err)
		}
		if _, err := tx.Memberships().GetMembershipByUserID(ctx, userID); err == nil {
			return domain.ErrAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		err = tx.Companies().ReserveSeat(ctx, inv.CompanyID, now)
		if errors.Is(err, store.ErrConflict) {
			return domain.ErrSeatLimitReached
		}
		if err != nil {
			return notFound(err)
		}

		m = domain.Membership{
			CompanyID: inv.CompanyID,
			UserID:    userID,
			Role:      inv.Role,
			CreatedAt: now,
		}
		err = tx.Memberships().CreateMembership(ctx, m)
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.ErrAlreadyMember
		}
		if err != nil {
			return err
		}

		err = tx.Invites().ConsumeInvite(ctx, inv.ID, userID, now)
		if errors.Is(err, store.ErrConflict) {
			return domain.ErrInviteExpiredOrConsumed
		}
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrSeatLimitReached) {
			s.Metrics.SeatRejected()
		}
		log.Info("invite acceptance refused", slog.Any("error", err))
		return domain.Membership{}, err
	}

	log.Info("invite accepted",
		slog.String("company_id", m.CompanyID),
		slog.String("role", string(m.Role)),
	)
	return m, nil
}

// RemoveMember removes memberID from the company and frees the seat. Members
// may remove themselves; the owner cannot be removed.
func (s *TeamService) RemoveMember(ctx context.Context, companyID, memberID, userID string) error {
	now := clock(s.Now)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		caller, err := s.membership(ctx, tx, companyID, userID)
		if err != nil {
			return err
		}
		target, err := s.membership(ctx, tx, companyID, memberID)
		if err != nil {
			return err
		}
		if target.Role == domain.MemberOwner {
			return domain.ErrForbidden
		}
		if memberID != userID {
			if !caller.Role.CanManage() {
				return domain.ErrForbidden
			}
			// Admins cannot remove other admins.
			if target.Role == domain.MemberAdmin && caller.Role != domain.MemberOwner {
				return domain.ErrForbidden
			}
		}

		if err := tx.Memberships().DeleteMembership(ctx, companyID, memberID); err != nil {
			return notFound(err)
		}
		return notFound(tx.Companies().ReleaseSeat(ctx, companyID, now))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("member removed",
		slog.String("company_id", companyID),
		slog.String("member_id", memberID),
	)
	return nil
}

// ChangeMemberRole is reserved to the owner. Ownership itself is not
// transferable here.
func (s *TeamService) ChangeMemberRole(
	ctx context.Context,
	companyID, memberID, userID string,
	role domain.MemberRole,
) (domain.Membership, error) {
	if role != domain.MemberAdmin && role != domain.MemberMember {
		return domain.Membership{}, domain.ErrInvalidInput
	}

	caller, err := s.membership(ctx, s.Store, companyID, userID)
	if err != nil {
		return domain.Membership{}, err
	}
	if caller.Role != domain.MemberOwner {
		return domain.Membership{}, domain.ErrForbidden
	}
	target, err := s.membership(ctx, s.Store, companyID, memberID)
	if err != nil {
		return domain.Membership{}, err
	}
	if target.Role == domain.MemberOwner {
		return domain.Membership{}, domain.ErrForbidden
	}

	if err := s.Store.Memberships().UpdateMemberRole(ctx, companyID, memberID, role); err != nil {
		return domain.Membership{}, notFound(err)
	}
	target.Role = role
	return target, nil
}
