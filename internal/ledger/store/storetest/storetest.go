// Package storetest holds behaviour tests shared by every store driver.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"

	"github.com/stretchr/testify/require"
)

// Run exercises the conditional writes a driver must get right. newStore
// returns a migrated, empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("DebitNeverGoesNegative", func(t *testing.T) { testDebit(t, newStore(t)) })
	t.Run("AddCreditsResetsExpired", func(t *testing.T) { testAddCredits(t, newStore(t)) })
	t.Run("RoleAndEntitlementGuards", func(t *testing.T) { testUserGuards(t, newStore(t)) })
	t.Run("GrantKeyIsUnique", func(t *testing.T) { testGrantUnique(t, newStore(t)) })
	t.Run("ProposalGuards", func(t *testing.T) { testProposalGuards(t, newStore(t)) })
	t.Run("SeatReservation", func(t *testing.T) { testSeats(t, newStore(t)) })
	t.Run("InviteConsume", func(t *testing.T) { testInvites(t, newStore(t)) })
	t.Run("AuditLogs", func(t *testing.T) { testAuditLogs(t, newStore(t)) })
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s store.Store, credits int64, expires *time.Time) domain.User {
	t.Helper()
	u := domain.User{
		ID:              idx.New().String(),
		Email:           "owner@example.com",
		ProposalCredits: credits,
		CreditsExpireAt: expires,
		Plan:            domain.PlanFree,
		Role:            domain.RoleUser,
		CreatedAt:       epoch,
		UpdatedAt:       epoch,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func testDebit(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, 1, nil)

	const n = 8
	var (
		wg                   sync.WaitGroup
		succeeded, conflicts atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Users().DebitCredits(ctx, u.ID, 1, epoch)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, store.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, succeeded.Load())
	require.EqualValues(t, n-1, conflicts.Load())
	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, got.ProposalCredits)

	expired := epoch.Add(-time.Hour)
	stale := seedUser(t, s, 5, &expired)
	require.ErrorIs(t, s.Users().DebitCredits(ctx, stale.ID, 1, epoch), store.ErrConflict)
}

func testAddCredits(t *testing.T, s store.Store) {
	ctx := context.Background()

	expired := epoch.Add(-time.Hour)
	u := seedUser(t, s, 4, &expired)

	future := epoch.Add(90 * 24 * time.Hour)
	require.NoError(t, s.Users().AddCredits(ctx, u.ID, 10, &future, epoch))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 10, got.ProposalCredits)
	require.NotNil(t, got.CreditsExpireAt)
	require.True(t, got.CreditsExpireAt.Equal(future))

	require.NoError(t, s.Users().AddCredits(ctx, u.ID, 5, nil, epoch))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 15, got.ProposalCredits)
	require.Nil(t, got.CreditsExpireAt)

	require.ErrorIs(t, s.Users().AddCredits(ctx, "missing", 1, nil, epoch), store.ErrNotFound)
}

func testUserGuards(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, 0, nil)
	users := s.Users()

	require.NoError(t, users.SetEntitlements(ctx, u.ID, nil, []string{"beta"}))
	// Stale read of the empty set must not overwrite beta.
	require.ErrorIs(t, users.SetEntitlements(ctx, u.ID, nil, []string{"export"}), store.ErrConflict)
	require.NoError(t, users.SetEntitlements(ctx, u.ID, []string{"beta"}, []string{"beta", "export"}))
	require.NoError(t, users.SetEntitlements(ctx, u.ID, []string{"beta", "export"}, []string{"export"}))

	require.NoError(t, users.SetRole(ctx, u.ID, domain.RoleUser, domain.RoleAdmin))
	require.ErrorIs(t, users.SetRole(ctx, u.ID, domain.RoleUser, domain.RoleAdmin), store.ErrConflict)

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"export"}, got.Entitlements)
	require.Equal(t, domain.RoleAdmin, got.Role)

	require.ErrorIs(t, users.SetRole(ctx, "missing", domain.RoleUser, domain.RoleAdmin), store.ErrConflict)
}

func testGrantUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, 0, nil)

	g := domain.CreditGrant{
		ID:         idx.New().String(),
		ExternalID: "cs_test_1",
		UserID:     u.ID,
		Credits:    10,
		Source:     domain.GrantSourcePayment,
		CreatedAt:  epoch,
	}
	inserted, err := s.CreditGrants().InsertGrant(ctx, g)
	require.NoError(t, err)
	require.True(t, inserted)

	g.ID = idx.New().String()
	inserted, err = s.CreditGrants().InsertGrant(ctx, g)
	require.NoError(t, err)
	require.False(t, inserted)

	got, err := s.CreditGrants().GetGrantByExternalID(ctx, "cs_test_1")
	require.NoError(t, err)
	require.EqualValues(t, 10, got.Credits)
}

func testProposalGuards(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s, 0, nil)
	repo := s.Proposals()

	p := domain.Proposal{
		ID:             idx.New().String(),
		UserID:         u.ID,
		Title:          "Deck rebuild",
		PriceLowCents:  100000,
		PriceHighCents: 150000,
		Currency:       "usd",
		Status:         domain.StatusDraft,
		CreatedAt:      epoch,
		UpdatedAt:      epoch,
	}
	require.NoError(t, repo.CreateProposal(ctx, p))

	require.ErrorIs(t, repo.AcceptProposal(ctx, p.ID, domain.Acceptance{Name: "x"}, epoch), store.ErrConflict)
	require.ErrorIs(t, repo.CountersignProposal(ctx, p.ID, "me", "sig", epoch), store.ErrConflict)

	require.NoError(t, repo.MarkSent(ctx, p.ID, epoch))
	require.ErrorIs(t, repo.MarkSent(ctx, p.ID, epoch), store.ErrConflict)

	require.NoError(t, repo.RecordView(ctx, p.ID, epoch))
	require.NoError(t, repo.RecordView(ctx, p.ID, epoch.Add(time.Minute)))
	got, err := repo.GetProposalByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusViewed, got.Status)
	require.EqualValues(t, 2, got.ViewCount)
	require.True(t, got.ViewedAt.Equal(epoch))

	a := domain.Acceptance{Name: "Pat", Email: "pat@example.com", Signature: "sig-1"}
	require.NoError(t, repo.AcceptProposal(ctx, p.ID, a, epoch))
	a.Signature = "sig-2"
	require.ErrorIs(t, repo.AcceptProposal(ctx, p.ID, a, epoch.Add(time.Hour)), store.ErrConflict)

	got, err = repo.GetProposalByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "sig-1", got.Signature)
	require.True(t, got.AcceptedAt.Equal(epoch))

	require.NoError(t, repo.CountersignProposal(ctx, p.ID, "Owner", "counter", epoch))
	require.ErrorIs(t, repo.CountersignProposal(ctx, p.ID, "Owner", "again", epoch), store.ErrConflict)

	require.NoError(t, repo.SetOutcome(ctx, p.ID, domain.StatusWon, epoch))
	require.ErrorIs(t, repo.SetOutcome(ctx, p.ID, domain.StatusLost, epoch), store.ErrConflict)

	require.NoError(t, repo.MarkUnlocked(ctx, p.ID, epoch))
	require.ErrorIs(t, repo.MarkUnlocked(ctx, p.ID, epoch), store.ErrConflict)

	require.NoError(t, repo.SetPublicToken(ctx, p.ID, "tok", epoch))
	require.ErrorIs(t, repo.SetPublicToken(ctx, p.ID, "other", epoch), store.ErrConflict)
	byToken, err := repo.GetProposalByPublicToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, p.ID, byToken.ID)

	require.NoError(t, repo.SetDepositLink(ctx, p.ID, "", "plink_0", "https://pay/0", 25, 31250, epoch))
	// A writer that read the proposal before plink_0 landed loses.
	require.ErrorIs(t, repo.SetDepositLink(ctx, p.ID, "", "plink_x", "https://pay/x", 50, 62500, epoch), store.ErrConflict)
	require.NoError(t, repo.SetDepositLink(ctx, p.ID, "plink_0", "plink_1", "https://pay/1", 50, 62500, epoch))
	require.NoError(t, repo.MarkPaid(ctx, p.ID, epoch))
	require.ErrorIs(t, repo.MarkPaid(ctx, p.ID, epoch), store.ErrConflict)
	require.ErrorIs(t, repo.SetDepositLink(ctx, p.ID, "plink_1", "plink_2", "https://pay/2", 25, 1, epoch), store.ErrConflict)

	byLink, err := repo.GetProposalByPaymentLinkID(ctx, "plink_1")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, byLink.PaymentStatus)

	_, err = repo.GetProposalByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func seedCompany(t *testing.T, s store.Store, owner domain.User, seatLimit, members int) domain.Company {
	t.Helper()
	co := domain.Company{
		ID:          idx.New().String(),
		OwnerID:     owner.ID,
		Name:        "Acme Builders",
		SeatLimit:   seatLimit,
		MemberCount: members,
		CreatedAt:   epoch,
		UpdatedAt:   epoch,
	}
	require.NoError(t, s.Companies().CreateCompany(context.Background(), co))
	return co
}

func testSeats(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := seedUser(t, s, 0, nil)
	co := seedCompany(t, s, owner, 3, 2)

	const n = 6
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Companies().ReserveSeat(ctx, co.ID, epoch) == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, succeeded.Load())

	require.NoError(t, s.Companies().AddExtraSeats(ctx, co.ID, 2, epoch))
	require.NoError(t, s.Companies().ReserveSeat(ctx, co.ID, epoch))

	got, err := s.Companies().GetCompanyByID(ctx, co.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.MemberCount)
	require.Equal(t, 5, got.Capacity())

	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		CompanyID: co.ID, UserID: owner.ID, Role: domain.MemberOwner, CreatedAt: epoch,
	}))
	other := seedCompany(t, s, owner, 3, 0)
	err = s.Memberships().CreateMembership(ctx, domain.Membership{
		CompanyID: other.ID, UserID: owner.ID, Role: domain.MemberMember, CreatedAt: epoch,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testInvites(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := seedUser(t, s, 0, nil)
	co := seedCompany(t, s, owner, 3, 1)

	live := domain.Invite{
		ID: idx.New().String(), CompanyID: co.ID, Email: "a@example.com", Role: domain.MemberMember,
		TokenHash: "hash-live", InvitedBy: owner.ID, ExpiresAt: epoch.Add(time.Hour), CreatedAt: epoch,
	}
	stale := domain.Invite{
		ID: idx.New().String(), CompanyID: co.ID, Email: "b@example.com", Role: domain.MemberMember,
		TokenHash: "hash-stale", InvitedBy: owner.ID, ExpiresAt: epoch.Add(-time.Hour), CreatedAt: epoch,
	}
	require.NoError(t, s.Invites().CreateInvite(ctx, live))
	require.NoError(t, s.Invites().CreateInvite(ctx, stale))

	require.ErrorIs(t, s.Invites().ConsumeInvite(ctx, stale.ID, owner.ID, epoch), store.ErrConflict)
	require.NoError(t, s.Invites().ConsumeInvite(ctx, live.ID, owner.ID, epoch))
	require.ErrorIs(t, s.Invites().ConsumeInvite(ctx, live.ID, owner.ID, epoch), store.ErrConflict)

	got, err := s.Invites().GetInviteByTokenHash(ctx, "hash-live")
	require.NoError(t, err)
	require.NotNil(t, got.AcceptedAt)
	require.Equal(t, owner.ID, got.AcceptedBy)

	n, err := s.Invites().DeleteExpiredInvites(ctx, epoch)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	pending, err := s.Invites().ListInvitesByCompany(ctx, co.ID)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func testAuditLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i, action := range []string{domain.AuditEntitlementGrant, domain.AuditEntitlementRevoke, domain.AuditRoleChange} {
		require.NoError(t, s.AuditLogs().AppendAuditLog(ctx, domain.AuditLogEntry{
			ID:           idx.NewAt(epoch.Add(time.Duration(i) * time.Second)).String(),
			ActorID:      "admin",
			TargetUserID: "target",
			Action:       action,
			CreatedAt:    epoch,
		}))
	}

	all, err := s.AuditLogs().ListAuditLogs(ctx, domain.AuditFilter{TargetUserID: "target"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, domain.AuditRoleChange, all[0].Action)

	page, err := s.AuditLogs().ListAuditLogs(ctx, domain.AuditFilter{Before: all[0].ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, domain.AuditEntitlementRevoke, page[0].Action)

	grants, err := s.AuditLogs().ListAuditLogs(ctx, domain.AuditFilter{Action: domain.AuditEntitlementGrant})
	require.NoError(t, err)
	require.Len(t, grants, 1)
}
