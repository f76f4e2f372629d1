package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"

	"github.com/stretchr/testify/require"
)

// companyWith creates a company owned by a fresh user and fills it with
// members extra members.
func companyWith(t *testing.T, h *harness, members int) (domain.Company, domain.User) {
	t.Helper()
	ctx := context.Background()
	owner := seedUser(t, h.store, 0, nil)

	c, err := h.team.CreateCompany(ctx, owner.ID, domain.CompanyProfile{Name: "Tradie Co"})
	require.NoError(t, err)
	require.Equal(t, 1, c.MemberCount)

	for range members {
		u := seedUser(t, h.store, 0, nil)
		_, token, err := h.team.Invite(ctx, c.ID, owner.ID, u.Email, domain.MemberMember)
		require.NoError(t, err)
		_, err = h.team.AcceptInvite(ctx, token, u.ID)
		require.NoError(t, err)
	}

	c, err = h.store.Companies().GetCompanyByID(ctx, c.ID)
	require.NoError(t, err)
	return c, owner
}

func TestConcurrentAcceptsRespectSeatLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 1)
	require.Equal(t, 2, c.MemberCount)

	var tokens []string
	var joiners []domain.User
	for range 2 {
		u := seedUser(t, h.store, 0, nil)
		_, token, err := h.team.Invite(ctx, c.ID, owner.ID, u.Email, domain.MemberMember)
		require.NoError(t, err)
		tokens = append(tokens, token)
		joiners = append(joiners, u)
	}

	var (
		wg               sync.WaitGroup
		joined, rejected atomic.Int32
	)
	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.team.AcceptInvite(ctx, tokens[i], joiners[i].ID)
			switch {
			case err == nil:
				joined.Add(1)
			case errors.Is(err, domain.ErrSeatLimitReached):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), joined.Load())
	require.Equal(t, int32(1), rejected.Load())

	members, err := h.team.ListMembers(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)

	c, err = h.store.Companies().GetCompanyByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 3, c.MemberCount)
}

func TestInviteRefusedWhenFull(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 2)

	_, _, err := h.team.Invite(ctx, c.ID, owner.ID, "late@example.com", domain.MemberMember)
	require.ErrorIs(t, err, domain.ErrSeatLimitReached)
	require.Len(t, h.sender.sent(notify.KindTeamInvite), 2)
}

func TestInviteStoresOnlyFingerprint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 0)

	inv, token, err := h.team.Invite(ctx, c.ID, owner.ID, " New@Example.com ", domain.MemberAdmin)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", inv.Email)
	require.NotEqual(t, token, inv.TokenHash)
	require.True(t, inv.ExpiresAt.Equal(epoch.Add(7*24*time.Hour)))

	msgs := h.sender.sent(notify.KindTeamInvite)
	require.Len(t, msgs, 1)
	require.Equal(t, "https://quotes.test/invites/accept?token="+token, msgs[0].Data["link"])
}

func TestInvitePermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 1)
	outsider := seedUser(t, h.store, 0, nil)

	members, err := h.team.ListMembers(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	var memberID string
	for _, m := range members {
		if m.Role == domain.MemberMember {
			memberID = m.UserID
		}
	}
	require.NotEmpty(t, memberID)

	_, _, err = h.team.Invite(ctx, c.ID, memberID, "x@example.com", domain.MemberMember)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = h.team.Invite(ctx, c.ID, outsider.ID, "x@example.com", domain.MemberMember)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = h.team.Invite(ctx, c.ID, owner.ID, "x@example.com", domain.MemberOwner)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = h.team.Invite(ctx, c.ID, owner.ID, "not-an-email", domain.MemberMember)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAcceptInviteGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 0)

	t.Run("expired", func(t *testing.T) {
		_, token, err := h.team.Invite(ctx, c.ID, owner.ID, "slow@example.com", domain.MemberMember)
		require.NoError(t, err)

		h.clock.Advance(8 * 24 * time.Hour)
		u := seedUser(t, h.store, 0, nil)
		_, err = h.team.AcceptInvite(ctx, token, u.ID)
		require.ErrorIs(t, err, domain.ErrInviteExpiredOrConsumed)
	})

	t.Run("consumed", func(t *testing.T) {
		_, token, err := h.team.Invite(ctx, c.ID, owner.ID, "first@example.com", domain.MemberMember)
		require.NoError(t, err)

		first := seedUser(t, h.store, 0, nil)
		_, err = h.team.AcceptInvite(ctx, token, first.ID)
		require.NoError(t, err)

		second := seedUser(t, h.store, 0, nil)
		_, err = h.team.AcceptInvite(ctx, token, second.ID)
		require.ErrorIs(t, err, domain.ErrInviteExpiredOrConsumed)
	})

	t.Run("already a member", func(t *testing.T) {
		_, token, err := h.team.Invite(ctx, c.ID, owner.ID, "owner2@example.com", domain.MemberMember)
		require.NoError(t, err)

		_, err = h.team.AcceptInvite(ctx, token, owner.ID)
		require.ErrorIs(t, err, domain.ErrAlreadyMember)
	})

	t.Run("unknown token", func(t *testing.T) {
		u := seedUser(t, h.store, 0, nil)
		_, err := h.team.AcceptInvite(ctx, "bogus", u.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCreateCompanyRequiresNoMembership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, owner := companyWith(t, h, 0)

	_, err := h.team.CreateCompany(ctx, owner.ID, domain.CompanyProfile{Name: "Second Co"})
	require.ErrorIs(t, err, domain.ErrAlreadyMember)

	_, err = h.team.CreateCompany(ctx, owner.ID, domain.CompanyProfile{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemoveMemberFreesSeat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 2)

	members, err := h.team.ListMembers(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	var leaver string
	for _, m := range members {
		if m.Role != domain.MemberOwner {
			leaver = m.UserID
			break
		}
	}

	require.ErrorIs(t, h.team.RemoveMember(ctx, c.ID, owner.ID, leaver), domain.ErrForbidden)
	require.NoError(t, h.team.RemoveMember(ctx, c.ID, leaver, owner.ID))

	got, _, err := h.team.GetMyCompany(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.MemberCount)

	_, _, err = h.team.GetMyCompany(ctx, leaver)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = h.team.Invite(ctx, c.ID, owner.ID, "replacement@example.com", domain.MemberMember)
	require.NoError(t, err)
}

func TestChangeMemberRoleIsOwnerOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 2)

	members, err := h.team.ListMembers(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	var ids []string
	for _, m := range members {
		if m.Role == domain.MemberMember {
			ids = append(ids, m.UserID)
		}
	}
	require.Len(t, ids, 2)

	m, err := h.team.ChangeMemberRole(ctx, c.ID, ids[0], owner.ID, domain.MemberAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.MemberAdmin, m.Role)

	_, err = h.team.ChangeMemberRole(ctx, c.ID, ids[1], ids[0], domain.MemberAdmin)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.team.ChangeMemberRole(ctx, c.ID, owner.ID, owner.ID, domain.MemberMember)
	require.ErrorIs(t, err, domain.ErrForbidden)

	// Admins may remove members but not other admins.
	require.NoError(t, h.team.RemoveMember(ctx, c.ID, ids[1], ids[0]))
}

func TestRevokeInvite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 0)

	inv, token, err := h.team.Invite(ctx, c.ID, owner.ID, "maybe@example.com", domain.MemberMember)
	require.NoError(t, err)

	invites, err := h.team.ListInvites(ctx, c.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, invites, 1)

	require.NoError(t, h.team.RevokeInvite(ctx, c.ID, inv.ID, owner.ID))

	u := seedUser(t, h.store, 0, nil)
	_, err = h.team.AcceptInvite(ctx, token, u.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateCompanyProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 0)

	got, err := h.team.UpdateProfile(ctx, c.ID, owner.ID, domain.CompanyProfile{
		Name: "Tradie & Sons", Phone: "+61 400 000 000", Website: "https://tradie.test",
	})
	require.NoError(t, err)
	require.Equal(t, "Tradie & Sons", got.Name)
	require.Equal(t, "https://tradie.test", got.Website)
}

func TestHousekeepingPrunesExpiredInvites(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c, owner := companyWith(t, h, 0)

	_, _, err := h.team.Invite(ctx, c.ID, owner.ID, "never@example.com", domain.MemberMember)
	require.NoError(t, err)

	hk := NewHousekeepingService(h.store, slogx.Discard(), time.Hour)
	hk.Now = h.clock.Now

	n, err := hk.Cleanup(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	h.clock.Advance(8 * 24 * time.Hour)
	n, err = hk.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
