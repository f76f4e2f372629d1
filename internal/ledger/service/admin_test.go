package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"

	"github.com/stretchr/testify/require"
)

func seedAdmin(t *testing.T, h *harness) Actor {
	t.Helper()
	u := seedUser(t, h.store, 0, nil)
	require.NoError(t, h.store.Users().SetRole(context.Background(), u.ID, domain.RoleUser, domain.RoleAdmin))
	return Actor{UserID: u.ID, IPAddress: "198.51.100.4"}
}

func TestEntitlementChangesAreAudited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	u, err := h.admin.GrantEntitlement(ctx, admin, target.ID, " Beta-Templates ", "pilot customer")
	require.NoError(t, err)
	require.Equal(t, []string{"beta-templates"}, u.Entitlements)

	// Granting again changes nothing and writes nothing.
	_, err = h.admin.GrantEntitlement(ctx, admin, target.ID, "beta-templates", "pilot customer")
	require.NoError(t, err)

	u, err = h.admin.RevokeEntitlement(ctx, admin, target.ID, "beta-templates", "pilot over")
	require.NoError(t, err)
	require.Empty(t, u.Entitlements)

	logs, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{TargetUserID: target.ID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, domain.AuditEntitlementRevoke, logs[0].Action)
	require.Equal(t, domain.AuditEntitlementGrant, logs[1].Action)
	require.Equal(t, admin.UserID, logs[1].ActorID)
	require.Equal(t, "198.51.100.4", logs[1].IPAddress)
	require.Contains(t, logs[1].Reason, "pilot customer")

	stored, err := h.store.Users().GetUserByID(ctx, target.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Entitlements)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plain := seedUser(t, h.store, 0, nil)
	target := seedUser(t, h.store, 0, nil)
	actor := Actor{UserID: plain.ID}

	_, err := h.admin.GrantEntitlement(ctx, actor, target.ID, "beta", "because")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.admin.GrantCredits(ctx, actor, target.ID, 5, nil, "goodwill")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.admin.SetRole(ctx, actor, plain.ID, domain.RoleAdmin, "promote myself")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.admin.ListAuditLogs(ctx, actor, domain.AuditFilter{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	logs, err := h.store.AuditLogs().ListAuditLogs(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestEntitlementNeedsReason(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	_, err := h.admin.GrantEntitlement(ctx, admin, target.ID, "beta", " ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.admin.GrantEntitlement(ctx, admin, target.ID, "two words", "reason")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.admin.GrantEntitlement(ctx, admin, "missing", "beta", "reason")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminGrantCredits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 2, nil)

	res, err := h.admin.GrantCredits(ctx, admin, target.ID, 5, nil, "refund for failed send")
	require.NoError(t, err)
	require.Equal(t, int64(5), res.CreditsAdded)
	require.Equal(t, int64(7), res.Balance.Effective)

	// Each manual grant is distinct.
	res, err = h.admin.GrantCredits(ctx, admin, target.ID, 5, nil, "second goodwill")
	require.NoError(t, err)
	require.Equal(t, int64(12), res.Balance.Effective)

	logs, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{
		TargetUserID: target.ID,
		Action:       domain.AuditCreditGrant,
	})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "second goodwill", logs[0].Reason)
}

func TestSetRoleIsAudited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	u, err := h.admin.SetRole(ctx, admin, target.ID, domain.RoleAdmin, "ops rotation")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	_, err = h.admin.SetRole(ctx, admin, target.ID, domain.Role("root"), "nope")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	logs, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{Action: domain.AuditRoleChange})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "user -> admin: ops rotation", logs[0].Reason)
}

func TestListAuditLogsPagination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	for _, name := range []string{"a", "b", "c"} {
		_, err := h.admin.GrantEntitlement(ctx, admin, target.ID, name, "batch")
		require.NoError(t, err)
	}

	page, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{Limit: 2, Before: page[1].ID})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Contains(t, rest[0].Reason, "a: ")
}

// interleavingStore calls onRead right after the target user is read inside
// a transaction, standing in for a writer that lands between our read and
// our write.
type interleavingStore struct {
	store.Store
	targetID string
	onRead   func(ctx context.Context, tx store.Tx)
}

func (s *interleavingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&interleavingTx{Tx: tx, parent: s})
	})
}

type interleavingTx struct {
	store.Tx
	parent *interleavingStore
}

func (t *interleavingTx) Users() store.Users {
	return &interleavingUsers{Users: t.Tx.Users(), tx: t.Tx, parent: t.parent}
}

type interleavingUsers struct {
	store.Users
	tx     store.Tx
	parent *interleavingStore
}

func (u *interleavingUsers) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	got, err := u.Users.GetUserByID(ctx, id)
	if err == nil && id == u.parent.targetID && u.parent.onRead != nil {
		u.parent.onRead(ctx, u.tx)
	}
	return got, err
}

func TestStaleAdminWritesAreRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	racing := &interleavingStore{Store: h.store, targetID: target.ID}
	svc := &AdminService{Store: racing, Now: h.clock.Now}

	racing.onRead = func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.Users().SetEntitlements(ctx, target.ID, nil, []string{"export"}))
	}
	_, err := svc.GrantEntitlement(ctx, admin, target.ID, "beta", "pilot customer")
	require.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	racing.onRead = func(ctx context.Context, tx store.Tx) {
		require.NoError(t, tx.Users().SetRole(ctx, target.ID, domain.RoleUser, domain.RoleAdmin))
	}
	_, err = svc.SetRole(ctx, admin, target.ID, domain.RoleAdmin, "ops rotation")
	require.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	// The interleaved writes share our transaction and roll back with it.
	stored, err := h.store.Users().GetUserByID(ctx, target.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Entitlements)
	require.Equal(t, domain.RoleUser, stored.Role)

	logs, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{TargetUserID: target.ID})
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestConcurrentEntitlementGrantsAreNeverLost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := seedAdmin(t, h)
	target := seedUser(t, h.store, 0, nil)

	const n = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted []string
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("feature-%d", i)
			_, err := h.admin.GrantEntitlement(ctx, admin, target.ID, name, "rollout")
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				return
			}
			require.NoError(t, err)
			mu.Lock()
			granted = append(granted, name)
			mu.Unlock()
		}()
	}
	wg.Wait()

	stored, err := h.store.Users().GetUserByID(ctx, target.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, granted, stored.Entitlements)

	logs, err := h.admin.ListAuditLogs(ctx, admin, domain.AuditFilter{TargetUserID: target.ID})
	require.NoError(t, err)
	require.Len(t, logs, len(granted))
}
