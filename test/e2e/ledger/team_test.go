package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

// TestTeamSeatLimit fills the three base seats and checks that further
// acceptances and invites are refused.
func TestTeamSeatLimit(t *testing.T) {
	baseURL, cleanup := setupLedgerContainer(t)
	defer cleanup()

	ctx := t.Context()
	owner := userClient(t, baseURL, "owner")

	company, err := owner.CreateCompany(ctx, ledgersdk.CompanyRequest{Name: "Pat's Plumbing"})
	require.NoError(t, err)
	require.Equal(t, 3, company.SeatLimit)
	require.Equal(t, 1, company.MemberCount)

	// All three invites are issued while seats are still open.
	tokens := map[string]string{}
	for _, name := range []string{"alex", "blair", "casey"} {
		inv, err := owner.CreateInvite(ctx, company.ID, ledgersdk.InviteRequest{Email: name + "@example.com", Role: "member"})
		require.NoError(t, err)
		require.NotEmpty(t, inv.Token)
		tokens[name] = inv.Token
	}

	_, err = userClient(t, baseURL, "alex").AcceptInvite(ctx, tokens["alex"])
	require.NoError(t, err)
	_, err = userClient(t, baseURL, "blair").AcceptInvite(ctx, tokens["blair"])
	require.NoError(t, err)

	_, err = userClient(t, baseURL, "casey").AcceptInvite(ctx, tokens["casey"])
	requireCode(t, err, ledgersdk.ErrorCodeSeatLimitReached)

	_, err = owner.CreateInvite(ctx, company.ID, ledgersdk.InviteRequest{Email: "drew@example.com", Role: "member"})
	requireCode(t, err, ledgersdk.ErrorCodeSeatLimitReached)

	members, err := owner.ListMembers(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, members.Members, 3)
}

// TestInviteSingleUse verifies an invite token cannot be redeemed twice.
func TestInviteSingleUse(t *testing.T) {
	baseURL, cleanup := setupLedgerContainer(t)
	defer cleanup()

	ctx := t.Context()
	owner := userClient(t, baseURL, "owner")

	company, err := owner.CreateCompany(ctx, ledgersdk.CompanyRequest{Name: "Owner Electrical"})
	require.NoError(t, err)

	inv, err := owner.CreateInvite(ctx, company.ID, ledgersdk.InviteRequest{Email: "alex@example.com", Role: "member"})
	require.NoError(t, err)

	_, err = userClient(t, baseURL, "alex").AcceptInvite(ctx, inv.Token)
	require.NoError(t, err)

	_, err = userClient(t, baseURL, "blair").AcceptInvite(ctx, inv.Token)
	requireCode(t, err, ledgersdk.ErrorCodeInviteGone)
}
