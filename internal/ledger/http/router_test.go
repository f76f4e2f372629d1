package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	ledgerhttp "github.com/aussiebroadwan/quoteledger/internal/ledger/http"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/sqlstore"
	"github.com/aussiebroadwan/quoteledger/pkg/jwtx"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

var secret = []byte("ledger-http-test-secret")

// processor is a minimal in-memory payment processor.
type processor struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]payments.Session
}

func (p *processor) next(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s_%d", prefix, p.seq)
}

func (p *processor) CreateCustomer(context.Context, string, string, string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next("cus"), nil
}

func (p *processor) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next("cs")
	p.sessions[id] = payments.Session{ID: id, CustomerID: req.CustomerID, Metadata: req.Metadata.Map()}
	return payments.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (p *processor) RetrieveSession(_ context.Context, id string) (payments.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	if !ok {
		return payments.Session{}, payments.ErrSessionNotFound
	}
	return s, nil
}

func (p *processor) CreatePaymentLink(context.Context, payments.PaymentLinkRequest) (payments.PaymentLink, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next("plink")
	return payments.PaymentLink{ID: id, URL: "https://pay.test/" + id}, nil
}

func (p *processor) DeactivatePaymentLink(context.Context, string) error { return nil }

func (p *processor) ParseWebhook([]byte, string) (payments.Event, error) {
	return payments.Event{}, payments.ErrInvalidSignature
}

func (p *processor) pay(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[id]
	s.Paid = true
	p.sessions[id] = s
}

type env struct {
	srv   *httptest.Server
	store *sqlstore.Store
	proc  *processor
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sender := notify.LogSender{Logger: slogx.Discard()}
	proc := &processor{sessions: map[string]payments.Session{}}
	const base = "https://quotes.test"

	r := ledgerhttp.NewRouter(jwtx.NewHS256Verifier(secret, jwtx.VerifyOptions{}), nil, "test", st, reg, slogx.Discard())
	r.UserService = &service.UserService{Store: st, Metrics: m, SignupCredits: 1}
	r.CreditService = &service.CreditService{Store: st, Metrics: m}
	r.ProposalService = &service.ProposalService{
		Store: st, Notifier: sender, Metrics: m, PublicBaseURL: base, SignatureMinBytes: 1000,
	}
	r.BillingService = &service.BillingService{
		Store: st, Processor: proc, Notifier: sender, Metrics: m, PublicBaseURL: base,
		Catalog: service.Catalog{
			payments.PlanPack:  {PriceID: "price_pack", Credits: 10, TTL: 90 * 24 * time.Hour},
			payments.PlanSeats: {PriceID: "price_seat"},
		},
	}
	r.TeamService = &service.TeamService{Store: st, Notifier: sender, Metrics: m, PublicBaseURL: base}
	r.AdminService = &service.AdminService{Store: st, Metrics: m}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: st, proc: proc}
}

// client returns an SDK client authenticated as sub.
func (e *env) client(t *testing.T, sub string) *ledgersdk.Client {
	t.Helper()
	now := time.Now()
	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: sub + "@example.com",
		Name:  "Test " + sub,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return ledgersdk.NewClient(e.srv.URL).WithToken(tok)
}

func signature(n int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", n)))
}

func proposalRequest() ledgersdk.ProposalRequest {
	return ledgersdk.ProposalRequest{
		Title:          "Bathroom renovation",
		ClientName:     "Sam Client",
		ClientEmail:    "sam@example.com",
		Content:        "Strip and retile, new vanity.",
		PriceLowCents:  800000,
		PriceHighCents: 1200000,
		Currency:       "AUD",
	}
}

func apiStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var apiErr *ledgersdk.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.StatusCode, apiErr.Code
}

func TestRequiresBearerToken(t *testing.T) {
	e := newEnv(t)

	_, err := ledgersdk.NewClient(e.srv.URL).Me(context.Background())
	status, code := apiStatus(t, err)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, ledgersdk.ErrorCodeUnauthorized, code)

	_, err = ledgersdk.NewClient(e.srv.URL).WithToken("garbage").Me(context.Background())
	status, _ = apiStatus(t, err)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestMeProvisionsOnce(t *testing.T) {
	e := newEnv(t)
	c := e.client(t, "alice")
	ctx := context.Background()

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.ID)
	require.Equal(t, "alice@example.com", me.Email)
	require.Equal(t, "free", me.Plan)
	require.EqualValues(t, 1, me.Balance.EffectiveCredits)
	require.Empty(t, me.Entitlements)

	me, err = c.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, me.Balance.Credits)
}

func TestUnlockPaywall(t *testing.T) {
	e := newEnv(t)
	c := e.client(t, "alice")
	ctx := context.Background()

	first, err := c.CreateProposal(ctx, proposalRequest())
	require.NoError(t, err)
	require.False(t, first.IsUnlocked)
	require.Empty(t, first.Content)
	require.Equal(t, "draft", first.Status)

	unlocked, err := c.UnlockProposal(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, unlocked.IsUnlocked)
	require.Equal(t, "Strip and retile, new vanity.", unlocked.Content)

	// Unlocking again is free.
	_, err = c.UnlockProposal(ctx, first.ID)
	require.NoError(t, err)

	second, err := c.CreateProposal(ctx, proposalRequest())
	require.NoError(t, err)
	_, err = c.UnlockProposal(ctx, second.ID)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodePaymentRequired))
	status, _ := apiStatus(t, err)
	require.Equal(t, http.StatusPaymentRequired, status)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, me.Balance.Credits)
}

func TestProposalHiddenFromOtherUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.client(t, "alice").CreateProposal(ctx, proposalRequest())
	require.NoError(t, err)

	bob := e.client(t, "bob")
	_, err = bob.GetProposal(ctx, p.ID)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeNotFound))
	_, err = bob.UnlockProposal(ctx, p.ID)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeNotFound))
	require.True(t, ledgersdk.IsCode(bob.DeleteProposal(ctx, p.ID), ledgersdk.ErrorCodeNotFound))

	list, err := bob.ListProposals(ctx)
	require.NoError(t, err)
	require.Empty(t, list.Proposals)
}

func TestRequestValidation(t *testing.T) {
	e := newEnv(t)
	c := e.client(t, "alice")
	ctx := context.Background()

	req := proposalRequest()
	req.Title = ""
	req.PriceHighCents = 10
	_, err := c.CreateProposal(ctx, req)

	var apiErr *ledgersdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "required", apiErr.Details["title"])
	require.Equal(t, "gtefield", apiErr.Details["price_high_cents"])

	p, err := c.CreateProposal(ctx, proposalRequest())
	require.NoError(t, err)
	_, err = c.CreateDepositLink(ctx, p.ID, ledgersdk.DepositLinkRequest{Percentage: 30})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "oneof", apiErr.Details["percentage"])

	// Unknown fields are rejected outright.
	resp, err := http.Post(e.srv.URL+"/v1/public/proposals/x/accept", "application/json",
		bytes.NewBufferString(`{"name":"a","email":"a@example.com","signature":"s","extra":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProposalLifecycle(t *testing.T) {
	e := newEnv(t)
	owner := e.client(t, "alice")
	public := ledgersdk.NewClient(e.srv.URL)
	ctx := context.Background()

	p, err := owner.CreateProposal(ctx, proposalRequest())
	require.NoError(t, err)

	p, err = owner.SendProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "sent", p.Status)
	require.True(t, strings.HasPrefix(p.PublicURL, "https://quotes.test/p/"))
	token := path.Base(p.PublicURL)

	view, err := public.ViewPublicProposal(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "viewed", view.Status)
	require.Empty(t, view.Content)

	accept := ledgersdk.AcceptRequest{Name: "Sam Client", Email: "sam@example.com", Signature: signature(10)}
	_, err = public.AcceptPublicProposal(ctx, token, accept)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeInvalidSignature))

	accept.Signature = signature(1500)
	view, err = public.AcceptPublicProposal(ctx, token, accept)
	require.NoError(t, err)
	require.Equal(t, "accepted", view.Status)
	require.Equal(t, "Sam Client", view.AcceptedByName)

	_, err = public.AcceptPublicProposal(ctx, token, accept)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeAlreadyAccepted))

	_, err = owner.UpdateProposal(ctx, p.ID, proposalRequest())
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeInvalidTransition))

	cs := ledgersdk.CountersignRequest{Name: "Pat Tradie", Signature: signature(1500)}
	p, err = owner.CountersignProposal(ctx, p.ID, cs)
	require.NoError(t, err)
	require.NotNil(t, p.Countersignature)
	require.Equal(t, "Pat Tradie", p.Countersignature.Name)

	_, err = owner.CountersignProposal(ctx, p.ID, cs)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeAlreadyCountersigned))

	p, err = owner.CreateDepositLink(ctx, p.ID, ledgersdk.DepositLinkRequest{Percentage: 50})
	require.NoError(t, err)
	require.NotNil(t, p.Deposit)
	require.EqualValues(t, 500000, p.Deposit.AmountCents)
	require.Equal(t, "pending", p.Deposit.PaymentStatus)

	view, err = public.ViewPublicProposal(ctx, token)
	require.NoError(t, err)
	require.Equal(t, p.Deposit.PaymentLinkURL, view.DepositURL)

	p, err = owner.SetProposalOutcome(ctx, p.ID, ledgersdk.OutcomeRequest{Outcome: "won"})
	require.NoError(t, err)
	require.Equal(t, "won", p.Status)

	_, err = owner.SetProposalOutcome(ctx, p.ID, ledgersdk.OutcomeRequest{Outcome: "lost"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeInvalidTransition))
}

func TestUnknownPublicToken(t *testing.T) {
	e := newEnv(t)

	_, err := ledgersdk.NewClient(e.srv.URL).ViewPublicProposal(context.Background(), "nope")
	status, code := apiStatus(t, err)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, ledgersdk.ErrorCodeNotFound, code)
}

func TestCheckoutAndReconcile(t *testing.T) {
	e := newEnv(t)
	alice := e.client(t, "alice")
	ctx := context.Background()

	sess, err := alice.CreateCheckout(ctx, ledgersdk.CheckoutRequest{Plan: "pack"})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.test/"+sess.SessionID, sess.URL)

	_, err = alice.ReconcileSession(ctx, sess.SessionID)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodePaymentIncomplete))

	e.proc.pay(sess.SessionID)

	res, err := alice.ReconcileSession(ctx, sess.SessionID)
	require.NoError(t, err)
	require.False(t, res.AlreadyProcessed)
	require.EqualValues(t, 10, res.CreditsAdded)
	require.EqualValues(t, 11, res.Balance.EffectiveCredits)
	require.NotNil(t, res.Balance.ExpiresAt)

	res, err = alice.ReconcileSession(ctx, sess.SessionID)
	require.NoError(t, err)
	require.True(t, res.AlreadyProcessed)
	require.EqualValues(t, 0, res.CreditsAdded)
	require.EqualValues(t, 11, res.Balance.EffectiveCredits)

	_, err = e.client(t, "bob").ReconcileSession(ctx, sess.SessionID)
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeForbidden))

	_, err = alice.ReconcileSession(ctx, "cs_missing")
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeNotFound))

	_, err = alice.CreateCheckout(ctx, ledgersdk.CheckoutRequest{Plan: "gold"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeInvalidRequest))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := newEnv(t)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/billing/webhook", strings.NewReader(`{"id":"evt_1"}`))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTeamInviteFlow(t *testing.T) {
	e := newEnv(t)
	owner := e.client(t, "owner")
	joiner := e.client(t, "joiner")
	ctx := context.Background()

	c, err := owner.CreateCompany(ctx, ledgersdk.CompanyRequest{Name: "Pat's Plumbing"})
	require.NoError(t, err)
	require.Equal(t, "owner", c.MyRole)
	require.Equal(t, 1, c.MemberCount)

	_, err = owner.CreateCompany(ctx, ledgersdk.CompanyRequest{Name: "Second"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeAlreadyMember))

	inv, err := owner.CreateInvite(ctx, c.ID, ledgersdk.InviteRequest{Email: "joiner@example.com", Role: "member"})
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)
	require.Equal(t, "https://quotes.test/invites/accept?token="+inv.Token, inv.AcceptURL)

	_, err = joiner.CreateInvite(ctx, c.ID, ledgersdk.InviteRequest{Email: "x@example.com", Role: "member"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeNotFound))

	invites, err := owner.ListInvites(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, invites.Invites, 1)
	require.Empty(t, invites.Invites[0].Token)

	m, err := joiner.AcceptInvite(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, "member", m.Role)
	require.Equal(t, c.ID, m.CompanyID)

	_, err = joiner.AcceptInvite(ctx, inv.Token)
	status, code := apiStatus(t, err)
	require.Equal(t, http.StatusGone, status)
	require.Equal(t, ledgersdk.ErrorCodeInviteGone, code)

	mine, err := joiner.MyCompany(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, mine.MemberCount)
	require.Equal(t, "member", mine.MyRole)

	members, err := joiner.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members.Members, 2)

	_, err = joiner.SetMemberRole(ctx, c.ID, "owner", ledgersdk.MemberRoleRequest{Role: "member"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeForbidden))

	m, err = owner.SetMemberRole(ctx, c.ID, "joiner", ledgersdk.MemberRoleRequest{Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, "admin", m.Role)

	require.NoError(t, owner.RemoveMember(ctx, c.ID, "joiner"))

	mine, err = owner.MyCompany(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, mine.MemberCount)
}

func TestAdminRoutes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.client(t, "root")
	_, err := admin.Me(ctx)
	require.NoError(t, err)
	_, err = e.client(t, "alice").Me(ctx)
	require.NoError(t, err)

	_, err = admin.GrantCredits(ctx, "alice", ledgersdk.GrantCreditsRequest{Credits: 5, Reason: "goodwill"})
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeForbidden))

	require.NoError(t, e.store.Users().SetRole(ctx, "root", domain.RoleUser, domain.RoleAdmin))

	grant, err := admin.GrantCredits(ctx, "alice", ledgersdk.GrantCreditsRequest{Credits: 5, Reason: "goodwill"})
	require.NoError(t, err)
	require.EqualValues(t, 5, grant.CreditsAdded)
	require.EqualValues(t, 6, grant.Balance.EffectiveCredits)

	u, err := admin.GrantEntitlement(ctx, "alice", ledgersdk.EntitlementRequest{Name: "cost-lookup", Reason: "beta"})
	require.NoError(t, err)
	require.Equal(t, []string{"cost-lookup"}, u.Entitlements)

	_, err = admin.RevokeEntitlement(ctx, "alice", "cost-lookup", "")
	require.True(t, ledgersdk.IsCode(err, ledgersdk.ErrorCodeInvalidRequest))

	u, err = admin.RevokeEntitlement(ctx, "alice", "cost-lookup", "beta over")
	require.NoError(t, err)
	require.Empty(t, u.Entitlements)

	_, err = admin.SetUserRole(ctx, "root", ledgersdk.UserRoleRequest{Role: "user", Reason: "stepping down"})
	status, code := apiStatus(t, err)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, ledgersdk.ErrorCodeForbidden, code)

	u, err = admin.SetUserRole(ctx, "alice", ledgersdk.UserRoleRequest{Role: "admin", Reason: "ops cover"})
	require.NoError(t, err)
	require.Equal(t, "admin", u.Role)

	page, err := admin.ListAuditLogs(ctx, ledgersdk.AuditLogQuery{TargetUserID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.Equal(t, domain.AuditRoleChange, page.Entries[0].Action)
	require.NotEmpty(t, page.NextCursor)

	rest, err := admin.ListAuditLogs(ctx, ledgersdk.AuditLogQuery{TargetUserID: "alice", Before: page.NextCursor})
	require.NoError(t, err)
	require.NotEmpty(t, rest.Entries)
	require.Empty(t, rest.NextCursor)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	c := ledgersdk.NewClient(e.srv.URL)
	ctx := context.Background()

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
