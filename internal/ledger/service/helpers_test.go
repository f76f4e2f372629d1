package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/quoteledger/pkg/idx"

	"github.com/stretchr/testify/require"
)

const sigMin = 1000

var epoch = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s store.Store, credits int64, expires *time.Time) domain.User {
	t.Helper()
	id := idx.New().String()
	u := domain.User{
		ID:              id,
		Email:           strings.ToLower(id) + "@example.com",
		Name:            "Pat Tradie",
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

func signature(n int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", n)))
}

func proposalInput() domain.ProposalInput {
	return domain.ProposalInput{
		Title:          "Bathroom renovation",
		ClientName:     "Sam Client",
		ClientEmail:    "sam@example.com",
		Content:        "Strip and retile, new vanity.",
		PriceLowCents:  800000,
		PriceHighCents: 1200000,
		Currency:       "AUD",
	}
}

// recordingSender keeps every message and fails on demand.
type recordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingSender) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingSender) sent(kind notify.Kind) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Message
	for _, m := range r.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// fakeProcessor is an in-memory payment processor.
type fakeProcessor struct {
	mu          sync.Mutex
	seq         int
	customers   map[string]string
	sessions    map[string]payments.Session
	checkouts   []payments.CheckoutRequest
	links       map[string]payments.PaymentLinkRequest
	deactivated []string
	deactErr    error
	events      map[string]payments.Event

	// onLink runs once, after the next payment link is created.
	onLink func()
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		customers: map[string]string{},
		sessions:  map[string]payments.Session{},
		links:     map[string]payments.PaymentLinkRequest{},
		events:    map[string]payments.Event{},
	}
}

func (f *fakeProcessor) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *fakeProcessor) CreateCustomer(_ context.Context, userID, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("cus")
	f.customers[userID] = id
	return id, nil
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next("cs")
	f.checkouts = append(f.checkouts, req)
	f.sessions[id] = payments.Session{ID: id, CustomerID: req.CustomerID, Metadata: req.Metadata.Map()}
	return payments.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (f *fakeProcessor) RetrieveSession(_ context.Context, id string) (payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return payments.Session{}, payments.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeProcessor) CreatePaymentLink(_ context.Context, req payments.PaymentLinkRequest) (payments.PaymentLink, error) {
	f.mu.Lock()
	id := f.next("plink")
	f.links[id] = req
	hook := f.onLink
	f.onLink = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return payments.PaymentLink{ID: id, URL: "https://pay.test/" + id}, nil
}

// activeLinks returns the links created and not deactivated.
func (f *fakeProcessor) activeLinks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := range f.links {
		if !slices.Contains(f.deactivated, id) {
			out = append(out, id)
		}
	}
	return out
}

func (f *fakeProcessor) DeactivatePaymentLink(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return f.deactErr
}

// ParseWebhook treats the payload as an event id and the signature as a
// shared secret.
func (f *fakeProcessor) ParseWebhook(payload []byte, sig string) (payments.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sig != "valid" {
		return payments.Event{}, payments.ErrInvalidSignature
	}
	ev, ok := f.events[string(payload)]
	if !ok {
		return payments.Event{}, errors.New("unknown event")
	}
	return ev, nil
}

// paySession stores a paid session directly, as if the user completed checkout.
func (f *fakeProcessor) paySession(id string, meta payments.Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id] = payments.Session{ID: id, Paid: true, Metadata: meta.Map()}
}

func (f *fakeProcessor) addEvent(id string, ev payments.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[id] = ev
}

type harness struct {
	store     store.Store
	clock     *testClock
	sender    *recordingSender
	processor *fakeProcessor

	credits   *CreditService
	proposals *ProposalService
	billing   *BillingService
	team      *TeamService
	admin     *AdminService
	users     *UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := newTestStore(t)
	clk := &testClock{now: epoch}
	sender := &recordingSender{}
	proc := newFakeProcessor()

	return &harness{
		store:     st,
		clock:     clk,
		sender:    sender,
		processor: proc,

		credits: &CreditService{Store: st, Now: clk.Now},
		proposals: &ProposalService{
			Store:             st,
			Notifier:          sender,
			PublicBaseURL:     "https://quotes.test",
			SignatureMinBytes: sigMin,
			Now:               clk.Now,
		},
		billing: &BillingService{
			Store:     st,
			Processor: proc,
			Notifier:  sender,
			Catalog: Catalog{
				payments.PlanPack:     {PriceID: "price_pack", Credits: 10, TTL: 90 * 24 * time.Hour},
				payments.PlanLongPack: {PriceID: "price_long", Credits: 25, TTL: 365 * 24 * time.Hour},
				payments.PlanPro:      {PriceID: "price_pro", Credits: 30},
				payments.PlanCrew:     {PriceID: "price_crew", Credits: 100},
				payments.PlanSeats:    {PriceID: "price_seat"},
			},
			PublicBaseURL: "https://quotes.test",
			Now:           clk.Now,
		},
		team: &TeamService{
			Store:         st,
			Notifier:      sender,
			InviteTTL:     7 * 24 * time.Hour,
			BaseSeats:     3,
			PublicBaseURL: "https://quotes.test",
			Now:           clk.Now,
		},
		admin: &AdminService{Store: st, Now: clk.Now},
		users: &UserService{Store: st, SignupCredits: 1, Now: clk.Now},
	}
}

func (h *harness) balance(t *testing.T, userID string) Balance {
	t.Helper()
	b, err := h.credits.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

// sentProposal creates a proposal and shares it so it can be accepted.
func (h *harness) sentProposal(t *testing.T, userID string) domain.Proposal {
	t.Helper()
	ctx := context.Background()
	p, err := h.proposals.Create(ctx, userID, proposalInput())
	require.NoError(t, err)
	p, err = h.proposals.Send(ctx, p.ID, userID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSent, p.Status)
	return p
}

func (h *harness) accept(t *testing.T, token string) domain.Proposal {
	t.Helper()
	p, err := h.proposals.AcceptPublic(context.Background(), token, domain.Acceptance{
		Name:      "Sam Client",
		Email:     "sam@example.com",
		Signature: signature(sigMin + 10),
		IPAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	return p
}
