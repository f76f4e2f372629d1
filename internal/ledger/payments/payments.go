// Package payments is the ledger's view of the payment processor.
package payments

import (
	"context"
	"errors"
	"strconv"
)

var (
	ErrSessionNotFound  = errors.New("payments: session not found")
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
	ErrInvalidMetadata  = errors.New("payments: invalid session metadata")
)

// Plan is what a checkout session sells.
type Plan string

const (
	PlanPack     Plan = "pack"
	PlanLongPack Plan = "long_pack"
	PlanPro      Plan = "pro"
	PlanCrew     Plan = "crew"
	PlanSeats    Plan = "seats"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanPack, PlanLongPack, PlanPro, PlanCrew, PlanSeats:
		return true
	}
	return false
}

// Subscription reports whether the plan is billed as a recurring subscription.
func (p Plan) Subscription() bool { return p == PlanPro || p == PlanCrew }

// Metadata keys carried on sessions and payment links. Reconciliation reads
// everything it needs from these so it never depends on local state.
const (
	MetaUserID     = "user_id"
	MetaCredits    = "credits"
	MetaPlan       = "plan"
	MetaKind       = "kind"
	MetaLongLived  = "long_lived"
	MetaCompanyID  = "company_id"
	MetaSeats      = "seats"
	MetaProposalID = "proposal_id"
)

type Metadata struct {
	UserID     string
	Plan       Plan
	Credits    int64
	LongLived  bool
	CompanyID  string
	Seats      int
	ProposalID string
}

// Map encodes m for the processor. Empty fields are omitted.
func (m Metadata) Map() map[string]string {
	out := map[string]string{}
	if m.UserID != "" {
		out[MetaUserID] = m.UserID
	}
	if m.Plan != "" {
		out[MetaPlan] = string(m.Plan)
		out[MetaKind] = string(m.Plan)
	}
	if m.Credits > 0 {
		out[MetaCredits] = strconv.FormatInt(m.Credits, 10)
	}
	if m.LongLived {
		out[MetaLongLived] = "true"
	}
	if m.CompanyID != "" {
		out[MetaCompanyID] = m.CompanyID
	}
	if m.Seats > 0 {
		out[MetaSeats] = strconv.Itoa(m.Seats)
	}
	if m.ProposalID != "" {
		out[MetaProposalID] = m.ProposalID
	}
	return out
}

// ParseMetadata decodes session metadata. Missing numeric fields are zero;
// malformed ones are an error.
func ParseMetadata(raw map[string]string) (Metadata, error) {
	m := Metadata{
		UserID:     raw[MetaUserID],
		Plan:       Plan(raw[MetaPlan]),
		CompanyID:  raw[MetaCompanyID],
		ProposalID: raw[MetaProposalID],
	}
	if m.Plan == "" {
		m.Plan = Plan(raw[MetaKind])
	}

	if v := raw[MetaCredits]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return Metadata{}, ErrInvalidMetadata
		}
		m.Credits = n
	}
	if v := raw[MetaSeats]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Metadata{}, ErrInvalidMetadata
		}
		m.Seats = n
	}
	if v := raw[MetaLongLived]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Metadata{}, ErrInvalidMetadata
		}
		m.LongLived = b
	}
	return m, nil
}

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	Quantity   int64
	Plan       Plan
	SuccessURL string
	CancelURL  string
	Metadata   Metadata
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Session is a completed or pending checkout as reported by the processor.
type Session struct {
	ID            string
	Paid          bool
	CustomerID    string
	PaymentLinkID string
	Metadata      map[string]string
}

type PaymentLink struct {
	ID  string
	URL string
}

type PaymentLinkRequest struct {
	AmountCents int64
	Currency    string
	ProductName string
	Metadata    Metadata
}

// Event is a verified webhook delivery. Session is set for checkout events.
type Event struct {
	ID      string
	Type    string
	Session *Session
}

const EventCheckoutCompleted = "checkout.session.completed"

// Processor is the payment processor port.
type Processor interface {
	CreateCustomer(ctx context.Context, userID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)

	// RetrieveSession returns ErrSessionNotFound for unknown ids.
	RetrieveSession(ctx context.Context, id string) (Session, error)

	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (PaymentLink, error)
	DeactivatePaymentLink(ctx context.Context, id string) error

	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (Event, error)
}
