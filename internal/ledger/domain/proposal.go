package domain

import "time"

type ProposalStatus string

const (
	StatusDraft    ProposalStatus = "draft"
	StatusSent     ProposalStatus = "sent"
	StatusViewed   ProposalStatus = "viewed"
	StatusAccepted ProposalStatus = "accepted"
	StatusWon      ProposalStatus = "won"
	StatusLost     ProposalStatus = "lost"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusWon, StatusLost:
		return true
	}
	return false
}

// transitions lists every edge of the proposal pipeline. Countersignature is
// tracked separately and never changes status.
var transitions = map[ProposalStatus][]ProposalStatus{
	StatusDraft:    {StatusSent},
	StatusSent:     {StatusViewed, StatusAccepted},
	StatusViewed:   {StatusAccepted},
	StatusAccepted: {StatusWon, StatusLost},
}

// CanTransition reports whether from -> to is an edge of the pipeline.
func CanTransition(from, to ProposalStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Editable statuses allow content and price changes. Once a client has
// accepted, the document they signed is frozen.
func (s ProposalStatus) Editable() bool {
	return s == StatusDraft || s == StatusSent || s == StatusViewed
}

// Acceptable statuses may be accepted through the public link.
func (s ProposalStatus) Acceptable() bool {
	return s == StatusSent || s == StatusViewed
}

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = ""
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Proposal struct {
	ID          string
	UserID      string
	Title       string
	ClientName  string
	ClientEmail string
	Content     string

	// Prices are integer cents.
	PriceLowCents  int64
	PriceHighCents int64
	Currency       string

	Status     ProposalStatus
	IsUnlocked bool

	PublicToken string
	ViewCount   int64
	SentAt      *time.Time
	ViewedAt    *time.Time

	AcceptedAt      *time.Time
	AcceptedByName  string
	AcceptedByEmail string
	Signature       string
	AcceptedIP      string

	CountersignedAt     *time.Time
	CountersignedByName string
	Countersignature    string

	OutcomeAt *time.Time

	PaymentLinkID      string
	PaymentLinkURL     string
	DepositPercentage  int
	DepositAmountCents int64
	PaymentStatus      PaymentStatus
	PaidAt             *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Proposal) IsAccepted() bool      { return p.AcceptedAt != nil }
func (p Proposal) IsCountersigned() bool { return p.CountersignedAt != nil }

// Locked returns a copy with the gated content removed. Everything needed to
// render a paywall preview is kept.
func (p Proposal) Locked() Proposal {
	if p.IsUnlocked {
		return p
	}
	p.Content = ""
	return p
}

// ProposalInput is the caller-editable part of a proposal.
type ProposalInput struct {
	Title          string
	ClientName     string
	ClientEmail    string
	Content        string
	PriceLowCents  int64
	PriceHighCents int64
	Currency       string
}

// Validate checks the price range and required fields.
func (in ProposalInput) Validate() error {
	if in.Title == "" {
		return ErrInvalidInput
	}
	if in.PriceLowCents < 0 || in.PriceHighCents < in.PriceLowCents {
		return ErrInvalidInput
	}
	if in.ClientEmail != "" && !ValidEmail(in.ClientEmail) {
		return ErrInvalidInput
	}
	return nil
}

// Acceptance is the client's signature block from the public link.
type Acceptance struct {
	Name      string
	Email     string
	Signature string
	IPAddress string
}
