package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a conditional write affected no rows
	// because its precondition no longer held.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories are exposed as methods so a Tx can hand out the
// same repositories bound to the transaction.
type Store interface {
	Users() Users
	CreditGrants() CreditGrants
	Proposals() Proposals
	Companies() Companies
	Memberships() Memberships
	Invites() Invites
	SeatPurchases() SeatPurchases
	AuditLogs() AuditLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists if the id is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	SetProcessorCustomerID(ctx context.Context, userID, customerID string) error
	SetPlan(ctx context.Context, userID string, plan domain.Plan) error

	// SetRole moves the user from one role to another. Returns ErrConflict
	// when the stored role is no longer from.
	SetRole(ctx context.Context, userID string, from, to domain.Role) error

	// SetEntitlements replaces the entitlement set while it still equals prev.
	// Returns ErrConflict otherwise. Callers outside the admin service must
	// not use it; every change needs an audit entry in the same tx.
	SetEntitlements(ctx context.Context, userID string, prev, next []string) error

	// AddCredits adds credits and sets the expiry. A balance that had already
	// expired at now is reset before the credits are added.
	AddCredits(ctx context.Context, userID string, credits int64, expiresAt *time.Time, now time.Time) error

	// DebitCredits subtracts amount when the balance covers it and has not
	// expired at now. Returns ErrConflict when the condition fails.
	DebitCredits(ctx context.Context, userID string, amount int64, now time.Time) error
}

type CreditGrants interface {
	// InsertGrant records a grant keyed by its external id. inserted is false
	// when a grant with the same external id already exists.
	InsertGrant(ctx context.Context, g domain.CreditGrant) (inserted bool, err error)

	GetGrantByExternalID(ctx context.Context, externalID string) (domain.CreditGrant, error)
}

type Proposals interface {
	CreateProposal(ctx context.Context, p domain.Proposal) error
	GetProposalByID(ctx context.Context, id string) (domain.Proposal, error)
	GetProposalByPublicToken(ctx context.Context, token string) (domain.Proposal, error)
	GetProposalByPaymentLinkID(ctx context.Context, linkID string) (domain.Proposal, error)

	// ListProposalsByUser returns the user's proposals, newest first.
	ListProposalsByUser(ctx context.Context, userID string) ([]domain.Proposal, error)

	// UpdateProposalContent applies in while the proposal is still editable.
	UpdateProposalContent(ctx context.Context, id string, in domain.ProposalInput, now time.Time) error

	DeleteProposal(ctx context.Context, id string) error

	// SetPublicToken sets the token only if none exists yet.
	SetPublicToken(ctx context.Context, id, token string, now time.Time) error

	// MarkUnlocked flips is_unlocked from false to true.
	MarkUnlocked(ctx context.Context, id string, now time.Time) error

	// MarkSent moves a draft to sent.
	MarkSent(ctx context.Context, id string, now time.Time) error

	// RecordView counts a public view and moves sent to viewed.
	RecordView(ctx context.Context, id string, now time.Time) error

	// AcceptProposal stores the client's acceptance while the proposal is
	// sent or viewed and has never been accepted.
	AcceptProposal(ctx context.Context, id string, a domain.Acceptance, now time.Time) error

	// CountersignProposal stores the contractor signature while the proposal
	// is accepted and not yet countersigned.
	CountersignProposal(ctx context.Context, id, name, signature string, now time.Time) error

	// SetOutcome moves an accepted proposal to won or lost.
	SetOutcome(ctx context.Context, id string, outcome domain.ProposalStatus, now time.Time) error

	// SetDepositLink replaces the payment link fields and marks payment
	// pending while the current link is still prevLinkID ("" for none) and
	// the deposit is unpaid. Returns ErrConflict otherwise.
	SetDepositLink(ctx context.Context, id, prevLinkID, linkID, linkURL string, pct int, amountCents int64, now time.Time) error

	// MarkPaid flips payment_status from pending to paid.
	MarkPaid(ctx context.Context, id string, now time.Time) error
}

type Companies interface {
	CreateCompany(ctx context.Context, c domain.Company) error
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
	UpdateCompanyProfile(ctx context.Context, id string, p domain.CompanyProfile, now time.Time) error

	// ReserveSeat increments member_count only while a seat is open.
	// Returns ErrConflict when the company is full.
	ReserveSeat(ctx context.Context, companyID string, now time.Time) error

	// ReleaseSeat decrements member_count.
	ReleaseSeat(ctx context.Context, companyID string, now time.Time) error

	AddExtraSeats(ctx context.Context, companyID string, seats int, now time.Time) error
}

type Memberships interface {
	// CreateMembership returns ErrAlreadyExists if the user already belongs
	// to any company.
	CreateMembership(ctx context.Context, m domain.Membership) error

	GetMembershipByUserID(ctx context.Context, userID string) (domain.Membership, error)
	ListMembers(ctx context.Context, companyID string) ([]domain.Membership, error)
	DeleteMembership(ctx context.Context, companyID, userID string) error
	UpdateMemberRole(ctx context.Context, companyID, userID string, role domain.MemberRole) error
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error
	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// ListInvitesByCompany returns unaccepted invites, newest first.
	ListInvitesByCompany(ctx context.Context, companyID string) ([]domain.Invite, error)

	// ConsumeInvite marks an unexpired, unaccepted invite accepted. Returns
	// ErrConflict if it was already consumed or has expired at now.
	ConsumeInvite(ctx context.Context, id, userID string, now time.Time) error

	DeleteInvite(ctx context.Context, id string) error

	// DeleteExpiredInvites removes unaccepted invites that expired before now.
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}

type SeatPurchases interface {
	// InsertSeatPurchase records a purchase keyed by its external id.
	// inserted is false when the external id was already recorded.
	InsertSeatPurchase(ctx context.Context, p domain.SeatPurchase) (inserted bool, err error)
}

type AuditLogs interface {
	AppendAuditLog(ctx context.Context, e domain.AuditLogEntry) error

	// ListAuditLogs returns entries newest first.
	ListAuditLogs(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, error)
}
