package domain

import "errors"

// Typed failures surfaced by the ledger. NotFound deliberately covers "exists
// but belongs to someone else" so callers cannot probe for ids.
var (
	ErrNotFound                = errors.New("ledger: not found")
	ErrForbidden               = errors.New("ledger: forbidden")
	ErrInsufficientCredit      = errors.New("ledger: insufficient credit")
	ErrAlreadyAccepted         = errors.New("ledger: proposal already accepted")
	ErrAlreadyCountersigned    = errors.New("ledger: proposal already countersigned")
	ErrSeatLimitReached        = errors.New("ledger: seat limit reached")
	ErrInviteExpiredOrConsumed = errors.New("ledger: invite expired or consumed")
	ErrPaymentIncomplete       = errors.New("ledger: payment incomplete")

	ErrInvalidTransition = errors.New("ledger: invalid status transition")
	ErrInvalidInput      = errors.New("ledger: invalid input")
	ErrInvalidSignature  = errors.New("ledger: invalid signature")
	ErrAlreadyMember     = errors.New("ledger: user already belongs to a company")
	ErrDeliveryFailed    = errors.New("ledger: delivery failed")
	ErrConcurrentUpdate  = errors.New("ledger: changed by a concurrent request")
)
