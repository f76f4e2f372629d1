package domain

import (
	"slices"
	"strings"
	"time"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanCrew Plan = "crew"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanCrew:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User is the ledger's view of an identity-provider subject.
type User struct {
	ID    string
	Email string
	Name  string

	// ProposalCredits never goes negative. Access is revoked by expiry.
	ProposalCredits int64
	CreditsExpireAt *time.Time

	Plan         Plan
	Role         Role
	Entitlements []string

	ProcessorCustomerID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreditsExpired reports whether the stored balance has lapsed at now.
func (u User) CreditsExpired(now time.Time) bool {
	return u.CreditsExpireAt != nil && !u.CreditsExpireAt.After(now)
}

// EffectiveCredits is the spendable balance: zero once expired even though
// the stored integer is left alone until the next grant.
func (u User) EffectiveCredits(now time.Time) int64 {
	if u.CreditsExpired(now) {
		return 0
	}
	return u.ProposalCredits
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u User) HasEntitlement(name string) bool {
	return slices.Contains(u.Entitlements, name)
}

// NormalizeEntitlement trims and lowercases an entitlement name. Names are
// stored space delimited so they may not contain whitespace.
func NormalizeEntitlement(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " \t\r\n") || len(name) > 64 {
		return "", false
	}
	return name, true
}

// CreditGrant is the idempotency record for one externally notified grant.
type CreditGrant struct {
	ID         string
	ExternalID string
	UserID     string
	Credits    int64
	ExpiresAt  *time.Time
	Source     string
	CreatedAt  time.Time
}

// Grant sources.
const (
	GrantSourceSignup  = "signup"
	GrantSourcePayment = "payment"
	GrantSourceAdmin   = "admin"
)
