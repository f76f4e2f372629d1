package domain

import "time"

// Audit actions.
const (
	AuditEntitlementGrant  = "entitlement.grant"
	AuditEntitlementRevoke = "entitlement.revoke"
	AuditRoleChange        = "role.change"
	AuditCreditGrant       = "credits.grant"
	AuditCreditDebit       = "credits.debit"
	AuditSeatPurchase      = "seats.purchase"
)

// SystemActor is recorded when a payment notification, not a person,
// caused the change.
const SystemActor = "system:payments"

// AuditLogEntry is append-only. Nothing updates or deletes these rows.
type AuditLogEntry struct {
	ID           string
	ActorID      string
	TargetUserID string
	Action       string
	Reason       string
	IPAddress    string
	CreatedAt    time.Time
}

// AuditFilter narrows ListAuditLogs. Zero values mean "any".
type AuditFilter struct {
	TargetUserID string
	ActorID      string
	Action       string
	Before       string // exclusive id cursor
	Limit        int
}
