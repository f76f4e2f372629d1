package ledgersdk

import "time"

// ============================================================================
// Common
// ============================================================================

// ErrorResponse is the body of every failure. Details is only set for
// request validation failures and maps field names to the failed rule.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
}

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies the ledger cannot serve without.
type HealthChecks struct {
	Database string `json:"database"`
	Verifier string `json:"verifier"`
}

// ============================================================================
// Users & Credits
// ============================================================================

// BalanceResponse is a credit position. EffectiveCredits is zero once the
// balance has expired even though Credits still holds the stored value.
type BalanceResponse struct {
	Credits          int64      `json:"credits"`
	EffectiveCredits int64      `json:"effective_credits"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

type UserResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name,omitempty"`
	Plan         string          `json:"plan"`
	Role         string          `json:"role"`
	Entitlements []string        `json:"entitlements"`
	Balance      BalanceResponse `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ============================================================================
// Proposals
// ============================================================================

// ProposalRequest creates or replaces a proposal's editable fields.
type ProposalRequest struct {
	Title          string `json:"title"            validate:"required,max=200"`
	ClientName     string `json:"client_name"      validate:"max=200"`
	ClientEmail    string `json:"client_email"     validate:"omitempty,email,max=254"`
	Content        string `json:"content"          validate:"max=200000"`
	PriceLowCents  int64  `json:"price_low_cents"  validate:"gte=0"`
	PriceHighCents int64  `json:"price_high_cents" validate:"gtefield=PriceLowCents"`
	Currency       string `json:"currency"         validate:"omitempty,len=3,alpha"`
}

type AcceptanceInfo struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Signature  string    `json:"signature,omitempty"`
	AcceptedAt time.Time `json:"accepted_at"`
}

type CountersignatureInfo struct {
	Name            string    `json:"name"`
	Signature       string    `json:"signature,omitempty"`
	CountersignedAt time.Time `json:"countersigned_at"`
}

type DepositInfo struct {
	PaymentLinkURL string     `json:"payment_link_url"`
	Percentage     int        `json:"percentage"`
	AmountCents    int64      `json:"amount_cents"`
	PaymentStatus  string     `json:"payment_status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

// ProposalResponse is the owner's view. Content is omitted until the
// proposal is unlocked.
type ProposalResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ClientName     string `json:"client_name,omitempty"`
	ClientEmail    string `json:"client_email,omitempty"`
	Content        string `json:"content,omitempty"`
	PriceLowCents  int64  `json:"price_low_cents"`
	PriceHighCents int64  `json:"price_high_cents"`
	Currency       string `json:"currency"`

	Status     string `json:"status"`
	IsUnlocked bool   `json:"is_unlocked"`

	PublicURL string     `json:"public_url,omitempty"`
	ViewCount int64      `json:"view_count"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	ViewedAt  *time.Time `json:"viewed_at,omitempty"`

	Acceptance       *AcceptanceInfo       `json:"acceptance,omitempty"`
	Countersignature *CountersignatureInfo `json:"countersignature,omitempty"`
	Deposit          *DepositInfo          `json:"deposit,omitempty"`
	OutcomeAt        *time.Time            `json:"outcome_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListProposalsResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

// PublicProposalResponse is what the client sees through the share link.
type PublicProposalResponse struct {
	Title          string `json:"title"`
	ClientName     string `json:"client_name,omitempty"`
	Content        string `json:"content,omitempty"`
	PriceLowCents  int64  `json:"price_low_cents"`
	PriceHighCents int64  `json:"price_high_cents"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	IsUnlocked     bool   `json:"is_unlocked"`

	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	AcceptedByName  string     `json:"accepted_by_name,omitempty"`
	CountersignedAt *time.Time `json:"countersigned_at,omitempty"`

	DepositURL    string `json:"deposit_url,omitempty"`
	DepositCents  int64  `json:"deposit_cents,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// AcceptRequest is the client's signature block. Signature is an image data
// URL ("data:image/png;base64,...").
type AcceptRequest struct {
	Name      string `json:"name"      validate:"required,max=200"`
	Email     string `json:"email"     validate:"required,email,max=254"`
	Signature string `json:"signature" validate:"required"`
}

type CountersignRequest struct {
	Name      string `json:"name"      validate:"required,max=200"`
	Signature string `json:"signature" validate:"required"`
}

type OutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=won lost"`
}

type DepositLinkRequest struct {
	Percentage int `json:"percentage" validate:"required,oneof=25 50 100"`
}

// ============================================================================
// Billing
// ============================================================================

type CheckoutRequest struct {
	Plan  string `json:"plan"            validate:"required,oneof=pack long_pack pro crew seats"`
	Seats int    `json:"seats,omitempty" validate:"required_if=Plan seats,gte=0,lte=100"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type ReconcileResponse struct {
	SessionID        string          `json:"session_id"`
	Plan             string          `json:"plan"`
	CreditsAdded     int64           `json:"credits_added"`
	SeatsAdded       int             `json:"seats_added,omitempty"`
	AlreadyProcessed bool            `json:"already_processed"`
	Balance          BalanceResponse `json:"balance"`
}

// ============================================================================
// Teams
// ============================================================================

type CompanyRequest struct {
	Name    string `json:"name"     validate:"required,max=200"`
	Phone   string `json:"phone"    validate:"max=50"`
	Website string `json:"website"  validate:"omitempty,url,max=500"`
	Address string `json:"address"  validate:"max=500"`
	LogoURL string `json:"logo_url" validate:"omitempty,url,max=1000"`
}

type CompanyResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	SeatLimit   int       `json:"seat_limit"`
	ExtraSeats  int       `json:"extra_seats"`
	MemberCount int       `json:"member_count"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	Address     string    `json:"address,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	MyRole      string    `json:"my_role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	CompanyID string    `json:"company_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

type ListMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

type MemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role"  validate:"required,oneof=admin member"`
}

// InviteResponse carries Token and AcceptURL only when the invite is created.
type InviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty"`
	AcceptURL string    `json:"accept_url,omitempty"`
}

type ListInvitesResponse struct {
	Invites []InviteResponse `json:"invites"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

// ============================================================================
// Admin
// ============================================================================

type EntitlementRequest struct {
	Name   string `json:"name"   validate:"required,max=64"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type UserRoleRequest struct {
	Role   string `json:"role"   validate:"required,oneof=user admin"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type GrantCreditsRequest struct {
	Credits   int64      `json:"credits"              validate:"required,gte=1,lte=100000"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason"               validate:"required,max=500"`
}

type GrantCreditsResponse struct {
	CreditsAdded int64           `json:"credits_added"`
	Balance      BalanceResponse `json:"balance"`
}

type AuditLogEntry struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actor_id"`
	TargetUserID string    `json:"target_user_id"`
	Action       string    `json:"action"`
	Reason       string    `json:"reason"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListAuditLogsResponse is newest first. Pass NextCursor as "before" to
// fetch the next page.
type ListAuditLogsResponse struct {
	Entries    []AuditLogEntry `json:"entries"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
