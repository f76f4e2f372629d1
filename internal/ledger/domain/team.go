package domain

import "time"

type MemberRole string

const (
	MemberOwner  MemberRole = "owner"
	MemberAdmin  MemberRole = "admin"
	MemberMember MemberRole = "member"
)

func (r MemberRole) Valid() bool {
	switch r {
	case MemberOwner, MemberAdmin, MemberMember:
		return true
	}
	return false
}

// CanManage reports whether the role may invite, remove or re-role members.
func (r MemberRole) CanManage() bool { return r == MemberOwner || r == MemberAdmin }

type Company struct {
	ID      string
	OwnerID string
	Name    string

	SeatLimit   int
	ExtraSeats  int
	MemberCount int

	Phone   string
	Website string
	Address string
	LogoURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Capacity is the number of memberships the company may hold.
func (c Company) Capacity() int { return c.SeatLimit + c.ExtraSeats }

func (c Company) HasOpenSeat() bool { return c.MemberCount < c.Capacity() }

// CompanyProfile holds the denormalised display fields.
type CompanyProfile struct {
	Name    string
	Phone   string
	Website string
	Address string
	LogoURL string
}

// Membership ties a user to exactly one company.
type Membership struct {
	CompanyID string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
}

type Invite struct {
	ID        string
	CompanyID string
	Email     string
	Role      MemberRole
	TokenHash string
	InvitedBy string

	ExpiresAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy string

	CreatedAt time.Time
}

// Active reports whether the invite can still be accepted at now.
func (i Invite) Active(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}

// SeatPurchase records extra seats bought through the payment processor,
// keyed by the processor's session id.
type SeatPurchase struct {
	ID         string
	ExternalID string
	CompanyID  string
	Seats      int
	CreatedAt  time.Time
}
