package http

import (
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/pkg/ledgersdk"
)

func toBalance(b service.Balance) ledgersdk.BalanceResponse {
	return ledgersdk.BalanceResponse{
		Credits:          b.Credits,
		EffectiveCredits: b.Effective,
		ExpiresAt:        b.ExpiresAt,
	}
}

func toUser(u domain.User, now time.Time) ledgersdk.UserResponse {
	ents := u.Entitlements
	if ents == nil {
		ents = []string{}
	}
	return ledgersdk.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Plan:         string(u.Plan),
		Role:         string(u.Role),
		Entitlements: ents,
		Balance: ledgersdk.BalanceResponse{
			Credits:          u.ProposalCredits,
			EffectiveCredits: u.EffectiveCredits(now),
			ExpiresAt:        u.CreditsExpireAt,
		},
		CreatedAt: u.CreatedAt,
	}
}

func toProposal(p domain.Proposal, publicURL string) ledgersdk.ProposalResponse {
	out := ledgersdk.ProposalResponse{
		ID:             p.ID,
		Title:          p.Title,
		ClientName:     p.ClientName,
		ClientEmail:    p.ClientEmail,
		Content:        p.Content,
		PriceLowCents:  p.PriceLowCents,
		PriceHighCents: p.PriceHighCents,
		Currency:       p.Currency,
		Status:         string(p.Status),
		IsUnlocked:     p.IsUnlocked,
		ViewCount:      p.ViewCount,
		SentAt:         p.SentAt,
		ViewedAt:       p.ViewedAt,
		OutcomeAt:      p.OutcomeAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.PublicToken != "" {
		out.PublicURL = publicURL
	}
	if p.AcceptedAt != nil {
		out.Acceptance = &ledgersdk.AcceptanceInfo{
			Name:       p.AcceptedByName,
			Email:      p.AcceptedByEmail,
			Signature:  p.Signature,
			AcceptedAt: *p.AcceptedAt,
		}
	}
	if p.CountersignedAt != nil {
		out.Countersignature = &ledgersdk.CountersignatureInfo{
			Name:            p.CountersignedByName,
			Signature:       p.Countersignature,
			CountersignedAt: *p.CountersignedAt,
		}
	}
	if p.PaymentLinkURL != "" {
		out.Deposit = &ledgersdk.DepositInfo{
			PaymentLinkURL: p.PaymentLinkURL,
			Percentage:     p.DepositPercentage,
			AmountCents:    p.DepositAmountCents,
			PaymentStatus:  string(p.PaymentStatus),
			PaidAt:         p.PaidAt,
		}
	}
	return out
}

// toPublicProposal never carries the client's email, the signature images
// or any owner data.
func toPublicProposal(p domain.Proposal) ledgersdk.PublicProposalResponse {
	out := ledgersdk.PublicProposalResponse{
		Title:           p.Title,
		ClientName:      p.ClientName,
		Content:         p.Content,
		PriceLowCents:   p.PriceLowCents,
		PriceHighCents:  p.PriceHighCents,
		Currency:        p.Currency,
		Status:          string(p.Status),
		IsUnlocked:      p.IsUnlocked,
		AcceptedAt:      p.AcceptedAt,
		AcceptedByName:  p.AcceptedByName,
		CountersignedAt: p.CountersignedAt,
	}
	if p.PaymentLinkURL != "" {
		out.DepositURL = p.PaymentLinkURL
		out.DepositCents = p.DepositAmountCents
		out.PaymentStatus = string(p.PaymentStatus)
	}
	return out
}

func toCompany(c domain.Company, role domain.MemberRole) ledgersdk.CompanyResponse {
	return ledgersdk.CompanyResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		SeatLimit:   c.SeatLimit,
		ExtraSeats:  c.ExtraSeats,
		MemberCount: c.MemberCount,
		Phone:       c.Phone,
		Website:     c.Website,
		Address:     c.Address,
		LogoURL:     c.LogoURL,
		MyRole:      string(role),
		CreatedAt:   c.CreatedAt,
	}
}

func toMember(m domain.Membership) ledgersdk.MemberResponse {
	return ledgersdk.MemberResponse{
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		JoinedAt:  m.CreatedAt,
	}
}

func toInvite(i domain.Invite) ledgersdk.InviteResponse {
	return ledgersdk.InviteResponse{
		ID:        i.ID,
		Email:     i.Email,
		Role:      string(i.Role),
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func toAuditEntry(e domain.AuditLogEntry) ledgersdk.AuditLogEntry {
	return ledgersdk.AuditLogEntry{
		ID:           e.ID,
		ActorID:      e.ActorID,
		TargetUserID: e.TargetUserID,
		Action:       e.Action,
		Reason:       e.Reason,
		IPAddress:    e.IPAddress,
		CreatedAt:    e.CreatedAt,
	}
}
