package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type proposalsRepo struct {
	c conn
}

const proposalColumns = `id, user_id, title, client_name, client_email, content,
	price_low_cents, price_high_cents, currency, status, is_unlocked,
	public_token, view_count, sent_at, viewed_at,
	accepted_at, accepted_by_name, accepted_by_email, signature, accepted_ip,
	countersigned_at, countersigned_by_name, countersignature, outcome_at,
	payment_link_id, payment_link_url, deposit_percentage, deposit_amount_cents,
	payment_status, paid_at, created_at, updated_at`

func scanProposal(row interface{ Scan(...any) error }) (domain.Proposal, error) {
	var (
		p                                  domain.Proposal
		status, paymentStatus              string
		publicToken, linkID, acceptedIP    sql.NullString
		sentAt, viewedAt, acceptedAt       sql.NullTime
		countersignedAt, outcomeAt, paidAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.ClientName, &p.ClientEmail, &p.Content,
		&p.PriceLowCents, &p.PriceHighCents, &p.Currency, &status, &p.IsUnlocked,
		&publicToken, &p.ViewCount, &sentAt, &viewedAt,
		&acceptedAt, &p.AcceptedByName, &p.AcceptedByEmail, &p.Signature, &acceptedIP,
		&countersignedAt, &p.CountersignedByName, &p.Countersignature, &outcomeAt,
		&linkID, &p.PaymentLinkURL, &p.DepositPercentage, &p.DepositAmountCents,
		&paymentStatus, &paidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Proposal{}, err
	}
	p.Status = domain.ProposalStatus(status)
	p.PaymentStatus = domain.PaymentStatus(paymentStatus)
	p.PublicToken = mapNullString(publicToken)
	p.PaymentLinkID = mapNullString(linkID)
	p.AcceptedIP = mapNullString(acceptedIP)
	p.SentAt = mapNullTimePtr(sentAt)
	p.ViewedAt = mapNullTimePtr(viewedAt)
	p.AcceptedAt = mapNullTimePtr(acceptedAt)
	p.CountersignedAt = mapNullTimePtr(countersignedAt)
	p.OutcomeAt = mapNullTimePtr(outcomeAt)
	p.PaidAt = mapNullTimePtr(paidAt)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func (r *proposalsRepo) CreateProposal(ctx context.Context, p domain.Proposal) error {
	return r.c.insert(ctx, `
		INSERT INTO proposals (
			id, user_id, title, client_name, client_email, content,
			price_low_cents, price_high_cents, currency, status, is_unlocked,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Title, p.ClientName, p.ClientEmail, p.Content,
		p.PriceLowCents, p.PriceHighCents, p.Currency, string(p.Status), p.IsUnlocked,
		ts(p.CreatedAt), ts(p.UpdatedAt),
	)
}

func (r *proposalsRepo) get(ctx context.Context, where string, arg any) (domain.Proposal, error) {
	p, err := scanProposal(r.c.queryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE `+where, arg))
	if err != nil {
		return domain.Proposal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *proposalsRepo) GetProposalByID(ctx context.Context, id string) (domain.Proposal, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *proposalsRepo) GetProposalByPublicToken(ctx context.Context, token string) (domain.Proposal, error) {
	return r.get(ctx, `public_token = ?`, token)
}

func (r *proposalsRepo) GetProposalByPaymentLinkID(ctx context.Context, linkID string) (domain.Proposal, error) {
	return r.get(ctx, `payment_link_id = ?`, linkID)
}

func (r *proposalsRepo) ListProposalsByUser(ctx context.Context, userID string) ([]domain.Proposal, error) {
	rows, err := r.c.query(ctx, `
		SELECT `+proposalColumns+` FROM proposals
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *proposalsRepo) UpdateProposalContent(
	ctx context.Context,
	id string,
	in domain.ProposalInput,
	now time.Time,
) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals
		SET title = ?, client_name = ?, client_email = ?, content = ?,
			price_low_cents = ?, price_high_cents = ?, currency = ?, updated_at = ?
		WHERE id = ? AND status IN ('draft', 'sent', 'viewed')`,
		in.Title, in.ClientName, in.ClientEmail, in.Content,
		in.PriceLowCents, in.PriceHighCents, in.Currency, ts(now), id,
	)
}

func (r *proposalsRepo) DeleteProposal(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM proposals WHERE id = ?`, id)
}

func (r *proposalsRepo) SetPublicToken(ctx context.Context, id, token string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals SET public_token = ?, updated_at = ?
		WHERE id = ? AND public_token IS NULL`,
		token, ts(now), id,
	)
}

func (r *proposalsRepo) MarkUnlocked(ctx context.Context, id string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals SET is_unlocked = TRUE, updated_at = ?
		WHERE id = ? AND is_unlocked = FALSE`,
		ts(now), id,
	)
}

func (r *proposalsRepo) MarkSent(ctx context.Context, id string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals SET status = 'sent', sent_at = ?, updated_at = ?
		WHERE id = ? AND status = 'draft'`,
		ts(now), ts(now), id,
	)
}

func (r *proposalsRepo) RecordView(ctx context.Context, id string, now time.Time) error {
	return r.c.execOne(ctx, `
		UPDATE proposals
		SET view_count = view_count + 1,
			viewed_at = COALESCE(viewed_at, ?),
			status = CASE WHEN status = 'sent' THEN 'viewed' ELSE status END
		WHERE id = ?`,
		ts(now), id,
	)
}

func (r *proposalsRepo) AcceptProposal(ctx context.Context, id string, a domain.Acceptance, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals
		SET status = 'accepted', accepted_at = ?, accepted_by_name = ?, accepted_by_email = ?,
			signature = ?, accepted_ip = ?, updated_at = ?
		WHERE id = ? AND accepted_at IS NULL AND status IN ('sent', 'viewed')`,
		ts(now), a.Name, a.Email, a.Signature, mapStringNull(a.IPAddress), ts(now), id,
	)
}

func (r *proposalsRepo) CountersignProposal(
	ctx context.Context,
	id, name, signature string,
	now time.Time,
) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals
		SET countersigned_at = ?, countersigned_by_name = ?, countersignature = ?, updated_at = ?
		WHERE id = ? AND status = 'accepted' AND countersigned_at IS NULL`,
		ts(now), name, signature, ts(now), id,
	)
}

func (r *proposalsRepo) SetOutcome(
	ctx context.Context,
	id string,
	outcome domain.ProposalStatus,
	now time.Time,
) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals SET status = ?, outcome_at = ?, updated_at = ?
		WHERE id = ? AND status = 'accepted'`,
		string(outcome), ts(now), ts(now), id,
	)
}

func (r *proposalsRepo) SetDepositLink(
	ctx context.Context,
	id, prevLinkID, linkID, linkURL string,
	pct int,
	amountCents int64,
	now time.Time,
) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals
		SET payment_link_id = ?, payment_link_url = ?, deposit_percentage = ?,
			deposit_amount_cents = ?, payment_status = 'pending', paid_at = NULL, updated_at = ?
		WHERE id = ? AND payment_status <> 'paid' AND COALESCE(payment_link_id, '') = ?`,
		linkID, linkURL, pct, amountCents, ts(now), id, prevLinkID,
	)
}

func (r *proposalsRepo) MarkPaid(ctx context.Context, id string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE proposals SET payment_status = 'paid', paid_at = ?, updated_at = ?
		WHERE id = ? AND payment_status = 'pending'`,
		ts(now), ts(now), id,
	)
}
