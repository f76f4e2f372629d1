package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type invitesRepo struct {
	c conn
}

const inviteColumns = `id, company_id, email, role, token_hash, invited_by,
	expires_at, accepted_at, accepted_by, created_at`

func scanInvite(row interface{ Scan(...any) error }) (domain.Invite, error) {
	var (
		inv        domain.Invite
		role       string
		acceptedAt sql.NullTime
		acceptedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Email, &role, &inv.TokenHash, &inv.InvitedBy,
		&inv.ExpiresAt, &acceptedAt, &acceptedBy, &inv.CreatedAt,
	)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.Role = domain.MemberRole(role)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.AcceptedBy = mapNullString(acceptedBy)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	return r.c.insert(ctx, `
		INSERT INTO invites (id, company_id, email, role, token_hash, invited_by, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CompanyID, inv.Email, string(inv.Role), inv.TokenHash, inv.InvitedBy,
		ts(inv.ExpiresAt), ts(inv.CreatedAt),
	)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	inv, err := scanInvite(r.c.queryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	inv, err := scanInvite(r.c.queryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token_hash = ?`, hash))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) ListInvitesByCompany(ctx context.Context, companyID string) ([]domain.Invite, error) {
	rows, err := r.c.query(ctx, `
		SELECT `+inviteColumns+` FROM invites
		WHERE company_id = ? AND accepted_at IS NULL
		ORDER BY created_at DESC, id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, id, userID string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE invites SET accepted_at = ?, accepted_by = ?
		WHERE id = ? AND accepted_at IS NULL AND expires_at > ?`,
		ts(now), userID, id, ts(now),
	)
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM invites WHERE id = ?`, id)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx,
		`DELETE FROM invites WHERE accepted_at IS NULL AND expires_at <= ?`, ts(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
