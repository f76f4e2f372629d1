package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type membershipsRepo struct {
	c conn
}

func scanMembership(row interface{ Scan(...any) error }) (domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	if err := row.Scan(&m.CompanyID, &m.UserID, &role, &m.CreatedAt); err != nil {
		return domain.Membership{}, err
	}
	m.Role = domain.MemberRole(role)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	return r.c.insert(ctx, `
		INSERT INTO memberships (company_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?)`,
		m.CompanyID, m.UserID, string(m.Role), ts(m.CreatedAt),
	)
}

func (r *membershipsRepo) GetMembershipByUserID(ctx context.Context, userID string) (domain.Membership, error) {
	m, err := scanMembership(r.c.queryRow(ctx, `
		SELECT company_id, user_id, role, created_at
		FROM memberships WHERE user_id = ?`, userID))
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) ListMembers(ctx context.Context, companyID string) ([]domain.Membership, error) {
	rows, err := r.c.query(ctx, `
		SELECT company_id, user_id, role, created_at
		FROM memberships WHERE company_id = ?
		ORDER BY created_at, user_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, companyID, userID string) error {
	return r.c.execOne(ctx,
		`DELETE FROM memberships WHERE company_id = ? AND user_id = ?`,
		companyID, userID,
	)
}

func (r *membershipsRepo) UpdateMemberRole(
	ctx context.Context,
	companyID, userID string,
	role domain.MemberRole,
) error {
	return r.c.execOne(ctx,
		`UPDATE memberships SET role = ? WHERE company_id = ? AND user_id = ?`,
		string(role), companyID, userID,
	)
}
