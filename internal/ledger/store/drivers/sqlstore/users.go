package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type usersRepo struct {
	c conn
}

const userColumns = `id, email, name, proposal_credits, credits_expire_at, plan, role,
	entitlements, processor_customer_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u            domain.User
		expires      sql.NullTime
		plan, role   string
		entitlements string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.ProposalCredits, &expires, &plan, &role,
		&entitlements, &u.ProcessorCustomerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.CreditsExpireAt = mapNullTimePtr(expires)
	u.Plan = domain.Plan(plan)
	u.Role = domain.Role(role)
	u.Entitlements = splitFields(entitlements)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	return r.c.insert(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.ProposalCredits, mapOptionalTime(u.CreditsExpireAt),
		string(u.Plan), string(u.Role), joinFields(u.Entitlements), u.ProcessorCustomerID,
		ts(u.CreatedAt), ts(u.UpdatedAt),
	)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) SetProcessorCustomerID(ctx context.Context, userID, customerID string) error {
	return r.c.execOne(ctx,
		`UPDATE users SET processor_customer_id = ?, updated_at = ? WHERE id = ?`,
		customerID, ts(time.Now()), userID,
	)
}

func (r *usersRepo) SetPlan(ctx context.Context, userID string, plan domain.Plan) error {
	return r.c.execOne(ctx,
		`UPDATE users SET plan = ?, updated_at = ? WHERE id = ?`,
		string(plan), ts(time.Now()), userID,
	)
}

func (r *usersRepo) SetRole(ctx context.Context, userID string, from, to domain.Role) error {
	return r.c.execCAS(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND role = ?`,
		string(to), ts(time.Now()), userID, string(from),
	)
}

func (r *usersRepo) SetEntitlements(ctx context.Context, userID string, prev, next []string) error {
	return r.c.execCAS(ctx,
		`UPDATE users SET entitlements = ?, updated_at = ? WHERE id = ? AND entitlements = ?`,
		joinFields(next), ts(time.Now()), userID, joinFields(prev),
	)
}

func (r *usersRepo) AddCredits(
	ctx context.Context,
	userID string,
	credits int64,
	expiresAt *time.Time,
	now time.Time,
) error {
	return r.c.execOne(ctx, `
		UPDATE users
		SET proposal_credits = CASE
				WHEN credits_expire_at IS NOT NULL AND credits_expire_at <= ? THEN ?
				ELSE proposal_credits + ?
			END,
			credits_expire_at = ?,
			updated_at = ?
		WHERE id = ?`,
		ts(now), credits, credits, mapOptionalTime(expiresAt), ts(now), userID,
	)
}

func (r *usersRepo) DebitCredits(ctx context.Context, userID string, amount int64, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE users
		SET proposal_credits = proposal_credits - ?, updated_at = ?
		WHERE id = ?
			AND proposal_credits >= ?
			AND (credits_expire_at IS NULL OR credits_expire_at > ?)`,
		amount, ts(now), userID, amount, ts(now),
	)
}
