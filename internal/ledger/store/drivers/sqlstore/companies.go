package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type companiesRepo struct {
	c conn
}

func (r *companiesRepo) CreateCompany(ctx context.Context, co domain.Company) error {
	return r.c.insert(ctx, `
		INSERT INTO companies (
			id, owner_id, name, seat_limit, extra_seats, member_count,
			phone, website, address, logo_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		co.ID, co.OwnerID, co.Name, co.SeatLimit, co.ExtraSeats, co.MemberCount,
		co.Phone, co.Website, co.Address, co.LogoURL, ts(co.CreatedAt), ts(co.UpdatedAt),
	)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	var co domain.Company
	err := r.c.queryRow(ctx, `
		SELECT id, owner_id, name, seat_limit, extra_seats, member_count,
			phone, website, address, logo_url, created_at, updated_at
		FROM companies WHERE id = ?`, id,
	).Scan(
		&co.ID, &co.OwnerID, &co.Name, &co.SeatLimit, &co.ExtraSeats, &co.MemberCount,
		&co.Phone, &co.Website, &co.Address, &co.LogoURL, &co.CreatedAt, &co.UpdatedAt,
	)
	if err != nil {
		return domain.Company{}, mapNotFound(err)
	}
	co.CreatedAt = co.CreatedAt.UTC()
	co.UpdatedAt = co.UpdatedAt.UTC()
	return co, nil
}

func (r *companiesRepo) UpdateCompanyProfile(
	ctx context.Context,
	id string,
	p domain.CompanyProfile,
	now time.Time,
) error {
	return r.c.execOne(ctx, `
		UPDATE companies
		SET name = ?, phone = ?, website = ?, address = ?, logo_url = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Phone, p.Website, p.Address, p.LogoURL, ts(now), id,
	)
}

func (r *companiesRepo) ReserveSeat(ctx context.Context, companyID string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE companies SET member_count = member_count + 1, updated_at = ?
		WHERE id = ? AND member_count < seat_limit + extra_seats`,
		ts(now), companyID,
	)
}

func (r *companiesRepo) ReleaseSeat(ctx context.Context, companyID string, now time.Time) error {
	return r.c.execCAS(ctx, `
		UPDATE companies SET member_count = member_count - 1, updated_at = ?
		WHERE id = ? AND member_count > 0`,
		ts(now), companyID,
	)
}

func (r *companiesRepo) AddExtraSeats(ctx context.Context, companyID string, seats int, now time.Time) error {
	return r.c.execOne(ctx, `
		UPDATE companies SET extra_seats = extra_seats + ?, updated_at = ?
		WHERE id = ?`,
		seats, ts(now), companyID,
	)
}
