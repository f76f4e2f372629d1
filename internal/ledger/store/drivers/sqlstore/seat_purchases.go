package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type seatPurchasesRepo struct {
	c conn
}

func (r *seatPurchasesRepo) InsertSeatPurchase(ctx context.Context, p domain.SeatPurchase) (bool, error) {
	return r.c.insertIgnore(ctx, `
		INSERT INTO seat_purchases (id, external_id, company_id, seats, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING`,
		p.ID, p.ExternalID, p.CompanyID, p.Seats, ts(p.CreatedAt),
	)
}
