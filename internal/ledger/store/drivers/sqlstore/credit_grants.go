package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

type creditGrantsRepo struct {
	c conn
}

func (r *creditGrantsRepo) InsertGrant(ctx context.Context, g domain.CreditGrant) (bool, error) {
	return r.c.insertIgnore(ctx, `
		INSERT INTO credit_grants (id, external_id, user_id, credits, expires_at, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO NOTHING`,
		g.ID, g.ExternalID, g.UserID, g.Credits, mapOptionalTime(g.ExpiresAt), g.Source, ts(g.CreatedAt),
	)
}

func (r *creditGrantsRepo) GetGrantByExternalID(ctx context.Context, externalID string) (domain.CreditGrant, error) {
	var (
		g       domain.CreditGrant
		expires sql.NullTime
	)
	err := r.c.queryRow(ctx, `
		SELECT id, external_id, user_id, credits, expires_at, source, created_at
		FROM credit_grants WHERE external_id = ?`, externalID,
	).Scan(&g.ID, &g.ExternalID, &g.UserID, &g.Credits, &expires, &g.Source, &g.CreatedAt)
	if err != nil {
		return domain.CreditGrant{}, mapNotFound(err)
	}
	g.ExpiresAt = mapNullTimePtr(expires)
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}
