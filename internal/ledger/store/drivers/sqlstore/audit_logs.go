package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/domain"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditLogsRepo struct {
	c conn
}

func (r *auditLogsRepo) AppendAuditLog(ctx context.Context, e domain.AuditLogEntry) error {
	return r.c.insert(ctx, `
		INSERT INTO audit_logs (id, actor_id, target_user_id, action, reason, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, e.TargetUserID, e.Action, e.Reason, mapStringNull(e.IPAddress), ts(e.CreatedAt),
	)
}

func (r *auditLogsRepo) ListAuditLogs(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.TargetUserID != "" {
		where = append(where, "target_user_id = ?")
		args = append(args, f.TargetUserID)
	}
	if f.ActorID != "" {
		where = append(where, "actor_id = ?")
		args = append(args, f.ActorID)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.Before != "" {
		where = append(where, "id < ?")
		args = append(args, f.Before)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	q := `SELECT id, actor_id, target_user_id, action, reason, ip_address, created_at FROM audit_logs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.c.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLogEntry
	for rows.Next() {
		var (
			e  domain.AuditLogEntry
			ip sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.TargetUserID, &e.Action, &e.Reason, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.IPAddress = mapNullString(ip)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
