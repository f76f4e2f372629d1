// Package sqlstore implements the ledger store on database/sql. The sqlite
// and postgres drivers open the connection, supply a Dialect and own their
// migrations; every query lives here.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
)

// Dialect captures the differences between the supported databases.
type Dialect interface {
	// Rebind rewrites ? placeholders into the driver's bind syntax.
	Rebind(query string) string

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation(err error) bool
}

// Migrator applies the driver's embedded migrations to db.
type Migrator func(db *sql.DB) error

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to a dialect so repositories can be shared between
// the root store and a transaction.
type conn struct {
	q querier
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.q.ExecContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

// execCAS runs a conditional write and maps zero affected rows to
// store.ErrConflict.
func (c conn) execCAS(ctx context.Context, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

// execOne runs a keyed write and maps zero affected rows to store.ErrNotFound.
func (c conn) execOne(ctx context.Context, query string, args ...any) error {
	err := c.execCAS(ctx, query, args...)
	if errors.Is(err, store.ErrConflict) {
		return store.ErrNotFound
	}
	return err
}

// insert runs an INSERT and maps unique violations to store.ErrAlreadyExists.
func (c conn) insert(ctx context.Context, query string, args ...any) error {
	_, err := c.exec(ctx, query, args...)
	if err != nil && c.d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// insertIgnore runs an INSERT ... ON CONFLICT DO NOTHING and reports
// whether a row was written.
func (c conn) insertIgnore(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
}

// New wraps an open database. The caller keeps ownership of driver
// specific setup such as pragmas and pool sizing.
func New(db *sql.DB, d Dialect, m Migrator) *Store {
	return &Store{db: db, dialect: d, migrate: m}
}

// DB exposes the underlying handle for tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, c: conn{q: tx, d: s.dialect}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) root() conn { return conn{q: s.db, d: s.dialect} }

func (s *Store) Users() store.Users                 { return &usersRepo{c: s.root()} }
func (s *Store) CreditGrants() store.CreditGrants   { return &creditGrantsRepo{c: s.root()} }
func (s *Store) Proposals() store.Proposals         { return &proposalsRepo{c: s.root()} }
func (s *Store) Companies() store.Companies         { return &companiesRepo{c: s.root()} }
func (s *Store) Memberships() store.Memberships     { return &membershipsRepo{c: s.root()} }
func (s *Store) Invites() store.Invites             { return &invitesRepo{c: s.root()} }
func (s *Store) SeatPurchases() store.SeatPurchases { return &seatPurchasesRepo{c: s.root()} }
func (s *Store) AuditLogs() store.AuditLogs         { return &auditLogsRepo{c: s.root()} }

type txStore struct {
	tx *sql.Tx
	c  conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx

func (t *txStore) Users() store.Users                 { return &usersRepo{c: t.c} }
func (t *txStore) CreditGrants() store.CreditGrants   { return &creditGrantsRepo{c: t.c} }
func (t *txStore) Proposals() store.Proposals         { return &proposalsRepo{c: t.c} }
func (t *txStore) Companies() store.Companies         { return &companiesRepo{c: t.c} }
func (t *txStore) Memberships() store.Memberships     { return &membershipsRepo{c: t.c} }
func (t *txStore) Invites() store.Invites             { return &invitesRepo{c: t.c} }
func (t *txStore) SeatPurchases() store.SeatPurchases { return &seatPurchasesRepo{c: t.c} }
func (t *txStore) AuditLogs() store.AuditLogs         { return &auditLogsRepo{c: t.c} }

// QuestionRebind leaves ? placeholders untouched.
func QuestionRebind(query string) string { return query }

// DollarRebind rewrites ? placeholders as $1, $2, ... Queries in this
// package never contain a literal question mark.
func DollarRebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// ts normalises a time for storage. Everything is stored in UTC at second
// precision so text comparisons in SQLite order correctly.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func mapOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapStringNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func joinFields(fields []string) string { return strings.Join(fields, " ") }

func splitFields(s string) []string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil
	}
	return parts
}
