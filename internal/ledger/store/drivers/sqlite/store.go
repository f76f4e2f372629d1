// Package sqlite opens the ledger store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/sqlstore"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialect struct{}

func (dialect) Rebind(query string) string { return sqlstore.QuestionRebind(query) }

func (dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// DSN turns a file path (or an existing DSN) into one carrying the pragmas
// the ledger relies on. Times are written in SQLite's own text format so
// they compare correctly inside SQL.
func DSN(path string) string {
	base, query, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}

	v, _ := url.ParseQuery(query)
	v.Set("_time_format", "sqlite")
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "busy_timeout(5000)")
	v.Add("_pragma", "journal_mode(WAL)")
	return base + "?" + v.Encode()
}

// NewStore opens the database at dsn. A plain path is accepted and passed
// through DSN.
func NewStore(dsn string) (*sqlstore.Store, error) {
	if !strings.Contains(dsn, "_pragma") {
		dsn = DSN(dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer at a time keeps conditional updates serialised and avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, dialect{}, applyMigrations), nil
}
