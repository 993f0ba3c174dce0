// Package common contains shared plumbing for SQLite connections.
package common

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // embedded sqlite driver
)

// Connect opens the database file at path, creating it if necessary, and
// ensures the schema table exists. The schema is created from schema.sql in
// fs when the catalog has no table with the given name; an existing table is
// left untouched so reconnecting to a populated file never re-runs DDL.
func Connect(ctx context.Context, path string, table string, fs embed.FS) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, table, fs); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN derives a driver DSN from a plain file path.
func DSN(path string) string {
	return path + "?_time_format=sqlite" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)"
}

// PathFromURL extracts the database file path from a backend URL of the
// form sqlite://relative.db, sqlite:///abs/olute.db or sqlite:file.db.
func PathFromURL(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	return u.Host + u.Path
}

// EnsureSchema creates the schema if table is not present yet. It is
// idempotent and safe to re-run against an initialized database.
func EnsureSchema(ctx context.Context, db *sql.DB, table string, fs embed.FS) error {
	if ok, err := TableExists(ctx, db, table); err != nil {
		return err
	} else if ok {
		return nil
	}
	return createSchema(ctx, db, fs)
}

// TableExists returns true if a table exists.
func TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name = ?1
	`, table).Scan(&value)

	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("table check failed with %w", err)
	}
	return true, nil
}
