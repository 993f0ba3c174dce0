// Package cache implements a cache backend on top of an embedded SQLite
// database file.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"net/url"

	"github.com/kvlite/kvlite/internal/conn/sqlite/common"
	"github.com/kvlite/kvlite/pkg/conn/cache"
	"go.uber.org/multierr"
)

const tableName = "cachetable"

//go:embed schema.sql
var embedFS embed.FS

func init() {
	cache.Register("sqlite", func(ctx context.Context, uri *url.URL) (cache.Backend, error) {
		return Connect(ctx, common.PathFromURL(uri))
	})
}

// Initialize ensures the cache table and its indexes exist. It detects an
// already initialized database through the engine catalog and is safe to
// call repeatedly.
func Initialize(ctx context.Context, db *sql.DB) error {
	return common.EnsureSchema(ctx, db, tableName, embedFS)
}

// --------------------------------------------------------------------

type conn struct {
	db   *sql.DB
	stmt struct {
		put, get, getAll, getExpired, count, del, sweep, flush *sql.Stmt
	}
}

// Connect opens (or creates) the database file at path, initializes the
// schema and sweeps expired entries once. This is the only implicit sweep;
// long-running callers must invoke Sweep themselves.
func Connect(ctx context.Context, path string) (cache.Backend, error) {
	db, err := common.Connect(ctx, path, tableName, embedFS)
	if err != nil {
		return nil, err
	}

	cn := &conn{db: db}
	if err := cn.prepare(ctx); err != nil {
		_ = cn.Close()
		return nil, err
	}

	if err := cn.Sweep(ctx); err != nil {
		_ = cn.Close()
		return nil, err
	}

	return cn, nil
}

//nolint:sqlclosecheck
func (cn *conn) prepare(ctx context.Context) (err error) {
	if cn.stmt.put, err = cn.db.PrepareContext(ctx, sqlPut); err != nil {
		return
	}
	if cn.stmt.get, err = cn.db.PrepareContext(ctx, sqlGet); err != nil {
		return
	}
	if cn.stmt.getAll, err = cn.db.PrepareContext(ctx, sqlGetAll); err != nil {
		return
	}
	if cn.stmt.getExpired, err = cn.db.PrepareContext(ctx, sqlGetExpired); err != nil {
		return
	}
	if cn.stmt.count, err = cn.db.PrepareContext(ctx, sqlCount); err != nil {
		return
	}
	if cn.stmt.del, err = cn.db.PrepareContext(ctx, sqlDel); err != nil {
		return
	}
	if cn.stmt.sweep, err = cn.db.PrepareContext(ctx, sqlSweep); err != nil {
		return
	}
	if cn.stmt.flush, err = cn.db.PrepareContext(ctx, sqlFlush); err != nil {
		return
	}
	return
}

// Ping implements cache.Backend interface.
func (cn *conn) Ping(ctx context.Context) error {
	return cn.db.PingContext(ctx)
}

// Put implements cache.Backend interface.
func (cn *conn) Put(ctx context.Context, name, value string, expireMinutes int) error {
	if err := cache.ValidateName(name); err != nil {
		return err
	}

	_, err := cn.stmt.put.ExecContext(ctx, name, value, expireMinutes)
	return err
}

// Get implements cache.Backend interface.
func (cn *conn) Get(ctx context.Context, name string) (*cache.Entry, error) {
	if err := cache.ValidateName(name); err != nil {
		return nil, err
	}

	entry, err := scanEntry(cn.stmt.get.QueryRowContext(ctx, name))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetAll implements cache.Backend interface.
func (cn *conn) GetAll(ctx context.Context) ([]*cache.Entry, error) {
	return queryEntries(ctx, cn.stmt.getAll)
}

// GetExpired implements cache.Backend interface.
func (cn *conn) GetExpired(ctx context.Context) ([]*cache.Entry, error) {
	return queryEntries(ctx, cn.stmt.getExpired)
}

// Count implements cache.Backend interface.
func (cn *conn) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := cn.stmt.count.QueryRowContext(ctx).Scan(&cnt)
	return cnt, err
}

// Del implements cache.Backend interface.
func (cn *conn) Del(ctx context.Context, name string) error {
	if err := cache.ValidateName(name); err != nil {
		return err
	}

	_, err := cn.stmt.del.ExecContext(ctx, name)
	return err
}

// Sweep implements cache.Backend interface.
func (cn *conn) Sweep(ctx context.Context) error {
	_, err := cn.stmt.sweep.ExecContext(ctx)
	return err
}

// Flush implements cache.Backend interface.
func (cn *conn) Flush(ctx context.Context) error {
	_, err := cn.stmt.flush.ExecContext(ctx)
	return err
}

// Close implements cache.Backend interface.
func (cn *conn) Close() (err error) {
	if cn.stmt.put != nil {
		err = multierr.Append(err, cn.stmt.put.Close())
	}
	if cn.stmt.get != nil {
		err = multierr.Append(err, cn.stmt.get.Close())
	}
	if cn.stmt.getAll != nil {
		err = multierr.Append(err, cn.stmt.getAll.Close())
	}
	if cn.stmt.getExpired != nil {
		err = multierr.Append(err, cn.stmt.getExpired.Close())
	}
	if cn.stmt.count != nil {
		err = multierr.Append(err, cn.stmt.count.Close())
	}
	if cn.stmt.del != nil {
		err = multierr.Append(err, cn.stmt.del.Close())
	}
	if cn.stmt.sweep != nil {
		err = multierr.Append(err, cn.stmt.sweep.Close())
	}
	if cn.stmt.flush != nil {
		err = multierr.Append(err, cn.stmt.flush.Close())
	}
	return multierr.Append(err, cn.db.Close())
}

// --------------------------------------------------------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*cache.Entry, error) {
	var entry cache.Entry
	var value sql.NullString
	var created, expires sql.NullTime

	if err := row.Scan(&entry.ID, &entry.Name, &value, &created, &expires); err != nil {
		return nil, err
	}

	entry.Value = value.String
	if created.Valid {
		entry.CreatedAt = created.Time
	}
	if expires.Valid {
		at := expires.Time
		entry.ExpiresAt = &at
	}
	return &entry, nil
}

func queryEntries(ctx context.Context, stmt *sql.Stmt) ([]*cache.Entry, error) {
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*cache.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
