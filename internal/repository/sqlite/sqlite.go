// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no C compiler, no CGo, and
// ":memory:" databases make repository tests fast and isolated.
//
// WHY sqlx ON TOP OF database/sql?
// sqlx maps rows onto structs by `db` tag (GetContext / SelectContext) and
// expands IN clauses (sqlx.In). The connection pool and transactions are
// still plain database/sql underneath.
//
// ONE CONNECTION:
// The pool is capped at a single connection. SQLite allows one writer at a
// time anyway, and a single connection turns every Atomic call into a fully
// serialized transaction. It also keeps ":memory:" databases alive: each new
// connection to ":memory:" would otherwise get its own empty database.
// Inside Atomic only the Queries passed to the callback may be used; calling
// methods on *DB there would wait forever for the connection the
// transaction already holds.
package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/sakif/shelf/internal/repository"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// compile-time checks
var (
	_ repository.Store   = (*DB)(nil)
	_ repository.Queries = (*DB)(nil)
)

// DB owns the connection pool. Its embedded queries run outside any explicit
// transaction, which is what tests and one-off reads use.
type DB struct {
	conn *sqlx.DB
	queries
}

// queries implements repository.Queries against either the pool or a tx.
type queries struct {
	ext sqlx.ExtContext
}

// New opens (or creates) the database at dbPath and applies migrations.
//
// dbPath examples:
//   - "data/shelf.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	// foreign_keys is per-connection, so it goes in the DSN rather than a
	// one-off PRAGMA: it is re-applied if the pool ever reconnects.
	conn, err := sqlx.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers in other processes (backups, sqlite3 shell) run while
	// we write. In-memory databases answer "memory" and carry on.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, queries: queries{ext: conn}}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database still answers. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate applies the embedded migrations with golang-migrate.
//
// The migrate instance is not closed: its sqlite driver's Close would close
// the shared *sql.DB we keep using.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	drv, err := migratesqlite.WithInstance(db.conn.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// Atomic runs fn in a transaction. fn's error is returned unchanged (after
// rollback) so callers can still match apperror sentinels.
func (db *DB) Atomic(ctx context.Context, fn func(q repository.Queries) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(&queries{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("sqlite: rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
