// Package database wraps the PostgreSQL connection pool and provides the
// transactional boundary for all cross-aggregate mutations. Every stock
// check-then-mutate sequence must run inside a single WithTx scope so that
// concurrent operations competing for the same stock row cannot both observe
// enough stock and both deduct.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/stockline/pkg/logger"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Queryer is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repositories accept a Queryer so the same query code serves both
// plain reads and transactional mutations.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database wraps an *sql.DB opened through the pgx stdlib driver.
type Database struct {
	db  *sql.DB
	log logger.Logger
}

// NewPool opens a PostgreSQL connection pool, applies pool settings, and
// verifies connectivity with a bounded ping.
func NewPool(ctx context.Context, dsn string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Database{db: db, log: log}, nil
}

// DB returns the underlying *sql.DB for non-transactional reads and for
// libraries that manage their own transactions.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a single database transaction. The transaction is
// rolled back if fn returns an error or panics, and committed otherwise.
// Errors from fn are returned unwrapped so callers can match domain sentinels
// with errors.Is / errors.As.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.Error("tx rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks database connectivity with a bounded deadline.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("database is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return d.db.PingContext(pingCtx)
}

// Close closes the connection pool.
func (d *Database) Close() {
	if d == nil || d.db == nil {
		return
	}
	_ = d.db.Close()
}
