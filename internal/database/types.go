package database

import (
	"context"
	"database/sql"
)

// Database is the thin handle the stores build on. Domain queries live
// with their owners (history, billing); this layer owns connection
// lifecycle, migrations, and the lock-retry loop sqlite needs.
type Database interface {
	GetDB() *sql.DB

	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}
