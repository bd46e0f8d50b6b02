package adapters

import (
	"context"
	"errors"
)

// ErrLastInsertIDNotSupported is returned by adapters whose driver cannot report the last inserted ID.
var ErrLastInsertIDNotSupported = errors.New("last insert id is not supported by this adapter")

// DBAdapter defines the interface for database operations needed by the book store.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertID() (int64, error)
}
