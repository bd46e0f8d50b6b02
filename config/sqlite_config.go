package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// SQLite serializes writers, a single connection avoids "database is locked" errors
// and keeps shared-cache in-memory databases alive for the lifetime of the pool.
const sqliteMaxOpenConnections = 1

// SQLiteSQLDBConfig opens and pings a configured *sql.DB for the given SQLite DSN.
func SQLiteSQLDBConfig(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(sqliteMaxOpenConnections)
	db.SetMaxIdleConns(sqliteMaxOpenConnections)
	db.SetConnMaxLifetime(0)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, errors.Join(pingErr, db.Close())
	}

	return db, nil
}

// SQLiteSQLXConfig opens and pings a configured *sqlx.DB for the given SQLite DSN.
func SQLiteSQLXConfig(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(sqliteMaxOpenConnections)
	db.SetMaxIdleConns(sqliteMaxOpenConnections)
	db.SetConnMaxLifetime(0)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, errors.Join(pingErr, db.Close())
	}

	return db, nil
}
