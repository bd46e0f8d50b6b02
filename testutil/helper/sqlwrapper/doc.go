// Package sqlwrapper provides database wrapper utilities for testing the book store
// against the supported adapters.
//
// This package abstracts over the different database connection types (pgx.Pool, sql.DB, sqlx.DB)
// and both dialects. Without ADAPTER_TYPE an in-memory SQLite database is used, so tests
// are self-contained. ADAPTER_TYPE selects a PostgreSQL adapter, which needs BOOKS_POSTGRES_DSN.
package sqlwrapper
