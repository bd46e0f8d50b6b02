// Package adapters provide database adapter implementations for the SQL book store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the book store to work with any supported
// connection type and driver (pgx, lib/pq, mattn/go-sqlite3).
//
// Queries are always executed with bound arguments, the SQL text never contains values.
package adapters
