// Command booksapi serves the HAL books API over HTTP.
//
// Storage is PostgreSQL (through pgx, database/sql with lib/pq, or sqlx) or SQLite
// (through database/sql or sqlx with mattn/go-sqlite3).
//
// Usage:
//
//	booksapi -driver sqlite3 -dsn "file:books.db" -init-schema
//	DB_ADAPTER=sqlx BOOKS_DSN=postgres://... booksapi -addr :8080 -observability-enabled
package main
