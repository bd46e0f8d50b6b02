// Package config provides database and observability configuration helpers for the books API.
//
// This package contains factory functions for creating database connections
// using different drivers (pgx.Pool, sql.DB, sqlx.DB for PostgreSQL; sql.DB, sqlx.DB for SQLite)
// with pre-configured pool settings, DSN helpers that read the environment,
// and the OpenTelemetry provider setup used by the binary.
package config
