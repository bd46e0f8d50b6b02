// Package sqlengine provides a relational implementation of the book repository.
//
// This package stores books in a single table books(id, title, author) and supports
// multiple database adapters (pgx, sql.DB, sqlx) and two SQL dialects (PostgreSQL, SQLite).
// All statements are built with goqu in prepared mode, so values are always bound as
// parameters and never concatenated into the SQL text.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Insert-or-update Save with storage-assigned IDs
//   - Found/absent results for single-row lookups instead of errors
//   - Configurable table name and dialect
//   - Optional logging, metrics and tracing hooks
//
// Usage examples:
//
//	// PostgreSQL through pgx
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := sqlengine.NewBookStoreFromPGXPool(pool)
//
//	// SQLite through database/sql
//	db, _ := sql.Open("sqlite3", "books.db")
//	store, _ := sqlengine.NewBookStoreFromSQLDB(
//		db,
//		sqlengine.WithDialect(sqlengine.DialectSQLite3),
//		sqlengine.WithLogger(slog.Default()),
//	)
//
//	id, _ := store.Save(ctx, bookstore.NewBook("Dune", "Frank Herbert"))
//	book, found, _ := store.Get(ctx, id)
package sqlengine
