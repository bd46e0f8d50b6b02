package sqlwrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hal-books-api/bookstore/sqlengine"
	"github.com/AntonStoeckl/hal-books-api/config"
)

// Adapter type constants
const (
	typeSQLite     = "sqlite"
	typeSQLiteSQLX = "sqlite-sqlx"
	typePGXPool    = "pgxpool"
	typeSQLDB      = "sqldb"
	typeSQLX       = "sqlx"
)

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetBookStore() *sqlengine.BookStore
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	bs   *sqlengine.BookStore
}

func (w *PGXPoolWrapper) GetBookStore() *sqlengine.BookStore {
	return w.bs
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing, for PostgreSQL and SQLite
type SQLDBWrapper struct {
	db *sql.DB
	bs *sqlengine.BookStore
}

func (w *SQLDBWrapper) GetBookStore() *sqlengine.BookStore {
	return w.bs
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing, for PostgreSQL and SQLite
type SQLXWrapper struct {
	db *sqlx.DB
	bs *sqlengine.BookStore
}

func (w *SQLXWrapper) GetBookStore() *sqlengine.BookStore {
	return w.bs
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE and makes sure the books table exists.
// The wrapper is closed when the test finishes.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	ctx := context.Background()
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch adapterTypeFromEnv {
	case typeSQLite, "":
		db, err := config.SQLiteSQLDBConfig(ctx, uniqueInMemoryDSN())
		require.NoError(t, err, "error connecting to DB in test setup")
		bs, err := sqlengine.NewBookStoreFromSQLDB(db, append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite3)}, options...)...)
		require.NoError(t, err, "error creating the book store in test setup")

		wrapper = &SQLDBWrapper{db: db, bs: bs}

	case typeSQLiteSQLX:
		db, err := config.SQLiteSQLXConfig(ctx, uniqueInMemoryDSN())
		require.NoError(t, err, "error connecting to DB in test setup")
		bs, err := sqlengine.NewBookStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating the book store in test setup")

		wrapper = &SQLXWrapper{db: db, bs: bs}

	case typePGXPool:
		skipWithoutPostgres(t)
		poolConfig, err := config.PostgresPGXPoolConfig(config.PostgresDSN())
		require.NoError(t, err, "error parsing the DB pool config in test setup")
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		bs, err := sqlengine.NewBookStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating the book store in test setup")

		wrapper = &PGXPoolWrapper{pool: pool, bs: bs}

	case typeSQLDB:
		skipWithoutPostgres(t)
		db, err := config.PostgresSQLDBConfig(ctx, config.PostgresDSN())
		require.NoError(t, err, "error connecting to DB in test setup")
		bs, err := sqlengine.NewBookStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating the book store in test setup")

		wrapper = &SQLDBWrapper{db: db, bs: bs}

	case typeSQLX:
		skipWithoutPostgres(t)
		db, err := config.PostgresSQLXConfig(ctx, config.PostgresDSN())
		require.NoError(t, err, "error connecting to DB in test setup")
		bs, err := sqlengine.NewBookStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating the book store in test setup")

		wrapper = &SQLXWrapper{db: db, bs: bs}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}

	require.NoError(t, wrapper.GetBookStore().CreateTableIfNotExists(ctx), "error creating the books table in test setup")
	t.Cleanup(wrapper.Close)

	return wrapper
}

// CleanUp removes all rows from the books table for the given wrapper
func CleanUp(t testing.TB, wrapper Wrapper) {
	query := "DELETE FROM " + wrapper.GetBookStore().TableName()

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query)
		require.NoError(t, err, "error cleaning up the books table")

	case *SQLDBWrapper:
		_, err := w.db.Exec(query)
		require.NoError(t, err, "error cleaning up the books table")

	case *SQLXWrapper:
		_, err := w.db.Exec(query)
		require.NoError(t, err, "error cleaning up the books table")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountBooksInDB counts the rows of the books table for the given wrapper, bypassing the book store
func CountBooksInDB(t testing.TB, wrapper Wrapper) int {
	var cnt int
	var err error

	query := "SELECT count(*) FROM " + wrapper.GetBookStore().TableName()

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&cnt)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *SQLXWrapper:
		err = w.db.Get(&cnt, query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error counting books")

	return cnt
}

// InsertRawBookRow inserts a row with NULL title and author, bypassing the book store, and returns its ID.
func InsertRawBookRow(t testing.TB, wrapper Wrapper) int64 {
	var id int64
	var err error

	table := wrapper.GetBookStore().TableName()

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), "INSERT INTO "+table+" (title, author) VALUES (NULL, NULL) RETURNING id").Scan(&id)

	case *SQLDBWrapper:
		id, err = insertRawRow(w.db, table, w.bs.Dialect())

	case *SQLXWrapper:
		id, err = insertRawRow(w.db.DB, table, w.bs.Dialect())

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error in arranging test data")

	return id
}

func insertRawRow(db *sql.DB, table, dialect string) (int64, error) {
	if dialect == sqlengine.DialectPostgres {
		var id int64
		err := db.QueryRow("INSERT INTO " + table + " (title, author) VALUES (NULL, NULL) RETURNING id").Scan(&id)

		return id, err
	}

	result, err := db.Exec("INSERT INTO " + table + " (title, author) VALUES (NULL, NULL)")
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func uniqueInMemoryDSN() string {
	return config.SQLiteInMemoryDSN(uuid.NewString())
}

func skipWithoutPostgres(t testing.TB) {
	if !config.PostgresDSNConfigured() {
		t.Skip("BOOKS_POSTGRES_DSN is not set")
	}
}
