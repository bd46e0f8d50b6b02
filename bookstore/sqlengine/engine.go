package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
	"github.com/AntonStoeckl/hal-books-api/bookstore/sqlengine/internal/adapters"
)

const (
	defaultBooksTableName         = "books"
	logMsgBuildQueryFailed        = "failed to build sql query"
	logMsgDBQueryFailed           = "database query execution failed"
	logMsgDBExecFailed            = "database execution failed"
	logMsgCloseRowsFailed         = "failed to close database rows"
	logMsgScanRowFailed           = "failed to scan database row"
	logMsgIterateRowsFailed       = "failed to iterate database rows"
	logMsgRowsAffectedFailed      = "failed to get rows affected count"
	logMsgInsertedIDFailed        = "failed to get the inserted book id"
	logMsgBooksQueried            = "books queried"
	logMsgBookLookedUp            = "book looked up"
	logMsgBookInserted            = "book inserted"
	logMsgBookUpdated             = "book updated"
	logMsgBookUpdateMatchedNoRows = "book update matched no rows"
	logMsgBookDeleted             = "book deleted"
	logMsgTableCreated            = "books table ensured"
	logMsgSQLExecuted             = "executed sql for: "
	logMsgOperation               = "bookstore operation: "
	logAttrError                  = "error"
	logAttrQuery                  = "query"
	logAttrBookID                 = "book_id"
	logAttrBookCount              = "book_count"
	logAttrFound                  = "found"
	logAttrDurationMS             = "duration_ms"
	logAttrRowsAffected           = "rows_affected"
	logAttrTable                  = "table"
	logActionGetAll               = "get_all"
	logActionGet                  = "get"
	logActionInsert               = "insert"
	logActionUpdate               = "update"
	logActionDelete               = "delete"
	logActionCreateTable          = "create_table"
)

type (
	sqlQueryString    = string
	sqlArgs           = []any
	rowsAffectedInt64 = int64
)

// BookStore persists books in a relational table through one of the supported database adapters.
type BookStore struct {
	db               adapters.DBAdapter
	dialect          string
	tableName        string
	logger           bookstore.Logger
	contextualLogger bookstore.ContextualLogger
	metricsCollector bookstore.MetricsCollector
	tracingCollector bookstore.TracingCollector
}

type queryResultRow struct {
	id     bookstore.BookID
	title  sql.NullString
	author sql.NullString
}

func (r queryResultRow) toBook() bookstore.Book {
	return bookstore.BuildBook(r.id, r.title.String, r.author.String)
}

// NewBookStoreFromPGXPool creates a new BookStore using a pgx Pool with optional configuration.
// The dialect is always PostgreSQL.
func NewBookStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, bookstore.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewPGXAdapter(db), DialectPostgres, options...)
}

// NewBookStoreFromSQLDB creates a new BookStore using a sql.DB with optional configuration.
// The dialect defaults to PostgreSQL, use WithDialect for other drivers.
func NewBookStoreFromSQLDB(db *sql.DB, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, bookstore.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLAdapter(db), DialectPostgres, options...)
}

// NewBookStoreFromSQLX creates a new BookStore using a sqlx.DB with optional configuration.
// The dialect defaults to the one matching the driver the sqlx.DB was opened with.
func NewBookStoreFromSQLX(db *sqlx.DB, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, bookstore.ErrNilDatabaseConnection
	}

	adapter := adapters.NewSQLXAdapter(db)

	return newBookStore(adapter, dialectForDriver(adapter.DriverName()), options...)
}

func newBookStore(db adapters.DBAdapter, dialect string, options ...Option) (*BookStore, error) {
	bs := &BookStore{
		db:        db,
		dialect:   dialect,
		tableName: defaultBooksTableName,
	}

	for _, option := range options {
		if err := option(bs); err != nil {
			return nil, err
		}
	}

	return bs, nil
}

// Dialect returns the SQL dialect the BookStore builds its statements for.
func (bs *BookStore) Dialect() string {
	return bs.dialect
}

// TableName returns the name of the table the BookStore reads from and writes to.
func (bs *BookStore) TableName() string {
	return bs.tableName
}

// GetAll retrieves all books in the order storage returns them.
func (bs *BookStore) GetAll(ctx context.Context) (bookstore.Books, error) {
	observer, ctx := bs.startObserving(ctx, logActionGetAll, nil)

	sqlQuery, args, buildErr := bs.buildSelectAllQuery()
	if buildErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)

		return nil, buildErr
	}

	rows, queryErr := bs.executeQuery(ctx, logActionGetAll, bookstore.ErrQueryingBooksFailed, sqlQuery, args)
	if queryErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return nil, queryErr
	}
	defer bs.closeRows(ctx, rows)

	books, scanErr := bs.scanBooks(ctx, rows)
	if scanErr != nil {
		observer.finishError(errorTypeRowScan)
		return nil, scanErr
	}

	observer.recordBookCount(len(books))
	bs.logOperation(ctx, logMsgBooksQueried,
		logAttrBookCount, len(books),
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(map[string]string{spanAttrBookCount: itoa(len(books))})

	return books, nil
}

// Get retrieves the book with the given ID.
// The boolean result is false, with a nil error, when no row matches.
func (bs *BookStore) Get(ctx context.Context, id bookstore.BookID) (bookstore.Book, bool, error) {
	var empty bookstore.Book

	observer, ctx := bs.startObserving(ctx, logActionGet, map[string]string{spanAttrBookID: i64toa(id)})

	sqlQuery, args, buildErr := bs.buildSelectOneQuery(id)
	if buildErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrBookID, id)
		observer.finishError(errorTypeBuildQuery)

		return empty, false, buildErr
	}

	rows, queryErr := bs.executeQuery(ctx, logActionGet, bookstore.ErrQueryingBooksFailed, sqlQuery, args)
	if queryErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return empty, false, queryErr
	}
	defer bs.closeRows(ctx, rows)

	books, scanErr := bs.scanBooks(ctx, rows)
	if scanErr != nil {
		observer.finishError(errorTypeRowScan)
		return empty, false, scanErr
	}

	found := len(books) > 0

	bs.logOperation(ctx, logMsgBookLookedUp,
		logAttrBookID, id,
		logAttrFound, found,
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(map[string]string{spanAttrFound: boolToString(found)})

	if !found {
		return empty, false, nil
	}

	return books[0], true, nil
}

// Save inserts a transient book and returns its new ID, or updates title and author of a persisted book
// and returns its unchanged ID.
//
// Updating a book whose ID has no row in storage fails with bookstore.ErrBookNotFound.
func (bs *BookStore) Save(ctx context.Context, book bookstore.Book) (bookstore.BookID, error) {
	if book.IsTransient() {
		return bs.insert(ctx, book)
	}

	return bs.update(ctx, book)
}

// Delete removes the row of the given book. Deleting a book that has no row is not an error.
func (bs *BookStore) Delete(ctx context.Context, book bookstore.Book) error {
	observer, ctx := bs.startObserving(ctx, logActionDelete, map[string]string{spanAttrBookID: i64toa(book.ID)})

	sqlQuery, args, buildErr := bs.buildDeleteQuery(book.ID)
	if buildErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrBookID, book.ID)
		observer.finishError(errorTypeBuildQuery)

		return buildErr
	}

	rowsAffected, execErr := bs.executeExecWithRowsAffected(ctx, logActionDelete, bookstore.ErrDeletingBookFailed, sqlQuery, args)
	if execErr != nil {
		observer.finishError(errorTypeDatabaseExec)
		return execErr
	}

	bs.logOperation(ctx, logMsgBookDeleted,
		logAttrBookID, book.ID,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(map[string]string{spanAttrRowsAffected: i64toa(rowsAffected)})

	return nil
}

// insert adds a new row and returns the ID storage assigned to it.
func (bs *BookStore) insert(ctx context.Context, book bookstore.Book) (bookstore.BookID, error) {
	observer, ctx := bs.startObserving(ctx, logActionInsert, nil)

	sqlQuery, args, buildErr := bs.buildInsertQuery(book)
	if buildErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)

		return 0, buildErr
	}

	var id bookstore.BookID
	var insertErr error

	if bs.supportsReturning() {
		id, insertErr = bs.insertReturningID(ctx, sqlQuery, args)
	} else {
		id, insertErr = bs.insertWithLastInsertID(ctx, sqlQuery, args)
	}

	if insertErr != nil {
		observer.finishError(errorTypeFor(insertErr))
		return 0, insertErr
	}

	bs.logOperation(ctx, logMsgBookInserted,
		logAttrBookID, id,
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(map[string]string{spanAttrBookID: i64toa(id)})

	return id, nil
}

// insertReturningID runs an INSERT ... RETURNING statement and reads the ID from the single result row.
func (bs *BookStore) insertReturningID(ctx context.Context, sqlQuery sqlQueryString, args sqlArgs) (bookstore.BookID, error) {
	rows, queryErr := bs.executeQuery(ctx, logActionInsert, bookstore.ErrSavingBookFailed, sqlQuery, args)
	if queryErr != nil {
		return 0, queryErr
	}
	defer bs.closeRows(ctx, rows)

	if !rows.Next() {
		if iterErr := rows.Err(); iterErr != nil {
			bs.logError(ctx, logMsgDBExecFailed, iterErr, logAttrQuery, sqlQuery)
			return 0, errors.Join(bookstore.ErrSavingBookFailed, iterErr)
		}

		bs.logError(ctx, logMsgInsertedIDFailed, bookstore.ErrGettingInsertedIDFailed)

		return 0, bookstore.ErrGettingInsertedIDFailed
	}

	var id bookstore.BookID
	if scanErr := rows.Scan(&id); scanErr != nil {
		bs.logError(ctx, logMsgInsertedIDFailed, scanErr)
		return 0, errors.Join(bookstore.ErrGettingInsertedIDFailed, scanErr)
	}

	return id, nil
}

// insertWithLastInsertID runs a plain INSERT and asks the driver for the generated ID.
func (bs *BookStore) insertWithLastInsertID(ctx context.Context, sqlQuery sqlQueryString, args sqlArgs) (bookstore.BookID, error) {
	result, execErr := bs.executeExec(ctx, logActionInsert, bookstore.ErrSavingBookFailed, sqlQuery, args)
	if execErr != nil {
		return 0, execErr
	}

	id, idErr := result.LastInsertID()
	if idErr != nil {
		bs.logError(ctx, logMsgInsertedIDFailed, idErr)
		return 0, errors.Join(bookstore.ErrGettingInsertedIDFailed, idErr)
	}

	return id, nil
}

// update overwrites title and author of an existing row.
func (bs *BookStore) update(ctx context.Context, book bookstore.Book) (bookstore.BookID, error) {
	observer, ctx := bs.startObserving(ctx, logActionUpdate, map[string]string{spanAttrBookID: i64toa(book.ID)})

	sqlQuery, args, buildErr := bs.buildUpdateQuery(book)
	if buildErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrBookID, book.ID)
		observer.finishError(errorTypeBuildQuery)

		return 0, buildErr
	}

	rowsAffected, execErr := bs.executeExecWithRowsAffected(ctx, logActionUpdate, bookstore.ErrSavingBookFailed, sqlQuery, args)
	if execErr != nil {
		observer.finishError(errorTypeFor(execErr))
		return 0, execErr
	}

	if rowsAffected == 0 {
		bs.logOperation(ctx, logMsgBookUpdateMatchedNoRows,
			logAttrBookID, book.ID,
			logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
		observer.finishNotFound()

		return 0, bookstore.ErrBookNotFound
	}

	bs.logOperation(ctx, logMsgBookUpdated,
		logAttrBookID, book.ID,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(map[string]string{spanAttrRowsAffected: i64toa(rowsAffected)})

	return book.ID, nil
}

// executeQuery executes the SQL query and logs it with timing information.
// A failure is joined with the given sentinel error.
func (bs *BookStore) executeQuery(
	ctx context.Context,
	action string,
	failure error,
	sqlQuery sqlQueryString,
	args sqlArgs,
) (adapters.DBRows, error) {

	start := time.Now()
	rows, queryErr := bs.db.Query(ctx, sqlQuery, args...)
	bs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		bs.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(failure, queryErr)
	}

	return rows, nil
}

// executeExec executes the SQL statement and logs it with timing information.
// A failure is joined with the given sentinel error.
func (bs *BookStore) executeExec(
	ctx context.Context,
	action string,
	failure error,
	sqlQuery sqlQueryString,
	args sqlArgs,
) (adapters.DBResult, error) {

	start := time.Now()
	result, execErr := bs.db.Exec(ctx, sqlQuery, args...)
	bs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		bs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(failure, execErr)
	}

	return result, nil
}

// executeExecWithRowsAffected executes the SQL statement and returns the number of affected rows.
func (bs *BookStore) executeExecWithRowsAffected(
	ctx context.Context,
	action string,
	failure error,
	sqlQuery sqlQueryString,
	args sqlArgs,
) (rowsAffectedInt64, error) {

	result, execErr := bs.executeExec(ctx, action, failure, sqlQuery, args)
	if execErr != nil {
		return 0, execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		bs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(bookstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (bs *BookStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		bs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// scanBooks maps every result row field by field onto a Book.
func (bs *BookStore) scanBooks(ctx context.Context, rows adapters.DBRows) (bookstore.Books, error) {
	books := make(bookstore.Books, 0)
	row := queryResultRow{}

	for rows.Next() {
		if scanErr := rows.Scan(&row.id, &row.title, &row.author); scanErr != nil {
			bs.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(bookstore.ErrScanningDBRowFailed, scanErr)
		}

		books = append(books, row.toBook())
	}

	if iterErr := rows.Err(); iterErr != nil {
		bs.logError(ctx, logMsgIterateRowsFailed, iterErr)
		return nil, errors.Join(bookstore.ErrQueryingBooksFailed, iterErr)
	}

	return books, nil
}
