package sqlengine_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
	"github.com/AntonStoeckl/hal-books-api/bookstore/sqlengine"
	"github.com/AntonStoeckl/hal-books-api/config"
	. "github.com/AntonStoeckl/hal-books-api/testutil/helper"            //nolint:revive
	. "github.com/AntonStoeckl/hal-books-api/testutil/helper/sqlwrapper" //nolint:revive
)

func Test_Observability_BookStore_WithLogger_LogsQueries(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(logger))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	testHandler.Reset()

	// act
	_, err := bs.GetAll(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, testHandler.GetRecordCount(), "get_all should log exactly one SQL statement and one operational statement")
	assert.True(t,
		testHandler.HasDebugLogWithMessage("executed sql for: get_all").
			WithDurationMS().
			Assert(), "should log the statement with duration_ms attribute",
	)
	assert.True(t,
		testHandler.HasInfoLogWithMessage("bookstore operation: books queried").
			WithDurationMS().
			WithBookCount().
			Assert(), "should log completion with duration and book count",
	)
}

func Test_Observability_BookStore_WithLogger_LogsSaves(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(logger))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	testHandler.Reset()

	// act
	book := GivenBookWasSaved(t, ctxWithTimeout, bs, FixtureBook())
	_, updateErr := bs.Save(ctxWithTimeout, book)

	// assert
	assert.NoError(t, updateErr)
	assert.True(t, testHandler.HasDebugLog("executed sql for: insert"))
	assert.True(t, testHandler.HasDebugLog("executed sql for: update"))
	assert.True(t,
		testHandler.HasInfoLogWithMessage("bookstore operation: book inserted").
			WithBookID().
			WithDurationMS().
			Assert(), "should log the insert with book id and duration",
	)
	assert.True(t,
		testHandler.HasInfoLogWithMessage("bookstore operation: book updated").
			WithBookID().
			WithRowsAffected().
			Assert(), "should log the update with book id and rows affected",
	)
}

func Test_Observability_BookStore_WithLogger_LogsUpdateWithoutRow(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithLogger(logger))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	testHandler.Reset()

	// act
	_, err := bs.Save(ctxWithTimeout, bookstore.BuildBook(77, "t", "a"))

	// assert
	assert.ErrorIs(t, err, bookstore.ErrBookNotFound)
	assert.True(t,
		testHandler.HasInfoLogWithMessage("bookstore operation: book update matched no rows").
			WithAttr("book_id", "77").
			Assert(),
	)
	assert.Equal(t, 0, testHandler.GetRecordCountAtLevel(slog.LevelError))
}

func Test_Observability_BookStore_WithLogger_LogsErrors(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	db, err := config.SQLiteSQLDBConfig(ctxWithTimeout, config.SQLiteInMemoryDSN(t.Name()))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	bs, err := sqlengine.NewBookStoreFromSQLDB(db,
		sqlengine.WithDialect(sqlengine.DialectSQLite3),
		sqlengine.WithTableName("missing_books"),
		sqlengine.WithLogger(logger))
	require.NoError(t, err)

	// act
	_, queryErr := bs.GetAll(ctxWithTimeout)

	// assert
	assert.ErrorIs(t, queryErr, bookstore.ErrQueryingBooksFailed)
	assert.True(t, testHandler.HasErrorLog("database query execution failed"))
}

func Test_Observability_BookStore_WithContextualLogger_ReceivesTheSameMessages(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithContextualLogger(logger))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	testHandler.Reset()

	// act
	_, _, err := bs.Get(ctxWithTimeout, 1)

	// assert
	assert.NoError(t, err)
	assert.True(t, testHandler.HasDebugLog("executed sql for: get"))
	assert.True(t,
		testHandler.HasInfoLogWithMessage("bookstore operation: book looked up").
			WithAttr("found", "false").
			Assert(),
	)
}

func Test_Observability_BookStore_WithMetrics_RecordsDurationsAndCounts(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsSpy := NewMetricsCollectorSpy()

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithMetrics(metricsSpy))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	_ = GivenBookWasSaved(t, ctxWithTimeout, bs, FixtureBook())

	// act
	_, err := bs.GetAll(ctxWithTimeout)

	// assert
	assert.NoError(t, err)
	assert.True(t, metricsSpy.HasDurationRecord("bookstore_operation_duration_seconds",
		map[string]string{"operation": "insert", "status": "success"}))
	assert.True(t, metricsSpy.HasDurationRecord("bookstore_operation_duration_seconds",
		map[string]string{"operation": "get_all", "status": "success"}))
	assert.True(t, metricsSpy.HasValueRecord("bookstore_books_returned", 1,
		map[string]string{"operation": "get_all"}))
}

func Test_Observability_BookStore_WithMetrics_CountsErrors(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsSpy := NewMetricsCollectorSpy()

	db, err := config.SQLiteSQLDBConfig(ctxWithTimeout, config.SQLiteInMemoryDSN(t.Name()))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	bs, err := sqlengine.NewBookStoreFromSQLDB(db,
		sqlengine.WithDialect(sqlengine.DialectSQLite3),
		sqlengine.WithTableName("missing_books"),
		sqlengine.WithMetrics(metricsSpy))
	require.NoError(t, err)

	// act
	deleteErr := bs.Delete(ctxWithTimeout, bookstore.BuildBook(1, "", ""))

	// assert
	assert.ErrorIs(t, deleteErr, bookstore.ErrDeletingBookFailed)
	assert.True(t, metricsSpy.HasCounterRecord("bookstore_database_errors_total",
		map[string]string{"operation": "delete", "status": "error", "error_type": "database_exec"}))
	assert.True(t, metricsSpy.HasDurationRecord("bookstore_operation_duration_seconds",
		map[string]string{"operation": "delete", "status": "error"}))
}

func Test_Observability_BookStore_WithTracing_CreatesOneSpanPerOperation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracingSpy := NewTracingCollectorSpy()

	wrapper := CreateWrapperWithTestConfig(t, sqlengine.WithTracing(tracingSpy))
	bs := wrapper.GetBookStore()

	// arrange
	CleanUp(t, wrapper)
	book := GivenBookWasSaved(t, ctxWithTimeout, bs, FixtureBook())

	// act
	deleteErr := bs.Delete(ctxWithTimeout, book)
	_, updateErr := bs.Save(ctxWithTimeout, book)

	// assert
	assert.NoError(t, deleteErr)
	assert.ErrorIs(t, updateErr, bookstore.ErrBookNotFound)

	insertSpan, found := tracingSpy.GetSpanRecord("bookstore.insert")
	require.True(t, found)
	assert.True(t, insertSpan.Finished)
	assert.Equal(t, "success", insertSpan.Status)
	assert.Equal(t, "insert", insertSpan.StartAttributes["operation"])
	assert.Equal(t, "books", insertSpan.StartAttributes["table"])

	deleteSpan, found := tracingSpy.GetSpanRecord("bookstore.delete")
	require.True(t, found)
	assert.Equal(t, "success", deleteSpan.Status)
	assert.Equal(t, "1", deleteSpan.EndAttributes["rows_affected"])

	updateSpan, found := tracingSpy.GetSpanRecord("bookstore.update")
	require.True(t, found)
	assert.Equal(t, "not_found", updateSpan.Status)
}
