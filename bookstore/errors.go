package bookstore

import "errors"

var (
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrEmptyBooksTableName       = errors.New("empty books table name supplied")
	ErrUnsupportedDialect        = errors.New("unsupported sql dialect")
	ErrBuildingQueryFailed       = errors.New("building the query failed")
	ErrQueryingBooksFailed       = errors.New("querying books failed")
	ErrScanningDBRowFailed       = errors.New("scanning db row failed")
	ErrSavingBookFailed          = errors.New("saving book failed")
	ErrDeletingBookFailed        = errors.New("deleting book failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
	ErrGettingInsertedIDFailed   = errors.New("getting the inserted id failed")
	ErrCreatingTableFailed       = errors.New("creating the books table failed")
)

// ErrBookNotFound is returned when an update targets an ID that has no row in storage.
var ErrBookNotFound = errors.New("book not found")
