package sqlengine

import (
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

const (
	colID     = "id"
	colTitle  = "title"
	colAuthor = "author"
)

func (bs *BookStore) builder() goqu.DialectWrapper {
	return goqu.Dialect(bs.dialect)
}

func (bs *BookStore) buildSelectAllQuery() (sqlQueryString, sqlArgs, error) {
	selectStmt := bs.builder().
		From(bs.tableName).
		Select(colID, colTitle, colAuthor).
		Prepared(true)

	return toSQL(selectStmt.ToSQL())
}

func (bs *BookStore) buildSelectOneQuery(id bookstore.BookID) (sqlQueryString, sqlArgs, error) {
	selectStmt := bs.builder().
		From(bs.tableName).
		Select(colID, colTitle, colAuthor).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)

	return toSQL(selectStmt.ToSQL())
}

func (bs *BookStore) buildInsertQuery(book bookstore.Book) (sqlQueryString, sqlArgs, error) {
	insertStmt := bs.builder().
		Insert(bs.tableName).
		Rows(goqu.Record{
			colTitle:  book.Title,
			colAuthor: book.Author,
		}).
		Prepared(true)

	if bs.supportsReturning() {
		insertStmt = insertStmt.Returning(goqu.C(colID))
	}

	return toSQL(insertStmt.ToSQL())
}

func (bs *BookStore) buildUpdateQuery(book bookstore.Book) (sqlQueryString, sqlArgs, error) {
	updateStmt := bs.builder().
		Update(bs.tableName).
		Set(goqu.Record{
			colTitle:  book.Title,
			colAuthor: book.Author,
		}).
		Where(goqu.C(colID).Eq(book.ID)).
		Prepared(true)

	return toSQL(updateStmt.ToSQL())
}

func (bs *BookStore) buildDeleteQuery(id bookstore.BookID) (sqlQueryString, sqlArgs, error) {
	deleteStmt := bs.builder().
		Delete(bs.tableName).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true)

	return toSQL(deleteStmt.ToSQL())
}

// toSQL joins a goqu build error with bookstore.ErrBuildingQueryFailed.
func toSQL(sqlQuery string, args []any, toSQLErr error) (sqlQueryString, sqlArgs, error) {
	if toSQLErr != nil {
		return "", nil, errors.Join(bookstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}
