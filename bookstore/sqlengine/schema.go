package sqlengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

const (
	createTablePostgres = `CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, title TEXT, author TEXT)`
	createTableSQLite3  = `CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, author TEXT)`
)

// CreateTableIfNotExists creates the books table for the configured dialect unless it exists already.
func (bs *BookStore) CreateTableIfNotExists(ctx context.Context) error {
	observer, ctx := bs.startObserving(ctx, logActionCreateTable, nil)

	if _, execErr := bs.executeExec(ctx, logActionCreateTable, bookstore.ErrCreatingTableFailed, bs.createTableStatement(), nil); execErr != nil {
		observer.finishError(errorTypeDatabaseExec)
		return execErr
	}

	bs.logOperation(ctx, logMsgTableCreated,
		logAttrTable, bs.tableName,
		logAttrDurationMS, bs.toMilliseconds(observer.elapsed()))
	observer.finishSuccess(nil)

	return nil
}

func (bs *BookStore) createTableStatement() string {
	template := createTablePostgres
	if bs.dialect == DialectSQLite3 {
		template = createTableSQLite3
	}

	return fmt.Sprintf(template, quoteIdentifier(bs.tableName))
}

// quoteIdentifier quotes a table name the way both PostgreSQL and SQLite accept it.
// A schema-qualified name is quoted part by part, matching how goqu renders "schema.table".
func quoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}

	return strings.Join(parts, ".")
}
