package sqlengine

import (
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite3  = "sqlite3"
)

func isSupportedDialect(dialect string) bool {
	switch dialect {
	case DialectPostgres, DialectSQLite3:
		return true
	default:
		return false
	}
}

// dialectForDriver maps a database/sql driver name onto the dialect the book store speaks.
// Unknown drivers fall back to PostgreSQL.
func dialectForDriver(driverName string) string {
	switch driverName {
	case "sqlite3", "sqlite":
		return DialectSQLite3
	default:
		return DialectPostgres
	}
}

// supportsReturning reports whether the dialect can return the generated ID from an INSERT.
func (bs *BookStore) supportsReturning() bool {
	return bs.dialect == DialectPostgres
}
