package sqlengine

import (
	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

// Option defines a functional option for configuring BookStore.
type Option func(*BookStore) error

// WithTableName sets the table name for the BookStore.
func WithTableName(tableName string) Option {
	return func(bs *BookStore) error {
		if tableName == "" {
			return bookstore.ErrEmptyBooksTableName
		}

		bs.tableName = tableName

		return nil
	}
}

// WithDialect sets the SQL dialect the BookStore builds its statements for.
// Supported are DialectPostgres and DialectSQLite3.
func WithDialect(dialect string) Option {
	return func(bs *BookStore) error {
		if !isSupportedDialect(dialect) {
			return bookstore.ErrUnsupportedDialect
		}

		bs.dialect = dialect

		return nil
	}
}

// WithLogger sets the logger for the BookStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Book counts, lookups, durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger bookstore.Logger) Option {
	return func(bs *BookStore) error {
		bs.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the BookStore.
// It receives the same messages as the Logger, together with the context of the operation,
// which allows trace/span correlation when tracing is enabled.
func WithContextualLogger(logger bookstore.ContextualLogger) Option {
	return func(bs *BookStore) error {
		bs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the BookStore.
// It receives operation durations, the number of returned books and database errors.
func WithMetrics(collector bookstore.MetricsCollector) Option {
	return func(bs *BookStore) error {
		bs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the BookStore.
// Every repository operation becomes one span.
func WithTracing(collector bookstore.TracingCollector) Option {
	return func(bs *BookStore) error {
		bs.tracingCollector = collector
		return nil
	}
}
