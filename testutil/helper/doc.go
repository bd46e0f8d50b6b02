// Package helper provides test doubles and fixtures shared by the book store and HTTP tests.
//
// It contains spies for the observability interfaces (slog handler, metrics collector,
// tracing collector) and fixture helpers that arrange books in a store.
package helper
