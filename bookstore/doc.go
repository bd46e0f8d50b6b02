// Package bookstore provides the core types for storing books in a relational table.
//
// This package defines the Book entity, the sentinel errors shared by all storage
// implementations and the dependency-free observability interfaces (logging, metrics, tracing)
// that storage engines and the HTTP layer report to.
//
// Key types:
//   - Book: a single row of the books table
//   - Books: a collection of books as returned by storage
//   - Logger, ContextualLogger, MetricsCollector, TracingCollector: observability hooks
//
// A Book with a zero ID is transient. Storage assigns the ID on the first save:
//
//	book := bookstore.NewBook("Dune", "Frank Herbert")
//	id, err := store.Save(ctx, book)
//	if err != nil {
//		// handle error
//	}
//
//	found, ok, err := store.Get(ctx, id)
package bookstore
