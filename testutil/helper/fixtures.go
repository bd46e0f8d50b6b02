package helper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

// BookSaver is the part of a book repository the fixture helpers need.
type BookSaver interface {
	Save(ctx context.Context, book bookstore.Book) (bookstore.BookID, error)
}

func FixtureBook() bookstore.Book {
	return bookstore.NewBook("Learning Domain-Driven Design", "Vlad Khononov")
}

func FixtureOtherBook() bookstore.Book {
	return bookstore.NewBook("Implementing Domain-Driven Design", "Vaughn Vernon")
}

// GivenBookWasSaved persists the book and returns it with the ID storage assigned.
func GivenBookWasSaved(t testing.TB, ctx context.Context, store BookSaver, book bookstore.Book) bookstore.Book {
	id, err := store.Save(ctx, book)
	assert.NoError(t, err, "error in arranging test data")
	assert.NotZero(t, id, "error in arranging test data")

	return book.WithID(id)
}
