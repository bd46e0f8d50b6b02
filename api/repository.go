package api

import (
	"context"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

// BookRepository is the storage the handlers work on.
// sqlengine.BookStore implements it.
type BookRepository interface {
	GetAll(ctx context.Context) (bookstore.Books, error)
	Get(ctx context.Context, id bookstore.BookID) (bookstore.Book, bool, error)
	Save(ctx context.Context, book bookstore.Book) (bookstore.BookID, error)
	Delete(ctx context.Context, book bookstore.Book) error
}
