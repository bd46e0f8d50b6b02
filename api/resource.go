package api

import (
	"strconv"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
	"github.com/AntonStoeckl/hal-books-api/hal"
)

const resourceName = "book"

type bookResource struct {
	ID     bookstore.BookID `json:"id"`
	Title  string           `json:"title"`
	Author string           `json:"author"`
	Links  hal.Links        `json:"_links"`
}

func newBookResource(book bookstore.Book, urls *URLGenerator) (bookResource, error) {
	self, err := bookURL(book.ID, urls)
	if err != nil {
		return bookResource{}, err
	}

	return bookResource{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Links:  hal.SelfLinks(self),
	}, nil
}

func newBookCollection(books bookstore.Books, urls *URLGenerator) (hal.Collection[bookResource], error) {
	items := make([]bookResource, 0, len(books))
	for _, book := range books {
		resource, err := newBookResource(book, urls)
		if err != nil {
			return hal.Collection[bookResource]{}, err
		}

		items = append(items, resource)
	}

	self, err := urls.Generate(RouteBooks, nil)
	if err != nil {
		return hal.Collection[bookResource]{}, err
	}

	return hal.NewCollection(resourceName, items, self), nil
}

func bookURL(id bookstore.BookID, urls *URLGenerator) (string, error) {
	return urls.Generate(RouteBook, RouteParams{ParamBook: strconv.FormatInt(id, 10)})
}
