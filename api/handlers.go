package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
	"github.com/AntonStoeckl/hal-books-api/hal"
)

const (
	fieldTitle  = "title"
	fieldAuthor = "author"
)

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books, err := s.repo.GetAll(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	collection, err := newBookCollection(books, s.urls)
	if err != nil {
		s.logError(r.Context(), logMsgURLGenerationError, err)
		renderStatus(w, http.StatusInternalServerError)

		return
	}

	cacheFor(w, listCacheMaxAge)
	s.renderJSON(w, r, http.StatusOK, collection)
}

func (s *Server) showBook(w http.ResponseWriter, r *http.Request, book bookstore.Book) {
	resource, err := newBookResource(book, s.urls)
	if err != nil {
		s.logError(r.Context(), logMsgURLGenerationError, err)
		renderStatus(w, http.StatusInternalServerError)

		return
	}

	s.renderJSON(w, r, http.StatusOK, resource)
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fields := FieldsFrom(r.Context())
	book := bookstore.NewBook(fields.String(fieldTitle), fields.String(fieldAuthor))

	id, err := s.repo.Save(r.Context(), book)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	location, err := bookURL(id, s.urls)
	if err != nil {
		s.logError(r.Context(), logMsgURLGenerationError, err)
		renderStatus(w, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Location", location)
	renderStatus(w, http.StatusCreated)
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request, book bookstore.Book) {
	fields := FieldsFrom(r.Context())
	book.Title = fields.String(fieldTitle)
	book.Author = fields.String(fieldAuthor)

	if _, err := s.repo.Save(r.Context(), book); err != nil {
		s.renderError(w, r, err)
		return
	}

	renderStatus(w, http.StatusOK)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request, book bookstore.Book) {
	if err := s.repo.Delete(r.Context(), book); err != nil {
		s.renderError(w, r, err)
		return
	}

	renderStatus(w, http.StatusNoContent)
}

func (s *Server) renderJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := hal.Marshal(v)
	if err != nil {
		s.logError(r.Context(), logMsgRenderFailed, err)
		renderStatus(w, http.StatusInternalServerError)

		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}
