package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

type bookHandler func(w http.ResponseWriter, r *http.Request, book bookstore.Book)

// resolveBook loads the book named by the :book path parameter and hands it to next.
// Tokens that are not positive integers cannot name a stored book and resolve to a NotFoundError.
func (s *Server) resolveBook(next bookHandler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		book, err := s.lookupBook(r.Context(), ps.ByName(ParamBook))
		if err != nil {
			s.renderError(w, r, err)
			return
		}

		next(w, r, book)
	}
}

func (s *Server) lookupBook(ctx context.Context, token string) (bookstore.Book, error) {
	id, parseErr := strconv.ParseInt(token, 10, 64)
	if parseErr != nil || id <= 0 {
		return bookstore.Book{}, &NotFoundError{ID: token}
	}

	book, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return bookstore.Book{}, err
	}

	if !found {
		return bookstore.Book{}, &NotFoundError{ID: token}
	}

	return book, nil
}

// renderError maps a failure onto a status-only response. Details go to the log, never to the body.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *NotFoundError

	switch {
	case errors.As(err, &notFound):
		s.logInfo(r.Context(), logMsgBookNotResolved, logAttrError, notFound.Error())
		renderStatus(w, http.StatusNotFound)

	case errors.Is(err, bookstore.ErrBookNotFound):
		s.logInfo(r.Context(), logMsgBookNotResolved, logAttrError, err.Error())
		renderStatus(w, http.StatusNotFound)

	default:
		s.logError(r.Context(), logMsgStorageFailed, err, logAttrPath, r.URL.Path)
		renderStatus(w, http.StatusInternalServerError)
	}
}
