package api

import "errors"

// ErrNilRepository is returned by NewServer when no repository is given.
var ErrNilRepository = errors.New("book repository must not be nil")

// ErrInvalidBasePath is returned when a base path does not start with a slash.
var ErrInvalidBasePath = errors.New("base path must be empty or start with a slash")

// ErrUnknownRoute is returned when a URL is generated for a route name that is not registered.
var ErrUnknownRoute = errors.New("unknown route")

// ErrMissingRouteParameter is returned when a URL is generated without a value for a path parameter.
var ErrMissingRouteParameter = errors.New("missing route parameter")

// NotFoundError signals that the book addressed by a request path does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "Book " + e.ID + " not found"
}
