package api

import (
	"errors"
	"net/url"
	"strings"
)

// Route names.
const (
	RouteBooks = "books"
	RouteBook  = "book"
)

// ParamBook is the path parameter holding the book ID.
const ParamBook = "book"

var routePatterns = map[string]string{
	RouteBooks: "/books",
	RouteBook:  "/books/:" + ParamBook,
}

// RouteParams maps path parameter names to their values.
type RouteParams map[string]string

// URLGenerator builds paths from route names. The same patterns are registered with the router.
type URLGenerator struct {
	basePath string
}

// NewURLGenerator creates a generator that prefixes every path with basePath.
func NewURLGenerator(basePath string) (*URLGenerator, error) {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		return nil, ErrInvalidBasePath
	}

	return &URLGenerator{basePath: basePath}, nil
}

// Pattern returns the router pattern of the named route, base path included.
func (g *URLGenerator) Pattern(name string) (string, error) {
	pattern, ok := routePatterns[name]
	if !ok {
		return "", errors.Join(ErrUnknownRoute, errors.New(name))
	}

	return g.basePath + pattern, nil
}

// Generate returns the path of the named route with every :param segment replaced by its escaped value.
func (g *URLGenerator) Generate(name string, params RouteParams) (string, error) {
	pattern, err := g.Pattern(name)
	if err != nil {
		return "", err
	}

	segments := strings.Split(pattern, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") {
			continue
		}

		key := segment[1:]
		value, ok := params[key]
		if !ok || value == "" {
			return "", errors.Join(ErrMissingRouteParameter, errors.New(key))
		}

		segments[i] = url.PathEscape(value)
	}

	return strings.Join(segments, "/"), nil
}
