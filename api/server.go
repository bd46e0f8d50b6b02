package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

// Server maps HTTP requests onto a BookRepository.
// It holds no per-request state and is safe for concurrent use.
type Server struct {
	repo             BookRepository
	urls             *URLGenerator
	logger           bookstore.Logger
	contextualLogger bookstore.ContextualLogger
	metricsCollector bookstore.MetricsCollector
	tracingCollector bookstore.TracingCollector
}

// NewServer creates a Server for the given repository.
func NewServer(repo BookRepository, options ...Option) (*Server, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}

	s := &Server{
		repo: repo,
		urls: &URLGenerator{},
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// URLs returns the generator the Server builds links and Location headers with.
func (s *Server) URLs() *URLGenerator {
	return s.urls
}

// Handler returns the routed handler with the response policy applied to every response.
//
// Middleware chain (outermost to innermost):
//
//	policy and access log -> body fields -> router -> instrumentation and recovery
func (s *Server) Handler() (http.Handler, error) {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		renderStatus(w, http.StatusNotFound)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		renderStatus(w, http.StatusMethodNotAllowed)
	})

	routes := []struct {
		method string
		route  string
		handle httprouter.Handle
	}{
		{http.MethodGet, RouteBooks, s.listBooks},
		{http.MethodPost, RouteBooks, s.createBook},
		{http.MethodGet, RouteBook, s.resolveBook(s.showBook)},
		{http.MethodPut, RouteBook, s.resolveBook(s.updateBook)},
		{http.MethodDelete, RouteBook, s.resolveBook(s.deleteBook)},
	}

	for _, rt := range routes {
		pattern, err := s.urls.Pattern(rt.route)
		if err != nil {
			return nil, err
		}

		router.Handle(rt.method, pattern, s.withInstrumentation(rt.method, rt.route, rt.handle))
	}

	return s.withResponsePolicy(s.withBodyFields(router)), nil
}

func (s *Server) withInstrumentation(method, route string, handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		instrumented := s.instrument(method, route, func(w http.ResponseWriter, r *http.Request) {
			handle(w, r, ps)
		})

		instrumented(w, r)
	}
}

// withResponsePolicy is the outermost middleware: it tags the request with an ID,
// applies the response policy and writes the access log.
func (s *Server) withResponsePolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		rw := newResponseWriter(w)
		rw.Header().Set(headerRequestID, requestID)
		r = r.WithContext(withRequestID(r.Context(), requestID))

		next.ServeHTTP(rw, r)
		rw.finish()

		s.logInfo(r.Context(), logMsgRequestHandled,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrStatus, rw.status,
			logAttrDurationMS, toMilliseconds(time.Since(start)))
	})
}

// withBodyFields decodes JSON request bodies into Fields before dispatch.
func (s *Server) withBodyFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(withFields(r.Context(), decodeFields(r))))
	})
}
