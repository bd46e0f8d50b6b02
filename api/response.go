package api

import (
	"net/http"
	"strconv"

	"github.com/AntonStoeckl/hal-books-api/hal"
)

const (
	defaultCacheMaxAge = 3600
	listCacheMaxAge    = 60
)

// responseWriter applies the response policy when the header is written:
// the HAL content type and a public Cache-Control directive.
// It also remembers the status for logging and metrics.
type responseWriter struct {
	http.ResponseWriter
	maxAge      int
	status      int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, maxAge: defaultCacheMaxAge}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader = true
	w.status = status

	header := w.Header()
	header.Set("Content-Type", hal.MediaType)
	header.Set("Cache-Control", "public, max-age="+strconv.Itoa(w.maxAge))

	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	return w.ResponseWriter.Write(b)
}

// finish writes the header of a handler that wrote nothing.
func (w *responseWriter) finish() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// cacheFor shortens the freshness window of the response. It has no effect once the header is written.
func cacheFor(w http.ResponseWriter, seconds int) {
	if rw, ok := w.(*responseWriter); ok {
		rw.maxAge = seconds
	}
}

// statusOf returns the status written so far, 0 if none.
func statusOf(w http.ResponseWriter) int {
	if rw, ok := w.(*responseWriter); ok {
		return rw.status
	}

	return 0
}

// renderStatus writes a response that carries nothing but the status code.
func renderStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
