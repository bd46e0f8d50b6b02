package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

const (
	logMsgRequestHandled     = "http request handled"
	logMsgBookNotResolved    = "book could not be resolved"
	logMsgStorageFailed      = "storage operation failed"
	logMsgRenderFailed       = "failed to render response"
	logMsgURLGenerationError = "failed to generate url"
	logMsgPanicRecovered     = "recovered from panic in handler"
	logAttrMethod            = "method"
	logAttrPath              = "path"
	logAttrRoute             = "route"
	logAttrStatus            = "status"
	logAttrDurationMS        = "duration_ms"
	logAttrRequestID         = "request_id"
	logAttrError             = "error"
	logAttrPanic             = "panic"
	spanNamePrefix           = "http "
	spanAttrMethod           = "http.method"
	spanAttrRoute            = "http.route"
	spanAttrStatusCode       = "http.status_code"
	spanAttrRequestID        = "request_id"
	labelMethod              = "method"
	labelRoute               = "route"
	labelStatus              = "status"
	labelStatusCode          = "status_code"
	statusSuccess            = "success"
	statusNotFound           = "not_found"
	statusError              = "error"
	metricRequestDuration    = "http_request_duration_seconds"
	metricRequestsTotal      = "http_requests_total"
	headerRequestID          = "X-Request-ID"
)

// === Logging ===

func (s *Server) logInfo(ctx context.Context, message string, args ...any) {
	args = append(args, logAttrRequestID, RequestIDFrom(ctx))

	if s.logger != nil {
		s.logger.Info(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, message, args...)
	}
}

func (s *Server) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error(), logAttrRequestID, RequestIDFrom(ctx)}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

func (s *Server) logPanic(ctx context.Context, recovered any, args ...any) {
	allArgs := []any{logAttrPanic, fmt.Sprint(recovered), logAttrRequestID, RequestIDFrom(ctx)}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(logMsgPanicRecovered, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, logMsgPanicRecovered, allArgs...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics and tracing ===

// instrument wraps the handler of a named route into one span and one duration sample.
// The span context is handed on to the handler, so repository spans nest below it.
// A panicking handler is answered with a bare 500 and still counted and traced.
func (s *Server) instrument(method, route string, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		var span bookstore.SpanContext
		if s.tracingCollector != nil {
			ctx, span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+method+" "+route, map[string]string{
				spanAttrMethod:    method,
				spanAttrRoute:     route,
				spanAttrRequestID: RequestIDFrom(ctx),
			})
		}

		defer func() {
			if recovered := recover(); recovered != nil {
				s.logPanic(ctx, recovered, logAttrRoute, route, logAttrPath, r.URL.Path)
				renderStatus(w, http.StatusInternalServerError)
			}

			status := statusOf(w)
			outcome := outcomeOf(status)

			s.recordRequestMetrics(ctx, method, route, status, outcome, time.Since(start))

			if span != nil {
				s.tracingCollector.FinishSpan(span, outcome, map[string]string{
					spanAttrStatusCode: strconv.Itoa(status),
				})
			}
		}()

		next(w, r.WithContext(ctx))
	}
}

func (s *Server) recordRequestMetrics(ctx context.Context, method, route string, status int, outcome string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelMethod:     method,
		labelRoute:      route,
		labelStatus:     outcome,
		labelStatusCode: strconv.Itoa(status),
	}

	if contextualCollector, ok := s.metricsCollector.(bookstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricRequestDuration, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, metricRequestsTotal, labels)

		return
	}

	s.metricsCollector.RecordDuration(metricRequestDuration, duration, labels)
	s.metricsCollector.IncrementCounter(metricRequestsTotal, labels)
}

func outcomeOf(status int) string {
	switch {
	case status == http.StatusNotFound:
		return statusNotFound
	case status >= http.StatusInternalServerError:
		return statusError
	default:
		return statusSuccess
	}
}
