package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/hal-books-api/bookstore"
)

const (
	spanNamePrefix          = "bookstore."
	spanAttrOperation       = "operation"
	spanAttrTable           = "table"
	spanAttrBookID          = "book_id"
	spanAttrBookCount       = "book_count"
	spanAttrFound           = "found"
	spanAttrRowsAffected    = "rows_affected"
	spanAttrErrorType       = "error_type"
	spanAttrDurationMS      = "duration_ms"
	labelOperation          = "operation"
	labelStatus             = "status"
	labelErrorType          = "error_type"
	statusSuccess           = "success"
	statusError             = "error"
	statusNotFound          = "not_found"
	metricOperationDuration = "bookstore_operation_duration_seconds"
	metricBooksReturned     = "bookstore_books_returned"
	metricDatabaseErrors    = "bookstore_database_errors_total"
	errorTypeBuildQuery     = "build_query"
	errorTypeDatabaseQuery  = "database_query"
	errorTypeDatabaseExec   = "database_exec"
	errorTypeRowScan        = "row_scan"
	errorTypeRowsAffected   = "rows_affected"
	errorTypeInsertedID     = "inserted_id"
)

// === Logging ===

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (bs *BookStore) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, bs.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if bs.logger != nil {
		bs.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (bs *BookStore) logOperation(ctx context.Context, action string, args ...any) {
	if bs.logger != nil {
		bs.logger.Info(logMsgOperation+action, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (bs *BookStore) logWarn(ctx context.Context, message string, args ...any) {
	if bs.logger != nil {
		bs.logger.Warn(message, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at error level.
func (bs *BookStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if bs.logger != nil {
		bs.logger.Error(message, allArgs...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (bs *BookStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics ===

// recordDurationMetrics records the duration of an operation, context-aware if the collector supports it.
func (bs *BookStore) recordDurationMetrics(ctx context.Context, duration time.Duration, operation, status string) {
	if bs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    status,
	}

	if contextualCollector, ok := bs.metricsCollector.(bookstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	bs.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

// recordValueMetrics records a value metric, context-aware if the collector supports it.
func (bs *BookStore) recordValueMetrics(ctx context.Context, metricName string, value float64, operation string) {
	if bs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    statusSuccess,
	}

	if contextualCollector, ok := bs.metricsCollector.(bookstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	bs.metricsCollector.RecordValue(metricName, value, labels)
}

// recordErrorMetrics counts a failed operation, context-aware if the collector supports it.
func (bs *BookStore) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if bs.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperation: operation,
		labelStatus:    statusError,
		labelErrorType: errorType,
	}

	if contextualCollector, ok := bs.metricsCollector.(bookstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	bs.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// === Tracing ===

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (bs *BookStore) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, bookstore.SpanContext) {
	if bs.tracingCollector != nil {
		return bs.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (bs *BookStore) finishTraceSpan(span bookstore.SpanContext, status string, attrs map[string]string) {
	if bs.tracingCollector != nil && span != nil {
		bs.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// === Operation Observer ===
// One observer follows one repository operation from start to finish and feeds metrics and tracing.

type operationObserver struct {
	bs        *BookStore
	ctx       context.Context
	operation string
	span      bookstore.SpanContext
	start     time.Time
}

// startObserving starts the span of an operation and returns the observer together with the span's context.
func (bs *BookStore) startObserving(ctx context.Context, operation string, attrs map[string]string) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{
		spanAttrOperation: operation,
		spanAttrTable:     bs.tableName,
	}

	for key, value := range attrs {
		spanAttrs[key] = value
	}

	newCtx, span := bs.startTraceSpan(ctx, spanNamePrefix+operation, spanAttrs)

	return &operationObserver{
		bs:        bs,
		ctx:       newCtx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, newCtx
}

func (o *operationObserver) elapsed() time.Duration {
	return time.Since(o.start)
}

// recordBookCount records how many books a read operation returned.
func (o *operationObserver) recordBookCount(count int) {
	o.bs.recordValueMetrics(o.ctx, metricBooksReturned, float64(count), o.operation)
}

// finishSuccess records the duration and completes the span of a successful operation.
func (o *operationObserver) finishSuccess(attrs map[string]string) {
	duration := o.elapsed()
	o.bs.recordDurationMetrics(o.ctx, duration, o.operation, statusSuccess)
	o.finishSpan(statusSuccess, duration, attrs)
}

// finishNotFound completes an operation that ran fine but matched no row.
func (o *operationObserver) finishNotFound() {
	duration := o.elapsed()
	o.bs.recordDurationMetrics(o.ctx, duration, o.operation, statusNotFound)
	o.finishSpan(statusNotFound, duration, nil)
}

// finishError records the duration and the error, then completes the span of a failed operation.
func (o *operationObserver) finishError(errorType string) {
	duration := o.elapsed()
	o.bs.recordDurationMetrics(o.ctx, duration, o.operation, statusError)
	o.bs.recordErrorMetrics(o.ctx, o.operation, errorType)
	o.finishSpan(statusError, duration, map[string]string{spanAttrErrorType: errorType})
}

func (o *operationObserver) finishSpan(status string, duration time.Duration, attrs map[string]string) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(status)
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", o.bs.toMilliseconds(duration)))

	o.bs.finishTraceSpan(o.span, status, attrs)
}

// errorTypeFor classifies a failed write for metrics and tracing.
func errorTypeFor(err error) string {
	switch {
	case errors.Is(err, bookstore.ErrGettingInsertedIDFailed):
		return errorTypeInsertedID
	case errors.Is(err, bookstore.ErrGettingRowsAffectedFailed):
		return errorTypeRowsAffected
	default:
		return errorTypeDatabaseExec
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func i64toa(i int64) string {
	return strconv.FormatInt(i, 10)
}

func boolToString(b bool) string {
	return strconv.FormatBool(b)
}
