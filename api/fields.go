package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigFastest

type contextKey string

const (
	fieldsContextKey    contextKey = "api.fields"
	requestIDContextKey contextKey = "api.request_id"
)

// Fields holds the top-level members of a JSON object request body.
type Fields map[string]any

// String returns the named field as a string. Missing, null and nested values read as "".
// Numbers and booleans are formatted.
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// decodeFields parses a JSON object body of at most maxBodyBytes. Anything else yields empty fields.
func decodeFields(r *http.Request) Fields {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || r.Body == nil {
		return Fields{}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return Fields{}
	}

	var decoded any
	if err = json.Unmarshal(body, &decoded); err != nil {
		return Fields{}
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return Fields{}
	}

	return object
}

func withFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsContextKey, fields)
}

// FieldsFrom returns the fields decoded from the request body, or empty fields.
func FieldsFrom(ctx context.Context) Fields {
	if fields, ok := ctx.Value(fieldsContextKey).(Fields); ok {
		return fields
	}

	return Fields{}
}

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFrom returns the ID of the request being served, or "".
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
