// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses so every handler
// sets status, headers and error bodies the same way.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	applog "expensetracker/internal/log"
)

// HeaderIdempotentReplayed marks a POST answered from an earlier request.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Replayed flags the response as an idempotent replay.
func (b *JSONResponseBuilder) Replayed() *JSONResponseBuilder {
	return b.Header(HeaderIdempotentReplayed, "true")
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Data wraps v as {"data": v}.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	return b.Body(dataEnvelope{Data: v})
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldError, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","kind":"internal_error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind"`
	Fields []string `json:"fields,omitempty"`
}

// ErrorResponse creates a standard error response {"error", "kind"}.
func ErrorResponse(statusCode int, kind, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, Kind: kind})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, applog.ErrorTypeValidation, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, applog.ErrorTypeNotFound, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, applog.ErrorTypeConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, applog.ErrorTypeInternal, message)
}

// TooManyRequestsError creates a 429 response for the rate limiter.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limit_error", "rate limit exceeded, please try again later")
}
