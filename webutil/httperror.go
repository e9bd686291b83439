package webutil

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

const (
	msgBadRequest       = "Bad Request"
	msgNotFound         = "Resource not found"
	msgRouteNotFound    = "Not Found"
	msgInternalServer   = "Internal Server Error"
	msgConflict         = "Conflict"
	msgMethodNotAllowed = "Method Not Allowed"
	msgPayloadTooLarge  = "Request Entity Too Large"
)

// Key under which the user-facing message is placed in an error body.
const messageKey = "message"

// Represents an error with an associated HTTP status code,
// a user-facing message and optional extra fields for the response body.
type HTTPError struct {
	cause   error          // The underlying error, can be nil
	Code    int            // HTTP status code
	Message string         // User-facing error message
	Payload map[string]any // Extra body fields, merged by ToMap
}

// Implements the error interface.
// It returns the Message, which is intended for the HTTP response.
func (he HTTPError) Error() string {
	return he.Message
}

// Provides compatibility for errors.Is and errors.As.
func (he HTTPError) Unwrap() error {
	return he.cause
}

// ToMap returns the response body: the payload with "message" set on top.
func (he HTTPError) ToMap() map[string]any {
	body := make(map[string]any, len(he.Payload)+1)
	maps.Copy(body, he.Payload)
	body[messageKey] = he.Message
	return body
}

// Returns the defaultVal if the initial message is empty.
func defaultMessageIfEmpty(initialMsg, defaultVal string) string {
	if initialMsg == "" {
		return defaultVal
	}
	return initialMsg
}

// NewAPIError builds an HTTPError carrying a payload. A zero code means 400.
func NewAPIError(message string, code int, payload map[string]any) *HTTPError {
	if code == 0 {
		code = http.StatusBadRequest
	}
	return &HTTPError{
		cause:   errors.New(message),
		Code:    code,
		Message: message,
		Payload: payload,
	}
}

// Creates a new HTTPError with a code and message.
// The message provided will be used directly. If a default message is desired
// for an empty input message, use the specific ErrXxx constructors.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		cause:   errors.New(message), // Base error is the message itself
		Code:    code,
		Message: message,
	}
}

// Creates a new HTTPError that wraps an existing error (cause).
// The message is a user-facing message for this specific HTTP error context.
func NewHTTPErrorWrap(code int, message string, cause error) *HTTPError {
	return &HTTPError{
		cause:   cause,
		Code:    code,
		Message: message,
	}
}

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest))
}

func ErrBadRequestWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusBadRequest, defaultMessageIfEmpty(message, msgBadRequest), cause)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, defaultMessageIfEmpty(message, msgNotFound))
}

func ErrNotFoundWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusNotFound, defaultMessageIfEmpty(message, msgNotFound), cause)
}

// The message is kept for logs only; clients always see the generic text.
func ErrInternalServerWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusInternalServerError, msgInternalServer, fmt.Errorf("%s: %w", message, cause))
}

func ErrConflictWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusConflict, defaultMessageIfEmpty(message, msgConflict), cause)
}

func ErrMethodNotAllowed(message string) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, defaultMessageIfEmpty(message, msgMethodNotAllowed))
}

func ErrPayloadTooLargeWrap(message string, cause error) *HTTPError {
	return NewHTTPErrorWrap(http.StatusRequestEntityTooLarge, defaultMessageIfEmpty(message, msgPayloadTooLarge), cause)
}
