package webutil

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// It executes the AppHandler and handles any returned error by logging appropriately
// and sending a standardized JSON error response.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		err := handler(ww, r)
		if err == nil {
			// The handler wrote its own successful response.
			return
		}

		httpErr := classify(r, err)

		if ww.Status() != 0 {
			slog.WarnContext(r.Context(), "Handler returned error after writing response header",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err,
			)
			return
		}

		RespondWithJSON(ww, httpErr.Code, httpErr.ToMap())
	}
}

// classify maps any handler error onto an HTTPError and logs it at a level
// matching its status class.
func classify(r *http.Request, err error) *HTTPError {
	var httpErr *HTTPError

	switch {
	case errors.As(err, &httpErr):
		logLevel, logMessage := slog.LevelWarn, "Client error response" // Treat client errors as warnings server-side
		if httpErr.Code >= 500 {
			logLevel, logMessage = slog.LevelError, "Server error response"
		}
		attrs := []any{
			"code", httpErr.Code,
			"msg", httpErr.Message,
			"path", r.URL.Path,
			"method", r.Method,
		}
		// Log the underlying cause if present and different from the public message
		if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != httpErr.Message {
			attrs = append(attrs, "cause", cause)
		}
		slog.Log(r.Context(), logLevel, logMessage, attrs...)
		return httpErr

	case errors.Is(err, sql.ErrNoRows):
		slog.InfoContext(r.Context(), "Resource not found (sql.ErrNoRows)", "path", r.URL.Path, "method", r.Method, "error", err)
		return ErrNotFoundWrap("", err)

	default:
		slog.ErrorContext(r.Context(), "Unhandled internal error", "path", r.URL.Path, "method", r.Method, "error", err)
		return NewHTTPErrorWrap(http.StatusInternalServerError, msgInternalServer, err)
	}
}

// NotFoundHandler answers unmatched routes with the structured error body.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	httpErr := ErrNotFound(msgRouteNotFound)
	RespondWithJSON(w, httpErr.Code, httpErr.ToMap())
}

// MethodNotAllowedHandler answers known paths hit with an unsupported method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	httpErr := ErrMethodNotAllowed("")
	RespondWithJSON(w, httpErr.Code, httpErr.ToMap())
}
