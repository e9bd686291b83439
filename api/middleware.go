package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	requestTimeout = 60 * time.Second
	corsMaxAge     = 300 // seconds browsers may cache a preflight
)

// Middlewares returns the stack applied to every route, outermost first.
// Access logs go through logger at INFO.
func Middlewares(logger *slog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(logger), // Log every request
		middleware.Recoverer,  // Recover from panics
		middleware.Timeout(requestTimeout),
		middleware.StripSlashes, // "/user/" and "/user" are the same route
		CORS(),
	}
}

// CORS allows every origin, matching the public nature of the API.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         corsMaxAge,
	})
}

// RequestLogger is chi's access log written through a slog handler.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	})
}
