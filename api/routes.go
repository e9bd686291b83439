package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	rh "github.com/coreybb/starwars-api/route-handlers"
	"github.com/coreybb/starwars-api/webutil"
)

const (
	rootPath       = "/"
	usersBasePath  = "/user"
	healthzPath    = "/healthz"
	paramID        = "id"
	paramIDPattern = "[0-9]+"
)

// Route is one entry of the static route table. The same table registers the
// chi routes and feeds the sitemap.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Handler http.HandlerFunc
}

// Helper for constructing paths with a constrained parameter
func pathWithParam(basePath, paramName, pattern string) string {
	return basePath + "/{" + paramName + ":" + pattern + "}"
}

// UserRoutes returns the /user routes served by handler.
func UserRoutes(handler *rh.UserHandler) []Route {
	userSpecificPath := pathWithParam(usersBasePath, paramID, paramIDPattern) // "/user/{id:[0-9]+}"

	return []Route{
		{http.MethodGet, usersBasePath, "list users", webutil.MakeHandler(handler.HandleGetUsers)},
		{http.MethodPost, usersBasePath, "create user", webutil.MakeHandler(handler.HandleCreateUser)},
		{http.MethodGet, userSpecificPath, "get user", webutil.MakeHandler(handler.HandleGetUser)},
		{http.MethodPut, userSpecificPath, "update user", webutil.MakeHandler(handler.HandleUpdateUser)},
		{http.MethodDelete, userSpecificPath, "delete user", webutil.MakeHandler(handler.HandleDeleteUser)},
	}
}

// SetupRoutes builds the HTTP handler: middleware stack, the sitemap on "/",
// the user routes and a health check.
func SetupRoutes(userHandler *rh.UserHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	for _, mw := range Middlewares(logger) {
		r.Use(mw)
	}

	r.NotFound(webutil.NotFoundHandler)
	r.MethodNotAllowed(webutil.MethodNotAllowedHandler)

	sitemap := &Sitemap{}
	routes := append([]Route{
		{http.MethodGet, rootPath, "sitemap", webutil.MakeHandler(sitemap.Handle)},
	}, UserRoutes(userHandler)...)
	sitemap.Routes = routes

	for _, route := range routes {
		r.Method(route.Method, route.Pattern, route.Handler)
	}

	// Health check endpoint, kept out of the sitemap
	r.Get(healthzPath, handleHealthCheck)

	return r
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
