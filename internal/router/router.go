package router // package router defines how HTTP routes are registered for the admin API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/airline-reservation/internal/handler"    // import the handlers that read the state domain
	"github.com/iliyamo/airline-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// AdminRole is the role claim an admin token must carry.
const AdminRole = "ADMIN"

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check that
// load balancers and monitoring systems can poll.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAdmin registers the read-only admin views.  Every route lives
// under /v1 and requires a bearer token signed with jwtSecret whose role
// claim is ADMIN.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(AdminRole))

	g.GET("/flights", a.Flights)
	g.GET("/reservations", a.Reservations)
	g.GET("/sessions", a.Sessions)
}

// New builds the admin Echo instance with all routes registered.
func New(a *handler.AdminHandler, jwtSecret string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	RegisterRoutes(e)
	RegisterAdmin(e, a, jwtSecret)
	return e
}
