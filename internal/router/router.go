// Package router maps the API surface onto handlers and the middleware
// protecting each audience: public browse routes, authenticated customer
// routes and admin routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/handler"
	"github.com/thestylist/booking-api/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session lifecycle endpoints. Register, login
// and the token exchanges live under /v1/auth without a session; /v1/me
// and /v1/logout require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.GET("/verify-email", a.VerifyEmail)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout without a JWT is allowed when the body names the refresh
	// token to revoke.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}
