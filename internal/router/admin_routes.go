package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/handler"
	"github.com/thestylist/booking-api/internal/middleware"
)

// RegisterAdmin registers the staff-facing endpoints under /v1/admin.
// These routes see every appointment regardless of owner and require the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, appt *handler.AppointmentHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.GET("/appointments", appt.ListAll)
	g.GET("/appointments/:id", appt.GetAny)
}
