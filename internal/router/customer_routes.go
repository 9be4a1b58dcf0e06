package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/handler"
	"github.com/thestylist/booking-api/internal/middleware"
)

// RegisterCustomer registers the booking endpoints. All routes require a
// valid JWT; admins may call them too, acting as ordinary customers for
// appointments they own.
func RegisterCustomer(e *echo.Echo, appt *handler.AppointmentHandler, pay *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	g.POST("/appointments", appt.Create)
	g.GET("/my-appointments", appt.List)
	g.GET("/appointments/:id", appt.Get)
	g.PATCH("/appointments/:id", appt.Reschedule)
	g.DELETE("/appointments/:id", appt.Cancel)

	g.POST("/appointments/:id/payments/paystack/initialize", pay.PaystackInitialize)
	g.POST("/appointments/:id/payments/stripe/initialize", pay.StripeCheckout)
	g.POST("/appointments/:id/payments/verify", pay.Verify)
}
