package router

import (
	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints: the
// service catalog and the booked-slots feed that slot pickers poll. The
// caller supplies the response-cache middleware so these reads can be
// served from Redis; pass nil middleware to disable caching.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, appt *handler.AppointmentHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	g := e.Group("/v1", mws...)
	g.GET("/categories", cat.ListCategories)
	g.GET("/categories/:slug", cat.GetCategory)
	g.GET("/services", cat.ListServices)
	g.GET("/appointments/booked-slots", appt.BookedTimes)
}
