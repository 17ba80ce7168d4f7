package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hotelbook/room-reservation/internal/handler"
)

// RegisterRoutes installs the shared middleware and every route on e.
// limiters wrap the reservation endpoints only, so health probes are never
// throttled.
func RegisterRoutes(e *echo.Echo, h *handler.ReservationHandler, limiters ...echo.MiddlewareFunc) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Map the GET request at path "/healthz" to the Health handler.
	e.GET("/healthz", handler.Health)

	g := e.Group("/reservation", limiters...)
	g.GET("/by-name/:name", h.FindByName)
	g.GET("/by-room/:room_id", h.FindByRoom)
	g.POST("", h.Reserve)
	g.PUT("/update", h.Reschedule)
	g.DELETE("/delete", h.Cancel)
}
