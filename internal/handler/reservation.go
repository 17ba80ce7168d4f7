package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hotelbook/room-reservation/internal/model"
	"github.com/hotelbook/room-reservation/internal/service"
)

// ReservationHandler exposes the reservation service over HTTP.  Every
// store call runs under Timeout, derived from the request context.
type ReservationHandler struct {
	Svc     *service.ReservationService
	Timeout time.Duration
}

// NewReservationHandler panics when svc is nil.  A non-positive timeout
// leaves the request context unbounded.
func NewReservationHandler(svc *service.ReservationService, timeout time.Duration) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Timeout: timeout}
}

// rescheduleRequest accepts both the nested form
// {"reservation": {...}, "new_start_date": ..., "new_end_date": ...} and the
// reservation fields inline at the top level.  The nested form wins.
type rescheduleRequest struct {
	Nested *model.Reservation `json:"reservation"`
	model.Reservation
	NewStartDate model.Date `json:"new_start_date"`
	NewEndDate   model.Date `json:"new_end_date"`
}

func (h *ReservationHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// FindByName handles GET /reservation/by-name/:name.
func (h *ReservationHandler) FindByName(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	rows, err := h.Svc.FindByName(ctx, c.Param("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": rows})
}

// FindByRoom handles GET /reservation/by-room/:room_id.
func (h *ReservationHandler) FindByRoom(c echo.Context) error {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room id must be an integer"})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	rows, err := h.Svc.FindByRoom(ctx, roomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": rows})
}

// Reserve handles POST /reservation.  The stored reservation is echoed back.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	var r model.Reservation
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": bindMessage(err)})
	}
	r.Name = strings.TrimSpace(r.Name)
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Svc.Reserve(ctx, r); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": r})
}

// Reschedule handles PUT /reservation/update.  A request that matches no
// reservation succeeds with {"updated": 0}.
func (h *ReservationHandler) Reschedule(c echo.Context) error {
	var body rescheduleRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": bindMessage(err)})
	}
	match := body.Nested
	if match == nil {
		match = &body.Reservation
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	n, err := h.Svc.Reschedule(ctx, *match, body.NewStartDate, body.NewEndDate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Cancel handles DELETE /reservation/delete.  Deleting nothing is not an
// error.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	var r model.Reservation
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": bindMessage(err)})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	n, err := h.Svc.Cancel(ctx, r)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// fail maps service errors onto status codes.  Anything that is not a
// client error is logged and reported as a generic 500.
func (h *ReservationHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRoomID),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrRoomUnavailable),
		errors.Is(err, service.ErrInvalidReservation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrRoomBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("reservation %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// bindMessage unwraps Echo's binder error so a bad date reads as such.
func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return "invalid request body: " + he.Internal.Error()
		}
		return "invalid request body: " + fmt.Sprint(he.Message)
	}
	return "invalid request body: " + err.Error()
}
