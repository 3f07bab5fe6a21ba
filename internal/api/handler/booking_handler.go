package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// BookingHandler serves reservations.
type BookingHandler struct {
	service ParkingService
}

func NewBookingHandler(service ParkingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type bookingList struct {
	Bookings []domain.Booking `json:"bookings"`
}

// Reserve handles POST /reserve.
//
// @Summary      Reserve the first available spot of a lot
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ReserveInput  true  "Reservation request"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /reserve [post]
func (h *BookingHandler) Reserve(c echo.Context) error {
	var req domain.ReserveInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		return err
	}

	res, err := h.service.Reserve(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, res, "Spot reserved")
}

// Release handles POST /bookings/release/:id.
//
// @Summary      Finalize a reservation and release its spot
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Reservation id"
// @Success      200  {object}  envelope
// @Failure      400  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /bookings/release/{id} [post]
func (h *BookingHandler) Release(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.service.Release(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, b, "Reservation finalized and spot released")
}

// ForUser handles GET /bookings/user?user_id=.
//
// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        user_id  query     int  true  "User id"
// @Success      200      {object}  envelope
// @Failure      400      {object}  envelope
// @Failure      404      {object}  envelope
// @Router       /bookings/user [get]
func (h *BookingHandler) ForUser(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return err
	}
	if err := authorizeUser(c, userID); err != nil {
		return err
	}
	bookings, err := h.service.UserBookings(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, bookingList{Bookings: bookings}, "User bookings")
}

// All handles GET /admin/bookings.
//
// @Summary      List every booking
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /admin/bookings [get]
func (h *BookingHandler) All(c echo.Context) error {
	return success(c, bookingList{Bookings: h.service.AllBookings(c.Request().Context())}, "All bookings")
}
