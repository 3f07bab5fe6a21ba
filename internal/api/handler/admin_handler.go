package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// AdminHandler serves the dashboard, user list and charts.
type AdminHandler struct {
	service ParkingService
}

func NewAdminHandler(service ParkingService) *AdminHandler {
	return &AdminHandler{service: service}
}

type userList struct {
	Users []domain.User `json:"users"`
}

// Dashboard handles GET /admin.
//
// @Summary      Admin dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /admin [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	return success(c, h.service.Summary(c.Request().Context()), "Admin dashboard summary")
}

// Users handles GET /users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	return success(c, userList{Users: h.service.Users(c.Request().Context())}, "List of users")
}

// Charts handles GET /charts and GET /chart/admin.
//
// @Summary      Occupancy and monthly reservation charts
// @Tags         charts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /charts [get]
func (h *AdminHandler) Charts(c echo.Context) error {
	return success(c, h.service.Charts(c.Request().Context()), "Chart data")
}

// UserCharts handles GET /chart/user-dashboard?user_id=.
//
// @Summary      Per-user booking chart
// @Tags         charts
// @Produce      json
// @Param        user_id  query     int  true  "User id"
// @Success      200      {object}  envelope
// @Failure      400      {object}  envelope
// @Router       /chart/user-dashboard [get]
func (h *AdminHandler) UserCharts(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return err
	}
	if err := authorizeUser(c, userID); err != nil {
		return err
	}
	charts, err := h.service.UserCharts(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, charts, "User chart data")
}
