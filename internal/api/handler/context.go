package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/api/middleware"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// paramID reads a positive integer path parameter.
func paramID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}

// queryUserID reads the user_id query parameter.
func queryUserID(c echo.Context) (int, error) {
	raw := c.QueryParam("user_id")
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "user_id must be integer")
	}
	return id, nil
}

// authorizeUser lets a request act for userID. Without auth claims (the
// middleware is optional) every request passes; with them, only admins
// may act for someone else.
func authorizeUser(c echo.Context, userID int) error {
	role, _ := c.Get(middleware.KeyRole).(string)
	if role == "" || role == domain.RoleAdmin {
		return nil
	}
	if claimed, _ := c.Get(middleware.KeyUserID).(int); claimed != userID {
		return domain.ErrForbidden
	}
	return nil
}
