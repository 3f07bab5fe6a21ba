package handler

import "github.com/labstack/echo/v4"

// SpotHandler serves single spots.
type SpotHandler struct {
	service ParkingService
}

func NewSpotHandler(service ParkingService) *SpotHandler {
	return &SpotHandler{service: service}
}

// Get handles GET /spots/:id.
//
// @Summary      Get spot details
// @Tags         spots
// @Produce      json
// @Param        id   path      int  true  "Spot id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /spots/{id} [get]
func (h *SpotHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	info, err := h.service.SpotInfo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, info, "Spot details loaded")
}

// AdminDetails handles GET /admin/spot-details/:id.
//
// @Summary      Get the occupant of a spot
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Spot id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /admin/spot-details/{id} [get]
func (h *SpotHandler) AdminDetails(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	occ, err := h.service.SpotOccupant(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, occ, "Spot details loaded")
}
