package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// LotHandler serves parking lots and their spots.
type LotHandler struct {
	service ParkingService
}

func NewLotHandler(service ParkingService) *LotHandler {
	return &LotHandler{service: service}
}

type lotList struct {
	Lots []domain.Lot `json:"lots"`
}

type updateLotRequest struct {
	PrimeLocationName *string          `json:"prime_location_name" validate:"omitempty,min=1"`
	Address           *string          `json:"address" validate:"omitempty,min=1"`
	PinCode           *string          `json:"pin_code" validate:"omitempty,min=1,max=10"`
	PricePerHour      *decimal.Decimal `json:"price_per_hour"`
	NumberOfSpots     *int             `json:"number_of_spots"`
}

// adminSpot is the compact spot shape of the admin grid.
type adminSpot struct {
	ID         int    `json:"id"`
	SpotNumber string `json:"spot_number"`
	Status     string `json:"status"`
}

// List handles GET /lots.
//
// @Summary      List parking lots
// @Tags         lots
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /lots [get]
func (h *LotHandler) List(c echo.Context) error {
	return success(c, lotList{Lots: h.service.Lots(c.Request().Context())}, "List of lots")
}

// Get handles GET /lots/:id.
//
// @Summary      Get a parking lot with its spots
// @Tags         lots
// @Produce      json
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /lots/{id} [get]
func (h *LotHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	lot, err := h.service.Lot(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, lot, "Lot found")
}

// Create handles POST /lots.
//
// @Summary      Create a parking lot
// @Tags         lots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.LotInput  true  "Lot details"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Router       /lots [post]
func (h *LotHandler) Create(c echo.Context) error {
	var req domain.LotInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.PricePerHour.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "price_per_hour must not be negative")
	}

	lot, err := h.service.CreateLot(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, lot, "Parking lot created")
}

// Update handles PUT /lots/:id. Absent fields are left untouched.
//
// @Summary      Update a parking lot
// @Tags         lots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Lot id"
// @Param        body  body      updateLotRequest  true  "Fields to change"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /lots/{id} [put]
func (h *LotHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateLotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lot, err := h.service.UpdateLot(c.Request().Context(), id, domain.LotUpdate{
		PrimeLocationName: req.PrimeLocationName,
		Address:           req.Address,
		PinCode:           req.PinCode,
		PricePerHour:      req.PricePerHour,
		NumberOfSpots:     req.NumberOfSpots,
	})
	if err != nil {
		return err
	}
	return success(c, lot, "Parking lot updated")
}

// Delete handles DELETE /lots/:id.
//
// @Summary      Delete a parking lot
// @Tags         lots
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  envelope
// @Failure      400  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /lots/{id} [delete]
func (h *LotHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteLot(c.Request().Context(), id); err != nil {
		return err
	}
	return success(c, nil, "Parking lot deleted")
}

// Spots handles GET /lots/:id/spots.
//
// @Summary      List the spots of a lot
// @Tags         lots
// @Produce      json
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /lots/{id}/spots [get]
func (h *LotHandler) Spots(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	spots, err := h.service.LotSpots(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, spots, "Spots loaded")
}

// AdminSpots handles GET /admin/lots/:id/spots. The listing is returned at
// the top level of the body, not under data.
//
// @Summary      List the spots of a lot (admin grid)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  envelope
// @Router       /admin/lots/{id}/spots [get]
func (h *LotHandler) AdminSpots(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.service.LotSpots(c.Request().Context(), id)
	if err != nil {
		return err
	}

	spots := make([]adminSpot, 0, len(listing.Spots))
	for _, s := range listing.Spots {
		spots = append(spots, adminSpot{ID: s.ID, SpotNumber: s.SpotNumber, Status: s.Status})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "spots": spots})
}
