package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

// ExportHandler starts CSV exports and serves their files.
type ExportHandler struct {
	service ExportService
}

func NewExportHandler(service ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

type exportStatus struct {
	Status  string `json:"status"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Start handles GET /export-csv?user_id=.
//
// @Summary      Start a CSV export of a user's bookings
// @Tags         export
// @Produce      json
// @Param        user_id  query     int  true  "User id"
// @Success      200      {object}  exportStatus
// @Failure      400      {object}  envelope
// @Router       /export-csv [get]
func (h *ExportHandler) Start(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return err
	}
	if err := authorizeUser(c, userID); err != nil {
		return err
	}
	task, err := h.service.Enqueue(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exportStatus{Status: "started", TaskID: task})
}

// Download handles GET /download-csv?task_id=. It answers with the task
// state until the file is ready, then with the file itself.
//
// @Summary      Poll an export and download its CSV
// @Tags         export
// @Produce      json
// @Produce      text/csv
// @Param        task_id  query     string  true  "Task id"
// @Success      200      {object}  exportStatus
// @Failure      400      {object}  envelope
// @Failure      404      {object}  envelope
// @Router       /download-csv [get]
func (h *ExportHandler) Download(c echo.Context) error {
	taskID := c.QueryParam("task_id")
	if taskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task_id required")
	}
	task, err := h.service.Status(c.Request().Context(), taskID)
	if err != nil {
		return err
	}

	switch task.State {
	case domain.ExportReady:
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		return c.Attachment(task.Path, filepath.Base(task.Path))
	case domain.ExportFailed:
		return c.JSON(http.StatusOK, exportStatus{Status: domain.ExportFailed, Message: task.Message})
	default:
		return c.JSON(http.StatusOK, exportStatus{Status: domain.ExportPending})
	}
}
