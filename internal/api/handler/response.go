package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the response body every endpoint answers with.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func success(c echo.Context, data any, message string) error {
	if data == nil {
		data = struct{}{}
	}
	return c.JSON(http.StatusOK, envelope{Status: "success", Data: data, Message: message})
}
