package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string, details ...string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
		Details: details,
	}
	return c.JSON(status, payload)
}

// ServiceError maps a service error onto the error envelope. fallback is the
// message used for unexpected failures, whose raw error is echoed in details.
func ServiceError(c echo.Context, err error, fallback string) error {
	var validationErr service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Message, validationErr.Details...)
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProviderFailed):
		return Error(c, http.StatusBadGateway, "data provider unavailable", err.Error())
	default:
		return Error(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
