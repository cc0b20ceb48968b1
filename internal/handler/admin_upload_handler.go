package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/service"
)

// AdminUploadHandler handles CSV lead imports for administrators.
type AdminUploadHandler struct {
	companiesService *service.CompaniesService
}

// NewAdminUploadHandler wires a handler backed by the companies service.
func NewAdminUploadHandler(companiesService *service.CompaniesService) *AdminUploadHandler {
	return &AdminUploadHandler{companiesService: companiesService}
}

// UploadCSV handles POST /admin/leads/import requests.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.companiesService.ImportCSV(c.Request().Context(), file)
	if err != nil {
		return ServiceError(c, err, "failed to process csv")
	}

	return Success(c, http.StatusOK, "leads CSV processed", summary)
}
