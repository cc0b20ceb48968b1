package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/service"
)

// ScrapeHandler turns provider search results into scored leads.
type ScrapeHandler struct {
	leads *service.LeadsService
}

// NewScrapeHandler constructs a scrape handler backed by the leads service.
func NewScrapeHandler(leads *service.LeadsService) *ScrapeHandler {
	return &ScrapeHandler{leads: leads}
}

// Scrape handles POST /leads/scrape requests.
func (h *ScrapeHandler) Scrape(c echo.Context) error {
	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.leads.Scrape(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "failed to scrape leads")
	}
	return Success(c, http.StatusCreated, "scrape completed", resp)
}
