package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/service"
)

// EnrichHandler runs lead enrichment and exposes its history.
type EnrichHandler struct {
	leads *service.LeadsService
}

// NewEnrichHandler wires a new EnrichHandler instance.
func NewEnrichHandler(leads *service.LeadsService) *EnrichHandler {
	return &EnrichHandler{leads: leads}
}

// Enrich handles POST /leads/:id/enrich requests.
func (h *EnrichHandler) Enrich(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	resp, err := h.leads.EnrichLead(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to enrich lead")
	}
	return Success(c, http.StatusOK, "lead enriched", resp)
}

// History handles GET /leads/:id/enrichments requests.
func (h *EnrichHandler) History(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	records, err := h.leads.Enrichments(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to fetch enrichments")
	}
	return Success(c, http.StatusOK, "enrichments retrieved", records)
}
