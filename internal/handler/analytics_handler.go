package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/service"
)

// AnalyticsHandler exposes read-only dashboard aggregates.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates a new handler instance.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Stats handles GET /analytics/stats requests.
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	return Success(c, http.StatusOK, "stats retrieved", h.analytics.Stats(c.Request().Context()))
}

// Chart handles GET /analytics/chart requests. days defaults to seven.
func (h *AnalyticsHandler) Chart(c echo.Context) error {
	days := 0
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid days")
		}
		days = parsed
	}
	return Success(c, http.StatusOK, "chart retrieved", h.analytics.Chart(c.Request().Context(), days))
}

// DataSources handles GET /data-sources requests.
func (h *AnalyticsHandler) DataSources(c echo.Context) error {
	return Success(c, http.StatusOK, "data sources retrieved", h.analytics.DataSources(c.Request().Context()))
}
