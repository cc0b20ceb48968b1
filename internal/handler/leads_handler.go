package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/service"
)

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LeadsHandler exposes lead CRUD, scoring and export endpoints.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter, err := parseLeadFilter(c)
	if err != nil {
		return ServiceError(c, err, "failed to list leads")
	}

	views, err := h.leads.ListLeads(c.Request().Context(), filter)
	if err != nil {
		return ServiceError(c, err, "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", views)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	view, err := h.leads.GetLead(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to fetch lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", view)
}

// Create handles POST /leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	var req dto.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	view, err := h.leads.CreateLead(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "failed to create lead")
	}
	return Success(c, http.StatusCreated, "lead created", view)
}

// Update handles PATCH /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	var patch dto.LeadPatch
	if err := c.Bind(&patch); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	view, err := h.leads.UpdateLead(c.Request().Context(), id, patch)
	if err != nil {
		return ServiceError(c, err, "failed to update lead")
	}
	return Success(c, http.StatusOK, "lead updated", view)
}

// Delete handles DELETE /leads/:id requests.
func (h *LeadsHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	if err := h.leads.DeleteLead(c.Request().Context(), id); err != nil {
		return ServiceError(c, err, "failed to delete lead")
	}
	return c.NoContent(http.StatusNoContent)
}

// Score handles POST /leads/:id/score requests.
func (h *LeadsHandler) Score(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	resp, err := h.leads.ScoreLead(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to score lead")
	}
	return Success(c, http.StatusOK, "lead scored", resp)
}

// ExportCSV handles GET /leads/export/csv requests.
func (h *LeadsHandler) ExportCSV(c echo.Context) error {
	filter, err := parseLeadFilter(c)
	if err != nil {
		return ServiceError(c, err, "failed to export leads")
	}

	body, err := h.leads.ExportCSV(c.Request().Context(), filter)
	if err != nil {
		return ServiceError(c, err, "failed to export leads")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=leads.csv")
	return c.Blob(http.StatusOK, mimeCSV, []byte(body))
}

// ExportXLSX handles GET /leads/export/xlsx requests.
func (h *LeadsHandler) ExportXLSX(c echo.Context) error {
	filter, err := parseLeadFilter(c)
	if err != nil {
		return ServiceError(c, err, "failed to export leads")
	}

	body, err := h.leads.ExportXLSX(c.Request().Context(), filter)
	if err != nil {
		return ServiceError(c, err, "failed to export leads")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=leads.xlsx")
	return c.Blob(http.StatusOK, mimeXLSX, body)
}

// parseLeadFilter reads the lead filter from the query string. companySizes and
// sources may be repeated. Malformed numbers are reported as validation errors.
func parseLeadFilter(c echo.Context) (dto.LeadFilter, error) {
	query := c.QueryParams()
	filter := dto.LeadFilter{
		Search:       strings.TrimSpace(query.Get("search")),
		Industry:     strings.TrimSpace(query.Get("industry")),
		Location:     strings.TrimSpace(query.Get("location")),
		Status:       entity.LeadStatus(strings.TrimSpace(query.Get("status"))),
		CompanySizes: nonEmpty(query["companySizes"]),
		Sources:      nonEmpty(query["sources"]),
	}

	var details []string
	if raw := strings.TrimSpace(query.Get("minScore")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinScore = &v
		} else {
			details = append(details, "minScore must be an integer")
		}
	}
	bounds := []struct {
		name string
		dst  **int64
	}{
		{"minRevenue", &filter.MinRevenue},
		{"maxRevenue", &filter.MaxRevenue},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(query.Get(b.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			details = append(details, b.name+" must be an integer")
			continue
		}
		*b.dst = &v
	}
	if len(details) > 0 {
		return dto.LeadFilter{}, service.ValidationError{Message: "invalid lead filter", Details: details}
	}
	return filter, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
