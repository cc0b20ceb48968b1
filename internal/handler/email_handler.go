package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/service"
)

// EmailHandler exposes template, generation and campaign endpoints.
type EmailHandler struct {
	email *service.EmailService
}

// NewEmailHandler creates a new handler instance.
func NewEmailHandler(email *service.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

// Templates handles GET /email/templates requests.
func (h *EmailHandler) Templates(c echo.Context) error {
	return Success(c, http.StatusOK, "templates retrieved", h.email.ListTemplates(c.QueryParam("industry")))
}

// Generate handles POST /leads/:id/email/generate requests.
func (h *EmailHandler) Generate(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	var req dto.GenerateEmailRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	email, err := h.email.Generate(c.Request().Context(), id, req)
	if err != nil {
		return ServiceError(c, err, "failed to generate email")
	}
	return Success(c, http.StatusOK, "email generated", email)
}

// CreateCampaign handles POST /email/campaigns requests.
func (h *EmailHandler) CreateCampaign(c echo.Context) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	campaign, err := h.email.CreateCampaign(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "failed to create campaign")
	}
	return Success(c, http.StatusCreated, "campaign created", campaign)
}

// SendCampaign handles POST /email/campaigns/:id/send requests.
func (h *EmailHandler) SendCampaign(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	campaign, err := h.email.SendCampaign(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to send campaign")
	}
	return Success(c, http.StatusOK, "campaign sent", campaign)
}

// LeadCampaigns handles GET /leads/:id/email/campaigns requests.
func (h *EmailHandler) LeadCampaigns(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	campaigns, err := h.email.ListCampaigns(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to list campaigns")
	}
	return Success(c, http.StatusOK, "campaigns retrieved", campaigns)
}
