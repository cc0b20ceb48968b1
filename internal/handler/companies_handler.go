package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/service"
)

// CompaniesHandler exposes company and contact endpoints.
type CompaniesHandler struct {
	service *service.CompaniesService
}

// NewCompaniesHandler creates a new handler instance.
func NewCompaniesHandler(service *service.CompaniesService) *CompaniesHandler {
	return &CompaniesHandler{service: service}
}

// List handles GET /companies requests.
func (h *CompaniesHandler) List(c echo.Context) error {
	return Success(c, http.StatusOK, "companies retrieved", h.service.ListCompanies(c.Request().Context()))
}

// Get handles GET /companies/:id requests.
func (h *CompaniesHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	company, err := h.service.GetCompany(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to fetch company")
	}
	return Success(c, http.StatusOK, "company retrieved", company)
}

// Create handles POST /companies requests.
func (h *CompaniesHandler) Create(c echo.Context) error {
	var req dto.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	company, err := h.service.CreateCompany(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "failed to create company")
	}
	return Success(c, http.StatusCreated, "company created", company)
}

// Update handles PATCH /companies/:id requests.
func (h *CompaniesHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	var patch dto.CompanyPatch
	if err := c.Bind(&patch); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	company, err := h.service.UpdateCompany(c.Request().Context(), id, patch)
	if err != nil {
		return ServiceError(c, err, "failed to update company")
	}
	return Success(c, http.StatusOK, "company updated", company)
}

// Contacts handles GET /companies/:id/contacts requests.
func (h *CompaniesHandler) Contacts(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	contacts, err := h.service.CompanyContacts(c.Request().Context(), id)
	if err != nil {
		return ServiceError(c, err, "failed to list contacts")
	}
	return Success(c, http.StatusOK, "contacts retrieved", contacts)
}

// CreateContact handles POST /contacts requests.
func (h *CompaniesHandler) CreateContact(c echo.Context) error {
	var req dto.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	contact, err := h.service.CreateContact(c.Request().Context(), req)
	if err != nil {
		return ServiceError(c, err, "failed to create contact")
	}
	return Success(c, http.StatusCreated, "contact created", contact)
}

// UpdateContact handles PATCH /contacts/:id requests.
func (h *CompaniesHandler) UpdateContact(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	var patch dto.ContactPatch
	if err := c.Bind(&patch); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	contact, err := h.service.UpdateContact(c.Request().Context(), id, patch)
	if err != nil {
		return ServiceError(c, err, "failed to update contact")
	}
	return Success(c, http.StatusOK, "contact updated", contact)
}
