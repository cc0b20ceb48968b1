package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/auth"
	"github.com/octobees/leads-dashboard/internal/config"
	"github.com/octobees/leads-dashboard/internal/handler"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/repository"
	"github.com/octobees/leads-dashboard/internal/service"
)

func newServer(t *testing.T, authEnabled bool) (*echo.Echo, *auth.JWTManager) {
	t.Helper()
	cfg := &config.Config{
		AuthEnabled:     authEnabled,
		RateLimitScrape: config.RateLimitConfig{Requests: 1, Interval: time.Hour},
	}
	jwtManager := auth.NewJWTManager("router-secret", time.Hour)

	store := repository.NewStore()
	mock := provider.NewMockProvider(provider.WithSeed(3))
	leads := service.NewLeadsService(store, mock)
	companies := service.NewCompaniesService(store, nil)

	e := echo.New()
	Register(e, cfg, jwtManager, Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(repository.NewMemoryUsersRepository(), jwtManager)),
		Leads:       handler.NewLeadsHandler(leads),
		Scrape:      handler.NewScrapeHandler(leads),
		Enrich:      handler.NewEnrichHandler(leads),
		Companies:   handler.NewCompaniesHandler(companies),
		AdminUpload: handler.NewAdminUploadHandler(companies),
		Email:       handler.NewEmailHandler(service.NewEmailService(store)),
		Analytics:   handler.NewAnalyticsHandler(service.NewAnalyticsService(store, mock.Name())),
	})
	return e, jwtManager
}

func serve(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister_OpenRoutes(t *testing.T) {
	e, _ := newServer(t, false)

	tests := map[string]struct {
		method       string
		target       string
		body         string
		expectStatus int
	}{
		"health":           {method: http.MethodGet, target: "/healthz", expectStatus: http.StatusOK},
		"list leads":       {method: http.MethodGet, target: "/leads", expectStatus: http.StatusOK},
		"csv export":       {method: http.MethodGet, target: "/leads/export/csv", expectStatus: http.StatusOK},
		"xlsx export":      {method: http.MethodGet, target: "/leads/export/xlsx", expectStatus: http.StatusOK},
		"missing lead":     {method: http.MethodGet, target: "/leads/7", expectStatus: http.StatusNotFound},
		"enrich missing":   {method: http.MethodPost, target: "/leads/7/enrich", expectStatus: http.StatusNotFound},
		"templates":        {method: http.MethodGet, target: "/email/templates?industry=Finance", expectStatus: http.StatusOK},
		"stats":            {method: http.MethodGet, target: "/analytics/stats", expectStatus: http.StatusOK},
		"chart":            {method: http.MethodGet, target: "/analytics/chart?days=14", expectStatus: http.StatusOK},
		"data sources":     {method: http.MethodGet, target: "/data-sources", expectStatus: http.StatusOK},
		"companies":        {method: http.MethodGet, target: "/companies", expectStatus: http.StatusOK},
		"delete missing":   {method: http.MethodDelete, target: "/leads/7", expectStatus: http.StatusNotFound},
		"invalid scrape":   {method: http.MethodPost, target: "/leads/scrape", body: `{}`, expectStatus: http.StatusBadRequest},
		"unknown campaign": {method: http.MethodPost, target: "/email/campaigns/9/send", expectStatus: http.StatusNotFound},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, tt.body, "")
			if rec.Code != tt.expectStatus {
				t.Fatalf("expected %d, got %d: %s", tt.expectStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegister_ScrapeIsRateLimited(t *testing.T) {
	e, _ := newServer(t, false)

	if rec := serve(e, http.MethodPost, "/leads/scrape", `{"searchTerm":"clinics"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(e, http.MethodPost, "/leads/scrape", `{"searchTerm":"clinics"}`, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/leads", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected other routes to stay available, got %d", rec.Code)
	}
}

func TestRegister_AuthEnabled(t *testing.T) {
	e, jwtManager := newServer(t, true)
	userToken, err := jwtManager.GenerateToken("u-1", "user@example.com", "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	adminToken, err := jwtManager.GenerateToken("u-2", "admin@example.com", service.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tests := map[string]struct {
		method       string
		target       string
		body         string
		token        string
		expectStatus int
	}{
		"reads stay public":         {method: http.MethodGet, target: "/leads", expectStatus: http.StatusOK},
		"create needs token":        {method: http.MethodPost, target: "/companies", body: `{"name":"Acme"}`, expectStatus: http.StatusUnauthorized},
		"create with token":         {method: http.MethodPost, target: "/companies", body: `{"name":"Acme"}`, token: userToken, expectStatus: http.StatusCreated},
		"delete needs admin":        {method: http.MethodDelete, target: "/leads/1", token: userToken, expectStatus: http.StatusForbidden},
		"delete as admin":           {method: http.MethodDelete, target: "/leads/1", token: adminToken, expectStatus: http.StatusNotFound},
		"import needs admin":        {method: http.MethodPost, target: "/admin/leads/import", token: userToken, expectStatus: http.StatusForbidden},
		"invalid token is rejected": {method: http.MethodPost, target: "/contacts", body: `{}`, token: "nope", expectStatus: http.StatusUnauthorized},
		"login is public":           {method: http.MethodPost, target: "/auth/login", body: `{"email":"x@example.com","password":"p"}`, expectStatus: http.StatusUnauthorized},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, tt.body, tt.token)
			if rec.Code != tt.expectStatus {
				t.Fatalf("expected %d, got %d: %s", tt.expectStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
