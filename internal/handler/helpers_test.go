package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/repository"
	"github.com/octobees/leads-dashboard/internal/service"
)

type stubProvider struct {
	result     provider.ScrapeResult
	scrapeErr  error
	enrichment provider.Enrichment
	enrichErr  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Scrape(context.Context, provider.ScrapeQuery) (provider.ScrapeResult, error) {
	return p.result, p.scrapeErr
}

func (p *stubProvider) Enrich(context.Context, entity.LeadView) (provider.Enrichment, error) {
	return p.enrichment, p.enrichErr
}

type testEnv struct {
	store     *repository.Store
	provider  *stubProvider
	leads     *service.LeadsService
	companies *service.CompaniesService
	email     *service.EmailService
	analytics *service.AnalyticsService
}

func newTestEnv() *testEnv {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}
	store := repository.NewStore(repository.WithClock(clock))
	stub := &stubProvider{}
	normalizer := service.NewContactNormalizer("US")
	return &testEnv{
		store:     store,
		provider:  stub,
		leads:     service.NewLeadsService(store, stub, service.WithNormalizer(normalizer)),
		companies: service.NewCompaniesService(store, normalizer),
		email:     service.NewEmailService(store),
		analytics: service.NewAnalyticsService(store, stub.Name(), service.WithAnalyticsClock(func() time.Time { return start.Add(24 * time.Hour) })),
	}
}

// addLead stores a company, a contact and a lead joining them.
func (env *testEnv) addLead(t *testing.T, company string, score int, status entity.LeadStatus) entity.Lead {
	t.Helper()
	ctx := context.Background()
	industry := "Technology"
	co := env.store.CreateCompany(ctx, entity.Company{Name: company, Industry: &industry, Size: "51-200"})
	contact := env.store.CreateContact(ctx, entity.Contact{CompanyID: co.ID, Name: "Jane Doe"})
	return env.store.CreateLead(ctx, entity.Lead{CompanyID: co.ID, ContactID: contact.ID, Score: score, Status: status})
}

func jsonRequest(method, target string, body any) (*http.Request, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// newContext builds an echo context, binding id to the :id route parameter when set.
func newContext(req *http.Request, rec *httptest.ResponseRecorder, id string) echo.Context {
	c := echo.New().NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) APIResponse {
	t.Helper()
	payload := APIResponse{Data: data}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/leads/import", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}
