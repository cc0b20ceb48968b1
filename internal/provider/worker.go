package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/logger"
)

const (
	WorkerName          = "worker"
	workerScrapePath    = "/scrape"
	workerEnrichPath    = "/enrich"
	workerClientTimeout = 30 * time.Second
)

// WorkerPoster posts JSON payloads to worker endpoints.
type WorkerPoster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) (json.RawMessage, error)
}

// WorkerClient talks to the scraping worker over HTTP.
type WorkerClient struct {
	client  *http.Client
	baseURL string
}

// NewWorkerClient builds a worker client, auto-configuring an ID token client when
// no HTTP client is supplied.
func NewWorkerClient(ctx context.Context, client *http.Client, workerBaseURL string) (*WorkerClient, error) {
	workerBaseURL = strings.TrimRight(strings.TrimSpace(workerBaseURL), "/")
	if workerBaseURL == "" {
		return nil, errors.New("worker base url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(ctx, workerBaseURL)
		if err != nil {
			client = &http.Client{Timeout: workerClientTimeout}
		} else {
			client = idc
		}
	}
	return &WorkerClient{client: client, baseURL: workerBaseURL}, nil
}

// PostJSON posts the payload to the worker and returns the raw "data" member.
func (c *WorkerClient) PostJSON(ctx context.Context, path string, payload any, requestID string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("worker error: %s", extractWorkerError(resp.Body))
	}

	var workerResp struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode worker response: %w", err)
	}
	if workerResp.Error != "" {
		return nil, fmt.Errorf("worker error: %s", workerResp.Error)
	}
	return workerResp.Data, nil
}

var _ WorkerPoster = (*WorkerClient)(nil)

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

// WorkerProvider delegates scraping and enrichment to the external worker.
type WorkerProvider struct {
	worker WorkerPoster
}

// NewWorkerProvider wraps a worker poster as a DataProvider.
func NewWorkerProvider(worker WorkerPoster) *WorkerProvider {
	return &WorkerProvider{worker: worker}
}

// Name implements DataProvider.
func (p *WorkerProvider) Name() string { return WorkerName }

// Scrape asks the worker for companies and contacts matching query.
func (p *WorkerProvider) Scrape(ctx context.Context, query ScrapeQuery) (ScrapeResult, error) {
	data, err := p.worker.PostJSON(ctx, workerScrapePath, query, logger.RequestID(ctx))
	if err != nil {
		return ScrapeResult{}, err
	}

	var result ScrapeResult
	if err := decodeWorkerData(data, &result); err != nil {
		return ScrapeResult{}, err
	}
	if result.Source == "" {
		result.Source = WorkerName
	}
	return result, nil
}

// Enrich asks the worker for extra detail about view.
func (p *WorkerProvider) Enrich(ctx context.Context, view entity.LeadView) (Enrichment, error) {
	data, err := p.worker.PostJSON(ctx, workerEnrichPath, view, logger.RequestID(ctx))
	if err != nil {
		return Enrichment{}, err
	}

	var enrichment Enrichment
	if err := decodeWorkerData(data, &enrichment); err != nil {
		return Enrichment{}, err
	}
	if enrichment.DataSource == "" {
		enrichment.DataSource = WorkerName
	}
	if enrichment.Fields == nil {
		enrichment.Fields = entity.Fields{}
	}
	if enrichment.Confidence < 0 || enrichment.Confidence > 1 {
		return Enrichment{}, fmt.Errorf("worker returned confidence %.2f outside [0,1]", enrichment.Confidence)
	}
	return enrichment, nil
}

func decodeWorkerData(data json.RawMessage, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return errors.New("worker returned no data")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("could not decode worker data: %w", err)
	}
	return nil
}
