package provider

import (
	"context"
	"time"

	"github.com/octobees/leads-dashboard/internal/entity"
)

// ScrapeQuery describes what a provider should search for.
type ScrapeQuery struct {
	SearchTerm string `json:"searchTerm"`
	Industry   string `json:"industry,omitempty"`
	Location   string `json:"location,omitempty"`
}

// ScrapeResult holds the companies and contacts found by a provider.
// Contacts[i] belongs to Companies[i]; CompanyID is assigned by the caller.
type ScrapeResult struct {
	Source    string           `json:"source"`
	Companies []entity.Company `json:"companies"`
	Contacts  []entity.Contact `json:"contacts"`
}

// Enrichment is the extra detail a provider found for a lead.
type Enrichment struct {
	DataSource string        `json:"dataSource"`
	Fields     entity.Fields `json:"enrichedFields"`
	Confidence float64       `json:"confidence"`
}

// DataProvider produces company and contact data for the dashboard.
type DataProvider interface {
	Name() string
	Scrape(ctx context.Context, query ScrapeQuery) (ScrapeResult, error)
	Enrich(ctx context.Context, view entity.LeadView) (Enrichment, error)
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
