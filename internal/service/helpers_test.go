package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/repository"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns start and advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{next: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

type fakeProvider struct {
	result     provider.ScrapeResult
	scrapeErr  error
	enrichment provider.Enrichment
	enrichErr  error

	queries  []provider.ScrapeQuery
	enriched []int64
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Scrape(_ context.Context, query provider.ScrapeQuery) (provider.ScrapeResult, error) {
	p.queries = append(p.queries, query)
	return p.result, p.scrapeErr
}

func (p *fakeProvider) Enrich(_ context.Context, view entity.LeadView) (provider.Enrichment, error) {
	p.enriched = append(p.enriched, view.ID)
	return p.enrichment, p.enrichErr
}

func newTestStore() *repository.Store {
	return repository.NewStore(repository.WithClock(newStepClock(baseTime, time.Minute).Now))
}

type seedLead struct {
	company  string
	website  string
	industry string
	size     string
	revenue  string
	location string
	contact  string
	title    string
	score    int
	status   entity.LeadStatus
	source   string
}

// seed stores one company, contact and lead per entry, in order.
func seed(t *testing.T, store *repository.Store, leads ...seedLead) []entity.Lead {
	t.Helper()
	ctx := context.Background()
	created := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		company := store.CreateCompany(ctx, entity.Company{
			Name:     l.company,
			Website:  optional(l.website),
			Industry: optional(l.industry),
			Size:     l.size,
			Revenue:  l.revenue,
			Location: optional(l.location),
		})
		contact := store.CreateContact(ctx, entity.Contact{
			CompanyID: company.ID,
			Name:      l.contact,
			Title:     optional(l.title),
		})
		lead := store.CreateLead(ctx, entity.Lead{
			CompanyID: company.ID,
			ContactID: contact.ID,
			Score:     l.score,
			Status:    l.status,
			Source:    optional(l.source),
		})
		created = append(created, lead)
	}
	require.Len(t, created, len(leads))
	return created
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
