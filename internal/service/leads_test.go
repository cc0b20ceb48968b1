package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/service/scoring"
)

func TestLeadsService_CRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewLeadsService(store, &fakeProvider{})

	company := store.CreateCompany(ctx, entity.Company{Name: "Acme", Size: "11-50"})
	contact := store.CreateContact(ctx, entity.Contact{CompanyID: company.ID, Name: "Jane Doe"})

	created, err := svc.CreateLead(ctx, dto.CreateLeadRequest{
		CompanyID: company.ID,
		ContactID: contact.ID,
		Score:     intPtr(70),
		Tags:      []string{"Q1"},
	})
	require.NoError(t, err)
	require.Equal(t, entity.LeadStatusPending, created.Status)
	require.Equal(t, "Acme", created.Company.Name)
	require.Equal(t, "Jane Doe", created.Contact.Name)

	got, err := svc.GetLead(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 70, got.Score)

	status := entity.LeadStatusConverted
	notes := "signed"
	updated, err := svc.UpdateLead(ctx, created.ID, dto.LeadPatch{Status: &status, Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, entity.LeadStatusConverted, updated.Status)
	require.Equal(t, "signed", *updated.Notes)
	require.Equal(t, 70, updated.Score)
	require.True(t, updated.UpdatedAt.After(created.CreatedAt))

	require.NoError(t, svc.DeleteLead(ctx, created.ID))
	require.ErrorIs(t, svc.DeleteLead(ctx, created.ID), ErrLeadNotFound)
	_, err = svc.GetLead(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLeadsService_CreateLeadValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewLeadsService(store, &fakeProvider{})

	acme := store.CreateCompany(ctx, entity.Company{Name: "Acme"})
	other := store.CreateCompany(ctx, entity.Company{Name: "Other"})
	contact := store.CreateContact(ctx, entity.Contact{CompanyID: other.ID, Name: "Sam"})

	tests := map[string]struct {
		req    dto.CreateLeadRequest
		detail string
	}{
		"missing company": {
			req:    dto.CreateLeadRequest{CompanyID: 99, ContactID: contact.ID},
			detail: "companyId does not reference an existing company",
		},
		"missing contact": {
			req:    dto.CreateLeadRequest{CompanyID: acme.ID, ContactID: 99},
			detail: "contactId does not reference an existing contact",
		},
		"contact from another company": {
			req:    dto.CreateLeadRequest{CompanyID: acme.ID, ContactID: contact.ID},
			detail: "contact does not belong to company",
		},
		"score out of range": {
			req:    dto.CreateLeadRequest{CompanyID: other.ID, ContactID: contact.ID, Score: intPtr(101)},
			detail: "score must be between 0 and 100",
		},
		"unknown status": {
			req:    dto.CreateLeadRequest{CompanyID: other.ID, ContactID: contact.ID, Status: "lost"},
			detail: "status must be one of pending, enriched, contacted, converted",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateLead(ctx, tt.req)
			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Contains(t, vErr.Details, tt.detail)
		})
	}
	require.Empty(t, store.Leads(ctx))
}

func TestLeadsService_UpdateLead(t *testing.T) {
	ctx := context.Background()
	svc := NewLeadsService(newTestStore(), &fakeProvider{})

	_, err := svc.UpdateLead(ctx, 42, dto.LeadPatch{Score: intPtr(10)})
	require.ErrorIs(t, err, ErrLeadNotFound)

	_, err = svc.UpdateLead(ctx, 42, dto.LeadPatch{Score: intPtr(-1)})
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestLeadsService_ListLeadsRejectsInvalidFilter(t *testing.T) {
	svc := NewLeadsService(newTestStore(), &fakeProvider{})
	_, err := svc.ListLeads(context.Background(), dto.LeadFilter{MinScore: intPtr(-5)})
	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestLeadsService_ScoreLeadPersists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	leads := seed(t, store, seedLead{
		company: "Acme", website: "https://acme.io", industry: "Technology", size: "200+",
		revenue: "$50M+", contact: "Jane Doe", title: "CEO", score: 0,
	})
	svc := NewLeadsService(store, &fakeProvider{})

	view, err := svc.GetLead(ctx, leads[0].ID)
	require.NoError(t, err)
	want := scoring.ComputeScore(view)

	resp, err := svc.ScoreLead(ctx, leads[0].ID)
	require.NoError(t, err)
	require.Equal(t, leads[0].ID, resp.LeadID)
	require.Equal(t, want.Total, resp.Score)
	require.Equal(t, want.Breakdown, resp.Breakdown)

	stored, ok := store.GetLead(ctx, leads[0].ID)
	require.True(t, ok)
	require.Equal(t, resp.Score, stored.Score)

	_, err = svc.ScoreLead(ctx, 999)
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadsService_Scrape(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	existing := store.CreateCompany(ctx, entity.Company{Name: "Acme Existing", Website: strPtr("https://acme.io")})

	fp := &fakeProvider{result: provider.ScrapeResult{
		Source: "fake_scraper",
		Companies: []entity.Company{
			{Name: "Acme", Website: strPtr("acme.io"), Industry: strPtr("Technology"), Size: "51-200", Revenue: "$10M-$50M"},
			{Name: "Beta Labs", Website: strPtr("https://betalabs.com/?utm_source=ads"), Size: "11-50", Revenue: "$1M-$10M"},
			{Name: "Gamma", Size: "1-10"},
		},
		Contacts: []entity.Contact{
			{Name: "Jane Doe", Title: strPtr("CTO"), Email: strPtr("Jane@Acme.io"), Phone: strPtr("(415) 555-1234")},
			{Name: "Bob Stone", Title: strPtr("Engineer"), Email: strPtr("not-an-email"), LinkedinURL: strPtr("https://example.com/bob")},
		},
	}}
	svc := NewLeadsService(store, fp)

	resp, err := svc.Scrape(ctx, dto.ScrapeRequest{SearchTerm: "  SaaS ", Industry: "Technology", Location: "Austin"})
	require.NoError(t, err)

	require.Equal(t, []provider.ScrapeQuery{{SearchTerm: "SaaS", Industry: "Technology", Location: "Austin"}}, fp.queries)
	require.Equal(t, dto.ScrapeSummary{
		SearchTerm:       "SaaS",
		Source:           "fake_scraper",
		CompaniesFound:   3,
		ContactsFound:    2,
		LeadsCreated:     2,
		CompaniesReused:  1,
		Unpaired:         1,
		AverageLeadScore: (resp.Leads[0].Score + resp.Leads[1].Score) / 2,
	}, resp.Summary)

	require.Equal(t, existing.ID, resp.Companies[0].ID)
	require.Equal(t, "https://betalabs.com", *resp.Companies[1].Website)

	jane := resp.Contacts[0]
	require.Equal(t, existing.ID, jane.CompanyID)
	require.Equal(t, "jane@acme.io", *jane.Email)
	require.Equal(t, "+14155551234", *jane.Phone)
	require.True(t, jane.IsDecisionMaker)

	bob := resp.Contacts[1]
	require.Nil(t, bob.Email)
	require.Nil(t, bob.LinkedinURL)
	require.False(t, bob.IsDecisionMaker)

	for i, lead := range resp.Leads {
		require.Equal(t, entity.LeadStatusPending, lead.Status)
		require.Equal(t, "fake_scraper", *lead.Source)
		require.Equal(t, []string{"saas", "technology"}, lead.Tags)
		view, err := svc.GetLead(ctx, lead.ID)
		require.NoError(t, err)
		require.Equal(t, scoring.ComputeScore(view).Total, lead.Score, "lead %d", i)
	}
	require.Len(t, store.Leads(ctx), 2)
	require.Len(t, store.Companies(ctx), 2)
}

func TestLeadsService_ScrapeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("search term required", func(t *testing.T) {
		fp := &fakeProvider{}
		_, err := NewLeadsService(newTestStore(), fp).Scrape(ctx, dto.ScrapeRequest{SearchTerm: "   "})
		var vErr ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Empty(t, fp.queries)
	})

	t.Run("provider failure", func(t *testing.T) {
		store := newTestStore()
		fp := &fakeProvider{scrapeErr: errors.New("upstream timeout")}
		_, err := NewLeadsService(store, fp).Scrape(ctx, dto.ScrapeRequest{SearchTerm: "saas"})
		require.ErrorIs(t, err, ErrProviderFailed)
		require.Contains(t, err.Error(), "upstream timeout")
		require.Empty(t, store.Leads(ctx))
	})

	t.Run("empty result", func(t *testing.T) {
		resp, err := NewLeadsService(newTestStore(), &fakeProvider{}).Scrape(ctx, dto.ScrapeRequest{SearchTerm: "saas"})
		require.NoError(t, err)
		require.Zero(t, resp.Summary.LeadsCreated)
		require.Zero(t, resp.Summary.AverageLeadScore)
		require.Equal(t, "fake", resp.Summary.Source)
	})
}

func TestLeadsService_ScrapeWithMockProvider(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewLeadsService(store, provider.NewMockProvider(provider.WithSeed(7)))

	resp, err := svc.Scrape(ctx, dto.ScrapeRequest{SearchTerm: "fintech", Industry: "Finance"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, resp.Summary.LeadsCreated, 3)
	require.LessOrEqual(t, resp.Summary.LeadsCreated, 8)
	require.Zero(t, resp.Summary.Unpaired)

	views, err := svc.ListLeads(ctx, dto.LeadFilter{Sources: []string{resp.Summary.Source}})
	require.NoError(t, err)
	require.Len(t, views, resp.Summary.LeadsCreated)
}

func TestLeadsService_EnrichLead(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	leads := seed(t, store, seedLead{company: "Acme", contact: "Jane Doe"})

	fp := &fakeProvider{enrichment: provider.Enrichment{
		DataSource: "fake_enrichment",
		Confidence: 0.82,
		Fields: entity.Fields{
			entity.FieldEmail:       "Jane.Doe@Acme.io",
			entity.FieldPhone:       "not a phone",
			entity.FieldTwitterURL:  "https://twitter.com/acme",
			entity.FieldCompanyData: map[string]any{entity.FieldEmployees: 120},
		},
	}}
	svc := NewLeadsService(store, fp)

	resp, err := svc.EnrichLead(ctx, leads[0].ID)
	require.NoError(t, err)
	require.Equal(t, entity.LeadStatusEnriched, resp.Status)
	require.InDelta(t, 0.82, resp.Confidence, 1e-9)
	require.Equal(t, "fake_enrichment", resp.Enrichment.DataSource)
	require.Equal(t, "jane.doe@acme.io", resp.Enrichment.EnrichedFields.String(entity.FieldEmail))
	require.NotContains(t, resp.Enrichment.EnrichedFields, entity.FieldPhone)
	require.Contains(t, resp.Enrichment.EnrichedFields, entity.FieldCompanyData)

	stored, ok := store.GetLead(ctx, leads[0].ID)
	require.True(t, ok)
	require.Equal(t, entity.LeadStatusEnriched, stored.Status)

	history, err := svc.Enrichments(ctx, leads[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = svc.EnrichLead(ctx, leads[0].ID)
	require.NoError(t, err)
	history, err = svc.Enrichments(ctx, leads[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestLeadsService_ProviderName(t *testing.T) {
	require.Equal(t, "fake", NewLeadsService(newTestStore(), &fakeProvider{}).ProviderName())
	require.Equal(t, provider.MockName, NewLeadsService(newTestStore(), provider.NewMockProvider()).ProviderName())
}

func TestLeadsService_EnrichLeadWithMockProviderAndOddSize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	leads := seed(t, store, seedLead{company: "Odd Size Co", size: "-5+", contact: "Jane Doe"})
	svc := NewLeadsService(store, provider.NewMockProvider(provider.WithSeed(1)))

	resp, err := svc.EnrichLead(ctx, leads[0].ID)
	require.NoError(t, err)
	require.Equal(t, entity.LeadStatusEnriched, resp.Status)
}

func TestLeadsService_EnrichLeadErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	leads := seed(t, store, seedLead{company: "Acme", contact: "Jane Doe"})

	fp := &fakeProvider{enrichErr: errors.New("quota")}
	svc := NewLeadsService(store, fp)

	_, err := svc.EnrichLead(ctx, 404)
	require.ErrorIs(t, err, ErrLeadNotFound)
	require.Empty(t, fp.enriched)

	_, err = svc.EnrichLead(ctx, leads[0].ID)
	require.ErrorIs(t, err, ErrProviderFailed)

	stored, _ := store.GetLead(ctx, leads[0].ID)
	require.Equal(t, entity.LeadStatusPending, stored.Status)
	require.Empty(t, store.EnrichmentsByLead(ctx, leads[0].ID))

	_, err = svc.Enrichments(ctx, 404)
	require.ErrorIs(t, err, ErrLeadNotFound)
}
