package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/repository"
	"github.com/octobees/leads-dashboard/internal/service/scoring"
)

// LeadsService implements lead listing, mutation, scoring, scraping and enrichment.
type LeadsService struct {
	store      *repository.Store
	provider   provider.DataProvider
	normalizer *ContactNormalizer
	logger     *zap.Logger
}

// LeadsOption configures optional LeadsService dependencies.
type LeadsOption func(*LeadsService)

// WithLeadsLogger overrides the no-op logger.
func WithLeadsLogger(logger *zap.Logger) LeadsOption {
	return func(s *LeadsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNormalizer overrides the default US contact normalizer.
func WithNormalizer(normalizer *ContactNormalizer) LeadsOption {
	return func(s *LeadsService) {
		if normalizer != nil {
			s.normalizer = normalizer
		}
	}
}

// NewLeadsService wires the service to a store and a data provider.
func NewLeadsService(store *repository.Store, dataProvider provider.DataProvider, opts ...LeadsOption) *LeadsService {
	s := &LeadsService{
		store:      store,
		provider:   dataProvider,
		normalizer: NewContactNormalizer(defaultPhoneRegion),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName returns the name of the configured data provider.
func (s *LeadsService) ProviderName() string {
	return s.provider.Name()
}

// ListLeads returns the joined leads matching filter, newest first.
func (s *LeadsService) ListLeads(ctx context.Context, filter dto.LeadFilter) ([]entity.LeadView, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	return FilterLeads(s.store.LeadViews(ctx), filter), nil
}

// ValidateFilter rejects filters that can never be satisfied or carry unknown values.
func ValidateFilter(filter dto.LeadFilter) error {
	var details []string
	if filter.Status != "" && !filter.Status.Valid() {
		details = append(details, fmt.Sprintf("status must be one of %s", joinStatuses()))
	}
	if filter.MinScore != nil && (*filter.MinScore < 0 || *filter.MinScore > 100) {
		details = append(details, "minScore must be between 0 and 100")
	}
	if filter.MinRevenue != nil && *filter.MinRevenue < 0 {
		details = append(details, "minRevenue must not be negative")
	}
	if filter.MaxRevenue != nil && *filter.MaxRevenue < 0 {
		details = append(details, "maxRevenue must not be negative")
	}
	if filter.MinRevenue != nil && filter.MaxRevenue != nil && *filter.MinRevenue > *filter.MaxRevenue {
		details = append(details, "minRevenue must not exceed maxRevenue")
	}
	if len(details) > 0 {
		return newValidationError("invalid lead filter", details...)
	}
	return nil
}

// GetLead returns the joined view of a lead.
func (s *LeadsService) GetLead(ctx context.Context, id int64) (entity.LeadView, error) {
	view, ok := s.store.LeadView(ctx, id)
	if !ok {
		return entity.LeadView{}, ErrLeadNotFound
	}
	return view, nil
}

// CreateLead validates references and stores a new lead.
func (s *LeadsService) CreateLead(ctx context.Context, req dto.CreateLeadRequest) (entity.LeadView, error) {
	var details []string
	company, companyOK := s.store.GetCompany(ctx, req.CompanyID)
	if !companyOK {
		details = append(details, "companyId does not reference an existing company")
	}
	contact, contactOK := s.store.GetContact(ctx, req.ContactID)
	if !contactOK {
		details = append(details, "contactId does not reference an existing contact")
	}
	if companyOK && contactOK && contact.CompanyID != company.ID {
		details = append(details, "contact does not belong to company")
	}
	if req.Score != nil && !validScore(*req.Score) {
		details = append(details, "score must be between 0 and 100")
	}
	if req.Status != "" && !req.Status.Valid() {
		details = append(details, fmt.Sprintf("status must be one of %s", joinStatuses()))
	}
	if len(details) > 0 {
		return entity.LeadView{}, newValidationError("invalid lead", details...)
	}

	lead := entity.Lead{
		CompanyID: req.CompanyID,
		ContactID: req.ContactID,
		Status:    req.Status,
		Source:    req.Source,
		Tags:      req.Tags,
		Notes:     req.Notes,
	}
	if req.Score != nil {
		lead.Score = *req.Score
	}
	created := s.store.CreateLead(ctx, lead)
	return entity.LeadView{Lead: created, Company: company, Contact: contact}, nil
}

// UpdateLead applies a partial update to a lead.
func (s *LeadsService) UpdateLead(ctx context.Context, id int64, patch dto.LeadPatch) (entity.LeadView, error) {
	var details []string
	if patch.Score != nil && !validScore(*patch.Score) {
		details = append(details, "score must be between 0 and 100")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		details = append(details, fmt.Sprintf("status must be one of %s", joinStatuses()))
	}
	if len(details) > 0 {
		return entity.LeadView{}, newValidationError("invalid lead update", details...)
	}

	if _, ok := s.store.UpdateLead(ctx, id, patch); !ok {
		return entity.LeadView{}, ErrLeadNotFound
	}
	return s.GetLead(ctx, id)
}

// DeleteLead removes a lead. Deleting a missing lead returns ErrLeadNotFound.
func (s *LeadsService) DeleteLead(ctx context.Context, id int64) error {
	if !s.store.DeleteLead(ctx, id) {
		return ErrLeadNotFound
	}
	return nil
}

// ScoreLead recomputes the score of a lead and stores it on the lead.
func (s *LeadsService) ScoreLead(ctx context.Context, id int64) (dto.ScoreResponse, error) {
	view, ok := s.store.LeadView(ctx, id)
	if !ok {
		return dto.ScoreResponse{}, ErrLeadNotFound
	}
	result := scoring.ComputeScore(view)
	if _, ok := s.store.UpdateLead(ctx, id, dto.LeadPatch{Score: &result.Total}); !ok {
		return dto.ScoreResponse{}, ErrLeadNotFound
	}
	return dto.ScoreResponse{LeadID: id, Score: result.Total, Breakdown: result.Breakdown}, nil
}

// Enrichments lists the enrichment history of a lead, oldest first.
func (s *LeadsService) Enrichments(ctx context.Context, id int64) ([]entity.EnrichmentData, error) {
	if _, ok := s.store.GetLead(ctx, id); !ok {
		return nil, ErrLeadNotFound
	}
	return s.store.EnrichmentsByLead(ctx, id), nil
}

// Scrape asks the data provider for companies and contacts and turns every
// company/contact pair into a scored pending lead. Pairs are matched by index;
// surplus companies or contacts are reported as unpaired and skipped.
func (s *LeadsService) Scrape(ctx context.Context, req dto.ScrapeRequest) (dto.ScrapeResponse, error) {
	req.SearchTerm = strings.TrimSpace(req.SearchTerm)
	if req.SearchTerm == "" {
		return dto.ScrapeResponse{}, newValidationError("invalid scrape request", "searchTerm is required")
	}

	result, err := s.provider.Scrape(ctx, provider.ScrapeQuery{
		SearchTerm: req.SearchTerm,
		Industry:   strings.TrimSpace(req.Industry),
		Location:   strings.TrimSpace(req.Location),
	})
	if err != nil {
		s.logger.Error("scrape failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return dto.ScrapeResponse{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	pairs := min(len(result.Companies), len(result.Contacts))
	unpaired := len(result.Companies) + len(result.Contacts) - 2*pairs
	if unpaired > 0 {
		s.logger.Warn("scrape returned unpaired records",
			zap.Int("companies", len(result.Companies)),
			zap.Int("contacts", len(result.Contacts)),
			zap.Int("unpaired", unpaired),
		)
	}

	source := result.Source
	if source == "" {
		source = s.provider.Name()
	}
	tags := scrapeTags(req)

	resp := dto.ScrapeResponse{
		Summary: dto.ScrapeSummary{
			SearchTerm:     req.SearchTerm,
			Source:         source,
			CompaniesFound: len(result.Companies),
			ContactsFound:  len(result.Contacts),
			Unpaired:       unpaired,
		},
		Companies: make([]entity.Company, 0, pairs),
		Contacts:  make([]entity.Contact, 0, pairs),
		Leads:     make([]entity.Lead, 0, pairs),
	}

	totalScore := 0
	for i := 0; i < pairs; i++ {
		if err := ctx.Err(); err != nil {
			return dto.ScrapeResponse{}, err
		}

		company, reused := s.upsertScrapedCompany(ctx, result.Companies[i])
		if reused {
			resp.Summary.CompaniesReused++
		}

		contact := s.normalizer.SanitizeContact(ctx, result.Contacts[i])
		contact.CompanyID = company.ID
		if !contact.IsDecisionMaker && contact.Title != nil {
			contact.IsDecisionMaker = scoring.IsDecisionMakerTitle(*contact.Title)
		}
		contact = s.store.CreateContact(ctx, contact)

		view := entity.LeadView{
			Lead:    entity.Lead{CompanyID: company.ID, ContactID: contact.ID},
			Company: company,
			Contact: contact,
		}
		score := scoring.ComputeScore(view).Total
		lead := s.store.CreateLead(ctx, entity.Lead{
			CompanyID: company.ID,
			ContactID: contact.ID,
			Score:     score,
			Status:    entity.LeadStatusPending,
			Source:    &source,
			Tags:      tags,
		})

		totalScore += score
		resp.Companies = append(resp.Companies, company)
		resp.Contacts = append(resp.Contacts, contact)
		resp.Leads = append(resp.Leads, lead)
	}

	resp.Summary.LeadsCreated = len(resp.Leads)
	if len(resp.Leads) > 0 {
		resp.Summary.AverageLeadScore = totalScore / len(resp.Leads)
	}

	s.logger.Info("scrape completed",
		zap.String("search_term", req.SearchTerm),
		zap.String("source", source),
		zap.Int("leads_created", resp.Summary.LeadsCreated),
		zap.Int("companies_reused", resp.Summary.CompaniesReused),
	)
	return resp, nil
}

func (s *LeadsService) upsertScrapedCompany(ctx context.Context, scraped entity.Company) (entity.Company, bool) {
	scraped = s.normalizer.SanitizeCompany(ctx, scraped)
	scraped.Name = strings.TrimSpace(scraped.Name)
	if scraped.Website != nil {
		if existing, ok := s.store.CompanyByWebsite(ctx, *scraped.Website); ok {
			return existing, true
		}
	}
	return s.store.CreateCompany(ctx, scraped), false
}

// EnrichLead asks the data provider for extra detail about a lead, records the
// result in the enrichment history and marks the lead as enriched.
func (s *LeadsService) EnrichLead(ctx context.Context, id int64) (dto.EnrichResponse, error) {
	view, ok := s.store.LeadView(ctx, id)
	if !ok {
		return dto.EnrichResponse{}, ErrLeadNotFound
	}

	enrichment, err := s.provider.Enrich(ctx, view)
	if err != nil {
		s.logger.Error("enrichment failed", zap.Int64("lead_id", id), zap.String("provider", s.provider.Name()), zap.Error(err))
		return dto.EnrichResponse{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	fields := s.normalizer.SanitizeFields(ctx, enrichment.Fields)
	status := entity.LeadStatusEnriched
	if _, ok := s.store.UpdateLead(ctx, id, dto.LeadPatch{Status: &status}); !ok {
		return dto.EnrichResponse{}, ErrLeadNotFound
	}
	record := s.store.AddEnrichment(ctx, entity.EnrichmentData{
		LeadID:         id,
		DataSource:     enrichment.DataSource,
		EnrichedFields: fields,
		Confidence:     enrichment.Confidence,
	})

	return dto.EnrichResponse{
		LeadID:     id,
		Status:     status,
		Confidence: enrichment.Confidence,
		Enrichment: record,
	}, nil
}

func scrapeTags(req dto.ScrapeRequest) []string {
	tags := []string{strings.ToLower(req.SearchTerm)}
	if industry := strings.TrimSpace(req.Industry); industry != "" {
		tags = append(tags, strings.ToLower(industry))
	}
	return tags
}

func validScore(score int) bool {
	return score >= 0 && score <= 100
}

func joinStatuses() string {
	names := make([]string, 0, len(entity.LeadStatuses))
	for _, status := range entity.LeadStatuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
