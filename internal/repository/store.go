package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
)

// Collection names used for persisted records.
const (
	CollectionCompanies   = "companies"
	CollectionContacts    = "contacts"
	CollectionLeads       = "leads"
	CollectionEnrichments = "enrichments"
	CollectionCampaigns   = "campaigns"
)

// Record is one persisted entity in its JSON form.
type Record struct {
	Collection string
	ID         int64
	Payload    json.RawMessage
}

// RecordSink receives every mutation applied to the store.
type RecordSink interface {
	SaveRecord(ctx context.Context, collection string, id int64, payload any) error
	DeleteRecord(ctx context.Context, collection string, id int64) error
}

// RecordSource provides previously persisted records.
type RecordSource interface {
	LoadAll(ctx context.Context) ([]Record, error)
}

// Store keeps companies, contacts, leads, enrichment history and campaigns in memory.
// All operations are serialised by a single lock.
type Store struct {
	mu sync.RWMutex

	companies   map[int64]entity.Company
	contacts    map[int64]entity.Contact
	leads       map[int64]entity.Lead
	enrichments map[int64]entity.EnrichmentData
	campaigns   map[int64]entity.EmailCampaign
	lastID      map[string]int64

	sink   RecordSink
	logger *zap.Logger
	now    func() time.Time
}

// StoreOption configures optional Store dependencies.
type StoreOption func(*Store)

// WithRecordSink mirrors every mutation to sink.
func WithRecordSink(sink RecordSink) StoreOption {
	return func(s *Store) {
		s.sink = sink
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		companies:   map[int64]entity.Company{},
		contacts:    map[int64]entity.Contact{},
		leads:       map[int64]entity.Lead{},
		enrichments: map[int64]entity.EnrichmentData{},
		campaigns:   map[int64]entity.EmailCampaign{},
		lastID:      map[string]int64{},
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads persisted records into an empty store and advances the id counters
// past the highest restored id so identifiers are never reused.
func (s *Store) Restore(ctx context.Context, source RecordSource) error {
	records, err := source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		var decodeErr error
		switch rec.Collection {
		case CollectionCompanies:
			var v entity.Company
			if decodeErr = json.Unmarshal(rec.Payload, &v); decodeErr == nil {
				v.ID = rec.ID
				s.companies[v.ID] = v
			}
		case CollectionContacts:
			var v entity.Contact
			if decodeErr = json.Unmarshal(rec.Payload, &v); decodeErr == nil {
				v.ID = rec.ID
				s.contacts[v.ID] = v
			}
		case CollectionLeads:
			var v entity.Lead
			if decodeErr = json.Unmarshal(rec.Payload, &v); decodeErr == nil {
				v.ID = rec.ID
				v.Tags = normalizeTags(v.Tags)
				s.leads[v.ID] = v
			}
		case CollectionEnrichments:
			var v entity.EnrichmentData
			if decodeErr = json.Unmarshal(rec.Payload, &v); decodeErr == nil {
				v.ID = rec.ID
				s.enrichments[v.ID] = v
			}
		case CollectionCampaigns:
			var v entity.EmailCampaign
			if decodeErr = json.Unmarshal(rec.Payload, &v); decodeErr == nil {
				v.ID = rec.ID
				s.campaigns[v.ID] = v
			}
		default:
			s.logger.Warn("skipping record from unknown collection", zap.String("collection", rec.Collection), zap.Int64("id", rec.ID))
			continue
		}
		if decodeErr != nil {
			return fmt.Errorf("decode %s/%d: %w", rec.Collection, rec.ID, decodeErr)
		}
		if rec.ID > s.lastID[rec.Collection] {
			s.lastID[rec.Collection] = rec.ID
		}
	}
	return nil
}

func (s *Store) nextID(collection string) int64 {
	s.lastID[collection]++
	return s.lastID[collection]
}

func (s *Store) persist(ctx context.Context, collection string, id int64, payload any) {
	if s.sink == nil {
		return
	}
	if err := s.sink.SaveRecord(ctx, collection, id, payload); err != nil {
		s.logger.Error("persist record failed", zap.String("collection", collection), zap.Int64("id", id), zap.Error(err))
	}
}

func (s *Store) forget(ctx context.Context, collection string, id int64) {
	if s.sink == nil {
		return
	}
	if err := s.sink.DeleteRecord(ctx, collection, id); err != nil {
		s.logger.Error("delete record failed", zap.String("collection", collection), zap.Int64("id", id), zap.Error(err))
	}
}

// ---- companies ----

// GetCompany returns the company with the given id.
func (s *Store) GetCompany(_ context.Context, id int64) (entity.Company, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	return c, ok
}

// Companies lists every company in creation order.
func (s *Store) Companies(_ context.Context) []entity.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.companies, func(c entity.Company) int64 { return c.ID })
}

// CompanyByWebsite finds the first company whose website matches, ignoring scheme,
// a leading "www.", a trailing slash and case.
func (s *Store) CompanyByWebsite(_ context.Context, website string) (entity.Company, bool) {
	key := websiteKey(website)
	if key == "" {
		return entity.Company{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range sortedValues(s.companies, func(c entity.Company) int64 { return c.ID }) {
		if c.Website != nil && websiteKey(*c.Website) == key {
			return c, true
		}
	}
	return entity.Company{}, false
}

// CreateCompany assigns the next company id and stores the record.
func (s *Store) CreateCompany(ctx context.Context, input entity.Company) entity.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	input.ID = s.nextID(CollectionCompanies)
	input.CreatedAt = s.now()
	input.UpdatedAt = nil
	s.companies[input.ID] = input
	s.persist(ctx, CollectionCompanies, input.ID, input)
	return input
}

// UpdateCompany merges patch into the stored company.
func (s *Store) UpdateCompany(ctx context.Context, id int64, patch dto.CompanyPatch) (entity.Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return entity.Company{}, false
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Size != nil {
		c.Size = *patch.Size
	}
	if patch.Revenue != nil {
		c.Revenue = *patch.Revenue
	}
	mergeString(&c.Website, patch.Website)
	mergeString(&c.Industry, patch.Industry)
	mergeString(&c.Location, patch.Location)
	mergeString(&c.Description, patch.Description)
	mergeString(&c.LinkedinURL, patch.LinkedinURL)
	mergeString(&c.TwitterURL, patch.TwitterURL)
	mergeString(&c.FacebookURL, patch.FacebookURL)
	if patch.FoundedYear != nil {
		year := *patch.FoundedYear
		c.FoundedYear = &year
	}
	now := s.now()
	c.UpdatedAt = &now
	s.companies[id] = c
	s.persist(ctx, CollectionCompanies, id, c)
	return c, true
}

// ---- contacts ----

// GetContact returns the contact with the given id.
func (s *Store) GetContact(_ context.Context, id int64) (entity.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	return c, ok
}

// Contacts lists every contact in creation order.
func (s *Store) Contacts(_ context.Context) []entity.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.contacts, func(c entity.Contact) int64 { return c.ID })
}

// ContactsByCompany lists the contacts belonging to companyID.
func (s *Store) ContactsByCompany(_ context.Context, companyID int64) []entity.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]entity.Contact, 0)
	for _, c := range sortedValues(s.contacts, func(c entity.Contact) int64 { return c.ID }) {
		if c.CompanyID == companyID {
			result = append(result, c)
		}
	}
	return result
}

// CreateContact assigns the next contact id and stores the record.
func (s *Store) CreateContact(ctx context.Context, input entity.Contact) entity.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	input.ID = s.nextID(CollectionContacts)
	input.CreatedAt = s.now()
	s.contacts[input.ID] = input
	s.persist(ctx, CollectionContacts, input.ID, input)
	return input
}

// UpdateContact merges patch into the stored contact.
func (s *Store) UpdateContact(ctx context.Context, id int64, patch dto.ContactPatch) (entity.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return entity.Contact{}, false
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	mergeString(&c.Title, patch.Title)
	mergeString(&c.Email, patch.Email)
	mergeString(&c.Phone, patch.Phone)
	mergeString(&c.LinkedinURL, patch.LinkedinURL)
	if patch.IsDecisionMaker != nil {
		c.IsDecisionMaker = *patch.IsDecisionMaker
	}
	s.contacts[id] = c
	s.persist(ctx, CollectionContacts, id, c)
	return c, true
}

// ---- leads ----

// GetLead returns the lead with the given id.
func (s *Store) GetLead(_ context.Context, id int64) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.Lead{}, false
	}
	return cloneLead(l), true
}

// Leads lists every lead in creation order.
func (s *Store) Leads(_ context.Context) []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leads := sortedValues(s.leads, func(l entity.Lead) int64 { return l.ID })
	for i := range leads {
		leads[i] = cloneLead(leads[i])
	}
	return leads
}

// CreateLead assigns the next lead id, stamps createdAt/updatedAt and stores the record.
// An empty status defaults to pending.
func (s *Store) CreateLead(ctx context.Context, input entity.Lead) entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	input.ID = s.nextID(CollectionLeads)
	input.CreatedAt = now
	input.UpdatedAt = now
	if input.Status == "" {
		input.Status = entity.LeadStatusPending
	}
	input.Tags = normalizeTags(input.Tags)
	s.leads[input.ID] = input
	s.persist(ctx, CollectionLeads, input.ID, input)
	return cloneLead(input)
}

// UpdateLead merges patch into the stored lead and refreshes updatedAt.
func (s *Store) UpdateLead(ctx context.Context, id int64, patch dto.LeadPatch) (entity.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.Lead{}, false
	}
	if patch.Score != nil {
		l.Score = *patch.Score
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	mergeString(&l.Source, patch.Source)
	mergeString(&l.Notes, patch.Notes)
	if patch.Tags != nil {
		l.Tags = normalizeTags(*patch.Tags)
	}
	l.UpdatedAt = s.now()
	s.leads[id] = l
	s.persist(ctx, CollectionLeads, id, l)
	return cloneLead(l), true
}

// DeleteLead removes the lead. It reports false when the id does not exist.
func (s *Store) DeleteLead(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return false
	}
	delete(s.leads, id)
	s.forget(ctx, CollectionLeads, id)
	return true
}

// LeadView returns the lead joined with its company and contact. A lead whose
// references cannot be resolved has no view.
func (s *Store) LeadView(_ context.Context, id int64) (entity.LeadView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return entity.LeadView{}, false
	}
	return s.join(l)
}

// LeadViews returns every resolvable lead view in creation order.
func (s *Store) LeadViews(_ context.Context) []entity.LeadView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]entity.LeadView, 0, len(s.leads))
	for _, l := range sortedValues(s.leads, func(l entity.Lead) int64 { return l.ID }) {
		if view, ok := s.join(l); ok {
			views = append(views, view)
		}
	}
	return views
}

func (s *Store) join(l entity.Lead) (entity.LeadView, bool) {
	company, ok := s.companies[l.CompanyID]
	if !ok {
		return entity.LeadView{}, false
	}
	contact, ok := s.contacts[l.ContactID]
	if !ok {
		return entity.LeadView{}, false
	}
	return entity.LeadView{Lead: cloneLead(l), Company: company, Contact: contact}, true
}

// ---- enrichment ----

// AddEnrichment appends an enrichment record.
func (s *Store) AddEnrichment(ctx context.Context, input entity.EnrichmentData) entity.EnrichmentData {
	s.mu.Lock()
	defer s.mu.Unlock()
	input.ID = s.nextID(CollectionEnrichments)
	if input.EnrichedAt.IsZero() {
		input.EnrichedAt = s.now()
	}
	if input.EnrichedFields == nil {
		input.EnrichedFields = entity.Fields{}
	}
	s.enrichments[input.ID] = input
	s.persist(ctx, CollectionEnrichments, input.ID, input)
	return input
}

// EnrichmentsByLead lists the enrichment history of a lead, oldest first.
func (s *Store) EnrichmentsByLead(_ context.Context, leadID int64) []entity.EnrichmentData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]entity.EnrichmentData, 0)
	for _, e := range sortedValues(s.enrichments, func(e entity.EnrichmentData) int64 { return e.ID }) {
		if e.LeadID == leadID {
			result = append(result, e)
		}
	}
	return result
}

// Enrichments lists every enrichment record.
func (s *Store) Enrichments(_ context.Context) []entity.EnrichmentData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.enrichments, func(e entity.EnrichmentData) int64 { return e.ID })
}

// ---- campaigns ----

// GetCampaign returns the campaign with the given id.
func (s *Store) GetCampaign(_ context.Context, id int64) (entity.EmailCampaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	return c, ok
}

// Campaigns lists every campaign in creation order.
func (s *Store) Campaigns(_ context.Context) []entity.EmailCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.campaigns, func(c entity.EmailCampaign) int64 { return c.ID })
}

// CampaignsByLead lists the campaigns addressed to a lead.
func (s *Store) CampaignsByLead(_ context.Context, leadID int64) []entity.EmailCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]entity.EmailCampaign, 0)
	for _, c := range sortedValues(s.campaigns, func(c entity.EmailCampaign) int64 { return c.ID }) {
		if c.LeadID == leadID {
			result = append(result, c)
		}
	}
	return result
}

// CreateCampaign assigns the next campaign id. An empty status defaults to draft.
func (s *Store) CreateCampaign(ctx context.Context, input entity.EmailCampaign) entity.EmailCampaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	input.ID = s.nextID(CollectionCampaigns)
	input.CreatedAt = s.now()
	if input.Status == "" {
		input.Status = entity.CampaignStatusDraft
	}
	s.campaigns[input.ID] = input
	s.persist(ctx, CollectionCampaigns, input.ID, input)
	return input
}

// MarkCampaignSent moves a draft campaign to sent and stamps sentAt under a
// single lock. It reports whether the campaign exists and whether this call
// performed the transition; a campaign that is no longer a draft is returned
// unchanged.
func (s *Store) MarkCampaignSent(ctx context.Context, id int64, sentAt time.Time) (entity.EmailCampaign, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return entity.EmailCampaign{}, false, false
	}
	if c.Status != entity.CampaignStatusDraft {
		return c, true, false
	}
	c.Status = entity.CampaignStatusSent
	c.SentAt = &sentAt
	s.campaigns[id] = c
	s.persist(ctx, CollectionCampaigns, id, c)
	return c, true, true
}

// ---- helpers ----

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	values := make([]T, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return id(values[i]) < id(values[j]) })
	return values
}

func mergeString(dst **string, value *string) {
	if value == nil {
		return
	}
	v := *value
	*dst = &v
}

func cloneLead(l entity.Lead) entity.Lead {
	l.Tags = append([]string{}, l.Tags...)
	return l
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

func websiteKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimPrefix(key, "www.")
	return strings.TrimRight(key, "/")
}
