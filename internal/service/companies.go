package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/repository"
	"github.com/octobees/leads-dashboard/internal/service/scoring"
)

const importSource = "csv_import"

// CompaniesService exposes read/write operations for companies and their contacts.
type CompaniesService struct {
	store      *repository.Store
	normalizer *ContactNormalizer
}

// UploadSummary reports how many rows were imported from a CSV file.
type UploadSummary struct {
	LeadsCreated    int `json:"leadsCreated"`
	CompaniesReused int `json:"companiesReused"`
	Skipped         int `json:"skipped"`
	Total           int `json:"total"`
}

// NewCompaniesService creates a new instance of CompaniesService.
func NewCompaniesService(store *repository.Store, normalizer *ContactNormalizer) *CompaniesService {
	if normalizer == nil {
		normalizer = NewContactNormalizer(defaultPhoneRegion)
	}
	return &CompaniesService{store: store, normalizer: normalizer}
}

// ListCompanies returns every company in creation order.
func (s *CompaniesService) ListCompanies(ctx context.Context) []entity.Company {
	return s.store.Companies(ctx)
}

// GetCompany returns one company.
func (s *CompaniesService) GetCompany(ctx context.Context, id int64) (entity.Company, error) {
	company, ok := s.store.GetCompany(ctx, id)
	if !ok {
		return entity.Company{}, ErrCompanyNotFound
	}
	return company, nil
}

// CreateCompany validates and stores a company.
func (s *CompaniesService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest) (entity.Company, error) {
	company := entity.Company{
		Name:        strings.TrimSpace(req.Name),
		Website:     req.Website,
		Industry:    normalizeString(deref(req.Industry)),
		Size:        strings.TrimSpace(req.Size),
		Revenue:     strings.TrimSpace(req.Revenue),
		Location:    normalizeString(deref(req.Location)),
		Description: normalizeString(deref(req.Description)),
		FoundedYear: req.FoundedYear,
		LinkedinURL: req.LinkedinURL,
		TwitterURL:  req.TwitterURL,
		FacebookURL: req.FacebookURL,
	}
	if company.Name == "" {
		return entity.Company{}, newValidationError("invalid company", "name is required")
	}
	if present(company.Website) {
		if _, ok := s.normalizer.Website(*company.Website); !ok {
			return entity.Company{}, newValidationError("invalid company", "website is not a valid URL")
		}
	}
	company = s.normalizer.SanitizeCompany(ctx, company)
	return s.store.CreateCompany(ctx, company), nil
}

// UpdateCompany applies a partial update to a company.
func (s *CompaniesService) UpdateCompany(ctx context.Context, id int64, patch dto.CompanyPatch) (entity.Company, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return entity.Company{}, newValidationError("invalid company update", "name cannot be empty")
	}
	if present(patch.Website) {
		website, ok := s.normalizer.Website(*patch.Website)
		if !ok {
			return entity.Company{}, newValidationError("invalid company update", "website is not a valid URL")
		}
		patch.Website = &website
	}
	company, ok := s.store.UpdateCompany(ctx, id, patch)
	if !ok {
		return entity.Company{}, ErrCompanyNotFound
	}
	return company, nil
}

// CompanyContacts lists the contacts of a company.
func (s *CompaniesService) CompanyContacts(ctx context.Context, companyID int64) ([]entity.Contact, error) {
	if _, ok := s.store.GetCompany(ctx, companyID); !ok {
		return nil, ErrCompanyNotFound
	}
	return s.store.ContactsByCompany(ctx, companyID), nil
}

// CreateContact validates and stores a contact for an existing company.
func (s *CompaniesService) CreateContact(ctx context.Context, req dto.CreateContactRequest) (entity.Contact, error) {
	if _, ok := s.store.GetCompany(ctx, req.CompanyID); !ok {
		return entity.Contact{}, newValidationError("invalid contact", "companyId does not reference an existing company")
	}
	contact, err := s.normalizer.CleanContact(ctx, entity.Contact{
		CompanyID:       req.CompanyID,
		Name:            req.Name,
		Title:           normalizeString(deref(req.Title)),
		Email:           req.Email,
		Phone:           req.Phone,
		LinkedinURL:     req.LinkedinURL,
		IsDecisionMaker: req.IsDecisionMaker,
	})
	if err != nil {
		return entity.Contact{}, err
	}
	if !contact.IsDecisionMaker && contact.Title != nil {
		contact.IsDecisionMaker = scoring.IsDecisionMakerTitle(*contact.Title)
	}
	return s.store.CreateContact(ctx, contact), nil
}

// UpdateContact applies a partial update to a contact, normalising changed channels.
func (s *CompaniesService) UpdateContact(ctx context.Context, id int64, patch dto.ContactPatch) (entity.Contact, error) {
	var details []string
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		details = append(details, "name cannot be empty")
	}
	if present(patch.Email) {
		if email, ok := s.normalizer.Email(ctx, *patch.Email); ok {
			patch.Email = &email
		} else {
			details = append(details, "email is invalid")
		}
	}
	if present(patch.Phone) {
		if phone, ok := s.normalizer.Phone(*patch.Phone); ok {
			patch.Phone = &phone
		} else {
			details = append(details, "phone is invalid")
		}
	}
	if present(patch.LinkedinURL) {
		if link, ok := s.normalizer.SocialURL(ctx, PlatformLinkedIn, *patch.LinkedinURL); ok {
			patch.LinkedinURL = &link
		} else {
			details = append(details, "linkedinUrl must be a linkedin.com URL")
		}
	}
	if len(details) > 0 {
		return entity.Contact{}, newValidationError("invalid contact update", details...)
	}

	contact, ok := s.store.UpdateContact(ctx, id, patch)
	if !ok {
		return entity.Contact{}, ErrContactNotFound
	}
	return contact, nil
}

// ImportCSV ingests leads from a CSV file using the export column layout.
// Only "Company Name" and "Contact Name" are required columns; rows missing
// either value are skipped. Companies are reused when their website matches.
// Every row is validated before anything is stored.
func (s *CompaniesService) ImportCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, newValidationError("csv file is empty")
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	index, err := buildHeaderIndex(header)
	if err != nil {
		return UploadSummary{}, err
	}

	var (
		summary UploadSummary
		rows    []importRow
		rowNum  = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return UploadSummary{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++
		summary.Total++

		get := func(column string) string {
			i, ok := index[strings.ToLower(column)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		parsed := importRow{
			company: entity.Company{
				Name:     get(columnCompanyName),
				Website:  normalizeString(get(columnWebsite)),
				Industry: normalizeString(get(columnIndustry)),
				Size:     get(columnCompanySize),
				Revenue:  get(columnRevenue),
				Location: normalizeString(get(columnLocation)),
			},
			contact: entity.Contact{
				Name:        get(columnContactName),
				Title:       normalizeString(get(columnTitle)),
				Email:       normalizeString(get(columnEmail)),
				Phone:       normalizeString(get(columnPhone)),
				LinkedinURL: normalizeString(get(columnLinkedIn)),
			},
			status: entity.LeadStatus(strings.ToLower(get(columnStatus))),
		}
		if parsed.company.Name == "" || parsed.contact.Name == "" {
			summary.Skipped++
			continue
		}
		if parsed.status != "" && !parsed.status.Valid() {
			return UploadSummary{}, newValidationError(fmt.Sprintf("invalid status on row %d", rowNum))
		}
		score, err := parseOptionalInt(get(columnScore))
		if err != nil || (score != nil && !validScore(*score)) {
			return UploadSummary{}, newValidationError(fmt.Sprintf("invalid score on row %d", rowNum))
		}
		parsed.score = score
		rows = append(rows, parsed)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if s.storeRow(ctx, row) {
			summary.CompaniesReused++
		}
		summary.LeadsCreated++
	}
	return summary, nil
}

// importRow is one validated CSV row waiting to be stored.
type importRow struct {
	company entity.Company
	contact entity.Contact
	status  entity.LeadStatus
	score   *int
}

// storeRow stores the company (or reuses one with the same website), the
// contact and the lead of row. It reports whether the company was reused.
func (s *CompaniesService) storeRow(ctx context.Context, row importRow) bool {
	company := s.normalizer.SanitizeCompany(ctx, row.company)
	reused := false
	if company.Website != nil {
		if existing, ok := s.store.CompanyByWebsite(ctx, *company.Website); ok {
			company, reused = existing, true
		}
	}
	if !reused {
		company = s.store.CreateCompany(ctx, company)
	}

	row.contact.CompanyID = company.ID
	contact := s.normalizer.SanitizeContact(ctx, row.contact)
	if contact.Title != nil {
		contact.IsDecisionMaker = scoring.IsDecisionMakerTitle(*contact.Title)
	}
	contact = s.store.CreateContact(ctx, contact)

	source := importSource
	lead := entity.Lead{CompanyID: company.ID, ContactID: contact.ID, Status: row.status, Source: &source}
	if row.score != nil {
		lead.Score = *row.score
	} else {
		lead.Score = scoring.ComputeScore(entity.LeadView{Company: company, Contact: contact}).Total
	}
	s.store.CreateLead(ctx, lead)
	return reused
}

var requiredCSVHeaders = []string{columnCompanyName, columnContactName}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[strings.ToLower(required)]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, newValidationError(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return index, nil
}

func parseOptionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
