package dto

import "github.com/octobees/leads-dashboard/internal/entity"

// ScrapeRequest is the payload used by the scraping endpoint.
type ScrapeRequest struct {
	SearchTerm string `json:"searchTerm"`
	Industry   string `json:"industry,omitempty"`
	Location   string `json:"location,omitempty"`
}

// ScrapeSummary reports what a scrape run created.
type ScrapeSummary struct {
	SearchTerm       string `json:"searchTerm"`
	Source           string `json:"source"`
	CompaniesFound   int    `json:"companiesFound"`
	ContactsFound    int    `json:"contactsFound"`
	LeadsCreated     int    `json:"leadsCreated"`
	CompaniesReused  int    `json:"companiesReused"`
	Unpaired         int    `json:"unpaired"`
	AverageLeadScore int    `json:"averageLeadScore"`
}

// ScrapeResponse is returned by POST /leads/scrape.
type ScrapeResponse struct {
	Summary   ScrapeSummary    `json:"summary"`
	Companies []entity.Company `json:"companies"`
	Contacts  []entity.Contact `json:"contacts"`
	Leads     []entity.Lead    `json:"leads"`
}
