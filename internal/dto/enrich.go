package dto

import "github.com/octobees/leads-dashboard/internal/entity"

// EnrichResponse is returned by POST /leads/:id/enrich.
type EnrichResponse struct {
	LeadID     int64                 `json:"leadId"`
	Status     entity.LeadStatus     `json:"status"`
	Confidence float64               `json:"confidence"`
	Enrichment entity.EnrichmentData `json:"enrichment"`
}
