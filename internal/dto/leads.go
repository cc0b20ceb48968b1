package dto

import "github.com/octobees/leads-dashboard/internal/entity"

// LeadFilter contains the optional predicates accepted by lead listing and export.
// Zero values mean "not filtered".
type LeadFilter struct {
	Search       string
	Industry     string
	CompanySizes []string
	MinRevenue   *int64
	MaxRevenue   *int64
	Location     string
	MinScore     *int
	Status       entity.LeadStatus
	Sources      []string
}

// CreateLeadRequest is the payload for POST /leads.
type CreateLeadRequest struct {
	CompanyID int64             `json:"companyId"`
	ContactID int64             `json:"contactId"`
	Score     *int              `json:"score,omitempty"`
	Status    entity.LeadStatus `json:"status,omitempty"`
	Source    *string           `json:"source,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
}

// LeadPatch carries a partial lead update.
type LeadPatch struct {
	Score  *int               `json:"score,omitempty"`
	Status *entity.LeadStatus `json:"status,omitempty"`
	Source *string            `json:"source,omitempty"`
	Tags   *[]string          `json:"tags,omitempty"`
	Notes  *string            `json:"notes,omitempty"`
}

// ScoreResponse is returned by POST /leads/:id/score.
type ScoreResponse struct {
	LeadID    int64          `json:"leadId"`
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown"`
}
