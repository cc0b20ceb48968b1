package entity

import "time"

// LeadStatus tracks where a lead is in the outreach lifecycle.
type LeadStatus string

const (
	LeadStatusPending   LeadStatus = "pending"
	LeadStatusEnriched  LeadStatus = "enriched"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
)

// LeadStatuses lists every status in lifecycle order.
var LeadStatuses = []LeadStatus{LeadStatusPending, LeadStatusEnriched, LeadStatusContacted, LeadStatusConverted}

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead pairs a company with one of its contacts. It references both but owns neither.
type Lead struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"companyId"`
	ContactID int64      `json:"contactId"`
	Score     int        `json:"score"`
	Status    LeadStatus `json:"status"`
	Source    *string    `json:"source,omitempty"`
	Tags      []string   `json:"tags"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LeadView is a lead joined with the company and contact it references.
type LeadView struct {
	Lead
	Company Company `json:"company"`
	Contact Contact `json:"contact"`
}
