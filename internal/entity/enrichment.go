package entity

import "time"

// Fields is an open key/value payload. Known keys written by enrichment:
//
//	email        string
//	phone        string (E.164 when it could be normalised)
//	linkedinUrl  string
//	twitterUrl   string
//	companyData  map with employeeCount (int), funding (map: stage, amount, lastRound),
//	             technologies ([]string) and website (string)
type Fields map[string]any

// Known enrichment keys.
const (
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldLinkedinURL  = "linkedinUrl"
	FieldTwitterURL   = "twitterUrl"
	FieldCompanyData  = "companyData"
	FieldEmployees    = "employeeCount"
	FieldFunding      = "funding"
	FieldTechnologies = "technologies"
	FieldWebsite      = "website"
)

// String returns the value stored under key when it is a string.
func (f Fields) String(key string) string {
	if f == nil {
		return ""
	}
	value, _ := f[key].(string)
	return value
}

// EnrichmentData records one enrichment run for a lead. Records are append-only.
type EnrichmentData struct {
	ID             int64     `json:"id"`
	LeadID         int64     `json:"leadId"`
	DataSource     string    `json:"dataSource"`
	EnrichedFields Fields    `json:"enrichedFields"`
	Confidence     float64   `json:"confidence"`
	EnrichedAt     time.Time `json:"enrichedAt"`
}
