package dto

// GenerateEmailRequest is the payload for POST /leads/:id/email/generate.
type GenerateEmailRequest struct {
	TemplateID   string `json:"templateId"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// CreateCampaignRequest is the payload for POST /email/campaigns.
type CreateCampaignRequest struct {
	LeadID     int64  `json:"leadId"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	TemplateID string `json:"templateId"`
}
