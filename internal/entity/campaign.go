package entity

import "time"

// CampaignStatus is the delivery state of an outreach email.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusDelivered CampaignStatus = "delivered"
	CampaignStatusOpened    CampaignStatus = "opened"
	CampaignStatusReplied   CampaignStatus = "replied"
)

// EmailCampaign is an outreach email addressed to a lead.
type EmailCampaign struct {
	ID         int64          `json:"id"`
	LeadID     int64          `json:"leadId"`
	Subject    string         `json:"subject"`
	Content    string         `json:"content"`
	TemplateID string         `json:"templateId"`
	SentAt     *time.Time     `json:"sentAt,omitempty"`
	Status     CampaignStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
}
