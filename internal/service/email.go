package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/repository"
)

const defaultSenderName = "The Team"

// EmailTemplate is a reusable outreach email. An empty Industry marks a generic template.
type EmailTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// GeneratedEmail is a template rendered for one lead.
type GeneratedEmail struct {
	Subject  string        `json:"subject"`
	Content  string        `json:"content"`
	Template EmailTemplate `json:"template"`
}

// Rewriter rewrites an email body following free-form instructions.
type Rewriter interface {
	Rewrite(ctx context.Context, subject, content, instructions string) (string, error)
}

// DefaultTemplates is the built-in template catalog.
var DefaultTemplates = []EmailTemplate{
	{
		ID:      "intro-generic",
		Name:    "Introduction",
		Subject: "Quick introduction for {{companyName}}",
		Body: "Hi {{firstName}},\n\n" +
			"I came across {{companyName}} and was impressed by what your team is building in {{location}}. " +
			"We help {{industry}} companies turn prospect data into booked meetings.\n\n" +
			"Would you be open to a 15 minute call next week?\n\n" +
			"Best,\n{{senderName}}",
	},
	{
		ID:      "follow-up-generic",
		Name:    "Follow-up",
		Subject: "Following up, {{firstName}}",
		Body: "Hi {{firstName}},\n\n" +
			"I wanted to follow up on my previous note about {{companyName}}. " +
			"As {{title}}, you are probably juggling a lot, so I will keep this short: " +
			"is improving pipeline quality a priority this quarter?\n\n" +
			"Thanks,\n{{senderName}}",
	},
	{
		ID:       "tech-intro",
		Name:     "Technology introduction",
		Industry: "Technology",
		Subject:  "Scaling {{companyName}}'s engineering pipeline",
		Body: "Hi {{firstName}},\n\n" +
			"Teams like {{companyName}} often tell us their growth is limited by how fast they can find the right partners. " +
			"We surface decision-makers at fast-growing tech companies and score them automatically.\n\n" +
			"Worth a quick chat?\n\n" +
			"Cheers,\n{{senderName}}",
	},
	{
		ID:       "healthcare-intro",
		Name:     "Healthcare introduction",
		Industry: "Healthcare",
		Subject:  "Helping {{companyName}} reach care providers",
		Body: "Hi {{firstName}},\n\n" +
			"Healthcare organisations such as {{companyName}} need outreach that respects busy clinical schedules. " +
			"Our lead scoring keeps your team focused on the providers most likely to engage.\n\n" +
			"Could we find 15 minutes to talk?\n\n" +
			"Kind regards,\n{{senderName}}",
	},
	{
		ID:       "finance-intro",
		Name:     "Finance introduction",
		Industry: "Finance",
		Subject:  "Pipeline insights for {{companyName}}",
		Body: "Hi {{firstName}},\n\n" +
			"Finance teams at companies like {{companyName}} use our dashboard to prioritise prospects by revenue and decision authority.\n\n" +
			"Happy to share a short walkthrough if useful.\n\n" +
			"Best regards,\n{{senderName}}",
	},
}

// EmailService renders outreach emails and tracks campaigns.
type EmailService struct {
	store      *repository.Store
	templates  []EmailTemplate
	rewriter   Rewriter
	senderName string
	logger     *zap.Logger
	now        func() time.Time
}

// EmailOption configures optional EmailService dependencies.
type EmailOption func(*EmailService)

// WithRewriter enables rewriting generated emails with custom prompts.
func WithRewriter(rewriter Rewriter) EmailOption {
	return func(s *EmailService) {
		s.rewriter = rewriter
	}
}

// WithTemplates replaces the built-in catalog.
func WithTemplates(templates []EmailTemplate) EmailOption {
	return func(s *EmailService) {
		s.templates = templates
	}
}

// WithSenderName sets the signature used by templates.
func WithSenderName(name string) EmailOption {
	return func(s *EmailService) {
		if strings.TrimSpace(name) != "" {
			s.senderName = strings.TrimSpace(name)
		}
	}
}

// WithEmailLogger overrides the no-op logger.
func WithEmailLogger(logger *zap.Logger) EmailOption {
	return func(s *EmailService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEmailClock overrides the clock used for sentAt.
func WithEmailClock(now func() time.Time) EmailOption {
	return func(s *EmailService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewEmailService builds an email service over store.
func NewEmailService(store *repository.Store, opts ...EmailOption) *EmailService {
	s := &EmailService{
		store:      store,
		templates:  DefaultTemplates,
		senderName: defaultSenderName,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTemplates returns the templates for industry plus the generic ones.
// An empty industry returns the whole catalog.
func (s *EmailService) ListTemplates(industry string) []EmailTemplate {
	industry = strings.TrimSpace(industry)
	result := make([]EmailTemplate, 0, len(s.templates))
	for _, tpl := range s.templates {
		if industry == "" || tpl.Industry == "" || strings.EqualFold(tpl.Industry, industry) {
			result = append(result, tpl)
		}
	}
	return result
}

func (s *EmailService) template(id string) (EmailTemplate, bool) {
	for _, tpl := range s.templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return EmailTemplate{}, false
}

// Generate renders templateID for a lead. A custom prompt is applied by the
// rewriter when one is configured, otherwise it is appended as a personal note.
func (s *EmailService) Generate(ctx context.Context, leadID int64, req dto.GenerateEmailRequest) (GeneratedEmail, error) {
	templateID := strings.TrimSpace(req.TemplateID)
	if templateID == "" {
		return GeneratedEmail{}, newValidationError("invalid email request", "templateId is required")
	}
	view, ok := s.store.LeadView(ctx, leadID)
	if !ok {
		return GeneratedEmail{}, ErrLeadNotFound
	}
	tpl, ok := s.template(templateID)
	if !ok {
		return GeneratedEmail{}, ErrTemplateNotFound
	}

	replacer := s.placeholders(view)
	email := GeneratedEmail{
		Subject:  replacer.Replace(tpl.Subject),
		Content:  replacer.Replace(tpl.Body),
		Template: tpl,
	}

	prompt := strings.TrimSpace(req.CustomPrompt)
	if prompt == "" {
		return email, nil
	}
	if s.rewriter != nil {
		rewritten, err := s.rewriter.Rewrite(ctx, email.Subject, email.Content, prompt)
		if err == nil {
			email.Content = rewritten
			return email, nil
		}
		s.logger.Warn("email rewrite failed, appending prompt as note", zap.Int64("lead_id", leadID), zap.Error(err))
	}
	email.Content += "\n\nP.S. " + prompt
	return email, nil
}

func (s *EmailService) placeholders(view entity.LeadView) *strings.Replacer {
	firstName := strings.TrimSpace(view.Contact.Name)
	if fields := strings.Fields(firstName); len(fields) > 0 {
		firstName = fields[0]
	}
	return strings.NewReplacer(
		"{{contactName}}", fallback(view.Contact.Name, "there"),
		"{{firstName}}", fallback(firstName, "there"),
		"{{title}}", fallback(deref(view.Contact.Title), "a leader on your team"),
		"{{companyName}}", fallback(view.Company.Name, "your company"),
		"{{industry}}", fallback(deref(view.Company.Industry), "growing"),
		"{{location}}", fallback(deref(view.Company.Location), "your market"),
		"{{senderName}}", s.senderName,
	)
}

// CreateCampaign stores a draft campaign. When subject and content are both
// empty they are rendered from the template.
func (s *EmailService) CreateCampaign(ctx context.Context, req dto.CreateCampaignRequest) (entity.EmailCampaign, error) {
	if _, ok := s.store.GetLead(ctx, req.LeadID); !ok {
		return entity.EmailCampaign{}, newValidationError("invalid campaign", "leadId does not reference an existing lead")
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.TemplateID = strings.TrimSpace(req.TemplateID)

	if req.Subject == "" && strings.TrimSpace(req.Content) == "" && req.TemplateID != "" {
		generated, err := s.Generate(ctx, req.LeadID, dto.GenerateEmailRequest{TemplateID: req.TemplateID})
		if err != nil {
			return entity.EmailCampaign{}, err
		}
		req.Subject, req.Content = generated.Subject, generated.Content
	}

	var details []string
	if req.Subject == "" {
		details = append(details, "subject is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		details = append(details, "content is required")
	}
	if req.TemplateID != "" {
		if _, ok := s.template(req.TemplateID); !ok {
			details = append(details, "templateId does not reference a known template")
		}
	}
	if len(details) > 0 {
		return entity.EmailCampaign{}, newValidationError("invalid campaign", details...)
	}

	return s.store.CreateCampaign(ctx, entity.EmailCampaign{
		LeadID:     req.LeadID,
		Subject:    req.Subject,
		Content:    req.Content,
		TemplateID: req.TemplateID,
		Status:     entity.CampaignStatusDraft,
	}), nil
}

// SendCampaign marks a draft campaign as sent and moves its lead to contacted.
// Converted leads keep their status.
func (s *EmailService) SendCampaign(ctx context.Context, id int64) (entity.EmailCampaign, error) {
	campaign, found, sent := s.store.MarkCampaignSent(ctx, id, s.now())
	if !found {
		return entity.EmailCampaign{}, ErrCampaignNotFound
	}
	if !sent {
		return entity.EmailCampaign{}, newValidationError("invalid campaign state", "campaign has already been sent")
	}

	if lead, ok := s.store.GetLead(ctx, campaign.LeadID); ok && lead.Status != entity.LeadStatusConverted {
		contacted := entity.LeadStatusContacted
		s.store.UpdateLead(ctx, lead.ID, dto.LeadPatch{Status: &contacted})
	}
	s.logger.Info("campaign sent", zap.Int64("campaign_id", id), zap.Int64("lead_id", campaign.LeadID))
	return campaign, nil
}

// ListCampaigns returns the campaigns addressed to a lead.
func (s *EmailService) ListCampaigns(ctx context.Context, leadID int64) ([]entity.EmailCampaign, error) {
	if _, ok := s.store.GetLead(ctx, leadID); !ok {
		return nil, ErrLeadNotFound
	}
	return s.store.CampaignsByLead(ctx, leadID), nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
