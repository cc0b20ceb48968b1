package provider

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/service/scoring"
)

const (
	MockName           = "mock"
	mockScrapeSource   = "mock_scraper"
	mockEnrichSource   = "mock_enrichment"
	minScrapeResults   = 3
	maxScrapeResults   = 8
	minConfidence      = 0.7
	confidenceInterval = 0.3
	maxMockEmployees   = 1_000_000
)

var (
	mockIndustries = []string{"Technology", "Healthcare", "Finance", "Retail", "Manufacturing", "Education"}
	mockLocations  = []string{"San Francisco, CA", "New York, NY", "Austin, TX", "Boston, MA", "Seattle, WA", "Chicago, IL"}
	mockSizes      = []string{"1-10", "11-50", "51-200", "200+"}
	mockRevenues   = []string{"<$1M", "$1M-$10M", "$10M-$50M", "$50M-$100M", "$100M+"}
	mockPrefixes   = []string{"Nimbus", "Vertex", "Bright", "Summit", "Harbor", "Quantum", "Blue Oak", "Northwind"}
	mockSuffixes   = []string{"Labs", "Systems", "Group", "Partners", "Solutions", "Works"}
	mockFirstNames = []string{"Jane", "Carlos", "Priya", "Tom", "Aisha", "Wei", "Lena", "Marcus"}
	mockLastNames  = []string{"Doe", "Garcia", "Patel", "Nguyen", "Okafor", "Chen", "Novak", "Reed"}
	mockTitles     = []string{"CEO", "CTO", "VP of Sales", "Director of Marketing", "Founder", "Operations Manager", "Account Executive", "Engineer"}
	mockAreaCodes  = []string{"415", "212", "312", "617", "206", "512"}
	mockStages     = []string{"Seed", "Series A", "Series B", "Series C", "Bootstrapped"}

	industryTechnologies = map[string][]string{
		"Technology":    {"Kubernetes", "Go", "React", "PostgreSQL", "AWS"},
		"Healthcare":    {"Epic", "HL7 FHIR", "Salesforce Health Cloud", "Azure"},
		"Finance":       {"Snowflake", "Plaid", "Stripe", "Java"},
		"Retail":        {"Shopify", "Magento", "Google Analytics", "Klaviyo"},
		"Manufacturing": {"SAP", "Siemens MindSphere", "AutoCAD"},
	}
	defaultTechnologies = []string{"Google Workspace", "Slack", "HubSpot"}
)

// MockProvider fabricates plausible company, contact and enrichment data.
// It is safe for concurrent use.
type MockProvider struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
	now     func() time.Time
}

// MockOption configures a MockProvider.
type MockOption func(*MockProvider)

// WithSeed makes the generated data reproducible.
func WithSeed(seed int64) MockOption {
	return func(p *MockProvider) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLatency simulates a slow upstream by waiting before each call.
func WithLatency(latency time.Duration) MockOption {
	return func(p *MockProvider) {
		p.latency = latency
	}
}

// WithMockClock overrides the clock used for funding dates.
func WithMockClock(now func() time.Time) MockOption {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewMockProvider builds a mock provider seeded from the current time unless WithSeed is given.
func NewMockProvider(opts ...MockOption) *MockProvider {
	p := &MockProvider{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements DataProvider.
func (p *MockProvider) Name() string { return MockName }

// Scrape generates between three and eight company/contact pairs for query.
func (p *MockProvider) Scrape(ctx context.Context, query ScrapeQuery) (ScrapeResult, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return ScrapeResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	count := minScrapeResults + p.rng.Intn(maxScrapeResults-minScrapeResults+1)
	result := ScrapeResult{
		Source:    mockScrapeSource,
		Companies: make([]entity.Company, 0, count),
		Contacts:  make([]entity.Contact, 0, count),
	}
	for i := 0; i < count; i++ {
		company := p.fakeCompany(query)
		result.Companies = append(result.Companies, company)
		result.Contacts = append(result.Contacts, p.fakeContact(company))
	}
	return result, nil
}

// Enrich fabricates contact channels and company data for view.
func (p *MockProvider) Enrich(ctx context.Context, view entity.LeadView) (Enrichment, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return Enrichment{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	domain := companyDomain(view.Company)
	first, last := splitName(view.Contact.Name)
	handle := slug(first + " " + last)
	if handle == "" {
		handle = "contact"
	}

	companyData := map[string]any{
		entity.FieldEmployees: p.employeeCount(view.Company.Size),
		entity.FieldFunding: map[string]any{
			"stage":     p.pick(mockStages),
			"amount":    fmt.Sprintf("$%dM", 1+p.rng.Intn(80)),
			"lastRound": p.now().AddDate(0, -p.rng.Intn(24), -p.rng.Intn(28)).Format("2006-01-02"),
		},
		entity.FieldTechnologies: technologiesFor(view.Company.Industry),
		entity.FieldWebsite:      "https://" + domain,
	}

	fields := entity.Fields{
		entity.FieldEmail:       emailAddress(first, last, domain),
		entity.FieldPhone:       p.phone(),
		entity.FieldLinkedinURL: fmt.Sprintf("https://linkedin.com/in/%s-%d", handle, 100+p.rng.Intn(900)),
		entity.FieldTwitterURL:  "https://twitter.com/" + strings.ReplaceAll(slug(view.Company.Name), "-", ""),
		entity.FieldCompanyData: companyData,
	}

	return Enrichment{
		DataSource: mockEnrichSource,
		Fields:     fields,
		Confidence: minConfidence + p.rng.Float64()*confidenceInterval,
	}, nil
}

func (p *MockProvider) fakeCompany(query ScrapeQuery) entity.Company {
	industry := strings.TrimSpace(query.Industry)
	if industry == "" {
		industry = p.pick(mockIndustries)
	}
	location := strings.TrimSpace(query.Location)
	if location == "" {
		location = p.pick(mockLocations)
	}
	name := p.pick(mockPrefixes) + " " + p.pick(mockSuffixes)
	if term := strings.TrimSpace(query.SearchTerm); term != "" && p.rng.Intn(2) == 0 {
		name = p.pick(mockPrefixes) + " " + titleWord(term)
	}
	website := fmt.Sprintf("https://www.%s.com", slug(name))
	description := fmt.Sprintf("%s company based in %s.", industry, location)
	founded := 1985 + p.rng.Intn(38)
	linkedin := "https://linkedin.com/company/" + slug(name)

	return entity.Company{
		Name:        name,
		Website:     &website,
		Industry:    &industry,
		Size:        p.pick(mockSizes),
		Revenue:     p.pick(mockRevenues),
		Location:    &location,
		Description: &description,
		FoundedYear: &founded,
		LinkedinURL: &linkedin,
	}
}

func (p *MockProvider) fakeContact(company entity.Company) entity.Contact {
	first, last := p.pick(mockFirstNames), p.pick(mockLastNames)
	title := p.pick(mockTitles)
	email := emailAddress(first, last, companyDomain(company))
	phone := p.phone()
	linkedin := fmt.Sprintf("https://linkedin.com/in/%s-%d", slug(first+" "+last), 100+p.rng.Intn(900))

	return entity.Contact{
		Name:            first + " " + last,
		Title:           &title,
		Email:           &email,
		Phone:           &phone,
		LinkedinURL:     &linkedin,
		IsDecisionMaker: scoring.IsDecisionMakerTitle(title),
	}
}

func (p *MockProvider) phone() string {
	return fmt.Sprintf("+1 (%s) 555-%04d", p.pick(mockAreaCodes), 1000+p.rng.Intn(9000))
}

// employeeCount draws a head count inside the size bucket. Buckets that do not
// describe a sane range fall back to 1-50.
func (p *MockProvider) employeeCount(bucket string) int {
	lo, hi := 1, 50
	switch {
	case strings.HasSuffix(bucket, "+"):
		if n, err := strconv.Atoi(strings.TrimSuffix(bucket, "+")); err == nil && n > 0 && n <= maxMockEmployees {
			lo, hi = n, n*5
		}
	case strings.Contains(bucket, "-"):
		from, to, _ := strings.Cut(bucket, "-")
		a, errA := strconv.Atoi(strings.TrimSpace(from))
		b, errB := strconv.Atoi(strings.TrimSpace(to))
		if errA == nil && errB == nil && a >= 0 && a <= b && b <= maxMockEmployees {
			lo, hi = a, b
		}
	}
	return lo + p.rng.Intn(hi-lo+1)
}

func (p *MockProvider) pick(values []string) string {
	return values[p.rng.Intn(len(values))]
}

func technologiesFor(industry *string) []string {
	if industry != nil {
		if techs, ok := industryTechnologies[*industry]; ok {
			return append([]string(nil), techs...)
		}
	}
	return append([]string(nil), defaultTechnologies...)
}

func companyDomain(company entity.Company) string {
	if company.Website != nil {
		raw := strings.TrimSpace(*company.Website)
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}
	if name := slug(company.Name); name != "" {
		return name + ".com"
	}
	return "example.com"
}

func emailAddress(first, last, domain string) string {
	local := slug(first)
	if l := slug(last); l != "" {
		local += "." + l
	}
	if local == "" {
		local = "hello"
	}
	return strings.ReplaceAll(local, "-", "") + "@" + domain
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

func slug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func titleWord(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		lower := strings.ToLower(w)
		r, size := utf8.DecodeRuneInString(lower)
		words[i] = string(unicode.ToUpper(r)) + lower[size:]
	}
	return strings.Join(words, " ")
}
