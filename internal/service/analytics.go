package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/repository"
)

const (
	defaultChartDays = 7
	maxChartDays     = 90
	highQualityScore = 80
	unknownBucket    = "Unknown"
	chartDateLayout  = "2006-01-02"
	staleAfter       = 7 * 24 * time.Hour
)

// DashboardStats summarises the lead pipeline.
type DashboardStats struct {
	TotalLeads       int            `json:"totalLeads"`
	TotalCompanies   int            `json:"totalCompanies"`
	TotalContacts    int            `json:"totalContacts"`
	TotalCampaigns   int            `json:"totalCampaigns"`
	HighQualityLeads int            `json:"highQualityLeads"`
	AverageScore     float64        `json:"averageScore"`
	ConversionRate   float64        `json:"conversionRate"`
	ByStatus         map[string]int `json:"byStatus"`
	ByIndustry       map[string]int `json:"byIndustry"`
	BySource         map[string]int `json:"bySource"`
}

// ChartPoint is one day of pipeline activity.
type ChartPoint struct {
	Date      string `json:"date"`
	Leads     int    `json:"leads"`
	Enriched  int    `json:"enriched"`
	Contacted int    `json:"contacted"`
}

// DataSourceStatus describes one source of lead data.
type DataSourceStatus struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	LeadCount       int        `json:"leadCount"`
	EnrichmentCount int        `json:"enrichmentCount"`
	LastSync        *time.Time `json:"lastSync,omitempty"`
}

// AnalyticsService computes read-only aggregates over the store.
type AnalyticsService struct {
	store        *repository.Store
	providerName string
	now          func() time.Time
}

// AnalyticsOption configures an AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithAnalyticsClock overrides the clock used to anchor charts and staleness.
func WithAnalyticsClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAnalyticsService builds an analytics service. providerName is reported as
// the active data provider.
func NewAnalyticsService(store *repository.Store, providerName string, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{store: store, providerName: providerName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats aggregates counts, score and conversion figures over every resolvable lead.
func (s *AnalyticsService) Stats(ctx context.Context) DashboardStats {
	views := s.store.LeadViews(ctx)
	stats := DashboardStats{
		TotalLeads:     len(views),
		TotalCompanies: len(s.store.Companies(ctx)),
		TotalContacts:  len(s.store.Contacts(ctx)),
		TotalCampaigns: len(s.store.Campaigns(ctx)),
		ByStatus:       make(map[string]int, len(entity.LeadStatuses)),
		ByIndustry:     map[string]int{},
		BySource:       map[string]int{},
	}
	for _, status := range entity.LeadStatuses {
		stats.ByStatus[string(status)] = 0
	}
	if len(views) == 0 {
		return stats
	}

	totalScore := 0
	for _, view := range views {
		totalScore += view.Score
		if view.Score >= highQualityScore {
			stats.HighQualityLeads++
		}
		stats.ByStatus[string(view.Status)]++
		stats.ByIndustry[fallback(deref(view.Company.Industry), unknownBucket)]++
		stats.BySource[fallback(deref(view.Source), unknownBucket)]++
	}
	stats.AverageScore = round1(float64(totalScore) / float64(len(views)))
	stats.ConversionRate = round1(float64(stats.ByStatus[string(entity.LeadStatusConverted)]) * 100 / float64(len(views)))
	return stats
}

// Chart returns one point per day for the last days days, oldest first, counting
// leads created, enrichment runs and campaigns sent on that day (UTC).
// days outside 1..90 falls back to seven.
func (s *AnalyticsService) Chart(ctx context.Context, days int) []ChartPoint {
	if days <= 0 || days > maxChartDays {
		days = defaultChartDays
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	points := make([]ChartPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		date := start.AddDate(0, 0, i).Format(chartDateLayout)
		points[i].Date = date
		index[date] = i
	}
	bump := func(t time.Time, fn func(p *ChartPoint)) {
		if i, ok := index[t.UTC().Format(chartDateLayout)]; ok {
			fn(&points[i])
		}
	}

	for _, lead := range s.store.Leads(ctx) {
		bump(lead.CreatedAt, func(p *ChartPoint) { p.Leads++ })
	}
	for _, e := range s.store.Enrichments(ctx) {
		bump(e.EnrichedAt, func(p *ChartPoint) { p.Enriched++ })
	}
	for _, c := range s.store.Campaigns(ctx) {
		if c.SentAt != nil {
			bump(*c.SentAt, func(p *ChartPoint) { p.Contacted++ })
		}
	}
	return points
}

// DataSources reports the configured provider and every source that has
// produced leads or enrichment records, sorted by name. Sources that stopped
// producing data for staleAfter are reported as idle.
func (s *AnalyticsService) DataSources(ctx context.Context) []DataSourceStatus {
	sources := map[string]*DataSourceStatus{}
	get := func(name, kind string) *DataSourceStatus {
		if src, ok := sources[name]; ok {
			return src
		}
		src := &DataSourceStatus{Name: name, Type: kind, Status: "active"}
		sources[name] = src
		return src
	}

	if s.providerName != "" {
		get(s.providerName, "provider")
	}
	for _, lead := range s.store.Leads(ctx) {
		if lead.Source == nil || *lead.Source == "" {
			continue
		}
		src := get(*lead.Source, "scraper")
		src.LeadCount++
		src.LastSync = latest(src.LastSync, lead.CreatedAt)
	}
	for _, e := range s.store.Enrichments(ctx) {
		src := get(e.DataSource, "enrichment")
		src.EnrichmentCount++
		src.LastSync = latest(src.LastSync, e.EnrichedAt)
	}

	result := make([]DataSourceStatus, 0, len(sources))
	now := s.now()
	for _, src := range sources {
		if src.LastSync != nil && now.Sub(*src.LastSync) > staleAfter {
			src.Status = "idle"
		}
		result = append(result, *src)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func latest(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		return &candidate
	}
	return current
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
