package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
)

func fixtureViews(t *testing.T) []entity.LeadView {
	t.Helper()
	store := newTestStore()
	seed(t, store,
		seedLead{company: "Acme Analytics", website: "https://acme.io", industry: "Technology", size: "51-200", revenue: "$10M-$50M", location: "San Francisco, CA", contact: "Jane Doe", title: "CTO", score: 92, status: entity.LeadStatusEnriched, source: "mock_scraper"},
		seedLead{company: "Blue Clinic", website: "https://blueclinic.com", industry: "Healthcare", size: "11-50", revenue: "$1M-$10M", location: "Austin, TX", contact: "Sam Lee", title: "Office Manager", score: 45, status: entity.LeadStatusPending, source: "csv_import"},
		seedLead{company: "Credit Partners", website: "https://creditpartners.com", industry: "Finance", size: "200+", revenue: "$50M+", location: "New York, NY", contact: "Ana Ruiz", title: "VP Sales", score: 85, status: entity.LeadStatusContacted, source: "mock_scraper"},
	)
	return store.LeadViews(context.Background())
}

func names(views []entity.LeadView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Company.Name)
	}
	return out
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestFilterLeads_MinScoreNewestFirst(t *testing.T) {
	views := fixtureViews(t)

	got := FilterLeads(views, dto.LeadFilter{MinScore: intPtr(80)})

	require.Len(t, got, 2)
	require.Equal(t, 85, got[0].Score)
	require.Equal(t, 92, got[1].Score)
}

func TestFilterLeads_EmptyFilterReturnsAllNewestFirst(t *testing.T) {
	got := FilterLeads(fixtureViews(t), dto.LeadFilter{})
	require.Equal(t, []string{"Credit Partners", "Blue Clinic", "Acme Analytics"}, names(got))
}

func TestFilterLeads_Predicates(t *testing.T) {
	tests := map[string]struct {
		filter dto.LeadFilter
		want   []string
	}{
		"search matches company name case-insensitively": {
			filter: dto.LeadFilter{Search: "ACME"},
			want:   []string{"Acme Analytics"},
		},
		"search matches contact name": {
			filter: dto.LeadFilter{Search: "ruiz"},
			want:   []string{"Credit Partners"},
		},
		"search matches website": {
			filter: dto.LeadFilter{Search: "blueclinic.com"},
			want:   []string{"Blue Clinic"},
		},
		"industry is exact": {
			filter: dto.LeadFilter{Industry: "Finance"},
			want:   []string{"Credit Partners"},
		},
		"industry does not match partially": {
			filter: dto.LeadFilter{Industry: "Fin"},
			want:   []string{},
		},
		"company sizes form a set": {
			filter: dto.LeadFilter{CompanySizes: []string{"11-50", "200+"}},
			want:   []string{"Credit Partners", "Blue Clinic"},
		},
		"min revenue is inclusive": {
			filter: dto.LeadFilter{MinRevenue: int64Ptr(10_000_000)},
			want:   []string{"Credit Partners", "Acme Analytics"},
		},
		"max revenue is inclusive": {
			filter: dto.LeadFilter{MaxRevenue: int64Ptr(10_000_000)},
			want:   []string{"Blue Clinic", "Acme Analytics"},
		},
		"location is a substring match": {
			filter: dto.LeadFilter{Location: "tx"},
			want:   []string{"Blue Clinic"},
		},
		"status is exact": {
			filter: dto.LeadFilter{Status: entity.LeadStatusEnriched},
			want:   []string{"Acme Analytics"},
		},
		"sources form a set": {
			filter: dto.LeadFilter{Sources: []string{"csv_import"}},
			want:   []string{"Blue Clinic"},
		},
		"predicates are combined with AND": {
			filter: dto.LeadFilter{Sources: []string{"mock_scraper"}, MinScore: intPtr(90)},
			want:   []string{"Acme Analytics"},
		},
	}

	views := fixtureViews(t)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, names(FilterLeads(views, tt.filter)))
		})
	}
}

func TestFilterLeads_CombinationIsIntersection(t *testing.T) {
	views := fixtureViews(t)
	a := dto.LeadFilter{MinScore: intPtr(50)}
	b := dto.LeadFilter{Sources: []string{"mock_scraper"}, Location: "new york"}

	combined := dto.LeadFilter{MinScore: a.MinScore, Sources: b.Sources, Location: b.Location}
	viaA := FilterLeads(FilterLeads(views, a), b)
	viaB := FilterLeads(FilterLeads(views, b), a)

	require.Equal(t, names(FilterLeads(views, combined)), names(viaA))
	require.Equal(t, names(viaA), names(viaB))
	require.Equal(t, []string{"Credit Partners"}, names(viaA))
}

func TestFilterLeads_DoesNotMutateInput(t *testing.T) {
	views := fixtureViews(t)
	before := names(views)
	FilterLeads(views, dto.LeadFilter{MinScore: intPtr(80)})
	require.Equal(t, before, names(views))
}

func TestValidateFilter(t *testing.T) {
	tests := map[string]struct {
		filter  dto.LeadFilter
		wantErr bool
	}{
		"empty":              {filter: dto.LeadFilter{}},
		"valid bounds":       {filter: dto.LeadFilter{MinRevenue: int64Ptr(1), MaxRevenue: int64Ptr(1)}},
		"unknown status":     {filter: dto.LeadFilter{Status: "archived"}, wantErr: true},
		"min score too high": {filter: dto.LeadFilter{MinScore: intPtr(101)}, wantErr: true},
		"negative revenue":   {filter: dto.LeadFilter{MinRevenue: int64Ptr(-1)}, wantErr: true},
		"inverted revenue":   {filter: dto.LeadFilter{MinRevenue: int64Ptr(5), MaxRevenue: int64Ptr(4)}, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateFilter(tt.filter)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			require.NotEmpty(t, vErr.Details)
		})
	}
}
