package service

import (
	"sort"
	"strings"

	"github.com/octobees/leads-dashboard/internal/dto"
	"github.com/octobees/leads-dashboard/internal/entity"
	"github.com/octobees/leads-dashboard/internal/service/scoring"
)

type leadPredicate func(view entity.LeadView) bool

// FilterLeads keeps the views matching every predicate present in filter and
// orders them newest first. Views with equal createdAt keep their input order.
func FilterLeads(views []entity.LeadView, filter dto.LeadFilter) []entity.LeadView {
	predicates := buildPredicates(filter)

	result := make([]entity.LeadView, 0, len(views))
	for _, view := range views {
		if matchesAll(view, predicates) {
			result = append(result, view)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func matchesAll(view entity.LeadView, predicates []leadPredicate) bool {
	for _, match := range predicates {
		if !match(view) {
			return false
		}
	}
	return true
}

func buildPredicates(filter dto.LeadFilter) []leadPredicate {
	var predicates []leadPredicate

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		predicates = append(predicates, func(v entity.LeadView) bool {
			return containsFold(v.Company.Name, search) ||
				containsFold(v.Contact.Name, search) ||
				containsFold(deref(v.Company.Website), search)
		})
	}
	if industry := strings.TrimSpace(filter.Industry); industry != "" {
		predicates = append(predicates, func(v entity.LeadView) bool {
			return v.Company.Industry != nil && *v.Company.Industry == industry
		})
	}
	if len(filter.CompanySizes) > 0 {
		sizes := toSet(filter.CompanySizes)
		predicates = append(predicates, func(v entity.LeadView) bool {
			_, ok := sizes[v.Company.Size]
			return ok
		})
	}
	if filter.MinRevenue != nil {
		minRevenue := *filter.MinRevenue
		predicates = append(predicates, func(v entity.LeadView) bool {
			return scoring.RevenueAmount(v.Company.Revenue) >= minRevenue
		})
	}
	if filter.MaxRevenue != nil {
		maxRevenue := *filter.MaxRevenue
		predicates = append(predicates, func(v entity.LeadView) bool {
			return scoring.RevenueAmount(v.Company.Revenue) <= maxRevenue
		})
	}
	if location := strings.ToLower(strings.TrimSpace(filter.Location)); location != "" {
		predicates = append(predicates, func(v entity.LeadView) bool {
			return containsFold(deref(v.Company.Location), location)
		})
	}
	if filter.MinScore != nil {
		minScore := *filter.MinScore
		predicates = append(predicates, func(v entity.LeadView) bool {
			return v.Score >= minScore
		})
	}
	if filter.Status != "" {
		status := filter.Status
		predicates = append(predicates, func(v entity.LeadView) bool {
			return v.Status == status
		})
	}
	if len(filter.Sources) > 0 {
		sources := toSet(filter.Sources)
		predicates = append(predicates, func(v entity.LeadView) bool {
			if v.Source == nil {
				return false
			}
			_, ok := sources[*v.Source]
			return ok
		})
	}

	return predicates
}

// containsFold reports whether lowerNeedle, already lower-cased, occurs in haystack.
func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
