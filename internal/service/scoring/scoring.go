package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/octobees/leads-dashboard/internal/entity"
)

const (
	categoryCompanySize   = "company_size"
	categoryIndustry      = "industry"
	categoryRevenue       = "revenue"
	categoryDecisionMaker = "decision_maker"
	categoryCompleteness  = "data_completeness"

	maxScore          = 100
	maxCompleteness   = 10
	revenueMultiplier = 1_000_000
)

var (
	priorityIndustries = map[string]struct{}{
		"Technology": {},
		"Healthcare": {},
		"Finance":    {},
	}

	decisionMakerTitles = []string{"ceo", "cto", "vp", "director", "president", "founder"}

	employeeBuckets = map[string]int{
		"1-10":   5,
		"11-50":  30,
		"51-200": 125,
		"200+":   500,
	}

	revenuePattern = regexp.MustCompile(`(\d+)M`)
)

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// ComputeScore evaluates a joined lead and returns a score in [0, 100].
func ComputeScore(view entity.LeadView) ScoreResult {
	breakdown := map[string]int{
		categoryCompanySize:   scoreCompanySize(view.Company),
		categoryIndustry:      scoreIndustry(view.Company),
		categoryRevenue:       scoreRevenue(view.Company),
		categoryDecisionMaker: scoreDecisionMaker(view.Contact),
		categoryCompleteness:  scoreCompleteness(view.Company, view.Contact),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	return ScoreResult{
		Total:     clamp(total, 0, maxScore),
		Breakdown: breakdown,
	}
}

// EmployeeCount maps a size bucket such as "51-200" to a representative head count.
// Unknown buckets map to 0.
func EmployeeCount(bucket string) int {
	return employeeBuckets[strings.TrimSpace(bucket)]
}

// RevenueAmount extracts the leading "<N>M" figure of a revenue bucket in dollars.
// "$10M-$50M" yields 10,000,000; anything unparseable yields 0. Figures too
// large for int64 saturate at math.MaxInt64.
func RevenueAmount(bucket string) int64 {
	match := revenuePattern.FindStringSubmatch(bucket)
	if len(match) < 2 {
		return 0
	}
	millions, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0
	}
	if millions > math.MaxInt64/revenueMultiplier {
		return math.MaxInt64
	}
	return millions * revenueMultiplier
}

func scoreCompanySize(company entity.Company) int {
	employees := EmployeeCount(company.Size)
	switch {
	case employees >= 200:
		return 25
	case employees >= 50:
		return 20
	case employees >= 10:
		return 15
	default:
		return 10
	}
}

func scoreIndustry(company entity.Company) int {
	if company.Industry == nil {
		return 10
	}
	if _, ok := priorityIndustries[*company.Industry]; ok {
		return 20
	}
	return 10
}

func scoreRevenue(company entity.Company) int {
	revenue := RevenueAmount(company.Revenue)
	switch {
	case revenue >= 50*revenueMultiplier:
		return 25
	case revenue >= 10*revenueMultiplier:
		return 20
	case revenue >= 1*revenueMultiplier:
		return 15
	default:
		return 10
	}
}

func scoreDecisionMaker(contact entity.Contact) int {
	if IsDecisionMakerTitle(deref(contact.Title)) {
		return 20
	}
	return 10
}

// IsDecisionMakerTitle reports whether a job title signals purchasing authority.
func IsDecisionMakerTitle(title string) bool {
	title = strings.ToLower(title)
	if title == "" {
		return false
	}
	for _, keyword := range decisionMakerTitles {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func scoreCompleteness(company entity.Company, contact entity.Contact) int {
	score := 0
	if present(contact.Email) {
		score += 3
	}
	if present(contact.Phone) {
		score += 2
	}
	if present(contact.LinkedinURL) {
		score += 2
	}
	if present(company.Website) {
		score++
	}
	if present(company.Industry) {
		score++
	}
	if strings.TrimSpace(company.Size) != "" {
		score++
	}
	return min(score, maxCompleteness)
}

func present(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
