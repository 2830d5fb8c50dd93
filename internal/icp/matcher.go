package icp

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/signal-scout/internal/model"
)

// highSignalTerms carry active buying intent and score 0.15 each.
var highSignalTerms = []string{
	"rfp",
	"rfq",
	"rfi",
	"vendor selection",
	"platform evaluation",
	"system implementation",
	"digital transformation",
	"re-platform",
	"overhaul",
	"modernize",
	"modernise",
	"looking for solutions",
	"open to solutions",
	"kicking off",
	"new system",
	"replacing",
}

// mediumSignalTerms indicate domain relevance and score 0.05 each.
var mediumSignalTerms = []string{
	"supply chain",
	"procurement",
	"logistics",
	"warehouse",
	"inventory",
	"sourcing",
	"supplier",
	"demand planning",
	"transportation",
	"distribution",
	"fulfillment",
	"tms",
	"wms",
	"s2p",
	"source-to-pay",
	"erp",
	"control tower",
}

// Matcher deterministically scores raw events against loaded criteria.
// Match is a pure function of (criteria, event): no I/O, no mutation.
type Matcher struct {
	criteria *Criteria
}

// NewMatcher constructs a Matcher from a criteria config file. Config load
// failure is the one error allowed to abort a run before it starts.
func NewMatcher(configPath string) (*Matcher, error) {
	c, err := LoadCriteria(configPath)
	if err != nil {
		return nil, err
	}
	return &Matcher{criteria: c}, nil
}

// NewMatcherWithCriteria constructs a Matcher from in-memory criteria.
func NewMatcherWithCriteria(c *Criteria) *Matcher {
	return &Matcher{criteria: c}
}

// Match scores one event against the ICP. The score is the fraction of
// evaluated criteria that matched, rounded to two decimals; zero evaluated
// criteria yields score zero.
func (m *Matcher) Match(event model.RawEvent) model.CompanyMatch {
	companyName := event.CompanyHint
	if companyName == "" {
		companyName = "Unknown"
	}

	// Excluded companies short-circuit everything else.
	for _, c := range m.criteria.ExcludeCompanies {
		if strings.EqualFold(c, companyName) {
			return model.CompanyMatch{
				CompanyName:       companyName,
				MatchScore:        0,
				MatchedCriteria:   []string{},
				UnmatchedCriteria: []string{"excluded_company"},
			}
		}
	}

	var matched, unmatched []string

	// Target role: author role, falling back to author.
	if len(m.criteria.TargetRoles) > 0 {
		role := event.AuthorRole
		if role == "" {
			role = event.Author
		}
		role = strings.ToLower(role)

		roleMatch := false
		for _, r := range m.criteria.TargetRoles {
			if strings.Contains(role, strings.ToLower(r)) {
				roleMatch = true
				break
			}
		}
		if roleMatch {
			matched = append(matched, "target_role")
		} else {
			unmatched = append(unmatched, "target_role")
		}
	}

	// Content relevance over title+body.
	text := event.Text()
	relevance := scoreContentRelevance(text)
	switch {
	case relevance >= 0.5:
		matched = append(matched, "content_relevance_high")
	case relevance >= 0.25:
		matched = append(matched, "content_relevance_medium")
	default:
		unmatched = append(unmatched, "content_relevance")
	}

	// Tech stack mentions.
	if len(m.criteria.TechStack) > 0 {
		var techMatches []string
		for _, t := range m.criteria.TechStack {
			if strings.Contains(text, strings.ToLower(t)) {
				techMatches = append(techMatches, t)
			}
		}
		if len(techMatches) > 0 {
			matched = append(matched, "tech_stack:"+strings.Join(techMatches, ","))
		} else {
			unmatched = append(unmatched, "tech_stack")
		}
	}

	// Industry signal heuristic.
	if len(m.criteria.Industries) > 0 {
		industryMatch := false
		for _, ind := range m.criteria.Industries {
			if strings.Contains(text, strings.ToLower(ind)) {
				industryMatch = true
				break
			}
		}
		if industryMatch {
			matched = append(matched, "industry_signal")
		} else {
			unmatched = append(unmatched, "industry_signal")
		}
	}

	// Custom rules.
	for _, rule := range m.criteria.CustomRules {
		label := fmt.Sprintf("custom:%s:%s", rule.Field, rule.Operator)
		if evaluateRule(rule, event) {
			matched = append(matched, label)
		} else {
			unmatched = append(unmatched, label)
		}
	}

	total := len(matched) + len(unmatched)
	score := 0.0
	if total > 0 {
		score = float64(len(matched)) / float64(total)
	}

	if matched == nil {
		matched = []string{}
	}
	if unmatched == nil {
		unmatched = []string{}
	}

	return model.CompanyMatch{
		CompanyName:       companyName,
		MatchScore:        math.Round(score*100) / 100,
		MatchedCriteria:   matched,
		UnmatchedCriteria: unmatched,
	}
}

// scoreContentRelevance computes a weighted keyword score capped at 1.0.
func scoreContentRelevance(text string) float64 {
	score := 0.0
	for _, term := range highSignalTerms {
		if strings.Contains(text, term) {
			score += 0.15
		}
	}
	for _, term := range mediumSignalTerms {
		if strings.Contains(text, term) {
			score += 0.05
		}
	}
	return math.Min(score, 1)
}
