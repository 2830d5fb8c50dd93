package icp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/signal-scout/internal/model"
)

// FieldAccessor resolves a named field on a raw event to a string. Custom
// rules go through this instead of reflection so the evaluator stays
// statically typed.
type FieldAccessor func(event model.RawEvent, field string) string

// DefaultFieldAccessor resolves the raw-event fields custom rules may
// reference. Unknown fields resolve to the empty string, and metadata keys
// are reachable by their plain name.
func DefaultFieldAccessor(event model.RawEvent, field string) string {
	switch field {
	case "id":
		return event.ID
	case "source":
		return string(event.Source)
	case "contentType", "content_type":
		return string(event.ContentType)
	case "url":
		return event.URL
	case "title":
		return event.Title
	case "body":
		return event.Body
	case "author":
		return event.Author
	case "authorRole", "author_role":
		return event.AuthorRole
	case "companyHint", "company_hint":
		return event.CompanyHint
	case "tags":
		return strings.Join(event.Tags, ",")
	case "collectedAt", "collected_at":
		return event.CollectedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if v, ok := event.Metadata[field]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// evaluateRule applies one custom rule to an event. Rules never error:
// invalid regexes and non-numeric gt/lt operands evaluate to false.
func evaluateRule(rule CustomRule, event model.RawEvent) bool {
	fieldValue := DefaultFieldAccessor(event, rule.Field)
	ruleValue := fmt.Sprintf("%v", rule.Value)

	switch rule.Operator {
	case OpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(ruleValue))
	case OpEquals:
		return strings.EqualFold(fieldValue, ruleValue)
	case OpRegex:
		re, err := regexp.Compile("(?i)" + ruleValue)
		if err != nil {
			return false
		}
		return re.MatchString(fieldValue)
	case OpGT:
		fv, err := strconv.ParseFloat(strings.TrimSpace(fieldValue), 64)
		if err != nil {
			return false
		}
		rv, err := strconv.ParseFloat(strings.TrimSpace(ruleValue), 64)
		if err != nil {
			return false
		}
		return fv > rv
	case OpLT:
		fv, err := strconv.ParseFloat(strings.TrimSpace(fieldValue), 64)
		if err != nil {
			return false
		}
		rv, err := strconv.ParseFloat(strings.TrimSpace(ruleValue), 64)
		if err != nil {
			return false
		}
		return fv < rv
	default:
		return false
	}
}
