// Package icp scores raw events against an Ideal Customer Profile.
package icp

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RuleOperator is a comparison operator for custom ICP rules.
type RuleOperator string

const (
	OpContains RuleOperator = "contains"
	OpEquals   RuleOperator = "equals"
	OpRegex    RuleOperator = "regex"
	OpGT       RuleOperator = "gt"
	OpLT       RuleOperator = "lt"
)

// CustomRule is a user-defined predicate over a named raw-event field.
type CustomRule struct {
	Field    string       `json:"field"`
	Operator RuleOperator `json:"operator"`
	Value    any          `json:"value"`
}

// Criteria describes the target customer profile. Loaded once at matcher
// construction and read-only for the rest of the run.
type Criteria struct {
	Name             string       `json:"name"`
	Industries       []string     `json:"industries"`
	MinEmployees     int          `json:"min_employees,omitempty"`
	MaxEmployees     int          `json:"max_employees,omitempty"`
	MinRevenue       float64      `json:"min_revenue,omitempty"`
	MaxRevenue       float64      `json:"max_revenue,omitempty"`
	Geographies      []string     `json:"geographies,omitempty"`
	TechStack        []string     `json:"tech_stack,omitempty"`
	TargetRoles      []string     `json:"target_roles,omitempty"`
	ExcludeCompanies []string     `json:"exclude_companies,omitempty"`
	CustomRules      []CustomRule `json:"custom_rules,omitempty"`
}

// LoadCriteria reads ICP criteria from a JSON config file. A missing or
// malformed file is fatal: the matcher cannot operate without criteria.
func LoadCriteria(path string) (*Criteria, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "icp: read criteria %s", path)
	}

	var c Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, eris.Wrapf(err, "icp: parse criteria %s", path)
	}

	zap.L().Info("icp: criteria loaded",
		zap.String("name", c.Name),
		zap.Int("industries", len(c.Industries)),
		zap.Int("custom_rules", len(c.CustomRules)),
	)

	return &c, nil
}
