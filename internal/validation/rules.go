// -- internal/validation/rules.go --
// Description: Rule-based quality validation over resolved view models. A
// rule names an entity type, a property-set/property pair, and constraints;
// every resolved element of that type is checked and graded.

package validation

import (
	"fmt"
	"os"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/bimgrid/ifcpanel-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Level grades how severe a failed check is.
type Level string

const (
	LevelInfo     Level = "Info"
	LevelWarning  Level = "Warning"
	LevelCritical Level = "Critical"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass Status = "Pass"
	StatusFail Status = "Fail"
)

// Rule is one row of the requirements table.
type Rule struct {
	EntityType    string   `json:"entity_type"`
	PropertySet   string   `json:"property_set"`
	PropertyName  string   `json:"property_name"`
	Required      bool     `json:"required"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	Level         Level    `json:"level,omitempty"`
}

// Result is the outcome of one rule applied to one element.
type Result struct {
	EntityType  string `json:"entity_type"`
	GlobalID    string `json:"global_id"`
	ElementName string `json:"element_name"`
	Check       string `json:"check"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
	Status      Status `json:"status"`
	Level       Level  `json:"level"`
	Location    string `json:"location"`
}

// Summary aggregates a validation run.
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	ByLevel  map[Level]int `json:"failed_by_level"`
	PassRate float64       `json:"pass_rate"`
}

// Report is the full outcome of one validation run.
type Report struct {
	RunID   string   `json:"run_id"`
	Results []Result `json:"results"`
}

// Summarize computes the aggregate view of the report.
func (r *Report) Summarize() Summary {
	s := Summary{ByLevel: make(map[Level]int)}
	for _, res := range r.Results {
		s.Total++
		if res.Status == StatusPass {
			s.Passed++
		} else {
			s.Failed++
			s.ByLevel[res.Level]++
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

// LoadRules reads a requirements table from a JSON file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	for i := range rules {
		if rules[i].Level == "" {
			rules[i].Level = LevelWarning
		}
		if rules[i].EntityType == "" || rules[i].PropertyName == "" {
			return nil, fmt.Errorf("rule %d must name an entity type and a property", i)
		}
	}
	return rules, nil
}

// Evaluate applies every rule to every matching view model.
func Evaluate(runID string, rules []Rule, views []schemas.ElementViewModel) *Report {
	report := &Report{RunID: runID}
	for _, rule := range rules {
		for _, vm := range views {
			if vm.Type != rule.EntityType {
				continue
			}
			report.Results = append(report.Results, applyRule(rule, vm))
		}
	}
	return report
}

// applyRule checks one element against one rule. Quantity sets are probed
// alongside property sets so numeric rules can target measurements.
func applyRule(rule Rule, vm schemas.ElementViewModel) Result {
	res := Result{
		EntityType:  vm.Type,
		GlobalID:    vm.GlobalID,
		ElementName: vm.Name,
		Check:       fmt.Sprintf("%s.%s", rule.PropertySet, rule.PropertyName),
		Level:       rule.Level,
		Location:    vm.Location,
	}

	value, found := lookup(rule, vm)
	if !found {
		res.Expected = "property present"
		res.Actual = "missing"
		if rule.Required {
			res.Status = StatusFail
		} else {
			res.Status = StatusPass
			res.Actual = "missing (optional)"
		}
		return res
	}
	res.Actual = fmt.Sprintf("%v", value)

	if len(rule.AllowedValues) > 0 {
		res.Expected = fmt.Sprintf("one of %v", rule.AllowedValues)
		for _, allowed := range rule.AllowedValues {
			if res.Actual == allowed {
				res.Status = StatusPass
				return res
			}
		}
		res.Status = StatusFail
		return res
	}

	if rule.MinValue != nil || rule.MaxValue != nil {
		return checkRange(rule, res, value)
	}

	res.Expected = "property present"
	res.Status = StatusPass
	return res
}

// lookup finds the rule's target value on the element, first in property
// sets, then in quantity sets.
func lookup(rule Rule, vm schemas.ElementViewModel) (any, bool) {
	if set, ok := vm.PropertySets[rule.PropertySet]; ok {
		if v, ok := set[rule.PropertyName]; ok {
			return v, true
		}
	}
	if set, ok := vm.QuantitySets[rule.PropertySet]; ok {
		if q, ok := set[rule.PropertyName]; ok {
			return q.Value, true
		}
	}
	return nil, false
}

func checkRange(rule Rule, res Result, value any) Result {
	n, ok := toNumber(value)
	if !ok {
		res.Expected = "numeric value"
		res.Status = StatusFail
		return res
	}
	switch {
	case rule.MinValue != nil && rule.MaxValue != nil:
		res.Expected = fmt.Sprintf("between %v and %v", *rule.MinValue, *rule.MaxValue)
	case rule.MinValue != nil:
		res.Expected = fmt.Sprintf(">= %v", *rule.MinValue)
	default:
		res.Expected = fmt.Sprintf("<= %v", *rule.MaxValue)
	}
	if (rule.MinValue != nil && n < *rule.MinValue) || (rule.MaxValue != nil && n > *rule.MaxValue) {
		res.Status = StatusFail
		return res
	}
	res.Status = StatusPass
	return res
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
