// Package core provides filtering, sorting, and pruning of entry history.
package core

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // name, app, summary, level, status, reason, priority, displayed, finished
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	def   fieldDef
	regex *regexp.Regexp
	num   int
	flag  bool
	when  time.Time
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering records.
type FilterOptions struct {
	Since time.Duration      // Only records finished within since (0=all)
	Level *model.WindowLevel // nil=any
	Limit int                // Maximum results (0=unlimited)
}

// Filter filters records based on the provided options.
func Filter(records []model.HistoryRecord, opts FilterOptions) []model.HistoryRecord {
	now := time.Now()
	result := make([]model.HistoryRecord, 0, len(records))

	for _, r := range records {
		if opts.Since > 0 && r.FinishedAt.Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Level != nil && r.Level != opts.Level.String() {
			continue
		}
		result = append(result, r)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParsePriority parses a priority name or number.
// Accepts: min, low, normal, high, max, or 0-1000
func ParsePriority(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min":
		return int(model.PriorityMin), nil
	case "low":
		return int(model.PriorityLow), nil
	case "normal":
		return int(model.PriorityNormal), nil
	case "high":
		return int(model.PriorityHigh), nil
	case "max":
		return int(model.PriorityMax), nil
	}
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < int(model.PriorityMin) || p > int(model.PriorityMax) {
		return 0, fmt.Errorf("invalid priority: %s (use 0-1000 or min, low, normal, high, max)", s)
	}
	return p, nil
}

// fieldKind selects how a condition value is parsed and compared.
type fieldKind int

const (
	textField fieldKind = iota
	numberField
	flagField
	timeField
)

type fieldDef struct {
	kind  fieldKind
	text  func(model.HistoryRecord) string
	num   func(model.HistoryRecord) int
	flag  func(model.HistoryRecord) bool
	when  func(model.HistoryRecord) time.Time
	check func(string) error
}

var filterFields = map[string]fieldDef{
	"name":    {kind: textField, text: func(r model.HistoryRecord) string { return r.Name }},
	"app":     {kind: textField, text: func(r model.HistoryRecord) string { return r.AppName }},
	"summary": {kind: textField, text: func(r model.HistoryRecord) string { return r.Summary }},
	"level": {kind: textField, text: func(r model.HistoryRecord) string { return r.Level },
		check: func(v string) error {
			_, err := model.ParseWindowLevel(v)
			return err
		}},
	"status":    {kind: textField, text: func(r model.HistoryRecord) string { return r.Status }},
	"reason":    {kind: textField, text: func(r model.HistoryRecord) string { return r.Reason }},
	"priority":  {kind: numberField, num: func(r model.HistoryRecord) int { return r.Priority }},
	"displayed": {kind: flagField, flag: model.HistoryRecord.WasDisplayed},
	"finished":  {kind: timeField, when: func(r model.HistoryRecord) time.Time { return r.FinishedAt }},
}

var fieldAliases = map[string]string{
	"app_name":     "app",
	"appname":      "app",
	"title":        "summary",
	"window_level": "level",
	"state":        "status",
	"prio":         "priority",
	"shown":        "displayed",
	"time":         "finished",
	"ts":           "finished",
}

// operators is ordered so that two-character operators win over their prefixes.
var operators = []FilterOp{
	FilterOpNotEqual,
	FilterOpGreaterEq,
	FilterOpLessEq,
	FilterOpRegex,
	FilterOpEqual,
	FilterOpContains,
	FilterOpGreater,
	FilterOpLess,
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: name, app, summary, level, status, reason, priority,
// displayed, finished
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "level=alert" - entries shown on the alert level
//   - "priority>=high" - priority 750 or more
//   - "status=dropped,reason~replaced" - entries pushed out of the queue
//   - "summary~=(?i)battery" - summary matches regex
//   - "finished>1h" - entries that finished in the last hour
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

func parseCondition(s string) (FilterCondition, error) {
	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.compile(); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}
	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// compile resolves the field and parses the value for its kind.
func (c *FilterCondition) compile() error {
	if canonical, ok := fieldAliases[c.Field]; ok {
		c.Field = canonical
	}
	def, ok := filterFields[c.Field]
	if !ok {
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}
	c.def = def
	if def.check != nil {
		if err := def.check(c.Value); err != nil {
			return err
		}
	}

	switch def.kind {
	case numberField:
		p, err := ParsePriority(c.Value)
		if err != nil {
			return err
		}
		c.num = p
	case flagField:
		c.flag = parseBool(c.Value)
	case timeField:
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", c.Field, err)
		}
		c.when = time.Now().Add(-dur)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match reports whether every condition matches r.
func (f *FilterExpr) Match(r model.HistoryRecord) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(r) {
			return false
		}
	}
	return true
}

// Match tests if a record matches this single condition. Time fields compare
// against now minus the parsed duration, so "finished>1h" means within the
// last hour.
func (c *FilterCondition) Match(r model.HistoryRecord) bool {
	switch c.def.kind {
	case textField:
		if c.def.text == nil {
			return false
		}
		return c.matchText(c.def.text(r))
	case numberField:
		return compareOp(c.Operator, cmp.Compare(c.def.num(r), c.num))
	case flagField:
		if c.Operator != FilterOpEqual && c.Operator != FilterOpNotEqual {
			return false
		}
		return compareOp(c.Operator, boolCompare(c.def.flag(r), c.flag))
	case timeField:
		if c.Operator == FilterOpEqual || c.Operator == FilterOpNotEqual {
			return false
		}
		return compareOp(c.Operator, c.def.when(r).Compare(c.when))
	default:
		return false
	}
}

func (c *FilterCondition) matchText(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpNotEqual:
		return v != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

// compareOp applies an ordering operator to a three-way comparison result.
func compareOp(op FilterOp, c int) bool {
	switch op {
	case FilterOpEqual:
		return c == 0
	case FilterOpNotEqual:
		return c != 0
	case FilterOpGreater:
		return c > 0
	case FilterOpLess:
		return c < 0
	case FilterOpGreaterEq:
		return c >= 0
	case FilterOpLessEq:
		return c <= 0
	default:
		return false
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

// FilterWithExpr filters records using a filter expression.
func FilterWithExpr(records []model.HistoryRecord, expr *FilterExpr) []model.HistoryRecord {
	if expr == nil || len(expr.Conditions) == 0 {
		return records
	}
	result := make([]model.HistoryRecord, 0, len(records))
	for _, r := range records {
		if expr.Match(r) {
			result = append(result, r)
		}
	}
	return result
}
