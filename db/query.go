package db

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Record filtering for the list endpoints. A filter expression has the
// form "path op value", evaluated against the JSON form of each record
// with gjson path lookups, e.g.:
//
//	status eq "active"
//	cost gte 100
//	files.0.name contains-i "xray"
//
// Multiple expressions AND together. Strings must be double-quoted;
// numbers, true/false and null are bare.

var numberLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// filterOps maps each operator to whether it only applies to strings.
var filterOps = map[string]bool{
	"eq": false, "ne": false,
	"gt": false, "gte": false, "lt": false, "lte": false,
	"contains": true,
}

// Condition is one parsed "path op value" expression.
type Condition struct {
	Path        string
	Op          string // base operator, -i suffix stripped
	Insensitive bool
	StrValue    string
	NumValue    float64
	BoolValue   bool
	ValueType   gjson.Type // String, Number, True/False or Null
	original    string
}

// ParseFilters parses the raw filter expressions from a request. A nil
// result with nil error means no filtering.
func ParseFilters(exprs []string) ([]Condition, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	conds := make([]Condition, 0, len(exprs))
	for _, expr := range exprs {
		cond, err := parseCondition(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter '%s': %w", expr, err)
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func parseCondition(expr string) (Condition, error) {
	parts := strings.Fields(strings.TrimSpace(expr))
	if len(parts) < 3 {
		return Condition{}, fmt.Errorf("expected 'path op value'")
	}

	cond := Condition{Path: parts[0], original: expr}

	op := strings.ToLower(parts[1])
	if strings.HasSuffix(op, "-i") {
		cond.Insensitive = true
		op = strings.TrimSuffix(op, "-i")
	}
	stringOnly, known := filterOps[op]
	if !known {
		return Condition{}, fmt.Errorf("unknown operator '%s'", parts[1])
	}
	if cond.Insensitive && op != "eq" && op != "ne" && op != "contains" {
		return Condition{}, fmt.Errorf("operator '%s' has no case-insensitive form", op)
	}
	cond.Op = op

	// Everything after the operator is the value; quoted strings may
	// contain spaces.
	valueStr := strings.Join(parts[2:], " ")
	switch {
	case strings.HasPrefix(valueStr, `"`) && strings.HasSuffix(valueStr, `"`) && len(valueStr) >= 2:
		cond.ValueType = gjson.String
		cond.StrValue = valueStr[1 : len(valueStr)-1]
	case valueStr == "true", valueStr == "false":
		cond.ValueType = gjson.True // normalized; BoolValue carries the actual value
		cond.BoolValue = valueStr == "true"
	case valueStr == "null":
		cond.ValueType = gjson.Null
	case numberLiteral.MatchString(valueStr):
		n, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return Condition{}, fmt.Errorf("bad number literal '%s'", valueStr)
		}
		cond.ValueType = gjson.Number
		cond.NumValue = n
	default:
		return Condition{}, fmt.Errorf("value '%s' must be a quoted string, number, boolean or null", valueStr)
	}

	if stringOnly && cond.ValueType != gjson.String {
		return Condition{}, fmt.Errorf("operator '%s' requires a quoted string value", op)
	}
	return cond, nil
}

// matches evaluates the condition against a record's JSON bytes.
func (cond Condition) matches(recordJSON []byte) bool {
	field := gjson.GetBytes(recordJSON, cond.Path)

	switch cond.ValueType {
	case gjson.Null:
		exists := field.Exists() && field.Type != gjson.Null
		if cond.Op == "ne" {
			return exists
		}
		return cond.Op == "eq" && !exists
	case gjson.True: // boolean comparison
		if !field.Exists() {
			return false
		}
		switch cond.Op {
		case "eq":
			return field.IsBool() && field.Bool() == cond.BoolValue
		case "ne":
			return !field.IsBool() || field.Bool() != cond.BoolValue
		}
		return false
	case gjson.Number:
		if !field.Exists() || field.Type != gjson.Number {
			// ne against a missing/non-numeric field is trivially true
			return cond.Op == "ne"
		}
		return compareNumbers(field.Num, cond.NumValue, cond.Op)
	default: // string
		if !field.Exists() || field.Type != gjson.String {
			return cond.Op == "ne"
		}
		return compareStrings(field.Str, cond.StrValue, cond.Op, cond.Insensitive)
	}
}

func compareNumbers(have, want float64, op string) bool {
	switch op {
	case "eq":
		return have == want
	case "ne":
		return have != want
	case "gt":
		return have > want
	case "gte":
		return have >= want
	case "lt":
		return have < want
	case "lte":
		return have <= want
	}
	return false
}

func compareStrings(have, want, op string, insensitive bool) bool {
	if insensitive {
		have = strings.ToLower(have)
		want = strings.ToLower(want)
	}
	switch op {
	case "eq":
		return have == want
	case "ne":
		return have != want
	case "gt":
		return have > want
	case "gte":
		return have >= want
	case "lt":
		return have < want
	case "lte":
		return have <= want
	case "contains":
		return strings.Contains(have, want)
	}
	return false
}

// MatchRecord reports whether a record passes every condition AND, when
// search is non-empty, contains it (case-insensitive) in at least one of
// the given string fields. The record is marshalled once.
func MatchRecord(record any, conds []Condition, search string, searchPaths []string) bool {
	if len(conds) == 0 && search == "" {
		return true
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		log.Printf("WARN: Failed to marshal record for filtering: %v", err)
		return false
	}

	for _, cond := range conds {
		if !cond.matches(recordJSON) {
			return false
		}
	}

	if search != "" {
		needle := strings.ToLower(search)
		found := false
		for _, path := range searchPaths {
			field := gjson.GetBytes(recordJSON, path)
			if field.Type == gjson.String && strings.Contains(strings.ToLower(field.Str), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
