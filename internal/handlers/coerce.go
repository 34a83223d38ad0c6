package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// userUpdateFields is the whitelist for partial updates, iterated in
// this order. Each entry maps a request key to the column it sets and
// the coercion applied to the raw JSON value.
var userUpdateFields = []struct {
	name   string
	coerce func(json.RawMessage) (any, error)
}{
	{"first_name", requiredString("first_name")},
	{"last_name", requiredString("last_name")},
	{"email", requiredString("email")},
	{"designation", nullableString("designation")},
	{"date_of_birth", nullableString("date_of_birth")},
	{"active", func(raw json.RawMessage) (any, error) { return coerceBool(raw), nil }},
	{"company_id", coerceCompanyID},
}

// coerceBool: true, "true", 1 and "1" count as true; anything else
// supplied counts as false.
func coerceBool(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case `true`, `"true"`, `1`, `"1"`:
		return true
	default:
		return false
	}
}

func coerceCompanyID(raw json.RawMessage) (any, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, errors.New("company_id must be a number")
		}
		s = str
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, errors.New("company_id must be a number")
	}
	return int64(n), nil
}

func requiredString(field string) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%s must be a string", field)
		}
		return s, nil
	}
}

func nullableString(field string) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		if strings.TrimSpace(string(raw)) == "null" {
			return nil, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%s must be a string or null", field)
		}
		return s, nil
	}
}
