package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// compareFunc tests a rule value against a transaction field value.
type compareFunc func(ruleValue, tranValue string) (bool, error)

// comparators is the static dispatch table for condition comparators.
// Unknown tokens are rejected at rule-load time.
var comparators = map[string]compareFunc{
	"CONTAINS":    contains,
	"STARTS_WITH": startsWith,
	"ENDS_WITH":   endsWith,
	"EQUALS":      equals,
	"GT":          gt,
	"GE":          ge,
	"LT":          lt,
	"LE":          le,
	"MOD":         mod,
}

// asNumbers parses both values as decimals, reporting whether numeric
// comparison applies.
func asNumbers(a, b string) (decimal.Decimal, decimal.Decimal, bool) {
	x, errX := decimal.NewFromString(strings.TrimSpace(a))
	y, errY := decimal.NewFromString(strings.TrimSpace(b))
	return x, y, errX == nil && errY == nil
}

func contains(ruleValue, tranValue string) (bool, error) {
	return strings.Contains(strings.ToLower(tranValue), strings.ToLower(ruleValue)), nil
}

func startsWith(ruleValue, tranValue string) (bool, error) {
	tranValue = strings.TrimSpace(strings.ToLower(tranValue))
	return strings.HasPrefix(tranValue, strings.ToLower(ruleValue)), nil
}

func endsWith(ruleValue, tranValue string) (bool, error) {
	tranValue = strings.TrimSpace(strings.ToLower(tranValue))
	return strings.HasSuffix(tranValue, strings.ToLower(ruleValue)), nil
}

func equals(ruleValue, tranValue string) (bool, error) {
	if r, v, ok := asNumbers(ruleValue, tranValue); ok {
		return r.Equal(v), nil
	}
	return strings.ToLower(ruleValue) == strings.TrimSpace(strings.ToLower(tranValue)), nil
}

// Ordered comparators are rule-value-relative: GT asks whether the
// transaction value is greater than the rule value, i.e. ruleValue < tranValue.
// Dates compare correctly as strings in their YYYY-MM-DD form.

func gt(ruleValue, tranValue string) (bool, error) {
	if r, v, ok := asNumbers(ruleValue, tranValue); ok {
		return r.LessThan(v), nil
	}
	return strings.ToLower(ruleValue) < strings.ToLower(tranValue), nil
}

func ge(ruleValue, tranValue string) (bool, error) {
	if r, v, ok := asNumbers(ruleValue, tranValue); ok {
		return r.LessThanOrEqual(v), nil
	}
	return strings.ToLower(ruleValue) <= strings.ToLower(tranValue), nil
}

func lt(ruleValue, tranValue string) (bool, error) {
	if r, v, ok := asNumbers(ruleValue, tranValue); ok {
		return r.GreaterThan(v), nil
	}
	return strings.ToLower(ruleValue) > strings.ToLower(tranValue), nil
}

func le(ruleValue, tranValue string) (bool, error) {
	if r, v, ok := asNumbers(ruleValue, tranValue); ok {
		return r.GreaterThanOrEqual(v), nil
	}
	return strings.ToLower(ruleValue) >= strings.ToLower(tranValue), nil
}

func mod(ruleValue, tranValue string) (bool, error) {
	r, v, ok := asNumbers(ruleValue, tranValue)
	if !ok {
		return false, fmt.Errorf("MOD requires numeric values, got %q and %q", ruleValue, tranValue)
	}
	if r.IsZero() {
		return false, fmt.Errorf("MOD by zero")
	}
	return v.Mod(r).IsZero(), nil
}
