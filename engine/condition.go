package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paperlex/paperlex/model"
)

// EvaluateConditions reports whether the payload satisfies every condition.
// It is pure: an empty condition set is true, a referenced field absent from
// the payload makes that single condition false, and a non-numeric value
// under a numeric operator is false rather than an error.
func EvaluateConditions(conditions map[string]model.Condition, payload map[string]any) bool {
	for field, cond := range conditions {
		actual, present := resolveField(field, payload)
		if !evaluateOne(cond, actual, present) {
			return false
		}
	}
	return true
}

func evaluateOne(cond model.Condition, actual any, present bool) bool {
	if cond.Operator == model.OP_EXISTS {
		want := true
		if b, ok := cond.Value.(bool); ok {
			want = b
		}
		return present == want
	}
	if !present {
		return false
	}
	switch cond.Operator {
	case model.OP_EQUALS:
		return equalValues(actual, cond.Value)
	case model.OP_NOT_EQUALS:
		return !equalValues(actual, cond.Value)
	case model.OP_CONTAINS:
		return contains(actual, cond.Value)
	case model.OP_IN:
		members, ok := cond.Value.([]any)
		if !ok {
			return false
		}
		for _, member := range members {
			if equalValues(actual, member) {
				return true
			}
		}
		return false
	case model.OP_MATCHES:
		s, ok1 := actual.(string)
		pattern, ok2 := cond.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		matched, err := regexp.MatchString(pattern, s)
		return err == nil && matched
	case model.OP_GREATER_THAN:
		a, aok := toFloat(actual)
		b, bok := toFloat(cond.Value)
		return aok && bok && a > b
	case model.OP_LESS_THAN:
		a, aok := toFloat(actual)
		b, bok := toFloat(cond.Value)
		return aok && bok && a < b
	}
	return false
}

// resolveField walks a dot path through nested maps and lists.
func resolveField(path string, data map[string]any) (any, bool) {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	// JSON decoding yields float64 for every number; normalize so that a
	// definition written with an int still compares equal.
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func contains(actual, expected any) bool {
	switch haystack := actual.(type) {
	case string:
		return strings.Contains(haystack, fmt.Sprintf("%v", expected))
	case []any:
		for _, member := range haystack {
			if equalValues(member, expected) {
				return true
			}
		}
	case []string:
		needle := fmt.Sprintf("%v", expected)
		for _, member := range haystack {
			if member == needle {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
