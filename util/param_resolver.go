package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenRe = regexp.MustCompile(`{(.*?)}`)

// ResolveParams substitutes `{$.path}` jsonpath tokens in action parameters
// with values from the run data (event payload plus prior action outputs).
// A string consisting of exactly one token resolves to the raw value so
// non-string results (numbers, objects, lists) survive; mixed strings are
// interpolated textually.
func ResolveParams(data map[string]any, params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = resolveValue(data, v)
	}
	return out
}

func resolveValue(data map[string]any, v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return ResolveParams(data, tv)
	case []any:
		out := make([]any, 0, len(tv))
		for _, item := range tv {
			out = append(out, resolveValue(data, item))
		}
		return out
	case string:
		return resolveString(data, tv)
	default:
		return v
	}
}

func resolveString(data map[string]any, s string) any {
	tokens := tokenRe.FindAllString(s, -1)
	if len(tokens) == 0 {
		return s
	}
	if len(tokens) == 1 && tokens[0] == s {
		if path, ok := jsonPathExpr(tokens[0]); ok {
			value, err := jsonpath.JsonPathLookup(data, path)
			if err != nil {
				return nil
			}
			return value
		}
		return s
	}
	result := s
	for _, token := range tokens {
		path, ok := jsonPathExpr(token)
		if !ok {
			continue
		}
		value, _ := jsonpath.JsonPathLookup(data, path)
		result = strings.ReplaceAll(result, token, fmt.Sprintf("%v", value))
	}
	return result
}

func jsonPathExpr(token string) (string, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
	if strings.HasPrefix(inner, "$") {
		return inner, true
	}
	return "", false
}
