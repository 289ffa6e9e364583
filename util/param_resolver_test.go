package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveParams(t *testing.T) {
	data := map[string]any{
		"document_id": "42",
		"amount":      119.5,
		"voucher":     map[string]any{"id": "v-1", "number": "2024-001"},
		"tags":        []any{"Rechnung"},
	}

	tests := []struct {
		name   string
		params map[string]any
		want   map[string]any
	}{
		{
			"single token keeps raw type",
			map[string]any{"amount": "{$.amount}"},
			map[string]any{"amount": 119.5},
		},
		{
			"single token resolves objects",
			map[string]any{"voucher": "{$.voucher}"},
			map[string]any{"voucher": map[string]any{"id": "v-1", "number": "2024-001"}},
		},
		{
			"nested path",
			map[string]any{"owner_id": "{$.voucher.id}"},
			map[string]any{"owner_id": "v-1"},
		},
		{
			"interpolation",
			map[string]any{"title": "Voucher {$.voucher.number} for {$.document_id}"},
			map[string]any{"title": "Voucher 2024-001 for 42"},
		},
		{
			"missing path resolves to nil",
			map[string]any{"x": "{$.nope}"},
			map[string]any{"x": nil},
		},
		{
			"plain strings pass through",
			map[string]any{"type": "salesinvoice"},
			map[string]any{"type": "salesinvoice"},
		},
		{
			"non-jsonpath braces pass through",
			map[string]any{"fmt": "{whatever}"},
			map[string]any{"fmt": "{whatever}"},
		},
		{
			"recursion into maps and lists",
			map[string]any{"nested": map[string]any{"ids": []any{"{$.document_id}", "fixed"}}},
			map[string]any{"nested": map[string]any{"ids": []any{"42", "fixed"}}},
		},
		{
			"non-string values untouched",
			map[string]any{"count": 3, "flag": true},
			map[string]any{"count": 3, "flag": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveParams(data, tt.params))
		})
	}
}
