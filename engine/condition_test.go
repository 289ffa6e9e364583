package engine

import (
	"testing"

	"github.com/paperlex/paperlex/model"
	"github.com/stretchr/testify/assert"
)

func cond(op model.Operator, value any) model.Condition {
	return model.Condition{Operator: op, Value: value}
}

func TestEvaluateConditions_EmptySetAlwaysTrue(t *testing.T) {
	assert.True(t, EvaluateConditions(nil, map[string]any{"anything": "goes"}))
	assert.True(t, EvaluateConditions(map[string]model.Condition{}, nil))
}

func TestEvaluateConditions_Operators(t *testing.T) {
	payload := map[string]any{
		"title":  "Rechnung 2024-001",
		"tags":   []any{"Rechnung", "ABC"},
		"amount": 119.0,
		"document": map[string]any{
			"correspondent": map[string]any{"name": "ACME GmbH"},
		},
	}

	tests := []struct {
		name  string
		field string
		cond  model.Condition
		want  bool
	}{
		{"equals match", "title", cond(model.OP_EQUALS, "Rechnung 2024-001"), true},
		{"equals is case sensitive", "title", cond(model.OP_EQUALS, "rechnung 2024-001"), false},
		{"not equals", "title", cond(model.OP_NOT_EQUALS, "other"), true},
		{"contains substring", "title", cond(model.OP_CONTAINS, "Rechnung"), true},
		{"contains list member", "tags", cond(model.OP_CONTAINS, "Rechnung"), true},
		{"contains missing member", "tags", cond(model.OP_CONTAINS, "Beleg"), false},
		{"in", "title", cond(model.OP_IN, []any{"other", "Rechnung 2024-001"}), true},
		{"in no member", "title", cond(model.OP_IN, []any{"other"}), false},
		{"matches", "title", cond(model.OP_MATCHES, `^Rechnung \d{4}`), true},
		{"matches non-string false", "amount", cond(model.OP_MATCHES, `\d+`), false},
		{"greater than", "amount", cond(model.OP_GREATER_THAN, 100), true},
		{"greater than false", "amount", cond(model.OP_GREATER_THAN, 200), false},
		{"greater than non-numeric is false", "title", cond(model.OP_GREATER_THAN, 10), false},
		{"less than", "amount", cond(model.OP_LESS_THAN, 200), true},
		{"exists", "title", cond(model.OP_EXISTS, true), true},
		{"exists negated", "missing", cond(model.OP_EXISTS, false), true},
		{"dot path", "document.correspondent.name", cond(model.OP_EQUALS, "ACME GmbH"), true},
		{"absent field is false not error", "missing", cond(model.OP_EQUALS, "x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateConditions(map[string]model.Condition{tt.field: tt.cond}, payload)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditions_AllMustHold(t *testing.T) {
	payload := map[string]any{"tags": []any{"Rechnung"}, "amount": 10.0}
	conditions := map[string]model.Condition{
		"tags":   cond(model.OP_CONTAINS, "Rechnung"),
		"amount": cond(model.OP_GREATER_THAN, 100),
	}
	assert.False(t, EvaluateConditions(conditions, payload))

	conditions["amount"] = cond(model.OP_GREATER_THAN, 5)
	assert.True(t, EvaluateConditions(conditions, payload))
}

func TestEvaluateConditions_NumericStringCoercion(t *testing.T) {
	payload := map[string]any{"amount": "150.50"}
	assert.True(t, EvaluateConditions(map[string]model.Condition{
		"amount": cond(model.OP_GREATER_THAN, 100),
	}, payload))
}
