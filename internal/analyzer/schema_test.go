package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimrisk/internal/analyzer"
)

func TestVerdictSchema_Shape(t *testing.T) {
	schema := analyzer.VerdictSchema()

	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"risk_score", "recommendation", "reasoning"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	rec, ok := props["recommendation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"APPROVE", "REVIEW", "DENY"}, rec["enum"])
}

func TestVerdictSchema_ReturnsCopy(t *testing.T) {
	first := analyzer.VerdictSchema()
	first["type"] = "array"

	assert.Equal(t, "object", analyzer.VerdictSchema()["type"])
}

func TestValidateVerdictJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"valid", `{"risk_score": 10, "recommendation": "APPROVE", "reasoning": "ok"}`, false},
		{"score out of range", `{"risk_score": 150, "recommendation": "APPROVE", "reasoning": "ok"}`, true},
		{"unknown recommendation", `{"risk_score": 10, "recommendation": "maybe", "reasoning": "ok"}`, true},
		{"missing reasoning", `{"risk_score": 10, "recommendation": "DENY"}`, true},
		{"string score", `{"risk_score": "10", "recommendation": "DENY", "reasoning": "ok"}`, true},
		{"not json", `risk is low`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := analyzer.ValidateVerdictJSON(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
