package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// verdictSchemaJSON is the contract a model reply is asked to satisfy. Gemini
// receives a translated copy as its responseSchema; replies are checked
// against it to detect drift before normalization.
const verdictSchemaJSON = `{
  "type": "object",
  "properties": {
    "risk_score": {
      "type": "integer",
      "minimum": 0,
      "maximum": 100,
      "description": "Risk score from 0-100 (0=low risk, 100=high risk)"
    },
    "recommendation": {
      "type": "string",
      "enum": ["APPROVE", "REVIEW", "DENY"],
      "description": "One of: APPROVE, REVIEW, or DENY"
    },
    "reasoning": {
      "type": "string",
      "maxLength": 1000,
      "description": "Detailed explanation for the score and recommendation"
    }
  },
  "required": ["risk_score", "recommendation", "reasoning"]
}`

var compiledVerdictSchema = jsonschema.MustCompileString("verdict.json", verdictSchemaJSON)

// VerdictSchema returns a fresh copy of the verdict JSON schema.
func VerdictSchema() map[string]any {
	var schema map[string]any
	if err := json.Unmarshal([]byte(verdictSchemaJSON), &schema); err != nil {
		panic(fmt.Sprintf("analyzer: invalid verdict schema: %v", err))
	}
	return schema
}

// ValidateVerdictJSON reports whether text is a JSON document matching the
// verdict schema. It does not strip fences.
func ValidateVerdictJSON(text string) error {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := compiledVerdictSchema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match verdict schema: %w", err)
	}
	return nil
}
