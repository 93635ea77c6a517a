package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// structuredResponseSchema is the contract the structured prompt asks
// the model to honor. Validation is advisory: a failing document
// degrades to the sentinel analysis, it never aborts the pipeline.
const structuredResponseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "Compliance Summary": {"type": "string"},
    "Clause Risk Heatmap": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "clause": {"type": "string"},
          "risk_level": {"type": "string"}
        },
        "required": ["clause", "risk_level"]
      }
    },
    "Category-wise Clause Risk Analysis": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string"}
      }
    },
    "Agreement Type": {"type": "string"},
    "Territory": {"type": "string"},
    "Rights": {"type": "string"},
    "Renewal Dates": {"type": "string"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("structured_response.json", structuredResponseSchema)

// ValidateStructuredResponse checks a structured model response
// against the expected report shape.
func ValidateStructuredResponse(doc []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
