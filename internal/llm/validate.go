package llm

import (
	"encoding/json"

	"github.com/abhisek/examdeck/internal/schemacheck"
)

// checkResponse validates raw against schema. A nil schema accepts
// anything; a response cut off at the token limit is reported as such
// rather than as a schema failure.
func checkResponse(schema *Schema, raw json.RawMessage, stopReason string) error {
	if schema == nil {
		return nil
	}
	if err := schemacheck.Validate("llm-"+schema.Name, schema.Definition, raw); err != nil {
		if stopReason == "max_tokens" {
			return &ErrMaxTokensExceeded{Content: raw}
		}
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	return nil
}
