package genimage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Response payload schemas for the remote providers. A 2xx body that fails
// its schema is classified as a malformed-payload failure before any field
// is trusted.
var openAIResponseSchema = map[string]any{
	"type":     "object",
	"required": []string{"data"},
	"properties": map[string]any{
		"data": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"b64_json"},
				"properties": map[string]any{
					"b64_json": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

var stabilityResponseSchema = map[string]any{
	"type":     "object",
	"required": []string{"artifacts"},
	"properties": map[string]any{
		"artifacts": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"base64"},
				"properties": map[string]any{
					"base64":       map[string]any{"type": "string", "minLength": 1},
					"finishReason": map[string]any{"type": "string"},
				},
			},
		},
	},
}

// validatePayload validates "data" against "schemaMap".
func validatePayload(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
