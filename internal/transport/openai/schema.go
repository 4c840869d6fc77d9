package openai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// entitiesSchema is the contract of every model reply.
const entitiesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["entities"],
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "text"],
        "properties": {
          "category": {"type": "string", "minLength": 1},
          "text": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("entities.json", entitiesSchema)

type entitiesReply struct {
	Entities []entity `json:"entities"`
}

type entity struct {
	Category   string   `json:"category"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// decodeReply validates a model reply against the schema and decodes it.
func decodeReply(content []byte) (entitiesReply, error) {
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return entitiesReply{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return entitiesReply{}, fmt.Errorf("reply does not match schema: %w", err)
	}
	var out entitiesReply
	if err := json.Unmarshal(content, &out); err != nil {
		return entitiesReply{}, fmt.Errorf("decode reply: %w", err)
	}
	return out, nil
}
