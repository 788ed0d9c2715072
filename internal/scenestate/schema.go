package scenestate

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "cubes"],
  "properties": {
    "version": {"const": 1},
    "mode": {"enum": ["CREATE", "HINGE", "DEMO"]},
    "layer": {"type": "integer", "minimum": 0},
    "cubes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "position"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "position": {"$ref": "#/definitions/vec3"},
          "fixed": {"type": "boolean"}
        }
      }
    },
    "selected_cubes": {"type": "array", "items": {"type": "string"}},
    "selected_hinges": {"type": "array", "items": {"type": "string"}},
    "hinge_map": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["cube1_id", "cube2_id", "edge"],
        "properties": {
          "cube1_id": {"type": "string"},
          "cube2_id": {"type": "string"},
          "edge": {"enum": ["front", "back", "left", "right", "corner"]},
          "position": {"$ref": "#/definitions/vec3"}
        }
      }
    }
  },
  "definitions": {
    "vec3": {
      "type": "array",
      "items": {"type": "number"},
      "minItems": 3,
      "maxItems": 3
    }
  }
}`

var schema = jsonschema.MustCompileString("scene_state.schema.json", schemaText)

// Validate checks a blob against the scene schema.
func Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
