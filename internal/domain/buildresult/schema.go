// Where: cli/internal/domain/buildresult/schema.go
// What: JSON schema for build manifest elements.
// Why: Reject malformed entries with a precise message instead of a half-read manifest.
package buildresult

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaURL = "build_result.schema.json"

const manifestSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "builds": {
      "type": "array",
      "items": {
        "oneOf": [
          {"type": "string", "minLength": 1},
          {
            "type": "object",
            "required": ["tag"],
            "properties": {
              "tag": {"type": "string", "minLength": 1},
              "imageName": {"type": "string"}
            }
          }
        ]
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString(manifestSchemaURL, manifestSchemaText)
	})
	return compiledSchema, schemaErr
}
