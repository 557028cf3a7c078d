package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request bodies are checked against JSON Schemas before decoding, so
// malformed submissions are rejected with a field-level reason instead of a
// bare unmarshal error.

const authorizationSchemaJSON = `{
  "type": "object",
  "required": ["authorization", "signature"],
  "additionalProperties": false,
  "properties": {
    "authorization": {
      "type": "object",
      "required": ["from", "to", "value", "validAfter", "validBefore", "nonce"],
      "additionalProperties": false,
      "properties": {
        "from": { "type": "string", "pattern": "^0x[0-9a-fA-F]{40}$" },
        "to": { "type": "string", "pattern": "^0x[0-9a-fA-F]{40}$" },
        "value": { "type": "string", "pattern": "^[0-9]+$" },
        "validAfter": { "type": "string", "pattern": "^[0-9]+$" },
        "validBefore": { "type": "string", "pattern": "^[0-9]+$" },
        "nonce": { "type": "string", "pattern": "^0x[0-9a-fA-F]{64}$" }
      }
    },
    "signature": { "type": "string", "pattern": "^0x[0-9a-fA-F]{130}$" }
  }
}`

const cancellationSchemaJSON = `{
  "type": "object",
  "required": ["cancellation", "signature"],
  "additionalProperties": false,
  "properties": {
    "cancellation": {
      "type": "object",
      "required": ["authorizer", "nonce"],
      "additionalProperties": false,
      "properties": {
        "authorizer": { "type": "string", "pattern": "^0x[0-9a-fA-F]{40}$" },
        "nonce": { "type": "string", "pattern": "^0x[0-9a-fA-F]{64}$" }
      }
    },
    "signature": { "type": "string", "pattern": "^0x[0-9a-fA-F]{130}$" }
  }
}`

var (
	authorizationSchema = gojsonschema.NewStringLoader(authorizationSchemaJSON)
	cancellationSchema  = gojsonschema.NewStringLoader(cancellationSchemaJSON)
)

// validateSchema checks body against schema and flattens any violations into
// a single error message.
func validateSchema(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if result.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return fmt.Errorf("request body does not match schema: %s", strings.Join(reasons, "; "))
}
