package memstore

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ArtifactDocumentSchema is the JSON schema every on-disk artifact file must
// satisfy before it is unmarshalled. Array fields allow null because empty
// Go slices serialize that way.
const ArtifactDocumentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["metadata", "artifact"],
	"properties": {
		"metadata": {
			"type": "object",
			"required": ["id", "created_at", "kind", "event_type"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"created_at": {"type": "string"},
				"session_id": {"type": "string"},
				"project_id": {"type": "string"},
				"kind": {"type": "string"},
				"event_type": {"type": "string", "minLength": 1},
				"tags": {"type": ["array", "null"], "items": {"type": "string"}},
				"source": {"type": "string"},
				"path": {"type": "string"},
				"summary": {"type": "string"},
				"extra": {"type": ["object", "null"]}
			}
		},
		"artifact": {
			"type": "object",
			"required": ["chunks", "symbols", "tokens", "dictionary", "fingerprint", "stats"],
			"properties": {
				"chunks": {"type": ["array", "null"], "items": {"type": ["string", "null"]}},
				"symbols": {"type": ["array", "null"], "items": {"type": "integer", "minimum": 0}},
				"tokens": {
					"type": ["array", "null"],
					"items": {
						"type": "object",
						"required": ["s"],
						"properties": {
							"s": {"type": "integer", "minimum": 0},
							"p": {"type": "integer", "minimum": 0},
							"ref": {"type": "boolean"}
						}
					}
				},
				"dictionary": {
					"type": "object",
					"properties": {
						"patterns": {
							"type": ["array", "null"],
							"items": {
								"type": "object",
								"required": ["id", "symbols"],
								"properties": {
									"id": {"type": "integer", "minimum": 0},
									"symbols": {"type": ["array", "null"], "items": {"type": "integer", "minimum": 0}},
									"occurrences": {"type": "integer"},
									"saved": {"type": "integer"}
								}
							}
						}
					}
				},
				"fingerprint": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
				"stats": {"type": "object"},
				"remainder": {"type": "string"}
			}
		}
	}
}`

var artifactSchemaLoader = gojsonschema.NewStringLoader(ArtifactDocumentSchema)

// ValidateArtifactDocument checks raw artifact file bytes against the
// document schema. Malformed JSON and schema violations both fail.
func ValidateArtifactDocument(data []byte) error {
	result, err := gojsonschema.Validate(artifactSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("artifact schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("artifact file is invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}
