package config

import (
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema describing the config file.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "pollinate configuration"
	schema.Description = "Schema for .pollinate.yml and .pollinate.toml files."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
