package models

// JSONValue is a generic type to represent any JSON-like value.
// This can be a string, number, boolean, null, object, or array.
type JSONValue interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// SchemaFormat identifies the text format a schema was read from.
type SchemaFormat string

const (
	FormatJSON SchemaFormat = "json"
	FormatYAML SchemaFormat = "yaml"
	FormatTOML SchemaFormat = "toml"
)

// SchemaDocument is a loaded schema file. The document itself is treated as an
// implicit object schema whose fields are listed under Properties.
type SchemaDocument struct {
	Source     string // path or "<string>"
	Format     SchemaFormat
	Root       JSONObject
	Properties JSONObject
}

// Clone returns a deep copy of v. Objects and arrays are copied recursively;
// primitives are returned as is.
func Clone(v JSONValue) JSONValue {
	switch val := v.(type) {
	case JSONObject:
		out := make(JSONObject, len(val))
		for k, item := range val {
			out[k] = Clone(item)
		}
		return out
	case JSONArray:
		out := make(JSONArray, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}
