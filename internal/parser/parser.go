package parser

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/models"
	"github.com/mcncl/pollinate/internal/schema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FormatFromPath picks the schema format from a file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) models.SchemaFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return models.FormatYAML
	case ".toml":
		return models.FormatTOML
	default:
		return models.FormatJSON
	}
}

// Parse reads a schema document in the given format
func Parse(reader io.Reader, format models.SchemaFormat) (models.SchemaDocument, error) {
	value, err := Decode(reader, format)
	if err != nil {
		return models.SchemaDocument{}, err
	}
	doc, err := SchemaFromValue(value)
	if err != nil {
		return models.SchemaDocument{}, err
	}
	doc.Format = format
	return doc, nil
}

// Decode reads one value in the given format and normalizes it to model types
func Decode(reader io.Reader, format models.SchemaFormat) (models.JSONValue, error) {
	switch format {
	case models.FormatJSON, "":
		return decodeJSON(reader)
	case models.FormatYAML:
		return decodeYAML(reader)
	case models.FormatTOML:
		return decodeTOML(reader)
	}
	return nil, errors.NewParsingError(fmt.Sprintf("schema format %q", format), errors.ErrUnsupportedFormat)
}

func decodeJSON(reader io.Reader) (models.JSONValue, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read JSON input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // keep integers exact

	var rootValue interface{}
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.As(err, &unmarshalTypeError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
				errors.ErrInvalidJSON,
			)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %v", err), errors.ErrInvalidJSON)
	}

	// Anything but whitespace after the first value is rejected
	if decoder.More() {
		var trailingValue interface{}
		if err := decoder.Decode(&trailingValue); err != nil {
			if !stderrors.Is(err, io.EOF) {
				return nil, errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
			}
		} else {
			return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
	}

	return normalize(rootValue), nil
}

func decodeYAML(reader io.Reader) (models.JSONValue, error) {
	decoder := yaml.NewDecoder(reader)

	var rootValue interface{}
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError("failed to decode YAML", err)
	}

	var trailingValue interface{}
	if err := decoder.Decode(&trailingValue); !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleJSON)
	}

	return normalize(rootValue), nil
}

func decodeTOML(reader io.Reader) (models.JSONValue, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read TOML input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	rootValue := map[string]interface{}{}
	if err := toml.Unmarshal(data, &rootValue); err != nil {
		var decodeErr *toml.DecodeError
		if stderrors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, errors.NewParsingError(fmt.Sprintf("TOML syntax error at line %d, column %d", row, col), err)
		}
		return nil, errors.NewParsingError("failed to decode TOML", err)
	}
	return normalize(rootValue), nil
}

// normalize converts decoded values into model types. Integers of any width
// become int64; JSON numbers stay json.Number.
func normalize(val interface{}) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(models.JSONObject, len(v))
		for key, value := range v {
			obj[key] = normalize(value)
		}
		return obj
	case map[interface{}]interface{}:
		obj := make(models.JSONObject, len(v))
		for key, value := range v {
			obj[fmt.Sprint(key)] = normalize(value)
		}
		return obj
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = normalize(value)
		}
		return arr
	case int:
		return int64(v)
	case uint64:
		if i, ok := schema.AsInt64(v); ok {
			return i
		}
		return v
	default:
		return v
	}
}

// SchemaFromValue checks that v is a schema document: an object with a
// properties mapping.
func SchemaFromValue(v models.JSONValue) (models.SchemaDocument, error) {
	root, ok := v.(models.JSONObject)
	if !ok {
		return models.SchemaDocument{}, errors.NewSchemaError(
			"schema root must be an object",
			errors.NewFieldError("", "", fmt.Errorf("%w: got %T", errors.ErrInvalidField, v)),
		)
	}

	raw, ok := root[schema.FieldProperties]
	if !ok {
		return models.SchemaDocument{}, errors.NewSchemaError(
			"schema has no properties",
			errors.NewFieldError("", schema.FieldProperties, errors.ErrMissingProperties),
		)
	}
	props, ok := raw.(models.JSONObject)
	if !ok {
		return models.SchemaDocument{}, errors.NewSchemaError(
			"schema properties must be a mapping",
			errors.NewFieldError("", schema.FieldProperties, fmt.Errorf("%w: got %T", errors.ErrMissingProperties, raw)),
		)
	}

	return models.SchemaDocument{
		Source:     "<string>",
		Format:     models.FormatJSON,
		Root:       root,
		Properties: props,
	}, nil
}

// ParseString parses a JSON schema from a string
func ParseString(jsonString string) (models.SchemaDocument, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.SchemaDocument{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString), models.FormatJSON)
}

// ParseFile parses a schema file, choosing the format from its extension
func ParseFile(filePath string) (models.SchemaDocument, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.SchemaDocument{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.SchemaDocument{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.SchemaDocument{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.SchemaDocument{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.SchemaDocument{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	doc, err := Parse(file, FormatFromPath(filePath))
	if err != nil {
		return models.SchemaDocument{}, err
	}
	doc.Source = filePath
	return doc, nil
}

// LoadSchema loads the schema named on the command line
func LoadSchema(path string) (models.SchemaDocument, error) {
	if strings.TrimSpace(path) == "" {
		return models.SchemaDocument{}, errors.NewInputError("no schema given", errors.ErrNoInput)
	}
	return ParseFile(path)
}
