// Package schema provides a typed, location-aware view over one schema node.
//
// A node is a generic object carrying a "type" tag plus type-specific fields.
// Accessors report problems as *errors.SchemaError values naming the node's
// location and the offending field.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/models"
)

// Type is a schema type tag
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema field names
const (
	FieldType       = "type"
	FieldEnum       = "enum"
	FieldMinimum    = "minimum"
	FieldMaximum    = "maximum"
	FieldItems      = "items"
	FieldProperties = "properties"
)

// ParseType maps a tag to a known Type.
func ParseType(tag string) (Type, bool) {
	switch Type(tag) {
	case TypeString, TypeInteger, TypeArray, TypeObject:
		return Type(tag), true
	}
	return "", false
}

// Node is one schema node and where it sits in the document.
type Node struct {
	path string
	raw  models.JSONObject
}

// NewNode wraps v, which must be an object, as the node at path.
func NewNode(path string, v models.JSONValue) (Node, error) {
	obj, ok := asObject(v)
	if !ok {
		return Node{}, errors.NewFieldError(path, "", fmt.Errorf("%w: schema node must be an object, got %s", errors.ErrInvalidField, describe(v)))
	}
	return Node{path: path, raw: obj}, nil
}

// Path returns the dotted location of the node, e.g. "properties.address.items".
func (n Node) Path() string { return n.path }

// Raw returns the underlying object.
func (n Node) Raw() models.JSONObject { return n.raw }

// Has reports whether field is present.
func (n Node) Has(field string) bool {
	_, ok := n.raw[field]
	return ok
}

// Type returns the node's type tag. A missing, non-string or unrecognised tag
// is an ErrUnknownType error.
func (n Node) Type() (Type, error) {
	v, ok := n.raw[FieldType]
	if !ok {
		return "", n.fieldError(FieldType, errors.ErrUnknownType)
	}
	tag, ok := v.(string)
	if !ok {
		return "", n.fieldError(FieldType, fmt.Errorf("%w: type tag must be a string, got %s", errors.ErrUnknownType, describe(v)))
	}
	t, ok := ParseType(tag)
	if !ok {
		return "", n.fieldError(FieldType, fmt.Errorf("%w: %q", errors.ErrUnknownType, tag))
	}
	return t, nil
}

// Int reads an integer field. The bool result is false when the field is absent.
func (n Node) Int(field string) (int64, bool, error) {
	v, ok := n.raw[field]
	if !ok {
		return 0, false, nil
	}
	i, ok := AsInt64(v)
	if !ok {
		return 0, true, n.fieldError(field, fmt.Errorf("%w: expected an integer, got %s", errors.ErrInvalidField, describe(v)))
	}
	return i, true, nil
}

// IntEnum reads a sequence of integers.
func (n Node) IntEnum(field string) ([]int64, bool, error) {
	items, present, err := n.sequence(field)
	if !present || err != nil {
		return nil, present, err
	}
	out := make([]int64, len(items))
	for i, item := range items {
		v, ok := AsInt64(item)
		if !ok {
			return nil, true, n.fieldError(field, fmt.Errorf("%w: element %d is not an integer, got %s", errors.ErrInvalidField, i, describe(item)))
		}
		out[i] = v
	}
	return out, true, nil
}

// StringEnum reads a sequence of strings.
func (n Node) StringEnum(field string) ([]string, bool, error) {
	items, present, err := n.sequence(field)
	if !present || err != nil {
		return nil, present, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, true, n.fieldError(field, fmt.Errorf("%w: element %d is not a string, got %s", errors.ErrInvalidField, i, describe(item)))
		}
		out[i] = s
	}
	return out, true, nil
}

// Child returns the nested node stored under field.
func (n Node) Child(field string) (Node, bool, error) {
	v, ok := n.raw[field]
	if !ok {
		return Node{}, false, nil
	}
	child, err := NewNode(join(n.path, field), v)
	if err != nil {
		return Node{}, true, err
	}
	return child, true, nil
}

// NamedNode is one entry of a properties mapping.
type NamedNode struct {
	Name string
	Node Node
}

// Properties returns the entries of the properties mapping sorted by name.
func (n Node) Properties() ([]NamedNode, bool, error) {
	v, ok := n.raw[FieldProperties]
	if !ok {
		return nil, false, nil
	}
	props, ok := asObject(v)
	if !ok {
		return nil, true, n.fieldError(FieldProperties, fmt.Errorf("%w: expected a mapping, got %s", errors.ErrInvalidField, describe(v)))
	}
	return namedNodes(join(n.path, FieldProperties), props)
}

// PropertiesOf returns the named nodes of a bare properties mapping located at path.
func PropertiesOf(path string, props models.JSONObject) ([]NamedNode, error) {
	out, _, err := namedNodes(path, props)
	return out, err
}

func namedNodes(path string, props models.JSONObject) ([]NamedNode, bool, error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NamedNode, 0, len(names))
	for _, name := range names {
		child, err := NewNode(join(path, name), props[name])
		if err != nil {
			return nil, true, err
		}
		out = append(out, NamedNode{Name: name, Node: child})
	}
	return out, true, nil
}

func (n Node) sequence(field string) ([]models.JSONValue, bool, error) {
	v, ok := n.raw[field]
	if !ok {
		return nil, false, nil
	}
	switch arr := v.(type) {
	case models.JSONArray:
		return arr, true, nil
	case []interface{}:
		out := make(models.JSONArray, len(arr))
		for i, item := range arr {
			out[i] = item
		}
		return out, true, nil
	}
	return nil, true, n.fieldError(field, fmt.Errorf("%w: expected a sequence, got %s", errors.ErrInvalidField, describe(v)))
}

func (n Node) fieldError(field string, err error) error {
	return errors.NewFieldError(n.path, field, err)
}

// AsInt64 converts integral numbers of any decoded representation to int64.
// Fractional values, values outside the int64 range and non-numbers are rejected.
func AsInt64(v models.JSONValue) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	}
	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	// 2^63 is exactly representable; anything at or above it overflows
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asObject(v models.JSONValue) (models.JSONObject, bool) {
	switch obj := v.(type) {
	case models.JSONObject:
		return obj, true
	case map[string]interface{}:
		out := make(models.JSONObject, len(obj))
		for k, item := range obj {
			out[k] = item
		}
		return out, true
	}
	return nil, false
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func describe(v models.JSONValue) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case models.JSONObject, map[string]interface{}:
		return "object"
	case models.JSONArray, []interface{}:
		return "array"
	}
	if _, ok := v.(json.Number); ok {
		return fmt.Sprintf("number %s", v)
	}
	return fmt.Sprintf("%v", v)
}
