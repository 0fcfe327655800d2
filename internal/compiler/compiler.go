// Package compiler turns schema nodes into producer trees.
//
// Compilation is a recursive descent over the schema: Compile dispatches on the
// node's type tag to CompileString, CompileInteger, CompileArray or
// CompileObject, and the latter two recurse back into Compile for nested
// nodes. The first error aborts the walk; no partial tree is returned.
package compiler

import (
	stderrors "errors"
	"fmt"
	"math"

	"github.com/mcncl/pollinate/internal/config"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/logging"
	"github.com/mcncl/pollinate/internal/models"
	"github.com/mcncl/pollinate/internal/producer"
	"github.com/mcncl/pollinate/internal/schema"
	"github.com/sirupsen/logrus"
)

// Compiler compiles schema nodes using one configuration.
type Compiler struct {
	config *config.Config
	log    *logrus.Entry
}

// NewCompiler creates a Compiler with the default configuration.
func NewCompiler() *Compiler {
	return NewCompilerWithConfig(config.NewConfig())
}

// NewCompilerWithConfig creates a Compiler with custom configuration.
func NewCompilerWithConfig(cfg *config.Config) *Compiler {
	return &Compiler{
		config: cfg,
		log:    logging.NewLogger("compiler"),
	}
}

// CompileDocument compiles a loaded schema document. The document is treated
// as an object schema whose fields are its top-level properties.
func (c *Compiler) CompileDocument(doc models.SchemaDocument) (*producer.Object, error) {
	if doc.Properties == nil {
		return nil, errors.NewFieldError("", schema.FieldProperties, errors.ErrMissingProperties)
	}
	fields, err := schema.PropertiesOf(schema.FieldProperties, doc.Properties)
	if err != nil {
		return nil, err
	}
	root, err := c.compileFields(schema.FieldProperties, fields, 1)
	if err != nil {
		return nil, err
	}
	c.log.WithField("fields", root.Len()).Debug("Compiled schema document")
	return root, nil
}

// Compile compiles any node by dispatching on its type tag.
func (c *Compiler) Compile(node schema.Node) (producer.Producer, error) {
	return c.compile(node, 0)
}

// CompileInteger compiles an integer node. An enum wins over minimum/maximum.
func (c *Compiler) CompileInteger(node schema.Node) (producer.Producer, error) {
	values, hasEnum, err := node.IntEnum(schema.FieldEnum)
	if err != nil {
		return nil, err
	}
	if hasEnum {
		candidates := make([]models.JSONValue, len(values))
		for i, v := range values {
			candidates[i] = v
		}
		return newDiscrete(node, candidates)
	}

	min, _, err := c.intOr(node, schema.FieldMinimum, math.MinInt64)
	if err != nil {
		return nil, err
	}
	max, hasMax, err := c.intOr(node, schema.FieldMaximum, math.MaxInt64)
	if err != nil {
		return nil, err
	}

	if c.config.Schema.ReferenceBounds {
		// maximum is exclusive here, an absent maximum included
		if max == math.MinInt64 {
			return nil, errors.NewFieldError(node.Path(), schema.FieldMaximum,
				fmt.Errorf("%w: exclusive maximum %d leaves no values", errors.ErrInvertedRange, max))
		}
		max--
	}

	field := schema.FieldMinimum
	if hasMax {
		field = schema.FieldMaximum
	}
	r, err := producer.NewRanged(min, max)
	if err != nil {
		return nil, errors.NewFieldError(node.Path(), field, err)
	}
	return r, nil
}

// CompileString compiles a string node, which must declare an enum.
func (c *Compiler) CompileString(node schema.Node) (producer.Producer, error) {
	values, hasEnum, err := node.StringEnum(schema.FieldEnum)
	if err != nil {
		return nil, err
	}
	if !hasEnum {
		return nil, errors.NewFieldError(node.Path(), schema.FieldEnum,
			fmt.Errorf("%w: string schema must declare an enumeration", errors.ErrMissingField))
	}
	candidates := make([]models.JSONValue, len(values))
	for i, v := range values {
		candidates[i] = v
	}
	return newDiscrete(node, candidates)
}

// CompileArray compiles an array node: maximum and items are required,
// minimum defaults to zero.
func (c *Compiler) CompileArray(node schema.Node) (producer.Producer, error) {
	return c.compileArray(node, 0)
}

// CompileObject compiles an object node from its properties mapping.
func (c *Compiler) CompileObject(node schema.Node) (producer.Producer, error) {
	return c.compileObject(node, 0)
}

func (c *Compiler) compile(node schema.Node, depth int) (producer.Producer, error) {
	if depth > c.maxDepth() {
		return nil, errors.NewFieldError(node.Path(), "",
			fmt.Errorf("%w (%d)", errors.ErrMaxDepth, c.maxDepth()))
	}

	t, err := node.Type()
	if err != nil {
		return nil, err
	}

	switch t {
	case schema.TypeString:
		return c.CompileString(node)
	case schema.TypeInteger:
		return c.CompileInteger(node)
	case schema.TypeArray:
		return c.compileArray(node, depth)
	case schema.TypeObject:
		return c.compileObject(node, depth)
	}
	// Type only returns known tags
	return nil, errors.NewFieldError(node.Path(), schema.FieldType, errors.ErrUnknownType)
}

func (c *Compiler) compileArray(node schema.Node, depth int) (producer.Producer, error) {
	max, hasMax, err := node.Int(schema.FieldMaximum)
	if err != nil {
		return nil, err
	}
	if !hasMax {
		return nil, errors.NewFieldError(node.Path(), schema.FieldMaximum,
			fmt.Errorf("%w: arrays must declare a maximum length", errors.ErrMissingField))
	}
	min, _, err := c.intOr(node, schema.FieldMinimum, 0)
	if err != nil {
		return nil, err
	}
	for _, bound := range []struct {
		field string
		value int64
	}{{schema.FieldMinimum, min}, {schema.FieldMaximum, max}} {
		if bound.value < 0 || bound.value >= math.MaxInt32 {
			return nil, errors.NewFieldError(node.Path(), bound.field,
				fmt.Errorf("%w: array length bound %d out of range", errors.ErrInvalidField, bound.value))
		}
	}

	items, hasItems, err := node.Child(schema.FieldItems)
	if err != nil {
		return nil, err
	}
	if !hasItems {
		return nil, errors.NewFieldError(node.Path(), schema.FieldItems,
			fmt.Errorf("%w: arrays must declare an item schema", errors.ErrMissingField))
	}
	element, err := c.compile(items, depth+1)
	if err != nil {
		return nil, err
	}

	if c.config.Schema.ReferenceBounds {
		// one more element than the sampled cardinality
		min++
		max++
	}
	field := schema.FieldMaximum
	if min > max {
		field = schema.FieldMinimum
	}
	a, err := producer.NewArray(int(min), int(max), element)
	if err != nil {
		return nil, errors.NewFieldError(node.Path(), field, err)
	}
	return a, nil
}

func (c *Compiler) compileObject(node schema.Node, depth int) (producer.Producer, error) {
	fields, hasProps, err := node.Properties()
	if err != nil {
		return nil, err
	}
	if !hasProps {
		return nil, errors.NewFieldError(node.Path(), schema.FieldProperties,
			fmt.Errorf("%w: objects must declare properties", errors.ErrMissingField))
	}
	path := schema.FieldProperties
	if node.Path() != "" {
		path = node.Path() + "." + path
	}
	return c.compileFields(path, fields, depth+1)
}

func (c *Compiler) compileFields(path string, fields []schema.NamedNode, depth int) (*producer.Object, error) {
	producers := make(map[string]producer.Producer, len(fields))
	origin := make(map[string]string, len(fields))

	for _, f := range fields {
		if c.config.Schema.Permissive {
			if _, err := f.Node.Type(); err != nil && stderrors.Is(err, errors.ErrUnknownType) {
				c.log.WithField("field", f.Node.Path()).Debugf("Skipping field with unknown type: %v", err)
				continue
			}
		}

		p, err := c.compile(f.Node, depth)
		if err != nil {
			return nil, err
		}

		key := c.config.GetFieldName(f.Name)
		if prev, dup := origin[key]; dup {
			return nil, errors.NewFieldError(path, f.Name,
				fmt.Errorf("%w: %q and %q both map to %q", errors.ErrDuplicateField, prev, f.Name, key))
		}
		origin[key] = f.Name
		producers[key] = p
	}

	obj, err := producer.NewObject(producers)
	if err != nil {
		return nil, errors.NewFieldError(path, "", err)
	}
	return obj, nil
}

// intOr reads an optional integer field, falling back to def when absent.
func (c *Compiler) intOr(node schema.Node, field string, def int64) (int64, bool, error) {
	v, ok, err := node.Int(field)
	if err != nil {
		return 0, ok, err
	}
	if !ok {
		return def, false, nil
	}
	return v, true, nil
}

func (c *Compiler) maxDepth() int {
	if c.config.Schema.MaxDepth < 1 {
		return config.DefaultMaxDepth
	}
	return c.config.Schema.MaxDepth
}

func newDiscrete(node schema.Node, candidates []models.JSONValue) (producer.Producer, error) {
	d, err := producer.NewDiscrete(candidates)
	if err != nil {
		return nil, errors.NewFieldError(node.Path(), schema.FieldEnum, err)
	}
	return d, nil
}
