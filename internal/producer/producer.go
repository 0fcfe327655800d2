// Package producer defines the value producers that a compiled schema is made of.
//
// A Producer is one of four variants: Discrete, Ranged, Array or Object. The set
// is closed; Sample switches over it. Producers are immutable once constructed and
// carry no randomness of their own, so a single tree can be sampled from many
// goroutines as long as each goroutine brings its own Source.
package producer

import (
	"fmt"
	"sort"

	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/models"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind identifies a producer variant.
type Kind int

const (
	_ Kind = iota // zero value is not a valid kind

	KindDiscrete
	KindRanged
	KindArray
	KindObject
)

// Producer is a node of a compiled schema. Only the variants in this package
// implement it.
type Producer interface {
	Kind() Kind
	isProducer()
}

// Discrete picks uniformly from a fixed, non-empty set of candidates.
type Discrete struct {
	values []models.JSONValue
}

// NewDiscrete copies values into a new Discrete producer.
func NewDiscrete(values []models.JSONValue) (*Discrete, error) {
	if len(values) == 0 {
		return nil, errors.NewProducerError("discrete producer needs at least one candidate", errors.ErrEmptyEnum)
	}
	owned := make([]models.JSONValue, len(values))
	for i, v := range values {
		owned[i] = models.Clone(v)
	}
	return &Discrete{values: owned}, nil
}

func (*Discrete) Kind() Kind { return KindDiscrete }
func (*Discrete) isProducer() {}

// Values returns a copy of the candidate set.
func (d *Discrete) Values() []models.JSONValue {
	out := make([]models.JSONValue, len(d.values))
	for i, v := range d.values {
		out[i] = models.Clone(v)
	}
	return out
}

// Ranged picks uniformly from the closed integer interval [min, max].
type Ranged struct {
	min, max int64
}

// NewRanged returns a producer for [min, max]. Both bounds are inclusive.
func NewRanged(min, max int64) (*Ranged, error) {
	if min > max {
		return nil, errors.NewProducerError(
			fmt.Sprintf("ranged producer has minimum %d above maximum %d", min, max),
			errors.ErrInvertedRange,
		)
	}
	return &Ranged{min: min, max: max}, nil
}

func (*Ranged) Kind() Kind { return KindRanged }
func (*Ranged) isProducer() {}

func (r *Ranged) Min() int64 { return r.min }
func (r *Ranged) Max() int64 { return r.max }

// Array samples a length in [min, max] and then that many elements.
type Array struct {
	min, max int
	element  Producer
}

// NewArray returns a producer for sequences of min to max elements (inclusive).
func NewArray(min, max int, element Producer) (*Array, error) {
	if element == nil {
		return nil, errors.NewProducerError("array producer needs an element producer", errors.ErrNilProducer)
	}
	if min < 0 {
		return nil, errors.NewProducerError(
			fmt.Sprintf("array producer has negative minimum %d", min),
			errors.ErrInvertedRange,
		)
	}
	if min > max {
		return nil, errors.NewProducerError(
			fmt.Sprintf("array producer has minimum %d above maximum %d", min, max),
			errors.ErrInvertedRange,
		)
	}
	return &Array{min: min, max: max, element: element}, nil
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) isProducer() {}

func (a *Array) Min() int           { return a.min }
func (a *Array) Max() int           { return a.max }
func (a *Array) Element() Producer { return a.element }

// Field is one named member of an Object.
type Field struct {
	Name     string
	Producer Producer
}

// Object produces one value per declared field.
type Object struct {
	fields []Field // sorted by Name
}

// NewObject builds an Object from a name to producer mapping. The mapping may
// be empty, in which case the object samples to {}.
func NewObject(fields map[string]Producer) (*Object, error) {
	sorted := make([]Field, 0, len(fields))
	for name, p := range fields {
		if p == nil {
			return nil, errors.NewProducerError(
				fmt.Sprintf("object field %q has no producer", name),
				errors.ErrNilProducer,
			)
		}
		sorted = append(sorted, Field{Name: name, Producer: p})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return &Object{fields: sorted}, nil
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) isProducer() {}

// Fields returns the fields in sampling order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// Len returns the number of declared fields.
func (o *Object) Len() int { return len(o.fields) }

// Field looks up a field producer by name.
func (o *Object) Field(name string) (Producer, bool) {
	i := sort.Search(len(o.fields), func(i int) bool { return o.fields[i].Name >= name })
	if i < len(o.fields) && o.fields[i].Name == name {
		return o.fields[i].Producer, true
	}
	return nil, false
}
