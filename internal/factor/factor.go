// Package factor defines named, ordered sequences of candidate values
// ("manifestations") for one experiment parameter.
//
// A Factor is either an explicit enumeration of variants or an arithmetic
// range (begin, step, count) whose manifestations are computed on demand.
// A third shape, Required, has no manifestations at all and is only used
// by benchmarks to declare factors the caller must supply.
package factor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/gridbench/internal/variant"
)

var (
	// ErrInvalidArgument is returned for empty names and empty enumerations.
	ErrInvalidArgument = errors.New("invalid factor")

	// ErrOutOfRange is returned when indexing past the last manifestation.
	ErrOutOfRange = errors.New("factor index out of range")
)

// Shape tells how a Factor produces its manifestations.
type Shape uint8

const (
	ShapeRequired Shape = iota
	ShapeEnumerated
	ShapeRanged
)

func (s Shape) String() string {
	switch s {
	case ShapeEnumerated:
		return "enumerated"
	case ShapeRanged:
		return "ranged"
	default:
		return "required"
	}
}

// Factor is a value type. Copies share only immutable state, so a copy is
// as good as a deep clone.
type Factor struct {
	name   string
	shape  Shape
	values []variant.Variant

	begin, step variant.Variant
	count       int
	at          func(i int) variant.Variant
}

// FromManifestations returns an enumerated factor over values, in order.
func FromManifestations(name string, values ...variant.Variant) (Factor, error) {
	if name == "" {
		return Factor{}, fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if len(values) == 0 {
		return Factor{}, fmt.Errorf("%w: factor %q has no manifestations", ErrInvalidArgument, name)
	}
	return Factor{
		name:   name,
		shape:  ShapeEnumerated,
		values: append([]variant.Variant(nil), values...),
	}, nil
}

// Of is a shorthand for an enumerated factor of plain Go values.
func Of[T variant.Value](name string, values ...T) (Factor, error) {
	vs := make([]variant.Variant, len(values))
	for i, x := range values {
		vs[i] = variant.Of(x)
	}
	return FromManifestations(name, vs...)
}

// FromSteps returns a ranged factor whose i-th manifestation is
// begin + i*step, computed in T. Overflow of T is not checked.
func FromSteps[T variant.Number](name string, begin, step T, count int) (Factor, error) {
	if name == "" {
		return Factor{}, fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if count < 1 {
		return Factor{}, fmt.Errorf("%w: factor %q needs a positive step count, got %d", ErrInvalidArgument, name, count)
	}
	return Factor{
		name:  name,
		shape: ShapeRanged,
		begin: variant.Of(begin),
		step:  variant.Of(step),
		count: count,
		at: func(i int) variant.Variant {
			return variant.Of(begin + T(i)*step)
		},
	}, nil
}

// FromRange is FromSteps for a begin and step known only at run time. Both
// must hold the same numeric scalar kind.
func FromRange(name string, begin, step variant.Variant, count int) (Factor, error) {
	if begin.Kind() != step.Kind() || !begin.Kind().IsNumeric() {
		return Factor{}, fmt.Errorf("%w: range of factor %q needs numeric begin and step of one kind, got %s and %s",
			ErrInvalidArgument, name, begin.Kind(), step.Kind())
	}
	switch begin.Kind() {
	case variant.Int8:
		return fromSteps[int8](name, begin, step, count)
	case variant.Int16:
		return fromSteps[int16](name, begin, step, count)
	case variant.Int32:
		return fromSteps[int32](name, begin, step, count)
	case variant.Int64:
		return fromSteps[int64](name, begin, step, count)
	case variant.Uint8:
		return fromSteps[uint8](name, begin, step, count)
	case variant.Uint16:
		return fromSteps[uint16](name, begin, step, count)
	case variant.Uint32:
		return fromSteps[uint32](name, begin, step, count)
	case variant.Uint64:
		return fromSteps[uint64](name, begin, step, count)
	case variant.Float32:
		return fromSteps[float32](name, begin, step, count)
	default:
		return fromSteps[float64](name, begin, step, count)
	}
}

func fromSteps[T variant.Number](name string, begin, step variant.Variant, count int) (Factor, error) {
	return FromSteps(name, variant.MustGet[T](begin), variant.MustGet[T](step), count)
}

// Required returns the zero-manifestation placeholder a benchmark uses to
// declare a factor the caller has to provide.
func Required(name string) Factor {
	return Factor{name: name, shape: ShapeRequired}
}

// Must panics if err is non-nil. It is meant for factors built from
// constants, such as benchmark defaults.
func Must(f Factor, err error) Factor {
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the factor name.
func (f Factor) Name() string { return f.name }

// Shape returns how f produces its manifestations.
func (f Factor) Shape() Shape { return f.shape }

// IsRequired reports whether f is a Required placeholder.
func (f Factor) IsRequired() bool { return f.shape == ShapeRequired }

// Len returns the number of manifestations.
func (f Factor) Len() int {
	switch f.shape {
	case ShapeEnumerated:
		return len(f.values)
	case ShapeRanged:
		return f.count
	}
	return 0
}

// At returns the i-th manifestation.
func (f Factor) At(i int) (variant.Variant, error) {
	if i < 0 || i >= f.Len() {
		return variant.Variant{}, fmt.Errorf("%w: %q[%d], size %d", ErrOutOfRange, f.name, i, f.Len())
	}
	if f.shape == ShapeRanged {
		return f.at(i), nil
	}
	return f.values[i], nil
}

// Values materialises every manifestation in order.
func (f Factor) Values() []variant.Variant {
	out := make([]variant.Variant, f.Len())
	for i := range out {
		out[i], _ = f.At(i)
	}
	return out
}

// Range returns the begin, step and count of a ranged factor. ok is false
// for other shapes.
func (f Factor) Range() (begin, step variant.Variant, count int, ok bool) {
	if f.shape != ShapeRanged {
		return variant.Variant{}, variant.Variant{}, 0, false
	}
	return f.begin, f.step, f.count, true
}

// Clone returns an independent copy of f.
func (f Factor) Clone() Factor {
	c := f
	c.values = append([]variant.Variant(nil), f.values...)
	return c
}

// Equal reports whether f and o have the same name and the same
// representation: equal manifestation lists for enumerations, equal begin,
// step and count for ranges.
func (f Factor) Equal(o Factor) bool {
	if f.name != o.name || f.shape != o.shape {
		return false
	}
	switch f.shape {
	case ShapeEnumerated:
		if len(f.values) != len(o.values) {
			return false
		}
		for i := range f.values {
			if !variant.Equal(f.values[i], o.values[i]) {
				return false
			}
		}
		return true
	case ShapeRanged:
		return f.count == o.count && variant.Equal(f.begin, o.begin) && variant.Equal(f.step, o.step)
	}
	return true
}

// String renders f as `name=[a, b, c]` or `name=range(begin, step, count)`.
func (f Factor) String() string {
	switch f.shape {
	case ShapeEnumerated:
		parts := make([]string, len(f.values))
		for i, v := range f.values {
			parts[i] = v.String()
		}
		return f.name + "=[" + strings.Join(parts, ", ") + "]"
	case ShapeRanged:
		return fmt.Sprintf("%s=range(%s, %s, %d)", f.name, f.begin, f.step, f.count)
	}
	return f.name + "=<required>"
}
