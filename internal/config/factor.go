package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/vk/gridbench/internal/factor"
	"github.com/vk/gridbench/internal/variant"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrInvalidFactor is returned for malformed factor declarations.
var ErrInvalidFactor = errors.New("invalid factor declaration")

// Range is the declaration of a ranged factor. Begin and Step are read with
// the factor's type; Count must be a positive whole number.
type Range struct {
	Begin cty.Value
	Step  cty.Value
	Count cty.Value
}

// RangeFromObject reads a Range from an object with begin, step and count
// attributes.
func RangeFromObject(obj cty.Value) (*Range, error) {
	if obj.IsNull() || !obj.IsKnown() || !(obj.Type().IsObjectType() || obj.Type().IsMapType()) {
		return nil, fmt.Errorf("%w: range must be an object with begin, step and count", ErrInvalidFactor)
	}
	attrs := obj.AsValueMap()
	r := &Range{}
	for name, dst := range map[string]*cty.Value{"begin": &r.Begin, "step": &r.Step, "count": &r.Count} {
		v, ok := attrs[name]
		if !ok || v.IsNull() {
			return nil, fmt.Errorf("%w: range is missing %q", ErrInvalidFactor, name)
		}
		*dst = v
	}
	return r, nil
}

// BuildFactor turns a typed declaration into a factor. Exactly one of values
// (a list or tuple) and rng must be given.
func BuildFactor(name, typeTag string, values cty.Value, rng *Range) (factor.Factor, error) {
	if name == "" {
		return factor.Factor{}, fmt.Errorf("%w: factor has no name", ErrInvalidFactor)
	}
	kind, err := variant.ParseKind(typeTag)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("factor %q: %w", name, err)
	}
	hasValues := values != cty.NilVal && !values.IsNull()
	switch {
	case hasValues && rng != nil:
		return factor.Factor{}, fmt.Errorf("%w: factor %q sets both values and range", ErrInvalidFactor, name)
	case rng != nil:
		return buildRange(name, kind, rng)
	case hasValues:
		return buildValues(name, kind, values)
	default:
		return factor.Factor{}, fmt.Errorf("%w: factor %q needs values or a range", ErrInvalidFactor, name)
	}
}

func buildValues(name string, kind variant.Kind, values cty.Value) (factor.Factor, error) {
	ty := values.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return factor.Factor{}, fmt.Errorf("%w: values of factor %q must be a list, got %s", ErrInvalidFactor, name, ty.FriendlyName())
	}
	manifestations := make([]variant.Variant, 0, values.LengthInt())
	for i, elem := range values.AsValueSlice() {
		v, err := variant.FromCty(elem, kind)
		if err != nil {
			return factor.Factor{}, fmt.Errorf("factor %q value %d: %w", name, i, err)
		}
		manifestations = append(manifestations, v)
	}
	f, err := factor.FromManifestations(name, manifestations...)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("%w: %v", ErrInvalidFactor, err)
	}
	return f, nil
}

func buildRange(name string, kind variant.Kind, rng *Range) (factor.Factor, error) {
	if kind.IsVector() || !kind.IsNumeric() {
		return factor.Factor{}, fmt.Errorf("%w: range factor %q must have a numeric scalar type, got %s", ErrInvalidFactor, name, kind)
	}
	begin, err := variant.FromCty(rng.Begin, kind)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("factor %q begin: %w", name, err)
	}
	step, err := variant.FromCty(rng.Step, kind)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("factor %q step: %w", name, err)
	}
	countVal, err := convert.Convert(rng.Count, cty.Number)
	if err != nil {
		return factor.Factor{}, fmt.Errorf("%w: factor %q count: %v", ErrInvalidFactor, name, err)
	}
	var count int64
	if err := gocty.FromCtyValue(countVal, &count); err != nil {
		return factor.Factor{}, fmt.Errorf("%w: factor %q count: %v", ErrInvalidFactor, name, err)
	}
	if count < 1 || count > math.MaxInt32 {
		return factor.Factor{}, fmt.Errorf("%w: factor %q count %d out of range", ErrInvalidFactor, name, count)
	}
	f, err := factor.FromRange(name, begin, step, int(count))
	if err != nil {
		return factor.Factor{}, fmt.Errorf("%w: %v", ErrInvalidFactor, err)
	}
	return f, nil
}
