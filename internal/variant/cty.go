package variant

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts v into its cty equivalent. Numbers become cty.Number,
// strings cty.String and vectors a cty list of numbers. Handles have no
// cty form and fail with ErrBadCast.
func ToCty(v Variant) (cty.Value, error) {
	switch {
	case v.kind == Invalid:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case v.kind.IsHandle():
		return cty.NilVal, badCast(v.kind, Invalid)
	case v.kind.IsVector():
		rv := reflect.ValueOf(v.val)
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			elems[i] = scalarToCty(rv.Index(i))
		}
		return cty.ListVal(elems), nil
	}
	return scalarToCty(reflect.ValueOf(v.val)), nil
}

func scalarToCty(rv reflect.Value) cty.Value {
	switch {
	case rv.Kind() == reflect.Bool:
		return cty.BoolVal(rv.Bool())
	case rv.Kind() == reflect.String:
		return cty.StringVal(rv.String())
	case rv.CanInt():
		return cty.NumberIntVal(rv.Int())
	case rv.CanUint():
		return cty.NumberUIntVal(rv.Uint())
	case rv.CanFloat():
		return cty.NumberFloatVal(rv.Float())
	}
	return cty.NilVal
}

// FromCty builds a Variant of kind k from a parsed configuration value.
// Strings holding numbers or booleans are converted; numbers that do not
// fit the target width are rejected. Vector kinds expect a list or tuple
// with exactly Components() elements.
func FromCty(val cty.Value, k Kind) (Variant, error) {
	if val.IsNull() || !val.IsKnown() {
		return Variant{}, fmt.Errorf("%w: null or unknown value for %s", ErrBadCast, k)
	}
	t := TypeOf(k)
	if t == nil || k.IsHandle() {
		return Variant{}, fmt.Errorf("%w: %s cannot be read from configuration", ErrUnknownKind, k)
	}

	dst := reflect.New(t).Elem()
	if k.IsVector() {
		ty := val.Type()
		if !ty.IsListType() && !ty.IsTupleType() {
			return Variant{}, fmt.Errorf("%w: %s needs a list of %d numbers, got %s", ErrBadCast, k, k.Components(), ty.FriendlyName())
		}
		if n := val.LengthInt(); n != k.Components() {
			return Variant{}, fmt.Errorf("%w: %s needs %d components, got %d", ErrBadCast, k, k.Components(), n)
		}
		for i, elem := range val.AsValueSlice() {
			if err := decodeScalar(elem, k.Elem(), dst.Index(i)); err != nil {
				return Variant{}, fmt.Errorf("component %d: %w", i, err)
			}
		}
		return Variant{kind: k, val: dst.Interface()}, nil
	}

	if err := decodeScalar(val, k, dst); err != nil {
		return Variant{}, err
	}
	return Variant{kind: k, val: dst.Interface()}, nil
}

func decodeScalar(val cty.Value, k Kind, dst reflect.Value) error {
	want := cty.Number
	switch {
	case k == Bool:
		want = cty.Bool
	case k.IsText():
		want = cty.String
	}

	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("%w: cannot convert %s to %s: %v", ErrBadCast, val.Type().FriendlyName(), k, err)
	}
	if k == WString {
		dst.SetString(converted.AsString())
		return nil
	}
	if err := gocty.FromCtyValue(converted, dst.Addr().Interface()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadCast, k, err)
	}
	return nil
}
