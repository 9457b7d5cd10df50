package variant

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// As converts the live value of v to T.
//
// Numeric and boolean kinds convert between each other with Go conversion
// semantics (truncation, wrap-around). Strings parse into numbers and
// booleans; a string that does not parse yields the zero T without error.
// Every kind converts to String and WString through its display form.
// Vectors convert component-wise to vectors of the same length. Anything
// else, including an empty Variant, fails with ErrBadCast.
func As[T Value](v Variant) (T, error) {
	var out T
	if x, ok := v.val.(T); ok {
		return x, nil
	}
	target := KindFor[T]()
	dst := reflect.ValueOf(&out).Elem()
	if err := convertInto(v, target, dst); err != nil {
		return out, err
	}
	return out, nil
}

// MustAs is like As but panics on a bad cast.
func MustAs[T Value](v Variant) T {
	x, err := As[T](v)
	if err != nil {
		panic(err)
	}
	return x
}

// Convert returns v converted to kind k, following the rules of As.
func Convert(v Variant, k Kind) (Variant, error) {
	if v.kind == k {
		return v, nil
	}
	t := TypeOf(k)
	if t == nil {
		return Variant{}, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	dst := reflect.New(t).Elem()
	if err := convertInto(v, k, dst); err != nil {
		return Variant{}, err
	}
	return Variant{kind: k, val: dst.Interface()}, nil
}

func badCast(from, to Kind) error {
	return fmt.Errorf("%w: cannot convert %s to %s", ErrBadCast, from, to)
}

func convertInto(v Variant, target Kind, dst reflect.Value) error {
	src := v.kind
	if src == Invalid {
		return badCast(src, target)
	}

	switch {
	case target.IsText():
		dst.SetString(v.String())
		return nil
	case target.IsHandle() || src.IsHandle():
		return badCast(src, target)
	case target.IsVector():
		if !src.IsVector() || src.Components() != target.Components() {
			return badCast(src, target)
		}
		sv := reflect.ValueOf(v.val)
		for i := 0; i < sv.Len(); i++ {
			setScalar(sv.Index(i), dst.Index(i))
		}
		return nil
	case src.IsVector():
		return badCast(src, target)
	case src.IsText():
		parseScalar(reflect.ValueOf(v.val).String(), dst)
		return nil
	}

	setScalar(reflect.ValueOf(v.val), dst)
	return nil
}

// setScalar stores the bool or numeric src into the bool or numeric dst.
func setScalar(src, dst reflect.Value) {
	switch dst.Kind() {
	case reflect.Bool:
		switch {
		case src.Kind() == reflect.Bool:
			dst.SetBool(src.Bool())
		case src.CanInt():
			dst.SetBool(src.Int() != 0)
		case src.CanUint():
			dst.SetBool(src.Uint() != 0)
		case src.CanFloat():
			dst.SetBool(src.Float() != 0)
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case src.Kind() == reflect.Bool:
			dst.SetInt(boolInt(src.Bool()))
		case src.CanInt():
			dst.SetInt(src.Int())
		case src.CanUint():
			dst.SetInt(int64(src.Uint()))
		case src.CanFloat():
			dst.SetInt(int64(src.Float()))
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch {
		case src.Kind() == reflect.Bool:
			dst.SetUint(uint64(boolInt(src.Bool())))
		case src.CanInt():
			dst.SetUint(uint64(src.Int()))
		case src.CanUint():
			dst.SetUint(src.Uint())
		case src.CanFloat():
			dst.SetUint(uint64(src.Float()))
		}
	case reflect.Float32, reflect.Float64:
		switch {
		case src.Kind() == reflect.Bool:
			dst.SetFloat(float64(boolInt(src.Bool())))
		case src.CanInt():
			dst.SetFloat(float64(src.Int()))
		case src.CanUint():
			dst.SetFloat(float64(src.Uint()))
		case src.CanFloat():
			dst.SetFloat(src.Float())
		}
	}
}

// parseScalar parses s into the bool or numeric dst, leaving dst at its zero
// value when s does not parse.
func parseScalar(s string, dst reflect.Value) {
	s = strings.TrimSpace(s)
	switch dst.Kind() {
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			dst.SetBool(b)
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(s, 0, dst.Type().Bits()); err == nil {
			dst.SetInt(n)
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(s, 0, dst.Type().Bits()); err == nil {
			dst.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, dst.Type().Bits()); err == nil {
			dst.SetFloat(f)
		}
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
