// Package variant implements the typed value held by every factor
// manifestation, configuration entry and benchmark result.
//
// A Variant holds exactly one value drawn from a closed set of kinds:
// booleans, 8 to 64 bit integers, 32 and 64 bit floats, narrow and wide
// strings, externally owned device and environment handles, and 2 to 4
// component vectors of every numeric kind. The zero Variant is empty.
package variant

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	// ErrKindMismatch is returned by Get when the requested type is not the
	// live kind.
	ErrKindMismatch = errors.New("variant kind mismatch")

	// ErrBadCast is returned by As when the live kind cannot be converted to
	// the requested type at all.
	ErrBadCast = errors.New("variant bad cast")

	// ErrUnknownKind is returned when a type tag or Go type has no Kind.
	ErrUnknownKind = errors.New("unknown variant kind")
)

// WideString is a wide string. It is stored as UTF-8 and only converted to
// UTF-16 at the boundary.
type WideString string

// UTF16 returns the UTF-16 code units of w.
func (w WideString) UTF16() []uint16 {
	return utf16.Encode([]rune(string(w)))
}

// Handle is an externally owned, reference-counted object such as a compute
// device. Variants never acquire or release the handles they carry.
type Handle interface {
	Name() string
}

// DeviceHandle wraps a Handle so it is stored with the Device kind.
type DeviceHandle struct{ Handle }

// EnvironmentHandle wraps a Handle so it is stored with the Environment kind.
type EnvironmentHandle struct{ Handle }

// Number is the set of numeric scalar types.
type Number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Scalar is the set of Go types stored by the scalar kinds.
type Scalar interface {
	bool | Number | string | WideString | DeviceHandle | EnvironmentHandle
}

// Vec is the set of Go array types stored by the vector kinds.
type Vec interface {
	[2]int8 | [3]int8 | [4]int8 |
		[2]int16 | [3]int16 | [4]int16 |
		[2]int32 | [3]int32 | [4]int32 |
		[2]int64 | [3]int64 | [4]int64 |
		[2]uint8 | [3]uint8 | [4]uint8 |
		[2]uint16 | [3]uint16 | [4]uint16 |
		[2]uint32 | [3]uint32 | [4]uint32 |
		[2]uint64 | [3]uint64 | [4]uint64 |
		[2]float32 | [3]float32 | [4]float32 |
		[2]float64 | [3]float64 | [4]float64
}

// Value is the set of Go types a Variant can hold.
type Value interface {
	Scalar | Vec
}

var (
	wstringType     = reflect.TypeFor[WideString]()
	deviceType      = reflect.TypeFor[DeviceHandle]()
	environmentType = reflect.TypeFor[EnvironmentHandle]()

	scalarTypes = map[Kind]reflect.Type{
		Bool:        reflect.TypeFor[bool](),
		Int8:        reflect.TypeFor[int8](),
		Int16:       reflect.TypeFor[int16](),
		Int32:       reflect.TypeFor[int32](),
		Int64:       reflect.TypeFor[int64](),
		Uint8:       reflect.TypeFor[uint8](),
		Uint16:      reflect.TypeFor[uint16](),
		Uint32:      reflect.TypeFor[uint32](),
		Uint64:      reflect.TypeFor[uint64](),
		Float32:     reflect.TypeFor[float32](),
		Float64:     reflect.TypeFor[float64](),
		String:      reflect.TypeFor[string](),
		WString:     wstringType,
		Device:      deviceType,
		Environment: environmentType,
	}

	kindsByType = func() map[reflect.Type]Kind {
		m := make(map[reflect.Type]Kind, len(scalarTypes))
		for k, t := range scalarTypes {
			m[t] = k
		}
		return m
	}()
)

// kindOf returns the Kind storing values of Go type t.
func kindOf(t reflect.Type) Kind {
	if k, ok := kindsByType[t]; ok {
		return k
	}
	if t.Kind() == reflect.Array {
		if elem, ok := kindsByType[t.Elem()]; ok {
			return Vector(elem, t.Len())
		}
	}
	return Invalid
}

// TypeOf returns the Go type stored by kind k, or nil if k is not valid.
func TypeOf(k Kind) reflect.Type {
	if !k.Valid() {
		return nil
	}
	if k.IsVector() {
		return reflect.ArrayOf(k.Components(), scalarTypes[k.Elem()])
	}
	return scalarTypes[k]
}

// KindFor returns the Kind that stores values of type T.
func KindFor[T Value]() Kind {
	return kindOf(reflect.TypeFor[T]())
}

// Variant is a tagged union over the supported kinds. Copies are
// independent: the stored value is immutable and handles are shared, never
// owned.
type Variant struct {
	kind Kind
	val  any
}

// Of returns a Variant holding x.
func Of[T Value](x T) Variant {
	return Variant{kind: KindFor[T](), val: x}
}

// Set replaces the live value of v with x.
func Set[T Value](v *Variant, x T) {
	*v = Of(x)
}

// Get returns the live value of v as T. It fails with ErrKindMismatch when
// T is not the Go type of the live kind.
func Get[T Value](v Variant) (T, error) {
	x, ok := v.val.(T)
	if !ok {
		var zero T
		return zero, &KindError{Want: KindFor[T](), Got: v.kind}
	}
	return x, nil
}

// MustGet is like Get but panics on a kind mismatch.
func MustGet[T Value](v Variant) T {
	x, err := Get[T](v)
	if err != nil {
		panic(err)
	}
	return x
}

// KindError describes a Get with the wrong kind.
type KindError struct {
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return "variant: requested " + e.Want.String() + " but holds " + e.Got.String()
}

// Unwrap lets errors.Is match ErrKindMismatch.
func (e *KindError) Unwrap() error { return ErrKindMismatch }

// Kind returns the live kind, Invalid for an empty Variant.
func (v Variant) Kind() Kind { return v.kind }

// Is reports whether k is the live kind.
func (v Variant) Is(k Kind) bool { return v.kind == k }

// IsEmpty reports whether v holds no value.
func (v Variant) IsEmpty() bool { return v.kind == Invalid }

// Interface returns the live value, or nil for an empty Variant.
func (v Variant) Interface() any { return v.val }

// Clear empties v.
func (v *Variant) Clear() { *v = Variant{} }

// Equal reports whether a and b hold the same kind and equal values.
// Variants of different kinds are never equal. Two NaNs of the same float
// kind are equal.
func Equal(a, b Variant) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Invalid:
		return true
	case Device:
		return sameHandle(a.val.(DeviceHandle).Handle, b.val.(DeviceHandle).Handle)
	case Environment:
		return sameHandle(a.val.(EnvironmentHandle).Handle, b.val.(EnvironmentHandle).Handle)
	}
	if a.val == b.val {
		return true
	}
	elem := a.kind
	if elem.IsVector() {
		elem = elem.Elem()
	}
	return elem.IsFloat() && sameFloats(reflect.ValueOf(a.val), reflect.ValueOf(b.val))
}

// sameFloats compares float scalars or vectors treating NaN as equal to
// NaN, so a NaN factor value does not show up in every change set.
func sameFloats(a, b reflect.Value) bool {
	if a.Kind() != reflect.Array {
		x, y := a.Float(), b.Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	}
	for i := range a.Len() {
		if !sameFloats(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

// Equal is the method form of Equal.
func (v Variant) Equal(o Variant) bool { return Equal(v, o) }

func sameHandle(a, b Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// String formats the live value for logs and result files. Vectors are
// written as "(x, y, z)" and an empty Variant as "".
func (v Variant) String() string {
	switch v.kind {
	case Invalid:
		return ""
	case String:
		return v.val.(string)
	case WString:
		return string(v.val.(WideString))
	case Device:
		return handleName(v.val.(DeviceHandle).Handle)
	case Environment:
		return handleName(v.val.(EnvironmentHandle).Handle)
	}
	rv := reflect.ValueOf(v.val)
	if v.kind.IsVector() {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatScalar(rv.Index(i))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return formatScalar(rv)
}

func handleName(h Handle) string {
	if h == nil {
		return "<nil>"
	}
	return h.Name()
}

func formatScalar(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	}
	return ""
}
