package variant

import (
	"fmt"
	"strings"
)

// Kind identifies which value a Variant currently holds.
type Kind uint8

// Scalar kinds. Vector kinds are derived from the numeric scalar kinds with
// Vector, and occupy the ranges above vecStride.
const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	WString
	Device
	Environment

	vecStride Kind = 32
)

// Commonly used vector kinds.
const (
	Int32x2   = Int32 + 2*vecStride
	Int32x3   = Int32 + 3*vecStride
	Int32x4   = Int32 + 4*vecStride
	Uint32x2  = Uint32 + 2*vecStride
	Uint32x3  = Uint32 + 3*vecStride
	Uint32x4  = Uint32 + 4*vecStride
	Float32x2 = Float32 + 2*vecStride
	Float32x3 = Float32 + 3*vecStride
	Float32x4 = Float32 + 4*vecStride
	Float64x2 = Float64 + 2*vecStride
	Float64x3 = Float64 + 3*vecStride
	Float64x4 = Float64 + 4*vecStride
)

var scalarNames = [...]string{
	Invalid:     "invalid",
	Bool:        "bool",
	Int8:        "int8",
	Int16:       "int16",
	Int32:       "int32",
	Int64:       "int64",
	Uint8:       "uint8",
	Uint16:      "uint16",
	Uint32:      "uint32",
	Uint64:      "uint64",
	Float32:     "float32",
	Float64:     "float64",
	String:      "string",
	WString:     "wstring",
	Device:      "device",
	Environment: "environment",
}

// aliases are the additional type tags accepted by ParseKind.
var aliases = map[string]Kind{
	"boolean": Bool,
	"byte":    Uint8,
	"char":    Int8,
	"short":   Int16,
	"int":     Int32,
	"long":    Int64,
	"ushort":  Uint16,
	"uint":    Uint32,
	"ulong":   Uint64,
	"float":   Float32,
	"double":  Float64,
	"utf8":    String,
	"wide":    WString,
}

// Vector returns the vector kind with n components of the numeric scalar
// kind elem. It returns Invalid for anything else.
func Vector(elem Kind, n int) Kind {
	if !elem.IsNumeric() || elem.IsVector() || n < 2 || n > 4 {
		return Invalid
	}
	return elem + Kind(n)*vecStride
}

// Elem returns the component kind of a vector kind, or k itself for scalars.
func (k Kind) Elem() Kind {
	return k % vecStride
}

// Components returns the number of vector components, 1 for scalars and 0
// for Invalid.
func (k Kind) Components() int {
	if k == Invalid {
		return 0
	}
	if n := int(k / vecStride); n >= 2 {
		return n
	}
	return 1
}

// IsVector reports whether k is one of the fixed-length vector kinds.
func (k Kind) IsVector() bool {
	return k >= 2*vecStride && k.Elem().IsNumeric()
}

// IsNumeric reports whether k is a scalar integer or floating point kind.
func (k Kind) IsNumeric() bool {
	return k >= Int8 && k <= Float64
}

// IsInteger reports whether k is a scalar integer kind.
func (k Kind) IsInteger() bool {
	return k >= Int8 && k <= Uint64
}

// IsSigned reports whether k is a scalar signed integer kind.
func (k Kind) IsSigned() bool {
	return k >= Int8 && k <= Int64
}

// IsFloat reports whether k is a scalar floating point kind.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// IsText reports whether k holds a narrow or wide string.
func (k Kind) IsText() bool {
	return k == String || k == WString
}

// IsHandle reports whether k holds an externally owned handle.
func (k Kind) IsHandle() bool {
	return k == Device || k == Environment
}

// Valid reports whether k names a kind a Variant can hold.
func (k Kind) Valid() bool {
	if k.IsVector() {
		return k.Components() <= 4
	}
	return k > Invalid && k <= Environment
}

// String returns the type tag of k, such as "uint32" or "float32x3".
func (k Kind) String() string {
	if k.IsVector() && k.Valid() {
		return fmt.Sprintf("%sx%d", scalarNames[k.Elem()], k.Components())
	}
	if k <= Environment {
		return scalarNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a textual type tag to its Kind. Tags are case-insensitive;
// vector tags append "xN" to a numeric tag, e.g. "float32x3" or "uintx2".
func ParseKind(tag string) (Kind, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if k, ok := lookupScalar(tag); ok {
		return k, nil
	}
	if i := strings.LastIndexByte(tag, 'x'); i > 0 && i == len(tag)-2 {
		n := int(tag[i+1] - '0')
		if elem, ok := lookupScalar(tag[:i]); ok {
			if k := Vector(elem, n); k != Invalid {
				return k, nil
			}
		}
	}
	return Invalid, fmt.Errorf("%w: unknown type tag %q", ErrUnknownKind, tag)
}

func lookupScalar(tag string) (Kind, bool) {
	for k, name := range scalarNames {
		if k != int(Invalid) && name == tag {
			return Kind(k), true
		}
	}
	k, ok := aliases[tag]
	return k, ok
}
