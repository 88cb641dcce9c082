package ndarray

import (
	"fmt"
	"strconv"
	"strings"
)

// DType names the element type of an Array's backing buffer.
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
	Int32   DType = "int32"
	Int64   DType = "int64"
	// Int is the platform's native signed index width (numpy's intp).
	Int   DType = "int"
	Uint8 DType = "uint8"
	Bool  DType = "bool"
)

// Kind groups dtypes the way repair treats them.
type Kind int

const (
	KindOther Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "other"
	}
}

// Kind reports the repair group of d. Unsigned integers count as integers.
func (d DType) Kind() Kind {
	switch d {
	case Float32, Float64:
		return KindFloat
	case Int32, Int64, Int, Uint8:
		return KindInt
	default:
		return KindOther
	}
}

// Canonical returns the dtype repair converts d to.
func (d DType) Canonical() DType {
	switch d.Kind() {
	case KindInt:
		return Int
	case KindFloat:
		return Float64
	default:
		return d
	}
}

// ItemBits is the storage width of one element in bits.
func (d DType) ItemBits() int {
	switch d {
	case Float32, Int32:
		return 32
	case Float64, Int64:
		return 64
	case Int:
		return strconv.IntSize
	default:
		return 8
	}
}

var dtypeAliases = map[string]DType{
	"float32": Float32, "f4": Float32, "<f4": Float32, "single": Float32,
	"float64": Float64, "f8": Float64, "<f8": Float64, "double": Float64, "float": Float64,
	"int32": Int32, "i4": Int32, "<i4": Int32,
	"int64": Int64, "i8": Int64, "<i8": Int64,
	"int": Int, "intp": Int, "isize": Int,
	"uint8": Uint8, "u1": Uint8, "|u1": Uint8,
	"bool": Bool, "?": Bool, "|b1": Bool,
}

// ParseDType accepts numpy-style names and short codes. Empty means float64.
func ParseDType(s string) (DType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Float64, nil
	}
	if d, ok := dtypeAliases[s]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unsupported dtype %q", s)
}
