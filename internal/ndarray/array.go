// Package ndarray is a small strided numeric buffer, enough to describe how
// serialized model parameters sit in memory: element type, shape, strides and
// whether the buffer owns its data or is a view onto another array.
//
// Kernels read parameters through the strict accessors (Float64s, Ints), which
// reject views, non-contiguous layouts and non-canonical element types with a
// *LayoutError. Canonical produces the owning, C-contiguous copy that satisfies
// them.
package ndarray

import (
	"fmt"
	"math"
)

// Array is an n-dimensional view over a typed backing slice.
// Arrays are never mutated after construction; repair produces new arrays.
type Array struct {
	dtype   DType
	shape   []int
	strides []int // in elements
	offset  int
	data    any // []float32 | []float64 | []int32 | []int64 | []int | []uint8 | []bool
	base    *Array
}

// New builds an owning, C-contiguous array of dtype d from logical values
// given in row-major order. Values are converted to the storage type.
func New(d DType, values []float64, shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if n != len(values) {
		return nil, fmt.Errorf("ndarray: %d values do not fill shape %v", len(values), shape)
	}
	buf, err := alloc(d, n)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		storeFloat(buf, i, v)
	}
	return &Array{
		dtype:   d,
		shape:   append([]int(nil), shape...),
		strides: cStrides(shape),
		data:    buf,
	}, nil
}

// FromFloat64s wraps data as an owning float64 array without copying.
func FromFloat64s(data []float64, shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("ndarray: %d values do not fill shape %v", len(data), shape)
	}
	return &Array{dtype: Float64, shape: append([]int(nil), shape...), strides: cStrides(shape), data: data}, nil
}

// Scalar returns a 0-d float64 array.
func Scalar(v float64) *Array {
	return &Array{dtype: Float64, data: []float64{v}}
}

// MustNew is New for literals in tests and fixtures.
func MustNew(d DType, values []float64, shape ...int) *Array {
	a, err := New(d, values, shape...)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Array) DType() DType { return a.dtype }
func (a *Array) NDim() int    { return len(a.shape) }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Strides returns a copy of the element strides.
func (a *Array) Strides() []int { return append([]int(nil), a.strides...) }

// Size is the number of logical elements.
func (a *Array) Size() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// IsView reports whether a borrows its buffer from another array.
func (a *Array) IsView() bool { return a.base != nil }

// Base returns the array a borrows from, or nil for owning arrays.
func (a *Array) Base() *Array { return a.base }

// At reads one element as float64.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d-d array", len(idx), len(a.shape)))
	}
	pos := a.offset
	for k, i := range idx {
		if i < 0 || i >= a.shape[k] {
			panic(fmt.Sprintf("ndarray: index %d out of range for axis %d of size %d", i, k, a.shape[k]))
		}
		pos += i * a.strides[k]
	}
	return loadFloat(a.data, pos)
}

// Values returns all elements in logical row-major order as float64.
// It never fails and always allocates, so it suits inspection rather than kernels.
func (a *Array) Values() []float64 {
	out := make([]float64, 0, a.Size())
	a.each(func(pos int) { out = append(out, loadFloat(a.data, pos)) })
	return out
}

// Ravel returns an owning, contiguous 1-D copy with the same dtype.
func (a *Array) Ravel() *Array {
	n := a.Size()
	buf, _ := alloc(a.dtype, n)
	i := 0
	a.each(func(pos int) {
		copyElem(buf, i, a.data, pos)
		i++
	})
	return &Array{dtype: a.dtype, shape: []int{n}, strides: []int{1}, data: buf}
}

// Reshape returns an owning, contiguous copy of a with a new shape of equal size.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Size() {
		return nil, fmt.Errorf("ndarray: cannot reshape array of size %d into shape %v", a.Size(), shape)
	}
	flat := a.Ravel()
	flat.shape = append([]int(nil), shape...)
	flat.strides = cStrides(shape)
	return flat, nil
}

// RowsView returns a non-owning view of rows [lo, hi) along the first axis.
func (a *Array) RowsView(lo, hi int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("ndarray: cannot slice a 0-d array")
	}
	if lo < 0 || hi > a.shape[0] || lo > hi {
		return nil, fmt.Errorf("ndarray: rows [%d, %d) out of range for axis of size %d", lo, hi, a.shape[0])
	}
	base := a
	if a.base != nil {
		base = a.base
	}
	shape := a.Shape()
	shape[0] = hi - lo
	return &Array{
		dtype:   a.dtype,
		shape:   shape,
		strides: a.Strides(),
		offset:  a.offset + lo*a.strides[0],
		data:    a.data,
		base:    base,
	}, nil
}

// Fortran returns an owning copy of a stored in column-major order.
// For arrays with more than one non-trivial axis the result is not C-contiguous.
func (a *Array) Fortran() *Array {
	n := a.Size()
	buf, _ := alloc(a.dtype, n)
	strides := fStrides(a.shape)
	idx := make([]int, len(a.shape))
	walk(a.shape, idx, 0, func(idx []int) {
		src := a.offset
		dst := 0
		for k, i := range idx {
			src += i * a.strides[k]
			dst += i * strides[k]
		}
		copyElem(buf, dst, a.data, src)
	})
	return &Array{dtype: a.dtype, shape: a.Shape(), strides: strides, data: buf}
}

// Equal reports whether a and b hold the same logical values and shape,
// regardless of dtype or layout. NaNs compare equal to NaNs.
func Equal(a, b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	av, bv := a.Values(), b.Values()
	for i := range av {
		if av[i] != bv[i] && !(math.IsNaN(av[i]) && math.IsNaN(bv[i])) {
			return false
		}
	}
	return true
}

func (a *Array) String() string {
	kind := "owning"
	if a.IsView() {
		kind = "view"
	}
	return fmt.Sprintf("ndarray(%s, shape=%v, strides=%v, %s)", a.dtype, a.shape, a.strides, kind)
}

// each calls fn with the buffer position of every element in row-major order.
func (a *Array) each(fn func(pos int)) {
	if a.Size() == 0 {
		return
	}
	idx := make([]int, len(a.shape))
	walk(a.shape, idx, 0, func(idx []int) {
		pos := a.offset
		for k, i := range idx {
			pos += i * a.strides[k]
		}
		fn(pos)
	})
}

func walk(shape, idx []int, axis int, fn func([]int)) {
	if axis == len(shape) {
		fn(idx)
		return
	}
	for i := 0; i < shape[axis]; i++ {
		idx[axis] = i
		walk(shape, idx, axis+1, fn)
	}
}

func checkShape(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("ndarray: negative dimension in shape %v", shape)
		}
		n *= d
	}
	return n, nil
}

func cStrides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for k := len(shape) - 1; k >= 0; k-- {
		s[k] = acc
		acc *= shape[k]
	}
	return s
}

func fStrides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for k := range shape {
		s[k] = acc
		acc *= shape[k]
	}
	return s
}

func alloc(d DType, n int) (any, error) {
	switch d {
	case Float32:
		return make([]float32, n), nil
	case Float64:
		return make([]float64, n), nil
	case Int32:
		return make([]int32, n), nil
	case Int64:
		return make([]int64, n), nil
	case Int:
		return make([]int, n), nil
	case Uint8:
		return make([]uint8, n), nil
	case Bool:
		return make([]bool, n), nil
	default:
		return nil, fmt.Errorf("ndarray: unsupported dtype %q", d)
	}
}

func loadFloat(buf any, i int) float64 {
	switch b := buf.(type) {
	case []float32:
		return float64(b[i])
	case []float64:
		return b[i]
	case []int32:
		return float64(b[i])
	case []int64:
		return float64(b[i])
	case []int:
		return float64(b[i])
	case []uint8:
		return float64(b[i])
	case []bool:
		if b[i] {
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("ndarray: unexpected buffer %T", buf))
}

func loadInt(buf any, i int) int64 {
	switch b := buf.(type) {
	case []int32:
		return int64(b[i])
	case []int64:
		return b[i]
	case []int:
		return int64(b[i])
	case []uint8:
		return int64(b[i])
	}
	return int64(loadFloat(buf, i))
}

func storeFloat(buf any, i int, v float64) {
	switch b := buf.(type) {
	case []float32:
		b[i] = float32(v)
	case []float64:
		b[i] = v
	case []int32:
		b[i] = int32(v)
	case []int64:
		b[i] = int64(v)
	case []int:
		b[i] = int(v)
	case []uint8:
		b[i] = uint8(v)
	case []bool:
		b[i] = v != 0
	}
}

// copyElem copies one element between buffers of possibly different types,
// keeping integers exact.
func copyElem(dst any, di int, src any, si int) {
	switch d := dst.(type) {
	case []int:
		d[di] = int(loadInt(src, si))
	case []int64:
		d[di] = loadInt(src, si)
	case []int32:
		d[di] = int32(loadInt(src, si))
	case []uint8:
		if s, ok := src.([]uint8); ok {
			d[di] = s[si]
			return
		}
		d[di] = uint8(loadInt(src, si))
	case []bool:
		if s, ok := src.([]bool); ok {
			d[di] = s[si]
			return
		}
		d[di] = loadFloat(src, si) != 0
	default:
		storeFloat(dst, di, loadFloat(src, si))
	}
}
