package ndarray

import (
	"gonum.org/v1/gonum/mat"
)

// IsContiguous reports whether a is laid out in C (row-major) order with no gaps.
// Axes of length one are ignored, as numpy does.
func (a *Array) IsContiguous() bool {
	if a.Size() == 0 {
		return true
	}
	want := 1
	for k := len(a.shape) - 1; k >= 0; k-- {
		if a.shape[k] == 1 {
			continue
		}
		if a.strides[k] != want {
			return false
		}
		want *= a.shape[k]
	}
	return true
}

// IsCanonical reports whether a already satisfies every strict accessor for its kind.
func (a *Array) IsCanonical() bool {
	return !a.IsView() && a.IsContiguous() && a.dtype == a.dtype.Canonical()
}

// Canonical returns a if it is already canonical, otherwise an owning,
// C-contiguous copy with integer kinds widened to Int and float kinds to
// Float64. Other dtypes only gain contiguity. Logical values never change, so
// Canonical(Canonical(a)) == Canonical(a).
func Canonical(a *Array) *Array {
	if a == nil || a.IsCanonical() {
		return a
	}
	d := a.dtype.Canonical()
	n := a.Size()
	buf, _ := alloc(d, n)
	i := 0
	a.each(func(pos int) {
		copyElem(buf, i, a.data, pos)
		i++
	})
	return &Array{dtype: d, shape: a.Shape(), strides: cStrides(a.shape), data: buf}
}

// Contiguous returns an owning, C-contiguous float64 copy of a.
// Used for inputs and outputs, which are always float64 regardless of dtype.
func Contiguous(a *Array) *Array {
	if a.dtype == Float64 && !a.IsView() && a.IsContiguous() {
		return a
	}
	buf := make([]float64, 0, a.Size())
	a.each(func(pos int) { buf = append(buf, loadFloat(a.data, pos)) })
	return &Array{dtype: Float64, shape: a.Shape(), strides: cStrides(a.shape), data: buf}
}

// check is the layout gate every strict accessor shares.
func (a *Array) check(op string, want DType) error {
	switch {
	case a.IsView():
		return &LayoutError{Op: op, Reason: ReasonView, DType: a.dtype}
	case !a.IsContiguous():
		return &LayoutError{Op: op, Reason: ReasonNotContiguous, DType: a.dtype}
	case a.dtype != want:
		return &LayoutError{Op: op, Reason: ReasonDType, DType: a.dtype, Want: want}
	}
	return nil
}

// Float64s returns the backing float64 slice of an owning, contiguous float64 array.
// op names the caller in the error message.
func (a *Array) Float64s(op string) ([]float64, error) {
	if err := a.check(op, Float64); err != nil {
		return nil, err
	}
	return a.data.([]float64)[a.offset : a.offset+a.Size()], nil
}

// Ints returns the backing slice of an owning, contiguous native-int array.
func (a *Array) Ints(op string) ([]int, error) {
	if err := a.check(op, Int); err != nil {
		return nil, err
	}
	return a.data.([]int)[a.offset : a.offset+a.Size()], nil
}

// Dense exposes a 2-D float64 array to gonum without copying.
func (a *Array) Dense(op string) (*mat.Dense, error) {
	if len(a.shape) != 2 {
		return nil, &DimensionError{Op: op, Want: 2, Got: len(a.shape)}
	}
	data, err := a.Float64s(op)
	if err != nil {
		return nil, err
	}
	if a.Size() == 0 {
		return nil, &DimensionError{Op: op, Want: 2, Got: 2, Empty: true}
	}
	return mat.NewDense(a.shape[0], a.shape[1], data), nil
}

// Vec exposes a 1-D float64 array to gonum without copying.
func (a *Array) Vec(op string) (*mat.VecDense, error) {
	if len(a.shape) != 1 {
		return nil, &DimensionError{Op: op, Want: 1, Got: len(a.shape)}
	}
	data, err := a.Float64s(op)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &DimensionError{Op: op, Want: 1, Got: 1, Empty: true}
	}
	return mat.NewVecDense(len(data), data), nil
}

// FromDense copies a gonum matrix into an owning float64 array.
func FromDense(m mat.Matrix) *Array {
	r, c := m.Dims()
	buf := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			buf = append(buf, m.At(i, j))
		}
	}
	return &Array{dtype: Float64, shape: []int{r, c}, strides: []int{c, 1}, data: buf}
}

// FromVec copies a gonum vector into an owning 1-D float64 array.
func FromVec(v mat.Vector) *Array {
	n := v.Len()
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = v.AtVec(i)
	}
	return &Array{dtype: Float64, shape: []int{n}, strides: []int{1}, data: buf}
}
