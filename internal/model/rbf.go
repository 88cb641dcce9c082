package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"surrogated/internal/ndarray"
)

const (
	KindRBF       = "rbf_interpolator"
	KindRBFLegacy = "rbf_legacy"
)

type kernelFunc func(r float64) float64

var kernels = map[string]kernelFunc{
	"thin_plate_spline": func(r float64) float64 {
		if r == 0 {
			return 0
		}
		return r * r * math.Log(r)
	},
	"gaussian":             func(r float64) float64 { return math.Exp(-r * r) },
	"multiquadric":         func(r float64) float64 { return -math.Sqrt(1 + r*r) },
	"inverse_multiquadric": func(r float64) float64 { return 1 / math.Sqrt(1+r*r) },
	"linear":               func(r float64) float64 { return -r },
	"cubic":                func(r float64) float64 { return r * r * r },
	"quintic":              func(r float64) float64 { return -math.Pow(r, 5) },
}

// rbfCore holds the parameters both radial-basis variants share.
//
//	y(x) = sum_i coeffs[i] * phi(epsilon * |xs - centers[i]|) + poly[0] + poly[1:]·xs
//
// where xs = (x - shift) / scale. shift, scale and poly are optional.
type rbfCore struct {
	centers *Buffer
	coeffs  *Buffer
	shift   *Buffer
	scale   *Buffer
	poly    *Buffer
	kernel  string
	phi     kernelFunc
	epsilon float64
}

// RBFParams configures a radial-basis model built in code.
type RBFParams struct {
	Centers *ndarray.Array // n x d
	Coeffs  *ndarray.Array // n
	Shift   *ndarray.Array // d, optional
	Scale   *ndarray.Array // d, optional
	Poly    *ndarray.Array // 1 + d, optional
	Kernel  string
	Epsilon float64
}

func newCore(p RBFParams) (*rbfCore, error) {
	if p.Centers == nil || p.Coeffs == nil {
		return nil, fmt.Errorf("centers and coeffs are required")
	}
	if p.Centers.NDim() != 2 {
		return nil, fmt.Errorf("centers must be 2-D, got shape %v", p.Centers.Shape())
	}
	if p.Coeffs.NDim() != 1 || p.Coeffs.Size() != p.Centers.Shape()[0] {
		return nil, fmt.Errorf("coeffs shape %v does not match %d centers", p.Coeffs.Shape(), p.Centers.Shape()[0])
	}
	name := p.Kernel
	if name == "" {
		name = "thin_plate_spline"
	}
	phi, ok := kernels[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
	eps := p.Epsilon
	if eps == 0 {
		eps = 1
	}
	c := &rbfCore{
		centers: NewBuffer("centers", p.Centers),
		coeffs:  NewBuffer("coeffs", p.Coeffs),
		kernel:  name,
		phi:     phi,
		epsilon: eps,
	}
	if p.Shift != nil {
		c.shift = NewBuffer("shift", p.Shift)
	}
	if p.Scale != nil {
		c.scale = NewBuffer("scale", p.Scale)
	}
	if p.Poly != nil {
		c.poly = NewBuffer("poly_coeffs", p.Poly)
	}
	return c, nil
}

func coreFromSpec(s Spec) (*rbfCore, error) {
	p := RBFParams{
		Centers: s.Arrays["centers"],
		Coeffs:  s.Arrays["coeffs"],
		Shift:   s.Arrays["shift"],
		Scale:   s.Arrays["scale"],
		Poly:    s.Arrays["poly_coeffs"],
		Kernel:  s.option("kernel", "thin_plate_spline"),
		Epsilon: s.scalar("epsilon", 1),
	}
	return newCore(p)
}

func (c *rbfCore) Buffers() []*Buffer {
	return nonNil(c.centers, c.coeffs, c.shift, c.scale, c.poly)
}

// rbfParams is a consistent snapshot of the buffers for one evaluation.
type rbfParams struct {
	centers []float64
	n, d    int
	coeffs  []float64
	shift   []float64
	scale   []float64
	poly    []float64
}

func (c *rbfCore) load(op string) (rbfParams, error) {
	var p rbfParams
	ca := c.centers.Load()
	centers, err := ca.Float64s(op)
	if err != nil {
		return p, err
	}
	shape := ca.Shape()
	p.centers, p.n, p.d = centers, shape[0], shape[1]
	if p.coeffs, err = c.coeffs.Load().Float64s(op); err != nil {
		return p, err
	}
	if p.shift, err = optionalFloats(c.shift, op, p.d); err != nil {
		return p, err
	}
	if p.scale, err = optionalFloats(c.scale, op, p.d); err != nil {
		return p, err
	}
	if p.poly, err = optionalFloats(c.poly, op, p.d+1); err != nil {
		return p, err
	}
	return p, nil
}

func optionalFloats(b *Buffer, op string, want int) ([]float64, error) {
	a := b.Load()
	if a == nil {
		return nil, nil
	}
	data, err := a.Float64s(op)
	if err != nil {
		return nil, err
	}
	if len(data) != want {
		return nil, fmt.Errorf("%s: parameter %s has %d values, want %d", op, b.Name, len(data), want)
	}
	return data, nil
}

// eval evaluates one point; xs is scratch space of length d.
func (c *rbfCore) eval(p rbfParams, x, xs []float64) float64 {
	copy(xs, x)
	if p.shift != nil {
		floats.Sub(xs, p.shift)
	}
	if p.scale != nil {
		for j, s := range p.scale {
			if s != 0 {
				xs[j] /= s
			}
		}
	}
	var y float64
	for i := 0; i < p.n; i++ {
		r := floats.Distance(xs, p.centers[i*p.d:(i+1)*p.d], 2)
		y += p.coeffs[i] * c.phi(c.epsilon*r)
	}
	if p.poly != nil {
		y += p.poly[0] + floats.Dot(p.poly[1:], xs)
	}
	return y
}

// RBFInterpolator is a radial-basis interpolator called with a 2-D array of
// points. Its kernel is compiled and insists on owning, contiguous float64
// parameter buffers.
type RBFInterpolator struct {
	*rbfCore
}

// NewRBFInterpolator builds an interpolator from p.
func NewRBFInterpolator(p RBFParams) (*RBFInterpolator, error) {
	c, err := newCore(p)
	if err != nil {
		return nil, err
	}
	return &RBFInterpolator{c}, nil
}

func newRBFInterpolator(s Spec) (Component, error) {
	c, err := coreFromSpec(s)
	if err != nil {
		return nil, err
	}
	return &RBFInterpolator{c}, nil
}

func (m *RBFInterpolator) Kind() string { return KindRBF }

func (m *RBFInterpolator) Call(x *ndarray.Array) (*ndarray.Array, error) {
	const op = "RBFInterpolator.__call__"
	if x.NDim() != 2 {
		return nil, &ndarray.DimensionError{Op: op, Want: 2, Got: x.NDim()}
	}
	p, err := m.load(op)
	if err != nil {
		return nil, err
	}
	X, err := x.Dense(op)
	if err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != p.d {
		return nil, fmt.Errorf("Expected the second axis of `x` to have length %d", p.d)
	}
	out := make([]float64, rows)
	xs := make([]float64, p.d)
	for i := range out {
		out[i] = m.eval(p, X.RawRowView(i), xs)
	}
	return ndarray.FromFloat64s(out, rows)
}

// RBFLegacy is the older radial-basis function object: it takes exactly one
// point as a flat 1-D array and returns a scalar.
type RBFLegacy struct {
	*rbfCore
}

// NewRBFLegacy builds a legacy radial-basis function from p.
func NewRBFLegacy(p RBFParams) (*RBFLegacy, error) {
	c, err := newCore(p)
	if err != nil {
		return nil, err
	}
	return &RBFLegacy{c}, nil
}

func newRBFLegacy(s Spec) (Component, error) {
	c, err := coreFromSpec(s)
	if err != nil {
		return nil, err
	}
	return &RBFLegacy{c}, nil
}

func (m *RBFLegacy) Kind() string { return KindRBFLegacy }

func (m *RBFLegacy) Call(x *ndarray.Array) (*ndarray.Array, error) {
	const op = "Rbf.__call__"
	if x.NDim() != 1 {
		return nil, &ndarray.DimensionError{Op: op, Want: 1, Got: x.NDim()}
	}
	p, err := m.load(op)
	if err != nil {
		return nil, err
	}
	data, err := x.Float64s(op)
	if err != nil {
		return nil, err
	}
	if len(data) != p.d {
		return nil, fmt.Errorf("%s: got %d coordinates, want %d", op, len(data), p.d)
	}
	return ndarray.Scalar(m.eval(p, data, make([]float64, p.d))), nil
}
