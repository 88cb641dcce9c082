package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"surrogated/internal/ndarray"
)

const KindLinear = "linear_regression"

// LinearRegression predicts X·coef + intercept.
type LinearRegression struct {
	coef      *Buffer
	intercept *Buffer
}

// NewLinearRegression builds a regressor from a 1-D coefficient array.
func NewLinearRegression(coef *ndarray.Array, intercept float64) *LinearRegression {
	return &LinearRegression{
		coef:      NewBuffer("coef", coef),
		intercept: NewBuffer("intercept", ndarray.Scalar(intercept)),
	}
}

func newLinear(s Spec) (Component, error) {
	coef, err := s.array("coef")
	if err != nil {
		return nil, err
	}
	if coef.NDim() != 1 {
		return nil, fmt.Errorf("coef must be 1-D, got shape %v", coef.Shape())
	}
	return &LinearRegression{
		coef:      NewBuffer("coef", coef),
		intercept: NewBuffer("intercept", s.intercept()),
	}, nil
}

func (m *LinearRegression) Kind() string       { return KindLinear }
func (m *LinearRegression) Buffers() []*Buffer { return []*Buffer{m.coef, m.intercept} }

func (m *LinearRegression) Predict(x *ndarray.Array) (*ndarray.Array, error) {
	const op = "LinearRegression.predict"
	X, err := x.Dense(op)
	if err != nil {
		return nil, err
	}
	coef, err := m.coef.Load().Vec(op)
	if err != nil {
		return nil, err
	}
	b, err := firstValue(m.intercept.Load(), op)
	if err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != coef.Len() {
		return nil, fmt.Errorf("X has %d features, but LinearRegression is expecting %d features as input", cols, coef.Len())
	}
	y := mat.NewVecDense(rows, nil)
	y.MulVec(X, coef)
	for i := 0; i < rows; i++ {
		y.SetVec(i, y.AtVec(i)+b)
	}
	return ndarray.FromVec(y), nil
}

// firstValue reads a scalar parameter stored as a 0-d or 1-element array.
func firstValue(a *ndarray.Array, op string) (float64, error) {
	if a == nil {
		return 0, nil
	}
	data, err := a.Float64s(op)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("%s: empty scalar parameter", op)
	}
	return data[0], nil
}
