package model

import (
	"fmt"
	"math"

	"surrogated/internal/ndarray"
)

const KindPolynomial = "polynomial_regression"

// PolynomialRegression is a linear model over monomial features.
// Row t of powers holds the exponent of every input feature in term t.
type PolynomialRegression struct {
	powers    *Buffer
	coef      *Buffer
	intercept *Buffer
}

// NewPolynomialRegression builds a regressor from an integer powers matrix
// (terms x features) and one coefficient per term.
func NewPolynomialRegression(powers, coef *ndarray.Array, intercept float64) *PolynomialRegression {
	return &PolynomialRegression{
		powers:    NewBuffer("powers", powers),
		coef:      NewBuffer("coef", coef),
		intercept: NewBuffer("intercept", ndarray.Scalar(intercept)),
	}
}

func newPolynomial(s Spec) (Component, error) {
	powers, err := s.array("powers")
	if err != nil {
		return nil, err
	}
	coef, err := s.array("coef")
	if err != nil {
		return nil, err
	}
	if powers.NDim() != 2 {
		return nil, fmt.Errorf("powers must be 2-D, got shape %v", powers.Shape())
	}
	if powers.DType().Kind() != ndarray.KindInt {
		return nil, fmt.Errorf("powers must hold integers, got %s", powers.DType())
	}
	if coef.NDim() != 1 || coef.Size() != powers.Shape()[0] {
		return nil, fmt.Errorf("coef shape %v does not match %d terms", coef.Shape(), powers.Shape()[0])
	}
	return &PolynomialRegression{
		powers:    NewBuffer("powers", powers),
		coef:      NewBuffer("coef", coef),
		intercept: NewBuffer("intercept", s.intercept()),
	}, nil
}

func (m *PolynomialRegression) Kind() string { return KindPolynomial }
func (m *PolynomialRegression) Buffers() []*Buffer {
	return []*Buffer{m.powers, m.coef, m.intercept}
}

func (m *PolynomialRegression) Predict(x *ndarray.Array) (*ndarray.Array, error) {
	const op = "PolynomialRegression.predict"
	X, err := x.Dense(op)
	if err != nil {
		return nil, err
	}
	pa := m.powers.Load()
	powers, err := pa.Ints(op)
	if err != nil {
		return nil, err
	}
	coef, err := m.coef.Load().Float64s(op)
	if err != nil {
		return nil, err
	}
	b, err := firstValue(m.intercept.Load(), op)
	if err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	nf := pa.Shape()[1]
	if cols != nf {
		return nil, fmt.Errorf("X has %d features, but PolynomialRegression is expecting %d features as input", cols, nf)
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := X.RawRowView(i)
		y := b
		for t, c := range coef {
			term := c
			for j, p := range powers[t*nf : (t+1)*nf] {
				if p != 0 {
					term *= math.Pow(row[j], float64(p))
				}
			}
			y += term
		}
		out[i] = y
	}
	return ndarray.FromFloat64s(out, rows)
}
