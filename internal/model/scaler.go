package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"surrogated/internal/ndarray"
)

const KindScaler = "standard_scaler"

// StandardScaler centers and scales each feature. It is a preprocessing step
// and cannot be invoked on its own.
type StandardScaler struct {
	mean  *Buffer
	scale *Buffer
}

// NewStandardScaler builds a scaler from per-feature mean and scale arrays.
func NewStandardScaler(mean, scale *ndarray.Array) *StandardScaler {
	return &StandardScaler{mean: NewBuffer("mean", mean), scale: NewBuffer("scale", scale)}
}

func newScaler(s Spec) (Component, error) {
	mean, err := s.array("mean")
	if err != nil {
		return nil, err
	}
	scale, err := s.array("scale")
	if err != nil {
		return nil, err
	}
	if mean.NDim() != 1 || scale.NDim() != 1 || mean.Size() != scale.Size() {
		return nil, fmt.Errorf("mean %v and scale %v must be 1-D of equal length", mean.Shape(), scale.Shape())
	}
	return NewStandardScaler(mean, scale), nil
}

func (m *StandardScaler) Kind() string       { return KindScaler }
func (m *StandardScaler) Buffers() []*Buffer { return []*Buffer{m.mean, m.scale} }

func (m *StandardScaler) Transform(x *ndarray.Array) (*ndarray.Array, error) {
	const op = "StandardScaler.transform"
	X, err := x.Dense(op)
	if err != nil {
		return nil, err
	}
	mean, err := m.mean.Load().Float64s(op)
	if err != nil {
		return nil, err
	}
	scale, err := m.scale.Load().Float64s(op)
	if err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != len(mean) {
		return nil, fmt.Errorf("X has %d features, but StandardScaler is expecting %d features as input", cols, len(mean))
	}
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		v -= mean[j]
		if s := scale[j]; s != 0 {
			v /= s
		}
		return v
	}, X)
	return ndarray.FromDense(out), nil
}
