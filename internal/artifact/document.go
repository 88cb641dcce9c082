// Package artifact reads and writes serialized surrogate models.
//
// An artifact is a Document holding either one component (Model) or a
// sequence of components (Parts), e.g. a scaler stored next to the estimator
// it was fitted with. Arrays keep the element type and memory layout they
// were saved with; nothing is normalized here.
package artifact

import (
	"fmt"
	"strings"

	"surrogated/internal/model"
	"surrogated/internal/ndarray"
)

// FormatV1 is the only document format understood.
const FormatV1 = "surrogate/v1"

// Document is the top-level artifact.
type Document struct {
	Format string    `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty" msgpack:"format,omitempty"`
	Name   string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" msgpack:"name,omitempty"`
	Model  *PartDoc  `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty" msgpack:"model,omitempty"`
	Parts  []PartDoc `json:"parts,omitempty" yaml:"parts,omitempty" toml:"parts,omitempty" msgpack:"parts,omitempty"`
}

// PartDoc describes one component.
type PartDoc struct {
	Kind    string              `json:"kind" yaml:"kind" toml:"kind" msgpack:"kind"`
	Arrays  map[string]ArrayDoc `json:"arrays,omitempty" yaml:"arrays,omitempty" toml:"arrays,omitempty" msgpack:"arrays,omitempty"`
	Scalars map[string]float64  `json:"scalars,omitempty" yaml:"scalars,omitempty" toml:"scalars,omitempty" msgpack:"scalars,omitempty"`
	Options map[string]string   `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty" msgpack:"options,omitempty"`
	Steps   []PartDoc           `json:"steps,omitempty" yaml:"steps,omitempty" toml:"steps,omitempty" msgpack:"steps,omitempty"`
}

// ArrayDoc is a stored array. Data lists values in row-major order for the
// full Shape. Order "F" stores them column-major in memory. Window [lo, hi]
// loads rows lo..hi-1 as a view onto the full buffer.
type ArrayDoc struct {
	DType  string    `json:"dtype,omitempty" yaml:"dtype,omitempty" toml:"dtype,omitempty" msgpack:"dtype,omitempty"`
	Shape  []int     `json:"shape,omitempty" yaml:"shape,omitempty" toml:"shape,omitempty" msgpack:"shape,omitempty"`
	Order  string    `json:"order,omitempty" yaml:"order,omitempty" toml:"order,omitempty" msgpack:"order,omitempty"`
	Window []int     `json:"window,omitempty" yaml:"window,omitempty" toml:"window,omitempty" msgpack:"window,omitempty"`
	Data   []float64 `json:"data" yaml:"data" toml:"data" msgpack:"data"`
}

// Array materializes the stored array with its original dtype and layout.
func (d ArrayDoc) Array() (*ndarray.Array, error) {
	dt, err := ndarray.ParseDType(d.DType)
	if err != nil {
		return nil, err
	}
	shape := d.Shape
	if len(shape) == 0 {
		shape = []int{len(d.Data)}
	}
	a, err := ndarray.New(dt, d.Data, shape...)
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(d.Order) {
	case "", "C":
	case "F":
		a = a.Fortran()
	default:
		return nil, fmt.Errorf("unsupported order %q", d.Order)
	}
	if len(d.Window) > 0 {
		if len(d.Window) != 2 {
			return nil, fmt.Errorf("window must be [lo, hi], got %v", d.Window)
		}
		if a, err = a.RowsView(d.Window[0], d.Window[1]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Spec converts the part into a model spec.
func (p PartDoc) Spec() (model.Spec, error) {
	s := model.Spec{
		Kind:    p.Kind,
		Arrays:  make(map[string]*ndarray.Array, len(p.Arrays)),
		Scalars: p.Scalars,
		Options: p.Options,
	}
	for name, ad := range p.Arrays {
		a, err := ad.Array()
		if err != nil {
			return s, fmt.Errorf("array %q: %w", name, err)
		}
		s.Arrays[name] = a
	}
	for i, st := range p.Steps {
		ss, err := st.Spec()
		if err != nil {
			return s, fmt.Errorf("step %d: %w", i, err)
		}
		s.Steps = append(s.Steps, ss)
	}
	return s, nil
}

// Components builds every component the document holds, in stored order.
func (d Document) Components() ([]model.Component, error) {
	if d.Format != "" && d.Format != FormatV1 {
		return nil, fmt.Errorf("unsupported artifact format %q", d.Format)
	}
	parts := d.Parts
	switch {
	case d.Model != nil && len(d.Parts) > 0:
		return nil, fmt.Errorf("artifact sets both model and parts")
	case d.Model != nil:
		parts = []PartDoc{*d.Model}
	case len(parts) == 0:
		return nil, fmt.Errorf("artifact is empty")
	}
	out := make([]model.Component, 0, len(parts))
	for i, p := range parts {
		s, err := p.Spec()
		if err != nil {
			return nil, fmt.Errorf("part %d (%s): %w", i, p.Kind, err)
		}
		c, err := model.Build(s)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// FromArray stores a in row-major order with its dtype.
func FromArray(a *ndarray.Array) ArrayDoc {
	return ArrayDoc{DType: string(a.DType()), Shape: a.Shape(), Data: a.Values()}
}
