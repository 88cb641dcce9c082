package model

import (
	"fmt"

	"surrogated/internal/ndarray"
)

const (
	KindPipeline = "pipeline"
	KindTuple    = "tuple"
)

// Pipeline chains transformers into a final estimator or function.
type Pipeline struct {
	steps []Component
}

// NewPipeline validates the step order: transformers first, then one
// Predictor or Function.
func NewPipeline(steps ...Component) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("pipeline has no steps")
	}
	for i, s := range steps[:len(steps)-1] {
		if _, ok := s.(Transformer); !ok {
			return nil, fmt.Errorf("step %d (%s) is not a transformer", i, s.Kind())
		}
	}
	if !Invocable(steps[len(steps)-1]) {
		return nil, fmt.Errorf("final step (%s) is neither a predictor nor a function", steps[len(steps)-1].Kind())
	}
	return &Pipeline{steps: steps}, nil
}

func newPipeline(s Spec) (Component, error) {
	steps := make([]Component, 0, len(s.Steps))
	for i, st := range s.Steps {
		c, err := Build(st)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, c)
	}
	return NewPipeline(steps...)
}

func (p *Pipeline) Kind() string          { return KindPipeline }
func (p *Pipeline) Buffers() []*Buffer    { return nil }
func (p *Pipeline) Children() []Component { return append([]Component(nil), p.steps...) }

func (p *Pipeline) Predict(x *ndarray.Array) (*ndarray.Array, error) {
	var err error
	for _, s := range p.steps[:len(p.steps)-1] {
		if x, err = s.(Transformer).Transform(x); err != nil {
			return nil, err
		}
	}
	switch last := p.steps[len(p.steps)-1].(type) {
	case Predictor:
		return last.Predict(x)
	case Function:
		return last.Call(x)
	}
	return nil, fmt.Errorf("pipeline: final step is not invocable")
}

// Tuple is an artifact holding several components where none could be
// selected as the model. It is kept whole so repair still reaches its parts.
type Tuple struct {
	Parts []Component
}

func (t *Tuple) Kind() string          { return KindTuple }
func (t *Tuple) Buffers() []*Buffer    { return nil }
func (t *Tuple) Children() []Component { return append([]Component(nil), t.Parts...) }
