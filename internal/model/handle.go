// Package model defines the invocable surrogate models and the declared
// surface repair operates on.
//
// Every model is a Component that lists its numeric parameters as named
// Buffers. A Component that also implements Predictor or Function can be
// invoked; one that implements neither (a bare preprocessing step, or an
// unrecognised tuple) is kept around but fails at call time.
//
//   - handle.go: Component, Predictor, Function, Transformer, Buffer.
//   - kinds.go: Spec and the kind -> constructor table used by artifact loading.
//   - linear.go, poly.go, rbf.go, scaler.go, pipeline.go, func.go: concrete kinds.
package model

import (
	"sync/atomic"

	"surrogated/internal/ndarray"
)

// Component is anything a serialized artifact can decode to.
type Component interface {
	// Kind is the artifact kind this component was built from.
	Kind() string
	// Buffers lists the numeric parameters owned directly by this component.
	Buffers() []*Buffer
}

// Parent is implemented by components that own other components.
type Parent interface {
	Children() []Component
}

// Predictor is the estimator protocol: a 2-D (samples x features) input
// produces one prediction per sample.
type Predictor interface {
	Component
	Predict(x *ndarray.Array) (*ndarray.Array, error)
}

// Function is the raw callable protocol. Implementations may accept 2-D or
// only 1-D inputs and return a scalar or any array.
type Function interface {
	Component
	Call(x *ndarray.Array) (*ndarray.Array, error)
}

// Transformer is a preprocessing step. It is neither invocable protocol on its own.
type Transformer interface {
	Component
	Transform(x *ndarray.Array) (*ndarray.Array, error)
}

// Invocable reports whether c supports at least one invocation protocol.
func Invocable(c Component) bool {
	switch c.(type) {
	case Predictor, Function:
		return true
	}
	return false
}

// Buffer is a named numeric parameter. Its array is swapped as a whole, so a
// reader sees either the old or the new array, never a partial write.
type Buffer struct {
	Name string
	arr  atomic.Pointer[ndarray.Array]
}

// NewBuffer returns a buffer holding a.
func NewBuffer(name string, a *ndarray.Array) *Buffer {
	b := &Buffer{Name: name}
	b.arr.Store(a)
	return b
}

// Load returns the current array, which may be nil for optional parameters.
func (b *Buffer) Load() *ndarray.Array {
	if b == nil {
		return nil
	}
	return b.arr.Load()
}

// Swap replaces old with repl if old is still current.
func (b *Buffer) Swap(old, repl *ndarray.Array) bool {
	return b.arr.CompareAndSwap(old, repl)
}

// nonNil drops optional buffers that were never set.
func nonNil(bufs ...*Buffer) []*Buffer {
	out := make([]*Buffer, 0, len(bufs))
	for _, b := range bufs {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
