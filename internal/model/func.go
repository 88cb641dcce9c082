package model

import "surrogated/internal/ndarray"

const KindFunc = "function"

// Func adapts a plain Go function to the Function protocol. Bufs declares the
// arrays the function reads so repair can reach them.
type Func struct {
	Name string
	Fn   func(x *ndarray.Array) (*ndarray.Array, error)
	Bufs []*Buffer
}

func (f *Func) Kind() string       { return KindFunc }
func (f *Func) Buffers() []*Buffer { return f.Bufs }

func (f *Func) Call(x *ndarray.Array) (*ndarray.Array, error) { return f.Fn(x) }
