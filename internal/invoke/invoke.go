// Package invoke evaluates one surrogate handle on one feature vector.
//
// Invoke picks the handle's protocol (Predictor before Function), calls it,
// and recovers from two known failure signatures, each on its own branch:
//
//   - a Function that only accepts flat input is called again with the 1-D form;
//   - a kernel that rejects a parameter buffer's layout triggers one
//     registry.RepairBuffers pass and one retry of the same call.
//
// Nothing is retried more than once and the handle is repaired at most once
// per invocation. When the retry after a repair fails, the error from before
// the repair is returned. PredictAll fans Invoke out over configurations.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"surrogated/internal/catalog"
	"surrogated/internal/model"
	"surrogated/internal/ndarray"
	"surrogated/internal/registry"
)

// Invoker holds the collaborators of Invoke. The zero value is usable.
type Invoker struct {
	// Repair is run on a layout failure. Nil means registry.RepairBuffers.
	Repair func(model.Component) registry.RepairReport
	// Logger receives one debug line per failed invocation. Nil is silent.
	Logger *zerolog.Logger
}

// Default is used by the package-level Invoke.
var Default = &Invoker{}

// Invoke evaluates h on x with the Default invoker.
func Invoke(ctx context.Context, h model.Component, x *ndarray.Array) (float64, error) {
	return Default.Invoke(ctx, h, x)
}

// Invoke evaluates h on x and returns a finite scalar or an *Error.
func (iv *Invoker) Invoke(ctx context.Context, h model.Component, x *ndarray.Array) (float64, error) {
	v, _, err := iv.InvokeTrace(ctx, h, x)
	return v, err
}

// InvokeTrace is Invoke that also reports the path taken.
func (iv *Invoker) InvokeTrace(ctx context.Context, h model.Component, x *ndarray.Array) (float64, Trace, error) {
	start := time.Now()
	r := &run{iv: iv, ctx: ctx, h: h}
	r.tr.Protocol = ProtocolNone
	r.tr.enter(StateStart)
	v, err := r.invoke(x)
	if err != nil {
		r.tr.enter(StateFailed)
		iv.logger().Debug().
			Str("kind", string(KindOf(err))).
			Str("protocol", string(r.tr.Protocol)).
			Str("trace", r.tr.String()).
			Err(err).
			Msg("invocation failed")
	} else {
		r.tr.enter(StateSuccess)
	}
	observe(&r.tr, err, time.Since(start))
	return v, r.tr, err
}

func (iv *Invoker) logger() *zerolog.Logger {
	if iv == nil || iv.Logger == nil {
		l := zerolog.Nop()
		return &l
	}
	return iv.Logger
}

func (iv *Invoker) repair(h model.Component) registry.RepairReport {
	if iv != nil && iv.Repair != nil {
		return iv.Repair(h)
	}
	return registry.RepairBuffers(h)
}

type callFunc func(*ndarray.Array) (*ndarray.Array, error)

// run is the state of one invocation.
type run struct {
	iv  *Invoker
	ctx context.Context
	h   model.Component
	tr  Trace
}

func (r *run) invoke(x *ndarray.Array) (float64, error) {
	if r.ctx.Err() != nil {
		return 0, canceled(r.ctx)
	}
	x2, err := normalize(x)
	if err != nil {
		return 0, &Error{Kind: KindMalformedInput, Err: err}
	}
	if r.h == nil {
		return 0, &Error{Kind: KindIncompatibleInterface, Err: ErrNotLoaded}
	}

	var (
		y    *ndarray.Array
		call callFunc
		in   = x2
	)
	switch h := r.h.(type) {
	case model.Predictor:
		r.tr.Protocol = ProtocolPredict
		r.tr.enter(StateProtocolChosen)
		call = h.Predict
		y, err = r.call(call, in)
		r.tr.enter(StateInvoked)
	case model.Function:
		r.tr.Protocol = ProtocolFunction
		r.tr.enter(StateProtocolChosen)
		call = h.Call
		y, err = r.call(call, in)
		r.tr.enter(StateInvoked)
		if err != nil && Classify(err) == ClassNeeds1D {
			first := err
			in = x2.Ravel()
			r.tr.Flattened = true
			r.tr.enter(StateFlattened)
			y, err = r.call(call, in)
			r.tr.enter(StateInvoked)
			if err != nil && Classify(err) != ClassLayout {
				r.tr.enter(StateNonRecoverableFailure)
				return 0, &Error{Kind: KindNonRecoverable, Err: first}
			}
		}
	default:
		return 0, &Error{
			Kind: KindIncompatibleInterface,
			Err:  fmt.Errorf("incompatible model interface: %s is neither a predictor nor callable", r.h.Kind()),
		}
	}

	if err != nil {
		if y, err = r.settle(call, in, err); err != nil {
			return 0, err
		}
	}
	v, err := coerce(y)
	if err != nil {
		return 0, &Error{Kind: KindNonRecoverable, Err: err}
	}
	return v, nil
}

// settle handles a failed call: a layout failure gets one repair and one
// retry, anything else is final.
func (r *run) settle(call callFunc, in *ndarray.Array, err error) (*ndarray.Array, error) {
	if Classify(err) != ClassLayout {
		r.tr.enter(StateNonRecoverableFailure)
		return nil, &Error{Kind: KindNonRecoverable, Err: err}
	}
	r.tr.enter(StateRecoverableFailureDetected)
	if r.tr.Repairs > 0 {
		return nil, &Error{Kind: KindRecoverableLayoutMismatch, Err: err}
	}
	if r.ctx.Err() != nil {
		return nil, canceled(r.ctx)
	}
	rep := r.iv.repair(r.h)
	r.tr.Repairs++
	r.tr.enter(StateRepaired)
	layoutRepairs.Inc()

	r.tr.enter(StateRetried)
	y, rerr := r.call(call, in)
	if rerr != nil {
		r.iv.logger().Debug().
			Int("replaced", rep.Replaced).
			AnErr("retry_error", rerr).
			Msg("retry after repair failed")
		return nil, &Error{Kind: KindRecoverableLayoutMismatch, Err: err}
	}
	return y, nil
}

// call runs fn, turning a panic in model code into an error.
func (r *run) call(fn callFunc, x *ndarray.Array) (y *ndarray.Array, err error) {
	r.tr.Calls++
	defer func() {
		if p := recover(); p != nil {
			y, err = nil, fmt.Errorf("panic in %s: %v", r.h.Kind(), p)
		}
	}()
	return fn(x)
}

// normalize returns a fresh owning, contiguous float64 copy of x with shape
// (1, catalog.NumFeatures). x must be a vector of that many features or a
// single row of them.
func normalize(x *ndarray.Array) (*ndarray.Array, error) {
	if x == nil {
		return nil, errors.New("Input x is missing")
	}
	if x.Size() == 0 {
		return nil, errors.New("Input x is empty")
	}
	switch x.NDim() {
	case 1:
		if x.Size() != catalog.NumFeatures {
			return nil, fmt.Errorf("Input x has %d features, want %d", x.Size(), catalog.NumFeatures)
		}
	case 2:
		if s := x.Shape(); s[0] != 1 || s[1] != catalog.NumFeatures {
			return nil, fmt.Errorf("Input x has shape %v, want [1 %d]", s, catalog.NumFeatures)
		}
	default:
		return nil, fmt.Errorf("Input x must be 1D or 2D, got %d dimensions", x.NDim())
	}
	// Reshape always copies, even when Contiguous hands back x itself.
	return ndarray.Contiguous(x).Reshape(1, catalog.NumFeatures)
}

// coerce reduces a scalar, 1-element or n-element result to its first value.
func coerce(y *ndarray.Array) (float64, error) {
	if y == nil || y.Size() == 0 {
		return 0, errors.New("model returned an empty prediction")
	}
	data, err := ndarray.Contiguous(y).Float64s("coerce")
	if err != nil {
		return 0, err
	}
	v := data[0]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite prediction: %v", v)
	}
	return v, nil
}
