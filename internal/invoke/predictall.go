package invoke

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"surrogated/internal/catalog"
	"surrogated/internal/model"
	"surrogated/internal/ndarray"
)

// Source resolves a configuration to its handle. *registry.Registry implements it.
type Source interface {
	Get(n catalog.Name) (model.Component, bool)
}

// Options tunes PredictAll. The zero value is usable.
type Options struct {
	// Concurrency caps simultaneous invocations. <= 0 means GOMAXPROCS.
	Concurrency int
	// ErrorMaxLen bounds error messages. <= 0 means DefaultErrorMaxLen.
	ErrorMaxLen int
	// Invoker evaluates each handle. Nil means Default.
	Invoker *Invoker
}

// PredictAll evaluates v against every name and returns one outcome per
// name. Configurations never affect each other: an absent handle, an unknown
// name or a failed invocation only shapes that configuration's outcome.
// After ctx is done, configurations not yet started report the context error;
// started invocations run to completion.
func PredictAll(ctx context.Context, src Source, names []catalog.Name, v catalog.FeatureVector, opts Options) map[catalog.Name]Outcome {
	out := make(map[catalog.Name]Outcome, len(names))
	if len(v) != catalog.NumFeatures {
		err := &Error{
			Kind: KindMalformedInput,
			Err:  fmt.Errorf("malformed input: expected %d features, got %d", catalog.NumFeatures, len(v)),
		}
		for _, n := range names {
			out[n] = Failure(err, opts.ErrorMaxLen)
		}
		return out
	}

	iv := opts.Invoker
	if iv == nil {
		iv = Default
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	x := v.Array()

	results := make([]Outcome, len(names))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, n := range names {
		i, n := i, n
		g.Go(func() error {
			results[i] = predictOne(ctx, iv, src, n, x, opts.ErrorMaxLen)
			return nil
		})
	}
	_ = g.Wait()

	for i, n := range names {
		out[n] = results[i]
	}
	return out
}

func predictOne(ctx context.Context, iv *Invoker, src Source, n catalog.Name, x *ndarray.Array, maxLen int) Outcome {
	if !catalog.Known(n) {
		return Failure(fmt.Errorf("%w: %s", ErrUnknownConfiguration, n), maxLen)
	}
	if ctx.Err() != nil {
		return Failure(canceled(ctx), maxLen)
	}
	h, ok := src.Get(n)
	if !ok {
		return Failure(ErrNotLoaded, maxLen)
	}
	y, err := iv.Invoke(ctx, h, x)
	if err != nil {
		return Failure(err, maxLen)
	}
	return Success(y)
}
