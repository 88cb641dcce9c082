package manager

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/floats"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
	"surrogated/pkg/types"
)

// maxSweepSteps bounds a single sweep.
const maxSweepSteps = 100_000

// Sweep evaluates one configuration along a line through input space. Points
// that fail carry their error; the sweep itself only fails on a bad request,
// an unknown configuration or a handle that is not loaded.
// The swept field may be omitted from Inputs.
func (m *Manager) Sweep(ctx context.Context, req types.SweepRequest) (types.SweepResponse, error) {
	name := catalog.Name(req.Configuration)
	resp := types.SweepResponse{Configuration: req.Configuration, Field: req.Field}
	if !catalog.Known(name) {
		return resp, ErrConfigurationNotFound(req.Configuration)
	}
	idx := slices.Index(catalog.Fields, req.Field)
	if idx < 0 {
		return resp, invalidInputsError{err: fmt.Errorf("unknown field %q", req.Field)}
	}
	if req.Steps < 2 || req.Steps > maxSweepSteps {
		return resp, invalidInputsError{err: fmt.Errorf("steps must be between 2 and %d, got %d", maxSweepSteps, req.Steps)}
	}
	inputs := maps.Clone(req.Inputs)
	if inputs == nil {
		inputs = map[string]any{}
	}
	inputs[req.Field] = req.Lo
	v, err := catalog.FromMap(inputs)
	if err != nil {
		return resp, invalidInputsError{err: err}
	}
	h, ok := m.reg.Get(name)
	if !ok {
		return resp, notLoadedError{name: req.Configuration}
	}

	xs := floats.Span(make([]float64, req.Steps), req.Lo, req.Hi)
	out := make([]types.SweepPoint, 0, len(xs))
	for _, x := range xs {
		if err := ctx.Err(); err != nil {
			resp.Points = out
			return resp, err
		}
		v[idx] = x
		p := types.SweepPoint{Value: x}
		y, err := m.opts.Invoker.Invoke(ctx, h, v.Array())
		if err != nil {
			p.Error = invoke.UserMessage(err, m.opts.ErrorMaxLen)
		} else {
			p.Cost = &y
		}
		out = append(out, p)
	}
	resp.Points = out
	m.log.Debug().Str("configuration", req.Configuration).Str("field", req.Field).Int("steps", req.Steps).Msg("sweep")
	return resp, nil
}
