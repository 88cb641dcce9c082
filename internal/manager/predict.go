package manager

import (
	"context"
	"errors"
	"math"
	"time"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
	"surrogated/internal/metadata"
	"surrogated/pkg/types"
)

var errNoEmissions = errors.New("no emissions file configured")

// Predict evaluates every configured name on the feature vector in payload
// and joins each cost with the configuration's emissions and specific energy.
// payload is the decoded request body: the nine feature fields plus an
// optional emission_scenario.
//
// Only request-wide problems are returned as errors; per-configuration
// failures are reported inside the response.
func (m *Manager) Predict(ctx context.Context, payload map[string]any) (types.PredictResponse, error) {
	start := time.Now()
	sc, _ := payload["emission_scenario"].(string)
	scenario := metadata.ParseScenario(sc)

	table, err := m.table()
	if err != nil {
		err = emissionsUnavailableError{err: err}
		m.setLastError(err.Error())
		return types.PredictResponse{}, err
	}
	v, err := catalog.FromMap(payload)
	if err != nil {
		return types.PredictResponse{}, invalidInputsError{err: err}
	}

	outcomes, cached := m.cache.get(v)
	if !cached {
		outcomes = invoke.PredictAll(ctx, m.reg, m.names, v, m.opts)
		m.cache.put(v, outcomes)
	}

	resp := types.PredictResponse{Results: make(map[string]types.Result, len(outcomes))}
	failed := 0
	for _, n := range m.names {
		o := outcomes[n]
		if !o.OK() {
			failed++
			resp.Results[string(n)] = types.Result{Error: o.Err}
			continue
		}
		em, se := table.Lookup(n, scenario)
		resp.Results[string(n)] = types.Result{
			Cost:       round4(*o.Cost),
			Emissions:  round4(em),
			SpecEnergy: round4(se),
		}
	}

	m.predictions.Add(1)
	if failed == len(m.names) && len(m.names) > 0 {
		m.failures.Add(1)
	}
	m.log.Debug().
		Str("scenario", string(scenario)).
		Int("ok", len(m.names)-failed).
		Int("failed", failed).
		Bool("cached", cached).
		Dur("dur", time.Since(start)).
		Msg("predict")
	m.events.Publish(Event{Name: "predict", Fields: map[string]any{
		"ok":     len(m.names) - failed,
		"failed": failed,
		"cached": cached,
	}})
	return resp, nil
}

func (m *Manager) table() (*metadata.Table, error) {
	if m.meta == nil {
		return nil, errNoEmissions
	}
	return m.meta.Table()
}

// round4 rounds half away from zero to 4 decimals.
func round4(x float64) *float64 {
	r := math.Round(x*1e4) / 1e4
	return &r
}
