package manager

import (
	"surrogated/internal/registry"
	"surrogated/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	now := timeNow()
	resp := types.StatusResponse{
		State:            "ready",
		Configured:       len(m.names),
		ModelsDir:        m.reg.Dir(),
		UptimeSeconds:    int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:   now.Unix(),
		PredictionsTotal: m.predictions.Load(),
		FailedTotal:      m.failures.Load(),
		CachedVectors:    m.cache.len(),
		LastError:        m.lastError(),
	}
	for _, c := range m.ListConfigurations() {
		switch registry.Status(c.Status) {
		case registry.StatusLoaded:
			resp.Loaded++
		case registry.StatusCorrupt:
			resp.Corrupt++
		default:
			resp.Missing++
		}
	}
	if !m.Ready() {
		resp.State = "error"
		resp.Error = "no configuration loaded"
	}
	if m.meta != nil {
		resp.EmissionsFile = m.meta.Path()
		resp.EmissionsLoadedUnix = m.meta.LoadedAt().Unix()
		if _, err := m.meta.Table(); err != nil {
			resp.EmissionsError = err.Error()
		}
	} else {
		resp.EmissionsError = errNoEmissions.Error()
	}
	return resp
}
