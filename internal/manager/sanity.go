package manager

import (
	"surrogated/internal/registry"
)

// SanityReport describes whether the server can answer predictions and what
// is missing. It backs the check command and the startup summary.
type SanityReport struct {
	Loaded          int      `json:"loaded"`
	Missing         []string `json:"missing,omitempty"`
	Corrupt         []string `json:"corrupt,omitempty"`
	EmissionsOK     bool     `json:"emissions_ok"`
	WithoutMetadata []string `json:"without_metadata,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// OK reports whether every configured artifact loaded and the emissions table is readable.
func (r SanityReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Corrupt) == 0 && r.EmissionsOK
}

// SanityCheck inspects the registry and the emissions table.
// It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	var r SanityReport
	for _, n := range m.names {
		e, ok := m.reg.Entry(n)
		switch {
		case ok && e.Status == registry.StatusLoaded:
			r.Loaded++
		case ok && e.Status == registry.StatusCorrupt:
			r.Corrupt = append(r.Corrupt, string(n))
		default:
			r.Missing = append(r.Missing, string(n))
		}
	}
	t, err := m.table()
	if err != nil {
		r.Error = emissionsUnavailableError{err: err}.Error()
		return r
	}
	r.EmissionsOK = true
	for _, n := range m.names {
		if _, ok := t.Row(n); !ok {
			r.WithoutMetadata = append(r.WithoutMetadata, string(n))
		}
	}
	return r
}
