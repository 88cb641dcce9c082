package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
	"surrogated/internal/metadata"
	"surrogated/internal/registry"
	"surrogated/pkg/types"
)

var timeNow = time.Now

type Manager struct {
	reg    *registry.Registry
	meta   *metadata.Store
	names  []catalog.Name
	opts   invoke.Options
	cache  *outcomeCache
	events EventPublisher
	log    *zerolog.Logger

	startTime   time.Time
	predictions atomic.Uint64
	failures    atomic.Uint64

	mu      sync.RWMutex
	lastErr string
}

// Ready reports whether at least one configuration can be predicted.
func (m *Manager) Ready() bool {
	return m.reg.Loaded() > 0
}

// Registry exposes the registry the manager serves.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// ListConfigurations returns the registry record of every configured name.
func (m *Manager) ListConfigurations() []types.ConfigurationStatus {
	out := make([]types.ConfigurationStatus, 0, len(m.names))
	for _, n := range m.names {
		cs := types.ConfigurationStatus{Name: string(n), Status: string(registry.StatusMissing)}
		if e, ok := m.reg.Entry(n); ok {
			cs.Status = string(e.Status)
			cs.Path = e.Path
			cs.Error = e.Err
			cs.BuffersRepaired = e.Repair.Replaced
			if e.Handle != nil {
				cs.Kind = e.Handle.Kind()
			}
		}
		out = append(out, cs)
	}
	return out
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

func (m *Manager) lastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}
