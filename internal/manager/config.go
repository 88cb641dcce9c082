package manager

import (
	"github.com/rs/zerolog"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
	"surrogated/internal/metadata"
	"surrogated/internal/registry"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultCacheSize = 256
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry *registry.Registry
	// Metadata serves the emissions table. Nil makes every Predict fail with
	// an emissions error, as a missing file would.
	Metadata *metadata.Store
	// Names are the configurations evaluated per request. Empty means catalog.All.
	Names []catalog.Name
	// Concurrency caps simultaneous invocations per request; <= 0 means GOMAXPROCS.
	Concurrency int
	// ErrorMaxLen bounds per-configuration error messages; <= 0 means 300.
	ErrorMaxLen int
	// CacheSize is the number of distinct feature vectors whose outcomes are
	// kept. 0 means the default; negative disables the cache.
	CacheSize int
	Events    EventPublisher
	Logger    *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		reg:    cfg.Registry,
		meta:   cfg.Metadata,
		names:  cfg.Names,
		events: cfg.Events,
		log:    cfg.Logger,
	}
	if m.reg == nil {
		m.reg = registry.FromHandles(nil)
	}
	if len(m.names) == 0 {
		m.names = catalog.All
	}
	if m.events == nil {
		m.events = noopPublisher{}
	}
	if m.log == nil {
		l := zerolog.Nop()
		m.log = &l
	}
	m.opts = invoke.Options{
		Concurrency: cfg.Concurrency,
		ErrorMaxLen: cfg.ErrorMaxLen,
		Invoker:     &invoke.Invoker{Logger: m.log},
	}
	size := cfg.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	if size > 0 {
		m.cache = newOutcomeCache(size)
	}
	m.startTime = timeNow()
	m.events.Publish(Event{Name: "manager_ready", Fields: map[string]any{
		"loaded":     m.reg.Loaded(),
		"configured": len(m.names),
	}})
	return m
}
