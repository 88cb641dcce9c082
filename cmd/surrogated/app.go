package main

import (
	"fmt"

	"surrogated/internal/catalog"
	"surrogated/internal/manager"
	"surrogated/internal/metadata"
	"surrogated/internal/registry"
)

// app is everything a command needs to answer predictions.
type app struct {
	reg   *registry.Registry
	meta  *metadata.Store
	mgr   *manager.Manager
	names []catalog.Name
}

// newApp loads the registry and the emissions table described by cfg.
func newApp(events manager.EventPublisher) (*app, error) {
	names, err := catalog.Parse(cfg.Configurations)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = catalog.All
	}
	reg, err := registry.LoadDir(cfg.ModelsDir, names, registry.Options{
		Extensions:   cfg.ArtifactExts,
		NoLoadRepair: !cfg.Repair(),
		Logger:       &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	meta := metadata.NewStore(cfg.EmissionsFile, &logger)
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:    reg,
		Metadata:    meta,
		Names:       names,
		Concurrency: cfg.Concurrency,
		ErrorMaxLen: cfg.ErrorMaxLen,
		CacheSize:   cfg.CacheSize,
		Events:      events,
		Logger:      &logger,
	})
	return &app{reg: reg, meta: meta, mgr: mgr, names: names}, nil
}
