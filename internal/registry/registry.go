package registry

import (
	"surrogated/internal/catalog"
	"surrogated/internal/model"
)

// Status is the load outcome for one configuration.
type Status string

const (
	StatusLoaded  Status = "loaded"
	StatusMissing Status = "missing"
	StatusCorrupt Status = "corrupt"
)

// Entry is the registry record for one configuration.
type Entry struct {
	Name   catalog.Name
	Status Status
	// Handle is nil unless Status is StatusLoaded.
	Handle model.Component
	Path   string
	Err    string
	// Repair is the result of the load-time repair pass.
	Repair RepairReport
}

// Registry maps configuration names to loaded handles. It is built once and
// only read afterwards; handles may still have their buffers repaired in place.
type Registry struct {
	dir     string
	order   []catalog.Name
	entries map[catalog.Name]Entry
}

// FromHandles builds a registry from handles already in memory. A nil handle
// records the configuration as missing.
func FromHandles(handles map[catalog.Name]model.Component) *Registry {
	r := &Registry{entries: make(map[catalog.Name]Entry, len(handles))}
	for _, n := range catalog.All {
		if h, ok := handles[n]; ok {
			r.add(entryFor(n, h))
		}
	}
	for n, h := range handles {
		if _, done := r.entries[n]; !done {
			r.add(entryFor(n, h))
		}
	}
	return r
}

func entryFor(n catalog.Name, h model.Component) Entry {
	if h == nil {
		return Entry{Name: n, Status: StatusMissing, Err: ErrArtifactMissing.Error()}
	}
	return Entry{Name: n, Status: StatusLoaded, Handle: h}
}

func (r *Registry) add(e Entry) {
	r.order = append(r.order, e.Name)
	r.entries[e.Name] = e
}

// Dir is the directory the registry was loaded from, if any.
func (r *Registry) Dir() string { return r.dir }

// Get returns the handle for n, or false when n is absent or failed to load.
func (r *Registry) Get(n catalog.Name) (model.Component, bool) {
	e, ok := r.entries[n]
	if !ok || e.Handle == nil {
		return nil, false
	}
	return e.Handle, true
}

// Entry returns the record for n.
func (r *Registry) Entry(n catalog.Name) (Entry, bool) {
	e, ok := r.entries[n]
	return e, ok
}

// Entries returns a copy of every record in catalog order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.entries[n])
	}
	return out
}

// Names returns the configurations the registry was built for.
func (r *Registry) Names() []catalog.Name {
	return append([]catalog.Name(nil), r.order...)
}

// Loaded counts configurations with a usable handle.
func (r *Registry) Loaded() int {
	n := 0
	for _, e := range r.entries {
		if e.Handle != nil {
			n++
		}
	}
	return n
}
