package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"surrogated/internal/ndarray"
)

// Spec is the decoded, format-independent description of one component.
type Spec struct {
	Kind    string
	Arrays  map[string]*ndarray.Array
	Scalars map[string]float64
	Options map[string]string
	Steps   []Spec
}

// Factory builds a component from its spec.
type Factory func(s Spec) (Component, error)

var (
	kindsMu sync.RWMutex
	kinds   = map[string]Factory{}
)

// Register adds a kind. It panics on duplicates, like http.Handle.
func Register(kind string, f Factory) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, dup := kinds[kind]; dup {
		panic("model: duplicate kind " + kind)
	}
	kinds[kind] = f
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []string {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnknownKindError is returned by Build for kinds nothing registered.
type UnknownKindError struct{ Kind string }

func (e UnknownKindError) Error() string { return "unknown model kind: " + e.Kind }

// Build constructs the component described by s.
func Build(s Spec) (Component, error) {
	kindsMu.RLock()
	f, ok := kinds[strings.ToLower(strings.TrimSpace(s.Kind))]
	kindsMu.RUnlock()
	if !ok {
		return nil, UnknownKindError{Kind: s.Kind}
	}
	c, err := f(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Kind, err)
	}
	return c, nil
}

func init() {
	Register(KindLinear, newLinear)
	Register(KindPolynomial, newPolynomial)
	Register(KindRBF, newRBFInterpolator)
	Register(KindRBFLegacy, newRBFLegacy)
	Register(KindScaler, newScaler)
	Register(KindPipeline, newPipeline)
}

func (s Spec) array(name string) (*ndarray.Array, error) {
	a, ok := s.Arrays[name]
	if !ok || a == nil {
		return nil, fmt.Errorf("missing array %q", name)
	}
	return a, nil
}

func (s Spec) optionalArray(name string) *Buffer {
	if a, ok := s.Arrays[name]; ok && a != nil {
		return NewBuffer(name, a)
	}
	return nil
}

func (s Spec) scalar(name string, def float64) float64 {
	if v, ok := s.Scalars[name]; ok {
		return v
	}
	return def
}

func (s Spec) option(name, def string) string {
	if v, ok := s.Options[name]; ok && v != "" {
		return v
	}
	return def
}

// intercept accepts either a scalar or a 0-d/1-element array, as estimators store both.
func (s Spec) intercept() *ndarray.Array {
	if a, ok := s.Arrays["intercept"]; ok && a != nil {
		return a
	}
	return ndarray.Scalar(s.scalar("intercept", 0))
}
