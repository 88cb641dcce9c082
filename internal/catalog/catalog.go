// Package catalog holds the fixed set of process configurations and the
// feature vector every surrogate is evaluated on.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"surrogated/internal/ndarray"
)

// Name identifies one process configuration, e.g. "Coal_CC_MEA".
type Name string

var fuels = []string{"BM", "BG", "Coal", "H2", "MSW", "NG"}

var captures = []string{"", "_CC_CaL", "_CC_MEA", "_CC_MEA_HPs", "_CC_Oxy"}

// All is the full catalog in display order.
var All = func() []Name {
	out := make([]Name, 0, len(fuels)*len(captures)+2)
	for _, f := range fuels {
		for _, c := range captures {
			out = append(out, Name(f+c))
		}
	}
	return append(out, "Hybrid", "Plasma")
}()

var known = func() map[Name]struct{} {
	m := make(map[Name]struct{}, len(All))
	for _, n := range All {
		m[n] = struct{}{}
	}
	return m
}()

// Known reports whether n is in the catalog.
func Known(n Name) bool {
	_, ok := known[n]
	return ok
}

// Parse validates a list of names, dropping blanks.
func Parse(names []string) ([]Name, error) {
	var out []Name
	for _, s := range names {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !Known(Name(s)) {
			return nil, fmt.Errorf("unknown configuration %q", s)
		}
		out = append(out, Name(s))
	}
	return out, nil
}

// ArtifactFile is the file name convention for a configuration's model.
func ArtifactFile(n Name, ext string) string {
	return "surrogate_" + string(n) + ext
}

// Fields is the documented order of the feature vector.
var Fields = []string{"cEE", "cH2", "cNG", "cbioCH4", "cbiomass", "cCoal", "cMSW", "cCO2", "cCO2TnS"}

// NumFeatures is len(Fields).
const NumFeatures = 9

// FeatureVector is one input point in Fields order. Its length is not
// enforced here; the invoker rejects malformed vectors per configuration.
type FeatureVector []float64

// FromMap reads the fields out of a decoded request body. Every field is
// required; numeric strings are accepted.
func FromMap(m map[string]any) (FeatureVector, error) {
	v := make(FeatureVector, 0, len(Fields))
	for _, f := range Fields {
		raw, ok := m[f]
		if !ok {
			return nil, fmt.Errorf("missing field %q", f)
		}
		x, err := toFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f, err)
		}
		v = append(v, x)
	}
	return v, nil
}

func toFloat(raw any) (float64, error) {
	var x float64
	switch t := raw.(type) {
	case float64:
		x = t
	case float32:
		x = float64(t)
	case int:
		x = float64(t)
	case int64:
		x = float64(t)
	case bool:
		if t {
			x = 1
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", t)
		}
		x = f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		x = f
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("could not convert %T to float", raw)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("value is not finite")
	}
	return x, nil
}

// Array returns the vector as a flat float64 array.
func (v FeatureVector) Array() *ndarray.Array {
	a, _ := ndarray.FromFloat64s(append([]float64(nil), v...), len(v))
	return a
}
