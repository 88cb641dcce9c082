package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"surrogated/internal/catalog"
	"surrogated/internal/httpapi"
	"surrogated/internal/manager"
	"surrogated/internal/metadata"
	"surrogated/internal/registry"
)

// artifacts used across the end-to-end tests. Each is stored the way a real
// export leaves it: float32 buffers, Fortran order or views onto larger buffers.
const (
	// cost = cEE + 2*cH2 + 0.5
	linearF32 = `{"model": {"kind": "linear_regression",
		"arrays": {"coef": {"dtype": "float32", "data": [1, 2, 0, 0, 0, 0, 0, 0, 0]}},
		"scalars": {"intercept": 0.5}}}`

	// gaussian rbf with one center at the origin plus a constant tail of 2;
	// the centers are a view onto rows 1..2 of a larger buffer.
	rbfView = `
model:
  kind: rbf_interpolator
  options: {kernel: gaussian, epsilon: 1}
  arrays:
    centers: {shape: [2, 9], window: [1, 2], data: [9, 9, 9, 9, 9, 9, 9, 9, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0]}
    coeffs: {data: [1]}
    poly_coeffs: {data: [2, 0, 0, 0, 0, 0, 0, 0, 0, 0]}
`

	// legacy callable that only accepts 1-D input.
	legacy = `
model:
  kind: rbf_legacy
  options: {kernel: gaussian, epsilon: 1}
  arrays:
    centers: {shape: [1, 9], data: [0, 0, 0, 0, 0, 0, 0, 0, 0]}
    coeffs: {dtype: float32, data: [1]}
    poly_coeffs: {data: [2, 0, 0, 0, 0, 0, 0, 0, 0, 0]}
`

	emissionsCSV = `Case,Spec_Energy,Emissions_energmix_fossil,Emissions_energymix_RE1,Emissions_energymix_RE2
BM,1.5,3,2,1
Coal_CC_MEA,2.5,30,20,10
`
)

var testNames = []catalog.Name{"BM", "Coal_CC_MEA", "NG", "Plasma", "H2"}

// createModelsDir writes artifacts named for their configuration, plus the
// emissions table, and returns the directory.
func createModelsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func defaultFiles() map[string]string {
	return map[string]string{
		"surrogate_BM.json":          linearF32,
		"surrogate_Coal_CC_MEA.yaml": rbfView,
		"surrogate_Plasma.yaml":      legacy,
		"surrogate_NG.json":          `{"model": {"kind": "quantum_forest"}}`,
		"emissions.csv":              emissionsCSV,
	}
}

func newServerForDir(t *testing.T, dir string, opts registry.Options) (*httptest.Server, *metadata.Store) {
	t.Helper()
	reg, err := registry.LoadDir(dir, testNames, opts)
	if err != nil {
		t.Fatalf("load models: %v", err)
	}
	store := metadata.NewStore(filepath.Join(dir, "emissions.csv"), nil)
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry: reg,
		Metadata: store,
		Names:    testNames,
	})
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
