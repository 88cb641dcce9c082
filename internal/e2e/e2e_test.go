package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"surrogated/internal/registry"
	"surrogated/pkg/types"
)

const predictBody = `{"cEE": 0.1, "cH2": 0, "cNG": 0, "cbioCH4": 0, "cbiomass": 0,
	"cCoal": 0, "cMSW": 0, "cCO2": 0, "cCO2TnS": 0%s}`

func decodePredict(t *testing.T, resp *http.Response) types.PredictResponse {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var out types.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func checkValue(t *testing.T, what string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s missing", what)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s=%v want %v", what, *got, want)
	}
}

// Every configuration answers on one request: loaded models with a cost,
// missing and corrupt ones with an error.
func TestE2E_PredictAcrossConfigurations(t *testing.T) {
	for _, repairOnLoad := range []bool{true, false} {
		t.Run(fmt.Sprintf("load_repair=%v", repairOnLoad), func(t *testing.T) {
			dir := createModelsDir(t, defaultFiles())
			srv, _ := newServerForDir(t, dir, registry.Options{NoLoadRepair: !repairOnLoad})

			out := decodePredict(t, postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, "")))
			if len(out.Results) != len(testNames) {
				t.Fatalf("results=%d want %d", len(out.Results), len(testNames))
			}

			bm := out.Results["BM"]
			checkValue(t, "BM cost", bm.Cost, 0.6)
			checkValue(t, "BM emissions", bm.Emissions, 2)
			checkValue(t, "BM spec_energy", bm.SpecEnergy, 1.5)

			coal := out.Results["Coal_CC_MEA"]
			checkValue(t, "Coal cost", coal.Cost, 2.99)
			checkValue(t, "Coal emissions", coal.Emissions, 20)

			// only accepts 1-D input; no metadata row
			plasma := out.Results["Plasma"]
			checkValue(t, "Plasma cost", plasma.Cost, 2.99)
			checkValue(t, "Plasma emissions", plasma.Emissions, 0)

			for _, n := range []string{"NG", "H2"} {
				r := out.Results[n]
				if r.Cost != nil || r.Error != "Model not loaded" {
					t.Fatalf("%s: %+v", n, r)
				}
			}
		})
	}
}

func TestE2E_EmissionScenario(t *testing.T) {
	dir := createModelsDir(t, defaultFiles())
	srv, _ := newServerForDir(t, dir, registry.Options{})

	out := decodePredict(t, postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, `, "emission_scenario": "RE2"`)))
	checkValue(t, "BM emissions", out.Results["BM"].Emissions, 1)
	checkValue(t, "Coal emissions", out.Results["Coal_CC_MEA"].Emissions, 10)

	out = decodePredict(t, postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, `, "emission_scenario": "fossil"`)))
	checkValue(t, "BM emissions", out.Results["BM"].Emissions, 3)

	// unknown scenarios fall back to RE1
	out = decodePredict(t, postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, `, "emission_scenario": "solar"`)))
	checkValue(t, "BM emissions", out.Results["BM"].Emissions, 2)
}

func TestE2E_RequestErrors(t *testing.T) {
	dir := createModelsDir(t, defaultFiles())
	srv, _ := newServerForDir(t, dir, registry.Options{})

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"cEE":`, http.StatusBadRequest},
		{"missing field", `{"cEE": 1}`, http.StatusBadRequest},
		{"non numeric", `{"cEE": "x", "cH2": 0, "cNG": 0, "cbioCH4": 0, "cbiomass": 0, "cCoal": 0, "cMSW": 0, "cCO2": 0, "cCO2TnS": 0}`, http.StatusBadRequest},
		{"not an object", `[1, 2]`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/predict", tc.body)
			if resp.StatusCode != tc.code {
				t.Fatalf("status=%d want %d", resp.StatusCode, tc.code)
			}
			var e types.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Code != tc.code || e.Error == "" {
				t.Fatalf("error body: %+v", e)
			}
		})
	}
}

func TestE2E_EmissionsFileRemoved(t *testing.T) {
	dir := createModelsDir(t, defaultFiles())
	srv, store := newServerForDir(t, dir, registry.Options{})
	if err := os.Remove(filepath.Join(dir, "emissions.csv")); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	resp := postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, ""))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", resp.StatusCode)
	}
}

func TestE2E_ConfigurationsStatusAndReady(t *testing.T) {
	dir := createModelsDir(t, defaultFiles())
	srv, _ := newServerForDir(t, dir, registry.Options{})

	resp, err := http.Get(srv.URL + "/configurations")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var cfgs types.ConfigurationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cfgs); err != nil {
		t.Fatal(err)
	}
	byName := map[string]types.ConfigurationStatus{}
	for _, c := range cfgs.Configurations {
		byName[c.Name] = c
	}
	if got := byName["BM"]; got.Status != "loaded" || got.BuffersRepaired == 0 {
		t.Fatalf("BM: %+v", got)
	}
	if got := byName["NG"]; got.Status != "corrupt" || got.Error == "" {
		t.Fatalf("NG: %+v", got)
	}
	if got := byName["H2"]; got.Status != "missing" {
		t.Fatalf("H2: %+v", got)
	}

	resp2, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(resp2.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.State != "ready" || st.Loaded != 3 || st.Corrupt != 1 || st.Missing != 1 || st.Configured != 5 {
		t.Fatalf("status: %+v", st)
	}
	if st.EmissionsError != "" || st.EmissionsFile == "" {
		t.Fatalf("emissions status: %+v", st)
	}

	resp3, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("/readyz=%d", resp3.StatusCode)
	}
}

func TestE2E_NotReadyWithoutArtifacts(t *testing.T) {
	dir := createModelsDir(t, map[string]string{"emissions.csv": emissionsCSV})
	srv, _ := newServerForDir(t, dir, registry.Options{})

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz=%d want 503", resp.StatusCode)
	}

	// predictions still answer, every configuration with an error
	out := decodePredict(t, postJSON(t, srv.URL+"/predict", fmt.Sprintf(predictBody, "")))
	for n, r := range out.Results {
		if r.Error == "" {
			t.Fatalf("%s: expected error, got %+v", n, r)
		}
	}
}

func TestE2E_Sweep(t *testing.T) {
	dir := createModelsDir(t, defaultFiles())
	srv, _ := newServerForDir(t, dir, registry.Options{NoLoadRepair: true})

	body := `{"configuration": "BM", "field": "cEE", "lo": 0, "hi": 1, "steps": 3,
		"inputs": {"cH2": 0, "cNG": 0, "cbioCH4": 0, "cbiomass": 0, "cCoal": 0, "cMSW": 0, "cCO2": 0, "cCO2TnS": 0}}`
	resp := postJSON(t, srv.URL+"/sweep", body)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	var out types.SweepResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 1, 1.5}
	if len(out.Points) != len(want) {
		t.Fatalf("points=%d", len(out.Points))
	}
	for i, p := range out.Points {
		checkValue(t, fmt.Sprintf("point %d", i), p.Cost, want[i])
	}

	for _, tc := range []struct {
		body string
		code int
	}{
		{`{"configuration": "Nope", "field": "cEE", "steps": 3}`, http.StatusNotFound},
		{`{"configuration": "H2", "field": "cEE", "steps": 3, "inputs": {"cH2": 0, "cNG": 0, "cbioCH4": 0, "cbiomass": 0, "cCoal": 0, "cMSW": 0, "cCO2": 0, "cCO2TnS": 0}}`, http.StatusServiceUnavailable},
		{`{"configuration": "BM", "field": "cXX", "steps": 3}`, http.StatusBadRequest},
	} {
		resp := postJSON(t, srv.URL+"/sweep", tc.body)
		if resp.StatusCode != tc.code {
			t.Fatalf("%s: status=%d want %d", tc.body, resp.StatusCode, tc.code)
		}
	}
}
