package manager

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"surrogated/internal/catalog"
	"surrogated/internal/invoke"
	"surrogated/internal/metadata"
	"surrogated/internal/model"
	"surrogated/internal/ndarray"
	"surrogated/internal/registry"
	"surrogated/pkg/types"
)

const testCSV = `Case,Spec_Energy,Emissions_energmix_fossil,Emissions_energymix_RE1,Emissions_energymix_RE2
BM,1.23456,10.5,5.25,1.125
Coal_CC_MEA,2.5,20,,3
`

var testNames = []catalog.Name{"Coal_CC_MEA", "BM", "H2_CC_Oxy", "NG"}

// constPredictor returns 42.5 for every row and counts calls.
type constPredictor struct{ calls atomic.Int32 }

func (p *constPredictor) Kind() string             { return "const" }
func (p *constPredictor) Buffers() []*model.Buffer { return nil }
func (p *constPredictor) Predict(x *ndarray.Array) (*ndarray.Array, error) {
	p.calls.Add(1)
	return ndarray.MustNew(ndarray.Float64, []float64{42.5}, 1, 1), nil
}

func payload(scenario string) map[string]any {
	m := map[string]any{
		"cEE": 0.01, "cH2": 0.01, "cNG": 0.1, "cbioCH4": 0.07, "cbiomass": 0.01,
		"cCoal": 0.1, "cMSW": 0.01, "cCO2": 0.1, "cCO2TnS": 0.05,
	}
	if scenario != "" {
		m["emission_scenario"] = scenario
	}
	return m
}

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "emissions.csv")
	if err := os.WriteFile(p, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func newTestManager(t *testing.T, cfg ManagerConfig) (*Manager, *constPredictor) {
	t.Helper()
	p := &constPredictor{}
	if cfg.Registry == nil {
		lin := model.NewLinearRegression(ndarray.MustNew(ndarray.Float32, []float64{1, 2, 0, 0, 0, 0, 0, 0, 0}, 9), 0.5)
		cfg.Registry = registry.FromHandles(map[catalog.Name]model.Component{
			"Coal_CC_MEA": p,
			"BM":          lin,
			"H2_CC_Oxy":   nil,
			"NG":          model.NewStandardScaler(ndarray.Scalar(0).Ravel(), ndarray.Scalar(1).Ravel()),
		})
	}
	if cfg.Names == nil {
		cfg.Names = testNames
	}
	if cfg.Metadata == nil {
		cfg.Metadata = metadata.NewStore(writeCSV(t), nil)
	}
	return NewWithConfig(cfg), p
}

func TestPredictEnrichesResults(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	resp, err := m.Predict(context.Background(), payload("fossil"))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(resp.Results) != len(testNames) {
		t.Fatalf("want %d results, got %d", len(testNames), len(resp.Results))
	}

	coal := resp.Results["Coal_CC_MEA"]
	if coal.Error != "" || *coal.Cost != 42.5 || *coal.Emissions != 20 || *coal.SpecEnergy != 2.5 {
		t.Fatalf("unexpected Coal_CC_MEA result: %+v", coal)
	}
	bm := resp.Results["BM"]
	if bm.Error != "" || *bm.Cost != 0.53 || *bm.Emissions != 10.5 || *bm.SpecEnergy != 1.2346 {
		t.Fatalf("unexpected BM result: %+v", bm)
	}
	if got := resp.Results["H2_CC_Oxy"]; got.Error != "Model not loaded" || got.Cost != nil {
		t.Fatalf("unexpected H2_CC_Oxy result: %+v", got)
	}
	if got := resp.Results["NG"]; !strings.HasPrefix(got.Error, "incompatible model interface") {
		t.Fatalf("unexpected NG result: %+v", got)
	}
}

func TestPredictDefaultScenarioAndEmptyCell(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	for _, sc := range []string{"", "RE1", "solar"} {
		resp, err := m.Predict(context.Background(), payload(sc))
		if err != nil {
			t.Fatalf("predict %q: %v", sc, err)
		}
		if got := *resp.Results["BM"].Emissions; got != 5.25 {
			t.Fatalf("scenario %q: BM emissions=%v", sc, got)
		}
		if got := *resp.Results["Coal_CC_MEA"].Emissions; got != 0 {
			t.Fatalf("scenario %q: Coal_CC_MEA emissions=%v", sc, got)
		}
	}
}

func TestPredictInvalidInputs(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	p := payload("")
	delete(p, "cCO2")
	_, err := m.Predict(context.Background(), p)
	if !IsInvalidInputs(err) {
		t.Fatalf("expected invalid inputs, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), `Invalid inputs: missing field "cCO2"`) {
		t.Fatalf("message=%q", err.Error())
	}

	p = payload("")
	p["cNG"] = "abc"
	if _, err := m.Predict(context.Background(), p); !IsInvalidInputs(err) {
		t.Fatalf("expected invalid inputs for non-numeric string, got %v", err)
	}
}

func TestPredictEmissionsCheckedFirst(t *testing.T) {
	m, p := newTestManager(t, ManagerConfig{})
	m.meta = nil
	bad := payload("")
	delete(bad, "cEE")
	_, err := m.Predict(context.Background(), bad)
	if !IsEmissionsUnavailable(err) {
		t.Fatalf("expected emissions error before input validation, got %v", err)
	}
	if err.Error() != "Failed to read emissions.csv: no emissions file configured" {
		t.Fatalf("message=%q", err.Error())
	}
	if p.calls.Load() != 0 {
		t.Fatalf("no model should run without emissions")
	}
	if m.Status().LastError != err.Error() {
		t.Fatalf("last error not recorded")
	}
}

func TestPredictMissingEmissionsFile(t *testing.T) {
	store := metadata.NewStore(filepath.Join(t.TempDir(), "absent.csv"), nil)
	m, _ := newTestManager(t, ManagerConfig{Metadata: store})
	_, err := m.Predict(context.Background(), payload(""))
	if !IsEmissionsUnavailable(err) || !strings.HasPrefix(err.Error(), "Failed to read emissions.csv: ") {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestPredictCachesOutcomes(t *testing.T) {
	pub := NewMemoryPublisher()
	m, p := newTestManager(t, ManagerConfig{Events: pub})
	for i := 0; i < 3; i++ {
		if _, err := m.Predict(context.Background(), payload("")); err != nil {
			t.Fatalf("predict: %v", err)
		}
	}
	if got := p.calls.Load(); got != 1 {
		t.Fatalf("expected one model call, got %d", got)
	}
	evs := pub.Named("predict")
	if len(evs) != 3 || evs[0].Fields["cached"] != false || evs[2].Fields["cached"] != true {
		t.Fatalf("unexpected predict events: %+v", evs)
	}
	if st := m.Status(); st.CachedVectors != 1 || st.PredictionsTotal != 3 {
		t.Fatalf("unexpected status %+v", st)
	}

	// a different vector misses
	other := payload("")
	other["cCoal"] = 0.2
	if _, err := m.Predict(context.Background(), other); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("expected a second model call, got %d", got)
	}
}

func TestPredictCacheDisabled(t *testing.T) {
	m, p := newTestManager(t, ManagerConfig{CacheSize: -1})
	for i := 0; i < 2; i++ {
		if _, err := m.Predict(context.Background(), payload("")); err != nil {
			t.Fatalf("predict: %v", err)
		}
	}
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("expected two model calls, got %d", got)
	}
	if m.Status().CachedVectors != 0 {
		t.Fatalf("disabled cache should be empty")
	}
}

func TestPredictCanceledIsNotCached(t *testing.T) {
	m, p := newTestManager(t, ManagerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := m.Predict(ctx, payload(""))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if resp.Results["Coal_CC_MEA"].Error == "" {
		t.Fatalf("expected canceled outcome")
	}
	if _, err := m.Predict(context.Background(), payload("")); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p.calls.Load() != 1 {
		t.Fatalf("canceled outcomes must not be served from cache")
	}
}

func TestSweep(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	inputs := payload("")
	resp, err := m.Sweep(context.Background(), types.SweepRequest{
		Configuration: "BM", Inputs: inputs, Field: "cEE", Lo: 0, Hi: 1, Steps: 3,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	want := []struct{ x, y float64 }{{0, 0.52}, {0.5, 1.02}, {1, 1.52}}
	if len(resp.Points) != len(want) {
		t.Fatalf("points=%d", len(resp.Points))
	}
	for i, w := range want {
		p := resp.Points[i]
		if p.Value != w.x || p.Cost == nil || math.Abs(*p.Cost-w.y) > 1e-9 {
			t.Fatalf("point %d: %+v", i, p)
		}
	}
	if inputs["cEE"] != 0.01 {
		t.Fatalf("sweep modified the inputs")
	}

	// the swept field may be left out
	delete(inputs, "cCoal")
	resp, err = m.Sweep(context.Background(), types.SweepRequest{
		Configuration: "NG", Inputs: inputs, Field: "cCoal", Lo: 0.01, Hi: 0.09, Steps: 2,
	})
	if err != nil || len(resp.Points) != 2 || resp.Points[0].Error == "" || resp.Points[0].Cost != nil {
		t.Fatalf("expected per-point errors, got %+v err=%v", resp, err)
	}
}

func TestSweepRejects(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	in := payload("")
	short := payload("")
	delete(short, "cMSW")
	cases := []struct {
		name  string
		req   types.SweepRequest
		check func(error) bool
	}{
		{"unknown configuration", types.SweepRequest{Configuration: "Nope", Inputs: in, Field: "cEE", Steps: 2}, IsConfigurationNotFound},
		{"unknown field", types.SweepRequest{Configuration: "BM", Inputs: in, Field: "cGold", Steps: 2}, IsInvalidInputs},
		{"missing input", types.SweepRequest{Configuration: "BM", Inputs: short, Field: "cEE", Steps: 2}, IsInvalidInputs},
		{"one step", types.SweepRequest{Configuration: "BM", Inputs: in, Field: "cEE", Steps: 1}, IsInvalidInputs},
		{"not loaded", types.SweepRequest{Configuration: "H2_CC_Oxy", Inputs: in, Field: "cEE", Steps: 2}, func(err error) bool {
			return errors.Is(err, invoke.ErrNotLoaded)
		}},
	}
	for _, tc := range cases {
		if _, err := m.Sweep(context.Background(), tc.req); !tc.check(err) {
			t.Fatalf("%s: unexpected err %v", tc.name, err)
		}
	}
}

func TestStatus(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	timeNow = func() time.Time { return start }
	defer func() { timeNow = time.Now }()

	m, _ := newTestManager(t, ManagerConfig{})
	timeNow = func() time.Time { return start.Add(90 * time.Second) }

	st := m.Status()
	if st.State != "ready" || st.Configured != 4 || st.Loaded != 3 || st.Missing != 1 || st.Corrupt != 0 {
		t.Fatalf("unexpected counts %+v", st)
	}
	if st.UptimeSeconds != 90 || st.ServerTimeUnix != start.Unix()+90 {
		t.Fatalf("unexpected times %+v", st)
	}
	if st.EmissionsFile == "" || st.EmissionsError != "" {
		t.Fatalf("unexpected emissions status %+v", st)
	}
}

func TestStatusNothingLoaded(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{Registry: registry.FromHandles(nil)})
	if m.Ready() {
		t.Fatalf("empty registry should not be ready")
	}
	st := m.Status()
	if st.State != "error" || st.Missing != 4 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestListConfigurations(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	got := m.ListConfigurations()
	if len(got) != 4 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].Name != "Coal_CC_MEA" || got[0].Status != "loaded" || got[0].Kind != "const" {
		t.Fatalf("unexpected first entry %+v", got[0])
	}
	if got[1].Kind != model.KindLinear {
		t.Fatalf("unexpected BM entry %+v", got[1])
	}
	if got[2].Status != "missing" || got[2].Error == "" {
		t.Fatalf("unexpected H2_CC_Oxy entry %+v", got[2])
	}
}

func TestSanityCheck(t *testing.T) {
	m, _ := newTestManager(t, ManagerConfig{})
	r := m.SanityCheck()
	if r.OK() || r.Loaded != 3 || !r.EmissionsOK {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(r.Missing) != 1 || r.Missing[0] != "H2_CC_Oxy" {
		t.Fatalf("missing=%v", r.Missing)
	}
	if strings.Join(r.WithoutMetadata, ",") != "H2_CC_Oxy,NG" {
		t.Fatalf("without metadata=%v", r.WithoutMetadata)
	}

	m.meta = nil
	if r := m.SanityCheck(); r.EmissionsOK || !strings.HasPrefix(r.Error, "Failed to read emissions.csv") {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestManagerReadyEvent(t *testing.T) {
	pub := NewMemoryPublisher()
	newTestManager(t, ManagerConfig{Events: pub})
	evs := pub.Named("manager_ready")
	if len(evs) != 1 || evs[0].Fields["loaded"] != 3 || evs[0].Fields["configured"] != 4 {
		t.Fatalf("unexpected events %+v", evs)
	}
}
