package invoke

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"surrogated/internal/catalog"
	"surrogated/internal/model"
	"surrogated/internal/ndarray"
	"surrogated/internal/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func cost(v float64) *float64 { return &v }

func testRegistry(t *testing.T) (*registry.Registry, *fakeBoth) {
	t.Helper()
	f := &fakeBoth{}
	lin := model.NewLinearRegression(ndarray.MustNew(ndarray.Float32, []float64{1, 2, 0, 0, 0, 0, 0, 0, 0}, 9), 0.5)
	r := registry.FromHandles(map[catalog.Name]model.Component{
		"Coal_CC_MEA": f,
		"BM":          lin,
		"H2_CC_Oxy":   nil,
		"NG":          model.NewStandardScaler(vec(0), vec(1)),
	})
	return r, f
}

func TestPredictAll(t *testing.T) {
	r, _ := testRegistry(t)
	names := []catalog.Name{"Coal_CC_MEA", "BM", "H2_CC_Oxy", "NG", "Nope"}
	got := PredictAll(context.Background(), r, names, scenarioInput, Options{Concurrency: 2})

	want := map[catalog.Name]Outcome{
		"Coal_CC_MEA": {Cost: cost(42.5)},
		"H2_CC_Oxy":   {Err: "Model not loaded"},
		"NG": {
			Err:  "incompatible model interface: standard_scaler is neither a predictor nor callable",
			Kind: KindIncompatibleInterface,
		},
		"Nope": {Err: "unknown configuration: Nope"},
	}
	bm := got["BM"]
	delete(got, "BM")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if !bm.OK() || *bm.Cost < 0.5299 || *bm.Cost > 0.5301 {
		t.Fatalf("BM outcome %+v", bm)
	}
}

func TestPredictAllMalformedVector(t *testing.T) {
	r, f := testRegistry(t)
	short := catalog.FeatureVector(scenarioInput[:8])
	got := PredictAll(context.Background(), r, []catalog.Name{"Coal_CC_MEA", "BM"}, short, Options{})
	for n, o := range got {
		if o.OK() || o.Kind != KindMalformedInput || o.Err != "malformed input: expected 9 features, got 8" {
			t.Fatalf("%s: %+v", n, o)
		}
	}
	if len(got) != 2 || f.predicts != 0 {
		t.Fatalf("outcomes=%d predicts=%d", len(got), f.predicts)
	}
}

func TestPredictAllConcurrencyDoesNotChangeResults(t *testing.T) {
	run := func(limit int) map[catalog.Name]Outcome {
		r, _ := testRegistry(t)
		return PredictAll(context.Background(), r, catalog.All, scenarioInput, Options{Concurrency: limit})
	}
	serial, parallel := run(1), run(8)
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("results depend on concurrency (-serial +parallel):\n%s", diff)
	}
	if len(serial) != len(catalog.All) {
		t.Fatalf("expected one outcome per configuration, got %d", len(serial))
	}
}

func TestPredictAllCanceled(t *testing.T) {
	r, f := testRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := PredictAll(ctx, r, []catalog.Name{"Coal_CC_MEA", "BM"}, scenarioInput, Options{})
	for n, o := range got {
		if o.Err != "context canceled" || o.Kind != KindCanceled {
			t.Fatalf("%s: %+v", n, o)
		}
	}
	if f.predicts != 0 {
		t.Fatalf("canceled request reached a handle")
	}
}

func TestPredictAllTruncatesErrors(t *testing.T) {
	long := make([]byte, 0, 600)
	for len(long) < 600 {
		long = append(long, "layout ok, data bad "...)
	}
	fn := &model.Func{Name: "noisy", Fn: func(*ndarray.Array) (*ndarray.Array, error) {
		return nil, &wrappedErr{msg: string(long) + "\nsecond line"}
	}}
	r := registry.FromHandles(map[catalog.Name]model.Component{"Plasma": fn})
	got := PredictAll(context.Background(), r, []catalog.Name{"Plasma"}, scenarioInput, Options{ErrorMaxLen: 50})
	if o := got["Plasma"]; len(o.Err) != 50 || o.Kind != KindNonRecoverable {
		t.Fatalf("outcome %+v", o)
	}
}

type wrappedErr struct{ msg string }

func (e *wrappedErr) Error() string { return e.msg }
