package metadata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const emissionsCSV = `Case,Spec_Energy,Emissions_energmix_fossil,Emissions_energymix_RE1,Emissions_energymix_RE2
BM,1.23456,10.5,5.25,1.125
Coal_CC_MEA,2.5,20,,3
,9,9,9,9
`

func TestParseAndLookup(t *testing.T) {
	tbl, err := Parse(strings.NewReader(emissionsCSV))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	e, se := tbl.Lookup("BM", ScenarioFossil)
	require.Equal(t, 10.5, e)
	require.Equal(t, 1.23456, se)

	e, _ = tbl.Lookup("BM", ScenarioRE2)
	require.Equal(t, 1.125, e)

	// empty cell and unknown scenario
	e, se = tbl.Lookup("Coal_CC_MEA", "solar")
	require.Equal(t, 0.0, e)
	require.Equal(t, 2.5, se)

	e, se = tbl.Lookup("Plasma", ScenarioRE1)
	require.Zero(t, e)
	require.Zero(t, se)
}

func TestParseScenario(t *testing.T) {
	require.Equal(t, ScenarioFossil, ParseScenario("fossil"))
	require.Equal(t, ScenarioRE2, ParseScenario("RE2"))
	require.Equal(t, ScenarioRE1, ParseScenario(""))
	require.Equal(t, ScenarioRE1, ParseScenario("re2"))
	require.Equal(t, "Emissions_energmix_fossil", ScenarioFossil.Column())
	require.Equal(t, "Emissions_energymix_RE1", Scenario("x").Column())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.ErrorContains(t, err, "empty file")

	_, err = Parse(strings.NewReader("Case,Emissions_energymix_RE1\nBM,1\n"))
	require.ErrorContains(t, err, `missing column "Spec_Energy"`)

	_, err = Parse(strings.NewReader("Case,Spec_Energy,Emissions_energymix_RE1\nBM,high,1\n"))
	require.ErrorContains(t, err, "line 2: Spec_Energy")
}

func TestParseOptionalScenarioColumnsAndBOM(t *testing.T) {
	tbl, err := Parse(strings.NewReader("\ufeffCase, Spec_Energy, Emissions_energymix_RE1\nH2, 3, 4\n"))
	require.NoError(t, err)
	e, se := tbl.Lookup("H2", ScenarioRE1)
	require.Equal(t, 4.0, e)
	require.Equal(t, 3.0, se)
	e, _ = tbl.Lookup("H2", ScenarioFossil)
	require.Zero(t, e)
}

func TestStoreKeepsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emissions.csv")
	s := NewStore(path, nil)
	_, err := s.Table()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(emissionsCSV), 0o644))
	require.NoError(t, s.Reload())
	tbl, err := s.Table()
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	require.False(t, s.LoadedAt().IsZero())
}

func TestStoreWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emissions.csv")
	require.NoError(t, os.WriteFile(path, []byte(emissionsCSV), 0o644))
	s := NewStore(path, nil)
	s.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	updated := emissionsCSV + "Plasma,7,1,2,3\n"
	require.Eventually(t, func() bool {
		// rewrite until the watcher, which may still be starting, sees it
		_ = os.WriteFile(path, []byte(updated), 0o644)
		tbl, err := s.Table()
		return err == nil && tbl.Len() == 3
	}, 5*time.Second, 50*time.Millisecond)
}
