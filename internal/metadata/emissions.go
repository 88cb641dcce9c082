// Package metadata reads the per-configuration emissions and specific energy
// table that predictions are enriched with.
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"surrogated/internal/catalog"
)

// Scenario selects the energy mix the emissions column is computed for.
type Scenario string

const (
	ScenarioFossil Scenario = "fossil"
	ScenarioRE1    Scenario = "RE1"
	ScenarioRE2    Scenario = "RE2"
)

// DefaultScenario applies to empty and unknown scenario names.
const DefaultScenario = ScenarioRE1

// Column headers. The fossil header is spelled as in the source data.
const (
	ColumnCase       = "Case"
	ColumnSpecEnergy = "Spec_Energy"
)

var scenarioColumns = map[Scenario]string{
	ScenarioFossil: "Emissions_energmix_fossil",
	ScenarioRE1:    "Emissions_energymix_RE1",
	ScenarioRE2:    "Emissions_energymix_RE2",
}

// ParseScenario maps a request value to a Scenario; anything unrecognized is DefaultScenario.
func ParseScenario(s string) Scenario {
	if _, ok := scenarioColumns[Scenario(s)]; ok {
		return Scenario(s)
	}
	return DefaultScenario
}

// Column is the CSV header holding emissions for sc.
func (sc Scenario) Column() string {
	if c, ok := scenarioColumns[sc]; ok {
		return c
	}
	return scenarioColumns[DefaultScenario]
}

// Row is the metadata for one configuration.
type Row struct {
	SpecEnergy float64
	Emissions  map[Scenario]float64
}

// Table is an immutable, parsed emissions file.
type Table struct {
	rows map[catalog.Name]Row
}

// Len is the number of configurations in the table.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the metadata for n.
func (t *Table) Row(n catalog.Name) (Row, bool) {
	r, ok := t.rows[n]
	return r, ok
}

// Lookup returns emissions under sc and specific energy for n. Configurations
// absent from the table, and empty cells, read as zero.
func (t *Table) Lookup(n catalog.Name, sc Scenario) (emissions, specEnergy float64) {
	r, ok := t.rows[n]
	if !ok {
		return 0, 0
	}
	return r.Emissions[ParseScenario(string(sc))], r.SpecEnergy
}

// ReadFile parses the CSV at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV with a header row. Case and Spec_Energy are required, as
// is the column of the default scenario; the other scenario columns are
// optional. Rows for names outside the catalog are kept.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, req := range []string{ColumnCase, ColumnSpecEnergy, DefaultScenario.Column()} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("missing column %q", req)
		}
	}

	t := &Table{rows: map[catalog.Name]Row{}}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(field(rec, idx[ColumnCase]))
		if name == "" {
			continue
		}
		row := Row{Emissions: make(map[Scenario]float64, len(scenarioColumns))}
		if row.SpecEnergy, err = number(rec, idx[ColumnSpecEnergy]); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, ColumnSpecEnergy, err)
		}
		for sc, col := range scenarioColumns {
			i, ok := idx[col]
			if !ok {
				continue
			}
			if row.Emissions[sc], err = number(rec, i); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, col, err)
			}
		}
		t.rows[catalog.Name(name)] = row
	}
	return t, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func number(rec []string, i int) (float64, error) {
	s := strings.TrimSpace(field(rec, i))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
